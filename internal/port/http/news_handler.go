package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/newsnet/backend/internal/entity"
	"github.com/newsnet/backend/internal/port/repository"
	"github.com/newsnet/backend/internal/usecase"
	"go.uber.org/zap"
)

type NewsHandler struct {
	news   *usecase.NewsUsecase
	logger *zap.Logger
}

func NewNewsHandler(news *usecase.NewsUsecase, logger *zap.Logger) *NewsHandler {
	return &NewsHandler{
		news:   news,
		logger: logger.Named("NewsHandler"),
	}
}

type newsView struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Author      string    `json:"author"`
	Source      string    `json:"source,omitempty"`
	Image       string    `json:"image,omitempty"`
	URL         string    `json:"url,omitempty"`
	Category    string    `json:"category,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toNewsView(n *entity.News) newsView {
	return newsView{
		ID:          n.ID,
		Title:       n.Title,
		Content:     n.Content,
		Author:      n.Author,
		Source:      n.Source,
		Image:       n.Image,
		URL:         n.URL,
		Category:    n.Category,
		PublishedAt: n.PublishedAt,
		CreatedAt:   n.CreatedAt,
		UpdatedAt:   n.UpdatedAt,
	}
}

func toNewsViews(news []*entity.News) []newsView {
	views := make([]newsView, 0, len(news))
	for _, n := range news {
		views = append(views, toNewsView(n))
	}
	return views
}

type createNewsRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Author   string `json:"author"`
	Source   string `json:"source"`
	Image    string `json:"image"`
	URL      string `json:"url"`
	Category string `json:"category"`
}

func (h *NewsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createNewsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Title == "" || req.Content == "" || req.Author == "" {
		writeMessage(w, http.StatusBadRequest, "Title, content, and author are required")
		return
	}

	news, err := h.news.CreateNews(r.Context(), usecase.CreateNewsInput{
		Title:    req.Title,
		Content:  req.Content,
		Author:   req.Author,
		Source:   req.Source,
		Image:    req.Image,
		URL:      req.URL,
		Category: req.Category,
	})
	if err != nil {
		h.logger.Error("Failed to create news article", zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, "Error creating news article")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "News article created successfully",
		"news":    toNewsView(news),
	})
}

func (h *NewsHandler) List(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 10)
	category := r.URL.Query().Get("category")

	out, err := h.news.ListNews(r.Context(), usecase.ListNewsInput{
		Page:     page,
		PageSize: limit,
		Category: category,
	})
	if err != nil {
		h.logger.Error("Failed to list news articles", zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, "Error fetching news articles")
		return
	}

	totalPages := (out.TotalCount + int64(limit) - 1) / int64(limit)
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "News articles retrieved successfully",
		"news":    toNewsViews(out.News),
		"pagination": map[string]any{
			"currentPage": page,
			"totalPages":  totalPages,
			"totalNews":   out.TotalCount,
			"hasNext":     int64(page) < totalPages,
			"hasPrev":     page > 1,
		},
	})
}

func (h *NewsHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	news, err := h.news.GetNewsByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "News article not found")
			return
		}
		h.logger.Error("Failed to get news article", zap.String("newsID", id), zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, "Error fetching news article")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "News article retrieved successfully",
		"news":    toNewsView(news),
	})
}

func (h *NewsHandler) GetByCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 10)

	out, err := h.news.ListNews(r.Context(), usecase.ListNewsInput{
		Page:     page,
		PageSize: limit,
		Category: category,
	})
	if err != nil {
		h.logger.Error("Failed to list news by category", zap.String("category", category), zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, "Error fetching news by category")
		return
	}

	totalPages := (out.TotalCount + int64(limit) - 1) / int64(limit)
	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "News articles in " + category + " category retrieved successfully",
		"news":     toNewsViews(out.News),
		"category": category,
		"pagination": map[string]any{
			"currentPage": page,
			"totalPages":  totalPages,
			"totalNews":   out.TotalCount,
		},
	})
}

func (h *NewsHandler) Latest(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 5)

	news, err := h.news.LatestNews(r.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to get latest news", zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, "Error fetching latest news")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Latest news articles retrieved successfully",
		"news":    toNewsViews(news),
	})
}

type updateNewsRequest struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	Author   *string `json:"author"`
	Source   *string `json:"source"`
	Image    *string `json:"image"`
	URL      *string `json:"url"`
	Category *string `json:"category"`
}

func (h *NewsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateNewsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	news, err := h.news.UpdateNews(r.Context(), usecase.UpdateNewsInput{
		ID:       id,
		Title:    req.Title,
		Content:  req.Content,
		Author:   req.Author,
		Source:   req.Source,
		Image:    req.Image,
		URL:      req.URL,
		Category: req.Category,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "News article not found")
			return
		}
		h.logger.Error("Failed to update news article", zap.String("newsID", id), zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, "Error updating news article")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "News article updated successfully",
		"news":    toNewsView(news),
	})
}

func (h *NewsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.news.DeleteNews(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "News article not found")
			return
		}
		h.logger.Error("Failed to delete news article", zap.String("newsID", id), zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, "Error deleting news article")
		return
	}

	writeMessage(w, http.StatusOK, "News article deleted successfully")
}

func (h *NewsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.news.NewsStats(r.Context())
	if err != nil {
		h.logger.Error("Failed to get news stats", zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, "Error fetching news statistics")
		return
	}

	categories := make([]map[string]any, 0, len(stats.Categories))
	for _, c := range stats.Categories {
		categories = append(categories, map[string]any{
			"category": c.Category,
			"count":    c.Count,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "News statistics retrieved successfully",
		"stats": map[string]any{
			"totalNews":       stats.TotalNews,
			"recentNews":      stats.RecentNews,
			"categoriesStats": categories,
		},
	})
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

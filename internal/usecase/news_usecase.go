package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/newsnet/backend/internal/entity"
	"github.com/newsnet/backend/internal/port/cache"
	"github.com/newsnet/backend/internal/port/repository"
	"go.uber.org/zap"
)

// NewsEventPublisher announces article lifecycle changes. Publish failures are
// logged and swallowed, the write has already happened.
type NewsEventPublisher interface {
	PublishNewsCreated(news *entity.News) error
	PublishNewsUpdated(news *entity.News) error
	PublishNewsDeleted(newsID string) error
}

type NewsUsecase struct {
	newsRepo  repository.NewsRepository
	publisher NewsEventPublisher
	cacheRepo cache.CacheRepository
	logger    *zap.Logger
}

func NewNewsUsecase(
	nr repository.NewsRepository,
	pub NewsEventPublisher,
	cr cache.CacheRepository,
	logger *zap.Logger,
) *NewsUsecase {
	return &NewsUsecase{
		newsRepo:  nr,
		publisher: pub,
		cacheRepo: cr,
		logger:    logger.Named("NewsUsecase"),
	}
}

func newsCacheKey(newsID string) string {
	return fmt.Sprintf("news:%s", newsID)
}

const newsCacheTTL = 5 * time.Minute

type CreateNewsInput struct {
	Title    string
	Content  string
	Author   string
	Source   string
	Image    string
	URL      string
	Category string
}

func (uc *NewsUsecase) CreateNews(ctx context.Context, input CreateNewsInput) (*entity.News, error) {
	now := time.Now()
	news := &entity.News{
		Title:       input.Title,
		Content:     input.Content,
		Author:      input.Author,
		Source:      input.Source,
		Image:       input.Image,
		URL:         input.URL,
		Category:    input.Category,
		PublishedAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	createdID, err := uc.newsRepo.Create(ctx, news)
	if err != nil {
		uc.logger.Error("Failed to create news in repository", zap.Error(err), zap.String("title", input.Title))
		return nil, fmt.Errorf("NewsUsecase.CreateNews: failed to create news in repo: %w", err)
	}
	news.ID = createdID

	uc.cacheNews(ctx, news)

	if uc.publisher != nil {
		if errPub := uc.publisher.PublishNewsCreated(news); errPub != nil {
			uc.logger.Warn("Failed to publish news created event",
				zap.Error(errPub),
				zap.String("news_id", news.ID))
		}
	}

	return news, nil
}

func (uc *NewsUsecase) GetNewsByID(ctx context.Context, id string) (*entity.News, error) {
	if uc.cacheRepo != nil {
		key := newsCacheKey(id)
		cachedBytes, err := uc.cacheRepo.Get(ctx, key)
		if err == nil {
			var newsFromCache entity.News
			if unmarshalErr := json.Unmarshal(cachedBytes, &newsFromCache); unmarshalErr == nil {
				uc.logger.Debug("News fetched from cache", zap.String("key", key))
				return &newsFromCache, nil
			}
			// Corrupted entry, drop it and fall through to the repository.
			if delErr := uc.cacheRepo.Delete(ctx, key); delErr != nil {
				uc.logger.Warn("Failed to delete corrupted data from cache", zap.String("key", key), zap.Error(delErr))
			}
		} else if !errors.Is(err, cache.ErrNotFound) {
			uc.logger.Warn("Failed to get news from cache (not a cache miss)", zap.Error(err), zap.String("key", key))
		}
	}

	news, err := uc.newsRepo.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			uc.logger.Error("Failed to get news by ID from repository", zap.Error(err), zap.String("news_id", id))
		}
		return nil, fmt.Errorf("NewsUsecase.GetNewsByID: failed to get news from repo: %w", err)
	}

	uc.cacheNews(ctx, news)
	return news, nil
}

type UpdateNewsInput struct {
	ID       string
	Title    *string
	Content  *string
	Author   *string
	Source   *string
	Image    *string
	URL      *string
	Category *string
}

func (uc *NewsUsecase) UpdateNews(ctx context.Context, input UpdateNewsInput) (*entity.News, error) {
	news, err := uc.newsRepo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, fmt.Errorf("NewsUsecase.UpdateNews: failed to get news for update: %w", err)
	}

	updated := false
	apply := func(dst *string, src *string) {
		if src != nil && *dst != *src {
			*dst = *src
			updated = true
		}
	}
	apply(&news.Title, input.Title)
	apply(&news.Content, input.Content)
	apply(&news.Author, input.Author)
	apply(&news.Source, input.Source)
	apply(&news.Image, input.Image)
	apply(&news.URL, input.URL)
	apply(&news.Category, input.Category)

	if !updated {
		uc.logger.Info("No actual changes detected for news update", zap.String("news_id", input.ID))
		return news, nil
	}

	news.UpdatedAt = time.Now()

	if err := uc.newsRepo.Update(ctx, news); err != nil {
		uc.logger.Error("Failed to update news in repository", zap.Error(err), zap.String("news_id", news.ID))
		return nil, fmt.Errorf("NewsUsecase.UpdateNews: failed to update news in repo: %w", err)
	}

	uc.invalidateCache(ctx, news.ID)

	if uc.publisher != nil {
		if errPub := uc.publisher.PublishNewsUpdated(news); errPub != nil {
			uc.logger.Warn("Failed to publish news updated event",
				zap.Error(errPub),
				zap.String("news_id", news.ID))
		}
	}

	return news, nil
}

func (uc *NewsUsecase) DeleteNews(ctx context.Context, id string) error {
	if _, err := uc.newsRepo.GetByID(ctx, id); err != nil {
		return fmt.Errorf("NewsUsecase.DeleteNews: news to delete not found or error getting it: %w", err)
	}

	if err := uc.newsRepo.Delete(ctx, id); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			uc.logger.Error("Failed to delete news from repository", zap.Error(err), zap.String("news_id", id))
		}
		return fmt.Errorf("NewsUsecase.DeleteNews: failed to delete news from repo: %w", err)
	}

	uc.invalidateCache(ctx, id)

	if uc.publisher != nil {
		if errPub := uc.publisher.PublishNewsDeleted(id); errPub != nil {
			uc.logger.Warn("Failed to publish news deleted event",
				zap.Error(errPub),
				zap.String("news_id", id))
		}
	}
	return nil
}

type ListNewsInput struct {
	Page     int
	PageSize int
	Category string
}

type ListNewsOutput struct {
	News       []*entity.News
	TotalCount int64
}

func (uc *NewsUsecase) ListNews(ctx context.Context, input ListNewsInput) (*ListNewsOutput, error) {
	if input.Page <= 0 {
		input.Page = 1
	}
	if input.PageSize <= 0 {
		input.PageSize = 10
	}

	newsList, total, err := uc.newsRepo.List(ctx, input.Page, input.PageSize, input.Category)
	if err != nil {
		uc.logger.Error("Failed to list news from repository", zap.Error(err))
		return nil, fmt.Errorf("NewsUsecase.ListNews: failed to list news from repo: %w", err)
	}

	return &ListNewsOutput{News: newsList, TotalCount: total}, nil
}

func (uc *NewsUsecase) LatestNews(ctx context.Context, limit int) ([]*entity.News, error) {
	if limit <= 0 {
		limit = 5
	}
	news, err := uc.newsRepo.Latest(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("NewsUsecase.LatestNews: %w", err)
	}
	return news, nil
}

func (uc *NewsUsecase) NewsStats(ctx context.Context) (*entity.NewsStats, error) {
	stats, err := uc.newsRepo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("NewsUsecase.NewsStats: %w", err)
	}
	return stats, nil
}

func (uc *NewsUsecase) cacheNews(ctx context.Context, news *entity.News) {
	if uc.cacheRepo == nil || news == nil {
		return
	}
	newsBytes, err := json.Marshal(news)
	if err != nil {
		uc.logger.Warn("Failed to marshal news for caching", zap.Error(err), zap.String("news_id", news.ID))
		return
	}
	key := newsCacheKey(news.ID)
	if err := uc.cacheRepo.Set(ctx, key, newsBytes, newsCacheTTL); err != nil {
		uc.logger.Warn("Failed to set news in cache", zap.Error(err), zap.String("key", key))
	}
}

func (uc *NewsUsecase) invalidateCache(ctx context.Context, newsID string) {
	if uc.cacheRepo == nil {
		return
	}
	key := newsCacheKey(newsID)
	if err := uc.cacheRepo.Delete(ctx, key); err != nil {
		uc.logger.Warn("Failed to delete news from cache", zap.Error(err), zap.String("key", key))
	}
}

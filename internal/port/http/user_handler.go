package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/newsnet/backend/internal/entity"
	"github.com/newsnet/backend/internal/port/repository"
	"github.com/newsnet/backend/internal/usecase"
	"go.uber.org/zap"
)

type UserHandler struct {
	auth   *usecase.AuthUsecase
	users  *usecase.UserUsecase
	logger *zap.Logger
}

func NewUserHandler(auth *usecase.AuthUsecase, users *usecase.UserUsecase, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		auth:   auth,
		users:  users,
		logger: logger.Named("UserHandler"),
	}
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyEmailRequest struct {
	Email            string `json:"email"`
	VerificationCode string `json:"verificationCode"`
}

type resendVerificationRequest struct {
	Email string `json:"email"`
}

type userView struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	IsVerified bool   `json:"isVerified"`
}

func toUserView(u *entity.User) userView {
	return userView{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		Role:       u.Role,
		IsVerified: u.IsVerified,
	}
}

func (h *UserHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Username, email, and password are required")
		return
	}

	userID, err := h.auth.Signup(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			writeMessage(w, http.StatusBadRequest, "User already exists")
			return
		}
		h.logger.Error("Failed to sign up user", zap.String("email", req.Email), zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, "Error creating user")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"message": "User created successfully. Please check your email for the verification code.",
		"userId":  userID,
		"email":   req.Email,
	})
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, tokenString, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrNotVerified):
			// Distinguished rejection: the client routes to the verify flow.
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"message": "Please verify your email before logging in",
				"userId":  user.ID,
				"email":   user.Email,
			})
		case errors.Is(err, repository.ErrNotFound):
			writeMessage(w, http.StatusBadRequest, "User not found")
		case errors.Is(err, usecase.ErrInvalidCredentials):
			writeMessage(w, http.StatusBadRequest, "Invalid email or password")
		default:
			h.logger.Error("Failed to login user", zap.String("email", req.Email), zap.Error(err))
			writeMessage(w, http.StatusInternalServerError, "Login failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"user":    toUserView(user),
		"token":   tokenString,
	})
}

func (h *UserHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req verifyEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.VerificationCode == "" {
		writeMessage(w, http.StatusBadRequest, "Email and verification code are required")
		return
	}

	userID, err := h.auth.VerifyEmail(r.Context(), req.Email, req.VerificationCode)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			writeMessage(w, http.StatusBadRequest, "User not found")
		case errors.Is(err, usecase.ErrAlreadyVerified):
			writeMessage(w, http.StatusBadRequest, "Email is already verified")
		case errors.Is(err, usecase.ErrInvalidCode):
			writeMessage(w, http.StatusBadRequest, "Invalid verification code")
		default:
			h.logger.Error("Failed to verify email", zap.String("email", req.Email), zap.Error(err))
			writeMessage(w, http.StatusInternalServerError, "Error verifying email")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Email verified successfully",
		"userId":  userID,
	})
}

func (h *UserHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req resendVerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" {
		writeMessage(w, http.StatusBadRequest, "Email is required")
		return
	}

	if err := h.auth.ResendVerification(r.Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			writeMessage(w, http.StatusBadRequest, "User not found")
		case errors.Is(err, usecase.ErrAlreadyVerified):
			writeMessage(w, http.StatusBadRequest, "Email is already verified")
		default:
			h.logger.Error("Failed to resend verification code", zap.String("email", req.Email), zap.Error(err))
			writeMessage(w, http.StatusInternalServerError, "Error resending verification code")
		}
		return
	}

	writeMessage(w, http.StatusOK, "Verification code sent successfully")
}

func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if claims, ok := ClaimsFromContext(r.Context()); ok {
		h.auth.Logout(claims.UserID)
	}
	writeMessage(w, http.StatusOK, "Logged out successfully")
}

// Protected echoes the authenticated identity; kept around as a smoke test
// for the session guard.
func (h *UserHandler) Protected(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "You are authorized",
		"user": map[string]string{
			"id":       claims.UserID,
			"username": claims.Username,
			"email":    claims.Email,
			"role":     claims.Role,
		},
	})
}

func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	user, err := h.users.GetProfile(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "User not found")
			return
		}
		h.logger.Error("Failed to get profile", zap.String("userID", claims.UserID), zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, "Error fetching profile")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Profile retrieved successfully",
		"user":    toUserView(user),
	})
}

type updateProfileRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Username == "" {
		req.Username = claims.Username
	}
	if req.Email == "" {
		req.Email = claims.Email
	}

	user, err := h.users.UpdateProfile(r.Context(), claims.UserID, req.Username, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			writeMessage(w, http.StatusNotFound, "User not found")
		case errors.Is(err, repository.ErrDuplicateEmail):
			writeMessage(w, http.StatusBadRequest, "Email already in use")
		default:
			h.logger.Error("Failed to update profile", zap.String("userID", claims.UserID), zap.Error(err))
			writeMessage(w, http.StatusInternalServerError, "Error updating profile")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Profile updated successfully",
		"user":    toUserView(user),
	})
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		writeMessage(w, http.StatusBadRequest, "Old password and new password are required")
		return
	}

	if err := h.users.ChangePassword(r.Context(), claims.UserID, req.OldPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidCredentials):
			writeMessage(w, http.StatusBadRequest, "Invalid old password")
		case errors.Is(err, repository.ErrNotFound):
			writeMessage(w, http.StatusNotFound, "User not found")
		default:
			h.logger.Error("Failed to change password", zap.String("userID", claims.UserID), zap.Error(err))
			writeMessage(w, http.StatusInternalServerError, "Error changing password")
		}
		return
	}

	writeMessage(w, http.StatusOK, "Password changed successfully")
}

func (h *UserHandler) ToggleBookmark(w http.ResponseWriter, r *http.Request) {
	h.toggleInteraction(w, r, "Bookmark", h.users.ToggleBookmark)
}

func (h *UserHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	h.toggleInteraction(w, r, "Like", h.users.ToggleLike)
}

func (h *UserHandler) toggleInteraction(
	w http.ResponseWriter,
	r *http.Request,
	kind string,
	toggle func(ctx context.Context, userID, newsID string) (bool, error),
) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	newsID := chi.URLParam(r, "newsID")
	if newsID == "" {
		writeMessage(w, http.StatusBadRequest, "News ID is required")
		return
	}

	active, err := toggle(r.Context(), claims.UserID, newsID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "News article not found")
			return
		}
		h.logger.Error("Failed to toggle interaction",
			zap.String("kind", kind),
			zap.String("userID", claims.UserID),
			zap.String("newsID", newsID),
			zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, "Error updating "+kind)
		return
	}

	message := kind + " removed"
	if active {
		message = kind + " added"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": message,
		"active":  active,
	})
}

func (h *UserHandler) BookmarkedNews(w http.ResponseWriter, r *http.Request) {
	h.interactionNews(w, r, "bookmarks", h.users.BookmarkedNews)
}

func (h *UserHandler) LikedNews(w http.ResponseWriter, r *http.Request) {
	h.interactionNews(w, r, "liked news", h.users.LikedNews)
}

func (h *UserHandler) interactionNews(
	w http.ResponseWriter,
	r *http.Request,
	kind string,
	fetch func(ctx context.Context, userID string) ([]*entity.News, error),
) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	news, err := fetch(r.Context(), claims.UserID)
	if err != nil {
		h.logger.Error("Failed to fetch interaction news",
			zap.String("kind", kind),
			zap.String("userID", claims.UserID),
			zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, "Error fetching "+kind)
		return
	}
	if news == nil {
		news = []*entity.News{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Retrieved successfully",
		"news":    toNewsViews(news),
	})
}

type checkInteractionsRequest struct {
	NewsIDs []string `json:"newsIds"`
}

func (h *UserHandler) CheckInteractions(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req checkInteractionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	interactions, err := h.users.CheckInteractions(r.Context(), claims.UserID, req.NewsIDs)
	if err != nil {
		h.logger.Error("Failed to check interactions", zap.String("userID", claims.UserID), zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, "Error checking interactions")
		return
	}

	result := make(map[string]map[string]bool, len(interactions))
	for id, itx := range interactions {
		result[id] = map[string]bool{
			"isBookmarked": itx.IsBookmarked,
			"isLiked":      itx.IsLiked,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":      "Interactions retrieved successfully",
		"interactions": result,
	})
}

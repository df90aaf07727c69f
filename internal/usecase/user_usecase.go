package usecase

import (
	"context"
	"fmt"

	"github.com/newsnet/backend/internal/entity"
	"github.com/newsnet/backend/internal/port/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Interaction reports whether a user has bookmarked or liked an article.
type Interaction struct {
	IsBookmarked bool
	IsLiked      bool
}

type UserUsecase struct {
	repo     repository.UserRepository
	newsRepo repository.NewsRepository
	logger   *zap.Logger
}

func NewUserUsecase(repo repository.UserRepository, newsRepo repository.NewsRepository, logger *zap.Logger) *UserUsecase {
	return &UserUsecase{
		repo:     repo,
		newsRepo: newsRepo,
		logger:   logger.Named("UserUsecase"),
	}
}

func (u *UserUsecase) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	return u.repo.GetByID(ctx, userID)
}

func (u *UserUsecase) UpdateProfile(ctx context.Context, userID, username, email string) (*entity.User, error) {
	if err := u.repo.UpdateProfile(ctx, userID, username, email); err != nil {
		return nil, err
	}
	return u.repo.GetByID(ctx, userID)
}

func (u *UserUsecase) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := u.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("UserUsecase.ChangePassword: failed to hash password: %w", err)
	}

	return u.repo.UpdatePassword(ctx, userID, string(hashedPassword))
}

// ToggleBookmark adds or removes a bookmark and reports the resulting state.
func (u *UserUsecase) ToggleBookmark(ctx context.Context, userID, newsID string) (bool, error) {
	return u.toggle(ctx, userID, newsID, func(user *entity.User) []string { return user.Bookmarks },
		u.repo.AddBookmark, u.repo.RemoveBookmark)
}

func (u *UserUsecase) ToggleLike(ctx context.Context, userID, newsID string) (bool, error) {
	return u.toggle(ctx, userID, newsID, func(user *entity.User) []string { return user.Likes },
		u.repo.AddLike, u.repo.RemoveLike)
}

func (u *UserUsecase) toggle(
	ctx context.Context,
	userID, newsID string,
	set func(*entity.User) []string,
	add, remove func(context.Context, string, string) error,
) (bool, error) {
	user, err := u.repo.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}

	if contains(set(user), newsID) {
		if err := remove(ctx, userID, newsID); err != nil {
			return false, err
		}
		return false, nil
	}

	// Only existing articles can be bookmarked or liked.
	if _, err := u.newsRepo.GetByID(ctx, newsID); err != nil {
		return false, err
	}
	if err := add(ctx, userID, newsID); err != nil {
		return false, err
	}
	return true, nil
}

func (u *UserUsecase) BookmarkedNews(ctx context.Context, userID string) ([]*entity.News, error) {
	user, err := u.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.newsRepo.GetByIDs(ctx, user.Bookmarks)
}

func (u *UserUsecase) LikedNews(ctx context.Context, userID string) ([]*entity.News, error) {
	user, err := u.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.newsRepo.GetByIDs(ctx, user.Likes)
}

// CheckInteractions reports bookmark/like state for a batch of article IDs.
func (u *UserUsecase) CheckInteractions(ctx context.Context, userID string, newsIDs []string) (map[string]Interaction, error) {
	user, err := u.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := make(map[string]Interaction, len(newsIDs))
	for _, id := range newsIDs {
		result[id] = Interaction{
			IsBookmarked: contains(user.Bookmarks, id),
			IsLiked:      contains(user.Likes, id),
		}
	}
	return result, nil
}

func contains(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

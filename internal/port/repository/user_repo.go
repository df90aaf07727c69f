package repository

import (
	"context"

	"github.com/newsnet/backend/internal/entity"
)

// UserRepository is the persistence port for user accounts. Implementations
// must enforce email uniqueness at the store level so that concurrent signups
// for the same address cannot both succeed.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) (string, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByID(ctx context.Context, id string) (*entity.User, error)
	UpdateProfile(ctx context.Context, userID, username, email string) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	SetVerificationCode(ctx context.Context, userID, code string) error
	MarkVerified(ctx context.Context, userID string) error
	AddBookmark(ctx context.Context, userID, newsID string) error
	RemoveBookmark(ctx context.Context, userID, newsID string) error
	AddLike(ctx context.Context, userID, newsID string) error
	RemoveLike(ctx context.Context, userID, newsID string) error
}

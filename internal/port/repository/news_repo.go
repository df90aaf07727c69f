package repository

import (
	"context"

	"github.com/newsnet/backend/internal/entity"
)

type NewsRepository interface {
	Create(ctx context.Context, news *entity.News) (string, error)
	GetByID(ctx context.Context, id string) (*entity.News, error)
	GetByIDs(ctx context.Context, ids []string) ([]*entity.News, error)
	Update(ctx context.Context, news *entity.News) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, page, pageSize int, category string) ([]*entity.News, int64, error)
	Latest(ctx context.Context, limit int) ([]*entity.News, error)
	Stats(ctx context.Context) (*entity.NewsStats, error)
}

package usecase

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/newsnet/backend/internal/entity"
	"github.com/newsnet/backend/internal/port/cache"
	"github.com/newsnet/backend/internal/port/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockNewsRepository struct{ mock.Mock }

func (m *MockNewsRepository) Create(ctx context.Context, news *entity.News) (string, error) {
	args := m.Called(ctx, news)
	return args.String(0), args.Error(1)
}
func (m *MockNewsRepository) GetByID(ctx context.Context, id string) (*entity.News, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.News), args.Error(1)
}
func (m *MockNewsRepository) GetByIDs(ctx context.Context, ids []string) ([]*entity.News, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.News), args.Error(1)
}
func (m *MockNewsRepository) Update(ctx context.Context, news *entity.News) error {
	args := m.Called(ctx, news)
	return args.Error(0)
}
func (m *MockNewsRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockNewsRepository) List(ctx context.Context, page, pageSize int, category string) ([]*entity.News, int64, error) {
	args := m.Called(ctx, page, pageSize, category)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*entity.News), args.Get(1).(int64), args.Error(2)
}
func (m *MockNewsRepository) Latest(ctx context.Context, limit int) ([]*entity.News, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.News), args.Error(1)
}
func (m *MockNewsRepository) Stats(ctx context.Context) (*entity.NewsStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.NewsStats), args.Error(1)
}

type MockCacheRepository struct{ mock.Mock }

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}
func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

type MockNewsPublisher struct{ mock.Mock }

func (m *MockNewsPublisher) PublishNewsCreated(news *entity.News) error {
	args := m.Called(news)
	return args.Error(0)
}
func (m *MockNewsPublisher) PublishNewsUpdated(news *entity.News) error {
	args := m.Called(news)
	return args.Error(0)
}
func (m *MockNewsPublisher) PublishNewsDeleted(newsID string) error {
	args := m.Called(newsID)
	return args.Error(0)
}

func newNewsUsecaseForTest(nr *MockNewsRepository, pub *MockNewsPublisher, cr *MockCacheRepository) *NewsUsecase {
	return NewNewsUsecase(nr, pub, cr, zap.NewNop())
}

func TestCreateNews_PublishesAndCaches(t *testing.T) {
	repo := new(MockNewsRepository)
	pub := new(MockNewsPublisher)
	cacheRepo := new(MockCacheRepository)
	uc := newNewsUsecaseForTest(repo, pub, cacheRepo)

	repo.On("Create", mock.Anything, mock.AnythingOfType("*entity.News")).Return("news-1", nil)
	cacheRepo.On("Set", mock.Anything, "news:news-1", mock.Anything, newsCacheTTL).Return(nil)
	pub.On("PublishNewsCreated", mock.AnythingOfType("*entity.News")).Return(nil)

	news, err := uc.CreateNews(context.Background(), CreateNewsInput{
		Title:    "Breaking",
		Content:  "Something happened",
		Author:   "alice",
		Category: "world",
	})
	require.NoError(t, err)
	assert.Equal(t, "news-1", news.ID)
	assert.Equal(t, "Breaking", news.Title)
	assert.False(t, news.PublishedAt.IsZero())

	pub.AssertCalled(t, "PublishNewsCreated", mock.AnythingOfType("*entity.News"))
	cacheRepo.AssertCalled(t, "Set", mock.Anything, "news:news-1", mock.Anything, newsCacheTTL)
}

func TestCreateNews_PublishFailureDoesNotFailCreate(t *testing.T) {
	repo := new(MockNewsRepository)
	pub := new(MockNewsPublisher)
	cacheRepo := new(MockCacheRepository)
	uc := newNewsUsecaseForTest(repo, pub, cacheRepo)

	repo.On("Create", mock.Anything, mock.Anything).Return("news-1", nil)
	cacheRepo.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	pub.On("PublishNewsCreated", mock.Anything).Return(assert.AnError)

	news, err := uc.CreateNews(context.Background(), CreateNewsInput{Title: "t", Content: "c", Author: "a"})
	require.NoError(t, err)
	assert.Equal(t, "news-1", news.ID)
}

func TestGetNewsByID_CacheHit(t *testing.T) {
	repo := new(MockNewsRepository)
	pub := new(MockNewsPublisher)
	cacheRepo := new(MockCacheRepository)
	uc := newNewsUsecaseForTest(repo, pub, cacheRepo)

	cached := &entity.News{ID: "news-1", Title: "Cached title"}
	cachedBytes, err := json.Marshal(cached)
	require.NoError(t, err)
	cacheRepo.On("Get", mock.Anything, "news:news-1").Return(cachedBytes, nil)

	news, err := uc.GetNewsByID(context.Background(), "news-1")
	require.NoError(t, err)
	assert.Equal(t, "Cached title", news.Title)
	repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestGetNewsByID_CacheMissFallsThroughAndCaches(t *testing.T) {
	repo := new(MockNewsRepository)
	pub := new(MockNewsPublisher)
	cacheRepo := new(MockCacheRepository)
	uc := newNewsUsecaseForTest(repo, pub, cacheRepo)

	cacheRepo.On("Get", mock.Anything, "news:news-1").Return(nil, cache.ErrNotFound)
	repo.On("GetByID", mock.Anything, "news-1").Return(&entity.News{ID: "news-1", Title: "From repo"}, nil)
	cacheRepo.On("Set", mock.Anything, "news:news-1", mock.Anything, newsCacheTTL).Return(nil)

	news, err := uc.GetNewsByID(context.Background(), "news-1")
	require.NoError(t, err)
	assert.Equal(t, "From repo", news.Title)
	cacheRepo.AssertCalled(t, "Set", mock.Anything, "news:news-1", mock.Anything, newsCacheTTL)
}

func TestGetNewsByID_CorruptedCacheEntryIsDropped(t *testing.T) {
	repo := new(MockNewsRepository)
	pub := new(MockNewsPublisher)
	cacheRepo := new(MockCacheRepository)
	uc := newNewsUsecaseForTest(repo, pub, cacheRepo)

	cacheRepo.On("Get", mock.Anything, "news:news-1").Return([]byte("not json"), nil)
	cacheRepo.On("Delete", mock.Anything, "news:news-1").Return(nil)
	repo.On("GetByID", mock.Anything, "news-1").Return(&entity.News{ID: "news-1", Title: "From repo"}, nil)
	cacheRepo.On("Set", mock.Anything, "news:news-1", mock.Anything, newsCacheTTL).Return(nil)

	news, err := uc.GetNewsByID(context.Background(), "news-1")
	require.NoError(t, err)
	assert.Equal(t, "From repo", news.Title)
	cacheRepo.AssertCalled(t, "Delete", mock.Anything, "news:news-1")
}

func TestGetNewsByID_NotFound(t *testing.T) {
	repo := new(MockNewsRepository)
	pub := new(MockNewsPublisher)
	cacheRepo := new(MockCacheRepository)
	uc := newNewsUsecaseForTest(repo, pub, cacheRepo)

	cacheRepo.On("Get", mock.Anything, "news:missing").Return(nil, cache.ErrNotFound)
	repo.On("GetByID", mock.Anything, "missing").Return(nil, repository.ErrNotFound)

	_, err := uc.GetNewsByID(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUpdateNews_NoChangesSkipsRepoWrite(t *testing.T) {
	repo := new(MockNewsRepository)
	pub := new(MockNewsPublisher)
	cacheRepo := new(MockCacheRepository)
	uc := newNewsUsecaseForTest(repo, pub, cacheRepo)

	existing := &entity.News{ID: "news-1", Title: "Same title", Content: "Same content"}
	repo.On("GetByID", mock.Anything, "news-1").Return(existing, nil)

	sameTitle := "Same title"
	news, err := uc.UpdateNews(context.Background(), UpdateNewsInput{ID: "news-1", Title: &sameTitle})
	require.NoError(t, err)
	assert.Equal(t, "Same title", news.Title)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	pub.AssertNotCalled(t, "PublishNewsUpdated", mock.Anything)
}

func TestUpdateNews_AppliesChangesAndInvalidatesCache(t *testing.T) {
	repo := new(MockNewsRepository)
	pub := new(MockNewsPublisher)
	cacheRepo := new(MockCacheRepository)
	uc := newNewsUsecaseForTest(repo, pub, cacheRepo)

	existing := &entity.News{ID: "news-1", Title: "Old title", Content: "Body"}
	repo.On("GetByID", mock.Anything, "news-1").Return(existing, nil)
	repo.On("Update", mock.Anything, mock.AnythingOfType("*entity.News")).Return(nil)
	cacheRepo.On("Delete", mock.Anything, "news:news-1").Return(nil)
	pub.On("PublishNewsUpdated", mock.AnythingOfType("*entity.News")).Return(nil)

	newTitle := "New title"
	news, err := uc.UpdateNews(context.Background(), UpdateNewsInput{ID: "news-1", Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, "New title", news.Title)
	assert.False(t, news.UpdatedAt.IsZero())
	cacheRepo.AssertCalled(t, "Delete", mock.Anything, "news:news-1")
	pub.AssertCalled(t, "PublishNewsUpdated", mock.AnythingOfType("*entity.News"))
}

func TestDeleteNews_InvalidatesCacheAndPublishes(t *testing.T) {
	repo := new(MockNewsRepository)
	pub := new(MockNewsPublisher)
	cacheRepo := new(MockCacheRepository)
	uc := newNewsUsecaseForTest(repo, pub, cacheRepo)

	repo.On("GetByID", mock.Anything, "news-1").Return(&entity.News{ID: "news-1"}, nil)
	repo.On("Delete", mock.Anything, "news-1").Return(nil)
	cacheRepo.On("Delete", mock.Anything, "news:news-1").Return(nil)
	pub.On("PublishNewsDeleted", "news-1").Return(nil)

	err := uc.DeleteNews(context.Background(), "news-1")
	require.NoError(t, err)
	cacheRepo.AssertCalled(t, "Delete", mock.Anything, "news:news-1")
	pub.AssertCalled(t, "PublishNewsDeleted", "news-1")
}

func TestDeleteNews_NotFound(t *testing.T) {
	repo := new(MockNewsRepository)
	pub := new(MockNewsPublisher)
	cacheRepo := new(MockCacheRepository)
	uc := newNewsUsecaseForTest(repo, pub, cacheRepo)

	repo.On("GetByID", mock.Anything, "missing").Return(nil, repository.ErrNotFound)

	err := uc.DeleteNews(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestListNews_DefaultsPagination(t *testing.T) {
	repo := new(MockNewsRepository)
	pub := new(MockNewsPublisher)
	cacheRepo := new(MockCacheRepository)
	uc := newNewsUsecaseForTest(repo, pub, cacheRepo)

	repo.On("List", mock.Anything, 1, 10, "").
		Return([]*entity.News{{ID: "news-1"}}, int64(1), nil)

	out, err := uc.ListNews(context.Background(), ListNewsInput{Page: 0, PageSize: -3})
	require.NoError(t, err)
	assert.Len(t, out.News, 1)
	assert.Equal(t, int64(1), out.TotalCount)
	repo.AssertCalled(t, "List", mock.Anything, 1, 10, "")
}

func TestLatestNews_DefaultLimit(t *testing.T) {
	repo := new(MockNewsRepository)
	pub := new(MockNewsPublisher)
	cacheRepo := new(MockCacheRepository)
	uc := newNewsUsecaseForTest(repo, pub, cacheRepo)

	repo.On("Latest", mock.Anything, 5).Return([]*entity.News{{ID: "news-1"}}, nil)

	news, err := uc.LatestNews(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, news, 1)
	repo.AssertCalled(t, "Latest", mock.Anything, 5)
}

func TestNewsStats(t *testing.T) {
	repo := new(MockNewsRepository)
	pub := new(MockNewsPublisher)
	cacheRepo := new(MockCacheRepository)
	uc := newNewsUsecaseForTest(repo, pub, cacheRepo)

	repo.On("Stats", mock.Anything).Return(&entity.NewsStats{
		TotalNews:  12,
		RecentNews: 3,
		Categories: []entity.CategoryCount{{Category: "world", Count: 7}},
	}, nil)

	stats, err := uc.NewsStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(12), stats.TotalNews)
	assert.Len(t, stats.Categories, 1)
}

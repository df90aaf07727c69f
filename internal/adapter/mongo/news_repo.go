package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/newsnet/backend/internal/entity"
	"github.com/newsnet/backend/internal/port/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const newsCollectionName = "news"

type NewsMongoRepository struct {
	db *mongo.Database
}

func NewNewsMongoRepository(client *mongo.Client, dbName string) *NewsMongoRepository {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db := client.Database(dbName)
	index := mongo.IndexModel{
		Keys: bson.D{
			{Key: "title", Value: "text"},
			{Key: "content", Value: "text"},
			{Key: "author", Value: "text"},
		},
	}
	// Best effort, the index may already exist.
	_, _ = db.Collection(newsCollectionName).Indexes().CreateOne(ctx, index)

	return &NewsMongoRepository{db: db}
}

type newsDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Content     string             `bson:"content"`
	Author      string             `bson:"author"`
	Source      string             `bson:"source,omitempty"`
	Image       string             `bson:"image,omitempty"`
	URL         string             `bson:"url,omitempty"`
	Category    string             `bson:"category,omitempty"`
	PublishedAt primitive.DateTime `bson:"published_at"`
	CreatedAt   primitive.DateTime `bson:"created_at"`
	UpdatedAt   primitive.DateTime `bson:"updated_at"`
}

func toNewsDocument(n *entity.News) (*newsDocument, error) {
	doc := &newsDocument{
		Title:       n.Title,
		Content:     n.Content,
		Author:      n.Author,
		Source:      n.Source,
		Image:       n.Image,
		URL:         n.URL,
		Category:    n.Category,
		PublishedAt: primitive.NewDateTimeFromTime(n.PublishedAt),
		CreatedAt:   primitive.NewDateTimeFromTime(n.CreatedAt),
		UpdatedAt:   primitive.NewDateTimeFromTime(n.UpdatedAt),
	}
	if n.ID != "" {
		objID, err := primitive.ObjectIDFromHex(n.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid news ID format: %w", err)
		}
		doc.ID = objID
	}
	return doc, nil
}

func toNewsEntity(doc *newsDocument) *entity.News {
	return &entity.News{
		ID:          doc.ID.Hex(),
		Title:       doc.Title,
		Content:     doc.Content,
		Author:      doc.Author,
		Source:      doc.Source,
		Image:       doc.Image,
		URL:         doc.URL,
		Category:    doc.Category,
		PublishedAt: doc.PublishedAt.Time(),
		CreatedAt:   doc.CreatedAt.Time(),
		UpdatedAt:   doc.UpdatedAt.Time(),
	}
}

func (r *NewsMongoRepository) Create(ctx context.Context, news *entity.News) (string, error) {
	doc, err := toNewsDocument(news)
	if err != nil {
		return "", err
	}

	res, err := r.db.Collection(newsCollectionName).InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("failed to create news in mongo: %w", err)
	}

	insertedID, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("failed to convert inserted_id to ObjectID")
	}
	return insertedID.Hex(), nil
}

func (r *NewsMongoRepository) GetByID(ctx context.Context, id string) (*entity.News, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}

	var doc newsDocument
	err = r.db.Collection(newsCollectionName).FindOne(ctx, bson.M{"_id": objID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get news by id from mongo: %w", err)
	}
	return toNewsEntity(&doc), nil
}

func (r *NewsMongoRepository) GetByIDs(ctx context.Context, ids []string) ([]*entity.News, error) {
	objIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		objID, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		objIDs = append(objIDs, objID)
	}
	if len(objIDs) == 0 {
		return nil, nil
	}

	findOptions := options.Find().SetSort(bson.M{"published_at": -1})
	cursor, err := r.db.Collection(newsCollectionName).Find(ctx, bson.M{"_id": bson.M{"$in": objIDs}}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to get news by ids from mongo: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*newsDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode news by ids: %w", err)
	}

	news := make([]*entity.News, 0, len(docs))
	for _, doc := range docs {
		news = append(news, toNewsEntity(doc))
	}
	return news, nil
}

func (r *NewsMongoRepository) Update(ctx context.Context, news *entity.News) error {
	doc, err := toNewsDocument(news)
	if err != nil {
		return err
	}
	if doc.ID.IsZero() {
		return fmt.Errorf("news ID is required for update")
	}

	update := bson.M{"$set": bson.M{
		"title":      doc.Title,
		"content":    doc.Content,
		"author":     doc.Author,
		"source":     doc.Source,
		"image":      doc.Image,
		"url":        doc.URL,
		"category":   doc.Category,
		"updated_at": doc.UpdatedAt,
	}}
	result, err := r.db.Collection(newsCollectionName).UpdateOne(ctx, bson.M{"_id": doc.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to update news in mongo: %w", err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *NewsMongoRepository) Delete(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repository.ErrNotFound
	}

	result, err := r.db.Collection(newsCollectionName).DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return fmt.Errorf("failed to delete news from mongo: %w", err)
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *NewsMongoRepository) List(ctx context.Context, page, pageSize int, category string) ([]*entity.News, int64, error) {
	filter := bson.M{}
	if category != "" {
		filter["category"] = category
	}

	findOptions := options.Find().
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize)).
		SetSort(bson.M{"published_at": -1})

	cursor, err := r.db.Collection(newsCollectionName).Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list news from mongo: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*newsDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("failed to decode news list: %w", err)
	}

	total, err := r.db.Collection(newsCollectionName).CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count news in mongo: %w", err)
	}

	news := make([]*entity.News, 0, len(docs))
	for _, doc := range docs {
		news = append(news, toNewsEntity(doc))
	}
	return news, total, nil
}

func (r *NewsMongoRepository) Latest(ctx context.Context, limit int) ([]*entity.News, error) {
	findOptions := options.Find().
		SetLimit(int64(limit)).
		SetSort(bson.M{"published_at": -1})

	cursor, err := r.db.Collection(newsCollectionName).Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest news from mongo: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*newsDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode latest news: %w", err)
	}

	news := make([]*entity.News, 0, len(docs))
	for _, doc := range docs {
		news = append(news, toNewsEntity(doc))
	}
	return news, nil
}

func (r *NewsMongoRepository) Stats(ctx context.Context) (*entity.NewsStats, error) {
	coll := r.db.Collection(newsCollectionName)

	total, err := coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to count news: %w", err)
	}

	weekAgo := time.Now().Add(-7 * 24 * time.Hour)
	recent, err := coll.CountDocuments(ctx, bson.M{"created_at": bson.M{"$gte": weekAgo}})
	if err != nil {
		return nil, fmt.Errorf("failed to count recent news: %w", err)
	}

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$category", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.M{"count": -1}}},
	}
	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate category stats: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID    string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode category stats: %w", err)
	}

	stats := &entity.NewsStats{TotalNews: total, RecentNews: recent}
	for _, row := range rows {
		stats.Categories = append(stats.Categories, entity.CategoryCount{Category: row.ID, Count: row.Count})
	}
	return stats, nil
}

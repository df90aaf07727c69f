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
	"go.uber.org/zap"
)

const userCollectionName = "users"

type UserMongoRepository struct {
	db     *mongo.Database
	logger *zap.Logger
}

type userDocument struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	Username         string             `bson:"username"`
	Email            string             `bson:"email"`
	Password         string             `bson:"password"`
	Role             string             `bson:"role"`
	IsVerified       bool               `bson:"is_verified"`
	VerificationCode string             `bson:"verification_code,omitempty"`
	Bookmarks        []string           `bson:"bookmarks,omitempty"`
	Likes            []string           `bson:"likes,omitempty"`
	CreatedAt        time.Time          `bson:"created_at"`
	UpdatedAt        time.Time          `bson:"updated_at"`
}

func (d *userDocument) toEntity() *entity.User {
	return &entity.User{
		ID:               d.ID.Hex(),
		Username:         d.Username,
		Email:            d.Email,
		Password:         d.Password,
		Role:             d.Role,
		IsVerified:       d.IsVerified,
		VerificationCode: d.VerificationCode,
		Bookmarks:        d.Bookmarks,
		Likes:            d.Likes,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}

// NewUserMongoRepository ensures the unique email index before returning.
// Uniqueness has to live in the store: the existence check in the signup flow
// and the insert are separate operations, so two racing signups can both pass
// the check and only the index keeps one of them out.
func NewUserMongoRepository(client *mongo.Client, dbName string, logger *zap.Logger) *UserMongoRepository {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db := client.Database(dbName)
	index := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := db.Collection(userCollectionName).Indexes().CreateOne(ctx, index); err != nil {
		logger.Warn("Failed to create unique email index (may already exist)", zap.Error(err))
	}

	return &UserMongoRepository{
		db:     db,
		logger: logger.Named("UserMongoRepository"),
	}
}

func isDuplicateKey(err error) bool {
	var writeException mongo.WriteException
	if errors.As(err, &writeException) {
		for _, writeError := range writeException.WriteErrors {
			if writeError.Code == 11000 {
				return true
			}
		}
	}
	return false
}

func (r *UserMongoRepository) Create(ctx context.Context, user *entity.User) (string, error) {
	now := time.Now()
	doc := &userDocument{
		ID:               primitive.NewObjectID(),
		Username:         user.Username,
		Email:            user.Email,
		Password:         user.Password,
		Role:             user.Role,
		IsVerified:       user.IsVerified,
		VerificationCode: user.VerificationCode,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if _, err := r.db.Collection(userCollectionName).InsertOne(ctx, doc); err != nil {
		if isDuplicateKey(err) {
			r.logger.Warn("Duplicate email during user creation", zap.String("email", user.Email))
			return "", repository.ErrDuplicateEmail
		}
		r.logger.Error("Database error during user creation", zap.String("email", user.Email), zap.Error(err))
		return "", fmt.Errorf("UserMongoRepository.Create: %w", err)
	}
	return doc.ID.Hex(), nil
}

func (r *UserMongoRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	var doc userDocument
	err := r.db.Collection(userCollectionName).FindOne(ctx, bson.M{"email": email}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		r.logger.Error("Database error fetching user by email", zap.String("email", email), zap.Error(err))
		return nil, fmt.Errorf("UserMongoRepository.GetByEmail: %w", err)
	}
	return doc.toEntity(), nil
}

func (r *UserMongoRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}

	var doc userDocument
	err = r.db.Collection(userCollectionName).FindOne(ctx, bson.M{"_id": objID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		r.logger.Error("Database error fetching user by ID", zap.String("userID", id), zap.Error(err))
		return nil, fmt.Errorf("UserMongoRepository.GetByID: %w", err)
	}
	return doc.toEntity(), nil
}

func (r *UserMongoRepository) UpdateProfile(ctx context.Context, userID, username, email string) error {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return repository.ErrNotFound
	}

	update := bson.M{"$set": bson.M{
		"username":   username,
		"email":      email,
		"updated_at": time.Now(),
	}}
	result, err := r.db.Collection(userCollectionName).UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		if isDuplicateKey(err) {
			return repository.ErrDuplicateEmail
		}
		r.logger.Error("Database error during profile update", zap.String("userID", userID), zap.Error(err))
		return fmt.Errorf("UserMongoRepository.UpdateProfile: %w", err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserMongoRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	return r.setFields(ctx, userID, bson.M{"password": passwordHash})
}

func (r *UserMongoRepository) SetVerificationCode(ctx context.Context, userID, code string) error {
	return r.setFields(ctx, userID, bson.M{"verification_code": code})
}

// MarkVerified flips the verified flag and removes the code in one update, so
// a used code can never match again.
func (r *UserMongoRepository) MarkVerified(ctx context.Context, userID string) error {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return repository.ErrNotFound
	}

	update := bson.M{
		"$set":   bson.M{"is_verified": true, "updated_at": time.Now()},
		"$unset": bson.M{"verification_code": ""},
	}
	result, err := r.db.Collection(userCollectionName).UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		r.logger.Error("Database error marking user verified", zap.String("userID", userID), zap.Error(err))
		return fmt.Errorf("UserMongoRepository.MarkVerified: %w", err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserMongoRepository) AddBookmark(ctx context.Context, userID, newsID string) error {
	return r.updateSet(ctx, userID, "$addToSet", "bookmarks", newsID)
}

func (r *UserMongoRepository) RemoveBookmark(ctx context.Context, userID, newsID string) error {
	return r.updateSet(ctx, userID, "$pull", "bookmarks", newsID)
}

func (r *UserMongoRepository) AddLike(ctx context.Context, userID, newsID string) error {
	return r.updateSet(ctx, userID, "$addToSet", "likes", newsID)
}

func (r *UserMongoRepository) RemoveLike(ctx context.Context, userID, newsID string) error {
	return r.updateSet(ctx, userID, "$pull", "likes", newsID)
}

func (r *UserMongoRepository) setFields(ctx context.Context, userID string, fields bson.M) error {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return repository.ErrNotFound
	}

	fields["updated_at"] = time.Now()
	result, err := r.db.Collection(userCollectionName).UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": fields})
	if err != nil {
		r.logger.Error("Database error updating user fields", zap.String("userID", userID), zap.Error(err))
		return fmt.Errorf("UserMongoRepository.setFields: %w", err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserMongoRepository) updateSet(ctx context.Context, userID, op, field, newsID string) error {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return repository.ErrNotFound
	}

	update := bson.M{
		op:     bson.M{field: newsID},
		"$set": bson.M{"updated_at": time.Now()},
	}
	result, err := r.db.Collection(userCollectionName).UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		r.logger.Error("Database error updating interaction set",
			zap.String("userID", userID),
			zap.String("field", field),
			zap.Error(err))
		return fmt.Errorf("UserMongoRepository.updateSet: %w", err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

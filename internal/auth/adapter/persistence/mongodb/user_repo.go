package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stashbox/internal/auth/domain/model"
	"stashbox/internal/auth/usecase"
	"stashbox/internal/shared/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const userCounterName = "users"

// MongoAuthRepository implements the AuthRepository interface using MongoDB.
type MongoAuthRepository struct {
	db                 *mongo.Database
	counters           *database.Counters
	usersCollection    *mongo.Collection
	sessionsCollection *mongo.Collection
}

// NewMongoAuthRepository creates a new MongoDB auth repository and ensures
// its indexes.
func NewMongoAuthRepository(db *mongo.Database, counters *database.Counters) (*MongoAuthRepository, error) {
	repo := &MongoAuthRepository{
		db:                 db,
		counters:           counters,
		usersCollection:    db.Collection("users"),
		sessionsCollection: db.Collection("sessions"),
	}

	ctx := context.Background()

	emailIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := repo.usersCollection.Indexes().CreateOne(ctx, emailIndex); err != nil {
		return nil, fmt.Errorf("failed to create email index: %w", err)
	}

	// Sessions are keyed by refresh token (_id); the only secondary access
	// path is the per-user cascade.
	userSessionsIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "user_uid", Value: 1}},
	}
	if _, err := repo.sessionsCollection.Indexes().CreateOne(ctx, userSessionsIndex); err != nil {
		return nil, fmt.Errorf("failed to create session user index: %w", err)
	}

	return repo, nil
}

// CreateUser inserts a new user, allocating its uid.
func (r *MongoAuthRepository) CreateUser(ctx context.Context, user *model.User) error {
	if user == nil {
		return errors.New("user cannot be nil")
	}

	uid, err := r.counters.Next(ctx, userCounterName)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	user.UID = uid
	user.CreatedAt = now
	user.UpdatedAt = now

	if _, err := r.usersCollection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return usecase.ErrEmailTaken
		}
		return err
	}
	return nil
}

// GetUserByEmail retrieves a user by email.
func (r *MongoAuthRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.usersCollection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByUID retrieves a user by uid.
func (r *MongoAuthRepository) GetUserByUID(ctx context.Context, uid int64) (*model.User, error) {
	var user model.User
	err := r.usersCollection.FindOne(ctx, bson.M{"_id": uid}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// DeleteUser removes a user row.
func (r *MongoAuthRepository) DeleteUser(ctx context.Context, uid int64) error {
	res, err := r.usersCollection.DeleteOne(ctx, bson.M{"_id": uid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return usecase.ErrUserNotFound
	}
	return nil
}

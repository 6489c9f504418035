package mongodb

import (
	"context"
	"errors"

	"stashbox/internal/auth/domain/model"
	"stashbox/internal/auth/usecase"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// CreateSession inserts a new session row keyed by its refresh token.
func (r *MongoAuthRepository) CreateSession(ctx context.Context, session *model.Session) error {
	if session == nil {
		return errors.New("session cannot be nil")
	}
	_, err := r.sessionsCollection.InsertOne(ctx, session)
	return err
}

// GetSessionByToken retrieves the session identified by the raw refresh token.
func (r *MongoAuthRepository) GetSessionByToken(ctx context.Context, refreshToken string) (*model.Session, error) {
	var session model.Session
	err := r.sessionsCollection.FindOne(ctx, bson.M{"_id": refreshToken}).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, usecase.ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

// DeleteSession removes the session row. The deleted-count guard makes this
// the serialization point for concurrent refreshes of the same token: of two
// racing deletions exactly one observes a removed row, the other gets
// ErrSessionNotFound.
func (r *MongoAuthRepository) DeleteSession(ctx context.Context, refreshToken string) error {
	res, err := r.sessionsCollection.DeleteOne(ctx, bson.M{"_id": refreshToken})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return usecase.ErrSessionNotFound
	}
	return nil
}

// DeleteUserSessions removes every live session of the given user. Used by
// the account-deletion cascade; deleting zero rows is not an error.
func (r *MongoAuthRepository) DeleteUserSessions(ctx context.Context, userUID int64) error {
	_, err := r.sessionsCollection.DeleteMany(ctx, bson.M{"user_uid": userUID})
	return err
}

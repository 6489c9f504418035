package repository

import (
	"context"

	"stashbox/internal/auth/domain/model"
)

// AuthRepository defines the interface for credential and session persistence.
type AuthRepository interface {
	// User operations
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByUID(ctx context.Context, uid int64) (*model.User, error)
	DeleteUser(ctx context.Context, uid int64) error

	// Session ledger operations. DeleteSession must report "session not found"
	// when no row was removed: that deleted-count check is the serialization
	// point that keeps a refresh token single-use under concurrent refreshes.
	CreateSession(ctx context.Context, session *model.Session) error
	GetSessionByToken(ctx context.Context, refreshToken string) (*model.Session, error)
	DeleteSession(ctx context.Context, refreshToken string) error
	DeleteUserSessions(ctx context.Context, userUID int64) error
}

package utils

import (
	"context"
	"errors"

	"stashbox/internal/shared/contextkeys"
)

// Common context errors
var (
	ErrUserUIDNotFound   = errors.New("user uid not found in context")
	ErrUserUIDNotInt     = errors.New("user uid in context is not an int64")
	ErrRequestIDNotFound = errors.New("request id not found in context")
	ErrRequestIDNotStr   = errors.New("request id in context is not a string")
)

// GetUserUIDFromContext retrieves the authenticated user's uid from the context.
func GetUserUIDFromContext(ctx context.Context) (int64, error) {
	val := ctx.Value(contextkeys.UserUIDKey)
	if val == nil {
		return 0, ErrUserUIDNotFound
	}
	uid, ok := val.(int64)
	if !ok {
		return 0, ErrUserUIDNotInt
	}
	return uid, nil
}

// GetRequestIDFromContext retrieves the request ID from the context.
func GetRequestIDFromContext(ctx context.Context) (string, error) {
	val := ctx.Value(contextkeys.RequestIDKey)
	if val == nil {
		return "", ErrRequestIDNotFound
	}
	requestID, ok := val.(string)
	if !ok {
		return "", ErrRequestIDNotStr
	}
	return requestID, nil
}

// WithUserUID adds the authenticated user's uid to the context.
func WithUserUID(ctx context.Context, uid int64) context.Context {
	return context.WithValue(ctx, contextkeys.UserUIDKey, uid)
}

// WithRequestID adds the request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextkeys.RequestIDKey, requestID)
}

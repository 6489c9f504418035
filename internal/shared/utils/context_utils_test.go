package utils_test

import (
	"context"
	"testing"

	"stashbox/internal/shared/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserUIDRoundTrip(t *testing.T) {
	ctx := utils.WithUserUID(context.Background(), 42)

	uid, err := utils.GetUserUIDFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(42), uid)
}

func TestGetUserUIDFromContext_Missing(t *testing.T) {
	_, err := utils.GetUserUIDFromContext(context.Background())
	assert.ErrorIs(t, err, utils.ErrUserUIDNotFound)
}

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := utils.WithRequestID(context.Background(), "req-123")

	id, err := utils.GetRequestIDFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "req-123", id)
}

func TestGetRequestIDFromContext_Missing(t *testing.T) {
	_, err := utils.GetRequestIDFromContext(context.Background())
	assert.ErrorIs(t, err, utils.ErrRequestIDNotFound)
}

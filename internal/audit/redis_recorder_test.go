package audit_test

import (
	"context"
	"os"
	"testing"
	"time"

	"stashbox/internal/audit"
	"stashbox/internal/shared/logger"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr, DB: 15})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skip("Redis not available for testing:", err)
	}

	t.Cleanup(func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = client.Del(cleanupCtx, audit.StreamName).Err()
		_ = client.Close()
	})
	return client
}

func TestRedisRecorder_AppendsToStream(t *testing.T) {
	client := newTestRedis(t)
	recorder := audit.NewRedisRecorder(client, logger.NewLogger())
	ctx := context.Background()

	recorder.Record(ctx, audit.Event{
		Type:      audit.EventUserLogin,
		UserUID:   42,
		IP:        "203.0.113.9",
		UserAgent: "test-agent",
	})

	entries, err := client.XRange(ctx, audit.StreamName, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, string(audit.EventUserLogin), entries[0].Values["type"])
	assert.Equal(t, "42", entries[0].Values["user_uid"])
	assert.Equal(t, "203.0.113.9", entries[0].Values["ip"])
}

func TestRedisRecorder_SurvivesCancelledRequestContext(t *testing.T) {
	// Recording detaches from the request deadline; an already-cancelled
	// request context must not lose the event.
	client := newTestRedis(t)
	recorder := audit.NewRedisRecorder(client, logger.NewLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	recorder.Record(ctx, audit.Event{Type: audit.EventSessionRevoked})

	entries, err := client.XRange(context.Background(), audit.StreamName, "-", "+").Result()
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

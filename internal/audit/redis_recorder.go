package audit

import (
	"context"
	"time"

	"stashbox/internal/shared/logger"

	"github.com/redis/go-redis/v9"
)

// StreamName is the Redis Stream all audit events are appended to.
const StreamName = "stashbox:audit"

const recordTimeout = 2 * time.Second

// RedisRecorder appends audit events to a Redis Stream. The stream is
// write-only from the service's point of view; consumers read it out-of-band.
type RedisRecorder struct {
	client *redis.Client
	logger logger.Logger
}

// NewRedisRecorder creates a Redis-backed audit recorder.
func NewRedisRecorder(client *redis.Client, log logger.Logger) *RedisRecorder {
	return &RedisRecorder{
		client: client,
		logger: log.WithComponent("audit"),
	}
}

// Record appends the event via XADD. Failures are logged and swallowed so the
// surrounding request never fails on audit trouble.
func (r *RedisRecorder) Record(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	// Detach from the request deadline but keep a short bound of our own.
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()

	_, err := r.client.XAdd(recordCtx, &redis.XAddArgs{
		Stream: StreamName,
		Values: map[string]interface{}{
			"type":       string(event.Type),
			"user_uid":   event.UserUID,
			"subject":    event.Subject,
			"ip":         event.IP,
			"user_agent": event.UserAgent,
			"timestamp":  event.Timestamp.UnixNano(),
		},
	}).Result()
	if err != nil {
		r.logger.WithFields(map[string]interface{}{
			"event_type": string(event.Type),
			"user_uid":   event.UserUID,
		}).Errorf("failed to record audit event: %v", err)
	}
}

var _ Recorder = (*RedisRecorder)(nil)

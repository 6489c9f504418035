package audit

import (
	"context"
	"time"
)

// EventType identifies a security-relevant event.
type EventType string

const (
	EventUserRegistered   EventType = "user.registered"
	EventUserLogin        EventType = "user.login"
	EventSessionRefreshed EventType = "session.refreshed"
	EventSessionRevoked   EventType = "session.revoked"
	EventPlaceCreated     EventType = "place.created"
	EventPlaceUpdated     EventType = "place.updated"
	EventPlaceDeleted     EventType = "place.deleted"
)

// Event is one audit record. UserUID is the acting user; Subject is the
// entity the event refers to (session token is never recorded, only uids).
type Event struct {
	Type      EventType
	UserUID   int64
	Subject   string
	IP        string
	UserAgent string
	Timestamp time.Time
}

// Recorder persists audit events. Recording is best-effort everywhere it is
// called: implementations log failures instead of returning them into the
// request path.
type Recorder interface {
	Record(ctx context.Context, event Event)
}

// NopRecorder discards all events. Used in tests and redis-less deployments.
type NopRecorder struct{}

// Record implements Recorder.
func (NopRecorder) Record(ctx context.Context, event Event) {}

var _ Recorder = NopRecorder{}

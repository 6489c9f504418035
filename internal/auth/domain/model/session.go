package model

import "time"

// Session represents one active refresh cycle. The raw refresh token is the
// primary key: it identifies at most one live session and the row is consumed
// exactly once, at the earlier of refresh or logout.
type Session struct {
	RefreshToken string    `json:"-" bson:"_id"`
	UserUID      int64     `json:"user_uid" bson:"user_uid"`
	CSRFToken    string    `json:"-" bson:"csrf_token"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
	IP           string    `json:"ip,omitempty" bson:"ip,omitempty"`
	UserAgent    string    `json:"user_agent,omitempty" bson:"user_agent,omitempty"`
}

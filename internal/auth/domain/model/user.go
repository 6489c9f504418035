package model

import "time"

// User represents an account in the system. The password hash is a one-way
// argon2id encoding and is never serialized to clients.
type User struct {
	UID          int64     `json:"uid" bson:"_id"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

package repository

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenCodec produces and validates signed, expiring session-claim tokens.
// The same codec issues access and refresh tokens; they differ only in TTL
// and in whether the ledger persists them.
type TokenCodec interface {
	Issue(ctx context.Context, userUID int64, ttl time.Duration) (string, error)
	Verify(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims is the token payload: the owning user, the expiration window, and a
// unique token identifier (jti) so no two issued tokens ever compare equal.
type Claims struct {
	UserUID int64 `json:"user_uid"`
	jwt.RegisteredClaims
}

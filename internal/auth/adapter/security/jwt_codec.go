package security

import (
	"context"
	"errors"
	"time"

	"stashbox/internal/auth/config"
	"stashbox/internal/auth/domain/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenInvalid          = errors.New("token is invalid")
	ErrTokenExpired          = errors.New("token is expired")
	ErrTokenSignatureInvalid = errors.New("token signature is invalid")
)

// JWTokenCodec implements repository.TokenCodec using HS256-signed JWTs.
// The signing algorithm is pinned at verification time, never negotiated from
// the token header.
type JWTokenCodec struct {
	secretKey []byte
	issuer    string
}

// NewJWTokenCodec creates a token codec from the module configuration.
func NewJWTokenCodec(cfg *config.Config) (*JWTokenCodec, error) {
	if cfg.JWTSecretKey == "" {
		return nil, errors.New("jwt secret key cannot be empty")
	}
	if cfg.JWTIssuer == "" {
		return nil, errors.New("jwt issuer cannot be empty")
	}

	return &JWTokenCodec{
		secretKey: []byte(cfg.JWTSecretKey),
		issuer:    cfg.JWTIssuer,
	}, nil
}

// Issue signs a token for the given user expiring ttl from now. A fresh jti
// guarantees two tokens issued in the same instant never collide.
func (s *JWTokenCodec) Issue(ctx context.Context, userUID int64, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := &repository.Claims{
		UserUID: userUID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

// Verify validates a token string and returns its claims.
func (s *JWTokenCodec) Verify(ctx context.Context, tokenString string) (*repository.Claims, error) {
	if tokenString == "" {
		return nil, ErrTokenInvalid
	}

	token, err := jwt.ParseWithClaims(tokenString, &repository.Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenSignatureInvalid
		}
		return s.secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return nil, ErrTokenSignatureInvalid
		}
		return nil, ErrTokenInvalid
	}

	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*repository.Claims)
	if !ok {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

var _ repository.TokenCodec = (*JWTokenCodec)(nil)

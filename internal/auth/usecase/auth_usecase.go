package usecase

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"stashbox/internal/auth/config"
	"stashbox/internal/auth/domain/model"
	"stashbox/internal/auth/domain/repository"
)

var (
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("incorrect credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrSessionNotFound    = errors.New("session not found")
	ErrCSRFMismatch       = errors.New("csrf token mismatch")
)

const (
	minPasswordLength = 8
	maxPasswordLength = 128

	// csrfTokenBytes is the entropy of a CSRF token before URL-safe encoding.
	csrfTokenBytes = 32
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// TokenPair carries the three credentials minted for one session: the bearer
// access token, the HTTPOnly refresh cookie value, and the readable CSRF
// cookie value the client must echo in a header on state-changing requests.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"-"`
	CSRFToken    string `json:"-"`
}

// RequestMetadata is the best-effort client context stored with a session.
type RequestMetadata struct {
	ClientIP  string
	UserAgent string
}

// AuthUsecaseInterface defines the contract for authentication operations.
// Mutating operations issue no transactions of their own: the HTTP adapter
// composes them inside one TxRunner scope per request.
type AuthUsecaseInterface interface {
	Register(ctx context.Context, email, password string) (int64, error)
	Login(ctx context.Context, email, password string) (int64, error)
	CreateSession(ctx context.Context, userUID int64, meta RequestMetadata) (*TokenPair, error)
	Refresh(ctx context.Context, refreshToken, csrfHeader string) (int64, error)
	Logout(ctx context.Context, refreshToken, csrfHeader string) error
	InitialCheck(refreshToken, csrfHeader, csrfCookie string) error
	VerifyAccessToken(ctx context.Context, tokenString string) (*repository.Claims, error)
	DeleteAccount(ctx context.Context, userUID int64) error
}

// AuthUsecase implements the authentication lifecycle.
type AuthUsecase struct {
	repo   repository.AuthRepository
	codec  repository.TokenCodec
	hasher repository.PasswordHasher
	config *config.Config
}

// NewAuthUsecase creates a new instance of AuthUsecase.
func NewAuthUsecase(
	repo repository.AuthRepository,
	codec repository.TokenCodec,
	hasher repository.PasswordHasher,
	cfg *config.Config,
) *AuthUsecase {
	return &AuthUsecase{
		repo:   repo,
		codec:  codec,
		hasher: hasher,
		config: cfg,
	}
}

func validateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	if len(password) > maxPasswordLength {
		return fmt.Errorf("password must be at most %d characters", maxPasswordLength)
	}
	return nil
}

// Register creates a new user and returns its uid. Duplicate emails fail with
// ErrEmailTaken, whether caught by the lookup or by the unique index.
func (uc *AuthUsecase) Register(ctx context.Context, email, password string) (int64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateEmail(email); err != nil {
		return 0, err
	}
	if err := validatePassword(password); err != nil {
		return 0, err
	}

	if _, err := uc.repo.GetUserByEmail(ctx, email); err == nil {
		return 0, ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return 0, fmt.Errorf("failed to check existing user: %w", err)
	}

	hash, err := uc.hasher.Hash(password)
	if err != nil {
		return 0, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
	}
	if err := uc.repo.CreateUser(ctx, user); err != nil {
		return 0, err
	}
	return user.UID, nil
}

// Login authenticates a user by email and password. The failure is a single
// undifferentiated ErrInvalidCredentials whether the email is unknown or the
// password mismatches, so callers cannot enumerate accounts.
func (uc *AuthUsecase) Login(ctx context.Context, email, password string) (int64, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := uc.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return 0, ErrInvalidCredentials
		}
		return 0, fmt.Errorf("failed to get user: %w", err)
	}

	ok, err := uc.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return 0, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return 0, ErrInvalidCredentials
	}
	return user.UID, nil
}

// CreateSession mints an access/refresh token pair, generates a fresh CSRF
// token, and persists the session row keyed by the refresh token.
func (uc *AuthUsecase) CreateSession(ctx context.Context, userUID int64, meta RequestMetadata) (*TokenPair, error) {
	accessToken, err := uc.codec.Issue(ctx, userUID, uc.config.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}
	refreshToken, err := uc.codec.Issue(ctx, userUID, uc.config.RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	csrfToken, err := newCSRFToken()
	if err != nil {
		return nil, err
	}

	session := &model.Session{
		RefreshToken: refreshToken,
		UserUID:      userUID,
		CSRFToken:    csrfToken,
		UpdatedAt:    time.Now().UTC(),
		IP:           meta.ClientIP,
		UserAgent:    meta.UserAgent,
	}
	if err := uc.repo.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		CSRFToken:    csrfToken,
	}, nil
}

// Refresh consumes the session identified by refreshToken and returns the
// owning user's uid so the caller can mint a replacement session. Ordered
// checks: token verification, ledger lookup, claim/session user agreement,
// CSRF double-submit, then single-use deletion. A CSRF mismatch leaves the
// session intact; a replayed token fails the deletion's not-found guard.
func (uc *AuthUsecase) Refresh(ctx context.Context, refreshToken, csrfHeader string) (int64, error) {
	claims, err := uc.codec.Verify(ctx, refreshToken)
	if err != nil {
		return 0, ErrInvalidToken
	}

	session, err := uc.repo.GetSessionByToken(ctx, refreshToken)
	if err != nil {
		return 0, err
	}
	if session.UserUID != claims.UserUID {
		return 0, ErrSessionNotFound
	}
	if subtle.ConstantTimeCompare([]byte(session.CSRFToken), []byte(csrfHeader)) != 1 {
		return 0, ErrCSRFMismatch
	}

	if err := uc.repo.DeleteSession(ctx, refreshToken); err != nil {
		return 0, err
	}
	return session.UserUID, nil
}

// Logout validates and deletes the session, mirroring Refresh's checks.
func (uc *AuthUsecase) Logout(ctx context.Context, refreshToken, csrfHeader string) error {
	session, err := uc.repo.GetSessionByToken(ctx, refreshToken)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare([]byte(session.CSRFToken), []byte(csrfHeader)) != 1 {
		return ErrCSRFMismatch
	}
	return uc.repo.DeleteSession(ctx, refreshToken)
}

// InitialCheck is the cheap pre-check performed before any persistence
// access: a missing refresh token is unauthorized outright, and a CSRF header
// that disagrees with the CSRF cookie is rejected without touching storage.
func (uc *AuthUsecase) InitialCheck(refreshToken, csrfHeader, csrfCookie string) error {
	if refreshToken == "" {
		return ErrSessionNotFound
	}
	if csrfHeader != "" && csrfHeader != csrfCookie {
		return ErrCSRFMismatch
	}
	return nil
}

// VerifyAccessToken validates a bearer access token for per-request
// authorization, independent of any cookie state.
func (uc *AuthUsecase) VerifyAccessToken(ctx context.Context, tokenString string) (*repository.Claims, error) {
	claims, err := uc.codec.Verify(ctx, tokenString)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// DeleteAccount removes the user and all of its live sessions. Ownership
// cleanup of places and items belongs to their repositories, composed by the
// caller in the same transaction.
func (uc *AuthUsecase) DeleteAccount(ctx context.Context, userUID int64) error {
	if err := uc.repo.DeleteUserSessions(ctx, userUID); err != nil {
		return err
	}
	return uc.repo.DeleteUser(ctx, userUID)
}

func newCSRFToken() (string, error) {
	buf := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate csrf token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Ensure AuthUsecase implements AuthUsecaseInterface
var _ AuthUsecaseInterface = (*AuthUsecase)(nil)

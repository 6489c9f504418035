package http

import (
	"context"
	"errors"
	"time"

	"stashbox/internal/audit"
	"stashbox/internal/auth/config"
	"stashbox/internal/auth/usecase"
	"stashbox/internal/shared/database"
	apperrors "stashbox/internal/shared/errors"
	"stashbox/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
)

// OwnerDataPurger removes rows owned by a user in another module. The account
// deletion cascade composes every registered purger into one transaction.
type OwnerDataPurger interface {
	PurgeOwner(ctx context.Context, ownerUID int64) error
}

// TokenSchema is the response body carrying the bearer access token. The
// refresh and CSRF tokens travel only as cookies.
type TokenSchema struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// AuthHTTPHandler handles HTTP requests for authentication.
type AuthHTTPHandler struct {
	usecase usecase.AuthUsecaseInterface
	tx      database.TxRunner
	auditor audit.Recorder
	config  *config.Config
	purgers []OwnerDataPurger
}

// NewAuthHTTPHandler creates a new authentication HTTP handler.
func NewAuthHTTPHandler(
	uc usecase.AuthUsecaseInterface,
	tx database.TxRunner,
	auditor audit.Recorder,
	cfg *config.Config,
	purgers ...OwnerDataPurger,
) *AuthHTTPHandler {
	return &AuthHTTPHandler{
		usecase: uc,
		tx:      tx,
		auditor: auditor,
		config:  cfg,
		purgers: purgers,
	}
}

// AddPurgers registers owner-data purgers for the account-deletion cascade.
func (h *AuthHTTPHandler) AddPurgers(purgers ...OwnerDataPurger) {
	h.purgers = append(h.purgers, purgers...)
}

// SetupAuthRoutes registers the auth endpoints.
func (h *AuthHTTPHandler) SetupAuthRoutes(router fiber.Router, middleware *AuthMiddleware) {
	router.Post("/register", h.Register)
	router.Post("/login", h.Login)
	router.Post("/refresh_token", h.RefreshToken)
	router.Delete("/refresh_token", h.Logout)

	protected := router.Group("/", middleware.Protect())
	protected.Delete("/account", h.DeleteAccount)
}

// Register handles user registration: user creation and first session in one
// transaction.
func (h *AuthHTTPHandler) Register(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, apperrors.NewValidationError("invalid request body"))
	}

	meta := h.requestMetadata(c)
	var (
		userUID int64
		pair    *usecase.TokenPair
	)
	err := h.tx.RunTransaction(c.Context(), func(txCtx context.Context) error {
		var err error
		if userUID, err = h.usecase.Register(txCtx, req.Email, req.Password); err != nil {
			return err
		}
		pair, err = h.usecase.CreateSession(txCtx, userUID, meta)
		return err
	})
	if err != nil {
		return respondAuthError(c, err)
	}

	h.auditor.Record(c.Context(), audit.Event{
		Type:      audit.EventUserRegistered,
		UserUID:   userUID,
		IP:        meta.ClientIP,
		UserAgent: meta.UserAgent,
	})

	h.setAuthCookies(c, pair)
	return c.Status(fiber.StatusCreated).JSON(TokenSchema{
		AccessToken: pair.AccessToken,
		TokenType:   "bearer",
	})
}

// Login handles user login. The credential form is OAuth2-password shaped:
// the email travels in the username field.
func (h *AuthHTTPHandler) Login(c *fiber.Ctx) error {
	var req struct {
		Username string `form:"username"`
		Password string `form:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, apperrors.NewValidationError("invalid request body"))
	}

	userUID, err := h.usecase.Login(c.Context(), req.Username, req.Password)
	if err != nil {
		return respondAuthError(c, err)
	}

	meta := h.requestMetadata(c)
	var pair *usecase.TokenPair
	err = h.tx.RunTransaction(c.Context(), func(txCtx context.Context) error {
		var err error
		pair, err = h.usecase.CreateSession(txCtx, userUID, meta)
		return err
	})
	if err != nil {
		return respondAuthError(c, err)
	}

	h.auditor.Record(c.Context(), audit.Event{
		Type:      audit.EventUserLogin,
		UserUID:   userUID,
		IP:        meta.ClientIP,
		UserAgent: meta.UserAgent,
	})

	h.setAuthCookies(c, pair)
	return c.JSON(TokenSchema{
		AccessToken: pair.AccessToken,
		TokenType:   "bearer",
	})
}

// RefreshToken rotates the whole credential set: the old session is consumed
// and a replacement session with fresh tokens and CSRF value is created in
// the same transaction.
func (h *AuthHTTPHandler) RefreshToken(c *fiber.Ctx) error {
	refreshToken := c.Cookies(h.config.RefreshCookieName)
	csrfHeader := c.Get(h.config.CSRFHeaderName)
	csrfCookie := c.Cookies(h.config.CSRFCookieName)

	if err := h.usecase.InitialCheck(refreshToken, csrfHeader, csrfCookie); err != nil {
		return respondAuthError(c, err)
	}

	meta := h.requestMetadata(c)
	var (
		userUID int64
		pair    *usecase.TokenPair
	)
	err := h.tx.RunTransaction(c.Context(), func(txCtx context.Context) error {
		var err error
		if userUID, err = h.usecase.Refresh(txCtx, refreshToken, csrfHeader); err != nil {
			return err
		}
		pair, err = h.usecase.CreateSession(txCtx, userUID, meta)
		return err
	})
	if err != nil {
		return respondAuthError(c, err)
	}

	h.auditor.Record(c.Context(), audit.Event{
		Type:      audit.EventSessionRefreshed,
		UserUID:   userUID,
		IP:        meta.ClientIP,
		UserAgent: meta.UserAgent,
	})

	h.setAuthCookies(c, pair)
	return c.JSON(TokenSchema{
		AccessToken: pair.AccessToken,
		TokenType:   "bearer",
	})
}

// Logout consumes the session and clears the auth cookies.
func (h *AuthHTTPHandler) Logout(c *fiber.Ctx) error {
	refreshToken := c.Cookies(h.config.RefreshCookieName)
	csrfHeader := c.Get(h.config.CSRFHeaderName)
	csrfCookie := c.Cookies(h.config.CSRFCookieName)

	if err := h.usecase.InitialCheck(refreshToken, csrfHeader, csrfCookie); err != nil {
		return respondAuthError(c, err)
	}

	err := h.tx.RunTransaction(c.Context(), func(txCtx context.Context) error {
		return h.usecase.Logout(txCtx, refreshToken, csrfHeader)
	})
	if err != nil {
		return respondAuthError(c, err)
	}

	h.auditor.Record(c.Context(), audit.Event{
		Type: audit.EventSessionRevoked,
	})

	h.clearAuthCookies(c)
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteAccount removes the authenticated user together with all owned data.
func (h *AuthHTTPHandler) DeleteAccount(c *fiber.Ctx) error {
	userUID, err := utils.GetUserUIDFromContext(c.UserContext())
	if err != nil {
		return respondError(c, apperrors.NewAuthenticationError("unauthorized"))
	}

	err = h.tx.RunTransaction(c.Context(), func(txCtx context.Context) error {
		for _, purger := range h.purgers {
			if err := purger.PurgeOwner(txCtx, userUID); err != nil {
				return err
			}
		}
		return h.usecase.DeleteAccount(txCtx, userUID)
	})
	if err != nil {
		return respondAuthError(c, err)
	}

	h.clearAuthCookies(c)
	return c.SendStatus(fiber.StatusNoContent)
}

// Helper methods

func (h *AuthHTTPHandler) requestMetadata(c *fiber.Ctx) usecase.RequestMetadata {
	return usecase.RequestMetadata{
		ClientIP:  utils.ResolveClientIP(c.Get(fiber.HeaderXForwardedFor), c.IP()),
		UserAgent: c.Get(fiber.HeaderUserAgent),
	}
}

func (h *AuthHTTPHandler) setAuthCookies(c *fiber.Ctx, pair *usecase.TokenPair) {
	maxAge := int(h.config.RefreshTokenTTL.Seconds())
	expires := time.Now().Add(h.config.RefreshTokenTTL)

	c.Cookie(&fiber.Cookie{
		Name:     h.config.RefreshCookieName,
		Value:    pair.RefreshToken,
		Path:     h.config.RefreshCookiePath,
		Domain:   h.config.CookieDomain,
		MaxAge:   maxAge,
		Expires:  expires,
		Secure:   h.config.CookieSecure,
		HTTPOnly: true,
		SameSite: h.config.CookieSameSite,
	})
	// Readable on purpose: the client script must echo this value in the CSRF
	// header on state-changing requests.
	c.Cookie(&fiber.Cookie{
		Name:     h.config.CSRFCookieName,
		Value:    pair.CSRFToken,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   maxAge,
		Expires:  expires,
		Secure:   h.config.CookieSecure,
		HTTPOnly: false,
		SameSite: h.config.CookieSameSite,
	})
}

func (h *AuthHTTPHandler) clearAuthCookies(c *fiber.Ctx) {
	expired := time.Now().Add(-1 * time.Hour)

	c.Cookie(&fiber.Cookie{
		Name:     h.config.RefreshCookieName,
		Value:    "",
		Path:     h.config.RefreshCookiePath,
		Domain:   h.config.CookieDomain,
		MaxAge:   -1,
		Expires:  expired,
		Secure:   h.config.CookieSecure,
		HTTPOnly: true,
		SameSite: h.config.CookieSameSite,
	})
	c.Cookie(&fiber.Cookie{
		Name:     h.config.CSRFCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   -1,
		Expires:  expired,
		Secure:   h.config.CookieSecure,
		HTTPOnly: false,
		SameSite: h.config.CookieSameSite,
	})
}

// respondAuthError maps usecase sentinels onto the stable error taxonomy.
func respondAuthError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, usecase.ErrEmailTaken):
		return respondError(c, apperrors.NewConflictError(err.Error()))
	case errors.Is(err, usecase.ErrInvalidCredentials):
		return respondError(c, apperrors.NewAuthenticationError(err.Error()))
	case errors.Is(err, usecase.ErrInvalidToken):
		return respondError(c, apperrors.NewAuthenticationError(err.Error()))
	case errors.Is(err, usecase.ErrSessionNotFound):
		return respondError(c, apperrors.NewAuthenticationError(err.Error()))
	case errors.Is(err, usecase.ErrUserNotFound):
		return respondError(c, apperrors.NewAuthenticationError("unauthorized"))
	case errors.Is(err, usecase.ErrCSRFMismatch):
		return respondError(c, apperrors.NewCSRFMismatchError(err.Error()))
	default:
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return respondError(c, appErr)
		}
		return respondError(c, apperrors.NewValidationError(err.Error()))
	}
}

func respondError(c *fiber.Ctx, appErr *apperrors.AppError) error {
	return c.Status(appErr.HTTPCode).JSON(fiber.Map{
		"error": appErr,
	})
}

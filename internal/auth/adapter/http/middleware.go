package http

import (
	"strings"
	"time"

	"stashbox/internal/auth/usecase"
	"stashbox/internal/shared/contextkeys"
	"stashbox/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// AuthMiddleware provides authentication middleware for Fiber.
type AuthMiddleware struct {
	usecase usecase.AuthUsecaseInterface
}

// NewAuthMiddleware creates a new authentication middleware.
func NewAuthMiddleware(uc usecase.AuthUsecaseInterface) *AuthMiddleware {
	return &AuthMiddleware{
		usecase: uc,
	}
}

// Protect returns middleware that requires a valid bearer access token. The
// token is validated independently of any cookie state, per request.
func (m *AuthMiddleware) Protect() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := extractBearerToken(c)
		if !ok {
			c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": fiber.Map{
					"type":    "AUTHENTICATION_ERROR",
					"message": "authentication required",
				},
			})
		}

		claims, err := m.usecase.VerifyAccessToken(c.Context(), token)
		if err != nil {
			c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": fiber.Map{
					"type":    "AUTHENTICATION_ERROR",
					"message": "invalid token",
				},
			})
		}

		c.SetUserContext(utils.WithUserUID(c.UserContext(), claims.UserUID))
		return c.Next()
	}
}

// RateLimiter creates rate limiting middleware for the auth endpoints.
func (m *AuthMiddleware) RateLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator: func(c *fiber.Ctx) string {
			return utils.ResolveClientIP(c.Get(fiber.HeaderXForwardedFor), c.IP())
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": fiber.Map{
					"type":    "VALIDATION_ERROR",
					"message": "rate limit exceeded, please try again later",
				},
			})
		},
	})
}

// RequestID middleware.
func (m *AuthMiddleware) RequestID() fiber.Handler {
	return requestid.New(requestid.Config{
		Header:     "X-Request-ID",
		ContextKey: string(contextkeys.RequestIDKey),
	})
}

func extractBearerToken(c *fiber.Ctx) (string, bool) {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return "", false
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	return token, token != ""
}

package config

import (
	"errors"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

// Config holds all configuration for the auth module.
type Config struct {
	// JWT Configuration
	JWTSecretKey    string        `env:"JWT_SECRET_KEY,required"`
	JWTIssuer       string        `env:"JWT_ISSUER" envDefault:"stashbox"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"15m"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"720h"` // 30 days

	// Cookie Configuration. The refresh cookie is HTTPOnly and path-scoped to
	// the refresh endpoint; the CSRF cookie is readable from script on "/".
	RefreshCookieName string `env:"REFRESH_COOKIE_NAME" envDefault:"stashbox_refresh_token"`
	RefreshCookiePath string `env:"REFRESH_COOKIE_PATH" envDefault:"/api/auth/refresh_token"`
	CSRFCookieName    string `env:"CSRF_COOKIE_NAME" envDefault:"stashbox_csrf_token"`
	CSRFHeaderName    string `env:"CSRF_HEADER_NAME" envDefault:"X-CSRF-Token"`
	CookieDomain      string `env:"COOKIE_DOMAIN" envDefault:""`
	CookieSecure      bool   `env:"COOKIE_SECURE" envDefault:"false"` // set true in production
	CookieSameSite    string `env:"COOKIE_SAME_SITE" envDefault:"Lax"`
}

// LoadConfig loads configuration from environment variables and validates it.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.New("failed to load auth configuration from environment: " + err.Error())
	}

	if cfg.JWTSecretKey == "" {
		return nil, errors.New("jwt secret key is required")
	}
	if cfg.AccessTokenTTL <= 0 {
		return nil, errors.New("access token TTL must be positive")
	}
	if cfg.RefreshTokenTTL <= cfg.AccessTokenTTL {
		return nil, errors.New("refresh token TTL must exceed the access token TTL")
	}

	switch strings.ToLower(cfg.CookieSameSite) {
	case "lax":
		cfg.CookieSameSite = "Lax"
	case "strict":
		cfg.CookieSameSite = "Strict"
	case "none":
		cfg.CookieSameSite = "None"
	default:
		return nil, errors.New("cookie same-site must be one of 'Lax', 'Strict', or 'None'")
	}

	return cfg, nil
}

package config_test

import (
	"testing"

	"stashbox/internal/auth/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "test-secret")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "stashbox", cfg.JWTIssuer)
	assert.Equal(t, "stashbox_refresh_token", cfg.RefreshCookieName)
	assert.Equal(t, "/api/auth/refresh_token", cfg.RefreshCookiePath)
	assert.Equal(t, "stashbox_csrf_token", cfg.CSRFCookieName)
	assert.Equal(t, "X-CSRF-Token", cfg.CSRFHeaderName)
	assert.Equal(t, "Lax", cfg.CookieSameSite)
	assert.Greater(t, cfg.RefreshTokenTTL, cfg.AccessTokenTTL)
}

func TestLoadConfig_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "")

	_, err := config.LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfig_RefreshMustOutliveAccess(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "test-secret")
	t.Setenv("ACCESS_TOKEN_TTL", "1h")
	t.Setenv("REFRESH_TOKEN_TTL", "30m")

	_, err := config.LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfig_SameSiteNormalization(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "test-secret")

	t.Setenv("COOKIE_SAME_SITE", "strict")
	cfg, err := config.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "Strict", cfg.CookieSameSite)

	t.Setenv("COOKIE_SAME_SITE", "bogus")
	_, err = config.LoadConfig()
	assert.Error(t, err)
}

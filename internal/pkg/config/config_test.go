package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("requires postgres password", func(t *testing.T) {
		t.Setenv("POSTGRES_PASSWORD", "")
		t.Setenv("AUTH_JWT_SECRET", "secret")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "POSTGRES_PASSWORD")
	})

	t.Run("requires jwt secret", func(t *testing.T) {
		t.Setenv("POSTGRES_PASSWORD", "pw")
		t.Setenv("AUTH_JWT_SECRET", "")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "AUTH_JWT_SECRET")
	})

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("POSTGRES_PASSWORD", "pw")
		t.Setenv("AUTH_JWT_SECRET", "secret")
		t.Setenv("SEARCH_RADIUS_METERS", "")
		t.Setenv("SEARCH_LIMIT", "")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 10000, cfg.Search.RadiusMeters)
		assert.Equal(t, 30, cfg.Search.Limit)
		assert.Equal(t, "https://api.geoapify.com", cfg.Search.BaseURL)
		assert.Equal(t, "access_token", cfg.Auth.CookieName)
		assert.Equal(t, 10*time.Second, cfg.Auth.HTTPTimeout)
		assert.Equal(t, []string{"google"}, cfg.Auth.OAuthProviders)
		assert.Equal(t, 10*time.Second, cfg.Search.HTTPTimeout)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("POSTGRES_PASSWORD", "pw")
		t.Setenv("AUTH_JWT_SECRET", "secret")
		t.Setenv("SEARCH_RADIUS_METERS", "5000")
		t.Setenv("SEARCH_GEOCODE_CACHE_TTL", "1m")
		t.Setenv("AUTH_COOKIE_SECURE", "true")
		t.Setenv("AUTH_OAUTH_PROVIDERS", " Google, github ,")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 5000, cfg.Search.RadiusMeters)
		assert.Equal(t, time.Minute, cfg.Search.GeocodeCacheTTL)
		assert.True(t, cfg.Auth.CookieSecure)
		assert.Equal(t, []string{"google", "github"}, cfg.Auth.OAuthProviders)
	})

	t.Run("rejects non-positive radius", func(t *testing.T) {
		t.Setenv("POSTGRES_PASSWORD", "pw")
		t.Setenv("AUTH_JWT_SECRET", "secret")
		t.Setenv("SEARCH_RADIUS_METERS", "-1")

		_, err := Load()
		require.Error(t, err)
	})
}

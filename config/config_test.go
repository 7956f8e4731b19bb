package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TRAINDOCS_API_BASE_URL", "https://api.example.com/v2")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "8080", cfg.Server.Port)
	require.Equal(t, "memory", cfg.Cache.Backend)
	require.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	require.Equal(t, 30*time.Minute, cfg.Viewer.SessionTTL)
	require.False(t, cfg.Audit.Enabled)
	require.False(t, cfg.Metrics.Enabled)
	require.Equal(t, "/metrics", cfg.Metrics.Endpoint)
	require.Equal(t, "json", cfg.Log.Format)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TRAINDOCS_API_BASE_URL", "https://api.example.com/v2")
	t.Setenv("TRAINDOCS_API_TOKEN", "secret")
	t.Setenv("TRAINDOCS_PORT", "9090")
	t.Setenv("TRAINDOCS_CACHE_TTL", "90s")
	t.Setenv("TRAINDOCS_AUDIT_ENABLED", "true")
	t.Setenv("TRAINDOCS_AUDIT_BACKEND", "postgresql")
	t.Setenv("TRAINDOCS_AUDIT_DSN", "postgres://localhost/traindocs")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "9090", cfg.Server.Port)
	require.Equal(t, "secret", cfg.Platform.Token)
	require.Equal(t, 90*time.Second, cfg.Cache.TTL)
	require.True(t, cfg.Audit.Enabled)
	require.Equal(t, "postgresql", cfg.Audit.Backend)
}

func TestLoadValidation(t *testing.T) {
	t.Run("missing base URL", func(t *testing.T) {
		t.Setenv("TRAINDOCS_API_BASE_URL", "")
		_, err := Load()
		require.Error(t, err)
	})

	t.Run("redis backend requires URL", func(t *testing.T) {
		t.Setenv("TRAINDOCS_API_BASE_URL", "https://api.example.com")
		t.Setenv("TRAINDOCS_CACHE_BACKEND", "redis")
		t.Setenv("TRAINDOCS_REDIS_URL", "")
		_, err := Load()
		require.Error(t, err)
	})

	t.Run("unknown cache backend", func(t *testing.T) {
		t.Setenv("TRAINDOCS_API_BASE_URL", "https://api.example.com")
		t.Setenv("TRAINDOCS_CACHE_BACKEND", "memcached")
		_, err := Load()
		require.Error(t, err)
	})
}

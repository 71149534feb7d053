package configs_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twbeatles/hwpmaster-api/configs"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_USER", "hwp")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "hwpmaster")
	t.Setenv("JWT_SECRET", "token-secret")
}

func TestLoad(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		setRequiredEnv(t)

		cfg, err := configs.Load()
		require.NoError(t, err)

		assert.Equal(t, "0.0.0.0", cfg.ServerHost)
		assert.Equal(t, "8080", cfg.ServerPort)
		assert.Equal(t, "hwp:secret@tcp(localhost:3306)/hwpmaster?parseTime=true", cfg.DatabaseURL)
		assert.Equal(t, "http://localhost:9310", cfg.BridgeURL)
		assert.Equal(t, 2*time.Minute, cfg.BridgeTimeout)
		assert.Equal(t, 8, cfg.LinkMaxConcurrency)
		assert.Equal(t, 5*time.Second, cfg.LinkTimeout)
		assert.True(t, cfg.LinkCacheEnabled)
		assert.True(t, cfg.ExternalRequests)
		assert.Empty(t, cfg.LinkAllowlist)
		assert.Equal(t, "HwpMaster-Bot/1.0", cfg.UserAgent)
		assert.Equal(t, "output", cfg.OutputDir)
		assert.Equal(t, 24*time.Hour, cfg.JWTLifetime)
	})

	t.Run("MissingDatabaseVars", func(t *testing.T) {
		t.Setenv("DB_USER", "")
		t.Setenv("DB_PASSWORD", "")
		t.Setenv("DB_NAME", "")
		t.Setenv("JWT_SECRET", "token-secret")

		_, err := configs.Load()
		assert.Error(t, err)
	})

	t.Run("MissingJWTSecret", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("JWT_SECRET", "")

		_, err := configs.Load()
		assert.Error(t, err)
	})

	t.Run("Overrides", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("LINK_MAX_CONCURRENCY", "16")
		t.Setenv("LINK_TIMEOUT_SECONDS", "10")
		t.Setenv("LINK_CACHE_ENABLED", "false")
		t.Setenv("EXTERNAL_REQUESTS_ENABLED", "false")
		t.Setenv("LINK_ALLOWLIST", " docs.example.com , *.go.kr ,")
		t.Setenv("OUTPUT_DIR", "/srv/output")
		t.Setenv("HWP_BRIDGE_URL", "http://agent:9310")

		cfg, err := configs.Load()
		require.NoError(t, err)

		assert.Equal(t, 16, cfg.LinkMaxConcurrency)
		assert.Equal(t, 10*time.Second, cfg.LinkTimeout)
		assert.False(t, cfg.LinkCacheEnabled)
		assert.False(t, cfg.ExternalRequests)
		assert.Equal(t, []string{"docs.example.com", "*.go.kr"}, cfg.LinkAllowlist)
		assert.Equal(t, "/srv/output", cfg.OutputDir)
		assert.Equal(t, "http://agent:9310", cfg.BridgeURL)
	})

	t.Run("ConcurrencyClampedToOne", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("LINK_MAX_CONCURRENCY", "0")

		cfg, err := configs.Load()
		require.NoError(t, err)
		assert.Equal(t, 1, cfg.LinkMaxConcurrency)
	})

	t.Run("InvalidNumberRejected", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("LINK_MAX_CONCURRENCY", "lots")

		_, err := configs.Load()
		assert.Error(t, err)
	})
}

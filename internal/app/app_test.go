package app_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/twbeatles/hwpmaster-api/configs"
	"github.com/twbeatles/hwpmaster-api/internal/app"
	"github.com/twbeatles/hwpmaster-api/internal/repository"
	"github.com/twbeatles/hwpmaster-api/internal/service"
)

func TestRun(t *testing.T) {
	t.Run("ConfigError", func(t *testing.T) {
		orig := app.LoadConfig
		t.Cleanup(func() { app.LoadConfig = orig })

		app.LoadConfig = func() (*configs.Config, error) {
			return nil, errors.New("missing JWT_SECRET environment variable")
		}

		err := app.Run()
		assert.ErrorContains(t, err, "config load error")
	})

	t.Run("DBError", func(t *testing.T) {
		origCfg, origDB := app.LoadConfig, app.NewDB
		t.Cleanup(func() { app.LoadConfig, app.NewDB = origCfg, origDB })

		app.LoadConfig = func() (*configs.Config, error) {
			return &configs.Config{DatabaseURL: "bad-dsn", LogLevel: "info"}, nil
		}
		app.NewDB = func(dsn string) (*gorm.DB, error) {
			return nil, errors.New("dial tcp: connection refused")
		}

		err := app.Run()
		assert.ErrorContains(t, err, "db init error")
	})

	t.Run("MigrationError", func(t *testing.T) {
		origCfg, origDB, origMig := app.LoadConfig, app.NewDB, app.MigrateDB
		t.Cleanup(func() { app.LoadConfig, app.NewDB, app.MigrateDB = origCfg, origDB, origMig })

		app.LoadConfig = func() (*configs.Config, error) {
			return &configs.Config{LogLevel: "info"}, nil
		}
		app.NewDB = func(dsn string) (*gorm.DB, error) { return &gorm.DB{}, nil }
		app.MigrateDB = func(m repository.Migrator) error { return errors.New("table locked") }

		err := app.Run()
		assert.ErrorContains(t, err, "migration error")
	})
}

func TestIssueToken(t *testing.T) {
	t.Run("UsesConfiguredSecretAndLifetime", func(t *testing.T) {
		orig := app.LoadConfig
		t.Cleanup(func() { app.LoadConfig = orig })

		app.LoadConfig = func() (*configs.Config, error) {
			return &configs.Config{JWTSecret: "s3cret", JWTLifetime: time.Hour}, nil
		}

		token, err := app.IssueToken("ops")
		require.NoError(t, err)

		claims, err := service.NewTokenService("s3cret").Validate(token)
		require.NoError(t, err)
		assert.Equal(t, "ops", claims.Subject)
		assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
	})

	t.Run("ConfigError", func(t *testing.T) {
		orig := app.LoadConfig
		t.Cleanup(func() { app.LoadConfig = orig })

		app.LoadConfig = func() (*configs.Config, error) {
			return nil, errors.New("missing JWT_SECRET environment variable")
		}

		_, err := app.IssueToken("ops")
		assert.ErrorContains(t, err, "config load error")
	})
}

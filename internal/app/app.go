package app

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/twbeatles/hwpmaster-api/configs"
	"github.com/twbeatles/hwpmaster-api/internal/handler"
	"github.com/twbeatles/hwpmaster-api/internal/hwp"
	"github.com/twbeatles/hwpmaster-api/internal/logger"
	"github.com/twbeatles/hwpmaster-api/internal/repository"
	"github.com/twbeatles/hwpmaster-api/internal/server"
	"github.com/twbeatles/hwpmaster-api/internal/service"
)

// hookable functions for dependency injection
var (
	LoadConfig = configs.Load
	NewDB      = repository.NewDB
	MigrateDB  = repository.Migrate
)

// IssueToken mints a bearer token for the API with the configured secret and
// lifetime. Backs the token command; the server itself only validates.
func IssueToken(subject string) (string, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return "", fmt.Errorf("config load error: %w", err)
	}
	return service.NewTokenService(cfg.JWTSecret).Issue(subject, cfg.JWTLifetime)
}

// Run loads config, opens DB, runs migrations, wires services, and serves.
func Run() error {
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("config load error: %w", err)
	}

	log := logger.NewWithLevel("app", cfg.LogLevel)

	db, err := NewDB(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}

	if err := MigrateDB(db); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	// Repositories
	batchRepo := repository.NewBatchRepo(db)
	checkRepo := repository.NewCheckRepo(db)

	// Every session gets its own bridge client; the session layer keeps
	// document operations single-flight.
	bridgeFactory := func() hwp.Handler {
		return hwp.NewBridge(cfg.BridgeURL, cfg.BridgeTimeout)
	}

	// Services
	tokenService := service.NewTokenService(cfg.JWTSecret)
	batchService := service.NewBatchService(batchRepo, bridgeFactory, cfg.OutputDir)
	linkService := service.NewLinkCheckService(checkRepo, bridgeFactory, service.CheckDefaults{
		MaxConcurrency:   cfg.LinkMaxConcurrency,
		Timeout:          cfg.LinkTimeout,
		CacheEnabled:     cfg.LinkCacheEnabled,
		Allowlist:        cfg.LinkAllowlist,
		ExternalRequests: cfg.ExternalRequests,
		UserAgent:        cfg.UserAgent,
	})
	healthService := service.NewHealthService(db, bridgeFactory, "HwpMaster API")

	// Handlers
	healthHandler := handler.NewHealthHandler(healthService)
	batchHandler := handler.NewBatchHandler(batchService)
	linkHandler := handler.NewLinkHandler(linkService)

	gin.SetMode(cfg.ServerMode)
	engine := gin.New()
	server.RegisterRoutes(
		engine,
		tokenService,
		[]server.RouteRegistrar{healthHandler},
		[]server.RouteRegistrar{batchHandler, linkHandler},
	)

	addr := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	log.Infof("listening on %s", addr)
	if err := engine.Run(addr); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

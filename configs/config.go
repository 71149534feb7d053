package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration values.
type Config struct {
	ServerHost       string
	ServerPort       string
	ServerMode       string
	DatabaseHost     string
	DatabasePort     string
	DatabaseUser     string
	DatabasePassword string
	DatabaseName     string
	DatabaseURL      string
	LogLevel         string
	JWTSecret        string
	JWTLifetime      time.Duration

	// Automation bridge (the external HWP application agent).
	BridgeURL     string
	BridgeTimeout time.Duration

	// Link checking.
	LinkMaxConcurrency int
	LinkTimeout        time.Duration
	LinkCacheEnabled   bool
	LinkAllowlist      []string
	ExternalRequests   bool
	UserAgent          string

	// Batch output.
	OutputDir string
}

// Load reads configuration exclusively from environment variables (optionally .env file).
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.ServerHost = getEnv("HOST", "0.0.0.0")
	cfg.ServerPort = getEnv("PORT", "8080")
	cfg.ServerMode = getEnv("GIN_MODE", "debug")

	// Database
	cfg.DatabaseHost = getEnv("DB_HOST", "localhost")
	cfg.DatabasePort = getEnv("DB_PORT", "3306")
	cfg.DatabaseUser = getEnv("DB_USER", "")
	cfg.DatabasePassword = getEnv("DB_PASSWORD", "")
	cfg.DatabaseName = getEnv("DB_NAME", "")
	if cfg.DatabaseUser == "" || cfg.DatabasePassword == "" || cfg.DatabaseName == "" {
		return nil, fmt.Errorf("missing required database env vars")
	}
	// Build DSN: user:pass@tcp(host:port)/dbname?parseTime=true
	cfg.DatabaseURL = fmt.Sprintf(
		"%s:%s@tcp(%s:%s)/%s?parseTime=true",
		cfg.DatabaseUser, cfg.DatabasePassword,
		cfg.DatabaseHost, cfg.DatabasePort,
		cfg.DatabaseName,
	)

	// Logging & Auth
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("missing JWT_SECRET environment variable")
	}
	jwtLifetimeStr := getEnv("JWT_LIFETIME", "24h")
	d, err := time.ParseDuration(jwtLifetimeStr)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_LIFETIME: %w", err)
	}
	cfg.JWTLifetime = d

	// Automation bridge
	cfg.BridgeURL = getEnv("HWP_BRIDGE_URL", "http://localhost:9310")
	bridgeTimeoutSec, err := strconv.Atoi(getEnv("HWP_BRIDGE_TIMEOUT_SECONDS", "120"))
	if err != nil {
		return nil, fmt.Errorf("invalid HWP_BRIDGE_TIMEOUT_SECONDS: %w", err)
	}
	cfg.BridgeTimeout = time.Duration(bridgeTimeoutSec) * time.Second

	// Link checking
	maxConc, err := strconv.Atoi(getEnv("LINK_MAX_CONCURRENCY", "8"))
	if err != nil {
		return nil, fmt.Errorf("invalid LINK_MAX_CONCURRENCY: %w", err)
	}
	if maxConc < 1 {
		maxConc = 1
	}
	cfg.LinkMaxConcurrency = maxConc

	linkTimeoutSec, err := strconv.Atoi(getEnv("LINK_TIMEOUT_SECONDS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid LINK_TIMEOUT_SECONDS: %w", err)
	}
	if linkTimeoutSec < 1 {
		linkTimeoutSec = 1
	}
	cfg.LinkTimeout = time.Duration(linkTimeoutSec) * time.Second

	cfg.LinkCacheEnabled = getEnvBool("LINK_CACHE_ENABLED", true)
	cfg.ExternalRequests = getEnvBool("EXTERNAL_REQUESTS_ENABLED", true)

	allowlist := getEnv("LINK_ALLOWLIST", "")
	if allowlist != "" {
		for _, raw := range strings.Split(allowlist, ",") {
			if s := strings.TrimSpace(raw); s != "" {
				cfg.LinkAllowlist = append(cfg.LinkAllowlist, s)
			}
		}
	}

	// User agent
	cfg.UserAgent = getEnv("USER_AGENT", "HwpMaster-Bot/1.0")

	// Batch output
	cfg.OutputDir = getEnv("OUTPUT_DIR", "output")

	return cfg, nil
}

// getEnv returns env var or default.
func getEnv(key, def string) string {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	return val
}

// getEnvBool returns a boolean env var or default.
func getEnvBool(key string, def bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return def
	}
	return b
}

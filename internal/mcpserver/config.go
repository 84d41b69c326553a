package mcpserver

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/erraggy/oasweave/internal/config"
)

// serverConfig holds all configurable MCP server defaults.
// Loaded once at startup via loadConfig().
type serverConfig struct {
	// Settings are the shared oasweave settings (oasweave.yaml, OASWEAVE_*
	// and .env in the working directory).
	Settings *config.Config

	// Cache settings.
	CacheEnabled bool
	CacheMaxSize int
	CacheTTL     time.Duration

	// Result limits.
	ResultLimit   int
	MaxLimit      int
	MaxInlineSize int64
}

// cfg is the active server configuration, initialized at package load time.
var cfg = loadConfig()

// loadConfig reads the shared settings plus the MCP-only OASWEAVE_MCP_*
// environment variables. Invalid values log a warning and fall back to the
// hardcoded default.
func loadConfig() *serverConfig {
	settings, err := config.Load(config.Source{})
	if err != nil {
		slog.Warn("invalid oasweave configuration, using defaults", "error", err)
		settings = config.Default()
	}
	return &serverConfig{
		Settings:      settings,
		CacheEnabled:  envBool("OASWEAVE_MCP_CACHE_ENABLED", true),
		CacheMaxSize:  envInt("OASWEAVE_MCP_CACHE_MAX_SIZE", 10),
		CacheTTL:      envDuration("OASWEAVE_MCP_CACHE_TTL", 15*time.Minute),
		ResultLimit:   envInt("OASWEAVE_MCP_RESULT_LIMIT", 100),
		MaxLimit:      envInt("OASWEAVE_MCP_MAX_LIMIT", 1000),
		MaxInlineSize: int64(envInt("OASWEAVE_MCP_MAX_INLINE_SIZE", 10*1024*1024)),
	}
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("invalid bool env var, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return b
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		slog.Warn("invalid int env var, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return d
}

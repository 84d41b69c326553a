package mcpserver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// clearMCPEnv clears the OASWEAVE_MCP_* env vars to isolate tests from the
// ambient environment.
func clearMCPEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"OASWEAVE_MCP_CACHE_ENABLED", "OASWEAVE_MCP_CACHE_MAX_SIZE", "OASWEAVE_MCP_CACHE_TTL",
		"OASWEAVE_MCP_RESULT_LIMIT", "OASWEAVE_MCP_MAX_LIMIT", "OASWEAVE_MCP_MAX_INLINE_SIZE",
		"OASWEAVE_FORMAT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearMCPEnv(t)

	c := loadConfig()

	assert.True(t, c.CacheEnabled)
	assert.Equal(t, 10, c.CacheMaxSize)
	assert.Equal(t, 15*time.Minute, c.CacheTTL)
	assert.Equal(t, 100, c.ResultLimit)
	assert.Equal(t, 1000, c.MaxLimit)
	assert.Equal(t, int64(10*1024*1024), c.MaxInlineSize)
	if assert.NotNil(t, c.Settings) {
		assert.Equal(t, "yaml", c.Settings.Format)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	clearMCPEnv(t)
	t.Setenv("OASWEAVE_MCP_CACHE_ENABLED", "false")
	t.Setenv("OASWEAVE_MCP_CACHE_MAX_SIZE", "50")
	t.Setenv("OASWEAVE_MCP_CACHE_TTL", "2m")
	t.Setenv("OASWEAVE_MCP_RESULT_LIMIT", "25")
	t.Setenv("OASWEAVE_MCP_MAX_INLINE_SIZE", "1024")
	t.Setenv("OASWEAVE_FORMAT", "json")

	c := loadConfig()

	assert.False(t, c.CacheEnabled)
	assert.Equal(t, 50, c.CacheMaxSize)
	assert.Equal(t, 2*time.Minute, c.CacheTTL)
	assert.Equal(t, 25, c.ResultLimit)
	assert.Equal(t, int64(1024), c.MaxInlineSize)
	assert.Equal(t, "json", c.Settings.Format)
}

func TestLoadConfig_InvalidValuesFallBack(t *testing.T) {
	clearMCPEnv(t)
	t.Setenv("OASWEAVE_MCP_CACHE_ENABLED", "maybe")
	t.Setenv("OASWEAVE_MCP_CACHE_MAX_SIZE", "-3")
	t.Setenv("OASWEAVE_MCP_CACHE_TTL", "soon")
	t.Setenv("OASWEAVE_FORMAT", "toml")

	c := loadConfig()

	assert.True(t, c.CacheEnabled)
	assert.Equal(t, 10, c.CacheMaxSize)
	assert.Equal(t, 15*time.Minute, c.CacheTTL)
	assert.Equal(t, "yaml", c.Settings.Format, "invalid shared settings fall back to defaults")
}

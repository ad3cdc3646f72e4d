package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SUMA_DOTENV", "")
	t.Setenv("SUMA_CONFIG", "")
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 10*time.Second, cfg.Analysis.Timeout)
	assert.Equal(t, DefaultMaxBufferLength, cfg.Analytics.MaxBufferSize)
	assert.False(t, cfg.Analytics.Enabled())
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, "memory", cfg.StoreDriver)
}

func TestLoadFromEnvironment(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("ANALYSIS_BASE_URL", "http://analysis:8000/")
	t.Setenv("ANALYTICS_ENDPOINT", "http://collector/v1/metrics/collect")
	t.Setenv("REDIS_URI", "redis://cache:6379")
	t.Setenv("STORE_DRIVER", "SQLite")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://analysis:8000/ai/rag/check-high-occurrence", cfg.Analysis.Endpoint())
	assert.True(t, cfg.Analytics.Enabled())
	assert.Equal(t, "cache:6379", cfg.RedisAddr)
	assert.Equal(t, "sqlite", cfg.StoreDriver)
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("DB_USER", "root")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", "3306")
	t.Setenv("DB_NAME", "expomatch")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg := Load()
	assert.Equal(t, "test", cfg.Env)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 24, cfg.TokenTTLHours)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, "uploads", cfg.UploadDir)
	assert.Equal(t, int64(5<<20), cfg.MaxUploadBytes)
	assert.Equal(t, "*", cfg.CORSOrigin)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("DB_USER", "root")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", "3306")
	t.Setenv("DB_NAME", "expomatch")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("TOKEN_TTL_HOURS", "1")
	t.Setenv("MAX_UPLOAD_BYTES", "1024")
	t.Setenv("UPLOAD_DIR", "/tmp/img")

	cfg := Load()
	assert.Equal(t, 1, cfg.TokenTTLHours)
	assert.Equal(t, int64(1024), cfg.MaxUploadBytes)
	assert.Equal(t, "/tmp/img", cfg.UploadDir)
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("HELPER_STR", "x")
	assert.Equal(t, "x", getenv("HELPER_STR", "def"))
	assert.Equal(t, "def", getenv("HELPER_STR_MISSING", "def"))

	t.Setenv("HELPER_BOOL", "false")
	assert.False(t, envBool("HELPER_BOOL", true))
	assert.True(t, envBool("HELPER_BOOL_MISSING", true))
	t.Setenv("HELPER_BOOL_JUNK", "maybe")
	assert.True(t, envBool("HELPER_BOOL_JUNK", true))

	t.Setenv("HELPER_DUR", "45s")
	assert.Equal(t, 45*time.Second, envDur("HELPER_DUR", time.Minute))
	assert.Equal(t, time.Minute, envDur("HELPER_DUR_MISSING", time.Minute))
}

func TestRateLimitConfigClamps(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_TOKENS", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg := LoadRateLimitConfig()
	assert.Equal(t, 1, cfg.Capacity)
	assert.Equal(t, 1, cfg.RefillTokens)
	assert.Equal(t, 2*time.Second, cfg.RefillInterval)
	// TTL is raised to cover several refill cycles.
	assert.Equal(t, 10*time.Second, cfg.TTL)
}

func TestCacheConfigMethods(t *testing.T) {
	t.Setenv("CACHE_METHODS", "get, head ,")
	cfg := LoadCacheConfig()
	assert.True(t, cfg.Methods["GET"])
	assert.True(t, cfg.Methods["HEAD"])
	assert.False(t, cfg.Methods["POST"])
}

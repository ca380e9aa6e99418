package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_SQLiteDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "")
	t.Setenv("IDENTITY_MODE", "")
	t.Setenv("ADMIN_API_KEY", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("ADMIN_PASSWORD_HASH", "")

	cfg := Load()
	assert.Equal(t, "seats.db", cfg.SQLitePath)
	assert.Equal(t, "roll_branch", cfg.IdentityMode)
	assert.Equal(t, "plain", cfg.RollFormat)
	assert.Equal(t, 5000, cfg.MaxRangeSize)
	assert.True(t, cfg.DBConfigured())
	assert.False(t, cfg.AdminAuthConfigured())
}

func TestAdminAuthConfigured(t *testing.T) {
	assert.True(t, Config{AdminAPIKey: "k"}.AdminAuthConfigured())
	assert.False(t, Config{JWTSecret: "s"}.AdminAuthConfigured(), "a secret without a password cannot issue tokens")
	assert.True(t, Config{JWTSecret: "s", AdminPasswordHash: "h"}.AdminAuthConfigured())
}

func TestLoadCacheConfig(t *testing.T) {
	t.Setenv("CACHE_TTL", "45s")
	t.Setenv("CACHE_METHODS", "get, head")
	t.Setenv("CACHE_KEY_STRATEGY", "")

	cfg := LoadCacheConfig()
	assert.Equal(t, 45*time.Second, cfg.TTL)
	assert.Equal(t, map[string]bool{"GET": true, "HEAD": true}, cfg.Methods)
	assert.Equal(t, "lookup", cfg.KeyStrategy)
	assert.Equal(t, "seatcache", cfg.Prefix)
}

func TestLoadRateLimitConfig_Clamps(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg := LoadRateLimitConfig()
	assert.Equal(t, 1, cfg.Capacity)
	assert.Equal(t, 2*time.Second, cfg.RefillInterval)
	assert.Equal(t, 10*time.Second, cfg.TTL, "TTL is raised to five refill intervals")
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("X_BOOL", "off")
	t.Setenv("X_INT", "nope")
	assert.False(t, envBool("X_BOOL", true))
	assert.Equal(t, 9, envInt("X_INT", 9))
	assert.Equal(t, "d", envStr("X_MISSING_FOR_TEST", "d"))
}

func TestRedisDisabled(t *testing.T) {
	t.Setenv("REDIS_ENABLED", "false")
	assert.Nil(t, NewRedisClient())
}

func TestRedisOptions(t *testing.T) {
	t.Setenv("REDIS_URL", "")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("REDIS_DB", "2")

	opts, err := redisOptions()
	assert.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)

	t.Setenv("REDIS_URL", "redis://:pw@other:6379/4")
	opts, err = redisOptions()
	assert.NoError(t, err)
	assert.Equal(t, "other:6379", opts.Addr)
	assert.Equal(t, 4, opts.DB)
	assert.Equal(t, "pw", opts.Password)
}

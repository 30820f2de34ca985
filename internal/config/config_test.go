package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"ENV", "PORT", "DB_DRIVER", "IDEMPOTENCY_TTL", "DB_LOCK_TIMEOUT", "CORS_ORIGINS", "RATE_LIMIT_MAX"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, time.Hour, cfg.IdempotencyTTL)
	assert.Equal(t, 5*time.Second, cfg.DB.LockTimeout)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, "*", cfg.HTTP.CORSOrigins)
	assert.Zero(t, cfg.HTTP.RateLimitMax)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("DB_LOCK_TIMEOUT", "750ms")
	t.Setenv("IDEMPOTENCY_TTL", "120")
	t.Setenv("REDIS_DB", "3")

	cfg := Load()

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "memory", cfg.DB.Driver)
	assert.Equal(t, 750*time.Millisecond, cfg.DB.LockTimeout)
	assert.Equal(t, 2*time.Minute, cfg.IdempotencyTTL)
	assert.Equal(t, 3, cfg.Redis.DB)
}

func TestGetDurationEnv_InvalidFallsBack(t *testing.T) {
	t.Setenv("SOME_TIMEOUT", "soon")
	assert.Equal(t, time.Second, GetDurationEnv("SOME_TIMEOUT", time.Second))
}

func TestDBConfig_DSN(t *testing.T) {
	c := DBConfig{Host: "db", User: "u", Password: "p", Name: "n", Port: "5433", SSLMode: "disable"}
	assert.Equal(t, "host=db user=u password=p dbname=n port=5433 sslmode=disable", c.DSN())
}

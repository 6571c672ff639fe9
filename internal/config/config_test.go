// internal/config/config_test.go
package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"ADDR", "LOG_LEVEL", "REDIS_ADDR", "REDIS_DB", "HISTORY_QUEUE", "DATABASE_URL"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Empty(t, cfg.HistoryQueue)
	assert.Empty(t, cfg.DatabaseURL)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("ADDR", ":9999")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("DATABASE_URL", "postgres://localhost/kabo")

	cfg := Load()
	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, "postgres://localhost/kabo", cfg.DatabaseURL)
}

func TestLoadBadIntFallsBack(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")
	cfg := Load()
	assert.Equal(t, 0, cfg.RedisDB)
}

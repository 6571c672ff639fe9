// internal/config/config.go
package config

import (
	"os"
	"strconv"
)

// Config is the process configuration, read once at startup. Every field
// has a sensible default so the server runs with no environment at all;
// Redis history and the Postgres archive stay disabled until their
// addresses are provided.
type Config struct {
	Addr         string // listen address, e.g. ":8080"
	LogLevel     string // logrus level name
	RedisAddr    string // empty disables the action-history publisher
	RedisDB      int
	HistoryQueue string // Redis list name for action records
	DatabaseURL  string // empty disables the round-result archive
}

// Load reads configuration from the environment (godotenv has already
// folded any .env file in by the time main calls this).
func Load() Config {
	return Config{
		Addr:         getEnv("ADDR", ":8080"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		RedisAddr:    getEnv("REDIS_ADDR", ""),
		RedisDB:      getEnvInt("REDIS_DB", 0),
		HistoryQueue: getEnv("HISTORY_QUEUE", ""),
		DatabaseURL:  getEnv("DATABASE_URL", ""),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

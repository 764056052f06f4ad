// Package config reads runtime configuration from the environment once at
// startup. All values are passive inputs to the bootstrap layer.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the server configuration settings.
type Config struct {
	Host           string
	Port           string
	AllowedOrigins []string
	PingInterval   time.Duration
	PongWait       time.Duration
	MaxMessageSize int64
	LogCapacity    int
	DBPath         string
}

// Load reads SOCKETHUB_* environment variables and returns a populated
// Config with defaults applied.
func Load() Config {
	return Config{
		Host:           getEnv("SOCKETHUB_HOST", "0.0.0.0"),
		Port:           getEnv("SOCKETHUB_PORT", "5556"),
		AllowedOrigins: splitAndTrim(getEnv("SOCKETHUB_CORS_ORIGINS", "*")),
		PingInterval:   getEnvSeconds("SOCKETHUB_PING_INTERVAL", 25),
		PongWait:       getEnvSeconds("SOCKETHUB_PING_TIMEOUT", 60),
		MaxMessageSize: int64(getEnvInt("SOCKETHUB_MAX_MESSAGE_SIZE", 1000000)),
		LogCapacity:    getEnvInt("SOCKETHUB_LOG_CAPACITY", 500),
		DBPath:         getEnv("SOCKETHUB_DB_PATH", "data/sessions.db"),
	}
}

// Addr returns the host:port bind address.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// AllowAllOrigins reports whether the origin allow-list is the wildcard.
func (c Config) AllowAllOrigins() bool {
	for _, origin := range c.AllowedOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// OriginAllowed reports whether origin is in the allow-list.
func (c Config) OriginAllowed(origin string) bool {
	if c.AllowAllOrigins() {
		return true
	}
	for _, allowed := range c.AllowedOrigins {
		if allowed == origin {
			return true
		}
	}
	return false
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvSeconds(key string, defaultValue int) time.Duration {
	return time.Duration(getEnvInt(key, defaultValue)) * time.Second
}

func splitAndTrim(input string) []string {
	raw := strings.Split(input, ",")
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

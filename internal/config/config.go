package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Backend   BackendConfig
	Redis     RedisConfig
	Session   SessionConfig
	RateLimit RateLimitConfig
	CLI       CLIConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	Secure       bool   // Use HTTPS-only cookies
	Environment  string // "development", "production", "test"
	Debug        bool
	TemplatesDir string
}

type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type SessionConfig struct {
	TTL         time.Duration
	InFlightTTL time.Duration
}

type RateLimitConfig struct {
	AuthAttempts int64
	AuthWindow   time.Duration
}

type CLIConfig struct {
	SessionFile string
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first; variables already set in the environment win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnvInt("SERVER_PORT", 3000),
			Secure:       getEnvBool("SERVER_SECURE", false),
			Environment:  getEnv("APP_ENV", "development"),
			Debug:        getEnvBool("DEBUG", false),
			TemplatesDir: getEnvNonEmpty("TEMPLATES_DIR", "web/templates"),
		},
		Backend: BackendConfig{
			BaseURL: strings.TrimRight(getEnvNonEmpty("PLUSONE_API_URL", "http://localhost:8080/api"), "/"),
			Timeout: getEnvDuration("PLUSONE_API_TIMEOUT", 10*time.Second),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Session: SessionConfig{
			TTL:         getEnvDuration("SESSION_TTL", 7*24*time.Hour),
			InFlightTTL: getEnvDuration("INFLIGHT_TTL", 15*time.Second),
		},
		RateLimit: RateLimitConfig{
			AuthAttempts: int64(getEnvInt("AUTH_RATE_LIMIT", 20)),
			AuthWindow:   getEnvDuration("AUTH_RATE_WINDOW", 15*time.Minute),
		},
		CLI: CLIConfig{
			SessionFile: getEnvNonEmpty("PLUSONE_SESSION_FILE", defaultSessionFile()),
		},
	}

	if _, err := url.ParseRequestURI(cfg.Backend.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid PLUSONE_API_URL %q: %w", cfg.Backend.BaseURL, err)
	}

	return cfg, nil
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".plusone-session.yaml"
	}
	return filepath.Join(dir, "plusone", "session.yaml")
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvNonEmpty(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		if strings.TrimSpace(value) != "" {
			return value
		}
		return defaultValue
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service configuration
type Config struct {
	Service   ServiceConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Cache     CacheConfig
	Events    EventsConfig
	RateLimit RateLimitConfig
	Scheduler SchedulerConfig
	Auth      AuthConfig
	Telemetry TelemetryConfig
}

// ServiceConfig holds service-specific settings
type ServiceConfig struct {
	Name           string
	Port           int
	Environment    string
	LogLevel       string
	LogFormat      string
	AllowedOrigins []string
}

// DatabaseConfig holds Postgres connection settings
type DatabaseConfig struct {
	Host        string
	Port        int
	Database    string
	User        string
	Password    string
	MaxConns    int
	MinConns    int
	MaxIdleTime time.Duration
	MaxLifetime time.Duration
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// CacheConfig holds settings for the read-through collection cache
type CacheConfig struct {
	Backend    string // "memory" or "redis"
	SizeMB     int    // memory backend only
	DefaultTTL time.Duration
	KeyPrefix  string
}

// EventsConfig holds domain event stream settings
type EventsConfig struct {
	Backend   string // "memory" for single-process dev, "redis" for production
	Stream    string
	MaxLen    int64 // approximate stream trim length, 0 = unbounded
	BatchSize int64
	Block     time.Duration
}

// RateLimitConfig holds write rate limiting settings
type RateLimitConfig struct {
	Enabled     bool
	GlobalLimit int64
	WindowSec   int
}

// SchedulerConfig holds background sweep settings
type SchedulerConfig struct {
	Enabled              bool
	SubscriptionInterval time.Duration
	SeasonInterval       time.Duration
}

// AuthConfig holds identity settings for the gateway-fronted API
type AuthConfig struct {
	InternalToken string // shared secret for service-to-service calls, bypasses rate limits
}

// TelemetryConfig holds observability settings
type TelemetryConfig struct {
	EnablePprof bool
	PprofPort   int
}

// Load loads configuration from environment variables
func Load(serviceName string) (*Config, error) {
	cfg := &Config{
		Service: ServiceConfig{
			Name:           serviceName,
			Port:           getEnvInt("PORT", 8080),
			Environment:    getEnv("ENVIRONMENT", "development"),
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			LogFormat:      getEnv("LOG_FORMAT", "text"), // Default to text for development
			AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Host:        getEnv("POSTGRES_HOST", "localhost"),
			Port:        getEnvInt("POSTGRES_PORT", 5432),
			Database:    getEnv("POSTGRES_DB", "alliance"),
			User:        getEnv("POSTGRES_USER", "alliance"),
			Password:    getEnv("POSTGRES_PASSWORD", "alliance"),
			MaxConns:    getEnvInt("POSTGRES_MAX_CONNS", 50),
			MinConns:    getEnvInt("POSTGRES_MIN_CONNS", 10),
			MaxIdleTime: getEnvDuration("POSTGRES_MAX_IDLE_TIME", 30*time.Minute),
			MaxLifetime: getEnvDuration("POSTGRES_MAX_LIFETIME", 1*time.Hour),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Cache: CacheConfig{
			Backend:    getEnv("CACHE_BACKEND", "memory"),
			SizeMB:     getEnvInt("CACHE_SIZE_MB", 256),
			DefaultTTL: getEnvDuration("CACHE_DEFAULT_TTL", 5*time.Minute),
			KeyPrefix:  getEnv("CACHE_KEY_PREFIX", "alliance"),
		},
		Events: EventsConfig{
			Backend:   getEnv("EVENTS_BACKEND", "memory"),
			Stream:    getEnv("EVENTS_STREAM", "alliance:events"),
			MaxLen:    int64(getEnvInt("EVENTS_STREAM_MAXLEN", 100000)),
			BatchSize: int64(getEnvInt("EVENTS_BATCH_SIZE", 64)),
			Block:     getEnvDuration("EVENTS_BLOCK", 5*time.Second),
		},
		RateLimit: RateLimitConfig{
			Enabled:     getEnvBool("RATE_LIMIT_ENABLED", true),
			GlobalLimit: int64(getEnvInt("RATE_LIMIT_GLOBAL", 1000)),
			WindowSec:   getEnvInt("RATE_LIMIT_WINDOW_SEC", 60),
		},
		Scheduler: SchedulerConfig{
			Enabled:              getEnvBool("SCHEDULER_ENABLED", true),
			SubscriptionInterval: getEnvDuration("SUBSCRIPTION_SWEEP_INTERVAL", 1*time.Hour),
			SeasonInterval:       getEnvDuration("SEASON_SWEEP_INTERVAL", 15*time.Minute),
		},
		Auth: AuthConfig{
			InternalToken: getEnv("INTERNAL_TOKEN", ""),
		},
		Telemetry: TelemetryConfig{
			EnablePprof: getEnvBool("ENABLE_PPROF", true),
			PprofPort:   getEnvInt("PPROF_PORT", 6060),
		},
	}

	return cfg, cfg.Validate()
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.Service.Port < 1 || c.Service.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Service.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.MaxConns < c.Database.MinConns {
		return fmt.Errorf("max_conns must be >= min_conns")
	}

	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown cache backend: %s", c.Cache.Backend)
	}

	switch c.Events.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown events backend: %s", c.Events.Backend)
	}

	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}

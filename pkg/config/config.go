package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Application settings
type Config struct {
	Server   ServerConfig
	Logging  LoggingConfig
	Upstream UpstreamConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Share    ShareConfig
}

// Server settings
type ServerConfig struct {
	Port string
}

// Upstream ads platform settings
type UpstreamConfig struct {
	BaseURL            string
	AppID              string
	AppSecret          string
	RequestTimeout     time.Duration
	MaxRetries         int
	RetryBackoff       time.Duration
	RateLimitPerSecond int
}

// PostgreSQL settings
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN returns the PostgreSQL connection string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.DBName, p.SSLMode,
	)
}

// Redis settings
type RedisConfig struct {
	Addr       string
	Password   string
	DB         int
	InsightTTL time.Duration
}

// Share link settings
type ShareConfig struct {
	BaseURL       string
	DefaultExpiry time.Duration
}

// Logging settings
type LoggingConfig struct {
	Level string
}

func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Upstream: UpstreamConfig{
			BaseURL:            getEnv("ADS_API_URL", "https://graph.facebook.com/v19.0"),
			AppID:              getEnv("ADS_APP_ID", ""),
			AppSecret:          getEnv("ADS_APP_SECRET", ""),
			RequestTimeout:     getDurationEnv("REQUEST_TIMEOUT", "30s"),
			MaxRetries:         getIntEnv("MAX_RETRIES", 3),
			RetryBackoff:       getDurationEnv("RETRY_BACKOFF", "2s"),
			RateLimitPerSecond: getIntEnv("RATE_LIMIT_PER_SECOND", 10),
		},
		Postgres: PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getIntEnv("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "adsboard"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			DBName:   getEnv("POSTGRES_DB", "adsboard"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:       getEnv("REDIS_ADDR", "localhost:6379"),
			Password:   getEnv("REDIS_PASSWORD", ""),
			DB:         getIntEnv("REDIS_DB", 0),
			InsightTTL: getDurationEnv("INSIGHT_CACHE_TTL", "5m"),
		},
		Share: ShareConfig{
			BaseURL:       getEnv("SHARE_BASE_URL", "http://localhost:8080"),
			DefaultExpiry: getDurationEnv("SHARE_DEFAULT_EXPIRY", "24h"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue string) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}

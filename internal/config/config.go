package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	DatabaseURL    string
	DBMaxOpenConns int

	JWTSecret      string
	AccessTokenTTL time.Duration

	WeatherBaseURL  string
	WeatherTimeout  time.Duration
	WeatherRetryMax int

	FirstSuperuserEmail    string
	FirstSuperuserPassword string

	// Audit event publishing; disabled when no brokers are configured.
	KafkaBrokers    []string
	KafkaAuditTopic string
}

// AuditEnabled reports whether entity mutation events should be published.
func (c *Config) AuditEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// Load reads configuration from the environment, applying defaults where
// unset. A .env file in the working directory is merged in first for local
// development; absence is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	accessTokenTTL, err := parseDuration("ACCESS_TOKEN_TTL", "192h") // 8 days
	if err != nil {
		return nil, err
	}
	weatherTimeout, err := parseDuration("WEATHER_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	weatherRetryMax, err := parseInt("WEATHER_RETRY_MAX", 3)
	if err != nil {
		return nil, err
	}
	dbMaxOpenConns, err := parseInt("DB_MAX_OPEN_CONNS", 10)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DBMaxOpenConns: dbMaxOpenConns,

		JWTSecret:      os.Getenv("JWT_SECRET"),
		AccessTokenTTL: accessTokenTTL,

		WeatherBaseURL:  envOrDefault("WEATHER_BASE_URL", "https://api-open.data.gov.sg/v2/real-time/api"),
		WeatherTimeout:  weatherTimeout,
		WeatherRetryMax: weatherRetryMax,

		FirstSuperuserEmail:    os.Getenv("FIRST_SUPERUSER_EMAIL"),
		FirstSuperuserPassword: os.Getenv("FIRST_SUPERUSER_PASSWORD"),

		KafkaBrokers:    parseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaAuditTopic: envOrDefault("KAFKA_AUDIT_TOPIC", "gateway-audit-events"),
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if cfg.FirstSuperuserEmail != "" && cfg.FirstSuperuserPassword == "" {
		return nil, errors.New("FIRST_SUPERUSER_EMAIL is set but FIRST_SUPERUSER_PASSWORD is not")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func parseBrokers(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}

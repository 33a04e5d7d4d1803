package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	Server   ServerConfig
	Logger   LoggerConfig
	Postgres PostgresConfig
	JWT      JWTConfig
}

type ServerConfig struct {
	AppEnv         string `validate:"required,oneof=dev staging prod"`
	Port           string `validate:"required,numeric"`
	RequestTimeout time.Duration
	// StoreBaseURL prefixes store slugs to build public store links.
	StoreBaseURL string `validate:"omitempty,url"`
}

type LoggerConfig struct {
	Level    string `validate:"required,oneof=debug info warn error"`
	Encoding string `validate:"required,oneof=json console"`
}

type PostgresConfig struct {
	URL          string `validate:"required"`
	MaxOpenConns int    `validate:"min=1"`
	MaxIdleConns int    `validate:"min=0"`
}

type JWTConfig struct {
	Secret string `validate:"required,min=8"`
	TTL    time.Duration
}

// Load reads configuration from the environment. Call godotenv.Load first to
// pick up a local .env file.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			AppEnv:         getEnv("APP_ENV", "dev"),
			Port:           getEnv("APP_PORT", "8080"),
			RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", 15)) * time.Second,
			StoreBaseURL:   getEnv("STORE_BASE_URL", ""),
		},
		Logger: LoggerConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			Encoding: getEnv("LOG_ENCODING", "json"),
		},
		Postgres: PostgresConfig{
			URL:          getEnv("DATABASE_URL", ""),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
			TTL:    time.Duration(getEnvInt("JWT_TTL_HOURS", 24)) * time.Hour,
		},
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// IsDevelopment reports whether the service runs with development defaults.
func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "dev"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

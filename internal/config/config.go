package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const defaultDSN = "host=localhost user=postgres password=postgres dbname=buffet port=5432 sslmode=disable"

type Config struct {
	HTTPPort    string
	AppEnv      string // development | production
	LogLevel    string
	DatabaseDSN string
	JWTSecret   string
	CORSOrigins string

	DBTimeout      time.Duration // bound applied to every storage call
	DBMaxOpenConns int
	Location       *time.Location // calendar used for month/year boundaries
}

// Load reads the configuration from the environment. A .env file in the
// working directory is honoured when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		AppEnv:      getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		DatabaseDSN: getEnv("DATABASE_DSN", defaultDSN),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		CORSOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
	}

	var err error
	if cfg.DBTimeout, err = time.ParseDuration(getEnv("DB_TIMEOUT", "5s")); err != nil {
		return nil, fmt.Errorf("DB_TIMEOUT: %w", err)
	}
	if cfg.DBTimeout <= 0 {
		return nil, errors.New("DB_TIMEOUT must be positive")
	}
	if cfg.DBMaxOpenConns, err = strconv.Atoi(getEnv("DB_MAX_OPEN_CONNS", "25")); err != nil {
		return nil, fmt.Errorf("DB_MAX_OPEN_CONNS: %w", err)
	}
	if cfg.Location, err = time.LoadLocation(getEnv("APP_TIMEZONE", "Local")); err != nil {
		return nil, fmt.Errorf("APP_TIMEZONE: %w", err)
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}
	if len(cfg.JWTSecret) < 32 {
		return nil, errors.New("JWT_SECRET must be at least 32 characters")
	}

	return cfg, nil
}

// UsesDefaultDSN is true when DATABASE_DSN was left at the local development value.
func (c *Config) UsesDefaultDSN() bool {
	return c.DatabaseDSN == defaultDSN
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

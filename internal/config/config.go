package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort string
	AppBaseURL string
	Debug      bool

	// Document store
	StoreBackend   string // "sql" or "redis"
	DatabaseType   string // "sqlite", "postgres", "mysql"
	DatabasePath   string
	DatabaseURL    string
	MigrationsPath string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int

	// Stored documents older than this are pruned; zero disables pruning.
	DocumentMaxAge time.Duration

	// Secret Santa reveal tokens
	TokenSecret   string
	TokenDuration time.Duration

	// Email (Amazon SES)
	AWSRegion    string
	SESFromEmail string
	SESFromName  string
}

// Load reads configuration from environment variables with sensible defaults
func Load() *Config {
	// Optional .env for local development; ignored if absent
	_ = godotenv.Load()

	return &Config{
		ServerPort:     getEnv("PORT", "8080"),
		AppBaseURL:     getEnv("APP_BASE_URL", "http://localhost:8080"),
		Debug:          getEnvBool("DEBUG", false),
		StoreBackend:   getEnv("STORE_BACKEND", "sql"),
		DatabaseType:   getEnv("DB_TYPE", "sqlite"),
		DatabasePath:   getEnv("DB_PATH", "./partyplan.db"),
		DatabaseURL:    getEnv("DB_URL", ""),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),
		RedisAddr:      getEnv("REDIS_ADDR", ""),
		RedisPassword:  getEnv("REDIS_PASS", ""),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		DocumentMaxAge: getEnvDuration("DOCUMENT_MAX_AGE", 90*24*time.Hour),
		TokenSecret:    getEnv("TOKEN_SECRET", ""),
		TokenDuration:  getEnvDuration("TOKEN_DURATION", 60*24*time.Hour),
		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		SESFromEmail:   getEnv("SES_FROM_EMAIL", ""),
		SESFromName:    getEnv("SES_FROM_NAME", "Party Plan"),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt reads an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvBool reads a boolean environment variable or returns a default value
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvDuration reads a duration environment variable or returns a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

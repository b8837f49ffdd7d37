package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// App holds the active configuration after LoadConfig succeeds.
var App *Config

// Config holds all configuration for the application
type Config struct {
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	JWTSecret     string
	SessionSecret string
	Port          string
	Env           string

	// Password rotation policy
	RotateAfter        time.Duration
	WarnAfter          time.Duration
	HistoryCount       int
	MaxSimilarityRatio int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && os.Getenv("ENV") == "" {
		return nil, fmt.Errorf("error loading .env file: %v", err)
	}

	config := &Config{
		DBHost:        os.Getenv("DB_HOST"),
		DBPort:        os.Getenv("DB_PORT"),
		DBUser:        os.Getenv("DB_USER"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBName:        os.Getenv("DB_NAME"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		Port:          os.Getenv("PORT"),
		Env:           os.Getenv("ENV"),
	}

	rotateSeconds, err := requiredInt("ROTATE_AFTER_SECONDS")
	if err != nil {
		return nil, err
	}
	warnSeconds, err := requiredInt("WARN_AFTER_SECONDS")
	if err != nil {
		return nil, err
	}
	if warnSeconds > rotateSeconds {
		return nil, fmt.Errorf("WARN_AFTER_SECONDS must not exceed ROTATE_AFTER_SECONDS")
	}

	config.RotateAfter = time.Duration(rotateSeconds) * time.Second
	config.WarnAfter = time.Duration(warnSeconds) * time.Second
	config.HistoryCount = optionalInt("PASSWORD_HISTORY_COUNT", 3)
	config.MaxSimilarityRatio = optionalInt("MAX_SIMILARITY_RATIO", 70)

	App = config
	return config, nil
}

func requiredInt(key string) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer, got %q", key, raw)
	}
	return value, nil
}

func optionalInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}

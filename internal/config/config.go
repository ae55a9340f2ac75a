package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL        string
	Port               string
	LimitedThreshold   float64
	CompletionCronSpec string
	CORSAllowedOrigins []string
}

// Load reads configuration from the environment, picking up a local .env file
// when present.
func Load() (*Config, error) {
	godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL not set")
	}

	return &Config{
		DatabaseURL:        dbURL,
		Port:               getEnvOrDefault("PORT", "8080"),
		LimitedThreshold:   getEnvAsFloatOrDefault("RESERVATION_LIMITED_THRESHOLD", 0.2),
		CompletionCronSpec: getEnvOrDefault("COMPLETION_CRON", "0 3 * * *"),
		CORSAllowedOrigins: strings.Split(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "*"), ","),
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	log.Printf("Environment variable %s is not set, using default value", key)
	return defaultValue
}

func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

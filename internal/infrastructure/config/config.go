// internal/infrastructure/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Extractor modes
const (
	ExtractorRules = "rules"
	ExtractorLLM   = "llm"
)

// Config holds all configuration for the application
type Config struct {
	// App
	AppVersion string

	// Server
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// PostgreSQL (booking ledger)
	PostgresURI string

	// MongoDB (conversation transcripts)
	MongoURI      string
	MongoDB       string
	MongoUser     string
	MongoPassword string

	// Google Calendar
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRefreshToken string
	GoogleCalendarID   string

	// Slot extraction
	ExtractorMode string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	// Assistant behavior
	HistoryLimit int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	// Set defaults and override with env vars
	config := &Config{
		AppVersion:   getEnv("APP_VERSION", "1.0.0"),
		Port:         getEnv("PORT", "8080"),
		ReadTimeout:  time.Duration(getEnvAsInt("READ_TIMEOUT", 30)) * time.Second,
		WriteTimeout: time.Duration(getEnvAsInt("WRITE_TIMEOUT", 30)) * time.Second,

		PostgresURI: getEnv("POSTGRES_DSN", "postgres://localhost:5432/calassist"),

		MongoURI:      getEnv("MONGODB_DSN", "mongodb://localhost:27017"),
		MongoDB:       getEnv("MONGO_DB", "calassist"),
		MongoUser:     getEnv("MONGO_USER", ""),
		MongoPassword: getEnv("MONGO_PASSWORD", ""),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRefreshToken: getEnv("GOOGLE_REFRESH_TOKEN", ""),
		GoogleCalendarID:   getEnv("GOOGLE_CALENDAR_ID", "primary"),

		ExtractorMode: getEnv("EXTRACTOR_MODE", ExtractorRules),
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),

		HistoryLimit: getEnvAsInt("HISTORY_LIMIT", 20),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks settings that must be present before the service can start.
// A missing credential here aborts startup instead of degrading per-request.
func (c *Config) Validate() error {
	switch c.ExtractorMode {
	case ExtractorRules:
	case ExtractorLLM:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("EXTRACTOR_MODE=%s requires OPENAI_API_KEY", ExtractorLLM)
		}
	default:
		return fmt.Errorf("unknown EXTRACTOR_MODE: %s", c.ExtractorMode)
	}
	return nil
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

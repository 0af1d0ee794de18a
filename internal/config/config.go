package config

import (
	"os"
	"strconv"
	"time"

	"bookmarks/internal/logger"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Port            int           `json:"port"`
	DatabasePath    string        `json:"database_path"`
	Environment     string        `json:"environment"`
	StaticDir       string        `json:"static_dir"`
	BingAPIURL      string        `json:"bing_api_url"`
	BingBaseURL     string        `json:"bing_base_url"`
	ImageCacheTTL   time.Duration `json:"image_cache_ttl"`
	DefaultPageSize int           `json:"default_page_size"`
	DefaultUser     string        `json:"default_user"`
	Logging         logger.Config `json:"logging"`
}

// DefaultBingAPIURL is the image-of-the-day archive endpoint
const DefaultBingAPIURL = "https://www.bing.com/HPImageArchive.aspx?format=js&idx=0&n=1&mkt=en-US"

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnvAsInt("PORT", 8080),
		DatabasePath:    getEnv("DATABASE_PATH", "bookmarks.db"),
		Environment:     getEnv("ENVIRONMENT", "development"),
		StaticDir:       getEnv("STATIC_DIR", "public"),
		BingAPIURL:      getEnv("BING_API_URL", DefaultBingAPIURL),
		BingBaseURL:     getEnv("BING_BASE_URL", "https://www.bing.com"),
		ImageCacheTTL:   getEnvAsDuration("IMAGE_CACHE_TTL", 24*time.Hour),
		DefaultPageSize: getEnvAsInt("DEFAULT_PAGE_SIZE", 20),
		DefaultUser:     getEnv("DEFAULT_USER", "default"),
		Logging: logger.Config{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", ""),
		},
	}

	// Structured logs outside development unless asked otherwise
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
		if cfg.IsDevelopment() {
			cfg.Logging.Format = "text"
		}
	}

	return cfg, nil
}

// IsDevelopment reports whether the app runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getEnvAsInt gets an environment variable as integer with a fallback value
func getEnvAsInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvAsDuration parses values like "24h" or "90m"
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

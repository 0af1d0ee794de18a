package config

import (
	"testing"
	"time"

	"bookmarks/internal/logger"
)

var configKeys = []string{
	"PORT",
	"DATABASE_PATH",
	"ENVIRONMENT",
	"STATIC_DIR",
	"BING_API_URL",
	"BING_BASE_URL",
	"IMAGE_CACHE_TTL",
	"DEFAULT_PAGE_SIZE",
	"DEFAULT_USER",
	"LOG_LEVEL",
	"LOG_FORMAT",
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		expected *Config
	}{
		{
			name:    "default values",
			envVars: map[string]string{},
			expected: &Config{
				Port:            8080,
				DatabasePath:    "bookmarks.db",
				Environment:     "development",
				StaticDir:       "public",
				BingAPIURL:      DefaultBingAPIURL,
				ImageCacheTTL:   24 * time.Hour,
				DefaultPageSize: 20,
				DefaultUser:     "default",
				Logging:         logger.Config{Level: "info", Format: "text"},
			},
		},
		{
			name: "custom values from environment",
			envVars: map[string]string{
				"PORT":              "9090",
				"DATABASE_PATH":     "/data/bookmarks.sqlite",
				"ENVIRONMENT":       "production",
				"STATIC_DIR":        "/srv/www",
				"BING_API_URL":      "http://images.internal/archive",
				"IMAGE_CACHE_TTL":   "2h",
				"DEFAULT_PAGE_SIZE": "50",
				"DEFAULT_USER":      "alice",
			},
			expected: &Config{
				Port:            9090,
				DatabasePath:    "/data/bookmarks.sqlite",
				Environment:     "production",
				StaticDir:       "/srv/www",
				BingAPIURL:      "http://images.internal/archive",
				ImageCacheTTL:   2 * time.Hour,
				DefaultPageSize: 50,
				DefaultUser:     "alice",
				Logging:         logger.Config{Level: "info", Format: "json"},
			},
		},
		{
			name: "explicit log format outside development",
			envVars: map[string]string{
				"ENVIRONMENT": "production",
				"LOG_LEVEL":   "debug",
				"LOG_FORMAT":  "text",
			},
			expected: &Config{
				Port:            8080,
				DatabasePath:    "bookmarks.db",
				Environment:     "production",
				StaticDir:       "public",
				BingAPIURL:      DefaultBingAPIURL,
				ImageCacheTTL:   24 * time.Hour,
				DefaultPageSize: 20,
				DefaultUser:     "default",
				Logging:         logger.Config{Level: "debug", Format: "text"},
			},
		},
		{
			name: "invalid values fall back to defaults",
			envVars: map[string]string{
				"PORT":            "invalid",
				"IMAGE_CACHE_TTL": "one day",
			},
			expected: &Config{
				Port:            8080,
				DatabasePath:    "bookmarks.db",
				Environment:     "development",
				StaticDir:       "public",
				BingAPIURL:      DefaultBingAPIURL,
				ImageCacheTTL:   24 * time.Hour,
				DefaultPageSize: 20,
				DefaultUser:     "default",
				Logging:         logger.Config{Level: "info", Format: "text"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range configKeys {
				t.Setenv(key, "")
			}
			for key, value := range tt.envVars {
				t.Setenv(key, value)
			}

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}

			if cfg.Port != tt.expected.Port {
				t.Errorf("Load() Port = %v, want %v", cfg.Port, tt.expected.Port)
			}
			if cfg.DatabasePath != tt.expected.DatabasePath {
				t.Errorf("Load() DatabasePath = %v, want %v", cfg.DatabasePath, tt.expected.DatabasePath)
			}
			if cfg.Environment != tt.expected.Environment {
				t.Errorf("Load() Environment = %v, want %v", cfg.Environment, tt.expected.Environment)
			}
			if cfg.StaticDir != tt.expected.StaticDir {
				t.Errorf("Load() StaticDir = %v, want %v", cfg.StaticDir, tt.expected.StaticDir)
			}
			if cfg.BingAPIURL != tt.expected.BingAPIURL {
				t.Errorf("Load() BingAPIURL = %v, want %v", cfg.BingAPIURL, tt.expected.BingAPIURL)
			}
			if cfg.ImageCacheTTL != tt.expected.ImageCacheTTL {
				t.Errorf("Load() ImageCacheTTL = %v, want %v", cfg.ImageCacheTTL, tt.expected.ImageCacheTTL)
			}
			if cfg.DefaultPageSize != tt.expected.DefaultPageSize {
				t.Errorf("Load() DefaultPageSize = %v, want %v", cfg.DefaultPageSize, tt.expected.DefaultPageSize)
			}
			if cfg.DefaultUser != tt.expected.DefaultUser {
				t.Errorf("Load() DefaultUser = %v, want %v", cfg.DefaultUser, tt.expected.DefaultUser)
			}
			if cfg.Logging != tt.expected.Logging {
				t.Errorf("Load() Logging = %+v, want %+v", cfg.Logging, tt.expected.Logging)
			}
		})
	}
}

func TestGetEnvAsInt(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		expected int
	}{
		{name: "valid integer", envValue: "9090", expected: 9090},
		{name: "invalid integer", envValue: "invalid", expected: 8080},
		{name: "empty value", envValue: "", expected: 8080},
		{name: "zero", envValue: "0", expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_INT", tt.envValue)

			if result := getEnvAsInt("TEST_INT", 8080); result != tt.expected {
				t.Errorf("getEnvAsInt() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestGetEnvAsDuration(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		expected time.Duration
	}{
		{name: "valid duration", envValue: "90m", expected: 90 * time.Minute},
		{name: "not a duration", envValue: "tomorrow", expected: time.Hour},
		{name: "negative duration", envValue: "-5m", expected: time.Hour},
		{name: "empty value", envValue: "", expected: time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_DURATION", tt.envValue)

			if result := getEnvAsDuration("TEST_DURATION", time.Hour); result != tt.expected {
				t.Errorf("getEnvAsDuration() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestConfig_IsDevelopment(t *testing.T) {
	if !(&Config{Environment: "development"}).IsDevelopment() {
		t.Error("development config should report IsDevelopment")
	}
	if (&Config{Environment: "production"}).IsDevelopment() {
		t.Error("production config should not report IsDevelopment")
	}
}

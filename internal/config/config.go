// Package config reads the application configuration from environment
// variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the configuration for the application.
type Config struct {
	ListenAddr   string
	BackendURL   string
	GeminiAPIKey string
	GeminiModel  string
	DatabaseURL  string
	PrefsPath    string

	MaxAttempts int
	BaseDelay   time.Duration
}

// NewFromEnv creates a Config from environment variables. Exactly one
// analysis provider is required: a backend URL, or a Gemini API key for
// the direct variant.
func NewFromEnv() (*Config, error) {
	cfg := &Config{
		ListenAddr:   getenv("LISTEN_ADDR", ":8080"),
		BackendURL:   os.Getenv("ANALYZER_BACKEND_URL"),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getenv("GEMINI_MODEL", "gemini-1.5-flash"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		PrefsPath:    getenv("PREFS_PATH", "data/prefs.json"),
		MaxAttempts:  3,
		BaseDelay:    time.Second,
	}

	if cfg.BackendURL == "" && cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("neither ANALYZER_BACKEND_URL nor GEMINI_API_KEY environment variable is set")
	}

	if v := os.Getenv("ANALYZER_MAX_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid ANALYZER_MAX_ATTEMPTS %q", v)
		}
		cfg.MaxAttempts = n
	}
	if v := os.Getenv("ANALYZER_BASE_DELAY_MS"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil || ms < 1 {
			return nil, fmt.Errorf("invalid ANALYZER_BASE_DELAY_MS %q", v)
		}
		cfg.BaseDelay = time.Duration(ms) * time.Millisecond
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config keeps runtime settings for the server.
type Config struct {
	HTTPAddr       string
	DatabaseURL    string
	JWTSecret      string
	TokenTTL       time.Duration
	GeminiAPIKey   string
	GeminiModel    string
	UploadDir      string
	PublicBaseURL  string
	DigestInterval time.Duration
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	cfg := Config{
		HTTPAddr:       strings.TrimSpace(os.Getenv("HTTP_ADDR")),
		DatabaseURL:    strings.TrimSpace(os.Getenv("DATABASE_URL")),
		JWTSecret:      strings.TrimSpace(os.Getenv("JWT_SECRET")),
		TokenTTL:       parseHours(strings.TrimSpace(os.Getenv("TOKEN_TTL_HOURS"))),
		GeminiAPIKey:   strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiModel:    strings.TrimSpace(os.Getenv("GEMINI_MODEL")),
		UploadDir:      strings.TrimSpace(os.Getenv("UPLOAD_DIR")),
		PublicBaseURL:  strings.TrimSpace(os.Getenv("PUBLIC_BASE_URL")),
		DigestInterval: parseHours(strings.TrimSpace(os.Getenv("DIGEST_INTERVAL_HOURS"))),
	}

	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "tecelaria.db"
	}
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = 72 * time.Hour
	}
	if cfg.GeminiModel == "" {
		cfg.GeminiModel = "gemini-2.5-flash"
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = "uploads"
	}
	if cfg.PublicBaseURL == "" {
		cfg.PublicBaseURL = "http://localhost:8080"
	}
	if cfg.DigestInterval == 0 {
		cfg.DigestInterval = 24 * time.Hour
	}

	if cfg.JWTSecret == "" {
		return cfg, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func parseHours(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	hours, err := time.ParseDuration(raw + "h")
	if err != nil || hours <= 0 {
		return 0
	}
	return hours
}

package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	ServerPort string
	GinMode    string
	LogLevel   string
	LogFormat  string
	// APIBaseURL is the remote exam API every CRUD call is forwarded to.
	APIBaseURL string
	APITimeout time.Duration
	RedisURL   string
	DraftTTL   time.Duration
	// PDFFontPath points at a TTF font; PDF output is disabled when empty.
	PDFFontPath string
	// AllowedOrigins controls HTTP CORS and WebSocket origin validation.
	// Empty slice means all origins are permitted (dev default).
	AllowedOrigins []string
	RenderRate     int
}

// Load reads configuration from environment variables with sensible defaults.
// It loads .env file if present but does not fail if missing.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "pretty"),
		APIBaseURL:     strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:8000/api/v1"), "/"),
		APITimeout:     time.Duration(getEnvInt("API_TIMEOUT_SECONDS", 15)) * time.Second,
		RedisURL:       getEnv("REDIS_URL", "redis://localhost:6379/0"),
		DraftTTL:       time.Duration(getEnvInt("DRAFT_TTL_HOURS", 72)) * time.Hour,
		PDFFontPath:    getEnv("PDF_FONT_PATH", ""),
		AllowedOrigins: parseOrigins(getEnv("ALLOWED_ORIGINS", "")),
		RenderRate:     getEnvInt("RENDER_RATE_PER_MINUTE", 30),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

// parseOrigins splits a comma-separated origins string into a trimmed slice.
// Returns nil (allow-all) if the input is empty.
func parseOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

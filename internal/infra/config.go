package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv             string
	Port               string
	ExtractorBackend   string
	YtDlpPath          string
	DeliveryMode       string
	StoragePath        string
	GeoIPDBPath        string
	DefaultLocale      string
	CORSAllowedOrigins []string
	JobTimeout         time.Duration
	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               getEnv("PORT", "8080"),
		ExtractorBackend:   strings.ToLower(getEnv("EXTRACTOR_BACKEND", "ytdlp")),
		YtDlpPath:          getEnv("YTDLP_PATH", "yt-dlp"),
		DeliveryMode:       strings.ToLower(getEnv("DELIVERY_MODE", "stream")),
		StoragePath:        getEnv("STORAGE_PATH", "./storage"),
		GeoIPDBPath:        os.Getenv("GEOIP_DB_PATH"),
		DefaultLocale:      strings.ToLower(getEnv("DEFAULT_LOCALE", "en")),
		CORSAllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		JobTimeout:         time.Second * time.Duration(getEnvInt("JOB_TIMEOUT_SECONDS", 300)),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		// Media responses can run for minutes, so writes are unbounded by default.
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 0)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	switch cfg.ExtractorBackend {
	case "ytdlp", "youtube":
	default:
		return nil, fmt.Errorf("EXTRACTOR_BACKEND must be ytdlp or youtube, got %q", cfg.ExtractorBackend)
	}

	switch cfg.DeliveryMode {
	case "stream", "disk":
	default:
		return nil, fmt.Errorf("DELIVERY_MODE must be stream or disk, got %q", cfg.DeliveryMode)
	}

	switch cfg.DefaultLocale {
	case "en", "fr":
	default:
		return nil, fmt.Errorf("DEFAULT_LOCALE must be en or fr, got %q", cfg.DefaultLocale)
	}

	if cfg.JobTimeout <= 0 {
		return nil, fmt.Errorf("JOB_TIMEOUT_SECONDS must be positive")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

package config

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DevSigningKey signs visitor cookies when VISITOR_SIGNING_KEY is unset.
// It is refused in production.
const DevSigningKey = "dev-visitor-secret-change"

// App holds the runtime configuration loaded from environment variables.
type App struct {
	Env                string
	HTTPPort           string
	APIBaseURL         string
	AssetBaseURL       string
	APITimeout         time.Duration
	StorageBackend     string
	RedisAddr          string
	StorageTTL         time.Duration
	VisitorSigningKey  string
	VisitorTTL         time.Duration
	WorkspaceIdleTTL   time.Duration
	SettingsCloseDelay time.Duration
	RateLimitPerMin    int
	MaxUploadMB        int
	LogLevel           slog.Level
}

// Load reads an optional .env file and returns application config populated
// from environment variables with sensible defaults.
func Load() App {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("ignoring .env: %v", err)
	}

	apiBase := strings.TrimRight(getEnv("API_BASE_URL", "https://idbackend-production.up.railway.app"), "/")
	return App{
		Env:                getEnv("APP_ENV", "dev"),
		HTTPPort:           getEnv("HTTP_PORT", "8080"),
		APIBaseURL:         apiBase,
		AssetBaseURL:       strings.TrimRight(getEnv("ASSET_BASE_URL", DefaultAssetBase(apiBase)), "/"),
		APITimeout:         durationEnv("API_TIMEOUT", 0),
		StorageBackend:     getEnv("STORAGE_BACKEND", "memory"),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		StorageTTL:         durationEnv("STORAGE_TTL", 30*24*time.Hour),
		VisitorSigningKey:  getEnv("VISITOR_SIGNING_KEY", DevSigningKey),
		VisitorTTL:         durationEnv("VISITOR_TTL", 30*24*time.Hour),
		WorkspaceIdleTTL:   durationEnv("WORKSPACE_IDLE_TTL", 2*time.Hour),
		SettingsCloseDelay: durationEnv("SETTINGS_CLOSE_DELAY", 2*time.Second),
		RateLimitPerMin:    intEnv("RATE_LIMIT_PER_MIN", 120),
		MaxUploadMB:        intEnv("MAX_UPLOAD_MB", 10),
		LogLevel:           levelEnv("LOG_LEVEL", slog.LevelInfo),
	}
}

// Production reports whether the app runs with production settings.
func (a App) Production() bool {
	return a.Env == "production" || a.Env == "prod"
}

// DefaultAssetBase strips a trailing /api segment from the API base URL;
// uploaded files are served from the host root.
func DefaultAssetBase(apiBase string) string {
	return strings.TrimSuffix(strings.TrimRight(apiBase, "/"), "/api")
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using fallback %s", key, err, fallback)
			return fallback
		}
		return d
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var parsed int
		if _, err := fmt.Sscanf(val, "%d", &parsed); err == nil {
			return parsed
		}
		log.Printf("invalid int for %s, using fallback %d", key, fallback)
	}
	return fallback
}

func levelEnv(key string, fallback slog.Level) slog.Level {
	if val := os.Getenv(key); val != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(val)); err != nil {
			log.Printf("invalid log level for %s, using fallback %s", key, fallback)
			return fallback
		}
		return lvl
	}
	return fallback
}

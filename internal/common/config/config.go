package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ============================================================
// Configuration
// ============================================================

type Config struct {
	Port         string
	Environment  string
	ReadTimeout  int
	WriteTimeout int

	Editor  EditorConfig
	Gateway GatewayConfig
}

type EditorConfig struct {
	DraftsDBPath     string
	MigrationsPath   string
	CatalogDir       string
	AutosaveDebounce time.Duration
	DraftTTL         time.Duration
	DragThrottle     time.Duration
	SessionIdle      time.Duration
	PixelScale       float64
	RulesEnabled     bool
	CautionRatio     float64
	CriticalRatio    float64
}

type GatewayConfig struct {
	EditorURL string
	DocsPath  string
}

// Load reads an optional .env file, then the environment.
func Load() *Config {
	// a missing .env is the normal case outside development
	_ = godotenv.Load()

	return &Config{
		Port:         getEnv("PORT", "3000"),
		Environment:  getEnv("ENV", "development"),
		ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 10),
		WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 10),
		Editor: EditorConfig{
			DraftsDBPath:     getEnv("DRAFTS_DB_PATH", "data/db/drafts.db"),
			MigrationsPath:   getEnv("MIGRATIONS_PATH", "migrations/001_init_drafts.sql"),
			CatalogDir:       getEnv("CATALOG_DIR", "data"),
			AutosaveDebounce: getEnvAsDuration("AUTOSAVE_DEBOUNCE", time.Second),
			DraftTTL:         getEnvAsDuration("DRAFT_TTL", 48*time.Hour),
			DragThrottle:     getEnvAsDuration("DRAG_THROTTLE", 16*time.Millisecond),
			SessionIdle:      getEnvAsDuration("SESSION_IDLE_TIMEOUT", 2*time.Hour),
			PixelScale:       getEnvAsFloat("PIXEL_SCALE", 1),
			RulesEnabled:     getEnvAsBool("RULES_ENABLED", true),
			CautionRatio:     getEnvAsFloat("STACK_CAUTION_RATIO", 0.85),
			CriticalRatio:    getEnvAsFloat("STACK_CRITICAL_RATIO", 0.95),
		},
		Gateway: GatewayConfig{
			EditorURL: getEnv("EDITOR_URL", "http://localhost:3003"),
			DocsPath:  getEnv("DOCS_PATH", "docs/openapi.yaml"),
		},
	}
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsFloat(key string, defaultVal float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultVal
}

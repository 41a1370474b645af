package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries everything the bot needs from the environment.
type Config struct {
	TelegramToken string
	Environment   string

	// Storage
	StorageDriver  string // "file" or "postgres"
	DBDSN          string
	DataDir        string
	MigrationsPath string

	// AI-assisted extraction
	AIProvider string
	AIAPIKey   string
	AIAPIBase  string
	AIModel    string
	AIRetries  int

	// Reminder behaviour
	ReminderLead          time.Duration
	TickInterval          time.Duration
	DailyPreviewTime      string // HH:MM
	EnableReminder        bool
	EnableWeekendReminder bool
	EnableEveningReminder bool
	EnableDailyPreview    bool

	// First Monday of teaching week 1; zero disables week-range bounding.
	TermStart time.Time

	// TTF with CJK glyphs for timetable rendering; empty falls back to
	// the builtin bitmap font (ASCII only).
	FontPath string
}

// Load reads configuration from .env and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	cfg := &Config{
		TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),
		Environment:    getEnv("ENV", "development"),
		StorageDriver:  getEnv("STORAGE_DRIVER", "file"),
		DBDSN:          os.Getenv("DB_DSN"),
		DataDir:        getEnv("DATA_DIR", "data/classbell"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),

		AIProvider: getEnv("AI_PROVIDER", "siliconflow"),
		AIAPIKey:   os.Getenv("AI_API_KEY"),
		AIAPIBase:  os.Getenv("AI_API_BASE"),
		AIModel:    os.Getenv("AI_MODEL"),
		AIRetries:  getEnvInt("AI_RETRIES", 2),

		ReminderLead:          time.Duration(getEnvInt("REMINDER_LEAD_MINUTES", 30)) * time.Minute,
		TickInterval:          time.Duration(getEnvInt("TICK_SECONDS", 60)) * time.Second,
		DailyPreviewTime:      getEnv("DAILY_PREVIEW_TIME", "23:00"),
		EnableReminder:        getEnvBool("ENABLE_REMINDER", true),
		EnableWeekendReminder: getEnvBool("ENABLE_WEEKEND_REMINDER", true),
		EnableEveningReminder: getEnvBool("ENABLE_EVENING_REMINDER", true),
		EnableDailyPreview:    getEnvBool("ENABLE_DAILY_PREVIEW", true),

		FontPath: os.Getenv("FONT_PATH"),
	}

	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is required but not set")
	}
	if cfg.StorageDriver != "file" && cfg.StorageDriver != "postgres" {
		return nil, fmt.Errorf("STORAGE_DRIVER must be file or postgres, got %q", cfg.StorageDriver)
	}
	if cfg.StorageDriver == "postgres" && cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required when STORAGE_DRIVER=postgres")
	}
	if _, err := time.Parse("15:04", cfg.DailyPreviewTime); err != nil {
		return nil, fmt.Errorf("DAILY_PREVIEW_TIME must be HH:MM, got %q", cfg.DailyPreviewTime)
	}

	if raw := os.Getenv("TERM_START_DATE"); raw != "" {
		termStart, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			return nil, fmt.Errorf("TERM_START_DATE must be YYYY-MM-DD, got %q", raw)
		}
		cfg.TermStart = termStart
	}

	log.Printf("Config loaded (storage=%s, ai=%s)\n", cfg.StorageDriver, cfg.AIProvider)

	return cfg, nil
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
	if err != nil {
		log.Printf("⚠️  %s=%q is not a number, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("⚠️  %s=%q is not a bool, using %v", key, v, fallback)
		return fallback
	}
	return b
}

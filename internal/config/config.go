package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config collects every tunable the server reads from the environment.
type Config struct {
	Port           string
	DatabaseURL    string
	GroqAPIKey     string
	GroqModel      string
	GroqBaseURL    string
	UploadDir      string
	MaxUploadBytes int64
	NotifyChannel  string
	ReminderCron   string
	Env            string
}

// Load reads configuration from a .env file (when present) and the
// environment. DATABASE_URL is the only hard requirement.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		GroqAPIKey:     os.Getenv("GROQ_API_KEY"),
		GroqModel:      getEnv("GROQ_MODEL", "llama-3.1-8b-instant"),
		GroqBaseURL:    getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		UploadDir:      getEnv("UPLOAD_DIR", "uploads"),
		MaxUploadBytes: 16 << 20,
		NotifyChannel:  getEnv("NOTIFY_CHANNEL", "doctor_alerts"),
		ReminderCron:   getEnv("REMINDER_CRON", "* * * * *"),
		Env:            getEnv("ENV", "development"),
	}

	if v := os.Getenv("MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid MAX_UPLOAD_BYTES %q: %w", v, err)
		}
		cfg.MaxUploadBytes = n
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

// IsDev reports whether the server runs in development mode.
func (c *Config) IsDev() bool { return c.Env == "development" }

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

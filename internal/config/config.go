package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config carries every runtime setting the console reads. Everything has a
// workable default except the HR API base URL: without a backend to proxy
// there is nothing to serve, so that one is fatal.
type Config struct {
	Port          string        `validate:"required,numeric"`
	HRAPIBaseURL  string        `validate:"required,url"`
	HRAPITimeout  time.Duration `validate:"gte=1s"`
	SessionTTL    time.Duration `validate:"gte=1m"`
	SweepSchedule string        `validate:"required"`

	// AuditDSN is optional. Empty means audit writes are dropped and only
	// logged, which is fine for local development.
	AuditDSN string
}

// Load reads the environment into a validated Config. A .env file is
// loaded first when one exists so local runs don't need exported shells.
func Load() (*Config, error) {
	for _, path := range []string{".env", "../.env"} {
		if err := godotenv.Load(path); err == nil {
			log.Printf("✅ Loaded environment from %s", path)
			break
		}
	}

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		HRAPIBaseURL:  os.Getenv("HR_API_BASE_URL"),
		HRAPITimeout:  getDuration("HR_API_TIMEOUT", 30*time.Second),
		SessionTTL:    getDuration("SESSION_TTL", 30*time.Minute),
		SweepSchedule: getEnv("SESSION_SWEEP_CRON", "*/10 * * * *"),
		AuditDSN:      os.Getenv("AUDIT_DB_DSN"),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("⚠️  Warning: %s=%q is not a duration, using %s", key, v, fallback)
		return fallback
	}
	return d
}

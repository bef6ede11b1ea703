package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Environment string
	ServerPort  int
	LogLevel    string

	// Postgres
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis (shared rate limiter state)
	RedisURL string

	// Availability
	AvailabilityMode string // "stepped" or "aligned", chosen once at startup
	SlotStepMinutes  int
	MaxRangeDays     int

	// Checkout
	IntentTTL          time.Duration
	SweepInterval      time.Duration
	WebhookSecret      string
	JWTSecret          string
	CORSAllowedOrigins []string

	// Public-surface rate limit (shared window across instances)
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// Load reads configuration from the environment. A .env file is honored when
// present so local development matches deployment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := intEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	dbPort, err := intEnv("DB_PORT", 5432)
	if err != nil {
		return nil, err
	}
	slotStep, err := intEnv("SLOT_STEP_MINUTES", 15)
	if err != nil {
		return nil, err
	}
	maxRange, err := intEnv("MAX_RANGE_DAYS", 90)
	if err != nil {
		return nil, err
	}
	intentTTLMinutes, err := intEnv("INTENT_TTL_MINUTES", 15)
	if err != nil {
		return nil, err
	}
	sweepMinutes, err := intEnv("SWEEP_INTERVAL_MINUTES", 5)
	if err != nil {
		return nil, err
	}
	rateReqs, err := intEnv("RATE_LIMIT_REQUESTS", 100)
	if err != nil {
		return nil, err
	}
	rateWindowMinutes, err := intEnv("RATE_LIMIT_WINDOW_MINUTES", 10)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Environment:      getEnv("ENVIRONMENT", "development"),
		ServerPort:       port,
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		DBHost:           getEnv("DB_HOST", "localhost"),
		DBPort:           dbPort,
		DBUser:           getEnv("DB_USER", "chairtime"),
		DBPassword:       getEnv("DB_PASSWORD", "dev"),
		DBName:           getEnv("DB_NAME", "chairtime"),
		DBSSLMode:        getEnv("DB_SSLMODE", "disable"),
		RedisURL:         getEnv("REDIS_URL", "redis://localhost:6379"),
		AvailabilityMode: getEnv("AVAILABILITY_MODE", "stepped"),
		SlotStepMinutes:  slotStep,
		MaxRangeDays:     maxRange,
		IntentTTL:        time.Duration(intentTTLMinutes) * time.Minute,
		SweepInterval:    time.Duration(sweepMinutes) * time.Minute,
		WebhookSecret:    getEnv("WEBHOOK_SECRET", ""),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		CORSAllowedOrigins: parseCSVEnv("CORS_ALLOWED_ORIGINS", []string{
			"http://localhost:5173",
			"http://localhost:3000",
		}),
		RateLimitRequests: rateReqs,
		RateLimitWindow:   time.Duration(rateWindowMinutes) * time.Minute,
	}

	if cfg.AvailabilityMode != "stepped" && cfg.AvailabilityMode != "aligned" {
		return nil, fmt.Errorf("invalid AVAILABILITY_MODE %q", cfg.AvailabilityMode)
	}
	if cfg.SlotStepMinutes <= 0 {
		return nil, fmt.Errorf("SLOT_STEP_MINUTES must be positive")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func intEnv(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func parseCSVEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			trimmed := strings.TrimSpace(p)
			if trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}

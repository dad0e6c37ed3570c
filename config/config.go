package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/pssabdus/hidrazy-fluent-journey-sub003/internal/usage"
)

type Config struct {
	// Server
	Port string // default: 8080

	// Database
	PostgresDSN string

	// Cache
	RedisAddr string

	// Providers
	OpenAIAPIKey string

	// Observability
	OTELExporterType     string // "stdout" or "otlp"
	OTELExporterEndpoint string // default: "localhost:4317"

	// Usage quotas — the single source for both display and enforcement.
	Limits usage.Limits

	// Burst protection, requests per user per minute. default: 60
	RequestsPerMinute int
}

func Load() (*Config, error) {
	// Load .env file if present (non-fatal if missing)
	_ = godotenv.Load()

	cfg := &Config{
		Port:                 getEnv("PORT", "8080"),
		PostgresDSN:          os.Getenv("POSTGRES_DSN"),
		RedisAddr:            os.Getenv("REDIS_ADDR"),
		OpenAIAPIKey:         os.Getenv("OPENAI_API_KEY"),
		OTELExporterType:     getEnv("OTEL_EXPORTER_TYPE", "stdout"),
		OTELExporterEndpoint: getEnv("OTEL_EXPORTER_ENDPOINT", "localhost:4317"),
	}

	defaults := usage.DefaultLimits()
	var err error
	cfg.Limits.DailyConversationTurns, err = getEnvInt("DAILY_CONVERSATION_TURNS", defaults.DailyConversationTurns)
	if err != nil {
		return nil, err
	}
	cfg.Limits.MonthlyPremiumModelCalls, err = getEnvInt("MONTHLY_PREMIUM_MODEL_CALLS", defaults.MonthlyPremiumModelCalls)
	if err != nil {
		return nil, err
	}
	cfg.Limits.MonthlyTTSUnits, err = getEnvInt("MONTHLY_TTS_UNITS", defaults.MonthlyTTSUnits)
	if err != nil {
		return nil, err
	}
	cfg.Limits.MonthlyCostAlertUSD, err = getEnvFloat("MONTHLY_COST_ALERT_USD", defaults.MonthlyCostAlertUSD)
	if err != nil {
		return nil, err
	}
	cfg.RequestsPerMinute, err = getEnvInt("REQUESTS_PER_MINUTE", 60)
	if err != nil {
		return nil, err
	}

	// Validation
	if cfg.PostgresDSN == "" {
		return nil, fmt.Errorf("POSTGRES_DSN is required")
	}
	if cfg.RedisAddr == "" {
		return nil, fmt.Errorf("REDIS_ADDR is required")
	}
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

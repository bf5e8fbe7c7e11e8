package config

import (
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	Port     string
	MongoURI string
	RedisURL string

	// Adaptive engine configuration
	SweepIntervalMinutes int    // regular sweep interval (default 60)
	DailyHour            int    // local hour the comprehensive sweep is anchored to (default 2)
	DailySweepCron       string // optional cron override for the daily sweep, e.g. "30 3 * * *"
	RetentionDays        int    // analytics snapshots older than this are deleted (default 365)
	DailySweepRate       float64 // users/second pacing for the comprehensive sweep (default 25)
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	cfg := &Config{
		Port:     getEnv("PORT", "3001"),
		MongoURI: getEnv("MONGODB_URI", ""),
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379"),

		SweepIntervalMinutes: getIntEnv("ADAPTIVE_SWEEP_INTERVAL_MINUTES", 60),
		DailyHour:            getIntEnv("ADAPTIVE_DAILY_HOUR", 2),
		DailySweepCron:       getEnv("ADAPTIVE_DAILY_SWEEP_CRON", ""),
		RetentionDays:        getIntEnv("ANALYTICS_RETENTION_DAYS", 365),
		DailySweepRate:       getFloatEnv("ADAPTIVE_DAILY_SWEEP_RATE", 25),
	}

	if cfg.SweepIntervalMinutes < 1 {
		cfg.SweepIntervalMinutes = 60
	}
	if cfg.DailyHour < 0 || cfg.DailyHour > 23 {
		cfg.DailyHour = 2
	}
	if cfg.RetentionDays < 1 {
		cfg.RetentionDays = 365
	}
	if cfg.DailySweepRate <= 0 {
		cfg.DailySweepRate = 25
	}

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

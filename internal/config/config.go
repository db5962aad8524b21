// Package config loads application configuration from the environment.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

// Backend names for the data repository variants.
const (
	BackendDemo     = "demo"
	BackendPostgres = "postgres"
)

// Config holds all application configuration loaded from environment
// variables.
type Config struct {
	DataBackend         string
	DatabaseURL         string
	PrimaryRatesURL     string
	FallbackRatesURL    string
	RatesAPIKey         string
	RateWorkerInterval  time.Duration
	LeaseAlertDays      int
	HTTPPort            string
	AdminAPIKey         string
	SheetsSpreadsheetID string
	SheetsCredentials   string
	ExportPath          string
}

// Load reads configuration from environment variables with sensible
// defaults.
func Load() Config {
	return Config{
		DataBackend:         envOrDefault("DATA_BACKEND", BackendDemo),
		DatabaseURL:         envOrDefault("DATABASE_URL", ""),
		PrimaryRatesURL:     envOrDefault("CURRENCYFREAKS_URL", ""),
		FallbackRatesURL:    envOrDefault("FRANKFURTER_URL", ""),
		RatesAPIKey:         envOrDefault("CURRENCYFREAKS_API_KEY", ""),
		RateWorkerInterval:  envOrDefaultDuration("RATE_WORKER_INTERVAL", 12*time.Hour),
		LeaseAlertDays:      envOrDefaultInt("LEASE_ALERT_DAYS", 60),
		HTTPPort:            envOrDefault("HTTP_PORT", "8080"),
		AdminAPIKey:         envOrDefault("ADMIN_API_KEY", ""),
		SheetsSpreadsheetID: envOrDefault("SHEETS_SPREADSHEET_ID", ""),
		SheetsCredentials:   envOrDefault("SHEETS_CREDENTIALS_JSON", ""),
		ExportPath:          envOrDefault("EXPORT_PATH", "tax_report.xlsx"),
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envOrDefaultInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			slog.Warn("invalid integer env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return n
	}
	return defaultVal
}

func envOrDefaultDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return d
	}
	return defaultVal
}

package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.DataBackend != BackendDemo {
		t.Errorf("DataBackend = %q, want %q", cfg.DataBackend, BackendDemo)
	}
	if cfg.HTTPPort != "8080" {
		t.Errorf("HTTPPort = %q, want %q", cfg.HTTPPort, "8080")
	}
	if cfg.RateWorkerInterval != 12*time.Hour {
		t.Errorf("RateWorkerInterval = %v, want 12h", cfg.RateWorkerInterval)
	}
	if cfg.LeaseAlertDays != 60 {
		t.Errorf("LeaseAlertDays = %d, want 60", cfg.LeaseAlertDays)
	}
	if cfg.ExportPath != "tax_report.xlsx" {
		t.Errorf("ExportPath = %q, want %q", cfg.ExportPath, "tax_report.xlsx")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DATA_BACKEND", BackendPostgres)
	t.Setenv("DATABASE_URL", "postgres://localhost/propstat")
	t.Setenv("RATE_WORKER_INTERVAL", "30m")
	t.Setenv("LEASE_ALERT_DAYS", "90")
	t.Setenv("HTTP_PORT", "9090")

	cfg := Load()

	if cfg.DataBackend != BackendPostgres {
		t.Errorf("DataBackend = %q, want %q", cfg.DataBackend, BackendPostgres)
	}
	if cfg.DatabaseURL != "postgres://localhost/propstat" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if cfg.RateWorkerInterval != 30*time.Minute {
		t.Errorf("RateWorkerInterval = %v, want 30m", cfg.RateWorkerInterval)
	}
	if cfg.LeaseAlertDays != 90 {
		t.Errorf("LeaseAlertDays = %d, want 90", cfg.LeaseAlertDays)
	}
	if cfg.HTTPPort != "9090" {
		t.Errorf("HTTPPort = %q, want %q", cfg.HTTPPort, "9090")
	}
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("RATE_WORKER_INTERVAL", "not-a-duration")
	t.Setenv("LEASE_ALERT_DAYS", "ninety")

	cfg := Load()

	if cfg.RateWorkerInterval != 12*time.Hour {
		t.Errorf("RateWorkerInterval = %v, want the 12h default", cfg.RateWorkerInterval)
	}
	if cfg.LeaseAlertDays != 60 {
		t.Errorf("LeaseAlertDays = %d, want the default 60", cfg.LeaseAlertDays)
	}
}

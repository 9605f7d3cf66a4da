package config

import (
	"os"
	"testing"
)

func TestLoad(t *testing.T) {
	// Clean environment
	os.Unsetenv("FIN_DB_URL")
	os.Unsetenv("FIN_MAX_BATCH_SIZE")
	os.Unsetenv("FIN_LOG_LEVEL")
	os.Unsetenv("FIN_LOG_FORMAT")

	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load("")
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.DatabaseURL != "sqlite://financify.db" {
			t.Errorf("DatabaseURL = %q, want sqlite://financify.db", cfg.DatabaseURL)
		}
		if cfg.MaxBatchSize != 5000 {
			t.Errorf("MaxBatchSize = %d, want 5000", cfg.MaxBatchSize)
		}
		if cfg.LogLevel != "info" || cfg.LogFormat != "json" {
			t.Errorf("log settings = %q/%q, want info/json", cfg.LogLevel, cfg.LogFormat)
		}
	})

	t.Run("environment overrides", func(t *testing.T) {
		os.Setenv("FIN_DB_URL", "postgres://localhost/financify")
		os.Setenv("FIN_MAX_BATCH_SIZE", "250")
		os.Setenv("FIN_LOG_LEVEL", "debug")
		defer os.Unsetenv("FIN_DB_URL")
		defer os.Unsetenv("FIN_MAX_BATCH_SIZE")
		defer os.Unsetenv("FIN_LOG_LEVEL")

		cfg, err := Load("")
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.DatabaseURL != "postgres://localhost/financify" {
			t.Errorf("DatabaseURL = %q, want env override", cfg.DatabaseURL)
		}
		if cfg.MaxBatchSize != 250 {
			t.Errorf("MaxBatchSize = %d, want 250", cfg.MaxBatchSize)
		}
		if cfg.LogLevel != "debug" {
			t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
		}
	})

	t.Run("invalid batch size", func(t *testing.T) {
		os.Setenv("FIN_MAX_BATCH_SIZE", "0")
		defer os.Unsetenv("FIN_MAX_BATCH_SIZE")

		if _, err := Load(""); err == nil {
			t.Error("expected error for zero batch size")
		}
	})

	t.Run("invalid log level", func(t *testing.T) {
		os.Setenv("FIN_LOG_LEVEL", "verbose")
		defer os.Unsetenv("FIN_LOG_LEVEL")

		if _, err := Load(""); err == nil {
			t.Error("expected error for unrecognized log level")
		}
	})

	t.Run("invalid log format", func(t *testing.T) {
		os.Setenv("FIN_LOG_FORMAT", "yaml")
		defer os.Unsetenv("FIN_LOG_FORMAT")

		if _, err := Load(""); err == nil {
			t.Error("expected error for unrecognized log format")
		}
	})

	t.Run("missing config file", func(t *testing.T) {
		if _, err := Load("/nonexistent/financify.yaml"); err == nil {
			t.Error("expected error for missing config file")
		}
	})
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := validate(cfg); err != nil {
		t.Errorf("Default() does not validate: %v", err)
	}
}

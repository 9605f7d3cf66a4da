// Package config provides configuration management for financify services.
package config

// Config holds runtime configuration for the rules service and CLI.
type Config struct {
	DatabaseURL  string
	MaxBatchSize int
	LogLevel     string
	LogFormat    string
}

// Default returns configuration with default values.
func Default() *Config {
	return &Config{
		DatabaseURL:  "sqlite://financify.db",
		MaxBatchSize: 5000,
		LogLevel:     "info",
		LogFormat:    "json",
	}
}

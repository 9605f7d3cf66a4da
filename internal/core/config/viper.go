package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration with CLI flags > environment > config file >
// defaults precedence. Environment variables carry the FIN_ prefix
// (FIN_DB_URL, FIN_MAX_BATCH_SIZE, ...). Flag overrides are applied by the
// caller after loading.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Defaults matching Default()
	v.SetDefault("db_url", "sqlite://financify.db")
	v.SetDefault("max_batch_size", 5000)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")

	v.SetEnvPrefix("FIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		DatabaseURL:  v.GetString("db_url"),
		MaxBatchSize: v.GetInt("max_batch_size"),
		LogLevel:     v.GetString("log_level"),
		LogFormat:    v.GetString("log_format"),
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks batch size and log settings.
func validate(cfg *Config) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("db_url must be set")
	}
	if cfg.MaxBatchSize <= 0 {
		return fmt.Errorf("max_batch_size must be positive, got %d", cfg.MaxBatchSize)
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug, info, warn, error; got %q", cfg.LogLevel)
	}
	switch cfg.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("log_format must be json or text, got %q", cfg.LogFormat)
	}
	return nil
}

// Package config provides configuration loading for the capprobe CLI and server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/canonica-labs/capprobe/internal/errors"
)

// Config holds the application configuration.
type Config struct {
	// Logging configuration
	Logging LoggingConfig `mapstructure:"logging"`

	// Probes selects and tunes probe execution
	Probes ProbesConfig `mapstructure:"probes"`

	// Manifest is an optional path to a YAML probe manifest
	Manifest string `mapstructure:"manifest"`

	// History configures the run history store
	History HistoryConfig `mapstructure:"history"`

	// Drivers holds optional live targets for dependency probes
	Drivers DriversConfig `mapstructure:"drivers"`

	// Server configuration (for serve)
	Server ServerConfig `mapstructure:"server"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ProbesConfig holds probe selection and retry settings.
type ProbesConfig struct {
	// Enabled restricts the default run to these probes. Empty means all.
	Enabled []string    `mapstructure:"enabled"`
	Retry   RetryConfig `mapstructure:"retry"`
}

// RetryConfig holds retry settings for transient probe failures.
type RetryConfig struct {
	MaxAttempts  int           `mapstructure:"max_attempts"`
	InitialDelay time.Duration `mapstructure:"initial_delay"`
	MaxDelay     time.Duration `mapstructure:"max_delay"`
}

// HistoryConfig holds run history storage configuration.
type HistoryConfig struct {
	// Driver is one of sqlite, postgres, memory, none.
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// DriversConfig holds optional DSNs for live dependency checks.
type DriversConfig struct {
	Postgres  DSNConfig `mapstructure:"postgres"`
	Trino     DSNConfig `mapstructure:"trino"`
	Snowflake DSNConfig `mapstructure:"snowflake"`
}

// DSNConfig is a single data source name.
type DSNConfig struct {
	DSN string `mapstructure:"dsn"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// History drivers.
const (
	HistorySQLite   = "sqlite"
	HistoryPostgres = "postgres"
	HistoryMemory   = "memory"
	HistoryNone     = "none"
)

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Probes: ProbesConfig{
			Retry: RetryConfig{
				MaxAttempts:  3,
				InitialDelay: 100 * time.Millisecond,
				MaxDelay:     5 * time.Second,
			},
		},
		History: HistoryConfig{
			Driver: HistoryMemory,
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
	}
}

// Load loads configuration from file and environment.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".capprobe"))
		}
		v.AddConfigPath(".")
		v.SetConfigName("capprobe")
		v.SetConfigType("yaml")
	}

	// CAPPROBE_HISTORY_DRIVER -> history.driver
	v.SetEnvPrefix("CAPPROBE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("probes.enabled", []string{})
	v.SetDefault("probes.retry.max_attempts", d.Probes.Retry.MaxAttempts)
	v.SetDefault("probes.retry.initial_delay", d.Probes.Retry.InitialDelay)
	v.SetDefault("probes.retry.max_delay", d.Probes.Retry.MaxDelay)
	v.SetDefault("manifest", "")
	v.SetDefault("history.driver", d.History.Driver)
	v.SetDefault("history.dsn", d.History.DSN)
	v.SetDefault("drivers.postgres.dsn", "")
	v.SetDefault("drivers.trino.dsn", "")
	v.SetDefault("drivers.snowflake.dsn", "")
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
}

// Validate checks that configuration values are usable.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return errors.NewInvalidConfig("logging.level", fmt.Sprintf("unknown level %q", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return errors.NewInvalidConfig("logging.format", fmt.Sprintf("unknown format %q (want console or json)", c.Logging.Format))
	}

	if c.Probes.Retry.MaxAttempts < 0 {
		return errors.NewInvalidConfig("probes.retry.max_attempts", "must not be negative")
	}
	if c.Probes.Retry.InitialDelay < 0 || c.Probes.Retry.MaxDelay < 0 {
		return errors.NewInvalidConfig("probes.retry", "delays must not be negative")
	}

	switch c.History.Driver {
	case HistorySQLite, HistoryPostgres:
		if c.History.DSN == "" {
			return errors.NewInvalidConfig("history.dsn", "required for driver "+c.History.Driver)
		}
	case HistoryMemory, HistoryNone:
	default:
		return errors.NewInvalidConfig("history.driver", fmt.Sprintf("unknown driver %q (want sqlite, postgres, memory or none)", c.History.Driver))
	}

	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 {
		return errors.NewInvalidConfig("server", "timeouts must not be negative")
	}

	return nil
}

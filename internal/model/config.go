package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Supported database drivers.
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// DatabaseConfig selects and locates the backing database.
type DatabaseConfig struct {
	// Driver is either "sqlite" or "mysql".
	Driver string `mapstructure:"driver" yaml:"driver"`

	// Path is the SQLite database file.
	Path string `mapstructure:"path" yaml:"path"`

	// DSN is the MySQL data source name without the password,
	// e.g. "taskly@tcp(localhost:3306)/taskly".
	DSN string `mapstructure:"dsn" yaml:"dsn"`

	// PasswordKey names the keyring item holding the MySQL password.
	PasswordKey string `mapstructure:"password_key" yaml:"password_key"`
}

// HTTPConfig holds settings for the REST API server.
type HTTPConfig struct {
	Addr               string `mapstructure:"addr" yaml:"addr"`
	ShutdownTimeoutSec int    `mapstructure:"shutdown_timeout_sec" yaml:"shutdown_timeout_sec"`
}

// LogConfig controls logger verbosity and output format.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// NotifyConfig controls the notification dispatcher.
type NotifyConfig struct {
	// Buffer is the number of pending events held before new ones are dropped.
	Buffer int `mapstructure:"buffer" yaml:"buffer"`

	// LogOnly disables the notification outbox; events are only logged.
	LogOnly bool `mapstructure:"log_only" yaml:"log_only"`
}

// ReminderConfig controls the deadline reminder scanner.
type ReminderConfig struct {
	Enabled     bool   `mapstructure:"enabled" yaml:"enabled"`
	Schedule    string `mapstructure:"schedule" yaml:"schedule"`
	WindowHours int    `mapstructure:"window_hours" yaml:"window_hours"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	HTTP     HTTPConfig     `mapstructure:"http" yaml:"http"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	Notify   NotifyConfig   `mapstructure:"notify" yaml:"notify"`
	Reminder ReminderConfig `mapstructure:"reminder" yaml:"reminder"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/taskly/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "taskly", "config.yaml")
}

// defaultDatabasePath places the SQLite file next to the default config.
func defaultDatabasePath() string {
	return filepath.Join(filepath.Dir(DefaultConfigPath()), "taskly.db")
}

// DefaultAppConfig returns a sensible default configuration.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Database: DatabaseConfig{
			Driver:      DriverSQLite,
			Path:        defaultDatabasePath(),
			PasswordKey: "mysql-password",
		},
		HTTP: HTTPConfig{
			Addr:               ":3001",
			ShutdownTimeoutSec: 5,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Notify: NotifyConfig{
			Buffer: 64,
		},
		Reminder: ReminderConfig{
			Enabled:     true,
			Schedule:    "0 * * * *",
			WindowHours: 24,
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := DefaultAppConfig()
	v.SetDefault("database.driver", d.Database.Driver)
	v.SetDefault("database.path", d.Database.Path)
	v.SetDefault("database.dsn", d.Database.DSN)
	v.SetDefault("database.password_key", d.Database.PasswordKey)
	v.SetDefault("http.addr", d.HTTP.Addr)
	v.SetDefault("http.shutdown_timeout_sec", d.HTTP.ShutdownTimeoutSec)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("notify.buffer", d.Notify.Buffer)
	v.SetDefault("notify.log_only", d.Notify.LogOnly)
	v.SetDefault("reminder.enabled", d.Reminder.Enabled)
	v.SetDefault("reminder.schedule", d.Reminder.Schedule)
	v.SetDefault("reminder.window_hours", d.Reminder.WindowHours)
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// Values may be overridden by TASKLY_* environment variables, e.g.
// TASKLY_HTTP_ADDR. A missing file yields the defaults.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("taskly")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// A missing file is not an error; defaults and env still apply.
	if err := v.ReadInConfig(); err != nil {
		_, isPathErr := err.(*os.PathError)
		_, isNotFound := err.(viper.ConfigFileNotFoundError)
		if !isPathErr && !isNotFound {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := DefaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values that cannot be defaulted and clamps the rest.
func (c *AppConfig) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for sqlite")
		}
	case DriverMySQL:
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for mysql")
		}
	default:
		return fmt.Errorf("unknown database.driver %q", c.Database.Driver)
	}
	if c.Notify.Buffer < 1 {
		c.Notify.Buffer = 1
	}
	if c.Reminder.WindowHours <= 0 {
		c.Reminder.WindowHours = 24
	}
	return nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("database", cfg.Database)
	v.Set("http", cfg.HTTP)
	v.Set("log", cfg.Log)
	v.Set("notify", cfg.Notify)
	v.Set("reminder", cfg.Reminder)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}

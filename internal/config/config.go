// Package config loads tirelog settings from a YAML file, TIRELOG_*
// environment variables and command-line overrides.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/OscarFredriksson/tire-logger/internal/transfer"
)

// EnvPrefix prefixes every environment override, e.g. TIRELOG_DATABASE_PATH.
const EnvPrefix = "TIRELOG"

// Config holds every setting.
type Config struct {
	Database Database `mapstructure:"database"`
	Import   Import   `mapstructure:"import"`
	Export   Export   `mapstructure:"export"`
	Log      Log      `mapstructure:"log"`
	Server   Server   `mapstructure:"server"`
}

// Database selects the store backend.
type Database struct {
	// Driver is "sqlite" or "postgres".
	Driver string `mapstructure:"driver"`
	// Path is the SQLite file.
	Path string `mapstructure:"path"`
	// DSN is the PostgreSQL connection string.
	DSN string `mapstructure:"dsn"`
}

// Import holds import defaults.
type Import struct {
	Mode string `mapstructure:"mode"`
}

// Export holds export defaults.
type Export struct {
	Version string `mapstructure:"version"`
}

// Log configures logging.
type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Server configures the HTTP API.
type Server struct {
	Addr            string        `mapstructure:"addr"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// SetDefaults registers the default of every key on v. Keys without a
// default are invisible to environment overrides.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "tirelog.db")
	v.SetDefault("database.dsn", "")
	v.SetDefault("import.mode", string(transfer.ModeMerge))
	v.SetDefault("export.version", transfer.DefaultVersion)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "auto")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
}

// New returns a viper instance with defaults and environment overrides
// wired. file names an explicit config file; when empty, tirelog.yaml is
// searched in the working directory and in home.
func New(file, home string) *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("tirelog")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home != "" {
			v.AddConfigPath(filepath.Join(home, ".config", "tirelog"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file, if any, and decodes v. A missing file in
// the search path is not an error; a missing explicit file is.
func Load(v *viper.Viper) (Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

var (
	drivers    = []string{"sqlite", "postgres"}
	logLevels  = []string{"debug", "info", "warn", "warning", "error"}
	logFormats = []string{"auto", "text", "json"}
)

// Validate reports every problem at once.
func (c Config) Validate() error {
	var errs []error

	switch {
	case !slices.Contains(drivers, c.Database.Driver):
		errs = append(errs, fmt.Errorf("database.driver: %q is not one of %s", c.Database.Driver, strings.Join(drivers, ", ")))
	case c.Database.Driver == "sqlite" && c.Database.Path == "":
		errs = append(errs, errors.New("database.path: required for sqlite"))
	case c.Database.Driver == "postgres" && c.Database.DSN == "":
		errs = append(errs, errors.New("database.dsn: required for postgres"))
	}

	if _, err := transfer.ParseMode(c.Import.Mode); err != nil {
		errs = append(errs, fmt.Errorf("import.mode: %w", err))
	}
	if !slices.Contains(logLevels, strings.ToLower(c.Log.Level)) {
		errs = append(errs, fmt.Errorf("log.level: %q is not one of %s", c.Log.Level, strings.Join(logLevels, ", ")))
	}
	if !slices.Contains(logFormats, strings.ToLower(c.Log.Format)) {
		errs = append(errs, fmt.Errorf("log.format: %q is not one of %s", c.Log.Format, strings.Join(logFormats, ", ")))
	}
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr: required"))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("server.shutdown_timeout: must be positive"))
	}

	return errors.Join(errs...)
}

// Package config provides centralized configuration management for namesdb.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables; command-line
// flags override them.
type Config struct {
	Database DatabaseConfig
	Data     DataConfig
	Import   ImportConfig
	Server   ServerConfig
	Logging  LoggingConfig
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// Driver is the database/sql driver: sqlite or pgx (default: sqlite)
	Driver string `env:"NAMES_DB_DRIVER" default:"sqlite"`

	// DSN is the SQLite file or PostgreSQL connection string (default: names.db)
	// DATABASE_URL is accepted for PostgreSQL deployments
	DSN string `env:"NAMES_DB_DSN" envAlt:"DATABASE_URL" default:"names.db"`

	// MaxOpenConns caps PostgreSQL connections; SQLite always uses one (default: 4)
	MaxOpenConns int `env:"NAMES_DB_MAX_OPEN_CONNS" default:"4"`
}

// DataConfig holds the locations of the dataset files.
type DataConfig struct {
	// CSV is the default names file for import, export, clean and stats (default: names.csv)
	CSV string `env:"NAMES_CSV" default:"names.csv"`

	// Rules is a heritage rules YAML file; empty uses the embedded table
	Rules string `env:"NAMES_RULES"`
}

// ImportConfig holds import run settings.
type ImportConfig struct {
	// Timeout is the maximum duration of a single import (default: 10m)
	Timeout time.Duration `env:"IMPORT_TIMEOUT" default:"10m"`
}

// ServerConfig holds static file server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8114)
	Port int `env:"SERVER_PORT" default:"8114"`

	// Root is the directory served at / (default: .)
	Root string `env:"SERVER_ROOT" default:"."`

	// ReadTimeout is the maximum duration for reading a request (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 10s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"10s"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

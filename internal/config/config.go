// Package config defines service configuration and the event configuration provider.
//
// Conventions:
// - Provide New(...) initializers that build values with defaults.
// - All functions accept context.Context as the first parameter.
// - External errors are wrapped via this package's sentinel errors.
package config

import (
	"context"
)

// Default service configuration constants.
const (
	defaultAddr               = ":9080"
	defaultLedgerFile         = "scores.csv"
	defaultLockTimeoutSeconds = 10
	defaultEventConfigPath    = "event.json"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DataDir is the directory holding the ledger file and its lock.
	DataDir string `koanf:"data_dir"`

	// LedgerFile is the ledger file name inside DataDir.
	LedgerFile string `koanf:"ledger_file"`

	// LockTimeoutSeconds bounds the wait for the ledger file lock.
	LockTimeoutSeconds int `koanf:"lock_timeout_seconds"`

	// EventConfigPath points at the event configuration JSON
	// (entries, criteria, credentials), re-read on every use.
	EventConfigPath string `koanf:"event_config_path"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention; it is reserved for future use.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:           "info",
		Addr:               defaultAddr,
		DataDir:            ".",
		LedgerFile:         defaultLedgerFile,
		LockTimeoutSeconds: defaultLockTimeoutSeconds,
		EventConfigPath:    defaultEventConfigPath,
	}
}

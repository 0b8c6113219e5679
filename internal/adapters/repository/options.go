package repository

import (
	"time"

	"github.com/mkarimof/jurybox/pkg/logger"
)

// Option applies a configuration option to the CSVLedger.
type Option func(*CSVLedger)

// WithLockTimeout bounds the wait for the ledger file lock.
func WithLockTimeout(timeout time.Duration) Option {
	return func(l *CSVLedger) {
		if timeout > 0 {
			l.lockTimeout = timeout
		}
	}
}

// WithLockRetryDelay sets the poll interval while waiting for the lock.
func WithLockRetryDelay(delay time.Duration) Option {
	return func(l *CSVLedger) {
		if delay > 0 {
			l.lockRetryDelay = delay
		}
	}
}

// WithLogger sets a custom logger for the ledger.
func WithLogger(log logger.Logger) Option {
	return func(l *CSVLedger) {
		if log != nil {
			l.log = log
		}
	}
}

package repository

import "errors"

// Sentinel kinds for ledger errors.
var (
	// ErrLockTimeout is transient; the caller may retry.
	ErrLockTimeout = errors.New("ledger lock not acquired within timeout")

	// ErrStorage is fatal; there is no safe local recovery for a corrupted
	// or inaccessible store.
	ErrStorage = errors.New("ledger storage failure")
)

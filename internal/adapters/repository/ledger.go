// Package repository provides the durable score ledger.
package repository

import (
	"context"

	"github.com/mkarimof/jurybox/internal/domain/model"
)

// Ledger is the durable store of one ScoreRecord per (judge, entry) pair.
// Every operation is serialized through a single exclusive cross-process
// lock with a bounded wait; lock expiry surfaces as ErrLockTimeout.
type Ledger interface {
	// Initialize creates the backing store with a header for the given
	// criterion IDs if none exists, and is a no-op otherwise. It does not
	// validate an existing store's header against the current criteria.
	Initialize(ctx context.Context, criteriaIDs []string) error

	// Upsert inserts or replaces the record keyed by (Judge, EntryID).
	// A replacement keeps the record's position in the store and carries
	// the submitted timestamp.
	Upsert(ctx context.Context, rec model.ScoreRecord) error

	// ReadAll returns every record in store order.
	ReadAll(ctx context.Context) ([]model.ScoreRecord, error)
}

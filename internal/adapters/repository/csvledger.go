package repository

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/gofrs/flock"

	"github.com/mkarimof/jurybox/internal/domain/model"
	"github.com/mkarimof/jurybox/pkg/logger"
	"github.com/mkarimof/jurybox/pkg/metrics"
)

// Default ledger configuration constants.
const (
	defaultLockTimeout    = 10 * time.Second
	defaultLockRetryDelay = 50 * time.Millisecond
)

// timestampLayout is a fixed-width UTC layout so timestamps sort lexically.
const timestampLayout = "2006-01-02T15:04:05.000000Z07:00"

// fixedColumns precede the per-criterion columns in every row.
var fixedColumns = []string{"timestamp", "judge", "entry_id", "entry_name"}

// CSVLedger implements Ledger on a single CSV file guarded by an advisory
// cross-process file lock. The whole record set is loaded, modified, and
// atomically swapped back on every mutation; acceptable at the expected
// scale of tens of judges and dozens of entries.
type CSVLedger struct {
	path           string
	lockTimeout    time.Duration
	lockRetryDelay time.Duration
	log            logger.Logger

	// criteriaIDs holds the schema given to Initialize, used to build a
	// header when the backing file is absent at upsert time.
	criteriaIDs []string
}

// NewCSVLedger creates a ledger backed by the CSV file at path.
func NewCSVLedger(path string, opts ...Option) *CSVLedger {
	l := &CSVLedger{
		path:           path,
		lockTimeout:    defaultLockTimeout,
		lockRetryDelay: defaultLockRetryDelay,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// acquire takes the exclusive cross-process lock with a bounded wait.
// The returned flock must be unlocked by the caller.
func (l *CSVLedger) acquire(ctx context.Context) (*flock.Flock, error) {
	flk := flock.New(l.path + ".lock")
	lockCtx, cancel := context.WithTimeout(ctx, l.lockTimeout)
	defer cancel()

	start := time.Now()
	ok, err := flk.TryLockContext(lockCtx, l.lockRetryDelay)
	metrics.RecordLedgerLockWait(time.Since(start).Seconds())

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			metrics.RecordLedgerLockTimeout()
			return nil, fmt.Errorf("%w: %s", ErrLockTimeout, l.path)
		}
		return nil, fmt.Errorf("%w: acquiring lock: %w", ErrStorage, err)
	}
	if !ok {
		metrics.RecordLedgerLockTimeout()
		return nil, fmt.Errorf("%w: %s", ErrLockTimeout, l.path)
	}
	return flk, nil
}

// Initialize creates the ledger file with a header if none exists.
// An existing file is left untouched: the stored header is not validated
// against criteriaIDs, so criteria edits mid-event require a manual rewrite.
// Reads reconcile by column name, so the gap surfaces as zero scores, not errors.
func (l *CSVLedger) Initialize(ctx context.Context, criteriaIDs []string) error {
	flk, err := l.acquire(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = flk.Unlock() }()

	l.criteriaIDs = append([]string(nil), criteriaIDs...)

	if _, err := os.Stat(l.path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: stat %s: %w", ErrStorage, l.path, err)
	}

	header := append(append([]string(nil), fixedColumns...), criteriaIDs...)
	if err := l.persist(header, nil); err != nil {
		return err
	}
	if l.log != nil {
		l.log.Info(ctx, "ledger initialized",
			logger.String("path", l.path),
			logger.Int("criteria", len(criteriaIDs)),
		)
	}
	return nil
}

// Upsert inserts or replaces the record keyed by (Judge, EntryID) and
// persists the whole set back through an atomic temp-file swap.
func (l *CSVLedger) Upsert(ctx context.Context, rec model.ScoreRecord) error {
	flk, err := l.acquire(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = flk.Unlock() }()

	header, records, err := l.load()
	if err != nil {
		return err
	}
	if header == nil {
		if len(l.criteriaIDs) == 0 {
			return fmt.Errorf("%w: ledger %s missing and schema unknown; Initialize first", ErrStorage, l.path)
		}
		header = append(append([]string(nil), fixedColumns...), l.criteriaIDs...)
	}

	replaced := false
	for i := range records {
		if records[i].Judge == rec.Judge && records[i].EntryID == rec.EntryID {
			records[i] = rec
			replaced = true
			break
		}
	}
	if !replaced {
		records = append(records, rec)
	}

	if err := l.persist(header, records); err != nil {
		return err
	}

	metrics.RecordLedgerUpsert()
	metrics.UpdateLedgerRecords(len(records))
	if l.log != nil {
		l.log.Debug(ctx, "score record upserted",
			logger.String("judge", rec.Judge),
			logger.String("entry", rec.EntryID),
			logger.Bool("replaced", replaced),
		)
	}
	return nil
}

// ReadAll returns every record in store order under the same exclusive lock.
func (l *CSVLedger) ReadAll(ctx context.Context) ([]model.ScoreRecord, error) {
	flk, err := l.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = flk.Unlock() }()

	_, records, err := l.load()
	if err != nil {
		return nil, err
	}

	metrics.RecordLedgerRead()
	metrics.UpdateLedgerRecords(len(records))
	return records, nil
}

// load parses the ledger file. A missing file yields a nil header and no
// records. Malformed numeric fields are coerced to zero; structural I/O
// failures are fatal.
func (l *CSVLedger) load() ([]string, []model.ScoreRecord, error) {
	raw, err := os.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, nil
		}
		metrics.RecordLedgerError()
		return nil, nil, fmt.Errorf("%w: reading %s: %w", ErrStorage, l.path, err)
	}

	r := csv.NewReader(bytes.NewReader(raw))
	r.FieldsPerRecord = -1 // tolerate short rows from older schemas
	rows, err := r.ReadAll()
	if err != nil {
		metrics.RecordLedgerError()
		return nil, nil, fmt.Errorf("%w: parsing %s: %w", ErrStorage, l.path, err)
	}
	if len(rows) == 0 {
		return nil, nil, nil
	}

	header := rows[0]
	records := make([]model.ScoreRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) < len(fixedColumns) {
			continue
		}
		rec := model.ScoreRecord{
			Timestamp: parseTimestamp(row[0]),
			Judge:     row[1],
			EntryID:   row[2],
			EntryName: row[3],
			Scores:    make(map[string]int),
		}
		for col := len(fixedColumns); col < len(header) && col < len(row); col++ {
			v, err := strconv.Atoi(row[col])
			if err != nil {
				v = 0
			}
			rec.Scores[header[col]] = v
		}
		records = append(records, rec)
	}
	return header, records, nil
}

// persist writes header and records to a temporary file in the same
// directory and atomically renames it over the ledger, so a crash mid-write
// can never truncate the store.
func (l *CSVLedger) persist(header []string, records []model.ScoreRecord) error {
	tmp := l.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		metrics.RecordLedgerError()
		return fmt.Errorf("%w: creating %s: %w", ErrStorage, tmp, err)
	}

	w := csv.NewWriter(f)
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, header)
	for _, rec := range records {
		row := make([]string, 0, len(header))
		row = append(row,
			rec.Timestamp.UTC().Format(timestampLayout),
			rec.Judge,
			rec.EntryID,
			rec.EntryName,
		)
		for _, col := range header[len(fixedColumns):] {
			row = append(row, strconv.Itoa(rec.Scores[col]))
		}
		rows = append(rows, row)
	}
	if err := w.WriteAll(rows); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		metrics.RecordLedgerError()
		return fmt.Errorf("%w: writing %s: %w", ErrStorage, tmp, err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		metrics.RecordLedgerError()
		return fmt.Errorf("%w: syncing %s: %w", ErrStorage, tmp, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		metrics.RecordLedgerError()
		return fmt.Errorf("%w: closing %s: %w", ErrStorage, tmp, err)
	}
	if err := os.Rename(tmp, l.path); err != nil {
		_ = os.Remove(tmp)
		metrics.RecordLedgerError()
		return fmt.Errorf("%w: swapping %s into place: %w", ErrStorage, tmp, err)
	}
	return nil
}

func parseTimestamp(s string) time.Time {
	if ts, err := time.Parse(timestampLayout, s); err == nil {
		return ts
	}
	// Older rows may carry plain RFC 3339.
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts
	}
	return time.Time{}
}

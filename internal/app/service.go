// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mkarimof/jurybox/internal/adapters/repository"
	"github.com/mkarimof/jurybox/internal/config"
	"github.com/mkarimof/jurybox/internal/domain/auth"
	"github.com/mkarimof/jurybox/internal/domain/model"
	"github.com/mkarimof/jurybox/internal/domain/normalize"
	"github.com/mkarimof/jurybox/pkg/logger"
	"github.com/mkarimof/jurybox/pkg/metrics"
)

// EntryStatus is one entry annotated with whether the judge has scored it.
type EntryStatus struct {
	model.Entry
	Scored bool `json:"scored"`
}

// Ranking is the full normalized result set plus presentation context.
type Ranking struct {
	Results     []model.EntryResult `json:"results"`
	MaxPossible int                 `json:"max_possible"`
}

// Service wires the configuration provider, the score ledger, and the
// normalization engine into explicit, identity-checked use cases.
type Service struct {
	mu sync.Mutex

	events config.EventProvider
	ledger repository.Ledger
	engine normalize.Engine

	ledgerPath  string
	lockTimeout time.Duration

	started bool
	log     logger.Logger

	submissions atomic.Int64
	rankingRuns atomic.Int64
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithEventProvider sets the event configuration provider.
func WithEventProvider(p config.EventProvider) Option {
	return func(s *Service) {
		if p != nil {
			s.events = p
		}
	}
}

// WithLedger sets the score ledger.
func WithLedger(l repository.Ledger) Option {
	return func(s *Service) {
		if l != nil {
			s.ledger = l
		}
	}
}

// WithEngine sets the normalization engine.
func WithEngine(e normalize.Engine) Option {
	return func(s *Service) {
		if e != nil {
			s.engine = e
		}
	}
}

// WithLedgerPath sets the ledger file path used when no ledger is injected.
func WithLedgerPath(dir, file string) Option {
	return func(s *Service) {
		if dir != "" && file != "" {
			s.ledgerPath = filepath.Join(dir, file)
		}
	}
}

// WithLockTimeout bounds the ledger lock wait for the default ledger.
func WithLockTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.lockTimeout = timeout
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		ledgerPath:  "scores.csv",
		lockTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds any missing components and prepares the ledger file from the
// currently configured criteria.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.log == nil {
		s.log = logger.Get()
	}
	if s.events == nil {
		s.events = config.NewFileEventProvider()
	}
	if s.engine == nil {
		s.engine = normalize.NewZScoreEngine()
	}
	if s.ledger == nil {
		s.ledger = repository.NewCSVLedger(s.ledgerPath,
			repository.WithLockTimeout(s.lockTimeout),
			repository.WithLogger(s.log),
		)
	}

	criteria, err := s.events.Criteria(ctx)
	if err != nil {
		return fmt.Errorf("reading criteria: %w", err)
	}
	if err := s.ledger.Initialize(ctx, criteriaIDs(criteria)); err != nil {
		return fmt.Errorf("initializing ledger: %w", err)
	}

	s.started = true
	s.log.Info(ctx, "scoring service started",
		logger.String("ledger", s.ledgerPath),
		logger.Int("criteria", len(criteria)),
	)
	return nil
}

// Stop marks the service stopped. The ledger holds no open handles between
// operations, so there is nothing else to release.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.log.Info(context.Background(), "scoring service stopped")
}

// Authenticate resolves credentials into an Identity using the current
// credential lists.
func (s *Service) Authenticate(ctx context.Context, username, secret string) (auth.Identity, error) {
	return auth.Authenticate(ctx, s.events, username, secret)
}

// SubmitScore records a judge's scores for an entry. Values are clamped to
// each criterion's legal range before the upsert; a resubmission replaces the
// judge's earlier record with a refreshed timestamp.
func (s *Service) SubmitScore(ctx context.Context, id auth.Identity, entryID string, scores map[string]int) (model.ScoreRecord, error) {
	if d := auth.RequireJudge(id); !d.Allowed {
		metrics.RecordSubmissionRejected()
		return model.ScoreRecord{}, fmt.Errorf("%w: %s", ErrForbidden, d.Reason)
	}

	entries, err := s.events.Entries(ctx)
	if err != nil {
		return model.ScoreRecord{}, err
	}
	criteria, err := s.events.Criteria(ctx)
	if err != nil {
		return model.ScoreRecord{}, err
	}

	var entry *model.Entry
	for i := range entries {
		if entries[i].ID == entryID {
			entry = &entries[i]
			break
		}
	}
	if entry == nil {
		metrics.RecordSubmissionRejected()
		return model.ScoreRecord{}, fmt.Errorf("%w: %s", ErrUnknownEntry, entryID)
	}

	clamped := false
	rec := model.ScoreRecord{
		Timestamp: time.Now(),
		Judge:     id.Name,
		EntryID:   entry.ID,
		EntryName: entry.Name,
		Scores:    make(map[string]int, len(criteria)),
	}
	for _, c := range criteria {
		v := scores[c.ID]
		cv := c.Clamp(v)
		if cv != v {
			clamped = true
		}
		rec.Scores[c.ID] = cv
	}

	if err := s.ledger.Upsert(ctx, rec); err != nil {
		return model.ScoreRecord{}, err
	}

	s.submissions.Add(1)
	metrics.RecordSubmissionAccepted()
	if clamped {
		metrics.RecordSubmissionClamped()
	}
	s.log.Info(ctx, "scores saved",
		logger.String("judge", id.Name),
		logger.String("entry", entry.ID),
		logger.Bool("clamped", clamped),
	)
	return rec, nil
}

// EntryStatus lists entries with a scored flag for the calling judge.
func (s *Service) EntryStatus(ctx context.Context, id auth.Identity) ([]EntryStatus, error) {
	if d := auth.RequireJudge(id); !d.Allowed {
		return nil, fmt.Errorf("%w: %s", ErrForbidden, d.Reason)
	}

	entries, err := s.events.Entries(ctx)
	if err != nil {
		return nil, err
	}
	records, err := s.ledger.ReadAll(ctx)
	if err != nil {
		return nil, err
	}

	scored := make(map[string]bool)
	for _, rec := range records {
		if rec.Judge == id.Name {
			scored[rec.EntryID] = true
		}
	}

	out := make([]EntryStatus, len(entries))
	for i, e := range entries {
		out[i] = EntryStatus{Entry: e, Scored: scored[e.ID]}
	}
	return out, nil
}

// JudgeRecord returns the calling judge's existing record for one entry,
// or nil when the judge has not scored it yet.
func (s *Service) JudgeRecord(ctx context.Context, id auth.Identity, entryID string) (*model.ScoreRecord, error) {
	if d := auth.RequireJudge(id); !d.Allowed {
		return nil, fmt.Errorf("%w: %s", ErrForbidden, d.Reason)
	}

	records, err := s.ledger.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].Judge == id.Name && records[i].EntryID == entryID {
			return &records[i], nil
		}
	}
	return nil, nil
}

// RawScores returns the full ledger snapshot and the active criteria.
func (s *Service) RawScores(ctx context.Context, id auth.Identity) ([]model.ScoreRecord, []model.Criterion, error) {
	if d := auth.RequireAdmin(id); !d.Allowed {
		return nil, nil, fmt.Errorf("%w: %s", ErrForbidden, d.Reason)
	}

	criteria, err := s.events.Criteria(ctx)
	if err != nil {
		return nil, nil, err
	}
	records, err := s.ledger.ReadAll(ctx)
	if err != nil {
		return nil, nil, err
	}
	return records, criteria, nil
}

// Rankings computes the normalized ranking from a fresh ledger snapshot.
// The engine runs without any lock; a submission landing between the
// snapshot and the computation shows up on the next request.
func (s *Service) Rankings(ctx context.Context, id auth.Identity) (Ranking, error) {
	if d := auth.RequireAdmin(id); !d.Allowed {
		return Ranking{}, fmt.Errorf("%w: %s", ErrForbidden, d.Reason)
	}

	criteria, err := s.events.Criteria(ctx)
	if err != nil {
		return Ranking{}, err
	}
	records, err := s.ledger.ReadAll(ctx)
	if err != nil {
		return Ranking{}, err
	}

	start := time.Now()
	results := s.engine.Compute(records, criteriaIDs(criteria))
	metrics.RecordRankingCompute(time.Since(start).Seconds(), len(records))
	s.rankingRuns.Add(1)

	maxPossible := 0
	for _, c := range criteria {
		maxPossible += c.MaxScore
	}
	return Ranking{Results: results, MaxPossible: maxPossible}, nil
}

// Stats returns operational counters for monitoring.
func (s *Service) Stats() map[string]any {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()

	return map[string]any{
		"started":     started,
		"submissions": s.submissions.Load(),
		"rankingRuns": s.rankingRuns.Load(),
	}
}

func criteriaIDs(criteria []model.Criterion) []string {
	ids := make([]string, len(criteria))
	for i, c := range criteria {
		ids[i] = c.ID
	}
	return ids
}

// Package scoregen submits randomized judge scores through the HTTP API,
// for demos and load checks against a running service.
package scoregen

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/mkarimof/jurybox/internal/config"
	"github.com/mkarimof/jurybox/internal/domain/model"
	"github.com/mkarimof/jurybox/pkg/logger"
)

// Config controls a generation run.
type Config struct {
	BaseURL   string
	EventPath string
	Workers   int
	Timeout   time.Duration
	Verbose   bool
}

// Stats summarizes a run.
type Stats struct {
	Submitted atomic.Int64
	Failed    atomic.Int64
}

// submission is one unit of work: a judge scoring an entry.
type submission struct {
	judge  string
	secret string
	entry  model.Entry
	scores map[string]int
}

// randomInt returns a uniform int in [0, n] using crypto/rand.
func randomInt(n int) int {
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n+1)))
	return int(v.Int64())
}

// Run reads the event configuration, builds one submission per
// (judge, entry) pair with random in-range scores, and posts them all.
func Run(ctx context.Context, cfg *Config) error {
	log := logger.Get()
	runID := uuid.New().String()

	provider := config.NewFileEventProvider(config.WithEventPath(cfg.EventPath))
	entries, err := provider.Entries(ctx)
	if err != nil {
		return fmt.Errorf("reading entries: %w", err)
	}
	criteria, err := provider.Criteria(ctx)
	if err != nil {
		return fmt.Errorf("reading criteria: %w", err)
	}
	judges, err := provider.JudgeCredentials(ctx)
	if err != nil {
		return fmt.Errorf("reading judge credentials: %w", err)
	}
	if len(entries) == 0 || len(judges) == 0 {
		return fmt.Errorf("nothing to submit: %d entries, %d judges", len(entries), len(judges))
	}

	log.Info(ctx, "starting score generation",
		logger.String("run", runID),
		logger.Int("entries", len(entries)),
		logger.Int("judges", len(judges)),
		logger.Int("criteria", len(criteria)),
	)

	work := make(chan submission)
	go func() {
		defer close(work)
		for judge, secret := range judges {
			for _, entry := range entries {
				scores := make(map[string]int, len(criteria))
				for _, c := range criteria {
					scores[c.ID] = randomInt(c.MaxScore)
				}
				select {
				case work <- submission{judge: judge, secret: secret, entry: entry, scores: scores}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	client := &http.Client{Timeout: cfg.Timeout}
	stats := &Stats{}

	var wg sync.WaitGroup
	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sub := range work {
				if err := post(ctx, client, cfg.BaseURL, sub); err != nil {
					stats.Failed.Add(1)
					if cfg.Verbose {
						log.Warn(ctx, "submission failed",
							logger.String("judge", sub.judge),
							logger.String("entry", sub.entry.ID),
							logger.Error(err),
						)
					}
					continue
				}
				stats.Submitted.Add(1)
			}
		}()
	}
	wg.Wait()

	log.Info(ctx, "score generation finished",
		logger.String("run", runID),
		logger.Int("submitted", int(stats.Submitted.Load())),
		logger.Int("failed", int(stats.Failed.Load())),
	)
	if failed := stats.Failed.Load(); failed > 0 {
		return fmt.Errorf("%d submissions failed", failed)
	}
	return nil
}

func post(ctx context.Context, client *http.Client, baseURL string, sub submission) error {
	body, err := json.Marshal(map[string]any{
		"entry_id": sub.entry.ID,
		"scores":   sub.scores,
	})
	if err != nil {
		return fmt.Errorf("encoding body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/scores", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(sub.judge, sub.secret)

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("posting scores: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

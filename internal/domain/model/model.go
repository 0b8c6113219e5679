// Package model contains domain models passed between layers.
package model

import "time"

// Criterion is one judged dimension with its legal score range [0, MaxScore].
type Criterion struct {
	ID       string `json:"id" koanf:"id"`
	Name     string `json:"name" koanf:"name"`
	MaxScore int    `json:"max_score" koanf:"max_score"`
}

// Clamp forces v into the criterion's legal range.
func (c Criterion) Clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > c.MaxScore {
		return c.MaxScore
	}
	return v
}

// Entry is a competing entry (e.g. a team). Identity is stable for the event.
type Entry struct {
	ID   string `json:"id" koanf:"id"`
	Name string `json:"name" koanf:"name"`
}

// ScoreRecord is one judge's live scores for one entry.
// At most one record exists per (Judge, EntryID) pair; a resubmission
// replaces the earlier record in place with a refreshed timestamp.
type ScoreRecord struct {
	Timestamp time.Time      `json:"timestamp"`
	Judge     string         `json:"judge"`
	EntryID   string         `json:"entry_id"`
	EntryName string         `json:"entry_name"`
	Scores    map[string]int `json:"scores"`
}

// Total sums the record's scores over the given criterion IDs.
// An absent criterion contributes zero.
func (r ScoreRecord) Total(criteriaIDs []string) int {
	total := 0
	for _, id := range criteriaIDs {
		total += r.Scores[id]
	}
	return total
}

// JudgeScore is one judge's contribution to an entry's aggregate, kept for audit.
type JudgeScore struct {
	Judge      string  `json:"judge"`
	Raw        int     `json:"raw_score"`
	Normalized float64 `json:"normalized_score"`
}

// EntryResult is the per-entry aggregate produced by the normalization engine.
type EntryResult struct {
	EntryID       string       `json:"entry_id"`
	EntryName     string       `json:"entry_name"`
	AvgRaw        float64      `json:"avg_raw_score"`
	AvgNormalized float64      `json:"avg_normalized_score"`
	NumJudges     int          `json:"num_judges"`
	JudgeScores   []JudgeScore `json:"judge_scores"`
}

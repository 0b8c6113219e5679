// Package normalize converts judge-biased raw totals into a comparable ranking.
//
// Each judge's raw totals are z-score normalized (mean 0, std 1) to remove
// that judge's leniency or strictness before entries are compared across
// judges. The computation is pure and deterministic: the same snapshot and
// criteria always produce the same output.
package normalize

import (
	"math"
	"sort"

	"github.com/mkarimof/jurybox/internal/domain/model"
)

// Scale mapping constants: z in [-zRange, zRange] maps linearly onto [0, scaleMax].
const (
	zRange   = 3.0
	scaleMax = 100.0
)

// Engine computes ranked entry aggregates from a ledger snapshot.
type Engine interface {
	// Compute consumes a snapshot of score records and the ordered active
	// criterion IDs and returns per-entry aggregates sorted by average
	// normalized score, highest first.
	Compute(records []model.ScoreRecord, criteriaIDs []string) []model.EntryResult
}

// ZScoreEngine implements Engine with per-judge z-score normalization.
type ZScoreEngine struct{}

// NewZScoreEngine creates a new z-score normalization engine.
func NewZScoreEngine() *ZScoreEngine {
	return &ZScoreEngine{}
}

// Compute implements Engine.
func (e *ZScoreEngine) Compute(records []model.ScoreRecord, criteriaIDs []string) []model.EntryResult {
	if len(records) == 0 {
		return []model.EntryResult{}
	}

	totals := make([]float64, len(records))
	for i, rec := range records {
		totals[i] = float64(rec.Total(criteriaIDs))
	}

	normalized := normalizePerJudge(records, totals)

	// Group by entry, preserving first-appearance order so the final stable
	// sort keeps ties in snapshot order.
	order := make([]string, 0)
	byEntry := make(map[string][]int)
	for i, rec := range records {
		if _, ok := byEntry[rec.EntryID]; !ok {
			order = append(order, rec.EntryID)
		}
		byEntry[rec.EntryID] = append(byEntry[rec.EntryID], i)
	}

	results := make([]model.EntryResult, 0, len(order))
	for _, entryID := range order {
		idxs := byEntry[entryID]
		sumRaw, sumNorm := 0.0, 0.0
		judgeScores := make([]model.JudgeScore, 0, len(idxs))
		for _, i := range idxs {
			sumRaw += totals[i]
			sumNorm += normalized[i]
			judgeScores = append(judgeScores, model.JudgeScore{
				Judge:      records[i].Judge,
				Raw:        int(totals[i]),
				Normalized: normalized[i],
			})
		}
		n := float64(len(idxs))
		results = append(results, model.EntryResult{
			EntryID:       entryID,
			EntryName:     records[idxs[0]].EntryName,
			AvgRaw:        round2(sumRaw / n),
			AvgNormalized: round2(sumNorm / n),
			NumJudges:     len(idxs),
			JudgeScores:   judgeScores,
		})
	}

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].AvgNormalized > results[b].AvgNormalized
	})

	return results
}

// normalizePerJudge returns the 0-100 normalized score for every record,
// indexed like records.
func normalizePerJudge(records []model.ScoreRecord, totals []float64) []float64 {
	byJudge := make(map[string][]int)
	for i, rec := range records {
		byJudge[rec.Judge] = append(byJudge[rec.Judge], i)
	}

	normalized := make([]float64, len(records))
	for _, idxs := range byJudge {
		if len(idxs) < 2 {
			// A single data point carries no spread; anchor at the midpoint.
			for _, i := range idxs {
				normalized[i] = scaleZ(0)
			}
			continue
		}

		mean := 0.0
		for _, i := range idxs {
			mean += totals[i]
		}
		mean /= float64(len(idxs))

		// Sample standard deviation (n-1 denominator).
		variance := 0.0
		for _, i := range idxs {
			d := totals[i] - mean
			variance += d * d
		}
		std := math.Sqrt(variance / float64(len(idxs)-1))

		for _, i := range idxs {
			z := 0.0
			if std > 0 {
				z = (totals[i] - mean) / std
			}
			normalized[i] = scaleZ(z)
		}
	}

	return normalized
}

// scaleZ maps a z-score onto the bounded 0-100 scale:
// z=-3 -> 0, z=0 -> 50, z=3 -> 100, clamped outside that range.
func scaleZ(z float64) float64 {
	v := (z + zRange) / (2 * zRange) * scaleMax
	if v < 0 {
		v = 0
	}
	if v > scaleMax {
		v = scaleMax
	}
	return round2(v)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

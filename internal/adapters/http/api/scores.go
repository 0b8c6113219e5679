// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/mkarimof/jurybox/internal/domain/model"
)

// ScoresHandler handles score submission and raw record reads.
type ScoresHandler struct {
	deps Dependencies
}

// NewScoresHandler creates a new scores handler.
func NewScoresHandler(deps Dependencies) *ScoresHandler {
	return &ScoresHandler{deps: deps}
}

// HandleScores dispatches POST /scores (judge submission) and
// GET /scores (admin raw records).
func (h *ScoresHandler) HandleScores(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handleSubmit(w, r)
	case http.MethodGet:
		h.handleRawScores(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *ScoresHandler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	id, ok := identify(w, r, h.deps)
	if !ok {
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	rec, err := h.deps.SubmitScore(r.Context(), id, req.EntryID, req.Scores)
	if err != nil {
		writeUseCaseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, submitResponse{Status: "saved", Record: rec})
}

// rawScoresResponse carries the ledger snapshot plus the active criteria
// so clients can interpret the score maps.
type rawScoresResponse struct {
	Criteria []model.Criterion   `json:"criteria"`
	Records  []model.ScoreRecord `json:"records"`
}

func (h *ScoresHandler) handleRawScores(w http.ResponseWriter, r *http.Request) {
	id, ok := identify(w, r, h.deps)
	if !ok {
		return
	}

	records, criteria, err := h.deps.RawScores(r.Context(), id)
	if err != nil {
		writeUseCaseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rawScoresResponse{Criteria: criteria, Records: records})
}

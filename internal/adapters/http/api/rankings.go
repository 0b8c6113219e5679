// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
)

// RankingsHandler handles normalized ranking requests.
type RankingsHandler struct {
	deps Dependencies
}

// NewRankingsHandler creates a new rankings handler.
func NewRankingsHandler(deps Dependencies) *RankingsHandler {
	return &RankingsHandler{deps: deps}
}

// HandleGetRankings handles GET /rankings requests (admin only).
func (h *RankingsHandler) HandleGetRankings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id, ok := identify(w, r, h.deps)
	if !ok {
		return
	}

	ranking, err := h.deps.Rankings(r.Context(), id)
	if err != nil {
		writeUseCaseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ranking)
}

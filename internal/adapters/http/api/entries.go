// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strings"
)

// EntriesHandler handles a judge's entry listing and per-entry record reads.
type EntriesHandler struct {
	deps Dependencies
}

// NewEntriesHandler creates a new entries handler.
func NewEntriesHandler(deps Dependencies) *EntriesHandler {
	return &EntriesHandler{deps: deps}
}

// HandleGetEntries handles GET /entries requests: every entry with a
// scored/unscored flag for the calling judge.
func (h *EntriesHandler) HandleGetEntries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id, ok := identify(w, r, h.deps)
	if !ok {
		return
	}

	statuses, err := h.deps.EntryStatus(r.Context(), id)
	if err != nil {
		writeUseCaseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statuses)
}

// HandleGetEntry handles GET /entries/{entry_id} requests: the calling
// judge's existing record for that entry, used to prefill a rescore form.
func (h *EntriesHandler) HandleGetEntry(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	entryID := strings.TrimPrefix(r.URL.Path, "/entries/")
	if entryID == "" || strings.Contains(entryID, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	id, ok := identify(w, r, h.deps)
	if !ok {
		return
	}

	rec, err := h.deps.JudgeRecord(r.Context(), id, entryID)
	if err != nil {
		writeUseCaseError(w, err)
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

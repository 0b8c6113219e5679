// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/mkarimof/jurybox/internal/adapters/export"
)

// ExportHandler streams the results workbook.
type ExportHandler struct {
	deps Dependencies
}

// NewExportHandler creates a new export handler.
func NewExportHandler(deps Dependencies) *ExportHandler {
	return &ExportHandler{deps: deps}
}

// HandleExport handles GET /export requests (admin only) and answers with
// an XLSX attachment holding rankings and raw scores.
func (h *ExportHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
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
	records, criteria, err := h.deps.RawScores(r.Context(), id)
	if err != nil {
		writeUseCaseError(w, err)
		return
	}

	wb, err := export.Workbook(ranking.Results, records, criteria, ranking.MaxPossible)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "export_failed", err)
		return
	}

	filename := fmt.Sprintf("jurybox_results_%s.xlsx", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	if _, err := wb.WriteTo(w); err != nil {
		// Headers are already out; nothing sensible left to send.
		return
	}
}

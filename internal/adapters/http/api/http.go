// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mkarimof/jurybox/internal/adapters/repository"
	service "github.com/mkarimof/jurybox/internal/app"
	"github.com/mkarimof/jurybox/internal/domain/auth"
	"github.com/mkarimof/jurybox/internal/domain/model"
)

// Dependencies required by HTTP handlers. An interface bundle keeps the
// handler layer loosely coupled to the service implementation.
type Dependencies interface {
	Authenticate(ctx context.Context, username, secret string) (auth.Identity, error)
	SubmitScore(ctx context.Context, id auth.Identity, entryID string, scores map[string]int) (model.ScoreRecord, error)
	EntryStatus(ctx context.Context, id auth.Identity) ([]service.EntryStatus, error)
	JudgeRecord(ctx context.Context, id auth.Identity, entryID string) (*model.ScoreRecord, error)
	RawScores(ctx context.Context, id auth.Identity) ([]model.ScoreRecord, []model.Criterion, error)
	Rankings(ctx context.Context, id auth.Identity) (service.Ranking, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	scoresHandler   *ScoresHandler
	entriesHandler  *EntriesHandler
	rankingsHandler *RankingsHandler
	exportHandler   *ExportHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		scoresHandler:   NewScoresHandler(deps),
		entriesHandler:  NewEntriesHandler(deps),
		rankingsHandler: NewRankingsHandler(deps),
		exportHandler:   NewExportHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/scores", MetricsMiddleware(s.scoresHandler.HandleScores, "scores"))
	mux.HandleFunc("/entries", MetricsMiddleware(s.entriesHandler.HandleGetEntries, "entries"))
	mux.HandleFunc("/entries/", MetricsMiddleware(s.entriesHandler.HandleGetEntry, "entry"))
	mux.HandleFunc("/rankings", MetricsMiddleware(s.rankingsHandler.HandleGetRankings, "rankings"))
	mux.HandleFunc("/export", MetricsMiddleware(s.exportHandler.HandleExport, "export"))
}

// submitRequest mirrors the request body for POST /scores.
type submitRequest struct {
	EntryID string         `json:"entry_id"`
	Scores  map[string]int `json:"scores"`
}

func (r submitRequest) validate() error {
	switch {
	case r.EntryID == "":
		return errors.New("missing entry_id")
	case len(r.Scores) == 0:
		return errors.New("missing scores")
	}
	return nil
}

type submitResponse struct {
	Status string            `json:"status"`
	Record model.ScoreRecord `json:"record"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// identify authenticates the request's Basic Auth credentials into an
// Identity. On failure it writes a 401 with a challenge and returns false.
func identify(w http.ResponseWriter, r *http.Request, deps Dependencies) (auth.Identity, bool) {
	username, secret, ok := r.BasicAuth()
	if !ok {
		w.Header().Set("WWW-Authenticate", `Basic realm="jurybox"`)
		writeError(w, http.StatusUnauthorized, "unauthorized", ErrUnauthorized)
		return auth.Identity{}, false
	}
	id, err := deps.Authenticate(r.Context(), username, secret)
	if err != nil {
		if errors.Is(err, auth.ErrBadCredentials) {
			w.Header().Set("WWW-Authenticate", `Basic realm="jurybox"`)
			writeError(w, http.StatusUnauthorized, "unauthorized", err)
			return auth.Identity{}, false
		}
		writeError(w, http.StatusInternalServerError, "config_error", err)
		return auth.Identity{}, false
	}
	return id, true
}

// writeUseCaseError maps service errors onto HTTP statuses. Lock timeouts
// are transient and answered with 503 plus a Retry-After hint.
func writeUseCaseError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden", err)
	case errors.Is(err, service.ErrUnknownEntry):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, repository.ErrLockTimeout):
		w.Header().Set("Retry-After", "1")
		writeError(w, http.StatusServiceUnavailable, "lock_timeout", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

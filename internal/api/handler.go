// Package api exposes standings projections over HTTP and websocket.
package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"league-markov/internal/logging"
	"league-markov/internal/markov"
	"league-markov/internal/observability"
	"league-markov/internal/pipeline"
	"league-markov/internal/reporting"
)

// Service is the pipeline surface the API serves. *orchestrator.Orchestrator implements it.
type Service interface {
	Standings(ctx context.Context, season string, remainingHome, remainingAway int) (*reporting.Report, error)
	Seasons(ctx context.Context) ([]string, error)
	Sufficiency(ctx context.Context, season string) (*pipeline.SufficiencyResult, error)
	TeamMatrices(ctx context.Context, season, team string) (home, away *markov.TransitionMatrix, err error)
	Refresh(ctx context.Context, season string) (int, error)
}

// Options configures a Handler.
type Options struct {
	Service       Service
	RemainingHome int // default when the query omits remaining_home
	RemainingAway int // default when the query omits remaining_away
	Logger        logrus.FieldLogger
}

// Handler serves the HTTP API.
type Handler struct {
	svc           Service
	remainingHome int
	remainingAway int
	logger        logrus.FieldLogger
	upgrader      websocket.Upgrader
}

// NewHandler creates a Handler.
func NewHandler(opts Options) *Handler {
	h := &Handler{
		svc:           opts.Service,
		remainingHome: opts.RemainingHome,
		remainingAway: opts.RemainingAway,
		logger:        opts.Logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
	if h.logger == nil {
		h.logger = logging.Discard()
	}
	return h
}

// Router builds the route table.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(h.metricsMiddleware)

	r.HandleFunc("/health", h.health).Methods(http.MethodGet)
	r.Handle("/metrics", observability.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/seasons", h.listSeasons).Methods(http.MethodGet)
	api.HandleFunc("/seasons/{season}/standings", h.standingsJSON).Methods(http.MethodGet)
	api.HandleFunc("/seasons/{season}/standings.csv", h.standingsCSV).Methods(http.MethodGet)
	api.HandleFunc("/seasons/{season}/standings.md", h.standingsMarkdown).Methods(http.MethodGet)
	api.HandleFunc("/seasons/{season}/standings/stream", h.standingsStream).Methods(http.MethodGet)
	api.HandleFunc("/seasons/{season}/sufficiency", h.sufficiency).Methods(http.MethodGet)
	api.HandleFunc("/seasons/{season}/teams/{team}/matrices", h.teamMatrices).Methods(http.MethodGet)
	api.HandleFunc("/seasons/{season}/refresh", h.refresh).Methods(http.MethodPost)

	return r
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// SeasonsResponse lists stored seasons.
type SeasonsResponse struct {
	Seasons []string `json:"seasons"`
}

func (h *Handler) listSeasons(w http.ResponseWriter, r *http.Request) {
	seasons, err := h.svc.Seasons(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if seasons == nil {
		seasons = []string{}
	}
	writeJSON(w, http.StatusOK, SeasonsResponse{Seasons: seasons})
}

// remaining reads remaining_home/remaining_away, falling back to the handler defaults.
func (h *Handler) remaining(r *http.Request) (home, away int, err error) {
	parse := func(name string, def int) (int, error) {
		v := r.URL.Query().Get(name)
		if v == "" {
			return def, nil
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%w: %s must be a non-negative integer", errBadRequest, name)
		}
		return n, nil
	}

	if home, err = parse("remaining_home", h.remainingHome); err != nil {
		return 0, 0, err
	}
	if away, err = parse("remaining_away", h.remainingAway); err != nil {
		return 0, 0, err
	}
	return home, away, nil
}

// report runs the pipeline for the request's season and query.
func (h *Handler) report(r *http.Request) (*reporting.Report, error) {
	home, away, err := h.remaining(r)
	if err != nil {
		return nil, err
	}
	return h.svc.Standings(r.Context(), mux.Vars(r)["season"], home, away)
}

func (h *Handler) standingsJSON(w http.ResponseWriter, r *http.Request) {
	report, err := h.report(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	observability.RecordStandingsRendered("json")
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) standingsCSV(w http.ResponseWriter, r *http.Request) {
	report, err := h.report(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="standings-%s.csv"`, report.Season))
	w.Header().Set("X-Run-ID", report.RunID)
	_, _ = w.Write([]byte(reporting.RenderCSV(report.Standings)))
}

func (h *Handler) standingsMarkdown(w http.ResponseWriter, r *http.Request) {
	report, err := h.report(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("X-Run-ID", report.RunID)
	_, _ = w.Write([]byte(reporting.RenderMarkdown(report)))
}

func (h *Handler) sufficiency(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.Sufficiency(r.Context(), mux.Vars(r)["season"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// MatricesResponse holds a team's venue-conditioned transition matrices.
type MatricesResponse struct {
	Season string                   `json:"season"`
	Team   string                   `json:"team"`
	Home   *markov.TransitionMatrix `json:"home"`
	Away   *markov.TransitionMatrix `json:"away"`
}

func (h *Handler) teamMatrices(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	home, away, err := h.svc.TeamMatrices(r.Context(), vars["season"], vars["team"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MatricesResponse{
		Season: vars["season"],
		Team:   vars["team"],
		Home:   home,
		Away:   away,
	})
}

// RefreshResponse reports how many rows a re-scrape stored.
type RefreshResponse struct {
	Season  string `json:"season"`
	Matches int    `json:"matches"`
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	season := mux.Vars(r)["season"]
	n, err := h.svc.Refresh(r.Context(), season)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, RefreshResponse{Season: season, Matches: n})
}

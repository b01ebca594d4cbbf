package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"league-markov/internal/orchestrator"
	"league-markov/internal/pipeline"
	"league-markov/internal/prepare"
	"league-markov/internal/reporting"
	"league-markov/internal/simulation"
	"league-markov/internal/storage"
	"league-markov/internal/storage/memory"
)

func newTestRouter(t *testing.T, fallback simulation.FallbackPolicy) http.Handler {
	t.Helper()
	store := memory.NewMatchStore()
	require.NoError(t, pipeline.LoadFixtures(context.Background(), store))

	orch := orchestrator.New(orchestrator.Options{MatchStore: store, Seed: 42, Fallback: fallback})
	return NewHandler(Options{Service: orch, RemainingHome: 3, RemainingAway: 3}).Router()
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	rec := get(t, newTestRouter(t, ""), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	rec := get(t, newTestRouter(t, ""), "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListSeasons(t *testing.T) {
	rec := get(t, newTestRouter(t, ""), "/api/v1/seasons")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SeasonsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{pipeline.FixtureSeason}, resp.Seasons)
}

func TestStandingsJSON(t *testing.T) {
	rec := get(t, newTestRouter(t, ""), "/api/v1/seasons/2024-2025/standings?remaining_home=2&remaining_away=1")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	var report reporting.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	require.Len(t, report.Standings, 4)
	assert.Equal(t, "Liverpool", report.Standings[0].Team)
	assert.Equal(t, 12, report.Standings[0].ActualPoints)
	assert.Equal(t, 2, report.RemainingHome)
	assert.Equal(t, 1, report.RemainingAway)
	for _, row := range report.Standings {
		assert.LessOrEqual(t, row.SimulatedPoints, 9)
	}
}

func TestStandingsJSON_DefaultsAndRequestID(t *testing.T) {
	h := newTestRouter(t, "")
	req := httptest.NewRequest(http.MethodGet, "/api/v1/seasons/2024-2025/standings", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))

	var report reporting.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 3, report.RemainingHome)
	assert.Equal(t, 3, report.RemainingAway)
}

func TestStandings_Errors(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"bad remaining", "/api/v1/seasons/2024-2025/standings?remaining_home=abc", http.StatusBadRequest},
		{"negative remaining", "/api/v1/seasons/2024-2025/standings?remaining_away=-1", http.StatusBadRequest},
		{"invalid season", "/api/v1/seasons/2024-2026/standings", http.StatusBadRequest},
		{"unknown season", "/api/v1/seasons/2030-2031/standings", http.StatusNotFound},
	}

	h := newTestRouter(t, "")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, h, tt.path)
			assert.Equal(t, tt.status, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
			assert.NotEmpty(t, resp.RequestID)
		})
	}
}

func TestStandings_StrictFallbackIsUnprocessable(t *testing.T) {
	rec := get(t, newTestRouter(t, simulation.FallbackStrict), "/api/v1/seasons/2024-2025/standings")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestStandingsCSV(t *testing.T) {
	rec := get(t, newTestRouter(t, ""), "/api/v1/seasons/2024-2025/standings.csv")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "standings-2024-2025.csv")

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "Team,EPLPoints,MCPoints", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "Liverpool,12,"), lines[1])
}

func TestStandingsMarkdown(t *testing.T) {
	rec := get(t, newTestRouter(t, ""), "/api/v1/seasons/2024-2025/standings.md")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "# Projected Standings 2024-2025")
	assert.NotEmpty(t, rec.Header().Get("X-Run-ID"))
}

func TestSufficiency(t *testing.T) {
	rec := get(t, newTestRouter(t, ""), "/api/v1/seasons/2024-2025/sufficiency")
	require.Equal(t, http.StatusOK, rec.Code)

	var result pipeline.SufficiencyResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Len(t, result.Checks, 4)
	assert.False(t, result.AllPass)
}

func TestTeamMatrices(t *testing.T) {
	h := newTestRouter(t, "")

	rec := get(t, h, "/api/v1/seasons/2024-2025/teams/Arsenal/matrices")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Team string                        `json:"team"`
		Home map[string]map[string]float64 `json:"home"`
		Away map[string]map[string]float64 `json:"away"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Arsenal", resp.Team)
	assert.InDelta(t, 1.0, resp.Home["W"]["D"], 1e-9)
	assert.InDelta(t, 1.0, resp.Home["D"]["W"], 1e-9)
	assert.NotContains(t, resp.Away, "L")

	rec = get(t, h, "/api/v1/seasons/2024-2025/teams/Wrexham/matrices")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRefresh_WithoutScraper(t *testing.T) {
	h := newTestRouter(t, "")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/seasons/2024-2025/refresh", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = get(t, h, "/api/v1/seasons/2024-2025/refresh")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func wsURL(srv *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + path
}

func TestStandingsStream(t *testing.T) {
	srv := httptest.NewServer(newTestRouter(t, ""))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/api/v1/seasons/2024-2025/standings/stream"), nil)
	require.NoError(t, err)
	defer conn.Close()

	var teams []string
	for i := 0; i < 4; i++ {
		var msg TeamMessage
		require.NoError(t, conn.ReadJSON(&msg))
		assert.Equal(t, MessageTeam, msg.Type)
		assert.Equal(t, i+1, msg.Rank)
		assert.Equal(t, msg.ActualPoints+msg.SimulatedPoints, msg.ProjectedPoints)
		teams = append(teams, msg.Team)
	}
	assert.Equal(t, []string{"Liverpool", "Arsenal", "Chelsea", "Everton"}, teams)

	var summary SummaryMessage
	require.NoError(t, conn.ReadJSON(&summary))
	assert.Equal(t, MessageSummary, summary.Type)
	assert.Equal(t, 4, summary.Teams)
	assert.Equal(t, pipeline.FixtureSeason, summary.Season)
	assert.NotEmpty(t, summary.RunID)

	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}

func TestStandingsStream_ErrorBeforeUpgrade(t *testing.T) {
	srv := httptest.NewServer(newTestRouter(t, ""))
	defer srv.Close()

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "/api/v1/seasons/2030-2031/standings/stream"), nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "no match data")
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("wrap: %w", orchestrator.ErrInvalidSeason), http.StatusBadRequest},
		{storage.ErrInvalidInput, http.StatusBadRequest},
		{fmt.Errorf("wrap: %w", orchestrator.ErrNoData), http.StatusNotFound},
		{storage.ErrNotFound, http.StatusNotFound},
		{&prepare.SchemaError{Column: "Date"}, http.StatusUnprocessableEntity},
		{fmt.Errorf("x: %w", &prepare.DateParseError{Row: 1, Value: "bad"}), http.StatusUnprocessableEntity},
		{&simulation.EmptyDistributionError{Team: "A"}, http.StatusUnprocessableEntity},
		{simulation.ErrMissingPredecessor, http.StatusUnprocessableEntity},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), "%v", tt.err)
	}
}

package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"league-markov/internal/domain"
	"league-markov/internal/observability"
)

const streamWriteTimeout = 10 * time.Second

// Stream message types.
const (
	MessageTeam    = "team"
	MessageSummary = "summary"
)

// TeamMessage is sent once per standings row, in table order.
type TeamMessage struct {
	Type string `json:"type"`
	Rank int    `json:"rank"`
	domain.StandingRow
	ProjectedPoints int `json:"projected_points"`
}

// SummaryMessage closes a stream.
type SummaryMessage struct {
	Type          string    `json:"type"`
	RunID         string    `json:"run_id"`
	Season        string    `json:"season"`
	Teams         int       `json:"teams"`
	FallbackDraws int       `json:"fallback_draws"`
	GeneratedAt   time.Time `json:"generated_at"`
}

// standingsStream runs the projection, then upgrades and streams one message
// per team followed by a summary. Pipeline errors are returned as plain HTTP
// responses before the upgrade.
func (h *Handler) standingsStream(w http.ResponseWriter, r *http.Request) {
	report, err := h.report(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.logger.WithError(err).Debug("websocket upgrade failed")
		return
	}
	defer conn.Close()

	log := h.logger.WithField("run_id", report.RunID)
	write := func(v any) error {
		if err := conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout)); err != nil {
			return err
		}
		return conn.WriteJSON(v)
	}

	for i, row := range report.Standings {
		msg := TeamMessage{
			Type:            MessageTeam,
			Rank:            i + 1,
			StandingRow:     row,
			ProjectedPoints: row.ProjectedPoints(),
		}
		if err := write(msg); err != nil {
			log.WithError(err).Warn("stream write failed")
			return
		}
	}

	summary := SummaryMessage{
		Type:          MessageSummary,
		RunID:         report.RunID,
		Season:        report.Season,
		Teams:         len(report.Standings),
		FallbackDraws: report.DataSummary.FallbackDraws,
		GeneratedAt:   report.GeneratedAt,
	}
	if err := write(summary); err != nil {
		log.WithError(err).Warn("stream write failed")
		return
	}
	observability.RecordStandingsRendered("stream")

	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(streamWriteTimeout))
}

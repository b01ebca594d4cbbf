package reporting

import (
	"encoding/csv"
	"strconv"
	"strings"

	"league-markov/internal/domain"
	"league-markov/internal/observability"
)

// StandingsCSVHeader is the header row of RenderCSV.
var StandingsCSVHeader = []string{"Team", "EPLPoints", "MCPoints"}

// RenderCSV renders the final table as CSV in the given row order.
func RenderCSV(rows []domain.StandingRow) string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	_ = w.Write(StandingsCSVHeader)
	for _, r := range rows {
		_ = w.Write([]string{
			r.Team,
			strconv.Itoa(r.ActualPoints),
			strconv.Itoa(r.SimulatedPoints),
		})
	}
	w.Flush()

	observability.RecordStandingsRendered("csv")
	return sb.String()
}

package reporting

import (
	"fmt"
	"strings"
	"time"

	"league-markov/internal/observability"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString(fmt.Sprintf("# Projected Standings %s\n\n", r.Season))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Run: %s | Seed: %d | Fallback: %s\n\n", r.RunID, r.Seed, r.Fallback))
	sb.WriteString(fmt.Sprintf("Remaining fixtures per team: %d home, %d away\n\n", r.RemainingHome, r.RemainingAway))

	// Data Summary
	sb.WriteString("## Data Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Teams | %d |\n", r.DataSummary.Teams))
	sb.WriteString(fmt.Sprintf("| Match Rows | %d |\n", r.DataSummary.Matches))
	sb.WriteString(fmt.Sprintf("| Played | %d |\n", r.DataSummary.Played))
	sb.WriteString(fmt.Sprintf("| Unplayed | %d |\n", r.DataSummary.Unplayed))
	if !r.DataSummary.DateRangeStart.IsZero() {
		sb.WriteString(fmt.Sprintf("| First Match | %s |\n", r.DataSummary.DateRangeStart.Format(time.DateOnly)))
		sb.WriteString(fmt.Sprintf("| Last Match | %s |\n", r.DataSummary.DateRangeEnd.Format(time.DateOnly)))
	}
	sb.WriteString(fmt.Sprintf("| Fallback Draws | %d |\n", r.DataSummary.FallbackDraws))
	sb.WriteString("\n")

	// Data Quality
	if len(r.DataQuality.SufficiencyChecks) > 0 {
		sb.WriteString("## Data Quality\n\n")
		sb.WriteString("| Check | Threshold | Actual | Status |\n")
		sb.WriteString("|-------|-----------|--------|--------|\n")
		for _, check := range r.DataQuality.SufficiencyChecks {
			status := "FAIL"
			if check.Pass {
				status = "PASS"
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
				check.Name, check.Threshold, check.Actual, status))
		}
		sb.WriteString("\n")

		if len(r.DataQuality.IntegrityErrors) > 0 {
			sb.WriteString("### Findings\n\n")
			for _, e := range r.DataQuality.IntegrityErrors {
				sb.WriteString(fmt.Sprintf("- %s\n", e))
			}
			sb.WriteString("\n")
		}
	}

	// Standings
	sb.WriteString("## Standings\n\n")
	if len(r.Standings) > 0 {
		sb.WriteString("| # | Team | EPL Points | MC Points | Projected |\n")
		sb.WriteString("|---|------|------------|-----------|-----------|\n")
		for i, row := range r.Standings {
			sb.WriteString(fmt.Sprintf("| %d | %s | %d | %d | %d |\n",
				i+1, escapeCell(row.Team), row.ActualPoints, row.SimulatedPoints, row.ProjectedPoints()))
		}
	} else {
		sb.WriteString("No teams in season.\n")
	}
	sb.WriteString("\n")

	observability.RecordStandingsRendered("markdown")
	return sb.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

package reporting

import (
	"time"

	"league-markov/internal/domain"
)

// Report is one projected-standings run with the inputs that produced it.
type Report struct {
	// Metadata
	RunID         string    `json:"run_id"`
	Season        string    `json:"season"`
	GeneratedAt   time.Time `json:"generated_at"`
	Seed          uint64    `json:"seed"`
	Fallback      string    `json:"fallback"`
	RemainingHome int       `json:"remaining_home"`
	RemainingAway int       `json:"remaining_away"`

	DataSummary DataSummary        `json:"data_summary"`
	DataQuality DataQualitySection `json:"data_quality"`

	// Sorted descending by actual points
	Standings []domain.StandingRow `json:"standings"`
}

// DataSummary describes the match records the projection ran on.
type DataSummary struct {
	Teams          int       `json:"teams"`
	Matches        int       `json:"matches"`
	Played         int       `json:"played"`
	Unplayed       int       `json:"unplayed"`
	DateRangeStart time.Time `json:"date_range_start"`
	DateRangeEnd   time.Time `json:"date_range_end"`
	FallbackDraws  int       `json:"fallback_draws"`
}

// DataQualitySection contains season sufficiency checks and integrity findings.
type DataQualitySection struct {
	SufficiencyChecks []SufficiencyCheckRow `json:"sufficiency_checks,omitempty"`
	IntegrityErrors   []string              `json:"integrity_errors,omitempty"`
	AllChecksPassed   bool                  `json:"all_checks_passed"`
}

// SufficiencyCheckRow represents one sufficiency criterion.
type SufficiencyCheckRow struct {
	Name      string `json:"name"`
	Threshold string `json:"threshold"`
	Actual    string `json:"actual"`
	Pass      bool   `json:"pass"`
}

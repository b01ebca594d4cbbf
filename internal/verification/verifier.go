// Package verification checks that a standings projection replays identically
// for a fixed seed and that the estimated matrices are well formed.
package verification

import (
	"fmt"
	"math"

	"league-markov/internal/domain"
	"league-markov/internal/markov"
)

// FloatTolerance is the tolerance for probability comparisons.
const FloatTolerance = 1e-9

// FieldDivergence represents a mismatch between an expected and a replayed value.
type FieldDivergence struct {
	Team     string `json:"team"`
	Field    string `json:"field"`
	Expected any    `json:"expected"`
	Actual   any    `json:"actual"`
}

func (d FieldDivergence) String() string {
	return fmt.Sprintf("%s %s: expected %v, got %v", d.Team, d.Field, d.Expected, d.Actual)
}

// VerificationReport contains the result of verifying one season.
type VerificationReport struct {
	Season         string            `json:"season"`
	Seed           uint64            `json:"seed"`
	Runs           int               `json:"runs"`
	TotalTeams     int               `json:"total_teams"`
	MatchedTeams   int               `json:"matched_teams"`
	DivergentTeams int               `json:"divergent_teams"`
	Divergences    []FieldDivergence `json:"divergences,omitempty"`
}

// OK reports whether every replay and matrix check matched.
func (r *VerificationReport) OK() bool {
	return r.DivergentTeams == 0 && len(r.Divergences) == 0
}

// CompareStandings compares two standings tables row by row.
// Rows are matched by position, so an ordering change shows up as a Team divergence.
func CompareStandings(expected, actual []domain.StandingRow) []FieldDivergence {
	var divergences []FieldDivergence

	if len(expected) != len(actual) {
		divergences = append(divergences, FieldDivergence{
			Field:    "Rows",
			Expected: len(expected),
			Actual:   len(actual),
		})
	}

	n := min(len(expected), len(actual))
	for i := 0; i < n; i++ {
		e, a := expected[i], actual[i]
		if e.Team != a.Team {
			divergences = append(divergences, FieldDivergence{
				Team:     e.Team,
				Field:    fmt.Sprintf("Team[%d]", i),
				Expected: e.Team,
				Actual:   a.Team,
			})
			continue
		}
		if e.ActualPoints != a.ActualPoints {
			divergences = append(divergences, FieldDivergence{
				Team:     e.Team,
				Field:    "EPLPoints",
				Expected: e.ActualPoints,
				Actual:   a.ActualPoints,
			})
		}
		if e.SimulatedPoints != a.SimulatedPoints {
			divergences = append(divergences, FieldDivergence{
				Team:     e.Team,
				Field:    "MCPoints",
				Expected: e.SimulatedPoints,
				Actual:   a.SimulatedPoints,
			})
		}
	}

	return divergences
}

// CheckMatrix reports rows of m that do not sum to 1 within FloatTolerance.
func CheckMatrix(team string, venue domain.Venue, m *markov.TransitionMatrix) []FieldDivergence {
	var divergences []FieldDivergence
	for _, from := range m.Rows() {
		var sum float64
		for _, to := range m.Columns() {
			sum += m.Prob(from, to)
		}
		if !floatEquals(sum, 1.0) {
			divergences = append(divergences, FieldDivergence{
				Team:     team,
				Field:    fmt.Sprintf("%s row %s sum", venue, from),
				Expected: 1.0,
				Actual:   sum,
			})
		}
	}
	return divergences
}

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) <= FloatTolerance
}

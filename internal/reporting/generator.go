package reporting

import (
	"time"

	"github.com/google/uuid"

	"league-markov/internal/domain"
	"league-markov/internal/simulation"
)

// Input carries everything a standings report is built from.
type Input struct {
	Season        string
	Seed          uint64
	Fallback      string
	RemainingHome int
	RemainingAway int
	FallbackDraws int

	Records   []*domain.MatchRecord
	Standings []domain.StandingRow

	DataQuality *DataQualitySection // optional
}

// Generator assembles standings reports.
type Generator struct {
	now   func() time.Time // Injectable clock for deterministic output
	newID func() string
}

// NewGenerator creates a new report generator.
func NewGenerator() *Generator {
	return &Generator{
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// WithRunID sets a custom run ID source for deterministic output.
func (g *Generator) WithRunID(newID func() string) *Generator {
	g.newID = newID
	return g
}

// Generate produces a report. Standings are copied, not re-sorted.
func (g *Generator) Generate(in Input) *Report {
	standings := make([]domain.StandingRow, len(in.Standings))
	copy(standings, in.Standings)

	report := &Report{
		RunID:         g.newID(),
		Season:        in.Season,
		GeneratedAt:   g.now(),
		Seed:          in.Seed,
		Fallback:      in.Fallback,
		RemainingHome: in.RemainingHome,
		RemainingAway: in.RemainingAway,
		DataSummary:   summarize(in.Records),
		Standings:     standings,
	}
	report.DataSummary.FallbackDraws = in.FallbackDraws

	if in.DataQuality != nil {
		report.DataQuality = *in.DataQuality
	} else {
		report.DataQuality.AllChecksPassed = true
	}
	return report
}

func summarize(records []*domain.MatchRecord) DataSummary {
	s := DataSummary{
		Teams:   len(simulation.Teams(records)),
		Matches: len(records),
	}
	for _, r := range records {
		if r.Result.IsValid() {
			s.Played++
		} else {
			s.Unplayed++
		}
		if s.DateRangeStart.IsZero() || r.Date.Before(s.DateRangeStart) {
			s.DateRangeStart = r.Date
		}
		if r.Date.After(s.DateRangeEnd) {
			s.DateRangeEnd = r.Date
		}
	}
	return s
}

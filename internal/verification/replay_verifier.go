package verification

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"league-markov/internal/domain"
	"league-markov/internal/logging"
	"league-markov/internal/markov"
	"league-markov/internal/simulation"
	"league-markov/internal/storage"
)

// DefaultRuns is how many times a projection is computed, the first being the reference.
const DefaultRuns = 2

// ReplayVerifier recomputes a season's projection with fresh simulators on the same seed.
type ReplayVerifier struct {
	matchStore storage.MatchStore
	seed       uint64
	fallback   simulation.FallbackPolicy
	runs       int
	logger     logrus.FieldLogger
}

// ReplayVerifierOptions contains configuration for creating a ReplayVerifier.
type ReplayVerifierOptions struct {
	MatchStore storage.MatchStore
	Seed       uint64
	Fallback   simulation.FallbackPolicy
	Runs       int // 0 = DefaultRuns
	Logger     logrus.FieldLogger
}

// NewReplayVerifier creates a new ReplayVerifier.
func NewReplayVerifier(opts ReplayVerifierOptions) *ReplayVerifier {
	v := &ReplayVerifier{
		matchStore: opts.MatchStore,
		seed:       opts.Seed,
		fallback:   opts.Fallback,
		runs:       opts.Runs,
		logger:     opts.Logger,
	}
	if v.runs < 2 {
		v.runs = DefaultRuns
	}
	if v.logger == nil {
		v.logger = logging.Discard()
	}
	return v
}

// VerifySeason replays the projection and checks every team's matrices.
func (v *ReplayVerifier) VerifySeason(ctx context.Context, season string, remainingHome, remainingAway int) (*VerificationReport, error) {
	// 1. Reference run
	reference, err := v.run(ctx, season, remainingHome, remainingAway)
	if err != nil {
		return nil, err
	}

	report := &VerificationReport{
		Season:     season,
		Seed:       v.seed,
		Runs:       v.runs,
		TotalTeams: len(reference.Standings),
	}

	// 2. Replays
	divergent := make(map[string]bool)
	for i := 1; i < v.runs; i++ {
		replayed, err := v.run(ctx, season, remainingHome, remainingAway)
		if err != nil {
			return nil, fmt.Errorf("replay %d: %w", i, err)
		}
		for _, d := range CompareStandings(reference.Standings, replayed.Standings) {
			report.Divergences = append(report.Divergences, d)
			divergent[d.Team] = true
		}
	}

	// 3. Matrix row sums
	for _, row := range reference.Standings {
		for _, venue := range domain.Venues {
			m := markov.Estimate(reference.Records, row.Team, venue)
			for _, d := range CheckMatrix(row.Team, venue, m) {
				report.Divergences = append(report.Divergences, d)
				divergent[row.Team] = true
			}
		}
	}

	report.DivergentTeams = len(divergent)
	report.MatchedTeams = report.TotalTeams - report.DivergentTeams

	v.logger.WithFields(logrus.Fields{
		"season":    season,
		"runs":      v.runs,
		"matched":   report.MatchedTeams,
		"divergent": report.DivergentTeams,
	}).Info("Replay verification completed")

	return report, nil
}

func (v *ReplayVerifier) run(ctx context.Context, season string, remainingHome, remainingAway int) (*simulation.RunResult, error) {
	runner := simulation.NewRunner(simulation.RunnerOptions{
		MatchStore: v.matchStore,
		Simulator: simulation.New(simulation.Options{
			Seed:     v.seed,
			Fallback: v.fallback,
		}),
	})
	return runner.Run(ctx, season, remainingHome, remainingAway)
}

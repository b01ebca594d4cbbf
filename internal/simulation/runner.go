package simulation

import (
	"context"
	"errors"
	"fmt"

	"league-markov/internal/domain"
	"league-markov/internal/markov"
	"league-markov/internal/prepare"
	"league-markov/internal/storage"
)

// ErrNoMatches is returned when a season has no stored matches.
var ErrNoMatches = errors.New("no matches stored for season")

// Runner loads a season from storage and runs the standings projection.
type Runner struct {
	matchStore storage.MatchStore
	simulator  *Simulator
}

// RunnerOptions contains configuration for creating a Runner.
type RunnerOptions struct {
	MatchStore storage.MatchStore
	Simulator  *Simulator
}

// NewRunner creates a simulation runner.
func NewRunner(opts RunnerOptions) *Runner {
	sim := opts.Simulator
	if sim == nil {
		sim = New(Options{})
	}
	return &Runner{
		matchStore: opts.MatchStore,
		simulator:  sim,
	}
}

// RunResult holds the prepared records and the projected table for one season.
type RunResult struct {
	Season    string
	Records   []*domain.MatchRecord
	Standings []domain.StandingRow
}

// Run executes the projection for a stored season.
// Steps:
//  1. Load raw matches in seq order
//  2. Prepare (schema check, date parsing, date sort)
//  3. Simulate remaining fixtures per team and build the table
func (r *Runner) Run(ctx context.Context, season string, remainingHome, remainingAway int) (*RunResult, error) {
	records, err := r.Records(ctx, season)
	if err != nil {
		return nil, err
	}

	rows, err := r.simulator.CalculateFinalPoints(records, remainingHome, remainingAway)
	if err != nil {
		return nil, err
	}

	return &RunResult{Season: season, Records: records, Standings: rows}, nil
}

// Records loads and prepares a stored season.
func (r *Runner) Records(ctx context.Context, season string) ([]*domain.MatchRecord, error) {
	raw, err := r.matchStore.GetBySeason(ctx, season)
	if err != nil {
		return nil, fmt.Errorf("load season %s: %w", season, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoMatches, season)
	}

	records, err := prepare.Prepare(prepare.TableFromMatches(raw))
	if err != nil {
		return nil, fmt.Errorf("prepare season %s: %w", season, err)
	}
	return records, nil
}

// TeamMatrices estimates the home and away transition matrices of team for a stored season.
// Returns storage.ErrNotFound when the team has no matches in the season.
func (r *Runner) TeamMatrices(ctx context.Context, season, team string) (home, away *markov.TransitionMatrix, err error) {
	records, err := r.Records(ctx, season)
	if err != nil {
		return nil, nil, err
	}

	found := false
	for _, rec := range records {
		if rec.HomeTeam == team {
			found = true
			break
		}
	}
	if !found {
		return nil, nil, fmt.Errorf("team %q in %s: %w", team, season, storage.ErrNotFound)
	}

	return markov.Estimate(records, team, domain.VenueHome), markov.Estimate(records, team, domain.VenueAway), nil
}

// Package simulation projects remaining-season points by walking per-team
// W/D/L Markov chains and assembles the projected final table.
package simulation

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/sirupsen/logrus"

	"league-markov/internal/domain"
	"league-markov/internal/logging"
	"league-markov/internal/markov"
	"league-markov/internal/observability"
)

// FallbackPolicy decides what happens when the chain reaches a state with no row.
type FallbackPolicy string

const (
	// FallbackUniform draws the next state uniformly over the matrix columns.
	FallbackUniform FallbackPolicy = "uniform"
	// FallbackStrict fails with ErrMissingPredecessor.
	FallbackStrict FallbackPolicy = "strict"
)

// ParseFallbackPolicy parses a policy name; empty means FallbackUniform.
func ParseFallbackPolicy(s string) (FallbackPolicy, error) {
	switch FallbackPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", FallbackUniform:
		return FallbackUniform, nil
	case FallbackStrict:
		return FallbackStrict, nil
	default:
		return "", fmt.Errorf("unknown fallback policy %q", s)
	}
}

// InitialState is the state every remaining-season chain starts from.
const InitialState = domain.ResultWin

// FallbackEvent describes one draw made without an observed row.
type FallbackEvent struct {
	Team  string
	Venue domain.Venue
	State domain.Result // state that had no row
	Step  int           // 0-based match index within the run
}

// Simulator walks transition matrices with an injected random source.
// It is not safe for concurrent use; the random source is shared.
type Simulator struct {
	rng        *rand.Rand
	fallback   FallbackPolicy
	logger     logrus.FieldLogger
	onFallback func(FallbackEvent)
}

// Options configures a Simulator.
type Options struct {
	// Rand is the random source. When nil, one is seeded from Seed.
	Rand *rand.Rand
	Seed uint64

	Fallback   FallbackPolicy
	Logger     logrus.FieldLogger
	OnFallback func(FallbackEvent) // optional
}

// NewRand returns a PCG-backed random source for seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// New creates a Simulator.
func New(opts Options) *Simulator {
	rng := opts.Rand
	if rng == nil {
		rng = NewRand(opts.Seed)
	}

	fallback := opts.Fallback
	if fallback == "" {
		fallback = FallbackUniform
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	return &Simulator{
		rng:        rng,
		fallback:   fallback,
		logger:     logger,
		onFallback: opts.OnFallback,
	}
}

// Simulate plays numMatches steps of the chain starting from initial and
// returns the points earned (3 per W, 1 per D, 0 per L).
// numMatches == 0 always returns 0. A matrix with no columns and
// numMatches > 0 returns *EmptyDistributionError.
func (s *Simulator) Simulate(m *markov.TransitionMatrix, numMatches int, initial domain.Result) (int, error) {
	return s.simulate(m, numMatches, initial, "", "")
}

func (s *Simulator) simulate(m *markov.TransitionMatrix, numMatches int, initial domain.Result, team string, venue domain.Venue) (int, error) {
	if numMatches <= 0 {
		return 0, nil
	}

	cols := m.Columns()
	if len(cols) == 0 {
		return 0, &EmptyDistributionError{Team: team, Venue: venue}
	}

	state := initial
	points := 0
	for step := 0; step < numMatches; step++ {
		row, ok := m.Row(state)
		if ok {
			state = cols[s.draw(row)]
		} else {
			next, err := s.fallbackDraw(cols, FallbackEvent{Team: team, Venue: venue, State: state, Step: step})
			if err != nil {
				return 0, err
			}
			state = next
		}
		points += state.Points()
	}

	return points, nil
}

// draw samples an index from a categorical distribution.
func (s *Simulator) draw(probs []float64) int {
	u := s.rng.Float64()
	acc := 0.0
	for i, p := range probs {
		acc += p
		if u < acc {
			return i
		}
	}
	// Rounding left u above the cumulative sum; take the last non-zero entry.
	for i := len(probs) - 1; i >= 0; i-- {
		if probs[i] > 0 {
			return i
		}
	}
	return len(probs) - 1
}

func (s *Simulator) fallbackDraw(cols []domain.Result, ev FallbackEvent) (domain.Result, error) {
	if s.fallback == FallbackStrict {
		return "", fmt.Errorf("%w: state %s (team %q, venue %q)", ErrMissingPredecessor, ev.State, ev.Team, ev.Venue)
	}

	next := cols[s.rng.IntN(len(cols))]

	s.logger.WithFields(logrus.Fields{
		"team":  ev.Team,
		"venue": ev.Venue,
		"state": ev.State,
		"step":  ev.Step,
		"next":  next,
	}).Debug("no observed transitions for state, drew uniformly")
	observability.RecordFallbackDraw(string(ev.Venue))
	if s.onFallback != nil {
		s.onFallback(ev)
	}

	return next, nil
}

// PredictTeamPoints simulates the remaining home and away fixtures of team
// independently, each chain starting from InitialState, and returns the sum.
func (s *Simulator) PredictTeamPoints(records []*domain.MatchRecord, team string, remainingHome, remainingAway int) (int, error) {
	total := 0
	for _, leg := range []struct {
		venue     domain.Venue
		remaining int
	}{
		{domain.VenueHome, remainingHome},
		{domain.VenueAway, remainingAway},
	} {
		m := markov.Estimate(records, team, leg.venue)
		points, err := s.simulate(m, leg.remaining, InitialState, team, leg.venue)
		if err != nil {
			return 0, err
		}
		total += points
	}
	return total, nil
}

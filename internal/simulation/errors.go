package simulation

import (
	"errors"
	"fmt"

	"league-markov/internal/domain"
)

// ErrMissingPredecessor is returned under FallbackStrict when the chain reaches
// a state that has no row in the transition matrix.
var ErrMissingPredecessor = errors.New("current state has no observed transitions")

// EmptyDistributionError is returned when matches must be simulated from a
// matrix that has no successor states to draw from.
type EmptyDistributionError struct {
	Team  string       // empty when raised by Simulate directly
	Venue domain.Venue // empty when raised by Simulate directly
}

func (e *EmptyDistributionError) Error() string {
	if e.Team == "" {
		return "empty transition distribution: no successor states to draw from"
	}
	return fmt.Sprintf("empty transition distribution for %s (%s): fewer than two results recorded", e.Team, e.Venue)
}

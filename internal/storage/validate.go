package storage

import (
	"fmt"

	"league-markov/internal/domain"
)

// ValidateBatch checks a batch before insertion: no nil rows, match_id and season
// set, and no match_id repeated within the batch.
func ValidateBatch(matches []*domain.RawMatch) error {
	seen := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		if m == nil || m.MatchID == "" || m.Season == "" {
			return ErrInvalidInput
		}
		if _, ok := seen[m.MatchID]; ok {
			return ErrDuplicateKey
		}
		seen[m.MatchID] = struct{}{}
	}
	return nil
}

// ValidateSeasonBatch checks a non-empty replacement batch whose rows all belong to season.
func ValidateSeasonBatch(season string, matches []*domain.RawMatch) error {
	if len(matches) == 0 {
		return fmt.Errorf("%w: empty replacement for season %s", ErrInvalidInput, season)
	}
	if err := ValidateBatch(matches); err != nil {
		return err
	}
	for _, m := range matches {
		if m.Season != season {
			return fmt.Errorf("%w: match %s belongs to season %s, not %s", ErrInvalidInput, m.MatchID, m.Season, season)
		}
	}
	return nil
}

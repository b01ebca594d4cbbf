package memory

import (
	"context"
	"sort"
	"sync"

	"league-markov/internal/domain"
	"league-markov/internal/storage"
)

// MatchStore is an in-memory implementation of storage.MatchStore.
type MatchStore struct {
	mu      sync.RWMutex
	seasons map[string][]*domain.RawMatch // keyed by season, insertion order
	ids     map[string]struct{}           // all stored match_ids
}

// NewMatchStore creates a new in-memory match store.
func NewMatchStore() *MatchStore {
	return &MatchStore{
		seasons: make(map[string][]*domain.RawMatch),
		ids:     make(map[string]struct{}),
	}
}

// Compile-time interface check.
var _ storage.MatchStore = (*MatchStore)(nil)

// InsertBulk adds matches atomically. Fails entire batch on any duplicate.
func (s *MatchStore) InsertBulk(_ context.Context, matches []*domain.RawMatch) error {
	if len(matches) == 0 {
		return nil
	}
	if err := storage.ValidateBatch(matches); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range matches {
		if _, exists := s.ids[m.MatchID]; exists {
			return storage.ErrDuplicateKey
		}
	}

	for _, m := range matches {
		// Store a copy to prevent external mutation
		matchCopy := *m
		s.seasons[m.Season] = append(s.seasons[m.Season], &matchCopy)
		s.ids[m.MatchID] = struct{}{}
	}
	return nil
}

// GetBySeason retrieves all matches of a season ordered by seq ASC.
func (s *MatchStore) GetBySeason(_ context.Context, season string) ([]*domain.RawMatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.seasons[season]
	result := make([]*domain.RawMatch, 0, len(stored))
	for _, m := range stored {
		matchCopy := *m
		result = append(result, &matchCopy)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Seq < result[j].Seq
	})
	return result, nil
}

// SeasonExists reports whether any match of the season is stored.
func (s *MatchStore) SeasonExists(_ context.Context, season string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.seasons[season]) > 0, nil
}

// ListSeasons returns all stored seasons in ascending order.
func (s *MatchStore) ListSeasons(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seasons := make([]string, 0, len(s.seasons))
	for season, matches := range s.seasons {
		if len(matches) > 0 {
			seasons = append(seasons, season)
		}
	}
	sort.Strings(seasons)
	return seasons, nil
}

// DeleteSeason removes every match of a season.
func (s *MatchStore) DeleteSeason(_ context.Context, season string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.seasons[season] {
		delete(s.ids, m.MatchID)
	}
	delete(s.seasons, season)
	return nil
}

// ReplaceSeason swaps a season's rows under one lock.
func (s *MatchStore) ReplaceSeason(_ context.Context, season string, matches []*domain.RawMatch) error {
	if err := storage.ValidateSeasonBatch(season, matches); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	old := make(map[string]struct{}, len(s.seasons[season]))
	for _, m := range s.seasons[season] {
		old[m.MatchID] = struct{}{}
	}
	for _, m := range matches {
		_, stored := s.ids[m.MatchID]
		_, replaced := old[m.MatchID]
		if stored && !replaced {
			return storage.ErrDuplicateKey
		}
	}

	for id := range old {
		delete(s.ids, id)
	}
	rows := make([]*domain.RawMatch, 0, len(matches))
	for _, m := range matches {
		matchCopy := *m
		rows = append(rows, &matchCopy)
		s.ids[m.MatchID] = struct{}{}
	}
	s.seasons[season] = rows
	return nil
}

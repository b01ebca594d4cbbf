package storage

import (
	"context"
	"time"

	"league-markov/internal/domain"
	"league-markov/internal/observability"
)

// Instrumented wraps a MatchStore and records query latency and errors.
type Instrumented struct {
	next     MatchStore
	database string
}

// NewInstrumented wraps next; database labels the metrics (e.g. "postgres").
func NewInstrumented(next MatchStore, database string) *Instrumented {
	return &Instrumented{next: next, database: database}
}

// Compile-time interface check.
var _ MatchStore = (*Instrumented)(nil)

func (s *Instrumented) observe(operation string, start time.Time, err error) {
	observability.RecordDBQuery(s.database, operation, time.Since(start).Seconds(), err)
}

// InsertBulk implements MatchStore.
func (s *Instrumented) InsertBulk(ctx context.Context, matches []*domain.RawMatch) (err error) {
	defer func(start time.Time) { s.observe("insert_bulk", start, err) }(time.Now())
	return s.next.InsertBulk(ctx, matches)
}

// GetBySeason implements MatchStore.
func (s *Instrumented) GetBySeason(ctx context.Context, season string) (matches []*domain.RawMatch, err error) {
	defer func(start time.Time) { s.observe("get_by_season", start, err) }(time.Now())
	return s.next.GetBySeason(ctx, season)
}

// SeasonExists implements MatchStore.
func (s *Instrumented) SeasonExists(ctx context.Context, season string) (ok bool, err error) {
	defer func(start time.Time) { s.observe("season_exists", start, err) }(time.Now())
	return s.next.SeasonExists(ctx, season)
}

// ListSeasons implements MatchStore.
func (s *Instrumented) ListSeasons(ctx context.Context) (seasons []string, err error) {
	defer func(start time.Time) { s.observe("list_seasons", start, err) }(time.Now())
	return s.next.ListSeasons(ctx)
}

// DeleteSeason implements MatchStore.
func (s *Instrumented) DeleteSeason(ctx context.Context, season string) (err error) {
	defer func(start time.Time) { s.observe("delete_season", start, err) }(time.Now())
	return s.next.DeleteSeason(ctx, season)
}

// ReplaceSeason implements MatchStore.
func (s *Instrumented) ReplaceSeason(ctx context.Context, season string, matches []*domain.RawMatch) (err error) {
	defer func(start time.Time) { s.observe("replace_season", start, err) }(time.Now())
	return s.next.ReplaceSeason(ctx, season, matches)
}

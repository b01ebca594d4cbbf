package storage

import (
	"context"

	"league-markov/internal/domain"
)

// MatchStore provides access to raw match-log storage, one logical table per season.
// Only scraped source data is persisted; simulation output never is.
type MatchStore interface {
	// InsertBulk adds matches atomically. Fails the entire batch on any duplicate match_id,
	// within the batch or against stored rows.
	InsertBulk(ctx context.Context, matches []*domain.RawMatch) error

	// GetBySeason retrieves all matches of a season ordered by seq ASC.
	// Returns an empty slice when the season is unknown.
	GetBySeason(ctx context.Context, season string) ([]*domain.RawMatch, error)

	// SeasonExists reports whether any match of the season is stored.
	SeasonExists(ctx context.Context, season string) (bool, error)

	// ListSeasons returns all stored seasons in ascending order.
	ListSeasons(ctx context.Context) ([]string, error)

	// DeleteSeason removes every match of a season. Deleting an unknown season is not an error.
	DeleteSeason(ctx context.Context, season string) error

	// ReplaceSeason swaps the stored rows of season for matches. Every match must belong to
	// season. On any error the previously stored rows are left in place.
	ReplaceSeason(ctx context.Context, season string, matches []*domain.RawMatch) error
}

package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"league-markov/internal/domain"
	"league-markov/internal/storage"
)

func pgMatch(id string, seq int, venue, result string) *domain.RawMatch {
	return &domain.RawMatch{
		MatchID:      id,
		Season:       "2024-2025",
		Seq:          seq,
		Team:         "Brentford",
		Date:         "2024-08-18",
		Time:         "14:00",
		Round:        "Matchweek 1",
		Day:          "Sun",
		Venue:        venue,
		Result:       result,
		GF:           "2",
		GA:           "1",
		Opponent:     "Crystal Palace",
		XG:           "1.4",
		XGA:          "1.1",
		Possession:   "48",
		Attendance:   "17000",
		Captain:      "Christian Nørgaard",
		Formation:    "4-3-3",
		OppFormation: "3-4-2-1",
		Referee:      "Robert Jones",
		MatchReport:  "Match Report",
	}
}

func TestMatchStore_InsertBulkAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewMatchStore(pool)
	ctx := context.Background()

	want := pgMatch("m1", 0, "Home", "W")
	require.NoError(t, store.InsertBulk(ctx, []*domain.RawMatch{pgMatch("m2", 1, "Away", "L"), want}))

	got, err := store.GetBySeason(ctx, "2024-2025")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, *want, *got[0])
	assert.Equal(t, "m2", got[1].MatchID)
}

func TestMatchStore_InsertBulkDuplicateRollsBack(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewMatchStore(pool)
	ctx := context.Background()

	require.NoError(t, store.InsertBulk(ctx, []*domain.RawMatch{pgMatch("m1", 0, "Home", "W")}))

	err := store.InsertBulk(ctx, []*domain.RawMatch{pgMatch("m2", 1, "Away", "D"), pgMatch("m1", 2, "Home", "W")})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	got, err := store.GetBySeason(ctx, "2024-2025")
	require.NoError(t, err)
	assert.Len(t, got, 1, "failed batch must not leave partial rows")
}

func TestMatchStore_Seasons(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewMatchStore(pool)
	ctx := context.Background()

	exists, err := store.SeasonExists(ctx, "2024-2025")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, store.InsertBulk(ctx, []*domain.RawMatch{pgMatch("m1", 0, "Home", "W")}))

	seasons, err := store.ListSeasons(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-2025"}, seasons)

	require.NoError(t, store.DeleteSeason(ctx, "2024-2025"))
	got, err := store.GetBySeason(ctx, "2024-2025")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMatchStore_ReplaceSeasonRollsBack(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewMatchStore(pool)
	ctx := context.Background()

	other := pgMatch("z", 0, "Home", "W")
	other.Season = "2023-2024"
	require.NoError(t, store.InsertBulk(ctx, []*domain.RawMatch{pgMatch("m1", 0, "Home", "W"), other}))

	require.NoError(t, store.ReplaceSeason(ctx, "2024-2025", []*domain.RawMatch{
		pgMatch("m1", 0, "Home", "D"),
		pgMatch("m2", 1, "Away", "L"),
	}))
	got, err := store.GetBySeason(ctx, "2024-2025")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "D", got[0].Result)

	// The duplicate surfaces after the delete; the transaction must undo it.
	err = store.ReplaceSeason(ctx, "2024-2025", []*domain.RawMatch{pgMatch("n1", 0, "Home", "W"), pgMatch("z", 1, "Home", "W")})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	got, err = store.GetBySeason(ctx, "2024-2025")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

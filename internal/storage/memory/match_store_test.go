package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"league-markov/internal/domain"
	"league-markov/internal/storage"
)

func testMatch(id, season string, seq int, team string) *domain.RawMatch {
	return &domain.RawMatch{
		MatchID:  id,
		Season:   season,
		Seq:      seq,
		Team:     team,
		Date:     "2024-08-17",
		Venue:    "Home",
		Result:   "W",
		GF:       "2",
		GA:       "0",
		Opponent: "Wolves",
	}
}

func TestMatchStore_InsertAndGet(t *testing.T) {
	store := NewMatchStore()
	ctx := context.Background()

	matches := []*domain.RawMatch{
		testMatch("m2", "2024-2025", 1, "Chelsea"),
		testMatch("m1", "2024-2025", 0, "Arsenal"),
	}

	if err := store.InsertBulk(ctx, matches); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	got, err := store.GetBySeason(ctx, "2024-2025")
	if err != nil {
		t.Fatalf("GetBySeason failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
	if got[0].MatchID != "m1" || got[1].MatchID != "m2" {
		t.Errorf("expected seq order m1, m2; got %s, %s", got[0].MatchID, got[1].MatchID)
	}
}

func TestMatchStore_DuplicateKey(t *testing.T) {
	store := NewMatchStore()
	ctx := context.Background()

	if err := store.InsertBulk(ctx, []*domain.RawMatch{testMatch("m1", "2024-2025", 0, "Arsenal")}); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}

	err := store.InsertBulk(ctx, []*domain.RawMatch{
		testMatch("m2", "2024-2025", 1, "Arsenal"),
		testMatch("m1", "2024-2025", 2, "Arsenal"),
	})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}

	// Batch is atomic: m2 must not have been stored
	got, _ := store.GetBySeason(ctx, "2024-2025")
	if len(got) != 1 {
		t.Errorf("expected 1 match after failed batch, got %d", len(got))
	}
}

func TestMatchStore_DuplicateWithinBatch(t *testing.T) {
	store := NewMatchStore()

	err := store.InsertBulk(context.Background(), []*domain.RawMatch{
		testMatch("m1", "2024-2025", 0, "Arsenal"),
		testMatch("m1", "2024-2025", 1, "Arsenal"),
	})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestMatchStore_InvalidInput(t *testing.T) {
	store := NewMatchStore()

	err := store.InsertBulk(context.Background(), []*domain.RawMatch{testMatch("", "2024-2025", 0, "Arsenal")})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestMatchStore_SeasonsAndDelete(t *testing.T) {
	store := NewMatchStore()
	ctx := context.Background()

	_ = store.InsertBulk(ctx, []*domain.RawMatch{testMatch("a", "2024-2025", 0, "Arsenal")})
	_ = store.InsertBulk(ctx, []*domain.RawMatch{testMatch("b", "2023-2024", 0, "Arsenal")})

	seasons, err := store.ListSeasons(ctx)
	if err != nil {
		t.Fatalf("ListSeasons failed: %v", err)
	}
	if len(seasons) != 2 || seasons[0] != "2023-2024" || seasons[1] != "2024-2025" {
		t.Errorf("unexpected seasons: %v", seasons)
	}

	if err := store.DeleteSeason(ctx, "2023-2024"); err != nil {
		t.Fatalf("DeleteSeason failed: %v", err)
	}
	exists, _ := store.SeasonExists(ctx, "2023-2024")
	if exists {
		t.Error("season should be gone after delete")
	}

	// match_id is free again after delete
	if err := store.InsertBulk(ctx, []*domain.RawMatch{testMatch("b", "2023-2024", 0, "Arsenal")}); err != nil {
		t.Errorf("reinsert after delete failed: %v", err)
	}
}

func TestMatchStore_ReturnsCopies(t *testing.T) {
	store := NewMatchStore()
	ctx := context.Background()

	m := testMatch("m1", "2024-2025", 0, "Arsenal")
	_ = store.InsertBulk(ctx, []*domain.RawMatch{m})
	m.Team = "Mutated"

	got, _ := store.GetBySeason(ctx, "2024-2025")
	got[0].Result = "L"

	again, _ := store.GetBySeason(ctx, "2024-2025")
	if again[0].Team != "Arsenal" || again[0].Result != "W" {
		t.Errorf("store leaked mutable state: %+v", again[0])
	}
}

func TestMatchStore_ConcurrentAccess(t *testing.T) {
	store := NewMatchStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := string(rune('a' + i))
			_ = store.InsertBulk(ctx, []*domain.RawMatch{testMatch(id, "2024-2025", i, "Arsenal")})
			_, _ = store.GetBySeason(ctx, "2024-2025")
		}(i)
	}
	wg.Wait()

	got, _ := store.GetBySeason(ctx, "2024-2025")
	if len(got) != 20 {
		t.Errorf("expected 20 matches, got %d", len(got))
	}
}

func TestMatchStore_ReplaceSeason(t *testing.T) {
	store := NewMatchStore()
	ctx := context.Background()

	if err := store.InsertBulk(ctx, []*domain.RawMatch{
		testMatch("old1", "2024-2025", 0, "Arsenal"),
		testMatch("old2", "2024-2025", 1, "Chelsea"),
		testMatch("other", "2023-2024", 0, "Arsenal"),
	}); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	// Reusing an id of the replaced season is allowed.
	err := store.ReplaceSeason(ctx, "2024-2025", []*domain.RawMatch{
		testMatch("old1", "2024-2025", 0, "Arsenal"),
		testMatch("new1", "2024-2025", 1, "Everton"),
		testMatch("new2", "2024-2025", 2, "Fulham"),
	})
	if err != nil {
		t.Fatalf("ReplaceSeason failed: %v", err)
	}

	got, _ := store.GetBySeason(ctx, "2024-2025")
	if len(got) != 3 || got[1].MatchID != "new1" {
		t.Fatalf("expected replaced rows, got %d", len(got))
	}

	// old2 is gone and may now be inserted again.
	if err := store.InsertBulk(ctx, []*domain.RawMatch{testMatch("old2", "2022-2023", 0, "Chelsea")}); err != nil {
		t.Errorf("expected old2 id to be free after replace, got %v", err)
	}
	other, _ := store.GetBySeason(ctx, "2023-2024")
	if len(other) != 1 {
		t.Errorf("expected other season untouched, got %d rows", len(other))
	}
}

func TestMatchStore_ReplaceSeasonFailureKeepsRows(t *testing.T) {
	store := NewMatchStore()
	ctx := context.Background()

	if err := store.InsertBulk(ctx, []*domain.RawMatch{
		testMatch("m1", "2024-2025", 0, "Arsenal"),
		testMatch("other", "2023-2024", 0, "Arsenal"),
	}); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	err := store.ReplaceSeason(ctx, "2024-2025", []*domain.RawMatch{testMatch("other", "2024-2025", 0, "Arsenal")})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}

	err = store.ReplaceSeason(ctx, "2024-2025", []*domain.RawMatch{testMatch("x", "2023-2024", 0, "Arsenal")})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for a row of another season, got %v", err)
	}

	got, _ := store.GetBySeason(ctx, "2024-2025")
	if len(got) != 1 || got[0].MatchID != "m1" {
		t.Errorf("expected original row to survive failed replaces, got %d rows", len(got))
	}
}

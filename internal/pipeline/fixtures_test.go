package pipeline

import (
	"context"
	"errors"
	"testing"

	"league-markov/internal/domain"
	"league-markov/internal/prepare"
	"league-markov/internal/simulation"
	"league-markov/internal/storage"
	"league-markov/internal/storage/memory"
)

func TestFixtureMatches_BothPerspectives(t *testing.T) {
	matches := FixtureMatches()
	if len(matches) != 2*len(fixtureSchedule) {
		t.Fatalf("expected %d rows, got %d", 2*len(fixtureSchedule), len(matches))
	}

	ids := make(map[string]bool)
	for i, m := range matches {
		if m.Seq != i {
			t.Errorf("row %d: expected seq %d, got %d", i, i, m.Seq)
		}
		if ids[m.MatchID] {
			t.Errorf("row %d: duplicate match id %s", i, m.MatchID)
		}
		ids[m.MatchID] = true
	}

	first := matches[0]
	if first.Team != "Arsenal" || first.Opponent != "Chelsea" || first.Venue != "Home" || first.Result != "W" {
		t.Errorf("unexpected first row: %+v", first)
	}
	if first.Day != "Sat" {
		t.Errorf("expected Sat, got %q", first.Day)
	}
}

func TestFixtureMatches_Deterministic(t *testing.T) {
	a, b := FixtureMatches(), FixtureMatches()
	for i := range a {
		if *a[i] != *b[i] {
			t.Fatalf("row %d differs between calls", i)
		}
	}
}

func TestFixtureMatches_ActualPoints(t *testing.T) {
	records, err := prepare.Prepare(prepare.TableFromMatches(FixtureMatches()))
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}

	want := map[string]int{"Arsenal": 11, "Chelsea": 5, "Liverpool": 12, "Everton": 4}
	for team, points := range want {
		if got := simulation.ActualPoints(records, team); got != points {
			t.Errorf("%s: expected %d points, got %d", team, points, got)
		}
	}

	teams := simulation.Teams(records)
	if len(teams) != 4 || teams[0] != "Arsenal" {
		t.Errorf("unexpected team order: %v", teams)
	}
}

func TestLoadFixtures(t *testing.T) {
	ctx := context.Background()
	store := memory.NewMatchStore()

	if err := LoadFixtures(ctx, store); err != nil {
		t.Fatalf("load fixtures: %v", err)
	}

	got, err := store.GetBySeason(ctx, FixtureSeason)
	if err != nil {
		t.Fatalf("get season: %v", err)
	}
	if len(got) != 24 {
		t.Fatalf("expected 24 stored rows, got %d", len(got))
	}

	err = LoadFixtures(ctx, store)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey on reload, got %v", err)
	}
}

func TestResultOf(t *testing.T) {
	tests := []struct {
		gf, ga int
		want   domain.Result
	}{
		{2, 1, domain.ResultWin},
		{1, 1, domain.ResultDraw},
		{0, 3, domain.ResultLoss},
	}
	for _, tt := range tests {
		if got := resultOf(tt.gf, tt.ga); got != tt.want {
			t.Errorf("resultOf(%d, %d) = %s, want %s", tt.gf, tt.ga, got, tt.want)
		}
	}
}

package pipeline

import (
	"context"
	"slices"
	"testing"

	"league-markov/internal/domain"
	"league-markov/internal/storage/memory"
)

func checkByName(t *testing.T, result *SufficiencyResult, name string) SufficiencyCheck {
	t.Helper()
	for _, c := range result.Checks {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("check %q not found", name)
	return SufficiencyCheck{}
}

func TestSufficiencyChecker_EmptySeason(t *testing.T) {
	result, err := NewSufficiencyChecker(memory.NewMatchStore()).Check(context.Background(), "1999-2000")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if result.AllPass {
		t.Error("expected empty season to fail")
	}
	if len(result.Checks) != 1 {
		t.Errorf("expected checks to stop after the first, got %d", len(result.Checks))
	}
}

func TestSufficiencyChecker_Fixtures(t *testing.T) {
	ctx := context.Background()
	store := memory.NewMatchStore()
	if err := LoadFixtures(ctx, store); err != nil {
		t.Fatalf("load fixtures: %v", err)
	}

	result, err := NewSufficiencyChecker(store).Check(ctx, FixtureSeason)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if len(result.Checks) != 4 {
		t.Fatalf("expected 4 checks, got %d", len(result.Checks))
	}

	if c := checkByName(t, result, "Stored matches"); !c.Pass || c.Actual != "24" {
		t.Errorf("stored matches: %+v", c)
	}
	if c := checkByName(t, result, "Played matches per team and venue"); !c.Pass {
		t.Errorf("venue history: %+v", c)
	}
	if c := checkByName(t, result, "Mirrored fixtures"); !c.Pass {
		t.Errorf("mirrored fixtures: %+v", c)
	}

	exposure := checkByName(t, result, "States without observed transitions")
	if exposure.Pass || exposure.Actual != "6" {
		t.Errorf("expected 6 exposed states, got %+v", exposure)
	}
	if result.AllPass {
		t.Error("expected AllPass=false")
	}
	if !slices.Contains(result.Errors, "Chelsea Away: no transitions from W") {
		t.Errorf("missing Chelsea finding in %v", result.Errors)
	}
}

func TestSufficiencyChecker_MissingTeamLog(t *testing.T) {
	ctx := context.Background()
	store := memory.NewMatchStore()

	var partial []*domain.RawMatch
	for _, m := range FixtureMatches() {
		if m.Team != "Everton" {
			partial = append(partial, m)
		}
	}
	if err := store.InsertBulk(ctx, partial); err != nil {
		t.Fatalf("insert: %v", err)
	}

	result, err := NewSufficiencyChecker(store).Check(ctx, FixtureSeason)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	c := checkByName(t, result, "Mirrored fixtures")
	if c.Pass || c.Actual != "6 unmatched" {
		t.Errorf("expected 6 unmatched rows, got %+v", c)
	}
}

func TestSufficiencyChecker_Threshold(t *testing.T) {
	ctx := context.Background()
	store := memory.NewMatchStore()
	if err := LoadFixtures(ctx, store); err != nil {
		t.Fatalf("load fixtures: %v", err)
	}

	result, err := NewSufficiencyChecker(store).WithMinPlayedPerVenue(4).Check(ctx, FixtureSeason)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	c := checkByName(t, result, "Played matches per team and venue")
	if c.Pass || c.Actual != "8 of 8 pairs short" {
		t.Errorf("expected every pair short, got %+v", c)
	}
}

package pipeline

import (
	"context"
	"fmt"
	"slices"
	"time"

	"league-markov/internal/domain"
	"league-markov/internal/markov"
	"league-markov/internal/prepare"
	"league-markov/internal/simulation"
	"league-markov/internal/storage"
)

// DefaultMinPlayedPerVenue is the smallest venue history that yields at least one transition.
const DefaultMinPlayedPerVenue = 2

// SufficiencyCheck represents one data sufficiency criterion.
type SufficiencyCheck struct {
	Name      string `json:"name"`
	Threshold string `json:"threshold"`
	Actual    string `json:"actual"`
	Pass      bool   `json:"pass"`
}

// SufficiencyResult contains all checks for one season.
type SufficiencyResult struct {
	Season  string             `json:"season"`
	Checks  []SufficiencyCheck `json:"checks"`
	AllPass bool               `json:"all_pass"`
	Errors  []string           `json:"errors,omitempty"` // per-team findings behind failed checks
}

// SufficiencyChecker validates that a stored season can be projected.
type SufficiencyChecker struct {
	matchStore        storage.MatchStore
	minPlayedPerVenue int
}

// NewSufficiencyChecker creates a new sufficiency checker.
func NewSufficiencyChecker(matchStore storage.MatchStore) *SufficiencyChecker {
	return &SufficiencyChecker{
		matchStore:        matchStore,
		minPlayedPerVenue: DefaultMinPlayedPerVenue,
	}
}

// WithMinPlayedPerVenue overrides the per-venue history threshold.
func (c *SufficiencyChecker) WithMinPlayedPerVenue(n int) *SufficiencyChecker {
	c.minPlayedPerVenue = n
	return c
}

// Check performs all sufficiency checks for a stored season.
func (c *SufficiencyChecker) Check(ctx context.Context, season string) (*SufficiencyResult, error) {
	raw, err := c.matchStore.GetBySeason(ctx, season)
	if err != nil {
		return nil, fmt.Errorf("load season %s: %w", season, err)
	}

	result := &SufficiencyResult{
		Season:  season,
		Checks:  make([]SufficiencyCheck, 0, 4),
		AllPass: true,
	}

	// Check 1: Stored matches >= 1
	check1 := checkStoredMatches(raw)
	result.add(check1, nil)
	if !check1.Pass {
		return result, nil
	}

	records, err := prepare.Prepare(prepare.TableFromMatches(raw))
	if err != nil {
		return nil, fmt.Errorf("prepare season %s: %w", season, err)
	}
	teams := simulation.Teams(records)

	// Check 2: Played matches per team and venue >= threshold
	result.add(c.checkVenueHistory(records, teams))

	// Check 3: Every fixture appears in both team logs
	result.add(checkMirroredFixtures(records))

	// Check 4: No reachable state without observed transitions
	result.add(checkFallbackExposure(records, teams))

	return result, nil
}

func (r *SufficiencyResult) add(check SufficiencyCheck, errs []string) {
	r.Checks = append(r.Checks, check)
	if !check.Pass {
		r.AllPass = false
		r.Errors = append(r.Errors, errs...)
	}
}

func checkStoredMatches(raw []*domain.RawMatch) SufficiencyCheck {
	return SufficiencyCheck{
		Name:      "Stored matches",
		Threshold: ">= 1",
		Actual:    fmt.Sprintf("%d", len(raw)),
		Pass:      len(raw) > 0,
	}
}

func (c *SufficiencyChecker) checkVenueHistory(records []*domain.MatchRecord, teams []string) (SufficiencyCheck, []string) {
	var errs []string
	for _, team := range teams {
		for _, venue := range domain.Venues {
			played := markov.Played(markov.Sequence(records, team, venue))
			if played < c.minPlayedPerVenue {
				errs = append(errs, fmt.Sprintf("%s %s: %d played", team, venue, played))
			}
		}
	}

	return SufficiencyCheck{
		Name:      "Played matches per team and venue",
		Threshold: fmt.Sprintf(">= %d", c.minPlayedPerVenue),
		Actual:    fmt.Sprintf("%d of %d pairs short", len(errs), len(teams)*len(domain.Venues)),
		Pass:      len(errs) == 0,
	}, errs
}

// checkMirroredFixtures flags rows whose counterpart is missing from the opponent's log,
// which usually means that team's log failed to scrape.
func checkMirroredFixtures(records []*domain.MatchRecord) (SufficiencyCheck, []string) {
	type key struct {
		team, opponent, date string
		venue                domain.Venue
	}
	seen := make(map[key]bool, len(records))
	for _, r := range records {
		seen[key{r.HomeTeam, r.AwayTeam, r.Date.Format(time.DateOnly), r.Venue}] = true
	}

	var errs []string
	for _, r := range records {
		date := r.Date.Format(time.DateOnly)
		if !seen[key{r.AwayTeam, r.HomeTeam, date, r.Venue.Opposite()}] {
			errs = append(errs, fmt.Sprintf("%s vs %s on %s: no row in %s log", r.HomeTeam, r.AwayTeam, date, r.AwayTeam))
		}
	}

	return SufficiencyCheck{
		Name:      "Mirrored fixtures",
		Threshold: "0 unmatched",
		Actual:    fmt.Sprintf("%d unmatched", len(errs)),
		Pass:      len(errs) == 0,
	}, errs
}

// checkFallbackExposure counts states the chain can reach without an observed row.
// Such pairs still simulate under the uniform policy and fail under strict.
func checkFallbackExposure(records []*domain.MatchRecord, teams []string) (SufficiencyCheck, []string) {
	var errs []string
	for _, team := range teams {
		for _, venue := range domain.Venues {
			m := markov.Estimate(records, team, venue)
			if m.IsEmpty() {
				continue
			}
			reachable := append([]domain.Result{simulation.InitialState}, m.Columns()...)
			for _, state := range domain.States {
				if slices.Contains(reachable, state) && !m.HasRow(state) {
					errs = append(errs, fmt.Sprintf("%s %s: no transitions from %s", team, venue, state))
				}
			}
		}
	}

	return SufficiencyCheck{
		Name:      "States without observed transitions",
		Threshold: "0",
		Actual:    fmt.Sprintf("%d", len(errs)),
		Pass:      len(errs) == 0,
	}, errs
}

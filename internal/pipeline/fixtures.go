package pipeline

import (
	"context"
	"fmt"
	"time"

	"league-markov/internal/domain"
	"league-markov/internal/idhash"
	"league-markov/internal/storage"
)

// FixtureSeason is the season label of the demo data set.
const FixtureSeason = "2024-2025"

// fixtureTeams is the order in which team logs are emitted, mirroring a scrape.
var fixtureTeams = []string{"Arsenal", "Chelsea", "Liverpool", "Everton"}

type fixture struct {
	round     int
	date      string
	home      string
	away      string
	homeGoals int
	awayGoals int
}

// Six rounds of a four-team double round robin. Every team plays three home and three away.
var fixtureSchedule = []fixture{
	{1, "2024-08-17", "Arsenal", "Chelsea", 2, 1},
	{1, "2024-08-17", "Liverpool", "Everton", 1, 1},
	{2, "2024-08-24", "Chelsea", "Liverpool", 0, 2},
	{2, "2024-08-24", "Everton", "Arsenal", 1, 3},
	{3, "2024-08-31", "Arsenal", "Liverpool", 1, 1},
	{3, "2024-08-31", "Everton", "Chelsea", 2, 0},
	{4, "2024-09-14", "Chelsea", "Arsenal", 1, 1},
	{4, "2024-09-14", "Everton", "Liverpool", 0, 3},
	{5, "2024-09-21", "Liverpool", "Chelsea", 2, 2},
	{5, "2024-09-21", "Arsenal", "Everton", 4, 0},
	{6, "2024-09-28", "Liverpool", "Arsenal", 2, 1},
	{6, "2024-09-28", "Chelsea", "Everton", 3, 1},
}

// FixtureMatches returns the demo season as raw match-log rows: one row per team
// per fixture, team logs concatenated in fixtureTeams order, seq assigned in that order.
func FixtureMatches() []*domain.RawMatch {
	matches := make([]*domain.RawMatch, 0, 2*len(fixtureSchedule))
	seq := 0
	for _, team := range fixtureTeams {
		for _, f := range fixtureSchedule {
			var (
				venue, opponent string
				gf, ga          int
			)
			switch team {
			case f.home:
				venue, opponent, gf, ga = "Home", f.away, f.homeGoals, f.awayGoals
			case f.away:
				venue, opponent, gf, ga = "Away", f.home, f.awayGoals, f.homeGoals
			default:
				continue
			}

			matches = append(matches, &domain.RawMatch{
				MatchID:     idhash.ComputeMatchID(FixtureSeason, team, f.date, opponent, venue),
				Season:      FixtureSeason,
				Seq:         seq,
				Team:        team,
				Date:        f.date,
				Time:        "15:00",
				Round:       fmt.Sprintf("Matchweek %d", f.round),
				Day:         weekday(f.date),
				Venue:       venue,
				Result:      string(resultOf(gf, ga)),
				GF:          fmt.Sprintf("%d", gf),
				GA:          fmt.Sprintf("%d", ga),
				Opponent:    opponent,
				Formation:   "4-3-3",
				MatchReport: "Match Report",
			})
			seq++
		}
	}
	return matches
}

// LoadFixtures populates the match store with the demo season.
func LoadFixtures(ctx context.Context, store storage.MatchStore) error {
	if err := store.InsertBulk(ctx, FixtureMatches()); err != nil {
		return fmt.Errorf("load fixtures: %w", err)
	}
	return nil
}

func resultOf(gf, ga int) domain.Result {
	switch {
	case gf > ga:
		return domain.ResultWin
	case gf < ga:
		return domain.ResultLoss
	default:
		return domain.ResultDraw
	}
}

func weekday(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return ""
	}
	return t.Weekday().String()[:3]
}

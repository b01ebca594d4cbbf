package simulation

import (
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"league-markov/internal/domain"
	"league-markov/internal/observability"
)

// Teams returns the distinct subject teams in order of first appearance.
func Teams(records []*domain.MatchRecord) []string {
	seen := make(map[string]bool)
	var teams []string
	for _, r := range records {
		if !seen[r.HomeTeam] {
			seen[r.HomeTeam] = true
			teams = append(teams, r.HomeTeam)
		}
	}
	return teams
}

// ActualPoints sums 3/1/0 over every recorded result of team. Unplayed fixtures add 0.
func ActualPoints(records []*domain.MatchRecord, team string) int {
	points := 0
	for _, r := range records {
		if r.HomeTeam == team {
			points += r.Result.Points()
		}
	}
	return points
}

// SortStandings orders rows descending by actual points, stable on input order.
func SortStandings(rows []domain.StandingRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].ActualPoints > rows[j].ActualPoints
	})
}

// CalculateFinalPoints builds the projected final table: for each team, in
// discovery order, its actual points so far and the simulated points for its
// remaining fixtures. The result is sorted descending by actual points.
func (s *Simulator) CalculateFinalPoints(records []*domain.MatchRecord, remainingHome, remainingAway int) ([]domain.StandingRow, error) {
	start := time.Now()

	teams := Teams(records)
	rows := make([]domain.StandingRow, 0, len(teams))
	for _, team := range teams {
		simulated, err := s.PredictTeamPoints(records, team, remainingHome, remainingAway)
		if err != nil {
			observability.RecordSimulation("error", time.Since(start).Seconds())
			return nil, fmt.Errorf("simulate %s: %w", team, err)
		}

		row := domain.StandingRow{
			Team:            team,
			ActualPoints:    ActualPoints(records, team),
			SimulatedPoints: simulated,
		}
		rows = append(rows, row)

		s.logger.WithFields(logrus.Fields{
			"team":      team,
			"actual":    row.ActualPoints,
			"simulated": row.SimulatedPoints,
		}).Debug("team simulated")
	}

	SortStandings(rows)
	observability.RecordSimulation("success", time.Since(start).Seconds())
	return rows, nil
}

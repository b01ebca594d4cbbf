package markov

import (
	"sort"

	"league-markov/internal/domain"
)

// Sequence returns the results of team at venue in date order, including
// ResultUnknown for fixtures without a recorded result.
func Sequence(records []*domain.MatchRecord, team string, venue domain.Venue) []domain.Result {
	var filtered []*domain.MatchRecord
	for _, r := range records {
		if r.HomeTeam == team && r.Venue == venue {
			filtered = append(filtered, r)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Date.Before(filtered[j].Date)
	})

	seq := make([]domain.Result, len(filtered))
	for i, r := range filtered {
		seq[i] = r.Result
	}
	return seq
}

// Played counts the results in seq that are W, D or L.
func Played(seq []domain.Result) int {
	n := 0
	for _, r := range seq {
		if r.IsValid() {
			n++
		}
	}
	return n
}

// Count tallies consecutive (previous, current) pairs in seq. A pair with an
// unknown result on either side is skipped, so a blank fixture breaks the chain.
func Count(seq []domain.Result) map[domain.Result]map[domain.Result]int {
	counts := make(map[domain.Result]map[domain.Result]int)
	for i := 1; i < len(seq); i++ {
		prev, cur := seq[i-1], seq[i]
		if !prev.IsValid() || !cur.IsValid() {
			continue
		}
		if counts[prev] == nil {
			counts[prev] = make(map[domain.Result]int)
		}
		counts[prev][cur]++
	}
	return counts
}

// Estimate builds the transition matrix for team at venue.
// Fewer than two results yields an empty matrix.
func Estimate(records []*domain.MatchRecord, team string, venue domain.Venue) *TransitionMatrix {
	return FromCounts(Count(Sequence(records, team, venue)))
}

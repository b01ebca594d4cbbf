// Package prepare turns raw match-log tables into ordered, typed match records.
package prepare

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"league-markov/internal/domain"
)

// RequiredColumns must be present in any table passed to Prepare.
// Time, Day, Referee and Attendance are accepted but dropped.
var RequiredColumns = []string{
	ColTeam, ColDate, ColRound, ColVenue, ColResult, ColGF, ColGA, ColOpponent,
	ColXG, ColXGA, ColPossession, ColCaptain, ColFormation,
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// Prepare validates the table schema, renames Team/Opponent to HomeTeam/AwayTeam,
// parses dates and returns records sorted ascending by date.
// Rows with equal dates keep their table order.
func Prepare(t *Table) ([]*domain.MatchRecord, error) {
	idx := make(map[string]int, len(RequiredColumns))
	for _, col := range RequiredColumns {
		i := t.Index(col)
		if i < 0 {
			return nil, &SchemaError{Column: col}
		}
		idx[col] = i
	}

	get := func(row int, col string) string {
		return strings.TrimSpace(t.cell(row, idx[col]))
	}

	records := make([]*domain.MatchRecord, 0, t.Len())
	for row := range t.Rows {
		rawDate := get(row, ColDate)
		date, ok := parseDate(rawDate)
		if !ok {
			return nil, &DateParseError{Row: row, Value: rawDate}
		}

		rawVenue := get(row, ColVenue)
		venue, ok := domain.ParseVenue(rawVenue)
		if !ok {
			return nil, &ValueError{Row: row, Column: ColVenue, Value: rawVenue}
		}

		gf, err := parseGoals(row, ColGF, get(row, ColGF))
		if err != nil {
			return nil, err
		}
		ga, err := parseGoals(row, ColGA, get(row, ColGA))
		if err != nil {
			return nil, err
		}

		records = append(records, &domain.MatchRecord{
			Date:         date,
			Round:        get(row, ColRound),
			Venue:        venue,
			HomeTeam:     get(row, ColTeam),
			AwayTeam:     get(row, ColOpponent),
			GoalsFor:     gf,
			GoalsAgainst: ga,
			Result:       domain.ParseResult(get(row, ColResult)),
			XG:           get(row, ColXG),
			XGA:          get(row, ColXGA),
			Possession:   get(row, ColPossession),
			Captain:      get(row, ColCaptain),
			Formation:    get(row, ColFormation),
			Row:          row,
		})
	}

	SortByDate(records)
	return records, nil
}

// SortByDate sorts records ascending by date, stable on input order.
func SortByDate(records []*domain.MatchRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.Before(records[j].Date)
	})
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// parseGoals reads the leading integer of a goals cell.
// Blank cells (unplayed fixtures) count as 0; "1 (4)" shoot-out notation yields 1.
func parseGoals(row int, column, s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, &ValueError{Row: row, Column: column, Value: s}
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, &ValueError{Row: row, Column: column, Value: s}
	}
	return n, nil
}

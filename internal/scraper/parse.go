package scraper

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"league-markov/internal/domain"
	"league-markov/internal/idhash"
)

// ErrTableNotFound is returned when a page has no match-log table.
var ErrTableNotFound = errors.New("match log table not found")

const matchLogSelector = "table#matchlogs_for"

// ParseMatchLog extracts the rows of a squad's match-log table.
// Header repeats and spacer rows are skipped. Season and MatchID are set;
// Seq is left for the caller, which knows the overall scrape order.
func ParseMatchLog(r io.Reader, season, team string) ([]*domain.RawMatch, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	table := doc.Find(matchLogSelector).First()
	if table.Length() == 0 {
		return nil, ErrTableNotFound
	}

	var matches []*domain.RawMatch
	table.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
		if row.HasClass("thead") || row.HasClass("spacer") || row.HasClass("over_header") {
			return
		}
		cell := func(stat string) string {
			return strings.TrimSpace(row.Find(fmt.Sprintf(`[data-stat="%s"]`, stat)).First().Text())
		}

		date := cell("date")
		if date == "" {
			return
		}

		m := &domain.RawMatch{
			Season:       season,
			Team:         team,
			Date:         date,
			Time:         cell("start_time"),
			Round:        cell("round"),
			Day:          cell("dayofweek"),
			Venue:        cell("venue"),
			Result:       cell("result"),
			GF:           cell("goals_for"),
			GA:           cell("goals_against"),
			Opponent:     cell("opponent"),
			XG:           cell("xg_for"),
			XGA:          cell("xg_against"),
			Possession:   cell("possession"),
			Attendance:   cell("attendance"),
			Captain:      cell("captain"),
			Formation:    cell("formation"),
			OppFormation: cell("opp_formation"),
			Referee:      cell("referee"),
			MatchReport:  cell("match_report"),
		}
		m.MatchID = idhash.ComputeMatchID(season, team, m.Date, m.Opponent, m.Venue)
		matches = append(matches, m)
	})

	return matches, nil
}

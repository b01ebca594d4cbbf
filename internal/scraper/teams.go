package scraper

import (
	"fmt"
	"sort"
	"strings"
)

// Defaults for the Premier League on fbref.
const (
	DefaultBaseURL = "https://fbref.com/en/squads"
	DefaultLeague  = "Premier League"
)

// DefaultTeams maps 2024-2025 Premier League clubs to their fbref squad codes.
// Keys use fbref's display names so that team and opponent columns agree.
func DefaultTeams() map[string]string {
	return map[string]string{
		"Arsenal":         "18bb7c10",
		"Aston Villa":     "8602292d",
		"Bournemouth":     "4ba7cbea",
		"Brentford":       "cd051869",
		"Brighton":        "d07537b9",
		"Chelsea":         "cff3d9bb",
		"Crystal Palace":  "47c64c55",
		"Everton":         "d3fd31cc",
		"Fulham":          "fd962109",
		"Ipswich Town":    "b74092de",
		"Leicester City":  "a2d435b3",
		"Liverpool":       "822bd0ba",
		"Manchester City": "b8fd03ef",
		"Manchester Utd":  "19538871",
		"Newcastle Utd":   "b2b47a98",
		"Nott'ham Forest": "e4a775cb",
		"Southampton":     "33c895d4",
		"Tottenham":       "361ca564",
		"West Ham":        "7c21e445",
		"Wolves":          "8cec06e1",
	}
}

// TeamURL builds the match-log URL of one squad for a season.
func TeamURL(baseURL, league, team, code, season string) string {
	return fmt.Sprintf("%s/%s/%s/matchlogs/c9/schedule/%s-Scores-and-Fixtures-%s",
		strings.TrimRight(baseURL, "/"), code, season, slug(team), slug(league))
}

func slug(s string) string {
	s = strings.ReplaceAll(strings.TrimSpace(s), "'", "")
	return strings.ReplaceAll(s, " ", "-")
}

func sortedTeams(teams map[string]string) []string {
	names := make([]string, 0, len(teams))
	for name := range teams {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

package domain

import "time"

// RawMatch is one row of a team's match log as scraped or stored.
// All source columns are kept as text; parsing happens during preparation.
// Corresponds to the matches table.
type RawMatch struct {
	MatchID      string // PRIMARY KEY, deterministic hash
	Season       string // "2024-2025"
	Seq          int    // position within the season's insertion order
	Team         string
	Date         string // YYYY-MM-DD
	Time         string
	Round        string
	Day          string
	Venue        string
	Result       string
	GF           string
	GA           string
	Opponent     string
	XG           string
	XGA          string
	Possession   string
	Attendance   string
	Captain      string
	Formation    string
	OppFormation string
	Referee      string
	MatchReport  string
}

// MatchRecord is a prepared match row.
//
// HomeTeam and AwayTeam are legacy names inherited from per-team scraping:
// HomeTeam is always the team whose log the row came from and AwayTeam is its
// opponent, whatever the venue. Venue is the authoritative home/away
// discriminator.
type MatchRecord struct {
	Date         time.Time
	Round        string
	Venue        Venue
	HomeTeam     string
	AwayTeam     string
	GoalsFor     int
	GoalsAgainst int
	Result       Result
	XG           string
	XGA          string
	Possession   string
	Captain      string
	Formation    string
	Row          int // 0-based index in the source table
}

// StandingRow is one line of the projected final table.
type StandingRow struct {
	Team            string `json:"team"`
	ActualPoints    int    `json:"epl_points"`
	SimulatedPoints int    `json:"mc_points"`
}

// ProjectedPoints returns actual plus simulated points.
func (r StandingRow) ProjectedPoints() int {
	return r.ActualPoints + r.SimulatedPoints
}

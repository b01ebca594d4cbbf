package prepare

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"league-markov/internal/domain"
	"league-markov/internal/idhash"
)

// Source column names.
const (
	ColTeam         = "Team"
	ColDate         = "Date"
	ColTime         = "Time"
	ColRound        = "Round"
	ColDay          = "Day"
	ColVenue        = "Venue"
	ColResult       = "Result"
	ColGF           = "GF"
	ColGA           = "GA"
	ColOpponent     = "Opponent"
	ColXG           = "xG"
	ColXGA          = "xGA"
	ColPossession   = "Possession"
	ColAttendance   = "Attendance"
	ColCaptain      = "Captain"
	ColFormation    = "Formation"
	ColOppFormation = "Opp_Formation"
	ColReferee      = "Referee"
	ColMatchReport  = "Match_Report"
)

// InputColumns is the column layout produced by the scraper and the match stores.
var InputColumns = []string{
	ColTeam, ColDate, ColTime, ColRound, ColDay, ColVenue, ColResult, ColGF, ColGA,
	ColOpponent, ColXG, ColXGA, ColPossession, ColAttendance, ColCaptain,
	ColFormation, ColOppFormation, ColReferee, ColMatchReport,
}

// Table is a header plus string rows, the untyped form of a season's match logs.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Index returns the position of a column, or -1.
// Spaces and underscores are treated as equivalent ("Opp Formation" == "Opp_Formation").
func (t *Table) Index(column string) int {
	want := normalizeHeader(column)
	for i, c := range t.Columns {
		if normalizeHeader(c) == want {
			return i
		}
	}
	return -1
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

func normalizeHeader(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), " ", "_")
}

// cell returns the value at (row, col) or "" when the row is short.
func (t *Table) cell(row, col int) string {
	r := t.Rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// ReadCSV reads a table with a header row.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("read csv: empty input")
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimPrefix(h, "\ufeff")
	}

	return &Table{Columns: header, Rows: records[1:]}, nil
}

// WriteCSV writes the table with its header row.
func (t *Table) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := writer.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}

// TableFromMatches lays out raw matches in InputColumns order.
func TableFromMatches(matches []*domain.RawMatch) *Table {
	t := &Table{
		Columns: append([]string(nil), InputColumns...),
		Rows:    make([][]string, 0, len(matches)),
	}
	for _, m := range matches {
		t.Rows = append(t.Rows, []string{
			m.Team, m.Date, m.Time, m.Round, m.Day, m.Venue, m.Result, m.GF, m.GA,
			m.Opponent, m.XG, m.XGA, m.Possession, m.Attendance, m.Captain,
			m.Formation, m.OppFormation, m.Referee, m.MatchReport,
		})
	}
	return t
}

// MatchesFromTable converts a table into raw matches for the given season,
// assigning seq in row order and a deterministic match_id.
// Missing optional columns become empty strings; Team, Date, Venue and Opponent are required.
func MatchesFromTable(t *Table, season string) ([]*domain.RawMatch, error) {
	for _, col := range []string{ColTeam, ColDate, ColVenue, ColOpponent} {
		if t.Index(col) < 0 {
			return nil, &SchemaError{Column: col}
		}
	}

	get := func(row int, col string) string {
		return strings.TrimSpace(t.cell(row, t.Index(col)))
	}

	matches := make([]*domain.RawMatch, 0, t.Len())
	for i := range t.Rows {
		m := &domain.RawMatch{
			Season:       season,
			Seq:          i,
			Team:         get(i, ColTeam),
			Date:         get(i, ColDate),
			Time:         get(i, ColTime),
			Round:        get(i, ColRound),
			Day:          get(i, ColDay),
			Venue:        get(i, ColVenue),
			Result:       get(i, ColResult),
			GF:           get(i, ColGF),
			GA:           get(i, ColGA),
			Opponent:     get(i, ColOpponent),
			XG:           get(i, ColXG),
			XGA:          get(i, ColXGA),
			Possession:   get(i, ColPossession),
			Attendance:   get(i, ColAttendance),
			Captain:      get(i, ColCaptain),
			Formation:    get(i, ColFormation),
			OppFormation: get(i, ColOppFormation),
			Referee:      get(i, ColReferee),
			MatchReport:  get(i, ColMatchReport),
		}
		m.MatchID = idhash.ComputeMatchID(season, m.Team, m.Date, m.Opponent, m.Venue)
		matches = append(matches, m)
	}
	return matches, nil
}

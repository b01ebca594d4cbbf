package clickhouse

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"league-markov/internal/domain"
	"league-markov/internal/storage"
)

// MatchStore implements storage.MatchStore using ClickHouse.
type MatchStore struct {
	conn *Conn
}

// NewMatchStore creates a new MatchStore.
func NewMatchStore(conn *Conn) *MatchStore {
	return &MatchStore{conn: conn}
}

// Compile-time interface check.
var _ storage.MatchStore = (*MatchStore)(nil)

const matchColumns = `
	match_id, season, seq, team, match_date, kickoff, round, day, venue, result,
	gf, ga, opponent, xg, xga, possession, attendance, captain, formation,
	opp_formation, referee, match_report`

// InsertBulk adds matches in one batch. Fails entire batch on any duplicate.
// MergeTree does not enforce uniqueness, so existing ids are checked first.
func (s *MatchStore) InsertBulk(ctx context.Context, matches []*domain.RawMatch) error {
	if len(matches) == 0 {
		return nil
	}
	if err := storage.ValidateBatch(matches); err != nil {
		return err
	}

	if err := s.checkExisting(ctx, matches, `SELECT count() FROM matches WHERE has(?, match_id)`); err != nil {
		return err
	}

	batch, err := s.prepareBatch(ctx, matches)
	if err != nil {
		return err
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// ReplaceSeason swaps a season's rows. ClickHouse has no transactions, so every
// check and the batch build run before the delete; only a failed send after the
// delete can leave the season empty.
func (s *MatchStore) ReplaceSeason(ctx context.Context, season string, matches []*domain.RawMatch) error {
	if err := storage.ValidateSeasonBatch(season, matches); err != nil {
		return err
	}
	if err := s.checkExisting(ctx, matches, `SELECT count() FROM matches WHERE has(?, match_id) AND season != ?`, season); err != nil {
		return err
	}

	batch, err := s.prepareBatch(ctx, matches)
	if err != nil {
		return err
	}
	if err := s.DeleteSeason(ctx, season); err != nil {
		batch.Abort()
		return err
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// checkExisting fails with ErrDuplicateKey when query counts any stored id of matches.
// MergeTree does not enforce uniqueness.
func (s *MatchStore) checkExisting(ctx context.Context, matches []*domain.RawMatch, query string, args ...any) error {
	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = m.MatchID
	}
	var existing uint64
	if err := s.conn.QueryRow(ctx, query, append([]any{ids}, args...)...).Scan(&existing); err != nil {
		return fmt.Errorf("check existing matches: %w", err)
	}
	if existing > 0 {
		return storage.ErrDuplicateKey
	}
	return nil
}

func (s *MatchStore) prepareBatch(ctx context.Context, matches []*domain.RawMatch) (driver.Batch, error) {
	batch, err := s.conn.PrepareBatch(ctx, `INSERT INTO matches (`+matchColumns+`)`)
	if err != nil {
		return nil, fmt.Errorf("prepare batch: %w", err)
	}

	for _, m := range matches {
		err = batch.Append(
			m.MatchID, m.Season, uint32(m.Seq), m.Team, m.Date, m.Time, m.Round, m.Day,
			m.Venue, m.Result, m.GF, m.GA, m.Opponent, m.XG, m.XGA, m.Possession,
			m.Attendance, m.Captain, m.Formation, m.OppFormation, m.Referee, m.MatchReport,
		)
		if err != nil {
			batch.Abort()
			return nil, fmt.Errorf("append to batch: %w", err)
		}
	}
	return batch, nil
}

// GetBySeason retrieves all matches of a season ordered by seq ASC.
func (s *MatchStore) GetBySeason(ctx context.Context, season string) ([]*domain.RawMatch, error) {
	query := `SELECT ` + matchColumns + `
		FROM matches
		WHERE season = ?
		ORDER BY seq ASC, match_id ASC`

	rows, err := s.conn.Query(ctx, query, season)
	if err != nil {
		return nil, fmt.Errorf("query matches by season: %w", err)
	}
	defer rows.Close()

	return scanMatches(rows)
}

// SeasonExists reports whether any match of the season is stored.
func (s *MatchStore) SeasonExists(ctx context.Context, season string) (bool, error) {
	var count uint64
	if err := s.conn.QueryRow(ctx, `SELECT count() FROM matches WHERE season = ?`, season).Scan(&count); err != nil {
		return false, fmt.Errorf("count season matches: %w", err)
	}
	return count > 0, nil
}

// ListSeasons returns all stored seasons in ascending order.
func (s *MatchStore) ListSeasons(ctx context.Context) ([]string, error) {
	rows, err := s.conn.Query(ctx, `SELECT DISTINCT season FROM matches ORDER BY season ASC`)
	if err != nil {
		return nil, fmt.Errorf("query seasons: %w", err)
	}
	defer rows.Close()

	var seasons []string
	for rows.Next() {
		var season string
		if err := rows.Scan(&season); err != nil {
			return nil, fmt.Errorf("scan season: %w", err)
		}
		seasons = append(seasons, season)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate seasons: %w", err)
	}
	return seasons, nil
}

// DeleteSeason removes every match of a season with a lightweight delete.
func (s *MatchStore) DeleteSeason(ctx context.Context, season string) error {
	if err := s.conn.Exec(ctx, `DELETE FROM matches WHERE season = ?`, season); err != nil {
		return fmt.Errorf("delete season: %w", err)
	}
	return nil
}

// chRows is the subset of driver.Rows used for scanning.
type chRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

func scanMatches(rows chRows) ([]*domain.RawMatch, error) {
	matches := []*domain.RawMatch{}

	for rows.Next() {
		var m domain.RawMatch
		var seq uint32
		err := rows.Scan(
			&m.MatchID, &m.Season, &seq, &m.Team, &m.Date, &m.Time, &m.Round, &m.Day,
			&m.Venue, &m.Result, &m.GF, &m.GA, &m.Opponent, &m.XG, &m.XGA, &m.Possession,
			&m.Attendance, &m.Captain, &m.Formation, &m.OppFormation, &m.Referee, &m.MatchReport,
		)
		if err != nil {
			return nil, fmt.Errorf("scan match row: %w", err)
		}
		m.Seq = int(seq)
		matches = append(matches, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate match rows: %w", err)
	}
	return matches, nil
}

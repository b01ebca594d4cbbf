package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"league-markov/internal/domain"
	"league-markov/internal/storage"
)

// MatchStore implements storage.MatchStore using SQLite.
type MatchStore struct {
	db *sql.DB
}

// NewMatchStore creates a new MatchStore. Migrations must already be applied.
func NewMatchStore(db *sql.DB) *MatchStore {
	return &MatchStore{db: db}
}

// Compile-time interface check.
var _ storage.MatchStore = (*MatchStore)(nil)

const matchColumns = `
	match_id, season, seq, team, match_date, kickoff, round, day, venue, result,
	gf, ga, opponent, xg, xga, possession, attendance, captain, formation,
	opp_formation, referee, match_report`

// InsertBulk adds matches atomically. Fails entire batch on any duplicate.
func (s *MatchStore) InsertBulk(ctx context.Context, matches []*domain.RawMatch) error {
	if len(matches) == 0 {
		return nil
	}
	if err := storage.ValidateBatch(matches); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := insertTx(ctx, tx, matches); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// ReplaceSeason deletes and re-inserts a season inside one transaction.
func (s *MatchStore) ReplaceSeason(ctx context.Context, season string, matches []*domain.RawMatch) error {
	if err := storage.ValidateSeasonBatch(season, matches); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM matches WHERE season = ?`, season); err != nil {
		return fmt.Errorf("delete season: %w", err)
	}
	if err := insertTx(ctx, tx, matches); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func insertTx(ctx context.Context, tx *sql.Tx, matches []*domain.RawMatch) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO matches (`+matchColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, m := range matches {
		_, err := stmt.ExecContext(ctx,
			m.MatchID, m.Season, m.Seq, m.Team, m.Date, m.Time, m.Round, m.Day,
			m.Venue, m.Result, m.GF, m.GA, m.Opponent, m.XG, m.XGA, m.Possession,
			m.Attendance, m.Captain, m.Formation, m.OppFormation, m.Referee, m.MatchReport,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert match in bulk: %w", err)
		}
	}
	return nil
}

// GetBySeason retrieves all matches of a season ordered by seq ASC.
func (s *MatchStore) GetBySeason(ctx context.Context, season string) ([]*domain.RawMatch, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+matchColumns+`
		FROM matches
		WHERE season = ?
		ORDER BY seq ASC, match_id ASC`, season)
	if err != nil {
		return nil, fmt.Errorf("query matches by season: %w", err)
	}
	defer rows.Close()

	matches := []*domain.RawMatch{}
	for rows.Next() {
		var m domain.RawMatch
		err := rows.Scan(
			&m.MatchID, &m.Season, &m.Seq, &m.Team, &m.Date, &m.Time, &m.Round, &m.Day,
			&m.Venue, &m.Result, &m.GF, &m.GA, &m.Opponent, &m.XG, &m.XGA, &m.Possession,
			&m.Attendance, &m.Captain, &m.Formation, &m.OppFormation, &m.Referee, &m.MatchReport,
		)
		if err != nil {
			return nil, fmt.Errorf("scan match row: %w", err)
		}
		matches = append(matches, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate match rows: %w", err)
	}
	return matches, nil
}

// SeasonExists reports whether any match of the season is stored.
func (s *MatchStore) SeasonExists(ctx context.Context, season string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM matches WHERE season = ?)`, season).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check season exists: %w", err)
	}
	return exists, nil
}

// ListSeasons returns all stored seasons in ascending order.
func (s *MatchStore) ListSeasons(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT season FROM matches ORDER BY season ASC`)
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
	return seasons, rows.Err()
}

// DeleteSeason removes every match of a season.
func (s *MatchStore) DeleteSeason(ctx context.Context, season string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM matches WHERE season = ?`, season); err != nil {
		return fmt.Errorf("delete season: %w", err)
	}
	return nil
}

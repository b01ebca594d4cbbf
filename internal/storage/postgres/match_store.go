package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"league-markov/internal/domain"
	"league-markov/internal/storage"
)

// MatchStore implements storage.MatchStore using PostgreSQL.
type MatchStore struct {
	pool *Pool
}

// NewMatchStore creates a new MatchStore.
func NewMatchStore(pool *Pool) *MatchStore {
	return &MatchStore{pool: pool}
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

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := insertBatch(ctx, tx, matches); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// ReplaceSeason deletes and re-inserts a season inside one transaction.
func (s *MatchStore) ReplaceSeason(ctx context.Context, season string, matches []*domain.RawMatch) error {
	if err := storage.ValidateSeasonBatch(season, matches); err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM matches WHERE season = $1`, season); err != nil {
		return fmt.Errorf("delete season: %w", err)
	}
	if err := insertBatch(ctx, tx, matches); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func insertBatch(ctx context.Context, tx pgx.Tx, matches []*domain.RawMatch) error {
	query := `INSERT INTO matches (` + matchColumns + `) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
		$12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22
	)`

	batch := &pgx.Batch{}
	for _, m := range matches {
		batch.Queue(query,
			m.MatchID, m.Season, m.Seq, m.Team, m.Date, m.Time, m.Round, m.Day,
			m.Venue, m.Result, m.GF, m.GA, m.Opponent, m.XG, m.XGA, m.Possession,
			m.Attendance, m.Captain, m.Formation, m.OppFormation, m.Referee, m.MatchReport,
		)
	}

	results := tx.SendBatch(ctx, batch)
	for range matches {
		if _, err := results.Exec(); err != nil {
			results.Close()
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert match in bulk: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}
	return nil
}

// GetBySeason retrieves all matches of a season ordered by seq ASC.
func (s *MatchStore) GetBySeason(ctx context.Context, season string) ([]*domain.RawMatch, error) {
	query := `SELECT ` + matchColumns + `
		FROM matches
		WHERE season = $1
		ORDER BY seq ASC, match_id ASC`

	rows, err := s.pool.Query(ctx, query, season)
	if err != nil {
		return nil, fmt.Errorf("query matches by season: %w", err)
	}
	defer rows.Close()

	return scanMatches(rows)
}

// SeasonExists reports whether any match of the season is stored.
func (s *MatchStore) SeasonExists(ctx context.Context, season string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM matches WHERE season = $1)`, season).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check season exists: %w", err)
	}
	return exists, nil
}

// ListSeasons returns all stored seasons in ascending order.
func (s *MatchStore) ListSeasons(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT DISTINCT season FROM matches ORDER BY season ASC`)
	if err != nil {
		return nil, fmt.Errorf("query seasons: %w", err)
	}
	defer rows.Close()

	seasons, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collect seasons: %w", err)
	}
	return seasons, nil
}

// DeleteSeason removes every match of a season.
func (s *MatchStore) DeleteSeason(ctx context.Context, season string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM matches WHERE season = $1`, season); err != nil {
		return fmt.Errorf("delete season: %w", err)
	}
	return nil
}

// scanMatches scans multiple rows into a slice.
func scanMatches(rows pgx.Rows) ([]*domain.RawMatch, error) {
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

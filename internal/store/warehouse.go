package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/XavierBriggs/fortuna/services/nfl-workbench/pkg/models"
)

// Warehouse reads raw edges, scores, and line snapshots from the Postgres
// odds warehouse and writes settled bets back. All identifier cleanup
// happens downstream; the warehouse hands rows over as stored.
type Warehouse struct {
	db *sql.DB
}

// OpenWarehouse connects to the warehouse and verifies the connection
func OpenWarehouse(dsn string) (*Warehouse, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open warehouse: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping warehouse: %w", err)
	}

	return &Warehouse{db: db}, nil
}

// Close closes the underlying connection pool
func (w *Warehouse) Close() error {
	return w.db.Close()
}

// LoadEdges fetches every bet candidate
func (w *Warehouse) LoadEdges(ctx context.Context) ([]models.Edge, error) {
	query := `
		SELECT COALESCE(date_iso, ''), COALESCE(season, 0), COALESCE(week, 0),
		       home, away, market, side,
		       line, COALESCE(odds_american, 0), COALESCE(stake, 1.0),
		       p_win, COALESCE(book, ''), COALESCE(game_id, ''), COALESCE(source, '')
		FROM edges
		ORDER BY date_iso, home, away
	`

	rows, err := w.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query edges: %w", err)
	}
	defer rows.Close()

	var edges []models.Edge
	for rows.Next() {
		var e models.Edge
		err := rows.Scan(&e.DateISO, &e.Season, &e.Week, &e.Home, &e.Away,
			&e.Market, &e.Side, &e.Line, &e.OddsAmerican, &e.Stake,
			&e.PWin, &e.Book, &e.GameID, &e.Source)
		if err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		edges = append(edges, e)
	}

	return edges, rows.Err()
}

// LoadScores fetches final and in-progress game results
func (w *Warehouse) LoadScores(ctx context.Context) ([]models.Score, error) {
	query := `
		SELECT COALESCE(date_iso, ''), COALESCE(season, 0), COALESCE(week, 0),
		       home, away, COALESCE(home_score, 0), COALESCE(away_score, 0),
		       COALESCE(status, ''), captured_at
		FROM scores
	`

	rows, err := w.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query scores: %w", err)
	}
	defer rows.Close()

	var scores []models.Score
	for rows.Next() {
		var s models.Score
		err := rows.Scan(&s.DateISO, &s.Season, &s.Week, &s.Home, &s.Away,
			&s.HomeScore, &s.AwayScore, &s.Status, &s.CapturedAt)
		if err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		scores = append(scores, s)
	}

	return scores, rows.Err()
}

// LoadSnapshots fetches line snapshots captured at or after since
func (w *Warehouse) LoadSnapshots(ctx context.Context, since time.Time) ([]models.LineSnapshot, error) {
	query := `
		SELECT captured_at, game_key, book, market, side,
		       line, price_american, kickoff, COALESCE(seq, 0)
		FROM line_snapshots
		WHERE captured_at >= $1
		ORDER BY captured_at, seq
	`

	rows, err := w.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []models.LineSnapshot
	for rows.Next() {
		var s models.LineSnapshot
		err := rows.Scan(&s.CapturedAt, &s.GameKey, &s.Book, &s.Market,
			&s.Side, &s.Line, &s.PriceAmerican, &s.Kickoff, &s.Seq)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snaps = append(snaps, s)
	}

	return snaps, rows.Err()
}

// SaveSettled writes settled bets for a run, replacing any previous rows
// for the same run ID
func (w *Warehouse) SaveSettled(ctx context.Context, runID string, bets []models.SettledBet) error {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin settled tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM settled_bets WHERE run_id = $1`, runID); err != nil {
		return fmt.Errorf("clear settled run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO settled_bets (
			run_id, date_iso, home_nick, away_nick, market, side, pick_nick,
			home_score, away_score, join_method,
			book_used, price_used_american, line_used,
			result, unit_profit, stake, coverage_scope, clv
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
	`)
	if err != nil {
		return fmt.Errorf("prepare settled insert: %w", err)
	}
	defer stmt.Close()

	for _, b := range bets {
		_, err := stmt.ExecContext(ctx,
			runID, b.DateISO, b.HomeNick, b.AwayNick, string(b.Market), string(b.Side), b.PickNick,
			b.HomeScore, b.AwayScore, string(b.JoinMethod),
			nullString(b.BookUsed), b.PriceUsed, b.LineUsed,
			string(b.Result), b.UnitProfit, b.Edge.Stake, string(b.CoverageScope), b.CLV)
		if err != nil {
			return fmt.Errorf("insert settled bet: %w", err)
		}
	}

	return tx.Commit()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/XavierBriggs/fortuna/services/nfl-workbench/internal/pipeline"
	"github.com/XavierBriggs/fortuna/services/nfl-workbench/pkg/models"
)

// BetLog is the local SQLite archive of settlement runs. It keeps the
// workbench usable offline: every run's summary and settled rows land here.
type BetLog struct {
	db *sql.DB
}

// OpenBetLog opens (and if needed creates) the local bet log
func OpenBetLog(path string) (*BetLog, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening bet log: %w", err)
	}

	if err := createBetLogTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return &BetLog{db: db}, nil
}

func createBetLogTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ran_at DATETIME NOT NULL,
		bets INTEGER NOT NULL,
		total_profit REAL NOT NULL,
		summary_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS settled_bets (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id),
		date_iso TEXT,
		home_nick TEXT,
		away_nick TEXT,
		market TEXT NOT NULL,
		side TEXT,
		pick_nick TEXT,
		result TEXT NOT NULL,
		unit_profit REAL NOT NULL,
		stake REAL NOT NULL,
		join_method TEXT,
		coverage_scope TEXT,
		book_used TEXT,
		price_used INTEGER,
		line_used REAL
	);

	CREATE INDEX IF NOT EXISTS idx_settled_run ON settled_bets(run_id);
	CREATE INDEX IF NOT EXISTS idx_settled_date ON settled_bets(date_iso);
	`

	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating bet log tables: %w", err)
	}
	return nil
}

// Close closes the database connection
func (l *BetLog) Close() error {
	return l.db.Close()
}

// RecordRun archives one settlement run and its settled bets, returning the
// run's row ID
func (l *BetLog) RecordRun(summary pipeline.RunSummary, bets []models.SettledBet) (int64, error) {
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return 0, fmt.Errorf("marshal run summary: %w", err)
	}

	tx, err := l.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin run tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		INSERT INTO runs (ran_at, bets, total_profit, summary_json)
		VALUES (?, ?, ?, ?)
	`, summary.RanAt, summary.Bets, summary.TotalProfit, string(summaryJSON))
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}

	runID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO settled_bets (
			run_id, date_iso, home_nick, away_nick, market, side, pick_nick,
			result, unit_profit, stake, join_method, coverage_scope,
			book_used, price_used, line_used
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare settled insert: %w", err)
	}
	defer stmt.Close()

	for _, b := range bets {
		_, err := stmt.Exec(runID, b.DateISO, b.HomeNick, b.AwayNick,
			string(b.Market), string(b.Side), b.PickNick,
			string(b.Result), b.UnitProfit, b.Edge.Stake,
			string(b.JoinMethod), string(b.CoverageScope),
			b.BookUsed, b.PriceUsed, b.LineUsed)
		if err != nil {
			return 0, fmt.Errorf("inserting settled bet: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	return runID, nil
}

// RecentRuns returns summaries of the latest runs, newest first
func (l *BetLog) RecentRuns(limit int) ([]pipeline.RunSummary, error) {
	rows, err := l.db.Query(`
		SELECT summary_json FROM runs ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var summaries []pipeline.RunSummary
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}

		var s pipeline.RunSummary
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			return nil, fmt.Errorf("decoding run summary: %w", err)
		}
		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}

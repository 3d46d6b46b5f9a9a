// Package store persists pipeline runs, annotated reviews, and the
// derived per-bank insights in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"review_insights/internal/insights"
	"review_insights/internal/review"
	"review_insights/internal/sentiment"
	"review_insights/internal/themes"
)

// Store wraps SQLite access for runs, reviews, and insights.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			input_path TEXT,
			status TEXT,
			reviews_total INTEGER,
			reviews_skipped INTEGER,
			last_error TEXT,
			started_at TIMESTAMP,
			finished_at TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS reviews (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT,
			bank TEXT,
			source TEXT,
			rating INTEGER,
			review_date TIMESTAMP,
			text TEXT,
			normalized TEXT,
			sentiment_label TEXT,
			sentiment_score REAL,
			theme TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_reviews_run_bank ON reviews(run_id, bank);`,
		`CREATE TABLE IF NOT EXISTS insights (
			run_id TEXT,
			bank TEXT,
			kind TEXT,
			theme TEXT,
			position INTEGER
		);`,
		`CREATE INDEX IF NOT EXISTS idx_insights_run ON insights(run_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Run is one processing pass over an input file.
type Run struct {
	RunID          string     `json:"run_id"`
	InputPath      string     `json:"input_path"`
	Status         string     `json:"status"`
	ReviewsTotal   int        `json:"reviews_total"`
	ReviewsSkipped int        `json:"reviews_skipped"`
	LastError      *string    `json:"last_error"`
	StartedAt      time.Time  `json:"started_at"`
	FinishedAt     *time.Time `json:"finished_at"`
}

const (
	RunRunning   = "running"
	RunSucceeded = "succeeded"
	RunFailed    = "failed"
)

func (s *Store) RecordRunStarted(ctx context.Context, runID, inputPath string, ts time.Time) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO runs(run_id, input_path, status, reviews_total, reviews_skipped, started_at)
		VALUES(?, ?, ?, 0, 0, ?)`, runID, inputPath, RunRunning, ts)
	return err
}

func (s *Store) FinishRun(ctx context.Context, runID, status string, total, skipped int, errMsg *string, ts time.Time) error {
	_, err := s.db.ExecContext(ctx, `UPDATE runs SET status=?, reviews_total=?, reviews_skipped=?, last_error=?, finished_at=? WHERE run_id=?`,
		status, total, skipped, errMsg, ts, runID)
	return err
}

// InsertAnnotated saves all annotated rows of a run in one transaction,
// so a run's review set is either fully present or absent.
func (s *Store) InsertAnnotated(ctx context.Context, runID string, rows []review.AnnotatedReview) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO reviews(run_id, bank, source, rating, review_date, text, normalized, sentiment_label, sentiment_score, theme)
		VALUES(?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, runID, r.Bank, r.Source, r.Rating, r.Date, r.Text,
			r.Normalized, string(r.SentimentLabel), r.SentimentScore, string(r.Theme)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

const (
	kindDriver    = "driver"
	kindPainPoint = "pain_point"
)

// SaveInsights persists the per-bank driver and pain-point lists,
// keeping their ranking via the position column.
func (s *Store) SaveInsights(ctx context.Context, runID string, byBank map[string]insights.Insight) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for bank, ins := range byBank {
		for i, theme := range ins.Drivers {
			if _, err := tx.ExecContext(ctx, `INSERT INTO insights(run_id, bank, kind, theme, position) VALUES(?,?,?,?,?)`,
				runID, bank, kindDriver, string(theme), i); err != nil {
				return err
			}
		}
		for i, theme := range ins.PainPoints {
			if _, err := tx.ExecContext(ctx, `INSERT INTO insights(run_id, bank, kind, theme, position) VALUES(?,?,?,?,?)`,
				runID, bank, kindPainPoint, string(theme), i); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

// InsightsForRun rebuilds the per-bank insight map for a run.
func (s *Store) InsightsForRun(ctx context.Context, runID string) (map[string]insights.Insight, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT bank, kind, theme FROM insights WHERE run_id=? ORDER BY bank, kind, position`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byBank := make(map[string]insights.Insight)
	for rows.Next() {
		var bank, kind, theme string
		if err := rows.Scan(&bank, &kind, &theme); err != nil {
			return nil, err
		}
		ins := byBank[bank]
		if ins.Drivers == nil {
			ins.Drivers = []themes.Theme{}
		}
		if ins.PainPoints == nil {
			ins.PainPoints = []themes.Theme{}
		}
		switch kind {
		case kindDriver:
			ins.Drivers = append(ins.Drivers, themes.Theme(theme))
		case kindPainPoint:
			ins.PainPoints = append(ins.PainPoints, themes.Theme(theme))
		}
		byBank[bank] = ins
	}
	return byBank, rows.Err()
}

// LatestRun returns the most recently started run, or nil when the
// store is empty.
func (s *Store) LatestRun(ctx context.Context) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT run_id, input_path, status, reviews_total, reviews_skipped, last_error, started_at, finished_at
		FROM runs ORDER BY started_at DESC LIMIT 1`)
	r, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `SELECT run_id, input_path, status, reviews_total, reviews_skipped, last_error, started_at, finished_at
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var r Run
	var lastErr sql.NullString
	var finished sql.NullTime
	if err := row.Scan(&r.RunID, &r.InputPath, &r.Status, &r.ReviewsTotal, &r.ReviewsSkipped, &lastErr, &r.StartedAt, &finished); err != nil {
		return nil, err
	}
	if lastErr.Valid {
		r.LastError = &lastErr.String
	}
	if finished.Valid {
		r.FinishedAt = &finished.Time
	}
	return &r, nil
}

// ListAnnotated returns a run's stored reviews, optionally filtered to
// one bank.
func (s *Store) ListAnnotated(ctx context.Context, runID, bank string, limit int) ([]review.AnnotatedReview, error) {
	if limit <= 0 {
		limit = 200
	}
	query := `SELECT bank, source, rating, review_date, text, normalized, sentiment_label, sentiment_score, theme
		FROM reviews WHERE run_id=?`
	args := []any{runID}
	if bank != "" {
		query += ` AND bank=?`
		args = append(args, bank)
	}
	query += ` ORDER BY id LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []review.AnnotatedReview
	for rows.Next() {
		var r review.AnnotatedReview
		var label, theme string
		var date sql.NullTime
		if err := rows.Scan(&r.Bank, &r.Source, &r.Rating, &date, &r.Text, &r.Normalized, &label, &r.SentimentScore, &theme); err != nil {
			return nil, err
		}
		if date.Valid {
			r.Date = date.Time
		}
		r.SentimentLabel = sentiment.Label(label)
		r.Theme = themes.Theme(theme)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Health returns err if DB not reachable.
func (s *Store) Health(ctx context.Context) error {
	row := s.db.QueryRowContext(ctx, `SELECT 1`)
	var v int
	if err := row.Scan(&v); err != nil {
		return fmt.Errorf("db health: %w", err)
	}
	return nil
}

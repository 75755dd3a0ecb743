package sink

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/ahrav/go-breakdown/internal/domain"
)

const createResultsTable = `
CREATE TABLE IF NOT EXISTS breakdown_results (
	run_id        TEXT    NOT NULL,
	position      INTEGER NOT NULL,
	feature_name  TEXT    NOT NULL,
	feature_value TEXT    NOT NULL,
	total         INTEGER NOT NULL,
	units         INTEGER NOT NULL,
	scale         INTEGER NOT NULL,
	percentage    TEXT    NOT NULL,
	created_at    DATETIME DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (run_id, position)
)`

const insertResult = `
INSERT INTO breakdown_results
	(run_id, position, feature_name, feature_value, total, units, scale, percentage)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

// SQLite stores every run's result rows in the breakdown_results table.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and ensures the
// results table exists.
func OpenSQLite(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createResultsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create results table: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close closes the database.
func (s *SQLite) Close() error { return s.db.Close() }

// Write implements Sink. All rows of one call share a fresh run id and are
// inserted in a single transaction.
func (s *SQLite) Write(ctx context.Context, rows []domain.ResultRow) error {
	_, err := s.WriteRun(ctx, rows)
	return err
}

// WriteRun stores rows and returns the run id they were stored under.
func (s *SQLite) WriteRun(ctx context.Context, rows []domain.ResultRow) (string, error) {
	runID := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertResult)
	if err != nil {
		return "", fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range rows {
		_, err := stmt.ExecContext(ctx, runID, i, r.FeatureName, r.FeatureValue, r.Total,
			r.Percentage.Units, r.Percentage.Scale, r.Percentage.String())
		if err != nil {
			return "", fmt.Errorf("insert row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit results: %w", err)
	}
	return runID, nil
}

// Run loads the rows stored under runID in insertion order.
func (s *SQLite) Run(ctx context.Context, runID string) ([]domain.ResultRow, error) {
	rs, err := s.db.QueryContext(ctx, `
SELECT feature_name, feature_value, total, units, scale
FROM breakdown_results WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run %s: %w", runID, err)
	}
	defer rs.Close()

	var out []domain.ResultRow
	for rs.Next() {
		var r domain.ResultRow
		if err := rs.Scan(&r.FeatureName, &r.FeatureValue, &r.Total, &r.Percentage.Units, &r.Percentage.Scale); err != nil {
			return nil, fmt.Errorf("scan run %s: %w", runID, err)
		}
		out = append(out, r)
	}
	return out, rs.Err()
}

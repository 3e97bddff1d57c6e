package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"jirabot/internal/poller"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS job_runs (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	cycle_id       TEXT UNIQUE NOT NULL,
	started_at     TEXT NOT NULL,
	finished_at    TEXT,
	boundary       TEXT NOT NULL,
	projects       TEXT NOT NULL DEFAULT '[]',
	issues_scanned INTEGER NOT NULL DEFAULT 0,
	messages_sent  INTEGER NOT NULL DEFAULT 0,
	failures       INTEGER NOT NULL DEFAULT 0,
	success        INTEGER NOT NULL DEFAULT 0,
	error          TEXT NOT NULL DEFAULT ''
)`

type SQLite struct {
	db *sql.DB
}

func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("journal: create dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("journal: open database: %w", err)
	}
	// One writer at a time; the scheduler never overlaps cycles anyway.
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{"PRAGMA journal_mode = WAL", "PRAGMA busy_timeout = 5000", sqliteSchema} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("journal: migrate: %w", err)
		}
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Start(ctx context.Context, r poller.Report) error {
	const q = `INSERT INTO job_runs(cycle_id, started_at, boundary) VALUES(?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q, r.ID, formatTime(r.StartedAt), formatTime(r.Boundary))
	return err
}

func (s *SQLite) Finish(ctx context.Context, r poller.Report) error {
	const q = `UPDATE job_runs SET finished_at=?, projects=?, issues_scanned=?, messages_sent=?,
		failures=?, success=?, error=? WHERE cycle_id=?`
	_, err := s.db.ExecContext(ctx, q, formatTime(r.FinishedAt), encodeProjects(r.Projects), r.IssuesScanned,
		r.Delivered, len(r.Failures), r.Success(), r.Err, r.ID)
	return err
}

func (s *SQLite) Last(ctx context.Context) (Run, error) {
	const q = `SELECT cycle_id, started_at, finished_at, boundary, projects, issues_scanned,
		messages_sent, failures, success, error FROM job_runs ORDER BY id DESC LIMIT 1`
	var (
		run                         Run
		started, boundary, projects string
		finished                    sql.NullString
	)
	err := s.db.QueryRowContext(ctx, q).Scan(&run.CycleID, &started, &finished, &boundary,
		&projects, &run.IssuesScanned, &run.MessagesSent, &run.Failures, &run.Success, &run.Error)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNoRuns
	}
	if err != nil {
		return Run{}, err
	}

	if run.StartedAt, err = parseTime(started); err != nil {
		return Run{}, err
	}
	if run.Boundary, err = parseTime(boundary); err != nil {
		return Run{}, err
	}
	if finished.Valid {
		t, err := parseTime(finished.String)
		if err != nil {
			return Run{}, err
		}
		run.FinishedAt = &t
	}
	run.Projects = decodeProjects(projects)
	return run, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("journal: bad timestamp %q: %w", s, err)
	}
	return t, nil
}

package journal

import (
	"context"
	"errors"
	"fmt"

	"jirabot/internal/poller"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS job_runs (
	id             BIGSERIAL PRIMARY KEY,
	cycle_id       TEXT UNIQUE NOT NULL,
	started_at     TIMESTAMPTZ NOT NULL,
	finished_at    TIMESTAMPTZ,
	boundary       TIMESTAMPTZ NOT NULL,
	projects       TEXT NOT NULL DEFAULT '[]',
	issues_scanned INTEGER NOT NULL DEFAULT 0,
	messages_sent  INTEGER NOT NULL DEFAULT 0,
	failures       INTEGER NOT NULL DEFAULT 0,
	success        BOOLEAN NOT NULL DEFAULT false,
	error          TEXT NOT NULL DEFAULT ''
)`

type Postgres struct {
	pool *pgxpool.Pool
}

func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("journal: connect: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("journal: migrate: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Start(ctx context.Context, r poller.Report) error {
	const q = `INSERT INTO job_runs(cycle_id, started_at, boundary) VALUES($1, $2, $3)`
	_, err := p.pool.Exec(ctx, q, r.ID, r.StartedAt, r.Boundary)
	return err
}

func (p *Postgres) Finish(ctx context.Context, r poller.Report) error {
	const q = `UPDATE job_runs SET finished_at=$2, projects=$3, issues_scanned=$4, messages_sent=$5,
		failures=$6, success=$7, error=$8 WHERE cycle_id=$1`
	_, err := p.pool.Exec(ctx, q, r.ID, r.FinishedAt, encodeProjects(r.Projects), r.IssuesScanned,
		r.Delivered, len(r.Failures), r.Success(), r.Err)
	return err
}

func (p *Postgres) Last(ctx context.Context) (Run, error) {
	const q = `SELECT cycle_id, started_at, finished_at, boundary, projects, issues_scanned,
		messages_sent, failures, success, error FROM job_runs ORDER BY id DESC LIMIT 1`
	var (
		run      Run
		projects string
	)
	err := p.pool.QueryRow(ctx, q).Scan(&run.CycleID, &run.StartedAt, &run.FinishedAt, &run.Boundary,
		&projects, &run.IssuesScanned, &run.MessagesSent, &run.Failures, &run.Success, &run.Error)
	if errors.Is(err, pgx.ErrNoRows) {
		return Run{}, ErrNoRuns
	}
	if err != nil {
		return Run{}, err
	}
	run.Projects = decodeProjects(projects)
	return run, nil
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

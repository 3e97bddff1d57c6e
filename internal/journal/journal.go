// Package journal persists one row per poll cycle so operators can see when
// the bot last ran and how it went.
package journal

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"jirabot/internal/poller"

	"github.com/pterm/pterm"
)

var ErrNoRuns = errors.New("no recorded runs")

// Run is one row of the job_runs table.
type Run struct {
	CycleID       string     `json:"cycle_id"`
	StartedAt     time.Time  `json:"started_at"`
	FinishedAt    *time.Time `json:"finished_at"`
	Boundary      time.Time  `json:"boundary"`
	Projects      []string   `json:"projects"`
	IssuesScanned int        `json:"issues_scanned"`
	MessagesSent  int        `json:"messages_sent"`
	Failures      int        `json:"failures"`
	Success       bool       `json:"success"`
	Error         string     `json:"error"`
}

type Store interface {
	poller.Journal
	Last(ctx context.Context) (Run, error)
	Close() error
}

// Open picks the backend from the DSN: postgres:// and postgresql:// URLs go
// to PostgreSQL, anything else is taken as a SQLite file path.
func Open(ctx context.Context, dsn string, log *pterm.Logger) (Store, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		log.Debug("opening postgres journal")
		store, err := OpenPostgres(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	log.Debug("opening sqlite journal", log.Args("path", dsn))
	store, err := OpenSQLite(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return store, nil
}

func encodeProjects(projects []string) string {
	if projects == nil {
		projects = []string{}
	}
	data, _ := json.Marshal(projects)
	return string(data)
}

func decodeProjects(s string) []string {
	var out []string
	_ = json.Unmarshal([]byte(s), &out)
	return out
}

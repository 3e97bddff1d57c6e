package journal

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"jirabot/internal/poller"

	"github.com/pterm/pterm"
)

func openTemp(t *testing.T) Store {
	t.Helper()
	log := pterm.DefaultLogger.WithWriter(io.Discard)
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "data", "journal.db"), log)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpenPicksSQLiteForPaths(t *testing.T) {
	if _, ok := openTemp(t).(*SQLite); !ok {
		t.Error("file path should open a SQLite journal")
	}
}

func TestLastWithoutRuns(t *testing.T) {
	if _, err := openTemp(t).Last(context.Background()); !errors.Is(err, ErrNoRuns) {
		t.Errorf("Last() error = %v, want ErrNoRuns", err)
	}
}

func TestStartFinishLast(t *testing.T) {
	ctx := context.Background()
	store := openTemp(t)
	started := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	first := poller.Report{ID: "c1", StartedAt: started, Boundary: started.Add(-10 * time.Minute)}
	if err := store.Start(ctx, first); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	run, err := store.Last(ctx)
	if err != nil {
		t.Fatalf("Last() error: %v", err)
	}
	if run.CycleID != "c1" || run.FinishedAt != nil || run.Success {
		t.Errorf("unfinished run = %+v", run)
	}

	first.FinishedAt = started.Add(3 * time.Second)
	first.Projects = []string{"Core", "Web"}
	first.IssuesScanned = 4
	first.Delivered = 3
	first.Failures = []poller.Failure{{Issue: "CORE-1", Destination: "telegram:1", Err: "boom"}}
	if err := store.Finish(ctx, first); err != nil {
		t.Fatalf("Finish() error: %v", err)
	}

	second := poller.Report{ID: "c2", StartedAt: started.Add(10 * time.Minute), Boundary: started}
	second.FinishedAt = second.StartedAt.Add(time.Second)
	second.Err = "list projects: 401"
	if err := store.Start(ctx, second); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if err := store.Finish(ctx, second); err != nil {
		t.Fatalf("Finish() error: %v", err)
	}

	run, err = store.Last(ctx)
	if err != nil {
		t.Fatalf("Last() error: %v", err)
	}
	if run.CycleID != "c2" || run.Success || run.Error != "list projects: 401" {
		t.Errorf("last run = %+v", run)
	}
	if run.FinishedAt == nil || !run.FinishedAt.Equal(second.FinishedAt) {
		t.Errorf("finished_at = %v, want %v", run.FinishedAt, second.FinishedAt)
	}
	if !run.Boundary.Equal(started) {
		t.Errorf("boundary = %v, want %v", run.Boundary, started)
	}
}

func TestFinishRecordsCounts(t *testing.T) {
	ctx := context.Background()
	store := openTemp(t)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	r := poller.Report{ID: "c1", StartedAt: now, Boundary: now.Add(-time.Minute), FinishedAt: now.Add(time.Second),
		Projects: []string{"Core"}, IssuesScanned: 2, Delivered: 5,
		Failures: []poller.Failure{{}, {}}}
	if err := store.Start(ctx, r); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if err := store.Finish(ctx, r); err != nil {
		t.Fatalf("Finish() error: %v", err)
	}

	run, err := store.Last(ctx)
	if err != nil {
		t.Fatalf("Last() error: %v", err)
	}
	if !run.Success || run.IssuesScanned != 2 || run.MessagesSent != 5 || run.Failures != 2 {
		t.Errorf("run = %+v", run)
	}
	if len(run.Projects) != 1 || run.Projects[0] != "Core" {
		t.Errorf("projects = %v", run.Projects)
	}
}

// Package poller runs one poll cycle: fetch projects and recently updated
// issues, render each issue, and dispatch the result to every destination.
package poller

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"jirabot/internal/changes"
	"jirabot/internal/markup"
	"jirabot/internal/render"
	"jirabot/internal/window"

	"github.com/google/uuid"
	"github.com/pterm/pterm"
)

var ErrCycleInProgress = errors.New("poll cycle already in progress")

type Source interface {
	ListProjects(ctx context.Context) ([]changes.Project, error)
	ListIssues(ctx context.Context, project changes.Project, updatedAfter time.Time) ([]changes.Issue, error)
}

// Message carries both renders of one issue; each sink picks the one its
// wire format needs.
type Message struct {
	IssueKey string
	Text     string
	Markup   markup.Document
}

type Sink interface {
	Deliver(ctx context.Context, destination string, msg Message) error
}

// Journal records cycles. Errors are logged and never fail a cycle.
type Journal interface {
	Start(ctx context.Context, r Report) error
	Finish(ctx context.Context, r Report) error
}

type Settings struct {
	Interval     time.Duration
	Projects     []string
	Destinations []string
	Low          changes.Severity
	High         changes.Severity
}

type Poller struct {
	src      Source
	sink     Sink
	journal  Journal
	renderer render.Renderer
	settings Settings
	log      *pterm.Logger
	clock    func() time.Time

	running atomic.Bool
	mu      sync.Mutex
	last    *Report
}

func New(src Source, sink Sink, renderer render.Renderer, settings Settings, log *pterm.Logger) *Poller {
	return &Poller{
		src:      src,
		sink:     sink,
		renderer: renderer,
		settings: settings,
		log:      log,
		clock:    time.Now,
	}
}

// WithJournal attaches a cycle journal.
func (p *Poller) WithJournal(j Journal) *Poller {
	p.journal = j
	return p
}

func (p *Poller) Running() bool {
	return p.running.Load()
}

// Last returns the report of the most recently finished cycle.
func (p *Poller) Last() (Report, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.last == nil {
		return Report{}, false
	}
	return *p.last, true
}

// Tick runs a cycle starting at the current time.
func (p *Poller) Tick(ctx context.Context) (Report, error) {
	return p.RunCycle(ctx, p.clock())
}

// RunCycle performs one full poll at instant now. At most one cycle runs at
// a time; a concurrent call returns ErrCycleInProgress.
func (p *Poller) RunCycle(ctx context.Context, now time.Time) (Report, error) {
	if !p.running.CompareAndSwap(false, true) {
		return Report{}, ErrCycleInProgress
	}
	defer p.running.Store(false)

	w := window.New(now, p.settings.Interval)
	report := Report{
		ID:        uuid.NewString(),
		StartedAt: now,
		Boundary:  w.Boundary,
	}
	p.log.Debug("poll cycle started", p.log.Args("cycle", report.ID, "boundary", w.Boundary.Format(time.RFC3339)))
	p.journalStart(ctx, report)

	err := p.cycle(ctx, now, w, &report)
	if err != nil {
		report.Err = err.Error()
		p.log.Error("poll cycle skipped", p.log.Args("cycle", report.ID, "error", err))
	}
	report.FinishedAt = p.clock()

	p.journalFinish(ctx, report)
	p.mu.Lock()
	p.last = &report
	p.mu.Unlock()

	p.log.Info("poll cycle finished", p.log.Args(
		"cycle", report.ID,
		"projects", len(report.Projects),
		"issues", report.IssuesScanned,
		"messages", report.Messages,
		"delivered", report.Delivered,
		"failures", len(report.Failures),
	))
	return report, err
}

func (p *Poller) cycle(ctx context.Context, now time.Time, w window.Window, report *Report) error {
	projects, err := p.src.ListProjects(ctx)
	if err != nil {
		return fmt.Errorf("list projects: %w", err)
	}
	p.log.Debug("fetched projects", p.log.Args("count", len(projects)))

	interesting := p.projectsOfInterest(projects)
	if len(interesting) == 0 {
		p.log.Warn("none of the configured projects were found", p.log.Args("configured", strings.Join(p.settings.Projects, ", ")))
		return nil
	}

	// Fetch everything before dispatching so a failing project never leaves
	// the cycle half delivered.
	var issues []changes.Issue
	for _, project := range interesting {
		fetched, err := p.src.ListIssues(ctx, project, w.Boundary)
		if err != nil {
			return fmt.Errorf("list issues for %s: %w", project.Key, err)
		}
		fresh := w.Apply(fetched)
		p.log.Debug("fetched issues", p.log.Args("project", project.Name, "fetched", len(fetched), "fresh", len(fresh)))
		report.Projects = append(report.Projects, project.Name)
		issues = append(issues, fresh...)
	}
	report.IssuesScanned = len(issues)

	for _, issue := range issues {
		p.dispatch(ctx, issue, now, w, report)
	}
	return nil
}

func (p *Poller) projectsOfInterest(projects []changes.Project) []changes.Project {
	wanted := make(map[string]bool, len(p.settings.Projects))
	for _, name := range p.settings.Projects {
		wanted[name] = true
	}
	var out []changes.Project
	for _, project := range projects {
		if wanted[project.Name] {
			out = append(out, project)
		}
	}
	return out
}

func (p *Poller) dispatch(ctx context.Context, issue changes.Issue, now time.Time, w window.Window, report *Report) {
	if low := p.renderer.Text(issue, p.settings.Low, w, now); low != "" {
		p.log.Debug("low severity render", p.log.Args("issue", issue.Key, "text", low))
	}

	doc := p.renderer.Markup(issue, p.settings.High, w, now)
	text := doc.Text()
	if strings.TrimSpace(text) == "" {
		return
	}
	msg := Message{IssueKey: issue.Key, Text: text, Markup: doc}
	report.Messages++

	if len(p.settings.Destinations) == 0 {
		p.log.Warn("no destinations configured, dropping message", p.log.Args("issue", issue.Key))
		return
	}
	for _, dest := range p.settings.Destinations {
		if err := p.sink.Deliver(ctx, dest, msg); err != nil {
			report.Failures = append(report.Failures, Failure{Issue: issue.Key, Destination: dest, Err: err.Error()})
			p.log.Error("delivery failed", p.log.Args("issue", issue.Key, "destination", dest, "error", err))
			continue
		}
		report.Delivered++
		p.log.Debug("delivered", p.log.Args("issue", issue.Key, "destination", dest))
	}
}

func (p *Poller) journalStart(ctx context.Context, r Report) {
	if p.journal == nil {
		return
	}
	if err := p.journal.Start(ctx, r); err != nil {
		p.log.Warn("journal start failed", p.log.Args("cycle", r.ID, "error", err))
	}
}

func (p *Poller) journalFinish(ctx context.Context, r Report) {
	if p.journal == nil {
		return
	}
	if err := p.journal.Finish(ctx, r); err != nil {
		p.log.Warn("journal finish failed", p.log.Args("cycle", r.ID, "error", err))
	}
}

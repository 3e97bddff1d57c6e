// Package window decides what is new since the previous poll.
package window

import (
	"time"

	"jirabot/internal/changes"
)

// Window is the span (Boundary, now] covered by one poll cycle.
type Window struct {
	Boundary time.Time
}

// New returns the window for a cycle started at now with the given refresh interval.
func New(now time.Time, interval time.Duration) Window {
	return Window{Boundary: now.Add(-interval)}
}

// Contains reports whether t falls strictly after the boundary.
func (w Window) Contains(t time.Time) bool {
	return t.After(w.Boundary)
}

// FreshIssues keeps the issues updated after the boundary.
func (w Window) FreshIssues(issues []changes.Issue) []changes.Issue {
	out := make([]changes.Issue, 0, len(issues))
	for _, issue := range issues {
		if w.Contains(issue.Updated) {
			out = append(out, issue)
		}
	}
	return out
}

// Prune returns a copy of issue whose change log only holds entries created
// after the boundary.
func (w Window) Prune(issue changes.Issue) changes.Issue {
	kept := make([]changes.History, 0, len(issue.ChangeLog))
	for _, h := range issue.ChangeLog {
		if w.Contains(h.Created) {
			kept = append(kept, h)
		}
	}
	return issue.WithChangeLog(kept)
}

// Apply filters issues by freshness and prunes each survivor's change log.
func (w Window) Apply(issues []changes.Issue) []changes.Issue {
	fresh := w.FreshIssues(issues)
	for i := range fresh {
		fresh[i] = w.Prune(fresh[i])
	}
	return fresh
}

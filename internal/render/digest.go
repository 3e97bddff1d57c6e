// Package render turns a window-pruned issue into a chat message, either as
// plain text or as a markup document. Both forms are produced from the same
// Digest so they always agree on what is shown.
package render

import (
	"strings"
	"time"

	"jirabot/internal/changes"
	"jirabot/internal/markup"
	"jirabot/internal/window"
)

// CreatedSymbol trails the "created this issue" message.
const CreatedSymbol = ":facepalm:"

type Outcome int

const (
	// Nothing means there is nothing to send.
	Nothing Outcome = iota
	// Changes means at least one item passed the severity threshold.
	Changes
	// Created means no item qualified but the issue itself is new.
	Created
)

// Block is one history entry's qualifying items, attributed to its author.
type Block struct {
	Author    string
	Fragments []string
}

type Digest struct {
	Outcome Outcome
	Blocks  []Block
	Creator string
	Link    string
	Summary string
	Age     string
}

type Renderer struct {
	BaseURL string
}

func New(baseURL string) Renderer {
	return Renderer{BaseURL: strings.TrimRight(baseURL, "/")}
}

func (r Renderer) IssueLink(key string) string {
	return r.BaseURL + "/browse/" + key
}

// Digest groups the issue's history by author and keeps the items at or above
// threshold. When nothing qualifies, an issue created inside the window
// yields the Created outcome.
func (r Renderer) Digest(issue changes.Issue, threshold changes.Severity, w window.Window, now time.Time) Digest {
	var blocks []Block
	for _, group := range groupByAuthor(issue.ChangeLog) {
		for _, h := range group {
			var fragments []string
			for _, it := range h.Items {
				if it.Important(threshold) {
					fragments = append(fragments, changes.Describe(it))
				}
			}
			if len(fragments) > 0 {
				blocks = append(blocks, Block{Author: h.Author.DisplayName, Fragments: fragments})
			}
		}
	}

	d := Digest{
		Link:    r.IssueLink(issue.Key),
		Summary: issue.Summary,
	}
	switch {
	case len(blocks) > 0:
		d.Outcome = Changes
		d.Blocks = blocks
		d.Age = RelativeAge(issue.Updated, now)
	case w.Contains(issue.Created):
		d.Outcome = Created
		d.Creator = issue.Creator.DisplayName
		d.Age = RelativeAge(issue.Created, now)
	}
	return d
}

// Text renders the issue as a plain string; "" means nothing to send.
func (r Renderer) Text(issue changes.Issue, threshold changes.Severity, w window.Window, now time.Time) string {
	return PlainText(r.Digest(issue, threshold, w, now))
}

// Markup renders the issue as a markup document; an empty document means
// nothing to send.
func (r Renderer) Markup(issue changes.Issue, threshold changes.Severity, w window.Window, now time.Time) markup.Document {
	return Markup(r.Digest(issue, threshold, w, now))
}

// groupByAuthor buckets histories by author identity, keeping authors in
// order of first appearance.
func groupByAuthor(histories []changes.History) [][]changes.History {
	index := map[string]int{}
	var groups [][]changes.History
	for _, h := range histories {
		id := h.Author.Identity()
		i, ok := index[id]
		if !ok {
			i = len(groups)
			index[id] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], h)
	}
	return groups
}

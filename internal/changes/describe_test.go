package changes

import (
	"strings"
	"testing"
)

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		item Item
		want string
	}{
		{
			"status drops raw ids",
			NewItem("status", "jira", "1", "Open", "3", "In Progress"),
			"Set status from Open to In Progress :blush:. ",
		},
		{
			"reopened work",
			NewItem("status", "jira", "4", "Reopened", "3", "In Progress"),
			"Set status from Reopened to In Progress :sob: :facepalm:. ",
		},
		{
			"rank",
			NewItem("Rank", "custom", "", "", "", "Ranked higher"),
			"Issue Ranked higher :exclamation:. ",
		},
		{
			"project move keeps raw ids",
			NewItem("project", "jira", "100", "Core", "200", "Web"),
			"Moved from Core[100] to Web[200] :grin:. ",
		},
		{
			"assignee prefers labels",
			NewItem("assignee", "jira", "alice", "Alice A", "bob", "Bob B"),
			"Assigned to Bob B from Alice A :grin:. ",
		},
		{
			"assignee falls back to raw",
			NewItem("assignee", "jira", "alice", "null", "bob", ""),
			"Assigned to bob from alice :grin:. ",
		},
		{
			"key prefers raw",
			NewItem("Key", "jira", "OLD-1", "old label", "NEW-1", "new label"),
			"Added key to NEW-1 from OLD-1 :grin:. ",
		},
		{
			"labels",
			NewItem("labels", "jira", "", "", "", "backend"),
			"Added label backend :grin:. ",
		},
		{
			"version with raw",
			NewItem("Version", "jira", "", "", "10001", "1.2.0"),
			"made changes to 1.2.0[10001] :grin:. ",
		},
		{
			"version both sides",
			NewItem("Version", "jira", "1.1.0", "1.1.0", "10001", "1.2.0"),
			"made changes to 1.1.0 1.2.0[10001] :grin:. ",
		},
		{
			"generic field only destination",
			NewItem("Fix Version", "jira", "", "", "", "2.0"),
			"Fix Version 2.0 :grin:. ",
		},
		{
			"generic field no values",
			NewItem("description", "jira", "", "null", "", ""),
			"description :grin:. ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Describe(tt.item); got != tt.want {
				t.Errorf("Describe() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDescribeRankPrefix(t *testing.T) {
	it := NewItem("rank", "custom", "", "", "", "issue ranked higher")
	if it.Severity() != High || it.Sentiment() != Bad || it.Override() != Exclamation {
		t.Fatalf("rank classification = %+v", it.Classification())
	}
	if got := Describe(it); !strings.HasPrefix(got, "Issue ") {
		t.Errorf("Describe() = %q, want prefix %q", got, "Issue ")
	}
}

func TestValidText(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"", false},
		{"null", false},
		{"NULL", false},
		{"Null ", true},
		{"x", true},
	}
	for _, tt := range tests {
		if got := ValidText(tt.in); got != tt.want {
			t.Errorf("ValidText(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestWithChangeLogCopies(t *testing.T) {
	h := []History{{ID: "1"}, {ID: "2"}}
	issue := Issue{Key: "A-1", ChangeLog: h}

	pruned := issue.WithChangeLog(h[:1])
	if len(issue.ChangeLog) != 2 {
		t.Fatalf("original change log mutated: %d entries", len(issue.ChangeLog))
	}
	if len(pruned.ChangeLog) != 1 || pruned.ChangeLog[0].ID != "1" {
		t.Fatalf("pruned change log = %+v", pruned.ChangeLog)
	}
	pruned.ChangeLog[0].ID = "changed"
	if h[0].ID != "1" {
		t.Error("pruned change log aliases the source slice")
	}
}

func TestUserIdentity(t *testing.T) {
	tests := []struct {
		user User
		want string
	}{
		{User{Email: "Alice@Example.com", DisplayName: "Alice"}, "alice@example.com"},
		{User{Name: "bob", DisplayName: "Bob"}, "bob"},
		{User{DisplayName: "Automation for Jira"}, "Automation for Jira"},
	}
	for _, tt := range tests {
		if got := tt.user.Identity(); got != tt.want {
			t.Errorf("Identity(%+v) = %q, want %q", tt.user, got, tt.want)
		}
	}
	if !(User{DisplayName: "bot"}).Synthetic() {
		t.Error("display-name-only user should be synthetic")
	}
}

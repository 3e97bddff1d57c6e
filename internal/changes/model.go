// Package changes holds the issue tracker data model and the rules that classify
// each change-log item by severity and sentiment.
package changes

import (
	"slices"
	"strings"
	"time"
)

type Project struct {
	Name string
	Key  string
}

// User is an issue tracker account. Machine-generated history entries carry a
// synthetic user with a display name and no email address.
type User struct {
	Name        string
	Email       string
	DisplayName string
}

// Identity is the key used to group history entries by author.
func (u User) Identity() string {
	if u.Email != "" {
		return strings.ToLower(u.Email)
	}
	if u.Name != "" {
		return u.Name
	}
	return u.DisplayName
}

func (u User) Synthetic() bool {
	return u.Email == "" && u.Name == ""
}

type Issue struct {
	ID        string
	Key       string
	Created   time.Time
	Updated   time.Time
	Summary   string
	Status    string
	Priority  string
	Assignee  *User
	Creator   User
	Reporter  User
	ChangeLog []History
}

// WithChangeLog returns a copy of the issue whose change log is replaced by
// histories. The receiver is left untouched.
func (i Issue) WithChangeLog(histories []History) Issue {
	i.ChangeLog = slices.Clone(histories)
	return i
}

// History is one change-log entry: a set of field changes made by one author
// at one instant.
type History struct {
	ID      string
	Created time.Time
	Author  User
	Items   []Item
}

// Item is a single field change. Its classification is computed once by
// NewItem and never re-evaluated.
type Item struct {
	Field     string
	FieldType string
	From      string
	FromLabel string
	To        string
	ToLabel   string

	class Classification
}

func NewItem(field, fieldType, from, fromLabel, to, toLabel string) Item {
	return Item{
		Field:     field,
		FieldType: fieldType,
		From:      from,
		FromLabel: fromLabel,
		To:        to,
		ToLabel:   toLabel,
		class:     Classify(field, fromLabel, toLabel),
	}
}

func (it Item) Severity() Severity { return it.class.Severity }

func (it Item) Sentiment() Sentiment { return it.class.Sentiment }

func (it Item) Override() Override { return it.class.Override }

func (it Item) Classification() Classification { return it.class }

// Symbol resolves the emoji shown next to the item.
func (it Item) Symbol() string { return it.class.Symbol() }

// Important reports whether the item passes the severity threshold.
func (it Item) Important(threshold Severity) bool {
	return it.class.Severity.AtLeast(threshold)
}

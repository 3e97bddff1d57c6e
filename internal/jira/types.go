package jira

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"jirabot/internal/changes"

	"github.com/pterm/pterm"
)

// TimeLayout is the timestamp format of the REST v2 API.
const TimeLayout = "2006-01-02T15:04:05.000-0700"

type projectResponse struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
}

type searchResponse struct {
	StartAt    int               `json:"startAt"`
	MaxResults int               `json:"maxResults"`
	Total      int               `json:"total"`
	Issues     []json.RawMessage `json:"issues"`
}

type searchIssue struct {
	ID        string        `json:"id"`
	Key       string        `json:"key"`
	Fields    *issueFields  `json:"fields"`
	Changelog *changelogDTO `json:"changelog"`
}

type issueFields struct {
	Summary  string     `json:"summary"`
	Created  string     `json:"created"`
	Updated  string     `json:"updated"`
	Status   *namedItem `json:"status"`
	Priority *namedItem `json:"priority"`
	Assignee *userDTO   `json:"assignee"`
	Creator  *userDTO   `json:"creator"`
	Reporter *userDTO   `json:"reporter"`
}

type namedItem struct {
	Name string `json:"name"`
}

type userDTO struct {
	AccountID    string `json:"accountId"`
	Name         string `json:"name"`
	EmailAddress string `json:"emailAddress"`
	DisplayName  string `json:"displayName"`
}

type changelogDTO struct {
	StartAt    int               `json:"startAt"`
	MaxResults int               `json:"maxResults"`
	Total      int               `json:"total"`
	Histories  []json.RawMessage `json:"histories"`
}

type historyDTO struct {
	ID              string            `json:"id"`
	Created         string            `json:"created"`
	Author          *userDTO          `json:"author"`
	HistoryMetadata *historyMetadata  `json:"historyMetadata"`
	Items           []json.RawMessage `json:"items"`
}

// historyMetadata is attached to entries written by automation instead of an
// author.
type historyMetadata struct {
	EmailDescription string `json:"emailDescription"`
	Actor            *struct {
		DisplayName string `json:"displayName"`
	} `json:"actor"`
}

type itemDTO struct {
	Field      string `json:"field"`
	FieldType  string `json:"fieldtype"`
	From       string `json:"from"`
	FromString string `json:"fromString"`
	To         string `json:"to"`
	ToString   string `json:"toString"`
}

type myselfResponse struct {
	AccountID    string `json:"accountId"`
	Name         string `json:"name"`
	EmailAddress string `json:"emailAddress"`
	DisplayName  string `json:"displayName"`
}

var errMalformed = errors.New("malformed issue")

func (u *userDTO) toUser() changes.User {
	if u == nil {
		return changes.User{}
	}
	return changes.User{Name: u.Name, Email: u.EmailAddress, DisplayName: u.DisplayName}
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(TimeLayout, s)
}

// decodeIssue converts one search result into the domain model. Histories
// and items that cannot be decoded are logged and dropped; the issue itself
// is rejected only when its key, fields or timestamps are unusable.
func decodeIssue(raw json.RawMessage, log *pterm.Logger) (changes.Issue, error) {
	var si searchIssue
	if err := json.Unmarshal(raw, &si); err != nil {
		return changes.Issue{}, fmt.Errorf("%w: %v", errMalformed, err)
	}
	if si.Key == "" || si.Fields == nil {
		return changes.Issue{}, fmt.Errorf("%w: missing key or fields", errMalformed)
	}
	created, err := parseTime(si.Fields.Created)
	if err != nil {
		return changes.Issue{}, fmt.Errorf("%w: %s created: %v", errMalformed, si.Key, err)
	}
	updated, err := parseTime(si.Fields.Updated)
	if err != nil {
		return changes.Issue{}, fmt.Errorf("%w: %s updated: %v", errMalformed, si.Key, err)
	}

	issue := changes.Issue{
		ID:       si.ID,
		Key:      si.Key,
		Created:  created,
		Updated:  updated,
		Summary:  si.Fields.Summary,
		Creator:  si.Fields.Creator.toUser(),
		Reporter: si.Fields.Reporter.toUser(),
	}
	if si.Fields.Status != nil {
		issue.Status = si.Fields.Status.Name
	}
	if si.Fields.Priority != nil {
		issue.Priority = si.Fields.Priority.Name
	}
	if si.Fields.Assignee != nil {
		assignee := si.Fields.Assignee.toUser()
		issue.Assignee = &assignee
	}

	if si.Changelog == nil {
		return issue, nil
	}
	for _, rawHistory := range si.Changelog.Histories {
		h, err := decodeHistory(rawHistory, log)
		if err != nil {
			log.Warn("skipping history entry", log.Args("issue", si.Key, "error", err))
			continue
		}
		issue.ChangeLog = append(issue.ChangeLog, h)
	}
	return issue, nil
}

// UnknownAuthor names the actor of a history entry that carries neither an
// author nor history metadata.
const UnknownAuthor = "Jira"

func decodeHistory(raw json.RawMessage, log *pterm.Logger) (changes.History, error) {
	var hd historyDTO
	if err := json.Unmarshal(raw, &hd); err != nil {
		return changes.History{}, err
	}
	created, err := parseTime(hd.Created)
	if err != nil {
		return changes.History{}, fmt.Errorf("history %s created: %w", hd.ID, err)
	}

	h := changes.History{ID: hd.ID, Created: created}
	switch {
	case hd.Author != nil:
		h.Author = hd.Author.toUser()
	case hd.HistoryMetadata != nil:
		name := hd.HistoryMetadata.EmailDescription
		if name == "" && hd.HistoryMetadata.Actor != nil {
			name = hd.HistoryMetadata.Actor.DisplayName
		}
		h.Author = changes.User{DisplayName: name}
	default:
		log.Warn("history without author", log.Args("history", hd.ID))
		h.Author = changes.User{DisplayName: UnknownAuthor}
	}

	for _, rawItem := range hd.Items {
		var it itemDTO
		if err := json.Unmarshal(rawItem, &it); err != nil || it.Field == "" {
			log.Warn("skipping change item", log.Args("history", hd.ID, "error", itemError(err)))
			continue
		}
		h.Items = append(h.Items, changes.NewItem(it.Field, it.FieldType, it.From, it.FromString, it.To, it.ToString))
	}
	return h, nil
}

func itemError(err error) string {
	if err != nil {
		return err.Error()
	}
	return "missing field"
}

// Package jira reads projects and recently updated issues, with their change
// logs, from the Jira REST v2 API.
package jira

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"jirabot/internal/changes"

	"github.com/pterm/pterm"
)

type Client struct {
	baseURL     string
	email       string
	apiToken    string
	maxProjects int
	maxIssues   int
	http        *http.Client
	log         *pterm.Logger
}

// NewClient authenticates with HTTP basic auth when email is set and with a
// bearer token otherwise.
func NewClient(baseURL, email, apiToken string, maxProjects, maxIssues int, log *pterm.Logger) *Client {
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		email:       email,
		apiToken:    apiToken,
		maxProjects: maxProjects,
		maxIssues:   maxIssues,
		http:        &http.Client{Timeout: 60 * time.Second},
		log:         log,
	}
}

// ListProjects returns every project visible to the configured account.
func (c *Client) ListProjects(ctx context.Context) ([]changes.Project, error) {
	q := url.Values{}
	q.Set("expand", "description,url,projectKeys")
	q.Set("maxResults", strconv.Itoa(c.maxProjects))

	var resp []projectResponse
	if err := c.get(ctx, "/rest/api/2/project", q, &resp); err != nil {
		return nil, err
	}

	projects := make([]changes.Project, 0, len(resp))
	for _, p := range resp {
		projects = append(projects, changes.Project{Name: p.Name, Key: p.Key})
	}
	return projects, nil
}

// ListIssues returns the project's issues updated after updatedAfter, newest
// first, with their change logs expanded.
func (c *Client) ListIssues(ctx context.Context, project changes.Project, updatedAfter time.Time) ([]changes.Issue, error) {
	jql := fmt.Sprintf(`project="%s" AND updatedDate > %d ORDER BY updated DESC`, project.Key, updatedAfter.UnixMilli())

	q := url.Values{}
	q.Set("jql", jql)
	q.Set("expand", "changelog")
	q.Set("maxResults", strconv.Itoa(c.maxIssues))

	var sr searchResponse
	if err := c.get(ctx, "/rest/api/2/search", q, &sr); err != nil {
		return nil, err
	}

	issues := make([]changes.Issue, 0, len(sr.Issues))
	for _, raw := range sr.Issues {
		issue, err := decodeIssue(raw, c.log)
		if err != nil {
			c.log.Warn("skipping issue", c.log.Args("project", project.Key, "error", err))
			continue
		}
		issues = append(issues, issue)
	}
	return issues, nil
}

// Myself returns the authenticated account. It doubles as a credentials check.
func (c *Client) Myself(ctx context.Context) (changes.User, error) {
	var me myselfResponse
	if err := c.get(ctx, "/rest/api/2/myself", nil, &me); err != nil {
		return changes.User{}, err
	}
	return changes.User{Name: me.Name, Email: me.EmailAddress, DisplayName: me.DisplayName}, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("parse URL: %w", err)
	}
	if query != nil {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("jira request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("jira returned %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.email != "" {
		req.SetBasicAuth(c.email, c.apiToken)
		return
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
}

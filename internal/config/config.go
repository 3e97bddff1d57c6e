package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"jirabot/internal/changes"
	"jirabot/internal/sink"
	"jirabot/internal/timeparse"

	"github.com/charmbracelet/huh"
)

const (
	DefaultRefreshInterval     = "10m"
	DefaultMaxProjects         = 1000
	DefaultMaxIssuesPerProject = 500
	DefaultLogLevel            = "info"
	DefaultLogFormat           = "text"
)

var ErrNotFound = errors.New("config file not found")

type Config struct {
	JiraURL                 string   `json:"jira_url"`
	JiraEmail               string   `json:"jira_email"`
	JiraAPIToken            string   `json:"jira_api_token"`
	RefreshInterval         string   `json:"refresh_interval"`
	Projects                []string `json:"projects"`
	Destinations            []string `json:"destinations"`
	LowSeverity             string   `json:"low_severity"`
	HighSeverity            string   `json:"high_severity"`
	MaxProjects             int      `json:"max_projects"`
	MaxIssuesPerProject     int      `json:"max_issues_per_project"`
	SymphonyURL             string   `json:"symphony_url,omitempty"`
	SymphonySessionToken    string   `json:"symphony_session_token,omitempty"`
	SymphonyKeyManagerToken string   `json:"symphony_key_manager_token,omitempty"`
	TelegramToken           string   `json:"telegram_token,omitempty"`
	JournalDSN              string   `json:"journal_dsn,omitempty"`
	StatusAddr              string   `json:"status_addr,omitempty"`
	LogLevel                string   `json:"log_level"`
	LogFormat               string   `json:"log_format"`
}

func SeverityOptions() []huh.Option[string] {
	return []huh.Option[string]{
		huh.NewOption("Low (everything)", "low"),
		huh.NewOption("Medium (assignments, versions, links)", "medium"),
		huh.NewOption("High (status moves and rank raises)", "high"),
	}
}

func configDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".jirabot")
}

// Path is the config file location, overridable with JIRABOT_CONFIG.
func Path() string {
	if p := os.Getenv("JIRABOT_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(configDir(), "config.json")
}

func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}

// ApplyDefaults fills every unset optional field.
func (c *Config) ApplyDefaults() {
	c.JiraURL = strings.TrimRight(c.JiraURL, "/")
	c.SymphonyURL = strings.TrimRight(c.SymphonyURL, "/")
	if c.RefreshInterval == "" {
		c.RefreshInterval = DefaultRefreshInterval
	}
	if c.LowSeverity == "" {
		c.LowSeverity = changes.Low.String()
	}
	if c.HighSeverity == "" {
		c.HighSeverity = changes.High.String()
	}
	if c.MaxProjects <= 0 {
		c.MaxProjects = DefaultMaxProjects
	}
	if c.MaxIssuesPerProject <= 0 {
		c.MaxIssuesPerProject = DefaultMaxIssuesPerProject
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = DefaultLogFormat
	}
}

func LoadFromFile() (*Config, error) {
	data, err := os.ReadFile(Path())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// Load reads the config file when present, then applies JIRABOT_* environment
// overrides and defaults. A missing file is not an error as long as the
// environment provides the rest.
func Load() (*Config, error) {
	cfg, err := LoadFromFile()
	switch {
	case errors.Is(err, ErrNotFound):
		cfg = &Config{}
	case err != nil:
		return nil, err
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"JIRABOT_JIRA_URL":                   &c.JiraURL,
		"JIRABOT_JIRA_EMAIL":                 &c.JiraEmail,
		"JIRABOT_JIRA_API_TOKEN":             &c.JiraAPIToken,
		"JIRABOT_REFRESH_INTERVAL":           &c.RefreshInterval,
		"JIRABOT_LOW_SEVERITY":               &c.LowSeverity,
		"JIRABOT_HIGH_SEVERITY":              &c.HighSeverity,
		"JIRABOT_SYMPHONY_URL":               &c.SymphonyURL,
		"JIRABOT_SYMPHONY_SESSION_TOKEN":     &c.SymphonySessionToken,
		"JIRABOT_SYMPHONY_KEY_MANAGER_TOKEN": &c.SymphonyKeyManagerToken,
		"JIRABOT_TELEGRAM_TOKEN":             &c.TelegramToken,
		"JIRABOT_JOURNAL_DSN":                &c.JournalDSN,
		"JIRABOT_STATUS_ADDR":                &c.StatusAddr,
		"JIRABOT_LOG_LEVEL":                  &c.LogLevel,
		"JIRABOT_LOG_FORMAT":                 &c.LogFormat,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}

	lists := map[string]*[]string{
		"JIRABOT_PROJECTS":     &c.Projects,
		"JIRABOT_DESTINATIONS": &c.Destinations,
	}
	for key, dst := range lists {
		if v, ok := lookup(key); ok {
			*dst = SplitList(v)
		}
	}

	ints := map[string]*int{
		"JIRABOT_MAX_PROJECTS":           &c.MaxProjects,
		"JIRABOT_MAX_ISSUES_PER_PROJECT": &c.MaxIssuesPerProject,
	}
	for key, dst := range ints {
		v, ok := lookup(key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
	}
	return nil
}

// SplitList splits a comma separated list, dropping blank entries.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *Config) Interval() (time.Duration, error) {
	return timeparse.Duration(c.RefreshInterval)
}

// Thresholds returns the parsed low and high severity thresholds.
func (c *Config) Thresholds() (low, high changes.Severity, err error) {
	if low, err = changes.ParseSeverity(c.LowSeverity); err != nil {
		return 0, 0, fmt.Errorf("low_severity: %w", err)
	}
	if high, err = changes.ParseSeverity(c.HighSeverity); err != nil {
		return 0, 0, fmt.Errorf("high_severity: %w", err)
	}
	return low, high, nil
}

func (c *Config) Validate() error {
	if c.JiraURL == "" {
		return errors.New("jira_url is required")
	}
	if !strings.HasPrefix(c.JiraURL, "http://") && !strings.HasPrefix(c.JiraURL, "https://") {
		return errors.New("jira_url must start with http:// or https://")
	}
	interval, err := c.Interval()
	if err != nil {
		return fmt.Errorf("refresh_interval: %w", err)
	}
	if interval <= 0 {
		return errors.New("refresh_interval must be positive")
	}
	if len(c.Projects) == 0 {
		return errors.New("at least one project is required")
	}
	low, high, err := c.Thresholds()
	if err != nil {
		return err
	}
	if !high.AtLeast(low) {
		return fmt.Errorf("low_severity %s is above high_severity %s", low, high)
	}
	for _, d := range c.Destinations {
		dest, err := sink.ParseDestination(d)
		if err != nil {
			return err
		}
		switch dest.Scheme {
		case sink.Symphony:
			if c.SymphonyURL == "" {
				return fmt.Errorf("destination %s needs symphony_url", d)
			}
		case sink.Telegram:
			if c.TelegramToken == "" {
				return fmt.Errorf("destination %s needs telegram_token", d)
			}
		}
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log_format must be text or json, got %q", c.LogFormat)
	}
	return nil
}

func Save(cfg *Config) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

func RunSetup() (*Config, error) {
	var existing Config
	if cfg, err := LoadFromFile(); err == nil {
		existing = *cfg
	}
	existing.ApplyDefaults()

	cfg := existing
	projects := strings.Join(cfg.Projects, ", ")
	destinations := strings.Join(cfg.Destinations, ", ")

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Jira URL").
				Placeholder("https://your-org.atlassian.net").
				Value(&cfg.JiraURL).
				Validate(func(s string) error {
					if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
						return fmt.Errorf("URL must start with http:// or https://")
					}
					return nil
				}),
			huh.NewInput().
				Title("Jira Email").
				Description("Leave empty to authenticate with a bearer token").
				Placeholder("you@company.com").
				Value(&cfg.JiraEmail),
			huh.NewInput().
				Title("Jira API Token").
				EchoMode(huh.EchoModePassword).
				Value(&cfg.JiraAPIToken),
		).Title("Jira Connection"),

		huh.NewGroup(
			huh.NewInput().
				Title("Projects").
				Description("Comma separated project names").
				Value(&projects).
				Validate(func(s string) error {
					if len(SplitList(s)) == 0 {
						return fmt.Errorf("at least one project is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Refresh interval").
				Placeholder("10m").
				Value(&cfg.RefreshInterval).
				Validate(func(s string) error {
					secs, err := timeparse.Parse(s)
					if err != nil {
						return err
					}
					if secs <= 0 {
						return fmt.Errorf("interval must be positive")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Severity for chat messages").
				Options(SeverityOptions()...).
				Value(&cfg.HighSeverity),
			huh.NewSelect[string]().
				Title("Severity for debug logs").
				Options(SeverityOptions()...).
				Value(&cfg.LowSeverity),
		).Title("Polling"),

		huh.NewGroup(
			huh.NewInput().
				Title("Destinations").
				Description("Comma separated: symphony:<stream>, telegram:<chat>, console").
				Value(&destinations).
				Validate(func(s string) error {
					for _, d := range SplitList(s) {
						if _, err := sink.ParseDestination(d); err != nil {
							return err
						}
					}
					return nil
				}),
			huh.NewInput().
				Title("Symphony URL").
				Placeholder("https://your-pod.symphony.com").
				Value(&cfg.SymphonyURL),
			huh.NewInput().
				Title("Symphony session token").
				EchoMode(huh.EchoModePassword).
				Value(&cfg.SymphonySessionToken),
			huh.NewInput().
				Title("Symphony key manager token").
				EchoMode(huh.EchoModePassword).
				Value(&cfg.SymphonyKeyManagerToken),
			huh.NewInput().
				Title("Telegram bot token").
				EchoMode(huh.EchoModePassword).
				Value(&cfg.TelegramToken),
		).Title("Destinations"),

		huh.NewGroup(
			huh.NewInput().
				Title("Journal").
				Description("postgres:// URL or SQLite file path, empty to disable").
				Value(&cfg.JournalDSN),
			huh.NewInput().
				Title("Status address").
				Placeholder(":8080").
				Description("Empty to disable the HTTP status server").
				Value(&cfg.StatusAddr),
		).Title("Operations"),
	)

	if err := form.Run(); err != nil {
		return nil, err
	}

	cfg.Projects = SplitList(projects)
	cfg.Destinations = SplitList(destinations)
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := Save(&cfg); err != nil {
		return nil, fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Printf("\nConfig saved to %s\n", Path())
	return &cfg, nil
}

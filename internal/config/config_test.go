package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"jirabot/internal/changes"
)

func validConfig() Config {
	cfg := Config{
		JiraURL:      "https://jira.example.com",
		JiraAPIToken: "token",
		Projects:     []string{"Core"},
		Destinations: []string{"console"},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{JiraURL: "https://jira.example.com/"}
	cfg.ApplyDefaults()

	if cfg.JiraURL != "https://jira.example.com" {
		t.Errorf("JiraURL = %q, want trailing slash trimmed", cfg.JiraURL)
	}
	if cfg.RefreshInterval != "10m" || cfg.MaxProjects != 1000 || cfg.MaxIssuesPerProject != 500 {
		t.Errorf("defaults = %+v", cfg)
	}
	low, high, err := cfg.Thresholds()
	if err != nil || low != changes.Low || high != changes.High {
		t.Errorf("Thresholds() = %v, %v, %v", low, high, err)
	}
	if d, err := cfg.Interval(); err != nil || d != 10*time.Minute {
		t.Errorf("Interval() = %v, %v", d, err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing url", func(c *Config) { c.JiraURL = "" }, "jira_url is required"},
		{"bad scheme", func(c *Config) { c.JiraURL = "jira.example.com" }, "http://"},
		{"zero interval", func(c *Config) { c.RefreshInterval = "0" }, "positive"},
		{"bad interval", func(c *Config) { c.RefreshInterval = "soon" }, "refresh_interval"},
		{"no projects", func(c *Config) { c.Projects = nil }, "project"},
		{"bad severity", func(c *Config) { c.HighSeverity = "critical" }, "high_severity"},
		{"inverted thresholds", func(c *Config) { c.LowSeverity = "high"; c.HighSeverity = "medium" }, "above"},
		{"unknown destination", func(c *Config) { c.Destinations = []string{"slack:x"} }, "unknown destination"},
		{"symphony without url", func(c *Config) { c.Destinations = []string{"symphony:room"} }, "symphony_url"},
		{"telegram without token", func(c *Config) { c.Destinations = []string{"telegram:1"} }, "telegram_token"},
		{"telegram with token", func(c *Config) {
			c.Destinations = []string{"telegram:1"}
			c.TelegramToken = "t"
		}, ""},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, "log_format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"JIRABOT_JIRA_URL":               "https://env.example.com",
		"JIRABOT_PROJECTS":               " Core , Web ,,",
		"JIRABOT_DESTINATIONS":           "console",
		"JIRABOT_MAX_ISSUES_PER_PROJECT": "50",
	}
	cfg := Config{JiraURL: "https://file.example.com", Projects: []string{"Old"}}
	err := cfg.applyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	if err != nil {
		t.Fatalf("applyEnv() error: %v", err)
	}
	if cfg.JiraURL != "https://env.example.com" {
		t.Errorf("JiraURL = %q", cfg.JiraURL)
	}
	if strings.Join(cfg.Projects, "|") != "Core|Web" {
		t.Errorf("Projects = %v", cfg.Projects)
	}
	if cfg.MaxIssuesPerProject != 50 {
		t.Errorf("MaxIssuesPerProject = %d", cfg.MaxIssuesPerProject)
	}

	bad := Config{}
	if err := bad.applyEnv(func(k string) (string, bool) {
		return "many", k == "JIRABOT_MAX_PROJECTS"
	}); err == nil {
		t.Error("applyEnv() should reject a non-numeric max_projects")
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	t.Setenv("JIRABOT_CONFIG", path)
	t.Setenv("JIRABOT_LOG_LEVEL", "debug")

	if _, err := LoadFromFile(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("LoadFromFile() error = %v, want ErrNotFound", err)
	}
	if Exists() {
		t.Fatal("Exists() = true before Save")
	}

	cfg := validConfig()
	cfg.Projects = []string{"Core", "Web"}
	if err := Save(&cfg); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("config mode = %v, want 0600", info.Mode().Perm())
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if loaded.JiraURL != cfg.JiraURL || len(loaded.Projects) != 2 {
		t.Errorf("Load() = %+v", loaded)
	}
	if loaded.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want env override", loaded.LogLevel)
	}
}

func TestLoadFromEnvOnly(t *testing.T) {
	t.Setenv("JIRABOT_CONFIG", filepath.Join(t.TempDir(), "missing.json"))
	t.Setenv("JIRABOT_JIRA_URL", "https://jira.example.com")
	t.Setenv("JIRABOT_PROJECTS", "Core")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"a", "a"},
		{" a, b ,c ", "a|b|c"},
		{",,", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := strings.Join(SplitList(tt.in), "|"); got != tt.want {
				t.Errorf("SplitList(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

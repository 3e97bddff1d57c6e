package ui

import (
	"fmt"
	"strings"
	"time"

	"jirabot/internal/config"
	"jirabot/internal/poller"

	"github.com/pterm/pterm"
)

func PrintWelcome(version string) {
	pterm.DefaultHeader.WithBackgroundStyle(pterm.NewStyle(pterm.BgCyan)).
		WithTextStyle(pterm.NewStyle(pterm.FgBlack, pterm.Bold)).
		Println("Jira Bot")
	pterm.Println(pterm.Gray("Posts Jira issue changes to chat rooms · " + version))
	pterm.Println()
}

// SettingsTable lists the effective configuration with secrets masked.
func SettingsTable(cfg *config.Config) pterm.TableData {
	tableData := pterm.TableData{
		{"Setting", "Value"},
		{"Jira URL", cfg.JiraURL},
		{"Jira auth", authMode(cfg)},
		{"Projects", strings.Join(cfg.Projects, ", ")},
		{"Destinations", orNone(strings.Join(cfg.Destinations, ", "))},
		{"Refresh interval", cfg.RefreshInterval},
		{"Severity (chat / debug)", cfg.HighSeverity + " / " + cfg.LowSeverity},
		{"Journal", orNone(maskDSN(cfg.JournalDSN))},
		{"Status server", orNone(cfg.StatusAddr)},
	}
	return tableData
}

func PrintSettings(cfg *config.Config) {
	pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(SettingsTable(cfg)).Render()
	pterm.Println()
}

func ReportTable(r poller.Report) pterm.TableData {
	status := pterm.FgGreen.Sprint("OK")
	if !r.Success() {
		status = pterm.FgRed.Sprint(r.Err)
	}
	tableData := pterm.TableData{
		{"Cycle", "Window start", "Projects", "Issues", "Messages", "Delivered", "Status"},
		{
			r.ID,
			r.Boundary.Local().Format(time.DateTime),
			fmt.Sprintf("%d", len(r.Projects)),
			fmt.Sprintf("%d", r.IssuesScanned),
			fmt.Sprintf("%d", r.Messages),
			fmt.Sprintf("%d", r.Delivered),
			status,
		},
	}
	return tableData
}

func PrintReport(r poller.Report) {
	pterm.Println()
	pterm.DefaultSection.WithStyle(pterm.NewStyle(pterm.FgCyan, pterm.Bold)).Println("Cycle report")
	pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(ReportTable(r)).Render()

	if len(r.Failures) > 0 {
		failures := pterm.TableData{{"Issue", "Destination", "Error"}}
		for _, f := range r.Failures {
			failures = append(failures, []string{pterm.FgCyan.Sprint(f.Issue), f.Destination, pterm.FgRed.Sprint(f.Err)})
		}
		pterm.Println()
		pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(failures).Render()
	}
	pterm.Println()
}

func PrintFarewell() {
	pterm.Println()
	pterm.Println(pterm.Gray("Stopped. Bye!"))
	pterm.Println()
}

func PrintError(msg string) {
	pterm.Error.Println(msg)
}

func PrintStatus(msg string) {
	pterm.Println(pterm.Gray(msg))
}

func authMode(cfg *config.Config) string {
	if cfg.JiraEmail != "" {
		return "basic (" + cfg.JiraEmail + ")"
	}
	return "bearer token"
}

func orNone(s string) string {
	if s == "" {
		return pterm.Gray("none")
	}
	return s
}

// maskDSN hides the password of a postgres URL.
func maskDSN(dsn string) string {
	scheme, rest, ok := strings.Cut(dsn, "://")
	if !ok {
		return dsn
	}
	creds, host, ok := strings.Cut(rest, "@")
	if !ok {
		return dsn
	}
	if user, _, hasPass := strings.Cut(creds, ":"); hasPass {
		creds = user + ":***"
	}
	return scheme + "://" + creds + "@" + host
}

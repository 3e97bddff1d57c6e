package ui

import (
	"slices"
	"strings"

	"github.com/pterm/pterm"
)

type Command struct {
	Name string
	Args []string
}

type CommandDef struct {
	Name        string
	Description string
}

const DefaultCommand = "run"

var AvailableCommands = []CommandDef{
	{Name: "run", Description: "Poll Jira on the refresh interval and post changes (default)"},
	{Name: "once", Description: "Run a single poll cycle and print its report"},
	{Name: "config", Description: "Open the interactive setup"},
	{Name: "help", Description: "Show this list of commands"},
	{Name: "version", Description: "Print the version"},
}

func CommandNames() []string {
	names := make([]string, len(AvailableCommands))
	for i, cmd := range AvailableCommands {
		names[i] = cmd.Name
	}
	return names
}

// ParseCommand reads the subcommand from the program arguments. No
// arguments selects the default command; an unknown name reports false.
func ParseCommand(args []string) (Command, bool) {
	if len(args) == 0 {
		return Command{Name: DefaultCommand}, true
	}
	name := strings.ToLower(strings.TrimSpace(args[0]))
	name = strings.TrimLeft(name, "-")
	if name == "h" {
		name = "help"
	}
	if !slices.Contains(CommandNames(), name) {
		return Command{Name: name}, false
	}
	return Command{Name: name, Args: args[1:]}, true
}

func PrintCommands() {
	pterm.Println(pterm.Gray("Usage: jirabot [command]"))
	pterm.Println()
	pterm.Println(pterm.Gray("Commands:"))
	for _, cmd := range AvailableCommands {
		pterm.Println(pterm.Cyan("  "+cmd.Name) + pterm.Gray("  "+cmd.Description))
	}
	pterm.Println()
}

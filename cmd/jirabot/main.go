package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"jirabot/internal/bot"
	"jirabot/internal/config"
	"jirabot/internal/ui"
)

var Version = "dev"

func main() {
	cmd, ok := ui.ParseCommand(os.Args[1:])
	if !ok {
		ui.PrintError("unknown command: " + cmd.Name)
		ui.PrintCommands()
		os.Exit(2)
	}

	switch cmd.Name {
	case "version":
		fmt.Println("jirabot version", Version)
		return
	case "help":
		ui.PrintCommands()
		return
	case "config":
		if _, err := config.RunSetup(); err != nil {
			ui.PrintError(err.Error())
			os.Exit(1)
		}
		return
	}

	cfg, err := loadConfig()
	if err != nil {
		ui.PrintError(err.Error())
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cmd.Name, cfg); err != nil {
		ui.PrintError(err.Error())
		os.Exit(1)
	}
}

// loadConfig reads file and environment, falling back to the interactive
// setup on first run from a terminal.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Validate() == nil || config.Exists() || !interactive() {
		return cfg, nil
	}
	fmt.Println("No configuration found. Let's set it up!")
	fmt.Println()
	return config.RunSetup()
}

func interactive() bool {
	info, err := os.Stdin.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

func run(ctx context.Context, name string, cfg *config.Config) error {
	ui.PrintWelcome(Version)
	ui.PrintSettings(cfg)

	log := bot.NewLogger(cfg)
	runner, err := bot.NewRunner(ctx, cfg, log, os.Stdout)
	if err != nil {
		return err
	}
	defer runner.Close()

	if err := runner.Check(ctx); err != nil {
		return err
	}

	if name == "once" {
		report, err := runner.Once(ctx)
		ui.PrintReport(report)
		return err
	}

	ui.PrintStatus(fmt.Sprintf("Polling %d project(s) every %s. Press Ctrl+C to stop.", len(cfg.Projects), cfg.RefreshInterval))
	if cfg.StatusAddr != "" {
		ui.PrintStatus("Status server at http://" + cfg.StatusAddr)
	}
	if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	ui.PrintFarewell()
	return nil
}

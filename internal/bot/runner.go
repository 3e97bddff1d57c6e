// Package bot wires the Jira source, renderer, sinks, journal, scheduler and
// status server into a running bot.
package bot

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"jirabot/internal/config"
	"jirabot/internal/jira"
	"jirabot/internal/journal"
	"jirabot/internal/poller"
	"jirabot/internal/render"
	"jirabot/internal/scheduler"
	"jirabot/internal/sink"
	"jirabot/internal/status"

	"github.com/gin-gonic/gin"
	"github.com/pterm/pterm"
)

const shutdownTimeout = 30 * time.Second

type Runner struct {
	cfg      *config.Config
	log      *pterm.Logger
	jira     *jira.Client
	poller   *poller.Poller
	journal  journal.Store
	interval time.Duration
}

// NewLogger builds the process logger from the configured level and format.
func NewLogger(cfg *config.Config) *pterm.Logger {
	log := pterm.DefaultLogger.WithLevel(ParseLevel(cfg.LogLevel))
	if cfg.LogFormat == "json" {
		log = log.WithFormatter(pterm.LogFormatterJSON)
	}
	return log
}

func ParseLevel(s string) pterm.LogLevel {
	switch strings.ToLower(s) {
	case "trace":
		return pterm.LogLevelTrace
	case "debug":
		return pterm.LogLevelDebug
	case "warn", "warning":
		return pterm.LogLevelWarn
	case "error":
		return pterm.LogLevelError
	}
	return pterm.LogLevelInfo
}

// NewRunner validates cfg and builds every component. Console deliveries are
// written to out.
func NewRunner(ctx context.Context, cfg *config.Config, log *pterm.Logger, out io.Writer) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	interval, _ := cfg.Interval()
	low, high, _ := cfg.Thresholds()

	client := jira.NewClient(cfg.JiraURL, cfg.JiraEmail, cfg.JiraAPIToken, cfg.MaxProjects, cfg.MaxIssuesPerProject, log)
	p := poller.New(client, NewRouter(cfg, log, out), render.New(cfg.JiraURL), poller.Settings{
		Interval:     interval,
		Projects:     cfg.Projects,
		Destinations: cfg.Destinations,
		Low:          low,
		High:         high,
	}, log)

	r := &Runner{cfg: cfg, log: log, jira: client, poller: p, interval: interval}
	if cfg.JournalDSN != "" {
		store, err := journal.Open(ctx, cfg.JournalDSN, log)
		if err != nil {
			return nil, err
		}
		r.journal = store
		p.WithJournal(store)
	}
	return r, nil
}

// NewRouter registers a sender for every destination scheme the config can
// serve. Console is always available.
func NewRouter(cfg *config.Config, log *pterm.Logger, out io.Writer) *sink.Router {
	router := sink.NewRouter(log).Register(sink.Console, sink.NewConsole(out))
	if cfg.SymphonyURL != "" {
		router.Register(sink.Symphony, sink.NewSymphony(cfg.SymphonyURL, cfg.SymphonySessionToken, cfg.SymphonyKeyManagerToken))
	}
	if cfg.TelegramToken != "" {
		router.Register(sink.Telegram, sink.NewTelegram(cfg.TelegramToken))
	}
	return router
}

// Check confirms the Jira credentials before any cycle runs.
func (r *Runner) Check(ctx context.Context) error {
	spinner, _ := pterm.DefaultSpinner.Start("Connecting to Jira...")
	me, err := r.jira.Myself(ctx)
	if err != nil {
		spinner.Fail("Jira authentication failed")
		return fmt.Errorf("jira authentication: %w", err)
	}
	spinner.Success("Connected to Jira as " + me.DisplayName)
	r.log.Info("authenticated", r.log.Args("user", me.Identity()))
	return nil
}

// Once runs a single cycle.
func (r *Runner) Once(ctx context.Context) (poller.Report, error) {
	return r.poller.Tick(ctx)
}

// Run polls on the refresh interval until ctx is cancelled, serving the
// status surface when an address is configured.
func (r *Runner) Run(ctx context.Context) error {
	var srv *status.Server
	if r.cfg.StatusAddr != "" {
		gin.SetMode(gin.ReleaseMode)
		var history status.RunHistory
		if r.journal != nil {
			history = r.journal
		}
		srv = status.NewServer(r.cfg.StatusAddr, status.NewRouter(r.poller, history, r.log), r.log)
		srv.Start()
	}

	sched := scheduler.New(r.poller, r.interval, r.log)
	sched.Start(ctx)

	<-ctx.Done()
	r.log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if srv != nil {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			r.log.Warn("status server shutdown", r.log.Args("error", err))
		}
	}
	sched.Stop(shutdownCtx)
	return nil
}

func (r *Runner) Close() {
	if r.journal == nil {
		return
	}
	if err := r.journal.Close(); err != nil {
		r.log.Warn("journal close", r.log.Args("error", err))
	}
}

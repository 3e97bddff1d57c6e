// Package scheduler runs poll cycles on a fixed interval.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"jirabot/internal/poller"

	"github.com/pterm/pterm"
	"github.com/robfig/cron/v3"
)

type Ticker interface {
	Tick(ctx context.Context) (poller.Report, error)
}

type Scheduler struct {
	c        *cron.Cron
	job      cron.Job
	ticker   Ticker
	interval time.Duration
	log      *pterm.Logger
	ctx      context.Context
	wg       sync.WaitGroup
}

func New(t Ticker, interval time.Duration, log *pterm.Logger) *Scheduler {
	cl := Logger(log)
	s := &Scheduler{
		c:        cron.New(cron.WithLogger(cl)),
		ticker:   t,
		interval: interval,
		log:      log,
		ctx:      context.Background(),
	}
	s.job = cron.NewChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)).Then(cron.FuncJob(s.tick))
	s.c.Schedule(cron.Every(interval), s.job)
	return s
}

// Start runs one cycle right away and then one every interval. Cycles never
// overlap: a tick that fires while the previous cycle is still running is
// skipped. ctx is handed to every cycle.
func (s *Scheduler) Start(ctx context.Context) {
	s.ctx = ctx
	s.log.Info("scheduler started", s.log.Args("interval", s.interval.String()))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.job.Run()
	}()
	s.c.Start()
}

// Stop halts the schedule and waits for a running cycle to finish or for ctx
// to expire. Scheduled cycles are awaited through cron, the first one through
// the wait group.
func (s *Scheduler) Stop(ctx context.Context) {
	stopped := s.c.Stop()
	done := make(chan struct{})
	go func() {
		<-stopped.Done()
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		s.log.Info("scheduler stopped")
	case <-ctx.Done():
		s.log.Warn("scheduler stop timed out")
	}
}

func (s *Scheduler) tick() {
	if _, err := s.ticker.Tick(s.ctx); errors.Is(err, poller.ErrCycleInProgress) {
		s.log.Info("skipping tick, cycle in progress")
	}
}

type cronLogger struct {
	log *pterm.Logger
}

// Logger adapts a pterm logger to cron.Logger.
func Logger(log *pterm.Logger) cron.Logger {
	return cronLogger{log: log}
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Trace("cron: "+msg, l.log.Args(keysAndValues...))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error("cron: "+msg, l.log.Args(append(keysAndValues, "error", err)...))
}

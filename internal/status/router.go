// Package status exposes a small HTTP surface for health checks, the last
// cycle report and manual triggers.
package status

import (
	"context"
	"errors"
	"net/http"
	"time"

	"jirabot/internal/journal"
	"jirabot/internal/poller"

	"github.com/gin-gonic/gin"
	"github.com/pterm/pterm"
)

type Cycles interface {
	Running() bool
	Last() (poller.Report, bool)
	Tick(ctx context.Context) (poller.Report, error)
}

type RunHistory interface {
	Last(ctx context.Context) (journal.Run, error)
}

// NewRouter builds the gin engine. history may be nil when no journal is
// configured.
func NewRouter(cycles Cycles, history RunHistory, log *pterm.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(func(c *gin.Context) {
		c.Next()
		log.Debug("http", log.Args("method", c.Request.Method, "path", c.FullPath(), "status", c.Writer.Status()))
	})

	h := &Handlers{cycles: cycles, history: history, log: log}
	r.GET("/healthz", h.Healthz)
	r.GET("/status", h.Status)
	r.POST("/run", h.RunNow)
	return r
}

type Handlers struct {
	cycles  Cycles
	history RunHistory
	log     *pterm.Logger
}

func (h *Handlers) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handlers) Status(c *gin.Context) {
	resp := gin.H{"running": h.cycles.Running()}
	if last, ok := h.cycles.Last(); ok {
		resp["last_cycle"] = last
	}
	if h.history != nil {
		run, err := h.history.Last(c.Request.Context())
		switch {
		case err == nil:
			resp["last_run"] = run
		case !errors.Is(err, journal.ErrNoRuns):
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handlers) RunNow(c *gin.Context) {
	if h.cycles.Running() {
		c.JSON(http.StatusConflict, gin.H{"error": poller.ErrCycleInProgress.Error()})
		return
	}
	// Detached from the request so the cycle outlives it.
	go func() {
		if _, err := h.cycles.Tick(context.Background()); errors.Is(err, poller.ErrCycleInProgress) {
			h.log.Info("manual run skipped, cycle in progress")
		}
	}()
	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}

// Server serves the router until Shutdown.
type Server struct {
	srv *http.Server
	log *pterm.Logger
}

func NewServer(addr string, handler http.Handler, log *pterm.Logger) *Server {
	return &Server{
		srv: &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second},
		log: log,
	}
}

// Start listens in the background. Listen errors other than a clean shutdown
// are logged.
func (s *Server) Start() {
	go func() {
		s.log.Info("status server listening", s.log.Args("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("status server failed", s.log.Args("error", err))
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

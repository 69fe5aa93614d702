// Package server exposes the workflow over HTTP and runs the cron
// scheduler that triggers it periodically.
package server

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/mohammad-safakhou/daybrief/config"
	"github.com/mohammad-safakhou/daybrief/internal/agent/core"
)

// Deps carries the shared dependencies the HTTP layer serves.
type Deps struct {
	Config *config.Config
	Orch   *core.Orchestrator
	Rdb    *redis.Client
}

// Run starts the HTTP server and the scheduler and blocks until the
// server stops.
func Run(deps Deps) error {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	wh := &WorkflowHandler{Orch: deps.Orch}
	wh.Register(e.Group("/api"))

	sched := &Scheduler{
		Cron:   deps.Config.Workflow.Cron,
		Stop:   make(chan struct{}),
		Rdb:    deps.Rdb,
		Orch:   deps.Orch,
		Logger: log.New(log.Writer(), "[SCHED] ", log.LstdFlags),
	}
	if err := sched.Start(); err != nil {
		return err
	}
	defer close(sched.Stop)

	addr := deps.Config.Server.Address
	if addr == "" {
		addr = ":10010"
	}
	return e.Start(addr)
}

// WorkflowHandler exposes workflow operations.
type WorkflowHandler struct {
	Orch *core.Orchestrator
}

// Register mounts the workflow routes on g.
func (h *WorkflowHandler) Register(g *echo.Group) {
	g.POST("/workflow/run", h.run)
	g.GET("/workflow/status", h.status)
	g.POST("/transcripts", h.transcripts)
}

func (h *WorkflowHandler) run(c echo.Context) error {
	report, err := h.Orch.RunDailyWorkflow(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, report)
}

func (h *WorkflowHandler) status(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"state": string(h.Orch.State())})
}

type transcriptRequest struct {
	MeetingID  string   `json:"meeting_id"`
	Title      string   `json:"title"`
	Transcript string   `json:"transcript"`
	Attendees  []string `json:"attendees"`
	StartTime  string   `json:"start_time"`
}

func (h *WorkflowHandler) transcripts(c echo.Context) error {
	var req transcriptRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Transcript == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "transcript is required")
	}

	meeting := core.MeetingRecord{
		ID:        req.MeetingID,
		Title:     req.Title,
		Attendees: req.Attendees,
		StartTime: req.StartTime,
	}
	if req.StartTime != "" {
		if start, err := time.Parse(time.RFC3339, req.StartTime); err == nil {
			meeting.Start = start
		}
	}

	note := h.Orch.ProcessTranscript(c.Request().Context(), req.Transcript, meeting)
	return c.JSON(http.StatusOK, note)
}

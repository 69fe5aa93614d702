package server

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gorhill/cronexpr"
	"github.com/redis/go-redis/v9"

	"github.com/mohammad-safakhou/daybrief/internal/agent/core"
)

const schedulerLockKey = "daybrief:sched:lock"

// Scheduler fires the daily workflow on a cron expression. A redis
// SetNX lock keeps concurrent replicas from running the same tick;
// without redis every replica fires, which the reminder ledger is
// expected to absorb.
type Scheduler struct {
	Cron   string
	Stop   chan struct{}
	Rdb    *redis.Client
	Orch   *core.Orchestrator
	Logger *log.Logger

	expr    *cronexpr.Expression
	lastRun time.Time
	now     func() time.Time
}

// Start validates the cron expression and launches the tick loop.
func (s *Scheduler) Start() error {
	expr, err := cronexpr.Parse(s.Cron)
	if err != nil {
		return fmt.Errorf("invalid workflow cron %q: %w", s.Cron, err)
	}
	s.expr = expr
	if s.now == nil {
		s.now = time.Now
	}
	s.lastRun = s.now()

	ticker := time.NewTicker(30 * time.Second)
	go func() {
		for {
			select {
			case <-s.Stop:
				ticker.Stop()
				return
			case <-ticker.C:
				s.tick()
			}
		}
	}()
	return nil
}

func (s *Scheduler) tick() {
	now := s.now()
	if !s.due(now) {
		return
	}
	s.lastRun = now

	ctx := context.Background()
	if s.Rdb != nil {
		ok, err := s.Rdb.SetNX(ctx, schedulerLockKey, "1", 2*time.Minute).Result()
		if err != nil {
			s.Logger.Printf("scheduler lock failed, running anyway: %v", err)
		} else if !ok {
			return
		}
	}

	go func() {
		report, err := s.Orch.RunDailyWorkflow(ctx)
		if err != nil {
			s.Logger.Printf("scheduled run failed: %v", err)
			return
		}
		s.Logger.Printf("scheduled run %s: %d emails, %d meetings, %d reminders",
			report.RunID, len(report.Emails), len(report.Meetings), report.RemindersSent)
	}()
}

// due reports whether the next cron fire time after the last run has
// passed.
func (s *Scheduler) due(now time.Time) bool {
	next := s.expr.Next(s.lastRun)
	return !next.IsZero() && !next.After(now)
}

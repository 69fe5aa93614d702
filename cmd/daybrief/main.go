package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/mohammad-safakhou/daybrief/config"
	"github.com/mohammad-safakhou/daybrief/internal/agent/core"
	"github.com/mohammad-safakhou/daybrief/internal/agent/telemetry"
	"github.com/mohammad-safakhou/daybrief/internal/gservice"
	"github.com/mohammad-safakhou/daybrief/internal/notify"
	"github.com/mohammad-safakhou/daybrief/internal/store"
)

func main() {
	_ = godotenv.Load()

	var root = &cobra.Command{Use: "daybrief"}
	root.AddCommand(runCMD(), serveCMD(), notesCMD())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

type app struct {
	cfg  *config.Config
	orch *core.Orchestrator
	tele *telemetry.Telemetry
	rdb  *redis.Client
}

func buildApp(ctx context.Context, cfgPath string) (*app, error) {
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return nil, err
	}

	creds, err := gservice.LoadCredentials(cfg.Google)
	if err != nil {
		return nil, fmt.Errorf("google credentials: %w", err)
	}

	var rdb *redis.Client
	var ledger core.ReminderLedger
	if cfg.Storage.Redis.Enabled() {
		rdb, err = store.Conn(ctx, cfg.Storage.Redis)
		if err != nil {
			return nil, err
		}
		ledger = store.NewReminderLedger(rdb)
	}

	tele := telemetry.NewTelemetry(cfg.Telemetry)
	logger := log.New(log.Writer(), "[ORCH] ", log.LstdFlags)
	orch, err := core.NewOrchestrator(cfg, logger, tele, core.Providers{
		Mail:     gservice.NewMail(creds),
		Calendar: gservice.NewCalendar(creds, cfg.Google.CalendarID),
		Docs:     gservice.NewDocs(creds),
		Notifier: notify.NewSlack(cfg.Notification),
		Ledger:   ledger,
	})
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, orch: orch, tele: tele, rdb: rdb}, nil
}

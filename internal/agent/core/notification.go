package core

import (
	"context"
	"log"

	"github.com/mohammad-safakhou/daybrief/config"
	"github.com/mohammad-safakhou/daybrief/internal/agent/telemetry"
)

// NotificationAgent posts messages to the chat channel. Sends are
// fire-and-forget: provider errors are logged and swallowed so a failed
// notification never blocks the workflow.
type NotificationAgent struct {
	notifier       Notifier
	defaultChannel string
	telemetry      *telemetry.Telemetry
	logger         *log.Logger
}

// NewNotificationAgent creates a new notification agent
func NewNotificationAgent(cfg *config.Config, notifier Notifier, tele *telemetry.Telemetry) *NotificationAgent {
	return &NotificationAgent{
		notifier:       notifier,
		defaultChannel: cfg.Notification.DefaultChannel,
		telemetry:      tele,
		logger:         log.New(log.Writer(), "[NOTIFY-AGENT] ", log.LstdFlags),
	}
}

// Name implements Agent.
func (a *NotificationAgent) Name() string { return "notification" }

// Execute sends message to channel, falling back to the configured
// default channel when none is given. Urgent messages get a marker
// prefix.
func (a *NotificationAgent) Execute(ctx context.Context, message, channel string, urgent bool) {
	if urgent {
		message = "🚨 URGENT: " + message
	}
	if channel == "" {
		channel = a.defaultChannel
	}

	ts, err := a.notifier.Post(ctx, channel, message)
	if err != nil {
		a.logger.Printf("notification failed (channel=%s): %v", channel, err)
		a.telemetry.RecordNotification(false)
		return
	}

	a.logger.Printf("notification sent to %s: %s", channel, ts)
	a.telemetry.RecordNotification(true)
}

// Package notify delivers workflow messages to Slack.
package notify

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"

	"github.com/mohammad-safakhou/daybrief/config"
)

// Slack implements core.Notifier over the Slack Web API.
type Slack struct {
	client   *slack.Client
	username string
}

// NewSlack creates a Slack notifier from configuration.
func NewSlack(cfg config.NotificationConfig) *Slack {
	return &Slack{
		client:   slack.New(cfg.SlackToken),
		username: cfg.Username,
	}
}

// Post sends text to channel and returns the message timestamp.
func (s *Slack) Post(ctx context.Context, channel, text string) (string, error) {
	_, ts, err := s.client.PostMessageContext(ctx, channel,
		slack.MsgOptionText(text, false),
		slack.MsgOptionUsername(s.username),
	)
	if err != nil {
		return "", fmt.Errorf("slack post to %s failed: %w", channel, err)
	}
	return ts, nil
}

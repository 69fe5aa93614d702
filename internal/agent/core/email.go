package core

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/mohammad-safakhou/daybrief/config"
	"github.com/mohammad-safakhou/daybrief/internal/agent/telemetry"
)

const emailSystemPrompt = `You are an email analysis assistant. For each email, provide:
1. A brief summary (2-3 sentences)
2. Priority level (High/Medium/Low)
3. Whether action is required (Yes/No)
4. If it mentions meetings, extract meeting details

Format as JSON with keys: summary, priority, action_required, meeting_info`

// EmailAgent fetches unread mail and classifies each message through the
// gateway. One bad message never aborts the batch: it is logged and
// skipped, and a failed whole fetch yields an empty list.
type EmailAgent struct {
	mail      MailProvider
	gateway   *Gateway
	routing   config.LLMRoutingConfig
	workflow  config.WorkflowConfig
	telemetry *telemetry.Telemetry
	logger    *log.Logger
}

// NewEmailAgent creates a new email agent
func NewEmailAgent(cfg *config.Config, mail MailProvider, gateway *Gateway, tele *telemetry.Telemetry) *EmailAgent {
	return &EmailAgent{
		mail:      mail,
		gateway:   gateway,
		routing:   cfg.LLM.Routing,
		workflow:  cfg.Workflow,
		telemetry: tele,
		logger:    log.New(log.Writer(), "[EMAIL-AGENT] ", log.LstdFlags),
	}
}

// Name implements Agent.
func (a *EmailAgent) Name() string { return "email" }

// Execute processes up to maxItems unread messages and returns one
// summary per successfully handled message, in provider order.
func (a *EmailAgent) Execute(ctx context.Context, maxItems int) []EmailSummary {
	start := time.Now()
	if maxItems <= 0 {
		maxItems = a.workflow.MaxEmails
	}

	messages, err := a.mail.ListUnread(ctx, maxItems)
	if err != nil {
		a.logger.Printf("email fetch failed: %v", err)
		a.telemetry.RecordAgentEvent(ctx, telemetry.AgentEvent{
			AgentName: a.Name(), StartTime: start, EndTime: time.Now(),
			Duration: time.Since(start), Success: false, Error: err.Error(),
		})
		return nil
	}

	summaries := make([]EmailSummary, 0, len(messages))
	fallbacks := 0
	for _, msg := range messages {
		summary := a.classify(ctx, msg)
		if summary.Outcome == OutcomeFallback {
			fallbacks++
		}
		summaries = append(summaries, summary)
	}

	a.telemetry.RecordAgentEvent(ctx, telemetry.AgentEvent{
		AgentName: a.Name(), StartTime: start, EndTime: time.Now(),
		Duration: time.Since(start), Success: true,
		Items: len(summaries), Fallbacks: fallbacks,
		ModelUsed: routeModel(a.routing, a.routing.Email),
	})
	return summaries
}

type emailAnalysis struct {
	Summary        string                 `json:"summary"`
	Priority       string                 `json:"priority"`
	ActionRequired bool                   `json:"action_required"`
	MeetingInfo    map[string]interface{} `json:"meeting_info"`
}

func (a *EmailAgent) classify(ctx context.Context, msg MailMessage) EmailSummary {
	prompt := fmt.Sprintf("Subject: %s\nFrom: %s\nContent: %s\n\nPlease provide a concise summary and analysis.",
		msg.Subject, msg.From, msg.Body)

	model := routeModel(a.routing, a.routing.Email)
	response := a.gateway.Complete(ctx, prompt, emailSystemPrompt, model)

	var analysis emailAnalysis
	if err := json.Unmarshal([]byte(extractFirstJSON(response)), &analysis); err != nil || response == "" {
		// Degraded record built from the raw response with conservative
		// defaults; never an error.
		return EmailSummary{
			Sender:         msg.From,
			Subject:        msg.Subject,
			Summary:        truncate(response, a.workflow.EmailFallbackChars),
			Priority:       PriorityMedium,
			ActionRequired: true,
			Outcome:        OutcomeFallback,
		}
	}

	priority := Priority(analysis.Priority)
	switch priority {
	case PriorityHigh, PriorityMedium, PriorityLow:
	default:
		priority = PriorityLow
	}

	return EmailSummary{
		Sender:         msg.From,
		Subject:        msg.Subject,
		Summary:        analysis.Summary,
		Priority:       priority,
		ActionRequired: analysis.ActionRequired,
		MeetingInfo:    analysis.MeetingInfo,
		Outcome:        OutcomeStructured,
	}
}

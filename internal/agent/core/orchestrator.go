package core

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mohammad-safakhou/daybrief/config"
	"github.com/mohammad-safakhou/daybrief/internal/agent/telemetry"
)

// State tracks the orchestrator lifecycle.
type State string

const (
	StateInitialized State = "initialized"
	StateRunning     State = "running"
	StateIdle        State = "idle"
)

// Providers bundles the external collaborators the orchestrator wires
// into its agents. Ledger may be nil; reminders then fire without
// dedup across invocations.
type Providers struct {
	Mail     MailProvider
	Calendar CalendarProvider
	Docs     DocumentStore
	Notifier Notifier
	Ledger   ReminderLedger
}

// Orchestrator owns the agent registry and runs the daily pipeline:
// fetch email, fetch calendar, send digest, evaluate reminders. Each
// stage degrades rather than crashes; only construction is fatal.
type Orchestrator struct {
	config    *config.Config
	logger    *log.Logger
	telemetry *telemetry.Telemetry

	gateway *Gateway
	agents  map[string]Agent
	ledger  ReminderLedger

	email        *EmailAgent
	calendar     *CalendarAgent
	notes        *NotesAgent
	notification *NotificationAgent

	mu    sync.RWMutex
	state State

	now func() time.Time
}

// NewOrchestrator wires the gateway and the four agents. Initialization
// is the one fatal path: a misconfigured LLM provider or missing
// collaborator propagates as an error.
func NewOrchestrator(cfg *config.Config, logger *log.Logger, tele *telemetry.Telemetry, providers Providers) (*Orchestrator, error) {
	if providers.Mail == nil || providers.Calendar == nil || providers.Docs == nil || providers.Notifier == nil {
		return nil, fmt.Errorf("all of mail, calendar, docs and notifier providers are required")
	}

	llmProvider, err := NewLLMProvider(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM provider: %w", err)
	}

	gateway := NewGateway(llmProvider, tele, cfg.Workflow.PromptTruncation)

	o := &Orchestrator{
		config:       cfg,
		logger:       logger,
		telemetry:    tele,
		gateway:      gateway,
		ledger:       providers.Ledger,
		email:        NewEmailAgent(cfg, providers.Mail, gateway, tele),
		calendar:     NewCalendarAgent(cfg, providers.Calendar, gateway, tele),
		notes:        NewNotesAgent(cfg, providers.Docs, gateway, tele),
		notification: NewNotificationAgent(cfg, providers.Notifier, tele),
		state:        StateInitialized,
		now:          time.Now,
	}

	// Built once; read-only afterwards.
	o.agents = map[string]Agent{
		o.email.Name():        o.email,
		o.calendar.Name():     o.calendar,
		o.notes.Name():        o.notes,
		o.notification.Name(): o.notification,
	}

	logger.Printf("orchestrator initialized with %d agents", len(o.agents))
	return o, nil
}

// Agent returns the registered agent for a capability name.
func (o *Orchestrator) Agent(name string) (Agent, bool) {
	a, ok := o.agents[name]
	return a, ok
}

// State returns the current orchestrator state.
func (o *Orchestrator) State() State {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.state
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

// RunDailyWorkflow executes the four pipeline stages in strict sequence.
// Any stage failure is caught once here, logged, reported through one
// urgent notification, and ends the run; there is no partial re-entry.
func (o *Orchestrator) RunDailyWorkflow(ctx context.Context) (report WorkflowReport, err error) {
	start := o.now()
	report.RunID = uuid.New().String()
	report.StartedAt = start

	o.setState(StateRunning)
	defer o.setState(StateIdle)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("daily workflow failed: %v", r)
			o.logger.Printf("%v", err)
			o.notification.Execute(ctx, fmt.Sprintf("Daily workflow failed: %v", r), "", true)
			o.telemetry.RecordWorkflowEvent(ctx, telemetry.WorkflowEvent{
				RunID: report.RunID, StartTime: start, EndTime: o.now(),
				Duration: o.now().Sub(start), Success: false, Error: err.Error(),
			})
		}
	}()

	o.logger.Printf("starting daily workflow run %s", report.RunID)

	// 1. Process unread email
	report.Emails = o.email.Execute(ctx, o.config.Workflow.MaxEmails)

	// 2. Upcoming meetings inside the lookahead window
	report.Meetings = o.calendar.Execute(ctx, o.config.Workflow.LookaheadHours)

	// 3. Digest, sent even when both lists are empty
	o.notification.Execute(ctx, o.buildDigest(report.Emails, report.Meetings), "", false)

	// 4. Reminder triggers over the fetched meetings
	report.RemindersSent = o.checkReminders(ctx, report.Meetings)

	report.CompletedAt = o.now()
	o.telemetry.RecordWorkflowEvent(ctx, telemetry.WorkflowEvent{
		RunID: report.RunID, StartTime: start, EndTime: report.CompletedAt,
		Duration: report.CompletedAt.Sub(start), Success: true,
		EmailsHandled: len(report.Emails), MeetingsFound: len(report.Meetings),
		RemindersFired: report.RemindersSent,
	})
	o.logger.Printf("daily workflow run %s completed in %v", report.RunID, report.CompletedAt.Sub(start))
	return report, nil
}

// buildDigest assembles the daily summary from literal counts plus a
// preview of the first few meetings.
func (o *Orchestrator) buildDigest(emails []EmailSummary, meetings []MeetingRecord) string {
	highPriority := 0
	for _, e := range emails {
		if e.Priority == PriorityHigh {
			highPriority++
		}
	}

	parts := []string{
		"📋 Daily Summary",
		fmt.Sprintf("📧 Emails processed: %d", len(emails)),
		fmt.Sprintf("⚠️ High priority emails: %d", highPriority),
		fmt.Sprintf("📅 Upcoming meetings: %d", len(meetings)),
	}

	preview := o.config.Workflow.DigestMeetings
	for i, m := range meetings {
		if i >= preview {
			break
		}
		parts = append(parts, fmt.Sprintf("• %s - %s", m.Title, m.StartTime))
	}

	return strings.Join(parts, "\n")
}

// checkReminders emits one urgent reminder for every meeting whose
// start falls inside the configured pre-meeting window, evaluated
// against the meeting's own time zone. Without a ledger the check is
// deliberately stateless: re-running inside the same window emits the
// reminder again.
func (o *Orchestrator) checkReminders(ctx context.Context, meetings []MeetingRecord) int {
	now := o.now()
	min := o.config.Workflow.ReminderWindowMin
	max := o.config.Workflow.ReminderWindowMax

	sent := 0
	for _, meeting := range meetings {
		if meeting.Start.IsZero() {
			o.logger.Printf("reminder skipped for %q: no parsed start time", meeting.Title)
			continue
		}

		delta := meeting.Start.Sub(now)
		if delta < min || delta > max {
			continue
		}

		if o.ledger != nil {
			key := fmt.Sprintf("reminder:%s:%dm", meeting.ID, int(max.Minutes()))
			ok, err := o.ledger.MarkOnce(ctx, key, delta)
			if err != nil {
				// Ledger trouble must not suppress the reminder.
				o.logger.Printf("reminder ledger failed for %q: %v", meeting.Title, err)
			} else if !ok {
				continue
			}
		}

		msg := fmt.Sprintf("🔔 Reminder: '%s' starts in %d minutes", meeting.Title, int(delta.Minutes()))
		if meeting.MeetLink != "" {
			msg += fmt.Sprintf("\nJoin: %s", meeting.MeetLink)
		}

		o.notification.Execute(ctx, msg, "", true)
		o.telemetry.RecordReminder()
		sent++
	}
	return sent
}

// ProcessTranscript runs the notes agent over a transcript and posts a
// completion notification. The note is returned even when persistence
// of the backing document failed.
func (o *Orchestrator) ProcessTranscript(ctx context.Context, transcript string, meeting MeetingRecord) MeetingNote {
	note := o.notes.Execute(ctx, transcript, meeting)
	o.notification.Execute(ctx,
		fmt.Sprintf("📝 Meeting notes completed for '%s' and saved to Google Docs", note.Title), "", false)
	return note
}

package core

import (
	"context"
	"time"
)

// Priority classifies how urgently an email needs attention.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Outcome distinguishes records built from well-formed model output from
// records assembled via the degraded fallback path. Absence of a record
// ("no result") is represented by the record not existing at all.
type Outcome string

const (
	OutcomeStructured Outcome = "structured"
	OutcomeFallback   Outcome = "fallback"
)

// EmailSummary is the per-message result of the email agent. Immutable
// after creation; owned by the caller for the duration of one run.
type EmailSummary struct {
	Sender         string                 `json:"sender"`
	Subject        string                 `json:"subject"`
	Summary        string                 `json:"summary"`
	Priority       Priority               `json:"priority"`
	ActionRequired bool                   `json:"action_required"`
	MeetingInfo    map[string]interface{} `json:"meeting_info,omitempty"`
	Outcome        Outcome                `json:"outcome"`
}

// MeetingRecord is one upcoming calendar event inside the lookahead
// window. StartTime keeps the provider's RFC 3339 string so the source
// time zone survives aggregation; Start carries the parsed instant.
type MeetingRecord struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	StartTime   string    `json:"start_time"`
	Start       time.Time `json:"-"`
	Attendees   []string  `json:"attendees"`
	Description string    `json:"description"`
	Analysis    string    `json:"analysis"`
	MeetLink    string    `json:"meet_link,omitempty"`
}

// MeetingNote is the structured result of processing one transcript.
type MeetingNote struct {
	MeetingID    string    `json:"meeting_id"`
	Title        string    `json:"title"`
	Date         time.Time `json:"date"`
	Participants []string  `json:"participants"`
	Summary      string    `json:"summary"`
	ActionItems  []string  `json:"action_items"`
	KeyDecisions []string  `json:"key_decisions"`
	Outcome      Outcome   `json:"outcome"`
}

// WorkflowReport aggregates what a single daily run produced.
type WorkflowReport struct {
	RunID         string          `json:"run_id"`
	StartedAt     time.Time       `json:"started_at"`
	CompletedAt   time.Time       `json:"completed_at"`
	Emails        []EmailSummary  `json:"emails"`
	Meetings      []MeetingRecord `json:"meetings"`
	RemindersSent int             `json:"reminders_sent"`
}

// Agent is the common contract every capability agent satisfies. The
// typed Execute entry points live on the concrete agents; the registry
// only needs identity.
type Agent interface {
	Name() string
}

// MailMessage is one unread message as returned by the mail provider,
// body already reduced to plain text.
type MailMessage struct {
	ID      string
	From    string
	Subject string
	Body    string
}

// MailProvider lists unread messages, bounded by max.
type MailProvider interface {
	ListUnread(ctx context.Context, max int) ([]MailMessage, error)
}

// CalendarEvent is one expanded event from the calendar provider.
type CalendarEvent struct {
	ID          string
	Title       string
	StartTime   string // RFC 3339, source zone preserved
	Attendees   []string
	Description string
	MeetLink    string
}

// CalendarProvider lists events in [from, to), ordered by start time.
type CalendarProvider interface {
	Events(ctx context.Context, from, to time.Time) ([]CalendarEvent, error)
}

// DocumentStore persists formatted notes as external documents.
type DocumentStore interface {
	CreateDocument(ctx context.Context, title string) (string, error)
	AppendText(ctx context.Context, docID, text string) error
}

// Notifier posts a message to a chat channel, returning the provider's
// delivery timestamp.
type Notifier interface {
	Post(ctx context.Context, channel, text string) (string, error)
}

// ReminderLedger records that a reminder fired for a meeting so
// overlapping workflow invocations do not duplicate it. MarkOnce
// returns true when the caller won the right to send.
type ReminderLedger interface {
	MarkOnce(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// LLMProvider is the contract for text-generation providers.
type LLMProvider interface {
	// Generate generates text using the given model
	Generate(ctx context.Context, prompt string, system string, model string) (string, error)

	// GenerateWithTokens generates text and returns token usage
	GenerateWithTokens(ctx context.Context, prompt string, system string, model string) (string, int64, int64, error)

	// CalculateCost calculates the cost for a given number of tokens
	CalculateCost(inputTokens, outputTokens int64, model string) float64

	// GetAvailableModels returns available models
	GetAvailableModels() []string
}

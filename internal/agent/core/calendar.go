package core

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mohammad-safakhou/daybrief/config"
	"github.com/mohammad-safakhou/daybrief/internal/agent/telemetry"
)

const calendarSystemPrompt = `Analyze meeting importance and provide JSON response with:
- importance: High/Medium/Low
- reminder_minutes: [15, 60, 1440] for different reminder times
- preparation_needed: boolean
- meeting_type: one-on-one/team/presentation/other`

// CalendarAgent fetches events inside the lookahead window and asks the
// gateway to assess each one. The analysis is stored opaquely on the
// record; the orchestrator never parses it.
type CalendarAgent struct {
	calendar  CalendarProvider
	gateway   *Gateway
	routing   config.LLMRoutingConfig
	telemetry *telemetry.Telemetry
	logger    *log.Logger
	now       func() time.Time
}

// NewCalendarAgent creates a new calendar agent
func NewCalendarAgent(cfg *config.Config, calendar CalendarProvider, gateway *Gateway, tele *telemetry.Telemetry) *CalendarAgent {
	return &CalendarAgent{
		calendar:  calendar,
		gateway:   gateway,
		routing:   cfg.LLM.Routing,
		telemetry: tele,
		logger:    log.New(log.Writer(), "[CALENDAR-AGENT] ", log.LstdFlags),
		now:       time.Now,
	}
}

// Name implements Agent.
func (a *CalendarAgent) Name() string { return "calendar" }

// Execute returns one MeetingRecord per event starting within the next
// hoursAhead hours, ordered by start time ascending. An event whose
// start time cannot be parsed is logged and skipped; the rest of the
// batch is unaffected.
func (a *CalendarAgent) Execute(ctx context.Context, hoursAhead int) []MeetingRecord {
	start := a.now()
	from := start
	to := from.Add(time.Duration(hoursAhead) * time.Hour)

	events, err := a.calendar.Events(ctx, from, to)
	if err != nil {
		a.logger.Printf("calendar fetch failed: %v", err)
		a.telemetry.RecordAgentEvent(ctx, telemetry.AgentEvent{
			AgentName: a.Name(), StartTime: start, EndTime: a.now(),
			Duration: a.now().Sub(start), Success: false, Error: err.Error(),
		})
		return nil
	}

	meetings := make([]MeetingRecord, 0, len(events))
	for _, event := range events {
		record, ok := a.analyze(ctx, event)
		if !ok {
			continue
		}
		meetings = append(meetings, record)
	}

	a.telemetry.RecordAgentEvent(ctx, telemetry.AgentEvent{
		AgentName: a.Name(), StartTime: start, EndTime: a.now(),
		Duration: a.now().Sub(start), Success: true,
		Items:     len(meetings),
		ModelUsed: routeModel(a.routing, a.routing.Calendar),
	})
	return meetings
}

// parseEventStart accepts RFC 3339 timestamps and the bare dates the
// calendar provider emits for all-day events (parsed as midnight UTC).
func parseEventStart(s string) (time.Time, error) {
	startAt, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return startAt, nil
	}
	if dayStart, dayErr := time.Parse(time.DateOnly, s); dayErr == nil {
		return dayStart, nil
	}
	return time.Time{}, err
}

func (a *CalendarAgent) analyze(ctx context.Context, event CalendarEvent) (MeetingRecord, bool) {
	startAt, err := parseEventStart(event.StartTime)
	if err != nil {
		a.logger.Printf("skipping event %s: bad start time %q: %v", event.ID, event.StartTime, err)
		return MeetingRecord{}, false
	}

	prompt := fmt.Sprintf("Meeting: %s\nDescription: %s\nAttendees: %d people\n\nAnalyze this meeting's importance and suggest reminder timing.",
		event.Title, event.Description, len(event.Attendees))

	model := routeModel(a.routing, a.routing.Calendar)
	analysis := a.gateway.Complete(ctx, prompt, calendarSystemPrompt, model)

	return MeetingRecord{
		ID:          event.ID,
		Title:       event.Title,
		StartTime:   event.StartTime,
		Start:       startAt,
		Attendees:   event.Attendees,
		Description: event.Description,
		Analysis:    analysis,
		MeetLink:    event.MeetLink,
	}, true
}

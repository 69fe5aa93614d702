package core

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubCalendar struct {
	events   []CalendarEvent
	err      error
	gotFrom  time.Time
	gotTo    time.Time
	callsNum int
}

func (s *stubCalendar) Events(ctx context.Context, from, to time.Time) ([]CalendarEvent, error) {
	s.callsNum++
	s.gotFrom, s.gotTo = from, to
	if s.err != nil {
		return nil, s.err
	}
	return s.events, nil
}

func newCalendarAgent(cal CalendarProvider, llm *stubLLM, now time.Time) *CalendarAgent {
	cfg := testConfig()
	tele := newTestTelemetry()
	a := NewCalendarAgent(cfg, cal, NewGateway(llm, tele, cfg.Workflow.PromptTruncation), tele)
	a.now = func() time.Time { return now }
	return a
}

func TestCalendarAgentLookaheadWindow(t *testing.T) {
	now := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	cal := &stubCalendar{}

	newCalendarAgent(cal, &stubLLM{}, now).Execute(context.Background(), 24)
	if !cal.gotFrom.Equal(now) {
		t.Fatalf("window must start at now, got %v", cal.gotFrom)
	}
	if !cal.gotTo.Equal(now.Add(24 * time.Hour)) {
		t.Fatalf("window must end 24h out, got %v", cal.gotTo)
	}
}

func TestCalendarAgentBuildsRecords(t *testing.T) {
	now := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	cal := &stubCalendar{events: []CalendarEvent{{
		ID:          "ev1",
		Title:       "Sprint Planning",
		StartTime:   "2026-08-31T14:00:00+02:00",
		Attendees:   []string{"alice@corp.com", "bob@corp.com"},
		Description: "Plan the next sprint",
		MeetLink:    "https://meet.example.com/abc",
	}}}
	llm := &stubLLM{responses: []string{`{"importance":"High","preparation_needed":true}`}}

	got := newCalendarAgent(cal, llm, now).Execute(context.Background(), 24)
	if len(got) != 1 {
		t.Fatalf("expected 1 meeting, got %d", len(got))
	}
	m := got[0]
	if m.StartTime != "2026-08-31T14:00:00+02:00" {
		t.Fatalf("source time zone string must be preserved, got %q", m.StartTime)
	}
	want := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	if !m.Start.Equal(want) {
		t.Fatalf("parsed start mismatch: got %v, want %v", m.Start, want)
	}
	if m.MeetLink != "https://meet.example.com/abc" {
		t.Fatalf("meet link not carried over: %q", m.MeetLink)
	}
	if m.Analysis == "" {
		t.Fatalf("gateway analysis must be stored on the record")
	}
}

func TestCalendarAgentSkipsUnparsableStart(t *testing.T) {
	now := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	cal := &stubCalendar{events: []CalendarEvent{
		{ID: "bad", Title: "Broken", StartTime: "tomorrow-ish"},
		{ID: "ok", Title: "Standup", StartTime: "2026-08-31T10:00:00Z"},
	}}

	got := newCalendarAgent(cal, &stubLLM{}, now).Execute(context.Background(), 24)
	if len(got) != 1 || got[0].ID != "ok" {
		t.Fatalf("expected only the parseable event, got %+v", got)
	}
}

func TestCalendarAgentKeepsAllDayEvents(t *testing.T) {
	now := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	cal := &stubCalendar{events: []CalendarEvent{
		{ID: "allday", Title: "Company Holiday", StartTime: "2026-09-01"},
	}}

	got := newCalendarAgent(cal, &stubLLM{}, now).Execute(context.Background(), 24)
	if len(got) != 1 {
		t.Fatalf("expected the all-day event to survive, got %d records", len(got))
	}
	if got[0].StartTime != "2026-09-01" {
		t.Fatalf("source date string must be preserved, got %q", got[0].StartTime)
	}
	want := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	if !got[0].Start.Equal(want) {
		t.Fatalf("all-day start must parse as midnight UTC, got %v", got[0].Start)
	}
}

func TestCalendarAgentFetchFailureYieldsEmpty(t *testing.T) {
	now := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	cal := &stubCalendar{err: errors.New("calendar down")}
	llm := &stubLLM{}

	got := newCalendarAgent(cal, llm, now).Execute(context.Background(), 24)
	if len(got) != 0 {
		t.Fatalf("expected no meetings after fetch failure, got %d", len(got))
	}
	if llm.calls != 0 {
		t.Fatalf("no analysis should run after fetch failure, got %d calls", llm.calls)
	}
}

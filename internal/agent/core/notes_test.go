package core

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type stubDocs struct {
	createErr error
	appendErr error
	titles    []string
	appended  []string
}

func (s *stubDocs) CreateDocument(ctx context.Context, title string) (string, error) {
	if s.createErr != nil {
		return "", s.createErr
	}
	s.titles = append(s.titles, title)
	return "doc-1", nil
}

func (s *stubDocs) AppendText(ctx context.Context, docID, text string) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	s.appended = append(s.appended, text)
	return nil
}

func newNotesAgent(docs DocumentStore, llm *stubLLM, now time.Time) *NotesAgent {
	cfg := testConfig()
	tele := newTestTelemetry()
	a := NewNotesAgent(cfg, docs, NewGateway(llm, tele, cfg.Workflow.PromptTruncation), tele)
	a.now = func() time.Time { return now }
	return a
}

func TestNotesAgentStructured(t *testing.T) {
	now := time.Date(2026, 8, 31, 16, 0, 0, 0, time.UTC)
	docs := &stubDocs{}
	llm := &stubLLM{responses: []string{`{
		"summary": "Agreed on the release plan.",
		"key_decisions": ["Ship on Friday"],
		"action_items": ["Alice drafts changelog", "Bob tags the release"],
		"important_topics": ["release"],
		"next_steps": ["Retro next week"]
	}`}}

	meeting := MeetingRecord{ID: "ev1", Title: "Release Sync", Attendees: []string{"alice@corp.com", "bob@corp.com"}}
	note := newNotesAgent(docs, llm, now).Execute(context.Background(), "alice: ship friday? bob: yes", meeting)

	if note.Outcome != OutcomeStructured {
		t.Fatalf("expected structured outcome, got %q", note.Outcome)
	}
	if note.Summary != "Agreed on the release plan." {
		t.Fatalf("unexpected summary: %q", note.Summary)
	}
	if len(note.ActionItems) != 2 || len(note.KeyDecisions) != 1 {
		t.Fatalf("lists not carried over: %+v", note)
	}

	if len(docs.titles) != 1 || docs.titles[0] != "Meeting Notes - Release Sync - 2026-08-31" {
		t.Fatalf("unexpected document title: %v", docs.titles)
	}
	if len(docs.appended) != 1 {
		t.Fatalf("expected a single append, got %d", len(docs.appended))
	}
	body := docs.appended[0]
	for _, section := range []string{"MEETING NOTES", "SUMMARY", "KEY DECISIONS", "ACTION ITEMS", "IMPORTANT TOPICS", "NEXT STEPS"} {
		if !strings.Contains(body, section) {
			t.Fatalf("document body missing %q section:\n%s", section, body)
		}
	}
	if !strings.Contains(body, "• Alice drafts changelog") {
		t.Fatalf("action items must be bulleted:\n%s", body)
	}
	if !strings.Contains(body, "Participants: alice@corp.com, bob@corp.com") {
		t.Fatalf("participants line missing:\n%s", body)
	}
}

func TestNotesAgentFallbackOnUnparsableResponse(t *testing.T) {
	now := time.Date(2026, 8, 31, 16, 0, 0, 0, time.UTC)
	raw := strings.Repeat("y", 600)
	llm := &stubLLM{responses: []string{raw}}

	note := newNotesAgent(&stubDocs{}, llm, now).Execute(context.Background(), "transcript", MeetingRecord{Title: "Sync"})
	if note.Outcome != OutcomeFallback {
		t.Fatalf("expected fallback outcome, got %q", note.Outcome)
	}
	if len(note.Summary) != 500 {
		t.Fatalf("fallback summary must be capped at 500 chars, got %d", len(note.Summary))
	}
	if note.ActionItems == nil || note.KeyDecisions == nil {
		t.Fatalf("fallback lists must be empty, not nil: %+v", note)
	}
	if len(note.ActionItems) != 0 || len(note.KeyDecisions) != 0 {
		t.Fatalf("fallback lists must be empty: %+v", note)
	}
}

func TestNotesAgentReturnsNoteWhenSaveFails(t *testing.T) {
	now := time.Date(2026, 8, 31, 16, 0, 0, 0, time.UTC)
	docs := &stubDocs{createErr: errors.New("docs quota exceeded")}
	llm := &stubLLM{responses: []string{`{"summary":"ok","key_decisions":[],"action_items":[],"important_topics":[],"next_steps":[]}`}}

	note := newNotesAgent(docs, llm, now).Execute(context.Background(), "transcript", MeetingRecord{Title: "Sync"})
	if note.Outcome != OutcomeStructured || note.Summary != "ok" {
		t.Fatalf("persistence failure must not invalidate the note: %+v", note)
	}
}

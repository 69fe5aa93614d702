package core

import (
	"context"
	"errors"
	"testing"
)

type stubMail struct {
	messages []MailMessage
	err      error
	gotMax   int
}

func (s *stubMail) ListUnread(ctx context.Context, max int) ([]MailMessage, error) {
	s.gotMax = max
	if s.err != nil {
		return nil, s.err
	}
	return s.messages, nil
}

func newEmailAgent(mail MailProvider, llm *stubLLM) *EmailAgent {
	cfg := testConfig()
	tele := newTestTelemetry()
	return NewEmailAgent(cfg, mail, NewGateway(llm, tele, cfg.Workflow.PromptTruncation), tele)
}

func TestEmailAgentStructuredAndFallback(t *testing.T) {
	mail := &stubMail{messages: []MailMessage{
		{ID: "m1", From: "boss@corp.com", Subject: "Q3 budget", Body: "Please approve the Q3 budget by Friday."},
		{ID: "m2", From: "noise@list.com", Subject: "Newsletter", Body: "Weekly digest content."},
	}}
	llm := &stubLLM{responses: []string{
		`{"summary":"Budget approval needed by Friday","priority":"High","action_required":true}`,
		`I could not produce JSON for this one, sorry.`,
	}}

	got := newEmailAgent(mail, llm).Execute(context.Background(), 10)
	if len(got) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(got))
	}

	first := got[0]
	if first.Outcome != OutcomeStructured || first.Priority != PriorityHigh || !first.ActionRequired {
		t.Fatalf("unexpected structured summary: %+v", first)
	}
	if first.Summary != "Budget approval needed by Friday" {
		t.Fatalf("unexpected summary text: %q", first.Summary)
	}
	if first.Sender != "boss@corp.com" || first.Subject != "Q3 budget" {
		t.Fatalf("sender/subject not carried over: %+v", first)
	}

	second := got[1]
	if second.Outcome != OutcomeFallback {
		t.Fatalf("expected fallback outcome, got %q", second.Outcome)
	}
	if second.Priority != PriorityMedium || !second.ActionRequired {
		t.Fatalf("fallback must default to Medium priority with action required: %+v", second)
	}
	if second.Summary != "I could not produce JSON for this one, sorry." {
		t.Fatalf("fallback summary must carry the raw response, got %q", second.Summary)
	}
}

func TestEmailAgentFallbackTruncatesRawResponse(t *testing.T) {
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'x'
	}
	mail := &stubMail{messages: []MailMessage{{ID: "m1", From: "a@b.c", Subject: "s", Body: "b"}}}
	llm := &stubLLM{responses: []string{string(long)}}

	got := newEmailAgent(mail, llm).Execute(context.Background(), 10)
	if len(got) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(got))
	}
	if len(got[0].Summary) != 200 {
		t.Fatalf("fallback summary must be capped at 200 chars, got %d", len(got[0].Summary))
	}
}

func TestEmailAgentFetchFailureYieldsEmpty(t *testing.T) {
	mail := &stubMail{err: errors.New("gmail down")}
	llm := &stubLLM{}

	got := newEmailAgent(mail, llm).Execute(context.Background(), 10)
	if len(got) != 0 {
		t.Fatalf("expected no summaries after fetch failure, got %d", len(got))
	}
	if llm.calls != 0 {
		t.Fatalf("no classification should run after fetch failure, got %d calls", llm.calls)
	}
}

func TestEmailAgentUnknownPriorityDefaultsLow(t *testing.T) {
	mail := &stubMail{messages: []MailMessage{{ID: "m1", From: "a@b.c", Subject: "s", Body: "b"}}}
	llm := &stubLLM{responses: []string{`{"summary":"ok","priority":"Critical","action_required":false}`}}

	got := newEmailAgent(mail, llm).Execute(context.Background(), 10)
	if got[0].Priority != PriorityLow {
		t.Fatalf("unrecognized priority must map to Low, got %q", got[0].Priority)
	}
	if got[0].Outcome != OutcomeStructured {
		t.Fatalf("valid JSON with odd priority is still structured, got %q", got[0].Outcome)
	}
}

func TestEmailAgentDefaultsMaxItems(t *testing.T) {
	mail := &stubMail{}
	newEmailAgent(mail, &stubLLM{}).Execute(context.Background(), 0)
	if mail.gotMax != 10 {
		t.Fatalf("expected configured max of 10, provider saw %d", mail.gotMax)
	}
}

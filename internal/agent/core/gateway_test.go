package core

import (
	"context"
	"errors"
	"testing"

	"github.com/mohammad-safakhou/daybrief/config"
	"github.com/mohammad-safakhou/daybrief/internal/agent/telemetry"
)

// stubLLM is a scripted LLMProvider. Responses are returned in order;
// when fail is set every call errors.
type stubLLM struct {
	responses []string
	fail      bool
	calls     int
	prompts   []string
	systems   []string
}

func (s *stubLLM) Generate(ctx context.Context, prompt, system, model string) (string, error) {
	out, _, _, err := s.GenerateWithTokens(ctx, prompt, system, model)
	return out, err
}

func (s *stubLLM) GenerateWithTokens(ctx context.Context, prompt, system, model string) (string, int64, int64, error) {
	s.calls++
	s.prompts = append(s.prompts, prompt)
	s.systems = append(s.systems, system)
	if s.fail {
		return "", 0, 0, errors.New("provider unavailable")
	}
	if len(s.responses) == 0 {
		return "", 10, 5, nil
	}
	out := s.responses[0]
	s.responses = s.responses[1:]
	return out, 10, 5, nil
}

func (s *stubLLM) CalculateCost(inputTokens, outputTokens int64, model string) float64 { return 0 }

func (s *stubLLM) GetAvailableModels() []string { return nil }

func newTestTelemetry() *telemetry.Telemetry {
	return telemetry.NewTelemetry(config.TelemetryConfig{})
}

func testConfig() *config.Config {
	return &config.Config{
		Workflow:     config.WorkflowConfig{}.Normalize(),
		Notification: config.NotificationConfig{SlackToken: "xoxb-test"}.Normalize(),
		LLM: config.LLMConfig{
			Routing: config.LLMRoutingConfig{Email: "fast", Calendar: "fast", Notes: "deep", Fallback: "fast"},
		},
	}
}

func TestGatewayCompleteEmptyOnProviderError(t *testing.T) {
	llm := &stubLLM{fail: true}
	g := NewGateway(llm, newTestTelemetry(), 2000)

	out := g.Complete(context.Background(), "summarize this", "system", "fast")
	if out != "" {
		t.Fatalf("expected empty completion on provider error, got %q", out)
	}
	if llm.calls != 1 {
		t.Fatalf("expected exactly one provider call, got %d", llm.calls)
	}
}

func TestGatewayTruncatesPrompt(t *testing.T) {
	llm := &stubLLM{responses: []string{"ok"}}
	g := NewGateway(llm, newTestTelemetry(), 10)

	g.Complete(context.Background(), "0123456789abcdef", "", "fast")
	if got := llm.prompts[0]; got != "0123456789" {
		t.Fatalf("expected prompt truncated to 10 chars, got %q", got)
	}
}

func TestGatewayPassesSystemPrompt(t *testing.T) {
	llm := &stubLLM{responses: []string{"ok"}}
	g := NewGateway(llm, newTestTelemetry(), 2000)

	g.Complete(context.Background(), "p", "you are terse", "fast")
	if llm.systems[0] != "you are terse" {
		t.Fatalf("system prompt not forwarded, got %q", llm.systems[0])
	}
}

func TestExtractFirstJSON(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{`Sure! Here it is: {"a":1} hope that helps`, `{"a":1}`},
		{`{"outer":{"inner":2}} trailing`, `{"outer":{"inner":2}}`},
		{`no object here`, `no object here`},
		{`{"unterminated":`, `{"unterminated":`},
	}
	for _, c := range cases {
		if got := extractFirstJSON(c.in); got != c.want {
			t.Fatalf("extractFirstJSON(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("hello", 0); got != "hello" {
		t.Fatalf("max<=0 must disable truncation, got %q", got)
	}
	if got := truncate("hello", 3); got != "hel" {
		t.Fatalf("expected %q, got %q", "hel", got)
	}
	if got := truncate("日本語", 4); got != "日" {
		t.Fatalf("truncation must not split a rune, got %q", got)
	}
	if got := truncate("日本語", 6); got != "日本" {
		t.Fatalf("expected clean two-rune cut, got %q", got)
	}
}

package core

import (
	"context"
	"log"
	"time"
	"unicode/utf8"

	"github.com/mohammad-safakhou/daybrief/internal/agent/telemetry"
)

// Gateway is the stateless bridge between agents and the text-generation
// provider. It never lets a provider error escape: any failure degrades
// to an empty completion, which callers treat as "no analysis available".
// Retries, if ever wanted, belong to the orchestrator, not here.
type Gateway struct {
	provider   LLMProvider
	telemetry  *telemetry.Telemetry
	logger     *log.Logger
	truncateAt int
}

// NewGateway creates a gateway over the configured provider. truncateAt
// bounds the prompt size in characters before submission.
func NewGateway(provider LLMProvider, tele *telemetry.Telemetry, truncateAt int) *Gateway {
	return &Gateway{
		provider:   provider,
		telemetry:  tele,
		logger:     log.New(log.Writer(), "[GATEWAY] ", log.LstdFlags),
		truncateAt: truncateAt,
	}
}

// Complete sends prompt with system instructions to the model and
// returns the raw text response, or "" on any transport or provider
// failure.
func (g *Gateway) Complete(ctx context.Context, prompt, system, model string) string {
	start := time.Now()
	out, inTok, outTok, err := g.provider.GenerateWithTokens(ctx, truncate(prompt, g.truncateAt), system, model)
	if err != nil {
		g.logger.Printf("completion failed (model=%s): %v", model, err)
		g.telemetry.RecordLLMEvent(ctx, telemetry.LLMEvent{Model: model, Duration: time.Since(start), Success: false})
		return ""
	}

	g.telemetry.RecordLLMEvent(ctx, telemetry.LLMEvent{
		Model:        model,
		Duration:     time.Since(start),
		Success:      true,
		InputTokens:  inTok,
		OutputTokens: outTok,
		Cost:         g.provider.CalculateCost(inTok, outTok, model),
	})
	return out
}

// truncate bounds s to max bytes without splitting a rune.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

// extractFirstJSON attempts to find the first top-level JSON object in a string
func extractFirstJSON(s string) string {
	start := -1
	depth := 0
	for i, ch := range s {
		if ch == '{' {
			if depth == 0 {
				start = i
			}
			depth++
		} else if ch == '}' {
			if depth > 0 {
				depth--
			}
			if depth == 0 && start != -1 {
				return s[start : i+1]
			}
		}
	}
	return s
}

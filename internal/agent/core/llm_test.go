package core

import (
	"testing"
	"time"

	"github.com/mohammad-safakhou/daybrief/config"
)

func TestNewLLMProviderRequiresProviders(t *testing.T) {
	if _, err := NewLLMProvider(config.LLMConfig{}); err == nil {
		t.Fatalf("expected error with no providers configured")
	}
}

func TestNewLLMProviderRejectsUnknownType(t *testing.T) {
	cfg := config.LLMConfig{Providers: map[string]config.LLMProvider{
		"other": {Type: "mystery"},
	}}
	if _, err := NewLLMProvider(cfg); err == nil {
		t.Fatalf("expected error for unsupported provider type")
	}
}

func TestNewLLMProviderOpenAI(t *testing.T) {
	cfg := config.LLMConfig{Providers: map[string]config.LLMProvider{
		"openai": {
			Type:    "openai",
			APIKey:  "test-key",
			Timeout: 5 * time.Second,
			Models: map[string]config.LLMModel{
				"fast": {Name: "gpt-4o-mini", CostPer1K: 0.15, CostPer1KOutput: 0.6},
			},
		},
	}}

	p, err := NewLLMProvider(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	models := p.GetAvailableModels()
	if len(models) != 1 || models[0] != "fast" {
		t.Fatalf("unexpected models: %v", models)
	}
	if cost := p.CalculateCost(1000, 1000, "fast"); cost != 0.75 {
		t.Fatalf("unexpected cost: %f", cost)
	}
}

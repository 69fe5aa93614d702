package telemetry

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mohammad-safakhou/daybrief/config"
)

var (
	workflowRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "daybrief_workflow_runs_total",
		Help: "Daily workflow runs by outcome.",
	}, []string{"outcome"})
	agentExecutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "daybrief_agent_executions_total",
		Help: "Agent executions by agent and outcome.",
	}, []string{"agent", "outcome"})
	notificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "daybrief_notifications_total",
		Help: "Chat notifications by outcome.",
	}, []string{"outcome"})
	remindersFired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "daybrief_reminders_fired_total",
		Help: "Meeting reminders emitted.",
	})
	llmTokens = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "daybrief_llm_tokens_total",
		Help: "LLM tokens used by model and direction.",
	}, []string{"model", "direction"})
)

// Telemetry provides monitoring and cost tracking for the agent system.
type Telemetry struct {
	config      config.TelemetryConfig
	logger      *log.Logger
	metrics     *Metrics
	costTracker *CostTracker
	mu          sync.RWMutex
}

// Metrics holds various performance metrics
type Metrics struct {
	// Workflow metrics
	TotalRuns      int64
	SuccessfulRuns int64
	FailedRuns     int64
	AverageRunTime time.Duration

	// Agent metrics
	AgentExecutions   map[string]int64
	AgentSuccessRates map[string]float64
	AgentAverageTimes map[string]time.Duration

	// LLM metrics
	LLMRequests   map[string]int64
	LLMTokensUsed map[string]int64

	// Notification metrics
	NotificationsSent   int64
	NotificationsFailed int64
	RemindersFired      int64
}

// CostTracker tracks costs across models and operations
type CostTracker struct {
	ModelCosts  map[string]float64
	TotalCost   float64
	TotalTokens int64
}

// WorkflowEvent represents one complete daily workflow run
type WorkflowEvent struct {
	RunID          string
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
	Success        bool
	Error          string
	EmailsHandled  int
	MeetingsFound  int
	RemindersFired int
	Cost           float64
	TokensUsed     int64
}

// AgentEvent represents an agent execution event
type AgentEvent struct {
	AgentName  string
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
	Success    bool
	Error      string
	Items      int
	Fallbacks  int
	Cost       float64
	TokensUsed int64
	ModelUsed  string
}

// LLMEvent represents a single gateway completion
type LLMEvent struct {
	Model        string
	Duration     time.Duration
	Success      bool
	InputTokens  int64
	OutputTokens int64
	Cost         float64
}

// NewTelemetry creates a new telemetry instance
func NewTelemetry(cfg config.TelemetryConfig) *Telemetry {
	t := &Telemetry{
		config: cfg,
		logger: log.New(log.Writer(), "[TELEMETRY] ", log.LstdFlags),
		metrics: &Metrics{
			AgentExecutions:   make(map[string]int64),
			AgentSuccessRates: make(map[string]float64),
			AgentAverageTimes: make(map[string]time.Duration),
			LLMRequests:       make(map[string]int64),
			LLMTokensUsed:     make(map[string]int64),
		},
		costTracker: &CostTracker{
			ModelCosts: make(map[string]float64),
		},
	}

	if cfg.Enabled && cfg.PeriodicLogs {
		go t.startPeriodicReports()
	}

	return t
}

// RecordWorkflowEvent records a complete workflow run
func (t *Telemetry) RecordWorkflowEvent(ctx context.Context, event WorkflowEvent) {
	if !t.config.Enabled {
		return
	}

	outcome := "success"
	if !event.Success {
		outcome = "failure"
	}
	workflowRuns.WithLabelValues(outcome).Inc()

	t.mu.Lock()
	defer t.mu.Unlock()

	t.metrics.TotalRuns++
	if event.Success {
		t.metrics.SuccessfulRuns++
	} else {
		t.metrics.FailedRuns++
	}

	if t.metrics.TotalRuns == 1 {
		t.metrics.AverageRunTime = event.Duration
	} else {
		total := t.metrics.AverageRunTime * time.Duration(t.metrics.TotalRuns-1)
		t.metrics.AverageRunTime = (total + event.Duration) / time.Duration(t.metrics.TotalRuns)
	}
	t.metrics.RemindersFired += int64(event.RemindersFired)

	t.costTracker.TotalCost += event.Cost
	t.costTracker.TotalTokens += event.TokensUsed

	t.logger.Printf("Workflow Event: Run=%s, Success=%t, Duration=%v, Emails=%d, Meetings=%d, Reminders=%d, Cost=$%.4f",
		event.RunID, event.Success, event.Duration, event.EmailsHandled, event.MeetingsFound, event.RemindersFired, event.Cost)
}

// RecordAgentEvent records an agent execution event
func (t *Telemetry) RecordAgentEvent(ctx context.Context, event AgentEvent) {
	if !t.config.Enabled {
		return
	}

	outcome := "success"
	if !event.Success {
		outcome = "failure"
	}
	agentExecutions.WithLabelValues(event.AgentName, outcome).Inc()

	t.mu.Lock()
	defer t.mu.Unlock()

	t.metrics.AgentExecutions[event.AgentName]++
	executions := t.metrics.AgentExecutions[event.AgentName]

	successes := t.metrics.AgentSuccessRates[event.AgentName] * float64(executions-1)
	if event.Success {
		successes += 1.0
	}
	t.metrics.AgentSuccessRates[event.AgentName] = successes / float64(executions)

	if executions == 1 {
		t.metrics.AgentAverageTimes[event.AgentName] = event.Duration
	} else {
		total := t.metrics.AgentAverageTimes[event.AgentName] * time.Duration(executions-1)
		t.metrics.AgentAverageTimes[event.AgentName] = (total + event.Duration) / time.Duration(executions)
	}

	t.costTracker.TotalCost += event.Cost
	t.costTracker.TotalTokens += event.TokensUsed
	if event.ModelUsed != "" {
		t.costTracker.ModelCosts[event.ModelUsed] += event.Cost
	}

	t.logger.Printf("Agent Event: Name=%s, Success=%t, Duration=%v, Items=%d, Fallbacks=%d",
		event.AgentName, event.Success, event.Duration, event.Items, event.Fallbacks)
}

// RecordLLMEvent records a single gateway completion
func (t *Telemetry) RecordLLMEvent(ctx context.Context, event LLMEvent) {
	if !t.config.Enabled {
		return
	}

	llmTokens.WithLabelValues(event.Model, "input").Add(float64(event.InputTokens))
	llmTokens.WithLabelValues(event.Model, "output").Add(float64(event.OutputTokens))

	t.mu.Lock()
	defer t.mu.Unlock()

	t.metrics.LLMRequests[event.Model]++
	t.metrics.LLMTokensUsed[event.Model] += event.InputTokens + event.OutputTokens
	if t.config.CostTracking {
		t.costTracker.ModelCosts[event.Model] += event.Cost
		t.costTracker.TotalCost += event.Cost
		t.costTracker.TotalTokens += event.InputTokens + event.OutputTokens
	}
}

// RecordNotification records a notification attempt
func (t *Telemetry) RecordNotification(success bool) {
	if !t.config.Enabled {
		return
	}

	outcome := "success"
	if !success {
		outcome = "failure"
	}
	notificationsSent.WithLabelValues(outcome).Inc()

	t.mu.Lock()
	defer t.mu.Unlock()
	if success {
		t.metrics.NotificationsSent++
	} else {
		t.metrics.NotificationsFailed++
	}
}

// RecordReminder records an emitted meeting reminder
func (t *Telemetry) RecordReminder() {
	if !t.config.Enabled {
		return
	}
	remindersFired.Inc()
}

// GetMetrics returns a snapshot of current metrics
func (t *Telemetry) GetMetrics() Metrics {
	t.mu.RLock()
	defer t.mu.RUnlock()

	metrics := *t.metrics
	metrics.AgentExecutions = make(map[string]int64)
	metrics.AgentSuccessRates = make(map[string]float64)
	metrics.AgentAverageTimes = make(map[string]time.Duration)
	metrics.LLMRequests = make(map[string]int64)
	metrics.LLMTokensUsed = make(map[string]int64)

	for k, v := range t.metrics.AgentExecutions {
		metrics.AgentExecutions[k] = v
	}
	for k, v := range t.metrics.AgentSuccessRates {
		metrics.AgentSuccessRates[k] = v
	}
	for k, v := range t.metrics.AgentAverageTimes {
		metrics.AgentAverageTimes[k] = v
	}
	for k, v := range t.metrics.LLMRequests {
		metrics.LLMRequests[k] = v
	}
	for k, v := range t.metrics.LLMTokensUsed {
		metrics.LLMTokensUsed[k] = v
	}

	return metrics
}

// GetCostSummary returns current cost summary
func (t *Telemetry) GetCostSummary() CostSummary {
	t.mu.RLock()
	defer t.mu.RUnlock()

	summary := CostSummary{
		TotalCost:   t.costTracker.TotalCost,
		TotalTokens: t.costTracker.TotalTokens,
		ModelCosts:  make(map[string]float64),
	}
	for k, v := range t.costTracker.ModelCosts {
		summary.ModelCosts[k] = v
	}
	return summary
}

// CostSummary provides a summary of costs
type CostSummary struct {
	TotalCost   float64
	TotalTokens int64
	ModelCosts  map[string]float64
}

func (t *Telemetry) startPeriodicReports() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		metrics := t.GetMetrics()
		costs := t.GetCostSummary()

		t.logger.Printf("Metrics Snapshot: Runs=%d/%d, AvgTime=%v, Notifications=%d, Reminders=%d, TotalCost=$%.4f",
			metrics.SuccessfulRuns, metrics.TotalRuns, metrics.AverageRunTime,
			metrics.NotificationsSent, metrics.RemindersFired, costs.TotalCost)
		for model, cost := range costs.ModelCosts {
			t.logger.Printf("  Model %s: $%.4f", model, cost)
		}
	}
}

// Shutdown logs a final report.
func (t *Telemetry) Shutdown() {
	metrics := t.GetMetrics()
	costs := t.GetCostSummary()

	t.logger.Printf("Final Report:")
	t.logger.Printf("  Total Runs: %d", metrics.TotalRuns)
	if metrics.TotalRuns > 0 {
		t.logger.Printf("  Success Rate: %.2f%%", float64(metrics.SuccessfulRuns)/float64(metrics.TotalRuns)*100)
	}
	t.logger.Printf("  Average Run Time: %v", metrics.AverageRunTime)
	t.logger.Printf("  Total Cost: $%.4f", costs.TotalCost)
	t.logger.Printf("  Total Tokens: %d", costs.TotalTokens)
}

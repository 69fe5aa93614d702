package core

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/mohammad-safakhou/daybrief/config"
	"github.com/mohammad-safakhou/daybrief/internal/agent/telemetry"
)

const notesSystemPrompt = `Create structured meeting notes in JSON format with:
- summary: Brief overview of the meeting
- key_decisions: List of decisions made
- action_items: List of action items with owners if mentioned
- important_topics: Main topics discussed
- next_steps: What happens next`

// NotesAgent turns a meeting transcript into structured notes and
// persists them as an external document. The in-memory note is the
// result; a failed document write is logged but does not invalidate it.
type NotesAgent struct {
	docs      DocumentStore
	gateway   *Gateway
	routing   config.LLMRoutingConfig
	workflow  config.WorkflowConfig
	telemetry *telemetry.Telemetry
	logger    *log.Logger
	now       func() time.Time
}

// NewNotesAgent creates a new meeting notes agent
func NewNotesAgent(cfg *config.Config, docs DocumentStore, gateway *Gateway, tele *telemetry.Telemetry) *NotesAgent {
	return &NotesAgent{
		docs:      docs,
		gateway:   gateway,
		routing:   cfg.LLM.Routing,
		workflow:  cfg.Workflow,
		telemetry: tele,
		logger:    log.New(log.Writer(), "[NOTES-AGENT] ", log.LstdFlags),
		now:       time.Now,
	}
}

// Name implements Agent.
func (a *NotesAgent) Name() string { return "notes" }

type notesAnalysis struct {
	Summary         string   `json:"summary"`
	KeyDecisions    []string `json:"key_decisions"`
	ActionItems     []string `json:"action_items"`
	ImportantTopics []string `json:"important_topics"`
	NextSteps       []string `json:"next_steps"`
}

// Execute structures the transcript into a MeetingNote. The returned
// note is always fully populated; Outcome records whether the model
// output parsed or the fallback path was taken.
func (a *NotesAgent) Execute(ctx context.Context, transcript string, meeting MeetingRecord) MeetingNote {
	start := a.now()

	title := meeting.Title
	if title == "" {
		title = "Unknown Meeting"
	}
	prompt := fmt.Sprintf("Meeting: %s\nTranscript: %s\n\nPlease analyze this meeting and provide structured notes.",
		title, transcript)

	model := routeModel(a.routing, a.routing.Notes)
	response := a.gateway.Complete(ctx, prompt, notesSystemPrompt, model)

	outcome := OutcomeStructured
	var analysis notesAnalysis
	if err := json.Unmarshal([]byte(extractFirstJSON(response)), &analysis); err != nil || response == "" {
		analysis = notesAnalysis{
			Summary:         truncate(response, a.workflow.NotesFallbackChars),
			KeyDecisions:    []string{},
			ActionItems:     []string{},
			ImportantTopics: []string{},
			NextSteps:       []string{},
		}
		outcome = OutcomeFallback
	}

	note := MeetingNote{
		MeetingID:    meeting.ID,
		Title:        meeting.Title,
		Date:         a.now(),
		Participants: meeting.Attendees,
		Summary:      analysis.Summary,
		ActionItems:  analysis.ActionItems,
		KeyDecisions: analysis.KeyDecisions,
		Outcome:      outcome,
	}

	// Best-effort persistence: the note stands even when the save fails.
	if err := a.save(ctx, note, analysis); err != nil {
		a.logger.Printf("failed to save notes document: %v", err)
	}

	a.telemetry.RecordAgentEvent(ctx, telemetry.AgentEvent{
		AgentName: a.Name(), StartTime: start, EndTime: a.now(),
		Duration: a.now().Sub(start), Success: true,
		Items: 1, Fallbacks: boolToInt(outcome == OutcomeFallback),
		ModelUsed: model,
	})
	return note
}

func (a *NotesAgent) save(ctx context.Context, note MeetingNote, analysis notesAnalysis) error {
	docTitle := fmt.Sprintf("Meeting Notes - %s - %s", note.Title, note.Date.Format("2006-01-02"))

	docID, err := a.docs.CreateDocument(ctx, docTitle)
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}

	if err := a.docs.AppendText(ctx, docID, formatNotesDocument(note, analysis)); err != nil {
		return fmt.Errorf("append content: %w", err)
	}

	a.logger.Printf("meeting notes saved: %s", docID)
	return nil
}

func formatNotesDocument(note MeetingNote, analysis notesAnalysis) string {
	var b strings.Builder
	b.WriteString("MEETING NOTES\n\n")
	fmt.Fprintf(&b, "Meeting: %s\n", note.Title)
	fmt.Fprintf(&b, "Date: %s\n", note.Date.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Participants: %s\n\n", strings.Join(note.Participants, ", "))

	b.WriteString("SUMMARY\n")
	b.WriteString(note.Summary)
	b.WriteString("\n\n")

	writeBulleted(&b, "KEY DECISIONS", note.KeyDecisions)
	writeBulleted(&b, "ACTION ITEMS", note.ActionItems)
	writeBulleted(&b, "IMPORTANT TOPICS", analysis.ImportantTopics)
	writeBulleted(&b, "NEXT STEPS", analysis.NextSteps)

	return b.String()
}

func writeBulleted(b *strings.Builder, heading string, items []string) {
	b.WriteString(heading)
	b.WriteString("\n")
	for _, item := range items {
		fmt.Fprintf(b, "• %s\n", item)
	}
	b.WriteString("\n")
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

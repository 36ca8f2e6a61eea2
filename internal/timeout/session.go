// Package timeout implements the guided timed reflection session engine: a
// bounded countdown clock, a prompt cursor synchronized to it, a per-prompt
// response store, and the controller that binds them into one lifecycle.
//
// The engine is deliberately free of wall-clock time and I/O. It advances
// only through explicit Tick calls from the hosting scheduler, which makes
// the whole lifecycle testable synchronously.
package timeout

import "clinsight/internal/catalog"

// Status is the session lifecycle state.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusRunning    Status = "running"
	StatusPaused     Status = "paused"
	StatusCompleted  Status = "completed"
)

// CaseContext carries the caller-supplied case framing. The engine treats
// both fields as opaque immutable strings for the life of a session.
type CaseContext struct {
	Description      string `json:"case_description"`
	WorkingDiagnosis string `json:"current_working_diagnosis"`
}

// Snapshot is a read-only view of the session, safe to serialize and stream
// to watchers.
type Snapshot struct {
	Status             Status `json:"status"`
	TemplateID         string `json:"template_id"`
	TemplateName       string `json:"template_name"`
	DurationSeconds    int    `json:"duration_seconds"`
	ElapsedSeconds     int    `json:"elapsed_seconds"`
	RemainingSeconds   int    `json:"remaining_seconds"`
	CurrentPromptIndex int    `json:"current_prompt_index"`
	CurrentPrompt      string `json:"current_prompt"`
	PromptCount        int    `json:"prompt_count"`
	PromptsAnswered    int    `json:"prompts_answered"`
}

func snapshotOf(status Status, tpl catalog.Template, clock *Clock, cursor *Cursor, responses *Responses) Snapshot {
	snap := Snapshot{
		Status:           status,
		TemplateID:       tpl.ID,
		TemplateName:     tpl.Name,
		DurationSeconds:  tpl.DurationSeconds,
		PromptCount:      len(tpl.Prompts),
		ElapsedSeconds:   clock.Elapsed(),
		RemainingSeconds: clock.Remaining(),
	}
	if status != StatusNotStarted {
		snap.CurrentPromptIndex = cursor.Index()
		if snap.CurrentPromptIndex < len(tpl.Prompts) {
			snap.CurrentPrompt = tpl.Prompts[snap.CurrentPromptIndex]
		}
		snap.PromptsAnswered = responses.Answered()
	}
	return snap
}

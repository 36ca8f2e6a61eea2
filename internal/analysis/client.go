// Package analysis is the boundary to the clinical-reasoning collaborator.
// It turns a compiled reflection document into structured feedback. Nothing
// here touches session state: a failed or cancelled request leaves the
// finished session intact so the caller can retry.
package analysis

import (
	"context"
	"errors"
)

// ErrRequest wraps any failure of the collaborator call.
var ErrRequest = errors.New("analysis: request failed")

// Request carries the compiled reflection document plus session metadata.
type Request struct {
	CaseDescription         string   `json:"case_description"`
	CurrentWorkingDiagnosis string   `json:"current_working_diagnosis"`
	TimeoutReflections      string   `json:"timeout_reflections"`
	Metadata                Metadata `json:"timeout_metadata"`
}

type Metadata struct {
	TemplateID      string  `json:"template_id"`
	DurationMinutes float64 `json:"duration_minutes"`
	Completed       bool    `json:"completed"`
	PromptsAnswered int     `json:"prompts_answered"`
}

// Result is the structured insight returned by the collaborator. The engine
// treats it as opaque data for its caller.
type Result struct {
	AlternativeDiagnoses  []string `json:"alternative_diagnoses_to_consider"`
	KeyQuestions          []string `json:"key_questions_to_ask"`
	RedFlags              []string `json:"red_flags_to_check"`
	NextSteps             []string `json:"next_steps_suggested"`
	CognitiveChecks       []string `json:"cognitive_checks"`
	TimeoutRecommendation string   `json:"timeout_recommendation"`
}

// Client is implemented by analysis providers.
type Client interface {
	Analyze(ctx context.Context, req Request) (Result, error)
	Close() error
}

package analysis

import (
	"strings"
	"testing"
)

func TestAnalysisPromptRendersSections(t *testing.T) {
	prompt := analysisPrompt()
	for _, sec := range []string{"[PURPOSE]", "[BACKGROUND]", "[OUTPUT]", "[CONSTRAINTS]", "[OUTPUT_FORMAT]"} {
		if !strings.Contains(prompt, sec) {
			t.Fatalf("expected section %s in prompt", sec)
		}
	}
}

func TestAnalysisPromptNamesEveryResultField(t *testing.T) {
	prompt := analysisPrompt()
	fields := []string{
		"alternative_diagnoses_to_consider",
		"key_questions_to_ask",
		"red_flags_to_check",
		"next_steps_suggested",
		"cognitive_checks",
		"timeout_recommendation",
	}
	for _, f := range fields {
		if !strings.Contains(prompt, f) {
			t.Fatalf("field %s missing from prompt", f)
		}
	}
}

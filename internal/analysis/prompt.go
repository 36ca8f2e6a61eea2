package analysis

import (
	"bytes"
	"fmt"
	"strings"
)

// promptField describes one output field the model must return.
type promptField struct {
	Name        string
	Type        string
	Description string
}

var resultFields = []promptField{
	{"alternative_diagnoses_to_consider", "[]string", "Plausible alternatives the clinician should weigh, most dangerous first."},
	{"key_questions_to_ask", "[]string", "History or exam questions that would most change the differential."},
	{"red_flags_to_check", "[]string", "Findings that must be actively ruled in or out before anchoring."},
	{"next_steps_suggested", "[]string", "Concrete, ordered next actions."},
	{"cognitive_checks", "[]string", "Specific cognitive biases the reflections suggest, with one-line countermeasures."},
	{"timeout_recommendation", "string", "One short paragraph: continue with the working diagnosis, broaden, or escalate."},
}

// analysisPrompt renders the system prompt for the collaborator model.
// Sections follow the [TITLE] block convention so the model output stays
// anchored to the requested JSON fields.
func analysisPrompt() string {
	var buf bytes.Buffer
	writeSection(&buf, "PURPOSE",
		"You review a clinician's diagnostic timeout: a short structured pause in which they "+
			"re-examined their working diagnosis. Produce structured feedback on their reasoning.")
	writeSection(&buf, "BACKGROUND",
		"The input contains the case description, the current working diagnosis, and the "+
			"clinician's timed reflections. Prompts marked as having no recorded response were "+
			"skipped; treat skipped prompts as potential blind spots, not as absent concerns.")
	writeSection(&buf, "OUTPUT", formatFields(resultFields))
	writeSection(&buf, "CONSTRAINTS", formatList([]string{
		"Base every point on the supplied case and reflections; do not invent findings.",
		"Never state or imply a definitive diagnosis; this is decision support for a clinician.",
		"Keep each list to at most five items.",
	}))
	writeSection(&buf, "OUTPUT_FORMAT", "Return a single JSON object with exactly the fields above. JSON only, no markdown.")
	return strings.TrimSpace(buf.String()) + "\n"
}

func formatFields(fields []promptField) string {
	var b strings.Builder
	for _, f := range fields {
		fmt.Fprintf(&b, "- %s (%s): %s\n", f.Name, f.Type, f.Description)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatList(items []string) string {
	var b strings.Builder
	for _, item := range items {
		fmt.Fprintf(&b, "- %s\n", item)
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeSection(buf *bytes.Buffer, title, body string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	fmt.Fprintf(buf, "[%s]\n%s\n\n", title, body)
}

package timeout

import (
	"fmt"
	"strings"

	"clinsight/internal/catalog"
)

// UnansweredPlaceholder marks prompts that were never answered. The analysis
// collaborator relies on skipped prompts being visible, so the compiler
// always emits one block per prompt and never omits an unanswered one.
const UnansweredPlaceholder = "(no response recorded)"

// CompileSummary renders a finished session into the reflection document
// sent for analysis. Pure function: same inputs, same output.
func CompileSummary(cc CaseContext, tpl catalog.Template, responses map[int]string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Diagnostic timeout reflection: %s\n\n", tpl.Name)
	writeBlock(&b, "CASE", cc.Description)
	writeBlock(&b, "WORKING DIAGNOSIS", cc.WorkingDiagnosis)

	b.WriteString("[REFLECTIONS]\n")
	for i, prompt := range tpl.Prompts {
		fmt.Fprintf(&b, "%d. %s\n", i+1, prompt)
		answer, ok := responses[i]
		if !ok || strings.TrimSpace(answer) == "" {
			answer = UnansweredPlaceholder
		}
		fmt.Fprintf(&b, "   %s\n", strings.ReplaceAll(strings.TrimSpace(answer), "\n", "\n   "))
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

func writeBlock(b *strings.Builder, title, body string) {
	body = strings.TrimSpace(body)
	if body == "" {
		return
	}
	fmt.Fprintf(b, "[%s]\n%s\n\n", title, body)
}

package catalog

// BuiltinTemplates returns the seed reflection sets shipped with the
// service. The store falls back to these when its backing storage is empty.
func BuiltinTemplates() []Template {
	return []Template{
		{
			ID:              "standard-timeout",
			Name:            "Standard Diagnostic Timeout",
			DurationSeconds: 300,
			Category:        "general",
			Complexity:      "moderate",
			Prompts: []string{
				"Summarize the case in one or two sentences. What is the working diagnosis?",
				"What findings, if any, do not fit the working diagnosis?",
				"What else could this be? List at least two alternatives.",
				"Is there a can't-miss diagnosis you have not yet ruled out?",
				"What would change your mind, and what is the next step to check it?",
			},
		},
		{
			ID:              "rapid-recheck",
			Name:            "Rapid Recheck",
			DurationSeconds: 120,
			Category:        "general",
			Complexity:      "low",
			Prompts: []string{
				"State the working diagnosis and the single strongest finding behind it.",
				"Name one alternative that would be dangerous to miss.",
				"Was any data accepted second-hand without verification?",
				"What is the one test or question that best separates the options?",
			},
		},
		{
			ID:              "complex-case",
			Name:            "Complex Case Review",
			DurationSeconds: 600,
			Category:        "complex",
			Complexity:      "high",
			Prompts: []string{
				"Restate the presenting problem without using the referral diagnosis.",
				"List every active finding, including ones attributed to chronic disease.",
				"Which findings are explained by the working diagnosis? Which are not?",
				"Could more than one process be active at once?",
				"What cognitive shortcuts might be operating here (anchoring, availability, framing)?",
				"Which can't-miss diagnoses remain open, and what excludes each?",
				"Write the next three concrete steps, in order.",
			},
		},
	}
}

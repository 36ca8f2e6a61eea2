// Package catalog holds the read-only reflection template definitions: a
// bounded duration, an ordered prompt list, and descriptive metadata. The
// session engine snapshots a template at start; later catalog edits never
// affect a running session.
package catalog

import "fmt"

type Template struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	DurationSeconds int      `json:"duration_seconds"`
	Prompts         []string `json:"prompts"`
	Category        string   `json:"category"`
	Complexity      string   `json:"complexity"`
}

// Clone returns a deep copy. The prompts slice is duplicated so a snapshot
// cannot be mutated through the original.
func (t Template) Clone() Template {
	out := t
	out.Prompts = append([]string(nil), t.Prompts...)
	return out
}

func (t Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("catalog: template id is required")
	}
	if t.DurationSeconds <= 0 {
		return fmt.Errorf("catalog: template %s: duration must be positive, got %d", t.ID, t.DurationSeconds)
	}
	if len(t.Prompts) == 0 {
		return fmt.Errorf("catalog: template %s: at least one prompt is required", t.ID)
	}
	return nil
}

// DurationMinutes converts the planned duration for analysis metadata.
func (t Template) DurationMinutes() float64 {
	return float64(t.DurationSeconds) / 60.0
}

package timeout

import (
	"fmt"
	"strings"

	"clinsight/internal/catalog"
)

// Controller is the session state machine. It owns the clock, the cursor and
// the response store; nothing else may write to any of them, so elapsed time
// and the current prompt index can never drift apart.
//
// A controller hosts at most one session at a time. It is not safe for
// concurrent use; the hosting service serializes access.
type Controller struct {
	status    Status
	template  catalog.Template
	caseCtx   CaseContext
	clock     Clock
	cursor    Cursor
	responses *Responses
}

func NewController() *Controller {
	return &Controller{
		status:    StatusNotStarted,
		responses: NewResponses(),
	}
}

// Start validates inputs, snapshots the template and begins a new session.
// Validation failures leave any prior session untouched. Starting over a
// Running or Paused session fails with ErrSessionActive; a Completed session
// must be discarded with Reset first.
func (c *Controller) Start(tpl catalog.Template, cc CaseContext) error {
	if c.status == StatusRunning || c.status == StatusPaused {
		return fmt.Errorf("%w: stop or reset it before starting another", ErrSessionActive)
	}
	if c.status == StatusCompleted {
		return fmt.Errorf("%w: reset the completed session before starting another", ErrSessionActive)
	}
	if strings.TrimSpace(cc.Description) == "" {
		return fmt.Errorf("%w: case description is empty", ErrValidation)
	}
	if err := tpl.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	snapshot := tpl.Clone()
	if err := c.clock.Start(snapshot.DurationSeconds); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	c.template = snapshot
	c.caseCtx = cc
	c.cursor.Reset(len(snapshot.Prompts), snapshot.DurationSeconds)
	c.responses = NewResponses()
	c.status = StatusRunning
	return nil
}

// Tick advances the session by one second. Only meaningful while Running;
// in any other state it is a safe no-op, so duplicate or late ticks from the
// hosting scheduler cannot corrupt elapsed time.
func (c *Controller) Tick() {
	if c.status != StatusRunning {
		return
	}
	c.clock.Tick(1)
	c.cursor.Sync(c.clock.Elapsed())
	if c.clock.Expired() {
		c.status = StatusCompleted
	}
}

// Pause freezes the clock. No-op unless Running.
func (c *Controller) Pause() {
	if c.status != StatusRunning {
		return
	}
	c.clock.Pause()
	c.status = StatusPaused
}

// Resume restarts the clock. No-op unless Paused.
func (c *Controller) Resume() {
	if c.status != StatusPaused {
		return
	}
	c.clock.Resume()
	c.status = StatusRunning
}

// Stop ends the session early, keeping whatever responses exist. No-op
// unless Running or Paused.
func (c *Controller) Stop() {
	if c.status != StatusRunning && c.status != StatusPaused {
		return
	}
	c.clock.Pause()
	c.status = StatusCompleted
}

// Reset discards the session from any state and returns to NotStarted.
func (c *Controller) Reset() {
	c.status = StatusNotStarted
	c.template = catalog.Template{}
	c.caseCtx = CaseContext{}
	c.clock = Clock{}
	c.cursor = Cursor{}
	c.responses = NewResponses()
}

// SetResponse records an answer for a prompt. Valid in any started state,
// including Completed, so answers can be revised before analysis.
func (c *Controller) SetResponse(index int, text string) error {
	if c.status == StatusNotStarted {
		return ErrNoSession
	}
	if index < 0 || index >= len(c.template.Prompts) {
		return fmt.Errorf("%w: %d (template has %d prompts)", ErrIndexOutOfRange, index, len(c.template.Prompts))
	}
	c.responses.Set(index, text)
	return nil
}

// SetPromptIndex moves the cursor manually. Valid in any started state.
func (c *Controller) SetPromptIndex(index int) error {
	if c.status == StatusNotStarted {
		return ErrNoSession
	}
	if index < 0 || index >= len(c.template.Prompts) {
		return fmt.Errorf("%w: %d (template has %d prompts)", ErrIndexOutOfRange, index, len(c.template.Prompts))
	}
	c.cursor.Seek(index, c.clock.Elapsed())
	return nil
}

// NextPrompt and PreviousPrompt browse manually, clamped to bounds.
func (c *Controller) NextPrompt() {
	if c.status == StatusNotStarted {
		return
	}
	c.cursor.Next(c.clock.Elapsed())
}

func (c *Controller) PreviousPrompt() {
	if c.status == StatusNotStarted {
		return
	}
	c.cursor.Previous(c.clock.Elapsed())
}

func (c *Controller) Status() Status { return c.status }

// Template returns the session's template snapshot (a copy).
func (c *Controller) Template() catalog.Template { return c.template.Clone() }

func (c *Controller) Case() CaseContext { return c.caseCtx }

// Responses returns a copy of the recorded answers.
func (c *Controller) Responses() map[int]string { return c.responses.Snapshot() }

func (c *Controller) Snapshot() Snapshot {
	return snapshotOf(c.status, c.template, &c.clock, &c.cursor, c.responses)
}

// Completed reports whether the session ran to its full duration rather than
// being stopped early.
func (c *Controller) Completed() bool {
	return c.status == StatusCompleted && c.clock.Expired()
}

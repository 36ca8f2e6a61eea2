package timeout

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinsight/internal/catalog"
)

func testTemplate() catalog.Template {
	return catalog.Template{
		ID:              "standard-timeout",
		Name:            "Standard Diagnostic Timeout",
		DurationSeconds: 120,
		Category:        "general",
		Complexity:      "moderate",
		Prompts: []string{
			"Summarize the case.",
			"What does not fit?",
			"What else could this be?",
			"What is the next step?",
		},
	}
}

func testCase() CaseContext {
	return CaseContext{
		Description:      "58M with pleuritic chest pain and mild troponin elevation.",
		WorkingDiagnosis: "NSTEMI",
	}
}

func startedController(t *testing.T) *Controller {
	t.Helper()
	c := NewController()
	require.NoError(t, c.Start(testTemplate(), testCase()))
	return c
}

func TestControllerStartValidation(t *testing.T) {
	c := NewController()

	err := c.Start(testTemplate(), CaseContext{Description: "   "})
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, StatusNotStarted, c.Status())

	err = c.Start(catalog.Template{}, testCase())
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, StatusNotStarted, c.Status())

	bad := testTemplate()
	bad.Prompts = nil
	err = c.Start(bad, testCase())
	require.ErrorIs(t, err, ErrValidation)

	require.NoError(t, c.Start(testTemplate(), testCase()))
	snap := c.Snapshot()
	assert.Equal(t, StatusRunning, snap.Status)
	assert.Equal(t, 0, snap.ElapsedSeconds)
	assert.Equal(t, 0, snap.CurrentPromptIndex)
	assert.Equal(t, 120, snap.RemainingSeconds)
}

func TestControllerStartFailureLeavesSessionUntouched(t *testing.T) {
	c := startedController(t)
	for i := 0; i < 40; i++ {
		c.Tick()
	}
	require.NoError(t, c.SetResponse(1, "the pain is reproducible on palpation"))
	before := c.Snapshot()

	err := c.Start(testTemplate(), CaseContext{})
	require.ErrorIs(t, err, ErrSessionActive)
	assert.Equal(t, before, c.Snapshot())

	// Even from a non-active state, bad input must not create a partial session.
	c.Stop()
	c.Reset()
	err = c.Start(testTemplate(), CaseContext{Description: ""})
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, StatusNotStarted, c.Status())
}

func TestControllerTemplateSnapshotIsolation(t *testing.T) {
	tpl := testTemplate()
	c := NewController()
	require.NoError(t, c.Start(tpl, testCase()))

	// Catalog edits after start must not leak into the running session.
	tpl.Prompts[0] = "EDITED"
	tpl.Name = "EDITED"

	got := c.Template()
	assert.Equal(t, "Summarize the case.", got.Prompts[0])
	assert.Equal(t, "Standard Diagnostic Timeout", got.Name)
}

func TestControllerTickAdvancesAndCompletes(t *testing.T) {
	c := startedController(t)

	// D=120, N=4: prompt index follows 30s slots.
	for i := 0; i < 45; i++ {
		c.Tick()
	}
	snap := c.Snapshot()
	assert.Equal(t, 45, snap.ElapsedSeconds)
	assert.Equal(t, 1, snap.CurrentPromptIndex)

	for i := 0; i < 74; i++ {
		c.Tick()
	}
	snap = c.Snapshot()
	assert.Equal(t, 119, snap.ElapsedSeconds)
	assert.Equal(t, 3, snap.CurrentPromptIndex)
	assert.Equal(t, StatusRunning, snap.Status)

	c.Tick()
	snap = c.Snapshot()
	assert.Equal(t, StatusCompleted, snap.Status)
	assert.Equal(t, 120, snap.ElapsedSeconds)
	assert.Equal(t, 3, snap.CurrentPromptIndex)
	assert.True(t, c.Completed())

	// Expiry is final: more ticks change nothing.
	c.Tick()
	c.Tick()
	assert.Equal(t, snap, c.Snapshot())
}

func TestControllerTickIsNoOpOutsideRunning(t *testing.T) {
	c := NewController()
	c.Tick() // NotStarted
	assert.Equal(t, StatusNotStarted, c.Status())

	require.NoError(t, c.Start(testTemplate(), testCase()))
	for i := 0; i < 50; i++ {
		c.Tick()
	}
	c.Pause()
	for i := 0; i < 30; i++ {
		c.Tick()
	}
	assert.Equal(t, 50, c.Snapshot().ElapsedSeconds)
	assert.Equal(t, 70, c.Snapshot().RemainingSeconds)

	c.Resume()
	assert.Equal(t, 70, c.Snapshot().RemainingSeconds)
	c.Tick()
	assert.Equal(t, 69, c.Snapshot().RemainingSeconds)
}

func TestControllerPauseResumeEdges(t *testing.T) {
	c := NewController()
	c.Pause() // NotStarted: no-op
	c.Resume()
	assert.Equal(t, StatusNotStarted, c.Status())

	require.NoError(t, c.Start(testTemplate(), testCase()))
	c.Resume() // Running: no-op
	assert.Equal(t, StatusRunning, c.Status())
	c.Pause()
	c.Pause() // double pause: no-op
	assert.Equal(t, StatusPaused, c.Status())

	c.Stop()
	c.Pause() // Completed: no-op
	c.Resume()
	assert.Equal(t, StatusCompleted, c.Status())
}

func TestControllerStopKeepsResponses(t *testing.T) {
	c := startedController(t)
	c.Tick()
	require.NoError(t, c.SetResponse(0, "chest pain, troponin bump"))
	c.Stop()

	assert.Equal(t, StatusCompleted, c.Status())
	assert.False(t, c.Completed(), "stopped early, did not run to the bound")
	assert.Equal(t, map[int]string{0: "chest pain, troponin bump"}, c.Responses())

	// Stop from Paused also completes.
	c2 := startedController(t)
	c2.Pause()
	c2.Stop()
	assert.Equal(t, StatusCompleted, c2.Status())
}

func TestControllerSetResponse(t *testing.T) {
	c := NewController()
	err := c.SetResponse(0, "too early")
	require.ErrorIs(t, err, ErrNoSession)

	require.NoError(t, c.Start(testTemplate(), testCase()))
	require.NoError(t, c.SetResponse(0, "first"))
	require.NoError(t, c.SetResponse(1, "second"))
	require.NoError(t, c.SetResponse(3, "fourth"))

	// Out-of-range indices are caller bugs.
	require.ErrorIs(t, c.SetResponse(4, "x"), ErrIndexOutOfRange)
	require.ErrorIs(t, c.SetResponse(-1, "x"), ErrIndexOutOfRange)

	// Overwriting one slot never drops the others.
	require.NoError(t, c.SetResponse(2, "third"))
	assert.Equal(t, map[int]string{0: "first", 1: "second", 2: "third", 3: "fourth"}, c.Responses())

	// Revising after completion is allowed.
	c.Stop()
	require.NoError(t, c.SetResponse(0, "revised"))
	assert.Equal(t, "revised", c.Responses()[0])
}

func TestControllerManualNavigation(t *testing.T) {
	c := startedController(t)
	c.NextPrompt()
	c.NextPrompt()
	assert.Equal(t, 2, c.Snapshot().CurrentPromptIndex)

	require.ErrorIs(t, c.SetPromptIndex(9), ErrIndexOutOfRange)
	require.NoError(t, c.SetPromptIndex(0))
	assert.Equal(t, 0, c.Snapshot().CurrentPromptIndex)

	// Manual position survives ticks within the current slot, then the
	// clock takes over at the next slot boundary.
	for i := 0; i < 29; i++ {
		c.Tick()
	}
	assert.Equal(t, 0, c.Snapshot().CurrentPromptIndex)
	c.Tick() // elapsed 30: slot boundary
	assert.Equal(t, 1, c.Snapshot().CurrentPromptIndex)
}

func TestControllerResetReturnsFreshEngine(t *testing.T) {
	c := startedController(t)
	for i := 0; i < 70; i++ {
		c.Tick()
	}
	require.NoError(t, c.SetResponse(2, "old answer"))
	c.Stop()
	c.Reset()

	assert.Equal(t, StatusNotStarted, c.Status())
	if err := c.SetResponse(0, "x"); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession after reset, got %v", err)
	}

	require.NoError(t, c.Start(testTemplate(), testCase()))
	snap := c.Snapshot()
	assert.Equal(t, 0, snap.ElapsedSeconds)
	assert.Equal(t, 0, snap.CurrentPromptIndex)
	assert.Empty(t, c.Responses())
}

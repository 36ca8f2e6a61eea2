package timeout

// Cursor resolves which prompt index is currently due. In auto mode the total
// duration is partitioned into one equal slot per prompt and the due index is
// floor(elapsed/slotLength), clamped to the last prompt.
//
// Manual navigation suspends auto-advance until the next slot boundary: a
// user who jumps back to re-read a prompt keeps their position for the rest
// of the current slot, and the clock takes over again as soon as the
// auto-derived slot moves on.
type Cursor struct {
	promptCount int
	duration    int
	index       int

	// manualSlot is the auto-derived slot at the moment of the last manual
	// move, or -1 when the cursor is following the clock.
	manualSlot int
}

func (c *Cursor) Reset(promptCount, durationSeconds int) {
	c.promptCount = promptCount
	c.duration = durationSeconds
	c.index = 0
	c.manualSlot = -1
}

// Index returns the current prompt index.
func (c *Cursor) Index() int { return c.index }

// slotFor computes floor(elapsed / (duration/promptCount)) in exact integer
// arithmetic, clamped to [0, promptCount-1].
func (c *Cursor) slotFor(elapsed int) int {
	if c.promptCount <= 0 || c.duration <= 0 {
		return 0
	}
	slot := elapsed * c.promptCount / c.duration
	if slot >= c.promptCount {
		slot = c.promptCount - 1
	}
	if slot < 0 {
		slot = 0
	}
	return slot
}

// Sync recomputes the auto-derived index for the given elapsed time. While a
// manual override is in effect it only yields once the auto slot has moved
// past the slot the override happened in.
func (c *Cursor) Sync(elapsed int) {
	auto := c.slotFor(elapsed)
	if c.manualSlot >= 0 && auto == c.manualSlot {
		return
	}
	c.manualSlot = -1
	c.index = auto
}

// Seek moves the cursor to the given index, clamped to bounds, and records
// the manual override against the current elapsed time.
func (c *Cursor) Seek(index, elapsed int) {
	if index < 0 {
		index = 0
	}
	if index > c.promptCount-1 {
		index = c.promptCount - 1
	}
	c.index = index
	c.manualSlot = c.slotFor(elapsed)
}

func (c *Cursor) Next(elapsed int)     { c.Seek(c.index+1, elapsed) }
func (c *Cursor) Previous(elapsed int) { c.Seek(c.index-1, elapsed) }

package timeout

import "fmt"

// Clock tracks elapsed seconds within a bounded total. It has no notion of
// wall-clock time: it only moves when Tick is called, so whatever scheduler
// hosts the session (a ticker, a UI loop, a test) drives it explicitly.
// Time spent paused therefore has zero effect on elapsed.
type Clock struct {
	duration int
	elapsed  int
	running  bool
}

// Start resets the clock to zero and begins counting against the given bound.
func (c *Clock) Start(durationSeconds int) error {
	if durationSeconds <= 0 {
		return fmt.Errorf("timeout: clock duration must be positive, got %d", durationSeconds)
	}
	c.duration = durationSeconds
	c.elapsed = 0
	c.running = true
	return nil
}

// Tick advances elapsed by delta seconds, clamped to the duration bound.
// It is a no-op when the clock is paused or expired, so duplicate or late
// ticks can never double-count time.
func (c *Clock) Tick(delta int) {
	if !c.running || delta <= 0 {
		return
	}
	c.elapsed += delta
	if c.elapsed >= c.duration {
		c.elapsed = c.duration
		c.running = false
	}
}

// Pause stops the clock without touching elapsed. No-op if already stopped.
func (c *Clock) Pause() {
	c.running = false
}

// Resume restarts the clock. No-op once the bound has been reached.
func (c *Clock) Resume() {
	if c.elapsed < c.duration {
		c.running = true
	}
}

func (c *Clock) Elapsed() int { return c.elapsed }

func (c *Clock) Duration() int { return c.duration }

// Remaining reports the seconds left before expiry, never negative.
func (c *Clock) Remaining() int { return c.duration - c.elapsed }

// Expired reports whether elapsed has reached the duration bound.
func (c *Clock) Expired() bool { return c.duration > 0 && c.elapsed >= c.duration }

func (c *Clock) Running() bool { return c.running }

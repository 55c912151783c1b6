package animation

import "math"

// Clock is a scalar animation time advanced by a signed step once per tick.
// A bounded clock oscillates: when time reaches a bound while moving outward, the step reverses.
type Clock struct {
	time    float32
	step    float32
	bounded bool
	lo, hi  float32
}

// NewClock creates a clock starting at zero.
//
// Parameters:
//   - step: the amount added per tick; its sign is the initial direction
//   - options: functional options (bounds, start time)
//
// Returns:
//   - *Clock: the clock
func NewClock(step float32, options ...ClockBuilderOption) *Clock {
	c := &Clock{step: step}
	for _, opt := range options {
		opt(c)
	}
	if c.bounded {
		c.time = min(max(c.time, c.lo), c.hi)
	}
	return c
}

// Advance moves the clock one tick and returns the new time.
// For a bounded clock the direction is set before stepping: at or beyond hi the step is made
// negative, at or beyond lo it is made positive. Setting the sign rather than toggling it keeps
// repeated boundary hits from flipping the clock back outward. The result is clamped to [lo, hi].
func (c *Clock) Advance() float32 {
	if c.bounded {
		switch {
		case c.time >= c.hi:
			c.step = -abs32(c.step)
		case c.time <= c.lo:
			c.step = abs32(c.step)
		}
	}
	c.time += c.step
	if c.bounded {
		c.time = min(max(c.time, c.lo), c.hi)
	}
	return c.time
}

// Time returns the current time.
func (c *Clock) Time() float32 {
	return c.time
}

// Step returns the signed step applied by the next Advance (before any boundary reflection).
func (c *Clock) Step() float32 {
	return c.step
}

// Bounds returns the oscillation range and whether the clock is bounded.
func (c *Clock) Bounds() (lo, hi float32, ok bool) {
	return c.lo, c.hi, c.bounded
}

// Reset puts the clock back to zero (or lo, when bounded) moving in the positive direction.
func (c *Clock) Reset() {
	c.time = 0
	if c.bounded {
		c.time = min(max(0, c.lo), c.hi)
	}
	c.step = abs32(c.step)
}

func abs32(v float32) float32 {
	return float32(math.Abs(float64(v)))
}

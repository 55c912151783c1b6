package animation

// ClockBuilderOption is a functional option for configuring a Clock.
type ClockBuilderOption func(*Clock)

// WithBounds makes the clock oscillate inside the closed range [lo, hi].
// Bounds given in the wrong order are swapped.
//
// Parameters:
//   - lo: the lower bound
//   - hi: the upper bound
//
// Returns:
//   - ClockBuilderOption: the option
func WithBounds(lo, hi float32) ClockBuilderOption {
	return func(c *Clock) {
		if lo > hi {
			lo, hi = hi, lo
		}
		c.lo, c.hi = lo, hi
		c.bounded = true
	}
}

// WithStartTime sets the time before the first tick.
func WithStartTime(t float32) ClockBuilderOption {
	return func(c *Clock) {
		c.time = t
	}
}

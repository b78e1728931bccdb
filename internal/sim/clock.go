package sim

// Clock turns variable frame times into a whole number of fixed physics
// steps, carrying the remainder to the next frame.
type Clock struct {
	step        float64
	maxSubsteps int
	accumulator float64
	dropped     float64
}

func NewClock(step float64, maxSubsteps int) *Clock {
	if maxSubsteps <= 0 {
		maxSubsteps = 1
	}
	return &Clock{step: step, maxSubsteps: maxSubsteps}
}

func (c *Clock) Step() float64 {
	return c.step
}

// Advance adds dt and returns how many fixed steps are due. When more than
// maxSubsteps are due the excess time is discarded so a stall does not
// snowball into ever longer frames.
func (c *Clock) Advance(dt float64) int {
	if dt <= 0 || c.step <= 0 {
		return 0
	}
	c.accumulator += dt
	steps := int(c.accumulator / c.step)
	if steps > c.maxSubsteps {
		c.dropped += float64(steps-c.maxSubsteps) * c.step
		steps = c.maxSubsteps
	}
	c.accumulator -= float64(steps) * c.step
	if c.accumulator >= c.step {
		c.accumulator = 0
	}
	return steps
}

// Alpha is the fraction of a step left in the accumulator.
func (c *Clock) Alpha() float64 {
	if c.step <= 0 {
		return 0
	}
	return c.accumulator / c.step
}

// Dropped is the total simulated time discarded by the substep cap.
func (c *Clock) Dropped() float64 {
	return c.dropped
}

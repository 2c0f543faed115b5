package color

import (
	"math"
	"time"
)

// DefaultTransitionDuration is how long a colour change takes to settle.
const DefaultTransitionDuration = 300 * time.Millisecond

// EaseOutExpo maps progress p in [0,1] onto a curve that starts fast and
// settles slowly. It returns exactly 1 once p reaches 1.
func EaseOutExpo(p float64) float64 {
	p = clamp(p, 0, 1)
	if p == 1 {
		return 1
	}
	return 1 - math.Pow(2, -10*p)
}

// Transition animates a colour towards a target. The zero value is unusable;
// create one with NewTransition.
type Transition struct {
	from     ColorHSL
	to       ColorHSL
	start    time.Time
	duration time.Duration
}

// NewTransition starts settled on c.
func NewTransition(c ColorHSL, duration time.Duration) *Transition {
	if duration <= 0 {
		duration = DefaultTransitionDuration
	}
	return &Transition{from: c, to: c, duration: duration}
}

// SetTarget begins a new animation from the colour shown at now. A target
// equal to the current one is ignored.
func (t *Transition) SetTarget(c ColorHSL, now time.Time) {
	if c == t.to {
		return
	}
	t.from = t.At(now)
	t.to = c
	t.start = now
}

// Progress returns the clamped linear progress at now.
func (t *Transition) Progress(now time.Time) float64 {
	if t.start.IsZero() {
		return 1
	}
	return clamp(float64(now.Sub(t.start))/float64(t.duration), 0, 1)
}

// At returns the eased colour at now.
func (t *Transition) At(now time.Time) ColorHSL {
	return Lerp(t.from, t.to, EaseOutExpo(t.Progress(now)))
}

// Target returns the colour being animated towards.
func (t *Transition) Target() ColorHSL {
	return t.to
}

// Done reports whether the animation has reached its target.
func (t *Transition) Done(now time.Time) bool {
	return t.Progress(now) >= 1
}

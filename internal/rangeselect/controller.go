package rangeselect

import (
	"opsboard/internal/timeofday"
)

type Handle int

const (
	HandleNone Handle = iota
	HandleStart
	HandleEnd
)

func (h Handle) String() string {
	switch h {
	case HandleStart:
		return "start"
	case HandleEnd:
		return "end"
	default:
		return "none"
	}
}

// Bounds is the horizontal extent of the track, in pointer units.
type Bounds struct {
	Left  float64
	Width float64
}

// Rejection describes a drag candidate that would have inverted the range.
type Rejection struct {
	Handle    Handle
	Candidate timeofday.TimeOfDay
	Range     timeofday.Range
}

// Controller owns the selected range and the current drag session.
//
// It is not safe for concurrent use; callers drive it from a single event loop.
type Controller struct {
	rng    timeofday.Range
	active Handle

	// OnChange receives the committed range once per completed drag.
	OnChange func(timeofday.Range)
	// OnRejectedMove, when set, is told about every candidate that was ignored.
	OnRejectedMove func(Rejection)
}

// New returns a controller on the default 06:00-20:00 window.
func New() *Controller {
	return &Controller{rng: timeofday.DefaultRange()}
}

// NewWithRange falls back to the default window when initial is not a valid range.
func NewWithRange(initial timeofday.Range) *Controller {
	c := New()
	if initial.Validate() == nil {
		c.rng = initial
	}
	return c
}

func (c *Controller) Range() timeofday.Range { return c.rng }

func (c *Controller) Active() Handle { return c.active }

// Dragging reports whether a drag session is in progress.
func (c *Controller) Dragging() bool { return c.active != HandleNone }

// SetRange replaces the range without notifying OnChange. Invalid ranges are ignored.
func (c *Controller) SetRange(r timeofday.Range) bool {
	if r.Validate() != nil {
		return false
	}
	c.rng = r
	return true
}

// PointerDown begins a drag on h. A second pointer-down simply retargets the session.
func (c *Controller) PointerDown(h Handle) {
	if h != HandleStart && h != HandleEnd {
		return
	}
	c.active = h
}

// PointerMove moves the active handle to the pointer position. It reports
// whether the candidate was applied.
func (c *Controller) PointerMove(x float64, b Bounds) bool {
	if c.active == HandleNone {
		return false
	}
	return c.apply(c.active, timeofday.FromPercentage(Percentage(x, b)))
}

// PointerUp ends the drag session and commits the range when one was active.
func (c *Controller) PointerUp() {
	if c.active == HandleNone {
		return
	}
	c.active = HandleNone
	if c.OnChange != nil {
		c.OnChange(c.rng)
	}
}

// Step nudges h by delta minutes and commits immediately when the range
// changed. This is the keyboard equivalent of a full pointer-down/move/up
// cycle; a rejected or clamped-away step commits nothing.
func (c *Controller) Step(h Handle, delta int) bool {
	var cur timeofday.TimeOfDay
	switch h {
	case HandleStart:
		cur = c.rng.Start
	case HandleEnd:
		cur = c.rng.End
	default:
		return false
	}
	ok := c.apply(h, cur.Add(delta))
	if ok && c.OnChange != nil {
		c.OnChange(c.rng)
	}
	return ok
}

func (c *Controller) apply(h Handle, cand timeofday.TimeOfDay) bool {
	switch h {
	case HandleStart:
		if cand.Equal(c.rng.Start) {
			return false
		}
		if cand.Before(c.rng.End) {
			c.rng.Start = cand
			return true
		}
	case HandleEnd:
		if cand.Equal(c.rng.End) {
			return false
		}
		if cand.After(c.rng.Start) {
			c.rng.End = cand
			return true
		}
	}
	if c.OnRejectedMove != nil {
		c.OnRejectedMove(Rejection{Handle: h, Candidate: cand, Range: c.rng})
	}
	return false
}

// Percentage converts a pointer x into a clamped position on the track.
func Percentage(x float64, b Bounds) float64 {
	if b.Width <= 0 {
		return 0
	}
	p := (x - b.Left) / b.Width * 100
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

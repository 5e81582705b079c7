package timeofday

import (
	"fmt"
	"strings"
)

// Range is an ordered pair of times with Start strictly before End.
type Range struct {
	Start TimeOfDay `json:"start" yaml:"start"`
	End   TimeOfDay `json:"end" yaml:"end"`
}

// DefaultRange is the window a timeline starts with (06:00-20:00).
func DefaultRange() Range {
	return Range{Start: TimeOfDay{Hour: 6}, End: TimeOfDay{Hour: 20}}
}

func NewRange(start, end TimeOfDay) (Range, error) {
	r := Range{Start: start, End: end}
	if err := r.Validate(); err != nil {
		return Range{}, err
	}
	return r, nil
}

func (r Range) Validate() error {
	if err := r.Start.Validate(); err != nil {
		return err
	}
	if err := r.End.Validate(); err != nil {
		return err
	}
	if !r.Start.Before(r.End) {
		return fmt.Errorf("%w: start %s must be before end %s", ErrInvalidRange, r.Start, r.End)
	}
	return nil
}

// ParseRange parses "HH:MM-HH:MM".
func ParseRange(s string) (Range, error) {
	a, b, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return Range{}, fmt.Errorf("%w: %q (want HH:MM-HH:MM)", ErrInvalidRange, s)
	}
	start, err := Parse(a)
	if err != nil {
		return Range{}, err
	}
	end, err := Parse(b)
	if err != nil {
		return Range{}, err
	}
	return NewRange(start, end)
}

func (r Range) String() string { return r.Start.String() + "-" + r.End.String() }

// Duration is the length of the range in minutes.
func (r Range) Duration() int { return r.End.Minutes() - r.Start.Minutes() }

// Contains reports whether t falls in [Start, End).
func (r Range) Contains(t TimeOfDay) bool {
	m := t.Minutes()
	return m >= r.Start.Minutes() && m < r.End.Minutes()
}

// Overlap returns the number of minutes shared by a and b.
func Overlap(a, b Range) int {
	lo := max(a.Start.Minutes(), b.Start.Minutes())
	hi := min(a.End.Minutes(), b.End.Minutes())
	if hi <= lo {
		return 0
	}
	return hi - lo
}

package timeofday

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	MinutesPerDay = 24 * 60
	// EndOfDayHour marks the exclusive end-of-day sentinel (24:00).
	EndOfDayHour = 24
)

var (
	ErrInvalidTime  = errors.New("invalid time of day")
	ErrInvalidRange = errors.New("invalid time range")
)

// TimeOfDay is a wall-clock instant on a fixed reference day.
//
// Hour is 0..24 and Minute is 0..59; Hour==24 is only valid with Minute==0.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func New(hour, minute int) (TimeOfDay, error) {
	t := TimeOfDay{Hour: hour, Minute: minute}
	if err := t.Validate(); err != nil {
		return TimeOfDay{}, err
	}
	return t, nil
}

func MustNew(hour, minute int) TimeOfDay {
	t, err := New(hour, minute)
	if err != nil {
		panic(err)
	}
	return t
}

// EndOfDay returns the 24:00 sentinel.
func EndOfDay() TimeOfDay { return TimeOfDay{Hour: EndOfDayHour} }

func (t TimeOfDay) Validate() error {
	if t.Hour < 0 || t.Hour > EndOfDayHour {
		return fmt.Errorf("%w: hour %d out of range", ErrInvalidTime, t.Hour)
	}
	if t.Minute < 0 || t.Minute >= 60 {
		return fmt.Errorf("%w: minute %d out of range", ErrInvalidTime, t.Minute)
	}
	if t.Hour == EndOfDayHour && t.Minute != 0 {
		return fmt.Errorf("%w: 24:%02d is past end of day", ErrInvalidTime, t.Minute)
	}
	return nil
}

// Parse accepts "H:MM" or "HH:MM" (including "24:00").
func Parse(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	hs, ms, ok := strings.Cut(s, ":")
	if !ok || hs == "" || len(ms) != 2 {
		return TimeOfDay{}, fmt.Errorf("%w: %q (want HH:MM)", ErrInvalidTime, s)
	}
	h, err := strconv.Atoi(hs)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: %q (want HH:MM)", ErrInvalidTime, s)
	}
	m, err := strconv.Atoi(ms)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: %q (want HH:MM)", ErrInvalidTime, s)
	}
	return New(h, m)
}

// FromMinutes splits minutes-since-midnight, clamped to [0, 1440].
func FromMinutes(total int) TimeOfDay {
	if total < 0 {
		total = 0
	}
	if total > MinutesPerDay {
		total = MinutesPerDay
	}
	return TimeOfDay{Hour: total / 60, Minute: total % 60}
}

func (t TimeOfDay) Minutes() int { return t.Hour*60 + t.Minute }

func (t TimeOfDay) String() string { return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute) }

func (t TimeOfDay) Before(o TimeOfDay) bool { return t.Minutes() < o.Minutes() }
func (t TimeOfDay) After(o TimeOfDay) bool  { return t.Minutes() > o.Minutes() }
func (t TimeOfDay) Equal(o TimeOfDay) bool  { return t.Minutes() == o.Minutes() }

// Add shifts t by delta minutes, clamped to the day.
func (t TimeOfDay) Add(delta int) TimeOfDay { return FromMinutes(t.Minutes() + delta) }

func (t TimeOfDay) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *TimeOfDay) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// ToPercentage maps t to its position on the day, 0..100.
func ToPercentage(t TimeOfDay) float64 {
	return float64(t.Hour*60+t.Minute) / MinutesPerDay * 100
}

// FromPercentage maps a position on the day back to a time.
//
// The position is rounded to the nearest minute, then split with floor on
// both parts, so FromPercentage(ToPercentage(t)) == t but the reverse can
// drift by up to one minute. Downstream labels rely on this exact mapping.
func FromPercentage(p float64) TimeOfDay {
	if math.IsNaN(p) || p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}
	total := math.Round(p / 100 * MinutesPerDay)
	hour := math.Floor(total / 60)
	minute := math.Floor(math.Mod(total, 60))
	return TimeOfDay{Hour: int(hour), Minute: int(minute)}
}

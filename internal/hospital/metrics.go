package hospital

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"opsboard/internal/timeofday"
)

// Level is a traffic-light classification used to color dashboard values.
type Level int

const (
	LevelOK Level = iota
	LevelWatch
	LevelCritical
)

func (l Level) String() string {
	switch l {
	case LevelWatch:
		return "watch"
	case LevelCritical:
		return "critical"
	default:
		return "ok"
	}
}

func (l Level) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

// Thresholds are percentage cut-offs. For occupancy higher is worse; for
// staffing fill lower is worse.
type Thresholds struct {
	OccupancyWatch    float64 `json:"occupancyWatch" yaml:"occupancy_watch"`
	OccupancyCritical float64 `json:"occupancyCritical" yaml:"occupancy_critical"`
	StaffingWatch     float64 `json:"staffingWatch" yaml:"staffing_watch"`
	StaffingCritical  float64 `json:"staffingCritical" yaml:"staffing_critical"`
	ORWatch           float64 `json:"orWatch" yaml:"or_watch"`
	ORCritical        float64 `json:"orCritical" yaml:"or_critical"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		OccupancyWatch:    85,
		OccupancyCritical: 95,
		StaffingWatch:     90,
		StaffingCritical:  80,
		// OR utilization is low-is-bad.
		ORWatch:    75,
		ORCritical: 60,
	}
}

// Percent returns num/den*100, or 0 when den is not positive.
func Percent(num, den int) float64 {
	if den <= 0 {
		return 0
	}
	return float64(num) / float64(den) * 100
}

// FormatPercent renders a whole-number percentage ("93%").
func FormatPercent(p float64) string {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return "-"
	}
	return fmt.Sprintf("%.0f%%", p)
}

// FormatDate renders dashboard dates ("Oct 15, 2026").
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("Jan 2, 2006")
}

// FormatMinutes renders a duration in minutes as "3h 15m".
func FormatMinutes(m int) string {
	if m <= 0 {
		return "0m"
	}
	h, mm := m/60, m%60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", mm)
	case mm == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh %02dm", h, mm)
	}
}

func levelHighIsBad(v, watch, critical float64) Level {
	switch {
	case v >= critical:
		return LevelCritical
	case v >= watch:
		return LevelWatch
	default:
		return LevelOK
	}
}

func levelLowIsBad(v, watch, critical float64) Level {
	switch {
	case v < critical:
		return LevelCritical
	case v < watch:
		return LevelWatch
	default:
		return LevelOK
	}
}

func (t Thresholds) Occupancy(p float64) Level {
	return levelHighIsBad(p, t.OccupancyWatch, t.OccupancyCritical)
}

func (t Thresholds) Staffing(p float64) Level {
	return levelLowIsBad(p, t.StaffingWatch, t.StaffingCritical)
}

func (t Thresholds) ORUtilization(p float64) Level {
	return levelLowIsBad(p, t.ORWatch, t.ORCritical)
}

type CensusSummary struct {
	UnitID             string  `json:"unitId" yaml:"unitId"`
	UnitName           string  `json:"unitName" yaml:"unitName"`
	Occupied           int     `json:"occupied" yaml:"occupied"`
	StaffedBeds        int     `json:"staffedBeds" yaml:"staffedBeds"`
	Occupancy          float64 `json:"occupancy" yaml:"occupancy"`
	ProjectedCensus    int     `json:"projectedCensus" yaml:"projectedCensus"`
	ProjectedOccupancy float64 `json:"projectedOccupancy" yaml:"projectedOccupancy"`
	Boarders           int     `json:"boarders" yaml:"boarders"`
	Level              Level   `json:"level" yaml:"level"`
}

// CensusSummaries summarizes occupancy per unit, in unit order.
func (d *Dataset) CensusSummaries(th Thresholds) []CensusSummary {
	out := make([]CensusSummary, 0, len(d.Census))
	for _, u := range d.Units {
		for _, c := range d.Census {
			if c.UnitID != u.ID {
				continue
			}
			projected := c.Occupied + c.PendingAdmits - c.PendingDischarges
			if projected < 0 {
				projected = 0
			}
			occ := Percent(c.Occupied, u.StaffedBeds)
			out = append(out, CensusSummary{
				UnitID:             u.ID,
				UnitName:           u.Name,
				Occupied:           c.Occupied,
				StaffedBeds:        u.StaffedBeds,
				Occupancy:          occ,
				ProjectedCensus:    projected,
				ProjectedOccupancy: Percent(projected, u.StaffedBeds),
				Boarders:           c.Boarders,
				Level:              th.Occupancy(occ),
			})
		}
	}
	return out
}

// HospitalOccupancy is the house-wide occupied/staffed percentage.
func (d *Dataset) HospitalOccupancy() float64 {
	occ, beds := 0, 0
	for _, s := range d.CensusSummaries(DefaultThresholds()) {
		occ += s.Occupied
		beds += s.StaffedBeds
	}
	return Percent(occ, beds)
}

type BedSummary struct {
	UnitID   string `json:"unitId" yaml:"unitId"`
	UnitName string `json:"unitName" yaml:"unitName"`
	Total    int    `json:"total" yaml:"total"`
	Occupied int    `json:"occupied" yaml:"occupied"`
	Clean    int    `json:"clean" yaml:"clean"`
	Dirty    int    `json:"dirty" yaml:"dirty"`
	Blocked  int    `json:"blocked" yaml:"blocked"`
	// Available counts clean beds ready for an admit.
	Available int   `json:"available" yaml:"available"`
	Level     Level `json:"level" yaml:"level"`
}

func (d *Dataset) BedSummaries(th Thresholds) []BedSummary {
	byUnit := map[string]*BedSummary{}
	var out []BedSummary
	for _, u := range d.Units {
		out = append(out, BedSummary{UnitID: u.ID, UnitName: u.Name})
	}
	for i := range out {
		byUnit[out[i].UnitID] = &out[i]
	}
	for _, b := range d.Beds {
		s := byUnit[b.UnitID]
		if s == nil {
			continue
		}
		s.Total++
		switch b.Status {
		case BedOccupied:
			s.Occupied++
		case BedClean:
			s.Clean++
		case BedDirty:
			s.Dirty++
		case BedBlocked:
			s.Blocked++
		}
	}
	for i := range out {
		out[i].Available = out[i].Clean
		out[i].Level = th.Occupancy(Percent(out[i].Occupied+out[i].Blocked, out[i].Total))
	}
	return out
}

type StaffingSummary struct {
	UnitID    string  `json:"unitId" yaml:"unitId"`
	UnitName  string  `json:"unitName" yaml:"unitName"`
	Shift     string  `json:"shift" yaml:"shift"`
	Role      string  `json:"role" yaml:"role"`
	Required  int     `json:"required" yaml:"required"`
	Scheduled int     `json:"scheduled" yaml:"scheduled"`
	Gap       int     `json:"gap" yaml:"gap"`
	Fill      float64 `json:"fill" yaml:"fill"`
	Level     Level   `json:"level" yaml:"level"`
}

func (d *Dataset) StaffingSummaries(th Thresholds) []StaffingSummary {
	out := make([]StaffingSummary, 0, len(d.Staffing))
	for _, s := range d.Staffing {
		fill := Percent(s.Scheduled, s.Required)
		if s.Required == 0 {
			fill = 100
		}
		out = append(out, StaffingSummary{
			UnitID:    s.UnitID,
			UnitName:  d.UnitName(s.UnitID),
			Shift:     s.Shift,
			Role:      s.Role,
			Required:  s.Required,
			Scheduled: s.Scheduled,
			Gap:       max(0, s.Required-s.Scheduled),
			Fill:      fill,
			Level:     th.Staffing(fill),
		})
	}
	return out
}

// DischargeFilter narrows the discharge list. Zero values match everything.
type DischargeFilter struct {
	UnitID string
	// BarrierOnly keeps candidates with a barrier recorded.
	BarrierOnly bool
	// Window keeps candidates expected inside the range.
	Window *timeofday.Range
}

// FilterDischarges returns the filtered candidates sorted by expected time, then patient.
func (d *Dataset) FilterDischarges(f DischargeFilter) []DischargeCandidate {
	var out []DischargeCandidate
	for _, c := range d.Discharges {
		if f.UnitID != "" && !strings.EqualFold(c.UnitID, f.UnitID) {
			continue
		}
		if f.BarrierOnly && strings.TrimSpace(c.Barrier) == "" {
			continue
		}
		if f.Window != nil && !f.Window.Contains(c.ExpectedAt) {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].ExpectedAt.Equal(out[j].ExpectedAt) {
			return out[i].ExpectedAt.Before(out[j].ExpectedAt)
		}
		return out[i].PatientRef < out[j].PatientRef
	})
	return out
}

// DefaultPrimeTime is the block-scheduling prime-time window.
func DefaultPrimeTime() timeofday.Range {
	return timeofday.Range{Start: timeofday.MustNew(7, 0), End: timeofday.MustNew(15, 30)}
}

type RoomUtilization struct {
	Room             string  `json:"room" yaml:"room"`
	Cases            int     `json:"cases" yaml:"cases"`
	BookedMinutes    int     `json:"bookedMinutes" yaml:"bookedMinutes"`
	AvailableMinutes int     `json:"availableMinutes" yaml:"availableMinutes"`
	Utilization      float64 `json:"utilization" yaml:"utilization"`
	PrimeMinutes     int     `json:"primeMinutes" yaml:"primeMinutes"`
	NonPrimeMinutes  int     `json:"nonPrimeMinutes" yaml:"nonPrimeMinutes"`
	Level            Level   `json:"level" yaml:"level"`
}

// ORUtilization computes per-room booked time inside window. Case minutes
// are clipped to the window; minutes inside prime are counted as prime time.
func (d *Dataset) ORUtilization(window, prime timeofday.Range, th Thresholds) []RoomUtilization {
	byRoom := map[string]*RoomUtilization{}
	var rooms []string
	for _, c := range d.ORCases {
		r := byRoom[c.Room]
		if r == nil {
			r = &RoomUtilization{Room: c.Room, AvailableMinutes: window.Duration()}
			byRoom[c.Room] = r
			rooms = append(rooms, c.Room)
		}
		booked := timeofday.Overlap(c.Scheduled, window)
		if booked == 0 {
			continue
		}
		clipped := timeofday.Range{
			Start: timeofday.FromMinutes(max(c.Scheduled.Start.Minutes(), window.Start.Minutes())),
			End:   timeofday.FromMinutes(min(c.Scheduled.End.Minutes(), window.End.Minutes())),
		}
		inPrime := timeofday.Overlap(clipped, prime)
		r.Cases++
		r.BookedMinutes += booked
		r.PrimeMinutes += inPrime
		r.NonPrimeMinutes += booked - inPrime
	}
	sort.Strings(rooms)
	out := make([]RoomUtilization, 0, len(rooms))
	for _, name := range rooms {
		r := *byRoom[name]
		r.Utilization = Percent(r.BookedMinutes, r.AvailableMinutes)
		r.Level = th.ORUtilization(r.Utilization)
		out = append(out, r)
	}
	return out
}

// CasesIn lists cases overlapping window, by start time.
func (d *Dataset) CasesIn(window timeofday.Range) []ORCase {
	var out []ORCase
	for _, c := range d.ORCases {
		if timeofday.Overlap(c.Scheduled, window) > 0 {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Scheduled.Start.Equal(out[j].Scheduled.Start) {
			return out[i].Room < out[j].Room
		}
		return out[i].Scheduled.Start.Before(out[j].Scheduled.Start)
	})
	return out
}

// IsPrimeTime reports whether a case starts inside prime.
func IsPrimeTime(c ORCase, prime timeofday.Range) bool {
	return prime.Contains(c.Scheduled.Start)
}

// Next returns the phase after p; Act wraps to Plan.
func (p Phase) Next() Phase {
	switch p {
	case PhasePlan:
		return PhaseDo
	case PhaseDo:
		return PhaseStudy
	case PhaseStudy:
		return PhaseAct
	default:
		return PhasePlan
	}
}

func (p Phase) Label() string {
	if p == "" {
		return "-"
	}
	return strings.ToUpper(string(p[:1])) + string(p[1:])
}

// Advance moves the cycle to its next phase. Completing Act starts a new iteration.
func (c *PDSACycle) Advance() {
	if c.Phase == PhaseAct {
		c.Iteration++
	}
	if c.Iteration == 0 {
		c.Iteration = 1
	}
	c.Phase = c.Phase.Next()
}

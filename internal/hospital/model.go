package hospital

import (
	"strings"
	"time"

	"opsboard/internal/timeofday"
)

type Unit struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Service     string `json:"service" yaml:"service"`
	StaffedBeds int    `json:"staffedBeds" yaml:"staffedBeds"`
}

type CensusRow struct {
	UnitID            string `json:"unitId" yaml:"unitId"`
	Occupied          int    `json:"occupied" yaml:"occupied"`
	PendingAdmits     int    `json:"pendingAdmits" yaml:"pendingAdmits"`
	PendingDischarges int    `json:"pendingDischarges" yaml:"pendingDischarges"`
	// Boarders are patients held in the ED waiting for a bed on this unit.
	Boarders int `json:"boarders" yaml:"boarders"`
}

type BedStatus string

const (
	BedOccupied BedStatus = "occupied"
	BedClean    BedStatus = "clean"
	BedDirty    BedStatus = "dirty"
	BedBlocked  BedStatus = "blocked"
)

type Bed struct {
	ID     string    `json:"id" yaml:"id"`
	UnitID string    `json:"unitId" yaml:"unitId"`
	Status BedStatus `json:"status" yaml:"status"`
}

type StaffingRow struct {
	UnitID    string `json:"unitId" yaml:"unitId"`
	Shift     string `json:"shift" yaml:"shift"`
	Role      string `json:"role" yaml:"role"`
	Required  int    `json:"required" yaml:"required"`
	Scheduled int    `json:"scheduled" yaml:"scheduled"`
}

type DischargeCandidate struct {
	PatientRef string              `json:"patientRef" yaml:"patientRef"`
	UnitID     string              `json:"unitId" yaml:"unitId"`
	ExpectedAt timeofday.TimeOfDay `json:"expectedAt" yaml:"expectedAt"`
	// Barrier is empty when nothing blocks the discharge.
	Barrier   string `json:"barrier,omitempty" yaml:"barrier,omitempty"`
	Confirmed bool   `json:"confirmed" yaml:"confirmed"`
}

type ORCase struct {
	ID        string          `json:"id" yaml:"id"`
	Room      string          `json:"room" yaml:"room"`
	Service   string          `json:"service" yaml:"service"`
	Procedure string          `json:"procedure" yaml:"procedure"`
	Scheduled timeofday.Range `json:"scheduled" yaml:"scheduled"`
}

type Phase string

const (
	PhasePlan  Phase = "plan"
	PhaseDo    Phase = "do"
	PhaseStudy Phase = "study"
	PhaseAct   Phase = "act"
)

type PDSACycle struct {
	ID        string    `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	Aim       string    `json:"aim" yaml:"aim"`
	Owner     string    `json:"owner" yaml:"owner"`
	Phase     Phase     `json:"phase" yaml:"phase"`
	Iteration int       `json:"iteration" yaml:"iteration"`
	StartedOn time.Time `json:"startedOn" yaml:"startedOn"`
	// Notes is markdown.
	Notes string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// RedStretchPlan is a unit's free-text surge plan for when census runs hot.
type RedStretchPlan struct {
	UnitID    string    `json:"unitId" yaml:"unitId"`
	Text      string    `json:"text" yaml:"text"`
	Revision  string    `json:"revision" yaml:"revision"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updatedAt"`
}

// Dataset is everything the dashboard pages render.
type Dataset struct {
	AsOf       time.Time            `json:"asOf" yaml:"asOf"`
	Units      []Unit               `json:"units" yaml:"units"`
	Census     []CensusRow          `json:"census" yaml:"census"`
	Beds       []Bed                `json:"beds" yaml:"beds"`
	Staffing   []StaffingRow        `json:"staffing" yaml:"staffing"`
	Discharges []DischargeCandidate `json:"discharges" yaml:"discharges"`
	ORCases    []ORCase             `json:"orCases" yaml:"orCases"`
	PDSA       []PDSACycle          `json:"pdsa" yaml:"pdsa"`
}

// Unit looks up a unit by id, ignoring case.
func (d *Dataset) Unit(id string) (Unit, bool) {
	for _, u := range d.Units {
		if strings.EqualFold(u.ID, id) {
			return u, true
		}
	}
	return Unit{}, false
}

func (d *Dataset) UnitName(id string) string {
	if u, ok := d.Unit(id); ok {
		return u.Name
	}
	return id
}

func (d *Dataset) Cycle(id string) (*PDSACycle, bool) {
	for i := range d.PDSA {
		if d.PDSA[i].ID == id {
			return &d.PDSA[i], true
		}
	}
	return nil, false
}

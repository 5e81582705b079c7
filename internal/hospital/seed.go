package hospital

import (
	"fmt"
	"time"

	"opsboard/internal/timeofday"

	"github.com/google/uuid"
)

// cycleNamespace keeps seeded PDSA ids stable across runs.
var cycleNamespace = uuid.MustParse("6f1c6b8e-3a59-4a8e-9d0c-2b1f4a7d9e10")

func cycleID(title string) string {
	return uuid.NewSHA1(cycleNamespace, []byte(title)).String()
}

// NewCycleID returns a fresh id for a user-created PDSA cycle.
func NewCycleID() string { return uuid.NewString() }

func rng(a, b string) timeofday.Range {
	r, err := timeofday.ParseRange(a + "-" + b)
	if err != nil {
		panic(err)
	}
	return r
}

func at(s string) timeofday.TimeOfDay {
	t, err := timeofday.Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

// Seed returns the static dataset. It stands in for the hospital API and
// returns a fresh copy on each call.
func Seed(asOf time.Time) *Dataset {
	day := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, asOf.Location())
	ds := &Dataset{
		AsOf: asOf,
		Units: []Unit{
			{ID: "4W", Name: "4 West Med/Surg", Service: "Medicine", StaffedBeds: 32},
			{ID: "5E", Name: "5 East Telemetry", Service: "Cardiology", StaffedBeds: 28},
			{ID: "ICU", Name: "Medical ICU", Service: "Critical Care", StaffedBeds: 16},
			{ID: "6N", Name: "6 North Ortho", Service: "Surgery", StaffedBeds: 24},
			{ID: "PEDS", Name: "Pediatrics", Service: "Pediatrics", StaffedBeds: 18},
		},
		Census: []CensusRow{
			{UnitID: "4W", Occupied: 30, PendingAdmits: 4, PendingDischarges: 6, Boarders: 3},
			{UnitID: "5E", Occupied: 22, PendingAdmits: 2, PendingDischarges: 3, Boarders: 1},
			{UnitID: "ICU", Occupied: 16, PendingAdmits: 2, PendingDischarges: 1, Boarders: 2},
			{UnitID: "6N", Occupied: 17, PendingAdmits: 5, PendingDischarges: 4},
			{UnitID: "PEDS", Occupied: 9, PendingAdmits: 1, PendingDischarges: 2},
		},
		Staffing: []StaffingRow{
			{UnitID: "4W", Shift: "day", Role: "RN", Required: 8, Scheduled: 7},
			{UnitID: "4W", Shift: "night", Role: "RN", Required: 7, Scheduled: 5},
			{UnitID: "4W", Shift: "day", Role: "PCT", Required: 4, Scheduled: 4},
			{UnitID: "5E", Shift: "day", Role: "RN", Required: 7, Scheduled: 7},
			{UnitID: "5E", Shift: "night", Role: "RN", Required: 6, Scheduled: 6},
			{UnitID: "ICU", Shift: "day", Role: "RN", Required: 8, Scheduled: 8},
			{UnitID: "ICU", Shift: "night", Role: "RN", Required: 8, Scheduled: 6},
			{UnitID: "6N", Shift: "day", Role: "RN", Required: 6, Scheduled: 6},
			{UnitID: "6N", Shift: "night", Role: "RN", Required: 5, Scheduled: 4},
			{UnitID: "PEDS", Shift: "day", Role: "RN", Required: 5, Scheduled: 5},
		},
		Discharges: []DischargeCandidate{
			{PatientRef: "MRN-10482", UnitID: "4W", ExpectedAt: at("10:30"), Confirmed: true},
			{PatientRef: "MRN-10517", UnitID: "4W", ExpectedAt: at("11:00"), Barrier: "Transport"},
			{PatientRef: "MRN-10533", UnitID: "4W", ExpectedAt: at("14:00"), Barrier: "Pharmacy"},
			{PatientRef: "MRN-20114", UnitID: "5E", ExpectedAt: at("09:15"), Confirmed: true},
			{PatientRef: "MRN-20188", UnitID: "5E", ExpectedAt: at("16:45"), Barrier: "Placement"},
			{PatientRef: "MRN-30021", UnitID: "ICU", ExpectedAt: at("13:00"), Barrier: "Bed downstream"},
			{PatientRef: "MRN-40310", UnitID: "6N", ExpectedAt: at("08:45"), Confirmed: true},
			{PatientRef: "MRN-40377", UnitID: "6N", ExpectedAt: at("12:30"), Barrier: "PT clearance"},
			{PatientRef: "MRN-50007", UnitID: "PEDS", ExpectedAt: at("15:00")},
		},
		ORCases: []ORCase{
			{ID: "or-1001", Room: "OR 1", Service: "Ortho", Procedure: "Total knee arthroplasty", Scheduled: rng("07:30", "10:00")},
			{ID: "or-1002", Room: "OR 1", Service: "Ortho", Procedure: "Hip hemiarthroplasty", Scheduled: rng("10:30", "12:45")},
			{ID: "or-1003", Room: "OR 1", Service: "Ortho", Procedure: "ORIF ankle", Scheduled: rng("13:30", "16:30")},
			{ID: "or-2001", Room: "OR 2", Service: "General", Procedure: "Lap cholecystectomy", Scheduled: rng("07:30", "09:00")},
			{ID: "or-2002", Room: "OR 2", Service: "General", Procedure: "Ventral hernia repair", Scheduled: rng("09:30", "11:30")},
			{ID: "or-2003", Room: "OR 2", Service: "General", Procedure: "Ex-lap (add-on)", Scheduled: rng("18:00", "20:30")},
			{ID: "or-3001", Room: "OR 3", Service: "Cardiac", Procedure: "CABG x3", Scheduled: rng("07:30", "13:30")},
			{ID: "or-4001", Room: "OR 4", Service: "Urology", Procedure: "TURP", Scheduled: rng("12:00", "13:15")},
		},
		PDSA: []PDSACycle{
			{
				Title:     "Discharge before noon",
				Aim:       "40% of med/surg discharges complete before 12:00",
				Owner:     "4W nurse manager",
				Phase:     PhaseStudy,
				Iteration: 2,
				StartedOn: day.AddDate(0, 0, -21),
				Notes: "## Change\n\nDischarge huddle at 09:30 with case management.\n\n" +
					"## Measures\n\n- Discharges before noon: 31% (baseline 18%)\n- Readmissions: unchanged\n",
			},
			{
				Title:     "ED boarding escalation",
				Aim:       "No boarder waits more than 4 hours for an inpatient bed",
				Owner:     "Patient flow",
				Phase:     PhaseDo,
				Iteration: 1,
				StartedOn: day.AddDate(0, 0, -9),
				Notes:     "Escalate to house supervisor once **three** boarders are waiting.\n",
			},
			{
				Title:     "First case on-time starts",
				Aim:       "90% of first OR cases start by 07:30",
				Owner:     "Perioperative services",
				Phase:     PhasePlan,
				Iteration: 1,
				StartedOn: day.AddDate(0, 0, -2),
			},
		},
	}
	for i := range ds.PDSA {
		ds.PDSA[i].ID = cycleID(ds.PDSA[i].Title)
	}
	ds.Beds = seedBeds(ds)
	return ds
}

// seedBeds fills each unit with beds consistent with its census row.
func seedBeds(ds *Dataset) []Bed {
	var beds []Bed
	for _, u := range ds.Units {
		occupied := 0
		for _, c := range ds.Census {
			if c.UnitID == u.ID {
				occupied = c.Occupied
			}
		}
		for i := 0; i < u.StaffedBeds; i++ {
			st := BedClean
			switch {
			case i < occupied:
				st = BedOccupied
			case i == u.StaffedBeds-1 && u.StaffedBeds-occupied > 2:
				st = BedBlocked
			case (i-occupied)%2 == 0:
				st = BedDirty
			}
			beds = append(beds, Bed{
				ID:     fmt.Sprintf("%s-%02d", u.ID, i+1),
				UnitID: u.ID,
				Status: st,
			})
		}
	}
	return beds
}

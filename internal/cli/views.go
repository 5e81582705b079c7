package cli

import (
	"strings"

	"opsboard/internal/hospital"
	"opsboard/internal/timeofday"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Timeline view ids shared with the TUI.
const (
	viewOR        = "or"
	viewDischarge = "discharge"
)

func newCensusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "census",
		Short: "Unit census and occupancy",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := app.dataset(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": ds.CensusSummaries(app.cfg.EffectiveThresholds()),
				"meta": map[string]any{
					"asOf":              hospital.FormatDate(ds.AsOf),
					"hospitalOccupancy": hospital.FormatPercent(ds.HospitalOccupancy()),
				},
			})
		},
	}
}

func newBedsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "beds",
		Short: "Bed board summary per unit",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := app.dataset(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": ds.BedSummaries(app.cfg.EffectiveThresholds())})
		},
	}
}

func newStaffingCmd(app *App) *cobra.Command {
	var unit string

	cmd := &cobra.Command{
		Use:   "staffing",
		Short: "Required vs scheduled staff per unit and shift",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := app.dataset(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			if unit != "" {
				if _, ok := ds.Unit(unit); !ok {
					return writeErr(cmd, errNotFound("unit", unit))
				}
			}
			out := []hospital.StaffingSummary{}
			for _, s := range ds.StaffingSummaries(app.cfg.EffectiveThresholds()) {
				if unit == "" || strings.EqualFold(s.UnitID, unit) {
					out = append(out, s)
				}
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}

	cmd.Flags().StringVar(&unit, "unit", "", "Only this unit id")
	return cmd
}

func newDischargeCmd(app *App) *cobra.Command {
	var (
		unit     string
		barriers bool
		window   string
	)

	cmd := &cobra.Command{
		Use:   "discharge",
		Short: "Discharge candidates sorted by expected time",
		Long: strings.TrimSpace(`
Lists discharge candidates sorted by expected discharge time.

--window takes HH:MM-HH:MM, or "saved" for the window last committed on the
TUI discharge timeline.
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := app.dataset(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			f := hospital.DischargeFilter{UnitID: unit, BarrierOnly: barriers}
			if strings.TrimSpace(window) != "" {
				r, err := app.resolveWindow(cmd, viewDischarge, window, timeofday.DefaultRange())
				if err != nil {
					return writeErr(cmd, err)
				}
				f.Window = &r
			}
			meta := map[string]any{"unit": unit, "barriersOnly": barriers}
			if f.Window != nil {
				meta["window"] = f.Window.String()
			}
			out := ds.FilterDischarges(f)
			if out == nil {
				out = []hospital.DischargeCandidate{}
			}
			return writeOut(cmd, app, map[string]any{"data": out, "meta": meta})
		},
	}

	cmd.Flags().StringVar(&unit, "unit", "", "Only this unit id")
	cmd.Flags().BoolVar(&barriers, "barriers", false, "Only candidates with a recorded barrier")
	cmd.Flags().StringVar(&window, "window", "", "Expected-time window (HH:MM-HH:MM or 'saved')")
	return cmd
}

func newORCmd(app *App) *cobra.Command {
	var window string

	cmd := &cobra.Command{
		Use:   "or",
		Short: "OR room utilization for a time window",
		Long: strings.TrimSpace(`
Computes per-room utilization of booked case minutes inside a window.

Without --window the window last committed on the TUI OR timeline is used
(06:00-20:00 when none was saved).
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := app.dataset(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			if strings.TrimSpace(window) == "" {
				window = "saved"
			}
			w, err := app.resolveWindow(cmd, viewOR, window, timeofday.DefaultRange())
			if err != nil {
				return writeErr(cmd, err)
			}
			prime := app.cfg.PrimeTimeRange()
			return writeOut(cmd, app, map[string]any{
				"data": ds.ORUtilization(w, prime, app.cfg.EffectiveThresholds()),
				"meta": map[string]any{
					"window":    w.String(),
					"primeTime": prime.String(),
					"cases":     len(ds.CasesIn(w)),
				},
			})
		},
	}

	cmd.Flags().StringVar(&window, "window", "", "Window (HH:MM-HH:MM or 'saved')")
	return cmd
}

// resolveWindow parses an explicit range or loads the saved window for view.
func (app *App) resolveWindow(cmd *cobra.Command, view, arg string, def timeofday.Range) (timeofday.Range, error) {
	if strings.EqualFold(strings.TrimSpace(arg), "saved") {
		r := app.store().WindowOrDefault(cmd.Context(), view, def)
		app.logger.Debug("using saved window", zap.String("view", view), zap.String("window", r.String()))
		return r, nil
	}
	return timeofday.ParseRange(arg)
}

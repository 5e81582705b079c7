package cli

import (
	"errors"
	"strings"
	"time"

	"opsboard/internal/hospital"
	"opsboard/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newPlanCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Red stretch plans (per-unit surge playbooks)",
	}
	cmd.AddCommand(newPlanShowCmd(app))
	cmd.AddCommand(newPlanSetCmd(app))
	cmd.AddCommand(newPlanHistoryCmd(app))
	return cmd
}

func newPlanShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show [unit]",
		Short: "Show one unit's plan, or all plans",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := app.store()
			if len(args) == 0 {
				plans, err := s.ListPlans(cmd.Context())
				if err != nil {
					return writeErr(cmd, err)
				}
				return writeOut(cmd, app, map[string]any{"data": plans})
			}
			p, err := s.LoadPlan(cmd.Context(), args[0])
			if errors.Is(err, store.ErrNotFound) {
				return writeErr(cmd, errNotFound("plan", args[0]))
			}
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": p})
		},
	}
}

func newPlanSetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set <unit> <text...>",
		Short: "Replace a unit's plan text",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds := hospital.Seed(time.Now())
			u, ok := ds.Unit(strings.TrimSpace(args[0]))
			if !ok {
				return writeErr(cmd, errNotFound("unit", args[0]))
			}
			p := &hospital.RedStretchPlan{UnitID: u.ID, Text: strings.Join(args[1:], " ")}
			if err := app.store().SavePlan(cmd.Context(), p); err != nil {
				return writeErr(cmd, err)
			}
			app.logger.Info("plan saved", zap.String("unit", p.UnitID), zap.String("revision", p.Revision))
			return writeOut(cmd, app, map[string]any{"data": p})
		},
	}
}

func newPlanHistoryCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "history <unit>",
		Short: "List saved revisions, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hist, err := app.store().PlanHistory(cmd.Context(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": hist,
				"meta": map[string]any{"revisions": len(hist)},
			})
		},
	}
}

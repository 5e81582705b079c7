package cli

import (
	"strings"

	"opsboard/internal/hospital"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newPDSACmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pdsa",
		Short: "Plan-Do-Study-Act improvement cycles",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := app.dataset(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": ds.PDSA})
		},
	}
	cmd.AddCommand(newPDSAAdvanceCmd(app))
	return cmd
}

func newPDSAAdvanceCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "advance <cycle-id>",
		Short: "Move a cycle to its next phase",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := app.dataset(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			c, err := findCycle(ds, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			from := c.Phase
			c.Advance()
			if err := app.store().SaveCycleProgress(cmd.Context(), *c); err != nil {
				return writeErr(cmd, err)
			}
			app.logger.Info("pdsa advanced", zap.String("cycle", c.ID), zap.String("from", string(from)), zap.String("to", string(c.Phase)))
			return writeOut(cmd, app, map[string]any{
				"data": c,
				"meta": map[string]any{"from": from},
			})
		},
	}
}

// findCycle accepts a full id or a unique prefix of at least 4 characters.
func findCycle(ds *hospital.Dataset, id string) (*hospital.PDSACycle, error) {
	id = strings.TrimSpace(id)
	if c, ok := ds.Cycle(id); ok {
		return c, nil
	}
	var match *hospital.PDSACycle
	if len(id) >= 4 {
		for i := range ds.PDSA {
			if strings.HasPrefix(ds.PDSA[i].ID, id) {
				if match != nil {
					return nil, errNotFound("unique pdsa cycle", id)
				}
				match = &ds.PDSA[i]
			}
		}
	}
	if match == nil {
		return nil, errNotFound("pdsa cycle", id)
	}
	return match, nil
}

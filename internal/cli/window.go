package cli

import (
	"errors"
	"fmt"

	"opsboard/internal/store"
	"opsboard/internal/timeofday"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newWindowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "window",
		Short: "Timeline windows shared with the TUI (views: or, discharge)",
	}
	cmd.AddCommand(newWindowShowCmd(app))
	cmd.AddCommand(newWindowSetCmd(app))
	return cmd
}

type windowOut struct {
	View  string `json:"view" yaml:"view"`
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
	// Saved is false when the default window is reported.
	Saved bool `json:"saved" yaml:"saved"`
}

func newWindowOut(view string, r timeofday.Range, saved bool) windowOut {
	return windowOut{View: view, Start: r.Start.String(), End: r.End.String(), Saved: saved}
}

func checkView(view string) error {
	switch view {
	case viewOR, viewDischarge:
		return nil
	}
	return fmt.Errorf("unknown view %q (want %s|%s)", view, viewOR, viewDischarge)
}

func newWindowShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show [view]",
		Short: "Show the last committed window per view",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			views := []string{viewOR, viewDischarge}
			if len(args) == 1 {
				if err := checkView(args[0]); err != nil {
					return writeErr(cmd, err)
				}
				views = args
			}
			s := app.store()
			out := make([]windowOut, 0, len(views))
			for _, v := range views {
				r, err := s.LoadWindow(cmd.Context(), v)
				switch {
				case errors.Is(err, store.ErrNotFound):
					out = append(out, newWindowOut(v, timeofday.DefaultRange(), false))
				case err != nil:
					return writeErr(cmd, err)
				default:
					out = append(out, newWindowOut(v, r, true))
				}
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}
}

func newWindowSetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set <view> <HH:MM-HH:MM>",
		Short: "Set a view's window (start must be before end)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			view := args[0]
			if err := checkView(view); err != nil {
				return writeErr(cmd, err)
			}
			r, err := timeofday.ParseRange(args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := app.store().SaveWindow(cmd.Context(), view, r); err != nil {
				return writeErr(cmd, err)
			}
			app.logger.Info("window saved", zap.String("view", view), zap.String("window", r.String()))
			return writeOut(cmd, app, map[string]any{"data": newWindowOut(view, r, true)})
		},
	}
}

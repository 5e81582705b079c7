package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"opsboard/internal/format"
	"opsboard/internal/hospital"
	"opsboard/internal/logging"
	"opsboard/internal/store"
	"opsboard/internal/tui"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type App struct {
	Dir     string
	Format  string
	Pretty  bool
	Verbose bool

	cfg    *store.Config
	logger *zap.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "opsboard",
		Short:        "Hospital operations dashboard (TUI + CLI)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive dashboard
  opsboard

  # Scriptable views
  opsboard census
  opsboard or --window 07:00-15:30 --format yaml
  opsboard discharge --unit 4W --barriers

  # Red stretch plans
  opsboard plan set ICU "Open PACU overflow, call charge RN"
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.init()
	}
	cmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if app.logger != nil {
			_ = app.logger.Sync()
		}
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("OPSBOARD_DIR", ""), "Path to the data dir (default: config data_dir or ~/.opsboard/data)")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("OPSBOARD_FORMAT", "json"), "Output format (json|edn|yaml)")
	cmd.PersistentFlags().BoolVar(&app.Pretty, "pretty", false, "Pretty-print JSON/EDN output")
	cmd.PersistentFlags().BoolVar(&app.Verbose, "verbose", false, "Debug logging to stderr")

	cmd.AddCommand(newCensusCmd(app))
	cmd.AddCommand(newBedsCmd(app))
	cmd.AddCommand(newStaffingCmd(app))
	cmd.AddCommand(newDischargeCmd(app))
	cmd.AddCommand(newORCmd(app))
	cmd.AddCommand(newPDSACmd(app))
	cmd.AddCommand(newPlanCmd(app))
	cmd.AddCommand(newWindowCmd(app))

	return cmd
}

// init loads config and resolves the data dir. Precedence for the dir:
// --dir / OPSBOARD_DIR, then config data_dir, then ~/.opsboard/data.
func (app *App) init() error {
	cfg, err := store.LoadConfig()
	if err != nil {
		return err
	}
	app.cfg = cfg

	if app.logger == nil {
		logger, err := logging.NewCLI(app.Verbose)
		if err != nil {
			return err
		}
		app.logger = logger
	}

	if strings.TrimSpace(app.Dir) == "" {
		if d := strings.TrimSpace(cfg.DataDir); d != "" {
			app.Dir = d
		} else {
			d, err := store.DefaultDir()
			if err != nil {
				return err
			}
			app.Dir = d
		}
	}
	app.logger.Debug("resolved data dir", zap.String("dir", app.Dir))
	return nil
}

func (app *App) store() store.Store { return store.Store{Dir: app.Dir} }

// dataset returns the seeded dataset with saved PDSA progress applied.
func (app *App) dataset(ctx context.Context) (*hospital.Dataset, error) {
	ds := hospital.Seed(time.Now())
	if err := app.store().ApplyCycleProgress(ctx, ds); err != nil {
		return nil, fmt.Errorf("load pdsa progress: %w", err)
	}
	return ds, nil
}

func runTUI(app *App) error {
	s := app.store()
	if err := s.Ensure(); err != nil {
		return err
	}
	logger, err := logging.NewFile(s.LogPath(), app.Verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ds := hospital.Seed(time.Now())
	logger.Info("tui start", zap.String("dir", s.Dir))
	return tui.Run(tui.Options{
		Store:   s,
		Config:  app.cfg,
		Dataset: ds,
		Theme:   tui.ResolveTheme(app.cfg.Theme),
		Logger:  logger,
	})
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.Pretty)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}

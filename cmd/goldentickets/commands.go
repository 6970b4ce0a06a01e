package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"GoldenTickets/internal/app"
	"GoldenTickets/internal/config"
	"GoldenTickets/internal/domain"
	"GoldenTickets/internal/logging"
	"GoldenTickets/internal/usecase"
)

type cli struct {
	configPath string
	cfg        config.Config
	logger     *slog.Logger
}

func newRootCommand() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "goldentickets",
		Short:         "Book open GitHub issues into your golden hours",
		Long:          "Golden Tickets finds the weekday hours you are most active on GitHub and books open issues into them on a Google Calendar.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.initialize(cmd)
		},
	}
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "path to the YAML config (default $GOLDEN_TICKETS_CONFIG)")

	root.AddCommand(newRunCommand(c), newPlanCommand(c), newWatchCommand(c))
	return root
}

func (c *cli) initialize(cmd *cobra.Command) error {
	path := c.configPath
	if path == "" {
		path = os.Getenv("GOLDEN_TICKETS_CONFIG")
	}

	cfg, err := config.LoadFile(path)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), err)
		return err
	}
	c.cfg = cfg
	c.logger = logging.NewWithWriter(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
	return nil
}

func (c *cli) application(cmd *cobra.Command) (*app.Application, error) {
	application, err := app.New(cmd.Context(), c.cfg, c.logger)
	if err != nil {
		c.logger.Error("application init failed", "error", err)
		return nil, err
	}
	return application, nil
}

func newRunCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Reconcile the calendar once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, err := c.application(cmd)
			if err != nil {
				return err
			}
			defer application.Close()

			report, err := application.Run(cmd.Context())
			printReport(cmd.OutOrStdout(), report)
			if err != nil {
				c.logger.Error("run failed", "run_id", report.RunID, "stage", report.Stage, "error", err)
				return err
			}
			return nil
		},
	}
}

func newPlanCommand(c *cli) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show what a run would change without touching the calendar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, err := c.application(cmd)
			if err != nil {
				return err
			}
			defer application.Close()

			report, err := application.Plan(cmd.Context())
			if err != nil {
				c.logger.Error("plan failed", "run_id", report.RunID, "stage", report.Stage, "error", err)
				return err
			}

			if !asJSON {
				printReport(cmd.OutOrStdout(), report)
				return nil
			}
			raw, err := usecase.BuildReportJSON(report)
			if err != nil {
				return fmt.Errorf("render plan: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(raw))
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the plan as JSON")
	return cmd
}

func newWatchCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Reconcile on every schedule interval until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, err := c.application(cmd)
			if err != nil {
				return err
			}
			defer application.Close()

			if err := application.Watch(cmd.Context()); err != nil {
				c.logger.Error("watch stopped", "error", err)
				return err
			}
			c.logger.Info("watch stopped")
			return nil
		},
	}
}

func printReport(w io.Writer, report domain.Report) {
	if report.RunID == "" {
		return
	}
	fmt.Fprintln(w, usecase.BuildReportSubject("", report))
	fmt.Fprint(w, usecase.BuildReportMessage(report))
}

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"DesignStats/internal/app"
	"DesignStats/internal/domain"
)

// newUpdateCmd creates the update subcommand.
func newUpdateCmd(flags *rootFlags) *cobra.Command {
	var importDate string
	var designID int64
	var source string
	var initializeWithZero bool
	var daemon bool

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Collect today's statistics for all tracked designs",
		Long:  "Fetch the current totals of every active design source, derive the daily deltas, and update the rollup statistics.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			date := domain.DateOf(time.Now())
			if importDate != "" {
				parsed, err := domain.ParseDate(importDate)
				if err != nil {
					return err
				}
				date = parsed
			}

			platform, err := parsePlatformFlag(source)
			if err != nil {
				return err
			}

			application, err := openApp(ctx, flags)
			if err != nil {
				return err
			}
			defer application.Close()

			if daemon {
				fmt.Fprintln(cmd.OutOrStdout(), "Running scheduled updates, press Ctrl+C to stop")
				return application.RunScheduled(ctx)
			}

			summary, err := application.Update(ctx, app.UpdateOptions{
				Date:               date,
				DesignID:           designID,
				Platform:           platform,
				InitializeWithZero: initializeWithZero,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Processed %d design sources for %s\n", summary.Processed, date)
			for _, failure := range summary.Failures {
				fmt.Fprintf(cmd.ErrOrStderr(), "FAILED %s (%d) from %s: %v\n",
					failure.Title, failure.DesignID, failure.Platform, failure.Err)
			}
			if summary.Failed > 0 {
				return fmt.Errorf("%d design sources failed", summary.Failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&importDate, "importDate", "i", "", "import date (format: YYYY-MM-DD), defaults to today")
	cmd.Flags().Int64VarP(&designID, "designId", "d", 0, "limit the update to one design id")
	cmd.Flags().StringVarP(&source, "source", "s", "", "limit the update to one source (Thingiverse, Cults3d, Printable)")
	cmd.Flags().BoolVarP(&initializeWithZero, "initializeWithZero", "z", false, "initialize statistics with zero instead of fetching")
	cmd.Flags().BoolVar(&daemon, "daemon", false, "keep running and update on the configured cron schedule")
	_ = cmd.Flags().MarkHidden("initializeWithZero")

	return cmd
}

// parsePlatformFlag maps an optional --source flag value to a platform.
func parsePlatformFlag(source string) (domain.Platform, error) {
	if source == "" {
		return "", nil
	}
	return domain.ParsePlatform(source)
}

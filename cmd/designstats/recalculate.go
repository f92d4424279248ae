package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newRecalculateCmd creates the recalculate subcommand.
func newRecalculateCmd(flags *rootFlags) *cobra.Command {
	var designID int64
	var source string

	cmd := &cobra.Command{
		Use:   "recalculate",
		Short: "Repair gaps and recompute deltas and rollups",
		Long:  "Fill missing days in the import history with carried-forward totals, rewrite every daily delta, and recompute the rollup statistics.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			platform, err := parsePlatformFlag(source)
			if err != nil {
				return err
			}

			application, err := openApp(ctx, flags)
			if err != nil {
				return err
			}
			defer application.Close()

			outcomes, err := application.Recalculate(ctx, designID, platform)
			if err != nil {
				return err
			}

			failed := 0
			for _, outcome := range outcomes {
				if outcome.Err != nil {
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "FAILED design %d from %s: %v\n",
						outcome.DesignID, outcome.Platform, outcome.Err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Design %d from %s: %d gaps filled, %d deltas rewritten, %d months recomputed\n",
					outcome.DesignID, outcome.Platform, outcome.GapsFilled, outcome.DeltasRewritten, outcome.MonthsRecomputed)
			}
			if failed > 0 {
				return fmt.Errorf("%d design sources failed", failed)
			}
			return nil
		},
	}

	cmd.Flags().Int64VarP(&designID, "designId", "d", 0, "limit the recalculation to one design id")
	cmd.Flags().StringVarP(&source, "source", "s", "", "limit the recalculation to one source (Thingiverse, Cults3d, Printable)")

	return cmd
}

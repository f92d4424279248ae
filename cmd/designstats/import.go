package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"DesignStats/internal/usecase"
)

// newImportCmd creates the import subcommand.
func newImportCmd(flags *rootFlags) *cobra.Command {
	var baseDirectory string
	var verifyImported bool
	var overwriteFailed bool

	cmd := &cobra.Command{
		Use:   "import [importFile]",
		Short: "Import design configurations from a JSON file",
		Long:  "Validate the platform listings of the designs in the import file and register them in the database.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			path := "data/import/designs.json"
			if len(args) == 1 {
				path = args[0]
			}

			application, err := openApp(ctx, flags)
			if err != nil {
				return err
			}
			defer application.Close()

			summary, err := application.Import(ctx, path, usecase.ImportOptions{
				VerifyImported:  verifyImported,
				OverwriteFailed: overwriteFailed,
				BaseDirectory:   baseDirectory,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d sources imported, written to %s\n", summary.Imported, summary.ImportedFile)
			if summary.Failed > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "%d sources failed, written to %s\n", summary.Failed, summary.FailedFile)
				return fmt.Errorf("%d sources failed", summary.Failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&baseDirectory, "baseDirectory", "b", "data", "base directory for the result files")
	cmd.Flags().BoolVarP(&verifyImported, "verifyImported", "m", false, "re-validate sources already marked imported")
	cmd.Flags().BoolVarP(&overwriteFailed, "overwriteFailed", "f", false, "reset failed imports in the import file")

	return cmd
}

// Package main provides the designstats CLI entry point.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"DesignStats/internal/app"
	"DesignStats/internal/config"
	"DesignStats/internal/logging"
)

var version = "2.0.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// rootFlags are shared by every subcommand that touches the database.
type rootFlags struct {
	configFile string
	envFile    string
}

// newRootCmd creates the root command for the designstats CLI.
func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:     "designstats",
		Short:   "Track download statistics of 3D printing designs",
		Long:    "Designstats collects daily statistics of 3D printing designs from Thingiverse, Cults3d and Printables into Postgres.",
		Version: version,
	}

	rootCmd.SetVersionTemplate("designstats version {{.Version}}\n")

	rootCmd.PersistentFlags().StringVarP(&flags.configFile, "config", "c", "config/config.yaml", "config file path")
	rootCmd.PersistentFlags().StringVarP(&flags.envFile, "env", "e", "config/.env", "env file path with credentials")

	rootCmd.AddCommand(newUpdateCmd(flags))
	rootCmd.AddCommand(newRecalculateCmd(flags))
	rootCmd.AddCommand(newShowCmd(flags))
	rootCmd.AddCommand(newImportCmd(flags))

	return rootCmd
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// openApp loads the configuration and builds the application graph.
func openApp(ctx context.Context, flags *rootFlags) (*app.Application, error) {
	cfg, err := config.Load(flags.configFile, flags.envFile)
	if err != nil {
		return nil, err
	}

	logger := logging.New(cfg.Logging.Level)
	return app.New(ctx, cfg, logger)
}

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"plangenie/internal/config"
)

var version = "dev"

var (
	verbose bool
	logger  *zap.Logger
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	serve := newServeCmd()

	root := &cobra.Command{
		Use:     "plangenie",
		Short:   "PlanGenie - natural-language mobile recharge plan search",
		Version: version,
		Long: `PlanGenie answers questions about Indian mobile recharge plans.

Run without a subcommand to start the HTTP server.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := zap.NewProductionConfig()
			if verbose || strings.EqualFold(os.Getenv("LOG_LEVEL"), "debug") {
				cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			var err error
			logger, err = cfg.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
		RunE: serve.RunE,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(serve, newAskCmd(), newCatalogCmd())
	return root
}

// loadConfig reads and validates environment configuration plus the optional
// tuning file.
func loadConfig() (*config.Config, *config.YAMLConfig, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	tuning, err := config.LoadYAMLConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load tuning file: %w", err)
	}
	return cfg, tuning, nil
}

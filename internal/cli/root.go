// Package cli implements retrievectl, a command-line client for running
// retrievals against the configured index without the HTTP server.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docretriever/internal/app"
	"github.com/kailas-cloud/docretriever/internal/config"
	logpkg "github.com/kailas-cloud/docretriever/internal/logger"
	"github.com/kailas-cloud/docretriever/internal/usecase/retrieval"
)

// runnerFactory builds a retrieval runner and the function that releases it.
type runnerFactory func(ctx context.Context, cfg config.Config, logger *zap.Logger) (retrieval.Runner, func(), error)

func buildRunner(ctx context.Context, cfg config.Config, logger *zap.Logger) (retrieval.Runner, func(), error) {
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return a.Runner, a.Close, nil
}

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	env      string
	cfgFile  string
	logLevel string
}

func (o *rootOptions) loadConfig() (config.Config, error) {
	if o.cfgFile != "" {
		return config.LoadFile(o.cfgFile)
	}
	return config.Load(o.env)
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCmd builds the retrievectl command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(buildRunner)
}

func newRootCmd(factory runnerFactory) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "retrievectl",
		Short: "Query the document retrieval core from the command line",
		Long: `retrievectl runs semantic retrievals against the configured vector index
and prints the deduplicated documents as JSON.

Example usage:
  retrievectl query -q "reset a password"
  retrievectl query -q "billing" -q "invoices" --scope set_number=abc --routed
  retrievectl version`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.env, "env", config.GetEnv(), "environment; selects config/<env>.yaml")
	root.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (overrides --env lookup)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	root.AddCommand(newQueryCmd(opts, factory))
	root.AddCommand(newVersionCmd())
	return root
}

// newLogger writes to stderr so stdout stays valid JSON.
func newLogger(opts *rootOptions) (*zap.Logger, error) {
	logger, err := logpkg.NewLogger(opts.env, opts.logLevel)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return logger, nil
}

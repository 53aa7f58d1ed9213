package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

// NewRootCmd assembles the ghostci command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ghostci",
		Short: "Run a project's validation pipeline and report the results",
		Long: `ghostci validates a Python project checkout in a fixed sequence of stages:
dependency installation, test dependency installation, linting, unit tests,
integration tests and security scanning.

Every run ends with a JSON report in the project root and a console summary.
The report can optionally be uploaded to object storage or sent to a webhook.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newStagesCmd())
	return rootCmd
}

// Execute runs the CLI and exits 1 on any failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, ErrChecksFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

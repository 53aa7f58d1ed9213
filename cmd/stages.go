package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zinc-sig/ghostci/internal/output"
	"github.com/zinc-sig/ghostci/internal/pipeline"
)

func newStagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stages",
		Short: "List pipeline stages in execution order",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			output.ListStages(cmd.OutOrStdout(), pipeline.DefaultStages())
		},
	}
}

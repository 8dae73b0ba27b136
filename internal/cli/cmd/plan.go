package cmd

import (
	"github.com/spf13/cobra"
)

func newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "plan [paths...]",
		Short:             "Show which model files a run would convert",
		SilenceUsage:      true,
		SilenceErrors:     true,
		Args:              cobra.ArbitraryArgs,
		ValidArgsFunction: completeModelPaths,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExecute(cmd, args, runMode{PlanOnly: true})
		},
	}
	bindRunFlags(cmd.Flags())
	return cmd
}

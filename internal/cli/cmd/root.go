package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"geoprof/internal/config"
	"geoprof/internal/util/deps"
)

const (
	ExitOK          = 0
	ExitCLIError    = 1
	ExitMissingDep  = 2
	ExitJobFailures = 3
)

// ExitError wraps an error with a process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "geoprof [paths...] [/keepXbim] [/singleThread] [/sameFolder]",
		Short: "Compile building models to wexBIM scenes and profile each engine stage",
		Long: "geoprof converts IFC building models (or previously compiled .xbim stores) into " +
			".wexBIM scenes through the geometry converter, logging how long every nested " +
			"engine stage takes. Directories are expanded to the models they contain; a path " +
			"without an extension is probed as .xbim, .ifc, .ifczip and .ifcxml.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		Args:              cobra.ArbitraryArgs,
		ValidArgsFunction: completeModelPaths,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExecute(cmd, args, runMode{})
		},
	}

	root.PersistentFlags().BoolP("verbose", "v", false, "Log converter output and debug lines")
	root.PersistentFlags().String("converter", "", "Path to the converter executable (default: "+deps.DefaultConverter+" in PATH)")
	root.PersistentFlags().String("log-file", "", "Append the log to this file")

	// Run flags live on root too so `geoprof <paths>` works without a subcommand.
	bindRunFlags(root.Flags())

	root.AddCommand(newRunCmd())
	root.AddCommand(newPlanCmd())
	root.AddCommand(newTuiCmd())
	root.AddCommand(newDoctorCmd())
	root.AddCommand(newCompletionCmd())

	return root
}

func bindRunFlags(fs *pflag.FlagSet) {
	fs.Bool("keep-store", false, "Keep the compiled .xbim store (same as /keepXbim); implies --regenerate")
	fs.Bool("same-folder", false, "Save kept stores beside the input instead of the working directory (same as /sameFolder)")
	fs.Bool("single-thread", false, "Build geometry on one thread (same as /singleThread)")
	fs.Bool("regenerate", false, "Ignore existing .xbim files when expanding directories")
	fs.Bool("keep-temp", false, "Keep converter work directories")
	fs.String("report", "", "Write a YAML batch report to this file")
	fs.Bool("no-ui", false, "Disable the live view; log plain lines")
}

// Execute runs the CLI with the provided context.
func Execute(ctx context.Context) error {
	root := newRootCmd()
	if err := config.Init(root); err != nil {
		return &ExitError{Code: ExitCLIError, Err: err}
	}
	return root.ExecuteContext(ctx)
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// modelExts are offered when completing path arguments.
var modelExts = []string{"ifc", "ifczip", "ifcxml", "xbim"}

func completeModelPaths(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return modelExts, cobra.ShellCompDirectiveFilterFileExt
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Path arguments complete to directories and model files.

Bash:
	source <(geoprof completion bash)

Zsh:
	geoprof completion zsh > "${fpath[1]}/_geoprof"

Fish:
	geoprof completion fish | source

PowerShell:
	geoprof completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, out := cmd.Root(), cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(out, true)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(out)
			}
			return &ExitError{Code: ExitCLIError, Err: fmt.Errorf("unsupported shell %q", args[0])}
		},
	}
}

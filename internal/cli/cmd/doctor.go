package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"geoprof/internal/config"
	"geoprof/internal/dirs"
	"geoprof/internal/util/deps"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "doctor",
		Short:         "Locate the converter and show where geoprof keeps its files",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			conv, err := deps.FindConverter(config.String(cmd.Flags(), "converter", config.KeyConverter))
			if err != nil {
				return &ExitError{Code: ExitMissingDep, Err: err}
			}
			fmt.Fprintf(out, "Converter: %s\n", conv)

			cfgFile := config.FileUsed()
			if cfgFile == "" {
				cfgFile = "(none)"
			}
			fmt.Fprintf(out, "Config:    %s\n", cfgFile)
			for _, d := range []struct {
				label string
				fn    func() (string, error)
			}{
				{"Config dir", dirs.ConfigDir},
				{"Work dir", dirs.TempBaseDir},
				{"Log file", dirs.DefaultLogFile},
			} {
				if p, err := d.fn(); err == nil {
					fmt.Fprintf(out, "%-10s %s\n", d.label+":", p)
				}
			}
			return nil
		},
	}
}

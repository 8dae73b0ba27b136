package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"geoprof/internal/cli"
	"geoprof/internal/config"
	"geoprof/internal/dirs"
	"geoprof/internal/engine/converter"
	"geoprof/internal/logging"
	"geoprof/internal/model"
	"geoprof/internal/pipeline"
	"geoprof/internal/progress"
	"geoprof/internal/report"
	"geoprof/internal/resolve"
	"geoprof/internal/ui"
	"geoprof/internal/util"
	"geoprof/internal/util/deps"
)

type runMode struct {
	ForceTUI bool
	PlanOnly bool
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "run [paths...]",
		Short:             "Convert models and log per-stage timings",
		SilenceUsage:      true,
		SilenceErrors:     true,
		Args:              cobra.ArbitraryArgs,
		ValidArgsFunction: completeModelPaths,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExecute(cmd, args, runMode{})
		},
	}
	bindRunFlags(cmd.Flags())
	return cmd
}

type runInputs struct {
	Paths   []string
	Ignored []string
	Options model.CLIOptions
}

// assembleRunInputs merges flags, legacy slash switches and configuration.
// Precedence: flag > env/config > default; a legacy switch can only turn an
// option on.
func assembleRunInputs(cmd *cobra.Command, args []string) runInputs {
	split := cli.SplitArgs(args, nil)
	fs := cmd.Flags()

	opts := model.CLIOptions{
		KeepStore:       config.Bool(fs, "keep-store", config.KeyKeepStore) || split.Legacy.KeepStore,
		SameFolder:      config.Bool(fs, "same-folder", config.KeySameFolder) || split.Legacy.SameFolder,
		SingleThread:    config.Bool(fs, "single-thread", config.KeySingleThread) || split.Legacy.SingleThread,
		ForceRegenerate: config.Bool(fs, "regenerate", config.KeyRegenerate),
		KeepTemp:        config.Bool(fs, "keep-temp", config.KeyKeepTemp),
		Converter:       config.String(fs, "converter", config.KeyConverter),
		ReportPath:      config.String(fs, "report", config.KeyReport),
		LogFile:         config.String(fs, "log-file", config.KeyLogFile),
		Verbose:         config.Bool(fs, "verbose", config.KeyVerbose),
		NoUI:            config.Bool(fs, "no-ui", config.KeyNoUI),
	}
	if opts.KeepStore {
		opts.ForceRegenerate = true
	}
	return runInputs{Paths: split.Paths, Ignored: split.Ignored, Options: opts}
}

func runExecute(cmd *cobra.Command, args []string, mode runMode) error {
	in := assembleRunInputs(cmd, args)
	for _, tok := range in.Ignored {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: ignoring unrecognized switch %s\n", tok)
	}
	if len(in.Paths) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), cli.Usage)
		return nil
	}
	if mode.PlanOnly {
		return printPlan(cmd, in)
	}

	useTUI := mode.ForceTUI || (!in.Options.NoUI && isTerminal())

	logFile := in.Options.LogFile
	if logFile == "" && useTUI {
		// The live view owns the terminal; keep the timing log on disk.
		logFile, _ = dirs.DefaultLogFile()
	}
	log, err := logging.New(logging.Options{
		File:    logFile,
		Verbose: in.Options.Verbose,
		Quiet:   useTUI,
		Stdout:  cmd.OutOrStdout(),
		Stderr:  cmd.ErrOrStderr(),
	})
	if err != nil {
		return &ExitError{Code: ExitCLIError, Err: fmt.Errorf("open log: %w", err)}
	}
	defer log.Close()

	converterPath, err := deps.FindConverter(in.Options.Converter)
	if err != nil {
		return &ExitError{Code: ExitMissingDep, Err: err}
	}
	log.Debug("Using converter %s", converterPath)

	tempBase, _ := dirs.TempBaseDir()
	eng := converter.New(converter.Options{
		Binary:     converterPath,
		TempBase:   tempBase,
		KeepTemp:   in.Options.KeepTemp,
		OutputLine: func(line string) { log.Debug("%s", line) },
	})
	svcOpts := []pipeline.Option{
		pipeline.WithEngine(eng),
		pipeline.WithLogger(log),
		pipeline.WithOptions(in.Options),
		pipeline.WithStderr(cmd.ErrOrStderr()),
	}

	var sum pipeline.Summary
	if useTUI {
		sum, err = ui.Run(cmd.Context(), func(ctx context.Context, rp progress.Reporter) pipeline.Summary {
			opts := append(svcOpts, pipeline.WithReporter(rp), pipeline.WithStderr(io.Discard))
			return pipeline.NewService(opts...).Run(ctx, in.Paths)
		})
		if err != nil {
			return &ExitError{Code: ExitCLIError, Err: err}
		}
	} else {
		sum = pipeline.NewService(svcOpts...).Run(cmd.Context(), in.Paths)
	}
	return finishRun(log, in.Options, sum)
}

// finishRun writes the optional report and maps the summary to an exit code.
func finishRun(log *logging.Logger, opts model.CLIOptions, sum pipeline.Summary) error {
	if opts.ReportPath != "" {
		if err := report.Write(opts.ReportPath, sum); err != nil {
			log.Error("%v", err)
		} else {
			log.Info("Report written to %s", opts.ReportPath)
		}
	}
	if sum.Failed > 0 {
		for _, r := range sum.Results {
			if !r.OK() {
				log.Error("%v", r.Err)
			}
		}
		return &ExitError{Code: ExitJobFailures, Err: fmt.Errorf("%d of %d model(s) failed", sum.Failed, sum.Total)}
	}
	return nil
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// printPlan lists what a run would convert without touching the converter.
func printPlan(cmd *cobra.Command, in runInputs) error {
	svc := pipeline.NewService(pipeline.WithOptions(in.Options))
	planned := svc.Plan(cmd.Context(), in.Paths)

	out := cmd.OutOrStdout()
	failed := 0
	fmt.Fprintf(out, "Plan: %d model(s)\n", len(planned))
	for _, p := range planned {
		if p.Err != nil {
			failed++
			fmt.Fprintf(out, "- %s: %v\n", p.Job.InputPath, p.Err)
			continue
		}
		j := p.Job
		fmt.Fprintf(out, "- %s [%s] -> %s\n", j.ResolvedPath, j.Format, util.ChangeExt(j.ResolvedPath, resolve.ExtScene))
		if j.KeepStore {
			fmt.Fprintf(out, "    store: %s\n", svc.StorePath(j))
		}
	}
	if in.Options.SingleThread {
		fmt.Fprintln(out, "Threads: 1")
	}
	if failed > 0 {
		return &ExitError{Code: ExitJobFailures, Err: fmt.Errorf("%d input(s) could not be resolved", failed)}
	}
	return nil
}

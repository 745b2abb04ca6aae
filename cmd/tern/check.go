package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"tern/internal/diag"
	"tern/internal/diagfmt"
	"tern/internal/driver"
	"tern/internal/prof"
	"tern/internal/sema"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [file.tn|directory]...",
		Short: "Resolve calls and report diagnostics",
		Long:  `Analyze .tn sources (arguments, or package.sources from tern.toml) and report unresolved references, overload ambiguities, inference failures and checker findings`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalysis(cmd, args, false)
		},
	}
}

func newCallsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "calls [file.tn|directory]...",
		Short: "Print every resolved call with its candidate, type arguments and bindings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalysis(cmd, args, true)
		},
	}
}

// runAnalysis loads settings, runs the driver and renders the result. It
// returns errHasErrors when any error diagnostic was produced.
func runAnalysis(cmd *cobra.Command, args []string, withCalls bool) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	cleanup, err := setupTracing(cmd, &s.cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	defer dumpTraceOnPanic(cmd.ErrOrStderr())

	session, err := startProfiling(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if err := session.Stop(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "tern: profile: %v\n", err)
		}
	}()

	paths, err := sourcePaths(&s.cfg, args)
	if err != nil {
		return err
	}

	opts := driver.Options{
		Jobs:      s.cfg.Analysis.Jobs,
		Checkers:  s.checkers,
		BaseDir:   s.cfg.Root,
		Heartbeat: s.heartbeat,
	}
	if s.cfg.Cache.Enabled {
		if opts.Cache, err = driver.OpenDiskCache("tern", s.cfg.Cache.Dir); err != nil {
			return fmt.Errorf("open cache: %w", err)
		}
	}
	mode, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	uiSel, err := readUIMode(mode)
	if err != nil {
		return err
	}
	var res *driver.Result
	if shouldUseTUI(uiSel, cmd.OutOrStdout(), s.format.Structured()) {
		res, err = runCheckWithUI(cmd.Context(), cmd.ErrOrStderr(), "tern "+cmd.Name(), paths, opts)
	} else {
		res, err = driver.Check(cmd.Context(), paths, opts)
	}
	if err != nil {
		return err
	}

	bag := res.Diagnostics(0).AtLeast(s.minSeverity).Limit(s.cfg.Analysis.MaxDiagnostics)
	var calls []sema.CallRecord
	if withCalls {
		calls = res.Calls()
	}
	out := cmd.OutOrStdout()
	if err := render(out, s, res, bag, calls); err != nil {
		return err
	}
	if s.timings {
		fmt.Fprint(cmd.ErrOrStderr(), summarizeTimings(res))
	}
	if res.HasErrors() {
		return errHasErrors
	}
	return nil
}

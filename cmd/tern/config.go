package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"tern/internal/diag"
	"tern/internal/diagfmt"
	"tern/internal/project"
	"tern/internal/sema"
)

// settings is the final run configuration: the manifest plus flags.
type settings struct {
	cfg      project.Config
	format   diagfmt.Format
	pathMode diagfmt.PathMode
	color    bool
	checkers *sema.Checkers
	timings  bool
	// minSeverity filters diagnostics before output; the cache keeps all of them.
	minSeverity diag.Severity
	heartbeat   time.Duration
}

// loadSettings reads the manifest (explicit --config or found upwards from
// the working directory) and applies explicitly set flags on top.
func loadSettings(cmd *cobra.Command) (*settings, error) {
	flags := cmd.Flags()
	cfgPath, err := flags.GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}

	var cfg project.Config
	if cfgPath != "" {
		cfg, err = project.Load(cfgPath)
	} else {
		wd, wdErr := os.Getwd()
		if wdErr != nil {
			return nil, wdErr
		}
		cfg, _, err = project.LoadFrom(wd)
	}
	if err != nil {
		return nil, err
	}

	if err := applyFlags(cmd, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &settings{cfg: cfg}
	if s.format, err = diagfmt.ParseFormat(cfg.Output.Format); err != nil {
		return nil, err
	}
	if s.pathMode, err = diagfmt.ParsePathMode(cfg.Output.PathMode); err != nil {
		return nil, err
	}
	switch cfg.Output.Color {
	case "always":
		s.color = true
	case "never":
		s.color = false
	default:
		s.color = writerIsTerminal(cmd.OutOrStdout()) && os.Getenv("NO_COLOR") == ""
	}
	if cfg.Analysis.Checkers == nil {
		s.checkers = sema.DefaultCheckers()
	} else if s.checkers, err = sema.CheckersFor(cfg.Analysis.Checkers); err != nil {
		return nil, err
	}
	if s.minSeverity, err = diag.ParseSeverity(cfg.Output.MinSeverity); err != nil {
		return nil, err
	}
	if s.heartbeat, err = cfg.HeartbeatInterval(); err != nil {
		return nil, err
	}
	if s.timings, err = flags.GetBool("timings"); err != nil {
		return nil, fmt.Errorf("failed to get timings flag: %w", err)
	}
	return s, nil
}

func applyFlags(cmd *cobra.Command, cfg *project.Config) error {
	flags := cmd.Flags()
	var err error
	str := func(name string, dst *string) {
		if err == nil && flags.Changed(name) {
			*dst, err = flags.GetString(name)
		}
	}
	num := func(name string, dst *int) {
		if err == nil && flags.Changed(name) {
			*dst, err = flags.GetInt(name)
		}
	}
	str("format", &cfg.Output.Format)
	str("path-mode", &cfg.Output.PathMode)
	str("color", &cfg.Output.Color)
	str("trace", &cfg.Trace.Output)
	str("trace-level", &cfg.Trace.Level)
	str("trace-mode", &cfg.Trace.Mode)
	str("min-severity", &cfg.Output.MinSeverity)
	if err == nil && flags.Changed("trace-heartbeat") {
		var d time.Duration
		d, err = flags.GetDuration("trace-heartbeat")
		cfg.Trace.Heartbeat = d.String()
	}
	num("jobs", &cfg.Analysis.Jobs)
	num("max-diagnostics", &cfg.Analysis.MaxDiagnostics)
	if err == nil && flags.Changed("checkers") {
		var names []string
		names, err = flags.GetStringSlice("checkers")
		if names == nil {
			names = []string{}
		}
		cfg.Analysis.Checkers = names
	}
	if err == nil && flags.Changed("no-notes") {
		var off bool
		off, err = flags.GetBool("no-notes")
		cfg.Output.Notes = !off
	}
	if err == nil && flags.Changed("cache") {
		cfg.Cache.Enabled, err = flags.GetBool("cache")
	}
	if err != nil {
		return fmt.Errorf("failed to read flags: %w", err)
	}
	return nil
}

// sourcePaths expands CLI arguments (files or directories); without
// arguments the manifest's package.sources are used.
func sourcePaths(cfg *project.Config, args []string) ([]string, error) {
	if len(args) == 0 {
		return cfg.SourceFiles()
	}
	var out []string
	seen := make(map[string]struct{})
	for _, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return nil, err
		}
		sub := project.Default()
		sub.Root = filepath.Dir(abs)
		sub.Package.Sources = []string{filepath.Base(abs)}
		files, err := sub.SourceFiles()
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			if _, dup := seen[f]; !dup {
				seen[f] = struct{}{}
				out = append(out, f)
			}
		}
	}
	return out, nil
}

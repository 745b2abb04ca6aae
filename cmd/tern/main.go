package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"tern/internal/trace"
	"tern/internal/version"
)

// errHasErrors signals that analysis found errors; the message is already printed.
var errHasErrors = errors.New("analysis reported errors")

// newRootCmd builds the command tree; tests create a fresh one per run.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tern",
		Short:         "Tern call resolution checker",
		Long:          `Tern resolves calls, overloads and type arguments in .tn sources and reports diagnostics`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newCheckCmd(), newCallsCmd(), newVersionCmd())

	// Global flags; explicitly set ones override tern.toml
	pf := root.PersistentFlags()
	pf.String("config", "", "path to tern.toml / tern.yaml (default: search upwards)")
	pf.String("format", "pretty", "output format (pretty|short|json|yaml|msgpack)")
	pf.String("path-mode", "auto", "path display (auto|absolute|relative|basename)")
	pf.String("color", "auto", "colorize output (auto|always|never)")
	pf.Int("jobs", 0, "max parallel workers (0=auto)")
	pf.Int("max-diagnostics", 100, "maximum number of diagnostics to show (0=unlimited)")
	pf.StringSlice("checkers", nil, "enabled additional checkers (empty value disables all)")
	pf.Bool("no-notes", false, "omit diagnostic notes")
	pf.String("min-severity", "info", "hide diagnostics below this severity (info|warning|error)")
	pf.Bool("cache", false, "reuse results from the on-disk cache")
	pf.Bool("timings", false, "show timing information")
	pf.String("ui", "auto", "progress UI (auto|on|off)")
	pf.String("cpuprofile", "", "write CPU profile to file")
	pf.String("memprofile", "", "write heap profile to file")
	pf.String("runtime-trace", "", "write Go runtime trace to file")
	pf.String("trace", "", "trace output file (- for stderr)")
	pf.String("trace-level", "off", "trace level ("+strings.Join(trace.LevelNames(), "|")+")")
	pf.Duration("trace-heartbeat", 0, "emit memo counters to the trace every interval (0=off)")
	pf.String("trace-mode", "stream", "trace storage mode (stream|ring|both)")
	return root
}

// main executes the root command. Any error exits with status code 1.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errHasErrors) {
			fmt.Fprintf(os.Stderr, "tern: %v\n", err)
		}
		os.Exit(1)
	}
}

// isTerminal reports whether the file is a terminal
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func writerIsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isTerminal(f)
}

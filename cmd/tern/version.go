package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"tern/internal/sema"
	"tern/internal/version"
)

type versionPayload struct {
	Tool      string   `json:"tool"`
	Version   string   `json:"version"`
	GitCommit string   `json:"git_commit,omitempty"`
	BuildDate string   `json:"build_date,omitempty"`
	Checkers  []string `json:"checkers"`
}

func newVersionCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show tern version and builtin checkers",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch strings.ToLower(output) {
			case "json":
				return renderVersionJSON(cmd.OutOrStdout())
			case "pretty":
				renderVersionPretty(cmd.OutOrStdout(), writerIsTerminal(cmd.OutOrStdout()))
				return nil
			default:
				return fmt.Errorf("unsupported output %q (must be pretty or json)", output)
			}
		},
	}
	cmd.Flags().StringVar(&output, "output", "pretty", "output format (pretty|json)")
	return cmd
}

func renderVersionPretty(out io.Writer, colored bool) {
	fmt.Fprintln(out, version.String(colored))
	fmt.Fprintf(out, "checkers: %s\n", strings.Join(sema.BuiltinCheckerNames(), ", "))
}

func renderVersionJSON(out io.Writer) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(versionPayload{
		Tool:      "tern",
		Version:   version.Version,
		GitCommit: version.GitCommit,
		BuildDate: version.BuildDate,
		Checkers:  sema.BuiltinCheckerNames(),
	})
}

package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/vmihailenco/msgpack/v5"

	"tern/internal/diag"
	"tern/internal/sema"
	"tern/internal/source"
)

// Format selects how `tern check` and `tern calls` render their output.
type Format uint8

const (
	FormatPretty Format = iota
	FormatShort
	FormatJSON
	FormatYAML
	FormatMsgpack
)

var formatNames = [...]string{
	FormatPretty:  "pretty",
	FormatShort:   "short",
	FormatJSON:    "json",
	FormatYAML:    "yaml",
	FormatMsgpack: "msgpack",
}

func (f Format) String() string {
	if int(f) < len(formatNames) {
		return formatNames[f]
	}
	return fmt.Sprintf("Format(%d)", f)
}

// Structured reports whether f is one of the machine-readable formats.
func (f Format) Structured() bool { return f >= FormatJSON }

// ParseFormat maps a flag/config value to a Format.
func ParseFormat(s string) (Format, error) {
	for i, name := range formatNames {
		if strings.EqualFold(s, name) {
			return Format(i), nil
		}
	}
	return FormatPretty, fmt.Errorf("unknown format %q (want one of %s)", s, strings.Join(formatNames[:], ", "))
}

// Report is the root of machine-readable output.
type Report struct {
	Diagnostics []DiagnosticJSON  `json:"diagnostics" yaml:"diagnostics" msgpack:"diagnostics"`
	Count       int               `json:"count" yaml:"count" msgpack:"count"`
	Calls       []sema.CallRecord `json:"calls,omitempty" yaml:"calls,omitempty" msgpack:"calls,omitempty"`
}

// BuildReport assembles diagnostics and (optionally) resolved calls.
func BuildReport(bag *diag.Bag, fs *source.FileSet, calls []sema.CallRecord, opts JSONOpts) Report {
	ds := BuildDiagnostics(bag, fs, opts)
	return Report{Diagnostics: ds, Count: len(ds), Calls: calls}
}

// Encode serializes rep in a structured format.
func Encode(w io.Writer, f Format, rep Report) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	case FormatYAML:
		return yaml.NewEncoder(w, yaml.Indent(2)).Encode(rep)
	case FormatMsgpack:
		enc := msgpack.NewEncoder(w)
		enc.SetOmitEmpty(true)
		return enc.Encode(rep)
	}
	return fmt.Errorf("format %s is not structured", f)
}

// Decode reads back a report written by Encode (json/yaml/msgpack).
func Decode(r io.Reader, f Format) (Report, error) {
	var rep Report
	var err error
	switch f {
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&rep)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&rep)
	case FormatMsgpack:
		err = msgpack.NewDecoder(r).Decode(&rep)
	default:
		err = fmt.Errorf("format %s is not structured", f)
	}
	return rep, err
}

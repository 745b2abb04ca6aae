package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"tern/internal/sema"
)

// Calls prints resolved calls as an aligned table:
//
//	main.tn:3:14  f  app.f  SUCCESS  Int  [x: Int]
func Calls(w io.Writer, calls []sema.CallRecord, opts PrettyOpts) {
	if len(calls) == 0 {
		return
	}
	p := newPalette(opts.Color)
	rows := make([][]string, 0, len(calls))
	for _, c := range calls {
		loc := fmt.Sprintf("%s:%d:%d", c.File, c.Line, c.Col)
		name := c.Name
		if len(c.TypeArgs) > 0 {
			name += "<" + strings.Join(c.TypeArgs, ", ") + ">"
		}
		if c.Safe {
			name = "?." + name
		}
		rows = append(rows, []string{loc, name, c.Callee, c.Status, c.Result, bindings(c.Args)})
	}

	widths := make([]int, len(rows[0]))
	for _, r := range rows {
		for i, cell := range r {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}
	for k, r := range rows {
		var sb strings.Builder
		for i, cell := range r {
			if i == len(r)-1 {
				sb.WriteString(cell)
				break
			}
			padded := runewidth.FillRight(cell, widths[i])
			if i == 3 {
				padded = statusColor(p, calls[k].Status).Sprint(padded)
			}
			sb.WriteString(padded)
			sb.WriteString("  ")
		}
		fmt.Fprintln(w, strings.TrimRight(sb.String(), " "))
	}
}

func statusColor(p palette, status string) *color.Color {
	switch status {
	case sema.StatusSuccess.String():
		return p.caret
	case sema.StatusWeak.String():
		return p.warn
	}
	return p.err
}

func bindings(args []sema.ArgRecord) string {
	if len(args) == 0 {
		return ""
	}
	parts := make([]string, 0, len(args))
	for _, a := range args {
		s := a.Param + ": " + a.Type
		switch {
		case a.Default:
			s += " (default)"
		case a.Vararg:
			s += fmt.Sprintf(" (vararg ×%d)", a.Count)
		}
		parts = append(parts, s)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

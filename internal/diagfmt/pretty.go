package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"tern/internal/diag"
	"tern/internal/source"
)

const tabWidth = 4

type palette struct {
	err, warn, info, note, code, gutter, caret *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		note:   color.New(color.FgBlue, color.Bold),
		code:   color.New(color.Faint),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgGreen, color.Bold),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.note, p.code, p.gutter, p.caret} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	}
	return p.info
}

// Pretty renders diagnostics in human-readable form.
// It walks bag.Items() (call bag.Sort() first).
// For each diag it prints:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// then the source line context with a ^~~~ underline under the Span, then Notes in the same format.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for i, d := range bag.Items() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		f := fs.Get(d.Primary.File)
		start, _ := fs.Resolve(d.Primary)
		fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n",
			formatPath(fs, f, opts.PathMode), start.Line, start.Col,
			p.severity(d.Severity).Sprint(d.Severity.String()), p.code.Sprint(d.Code.ID()), d.Message)
		snippet(w, fs, d.Primary, opts, p)

		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			nf := fs.Get(n.Span.File)
			ns, _ := fs.Resolve(n.Span)
			fmt.Fprintf(w, "  %s %s:%d:%d: %s\n", p.note.Sprint("note:"),
				formatPath(fs, nf, opts.PathMode), ns.Line, ns.Col, n.Msg)
		}
	}
}

// snippet prints the span line (and Context lines before it) with an underline.
func snippet(w io.Writer, fs *source.FileSet, span source.Span, opts PrettyOpts, p palette) {
	f := fs.Get(span.File)
	start, end := fs.Resolve(span)
	if start.Line == 0 {
		return
	}
	first := start.Line
	if ctx := uint32(max(opts.Context, 0)); ctx < first {
		first -= ctx
	} else {
		first = 1
	}
	gw := len(fmt.Sprint(start.Line))
	for ln := first; ln <= start.Line; ln++ {
		text := clip(expandTabs(f.GetLine(ln)), opts.Width, gw)
		fmt.Fprintf(w, "%s %s\n", p.gutter.Sprintf("%*d |", gw, ln), text)
	}

	line := f.GetLine(start.Line)
	col := min(int(start.Col)-1, len(line))
	endCol := len(line)
	if end.Line == start.Line {
		endCol = min(max(int(end.Col)-1, col), len(line))
	}
	pad := runewidth.StringWidth(expandTabs(line[:col]))
	n := max(runewidth.StringWidth(expandTabs(line[col:endCol])), 1)
	marker := "^" + strings.Repeat("~", n-1)
	fmt.Fprintf(w, "%s %s%s\n", p.gutter.Sprintf("%*s |", gw, ""), strings.Repeat(" ", pad), p.caret.Sprint(marker))
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}

// clip trims a source line to the terminal width, gutter included.
func clip(s string, width uint8, gutter int) string {
	if width == 0 {
		return s
	}
	room := int(width) - gutter - 3
	if room <= 0 || runewidth.StringWidth(s) <= room {
		return s
	}
	return runewidth.Truncate(s, room, "…")
}

// Short prints one line per diagnostic, sorted by position.
func Short(w io.Writer, bag *diag.Bag, fs *source.FileSet, includeNotes bool) {
	if out := diag.FormatShortDiagnostics(bag.Items(), fs, includeNotes); out != "" {
		fmt.Fprintln(w, out)
	}
}

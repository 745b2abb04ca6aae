package diag

import (
	"cmp"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"tern/internal/source"
)

// shortLine is one line of `--format short` output and golden files.
type shortLine struct {
	sev  string
	code string
	path string
	pos  source.LineCol
	msg  string
}

func (l shortLine) String() string {
	return fmt.Sprintf("%s %s %s:%d:%d %s", l.sev, l.code, l.path, l.pos.Line, l.pos.Col, l.msg)
}

func compareShort(a, b shortLine) int {
	return cmp.Or(
		cmp.Compare(a.path, b.path),
		cmp.Compare(a.pos.Line, b.pos.Line),
		cmp.Compare(a.pos.Col, b.pos.Col),
		cmp.Compare(a.sev, b.sev),
		cmp.Compare(a.code, b.code),
		cmp.Compare(a.msg, b.msg),
	)
}

// FormatGoldenDiagnostics renders one line per diagnostic (and per note when
// includeNotes), sorted by position. Entries located in the prelude are
// dropped so golden files do not change with it.
func FormatGoldenDiagnostics(diags []Diagnostic, fs *source.FileSet, includeNotes bool) string {
	return renderShort(diags, fs, includeNotes, true)
}

// FormatShortDiagnostics is FormatGoldenDiagnostics keeping prelude entries.
func FormatShortDiagnostics(diags []Diagnostic, fs *source.FileSet, includeNotes bool) string {
	return renderShort(diags, fs, includeNotes, false)
}

func renderShort(diags []Diagnostic, fs *source.FileSet, includeNotes, skipPrelude bool) string {
	if fs == nil || len(diags) == 0 {
		return ""
	}
	var lines []shortLine
	add := func(sev string, code Code, sp source.Span, msg string) {
		if int(sp.File) >= fs.Len() {
			return
		}
		f := fs.Get(sp.File)
		if skipPrelude && f.IsVirtual() && strings.HasPrefix(f.Path, "<") {
			return
		}
		start, _ := fs.Resolve(sp)
		lines = append(lines, shortLine{
			sev:  sev,
			code: code.ID(),
			path: strings.TrimPrefix(filepath.ToSlash(f.FormatPath("relative", fs.BaseDir())), "./"),
			pos:  start,
			msg:  strings.Join(strings.Fields(msg), " "),
		})
	}
	for i := range diags {
		d := &diags[i]
		add(strings.ToLower(d.Severity.String()), d.Code, d.Primary, d.Message)
		if includeNotes {
			for _, n := range d.Notes {
				add("note", d.Code, n.Span, n.Msg)
			}
		}
	}
	slices.SortStableFunc(lines, compareShort)

	var b strings.Builder
	for i, l := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(l.String())
	}
	return b.String()
}

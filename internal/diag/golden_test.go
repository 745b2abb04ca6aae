package diag_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"tern/internal/diag"
	"tern/internal/source"
)

func TestGoldenSkipsPreludeAndSorts(t *testing.T) {
	fs := source.NewFileSet()
	pre := fs.AddVirtual("<prelude>/tern.tn", []byte("class Any\n"))
	main := fs.AddVirtual("main.tn", []byte("fun f() = g()\nval x = y\n"))

	diags := []diag.Diagnostic{
		diag.New(diag.SevError, diag.SemaUnresolvedReference, source.Span{File: main, Start: 22, End: 23}, "unresolved reference: y"),
		diag.New(diag.SevError, diag.SemaUnresolvedReference, source.Span{File: main, Start: 10, End: 11}, "unresolved reference:\ng"),
		diag.New(diag.SevWarning, diag.SemaDeprecatedUsage, source.Span{File: pre, Start: 0, End: 5}, "inside prelude"),
	}
	diags[1].Notes = []diag.Note{{Span: source.Span{File: pre, Start: 6, End: 9}, Msg: "did you mean 'Any'?"}}

	got := diag.FormatGoldenDiagnostics(diags, fs, true)
	require.Equal(t,
		"error SEM3001 main.tn:1:11 unresolved reference: g\n"+
			"error SEM3001 main.tn:2:9 unresolved reference: y", got)

	short := diag.FormatShortDiagnostics(diags, fs, false)
	require.Contains(t, short, "warning SEM3017 <prelude>/tern.tn:1:1 inside prelude")
}

func TestGoldenEmpty(t *testing.T) {
	require.Empty(t, diag.FormatGoldenDiagnostics(nil, source.NewFileSet(), true))
}

package diagfmt

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"tern/internal/diag"
	"tern/internal/sema"
	"tern/internal/source"
)

func sampleReport(t *testing.T) Report {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("main.tn", []byte("fun main() { baz() }\n"))
	bag := diag.NewBag(0)
	d := diag.New(diag.SevError, diag.SemaUnresolvedReference, source.Span{File: id, Start: 13, End: 16}, "unresolved reference: baz")
	d.Notes = []diag.Note{{Span: source.Span{File: id, Start: 4, End: 8}, Msg: "did you mean 'bar'?"}}
	bag.Add(d)
	bag.Add(diag.New(diag.SevWarning, diag.SemaDeprecatedUsage, source.Span{File: id, Start: 0, End: 3}, "old"))

	calls := []sema.CallRecord{{File: "main.tn", Line: 1, Col: 14, Name: "f", Callee: "app.f", Kind: "function", Status: "SUCCESS", Result: "Int"}}
	return BuildReport(bag, fs, calls, JSONOpts{IncludePositions: true, IncludeNotes: true, Max: 1})
}

func TestBuildReportTruncatesAndResolves(t *testing.T) {
	rep := sampleReport(t)
	require.Equal(t, 1, rep.Count)
	d := rep.Diagnostics[0]
	require.Equal(t, "SEM3001", d.Code)
	require.Equal(t, "ERROR", d.Severity)
	require.Equal(t, uint32(1), d.Location.StartLine)
	require.Equal(t, uint32(14), d.Location.StartCol)
	require.Len(t, d.Notes, 1)
}

func TestEncodeYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, FormatYAML, sampleReport(t)))
	out := buf.String()
	require.Contains(t, out, "diagnostics:")
	require.Contains(t, out, "code: SEM3001")
	require.Contains(t, out, "callee: app.f")
}

func TestEncodeDecodeStructured(t *testing.T) {
	want := sampleReport(t)
	for _, f := range []Format{FormatJSON, FormatYAML, FormatMsgpack} {
		t.Run(f.String(), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, f, want))
			got, err := Decode(&buf, f)
			require.NoError(t, err)
			require.Equal(t, want, got)
		})
	}
	require.Error(t, Encode(&bytes.Buffer{}, FormatPretty, want))
}

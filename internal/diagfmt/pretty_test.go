package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"tern/internal/diag"
	"tern/internal/sema"
	"tern/internal/source"
)

// TestPathModes checks the path formatting modes
func TestPathModes(t *testing.T) {
	fs := source.NewFileSetWithBase("/home/user/project")
	content := []byte("val x = \"unterminated string\n")
	fileID := fs.AddVirtual("/home/user/project/src/test.tn", content)

	bag := diag.NewBag(10)
	bag.Add(diag.New(diag.SevError, diag.LexUnterminatedString,
		source.Span{File: fileID, Start: 8, End: 28}, "Unterminated string literal"))

	tests := []struct {
		name     string
		mode     PathMode
		contains string
	}{
		{"Absolute path", PathModeAbsolute, "/home/user/project/src/test.tn"},
		{"Relative path", PathModeRelative, "src/test.tn:1:9"},
		{"Basename only", PathModeBasename, "test.tn:1:9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Pretty(&buf, bag, fs, PrettyOpts{Context: 1, PathMode: tt.mode})
			output := buf.String()
			require.Contains(t, output, tt.contains)
			require.Contains(t, output, "ERROR")
			require.Contains(t, output, "LEX1002")
			require.Contains(t, output, "Unterminated string")
		})
	}
}

func TestPrettySnippetAndNotes(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("main.tn", []byte("fun bar() = 1\nfun main() { baz() }\n"))

	bag := diag.NewBag(4)
	d := diag.New(diag.SevError, diag.SemaUnresolvedReference,
		source.Span{File: fileID, Start: 27, End: 30}, "unresolved reference: baz")
	d.Notes = []diag.Note{{Span: source.Span{File: fileID, Start: 4, End: 7}, Msg: "did you mean 'bar'?"}}
	bag.Add(d)

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Context: 1, PathMode: PathModeBasename, ShowNotes: true})
	out := buf.String()

	require.Contains(t, out, "main.tn:2:14: ERROR SEM3001: unresolved reference: baz")
	require.Contains(t, out, "1 | fun bar() = 1")
	require.Contains(t, out, "2 | fun main() { baz() }")
	require.Contains(t, out, "\n  |"+strings.Repeat(" ", 14)+"^~~\n")
	require.Contains(t, out, "note: main.tn:1:5: did you mean 'bar'?")

	buf.Reset()
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename})
	require.NotContains(t, buf.String(), "note:")
	require.NotContains(t, buf.String(), "fun bar()")
}

func TestPrettyTabsAndWideRunes(t *testing.T) {
	fs := source.NewFileSet()
	src := "\tval 名前 = x\n"
	fileID := fs.AddVirtual("w.tn", []byte(src))
	start := uint32(strings.Index(src, "x"))

	bag := diag.NewBag(1)
	bag.Add(diag.New(diag.SevWarning, diag.SemaDeprecatedUsage,
		source.Span{File: fileID, Start: start, End: start + 1}, "old"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename})
	lines := strings.Split(buf.String(), "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	// 4 (tab) + "val " + 4 (two wide runes) + " = "
	require.Equal(t, "  | "+strings.Repeat(" ", 15)+"^", lines[2])
}

func TestPathModeAuto(t *testing.T) {
	fs := source.NewFileSet()
	tests := []struct {
		path     string
		expected string
	}{
		{"test.tn", "test.tn"},
		{"/very/long/absolute/path/to/some/nested/directory/file.tn", "file.tn:1:9"},
	}
	for _, tt := range tests {
		fileID := fs.AddVirtual(tt.path, []byte("val x = 42\n"))
		bag := diag.NewBag(10)
		bag.Add(diag.New(diag.SevWarning, diag.LexUnknownChar,
			source.Span{File: fileID, Start: 8, End: 10}, "Test warning"))

		var buf bytes.Buffer
		Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeAuto})
		require.Contains(t, buf.String(), tt.expected)
	}
}

func TestCallsTable(t *testing.T) {
	calls := []sema.CallRecord{
		{File: "main.tn", Line: 3, Col: 14, Name: "f", Callee: "app.f", Status: "SUCCESS", Result: "Int",
			Args: []sema.ArgRecord{{Param: "x", Type: "Int", Count: 1}}},
		{File: "main.tn", Line: 10, Col: 2, Name: "listOf", Callee: "tern.listOf", Status: "SUCCESS", Result: "List<Int>",
			TypeArgs: []string{"Int"}, Args: []sema.ArgRecord{{Param: "elements", Type: "Int", Count: 3, Vararg: true}}},
	}
	var buf bytes.Buffer
	Calls(&buf, calls, PrettyOpts{})
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, "main.tn:3:14  f            app.f        SUCCESS  Int        [x: Int]", lines[0])
	require.Equal(t, "main.tn:10:2  listOf<Int>  tern.listOf  SUCCESS  List<Int>  [elements: Int (vararg ×3)]", lines[1])
}

func TestParseOptions(t *testing.T) {
	f, err := ParseFormat("YAML")
	require.NoError(t, err)
	require.Equal(t, FormatYAML, f)
	require.True(t, f.Structured())
	_, err = ParseFormat("sarif")
	require.Error(t, err)

	m, err := ParsePathMode("rel")
	require.NoError(t, err)
	require.Equal(t, PathModeRelative, m)
	_, err = ParsePathMode("weird")
	require.Error(t, err)
}

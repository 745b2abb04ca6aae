package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"tern/internal/diagfmt"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// workspace creates a project with tern.toml and the given files.
func workspace(t *testing.T, manifest string, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tern.toml"), []byte(manifest), 0o600))
	for name, text := range files {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(text), 0o600))
	}
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String() + errOut.String(), err
}

var sample = map[string]string{
	"src/a.tn": "package app\nfun twice(x: Int): Int = x.plus(x)\n",
	"src/b.tn": "package app\n@Deprecated(\"use twice\")\nfun old(): Int = 1\nfun main() {\n  val y = twice(old())\n  nope(y)\n}\n",
}

func TestCheckReportsErrors(t *testing.T) {
	dir := workspace(t, "[package]\nsources = [\"src\"]\n", sample)
	out, err := run(t, "--config", filepath.Join(dir, "tern.toml"), "check", "--format", "short")
	require.ErrorIs(t, err, errHasErrors)
	require.Contains(t, out, "SEM3001")
	require.Contains(t, out, "nope")
	require.Contains(t, out, "'old' is deprecated")
}

func TestCheckersFlagDisablesWarnings(t *testing.T) {
	dir := workspace(t, "[package]\nsources = [\"src\"]\n", sample)
	out, err := run(t, "--config", filepath.Join(dir, "tern.toml"), "--checkers=", "check", "--format", "short")
	require.ErrorIs(t, err, errHasErrors)
	require.NotContains(t, out, "deprecated")

	_, err = run(t, "--config", filepath.Join(dir, "tern.toml"), "--checkers", "bogus", "check")
	require.Error(t, err)
	require.NotErrorIs(t, err, errHasErrors)
}

func TestMinSeverityHidesWarnings(t *testing.T) {
	dir := workspace(t, "[package]\nsources = [\"src\"]\n", sample)
	cfg := filepath.Join(dir, "tern.toml")
	out, err := run(t, "--config", cfg, "--min-severity", "error", "check", "--format", "short")
	require.ErrorIs(t, err, errHasErrors)
	require.Contains(t, out, "nope")
	require.NotContains(t, out, "deprecated")

	_, err = run(t, "--config", cfg, "--min-severity", "loud", "check")
	require.Error(t, err)
	require.NotErrorIs(t, err, errHasErrors)

	_, err = run(t, "--config", cfg, "--trace-heartbeat", "5ms", "--trace-level", "phase", "--trace", filepath.Join(dir, "trace.log"), "check", "--format", "short")
	require.ErrorIs(t, err, errHasErrors)
	data, err := os.ReadFile(filepath.Join(dir, "trace.log"))
	require.NoError(t, err)
	require.Contains(t, string(data), "driver.check")
}

func TestCallsJSON(t *testing.T) {
	dir := workspace(t, "[output]\nformat = \"json\"\n", sample)
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--config", filepath.Join(dir, "tern.toml"), "calls", filepath.Join(dir, "src")})
	require.ErrorIs(t, root.Execute(), errHasErrors)

	rep, err := diagfmt.Decode(&out, diagfmt.FormatJSON)
	require.NoError(t, err)
	require.Equal(t, 2, rep.Count)
	var callees []string
	for _, c := range rep.Calls {
		callees = append(callees, c.Callee)
	}
	require.Contains(t, callees, "app.twice")
	require.Contains(t, callees, "app.old")
}

func TestCleanProjectSucceeds(t *testing.T) {
	dir := workspace(t, "", map[string]string{
		"main.tn": "package app\nfun main() { println(listOf(1, 2)) }\n",
	})
	out, err := run(t, "--config", filepath.Join(dir, "tern.toml"), "--timings", "check")
	require.NoError(t, err)
	require.Contains(t, out, "resolve")
	require.Contains(t, out, "memo.computed")
}

func TestInvalidFlags(t *testing.T) {
	dir := workspace(t, "", map[string]string{"main.tn": "package app\n"})
	cfg := filepath.Join(dir, "tern.toml")
	for _, args := range [][]string{
		{"--config", cfg, "--format", "xml", "check"},
		{"--config", cfg, "--jobs", "-2", "check"},
		{"--config", cfg, "--trace-level", "loud", "check"},
		{"--config", filepath.Join(dir, "missing.toml"), "check"},
	} {
		_, err := run(t, args...)
		require.Error(t, err, "%v", args)
	}
}

func TestVersionJSON(t *testing.T) {
	out, err := run(t, "version", "--output", "json")
	require.NoError(t, err)
	require.Contains(t, out, `"tool": "tern"`)
	require.Contains(t, out, `"deprecation"`)

	_, err = run(t, "version", "--output", "xml")
	require.Error(t, err)
}

func TestUIMode(t *testing.T) {
	for in, want := range map[string]uiMode{"": uiModeAuto, "ON": uiModeOn, " off ": uiModeOff} {
		got, err := readUIMode(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err := readUIMode("maybe")
	require.Error(t, err)

	var buf bytes.Buffer
	require.False(t, shouldUseTUI(uiModeAuto, &buf, false))
	require.True(t, shouldUseTUI(uiModeOn, &buf, true))
	require.False(t, shouldUseTUI(uiModeOff, os.Stdout, false))
}

package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoadTOMLKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tern.toml")
	writeFile(t, path, `
[analysis]
jobs = 4
checkers = ["deprecation", "reified"]

[output]
format = "json"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 4, cfg.Analysis.Jobs)
	require.Equal(t, 100, cfg.Analysis.MaxDiagnostics)
	require.Equal(t, []string{"deprecation", "reified"}, cfg.Analysis.Checkers)
	require.Equal(t, "json", cfg.Output.Format)
	require.Equal(t, "auto", cfg.Output.PathMode)
	require.Equal(t, "off", cfg.Trace.Level)
	require.Equal(t, []string{"."}, cfg.Package.Sources)
	require.Equal(t, dir, cfg.Root)
}

func TestEmptyCheckersDisablesAll(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tern.toml")
	writeFile(t, path, "[analysis]\ncheckers = []\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Analysis.Checkers)
	require.Empty(t, cfg.Analysis.Checkers)

	writeFile(t, path, "[analysis]\njobs = 1\n")
	cfg, err = Load(path)
	require.NoError(t, err)
	require.Nil(t, cfg.Analysis.Checkers)
}

func TestLoadTOMLRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tern.toml")
	writeFile(t, path, "[analysis]\nmax-diags = 3\n")
	_, err := Load(path)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInvalidConfig))
	require.Contains(t, err.Error(), "analysis.max-diags")
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tern.yaml")
	writeFile(t, path, `
package:
  sources: [src, lib]
analysis:
  max-diagnostics: 5
trace:
  level: phase
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, []string{"src", "lib"}, cfg.Package.Sources)
	require.Equal(t, 5, cfg.Analysis.MaxDiagnostics)
	require.Equal(t, "phase", cfg.Trace.Level)
	require.Equal(t, "pretty", cfg.Output.Format)

	writeFile(t, path, "analysis:\n  bogus: 1\n")
	_, err = Load(path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"negative jobs":  func(c *Config) { c.Analysis.Jobs = -1 },
		"negative max":   func(c *Config) { c.Analysis.MaxDiagnostics = -5 },
		"bad color":      func(c *Config) { c.Output.Color = "rainbow" },
		"no sources":     func(c *Config) { c.Package.Sources = nil },
		"absolute entry": func(c *Config) { c.Package.Sources = []string{"/abs"} },
		"bad severity":   func(c *Config) { c.Output.MinSeverity = "fatal" },
		"bad heartbeat":  func(c *Config) { c.Trace.Heartbeat = "soon" },
		"neg heartbeat":  func(c *Config) { c.Trace.Heartbeat = "-1s" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			require.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
	def := Default()
	require.NoError(t, def.Validate())
}

func TestFindManifestWalksUp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "tern.yaml"), "analysis:\n  jobs: 2\n")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	path, ok, err := FindManifest(nested)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, filepath.Join(root, "tern.yaml"), path)

	cfg, found, err := LoadFrom(nested)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, 2, cfg.Analysis.Jobs)
	require.Equal(t, root, cfg.Root)
}

func TestFindManifestStopsAtRepoRoot(t *testing.T) {
	outer := t.TempDir()
	writeFile(t, filepath.Join(outer, "tern.toml"), "")
	repo := filepath.Join(outer, "repo")
	require.NoError(t, os.MkdirAll(filepath.Join(repo, ".git"), 0o755))
	nested := filepath.Join(repo, "src")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	_, ok, err := FindManifest(nested)
	require.NoError(t, err)
	require.False(t, ok)

	writeFile(t, filepath.Join(repo, "tern.yml"), "")
	path, ok, err := FindManifest(nested)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, filepath.Join(repo, "tern.yml"), path)
}

func TestSourceFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src", "b.tn"), "")
	writeFile(t, filepath.Join(root, "src", "a.tn"), "")
	writeFile(t, filepath.Join(root, "src", "notes.txt"), "")
	writeFile(t, filepath.Join(root, "src", ".hidden", "x.tn"), "")
	writeFile(t, filepath.Join(root, "extra.tn"), "")

	cfg := Default()
	cfg.Root = root
	cfg.Package.Sources = []string{"src", "extra.tn", "src/a.tn"}
	files, err := cfg.SourceFiles()
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(root, "extra.tn"),
		filepath.Join(root, "src", "a.tn"),
		filepath.Join(root, "src", "b.tn"),
	}, files)

	writeFile(t, filepath.Join(root, "empty", "readme"), "")
	cfg.Package.Sources = []string{"empty"}
	_, err = cfg.SourceFiles()
	require.ErrorIs(t, err, ErrNoSources)
}

func TestHeartbeatInterval(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tern.toml")
	writeFile(t, path, "[trace]\nheartbeat = \"250ms\"\n[output]\nmin-severity = \"warning\"\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	d, err := cfg.HeartbeatInterval()
	require.NoError(t, err)
	require.Equal(t, 250*time.Millisecond, d)
	require.Equal(t, "warning", cfg.Output.MinSeverity)

	def := Default()
	d, err = def.HeartbeatInterval()
	require.NoError(t, err)
	require.Zero(t, d)
}

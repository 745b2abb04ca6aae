package project

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"

	"tern/internal/diag"
)

// SourceExt is the extension of Tern source files.
const SourceExt = ".tn"

var (
	// ErrInvalidConfig wraps every validation failure of a manifest.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrNoSources: the listed directories hold no .tn file.
	ErrNoSources = errors.New("no source files")
)

// Config is the decoded tern.toml / tern.yaml.
type Config struct {
	Package  PackageConfig  `toml:"package" yaml:"package"`
	Analysis AnalysisConfig `toml:"analysis" yaml:"analysis"`
	Output   OutputConfig   `toml:"output" yaml:"output"`
	Trace    TraceConfig    `toml:"trace" yaml:"trace"`
	Cache    CacheConfig    `toml:"cache" yaml:"cache"`

	// Root is the manifest directory; paths in Sources are relative to it.
	Root string `toml:"-" yaml:"-"`
}

type PackageConfig struct {
	Sources []string `toml:"sources" yaml:"sources"`
}

type AnalysisConfig struct {
	MaxDiagnostics int `toml:"max-diagnostics" yaml:"max-diagnostics"`
	// Jobs: 0 = GOMAXPROCS.
	Jobs int `toml:"jobs" yaml:"jobs"`
	// Checkers are the enabled extra checkers; nil means all builtin ones.
	Checkers []string `toml:"checkers" yaml:"checkers"`
}

type OutputConfig struct {
	Format   string `toml:"format" yaml:"format"`
	PathMode string `toml:"path-mode" yaml:"path-mode"`
	// Color: auto|always|never.
	Color string `toml:"color" yaml:"color"`
	Notes bool   `toml:"notes" yaml:"notes"`
	// MinSeverity: info|warning|error; diagnostics below it are not printed.
	MinSeverity string `toml:"min-severity" yaml:"min-severity"`
}

type TraceConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Mode   string `toml:"mode" yaml:"mode"`
	Output string `toml:"output" yaml:"output"`
	// Heartbeat is an interval in time.ParseDuration format; empty = off.
	Heartbeat string `toml:"heartbeat" yaml:"heartbeat"`
}

type CacheConfig struct {
	Enabled bool   `toml:"enabled" yaml:"enabled"`
	Dir     string `toml:"dir" yaml:"dir"`
}

// Default returns the configuration used when no manifest exists.
func Default() Config {
	return Config{
		Package:  PackageConfig{Sources: []string{"."}},
		Analysis: AnalysisConfig{MaxDiagnostics: 100},
		Output:   OutputConfig{Format: "pretty", PathMode: "auto", Color: "auto", Notes: true, MinSeverity: "info"},
		Trace:    TraceConfig{Level: "off", Mode: "stream", Output: "-"},
	}
}

// Load reads a manifest; the format is chosen by extension. Keys absent from
// the file keep their defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}
	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = decodeYAML(data, &cfg)
	default:
		err = decodeTOML(data, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	abs, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return Config{}, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	cfg.Root = abs
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func decodeTOML(data []byte, cfg *Config) error {
	// the default slice must not be mixed with the file contents
	cfg.Package.Sources = nil
	meta, err := toml.Decode(string(data), cfg)
	if err != nil {
		return fmt.Errorf("failed to parse TOML: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("%w: unknown keys %s", ErrInvalidConfig, strings.Join(keys, ", "))
	}
	if !meta.IsDefined("package", "sources") {
		cfg.Package.Sources = Default().Package.Sources
	}
	// `checkers = []` turns all checkers off, a missing key turns all on
	if meta.IsDefined("analysis", "checkers") && cfg.Analysis.Checkers == nil {
		cfg.Analysis.Checkers = []string{}
	}
	return nil
}

func decodeYAML(data []byte, cfg *Config) error {
	cfg.Package.Sources = nil
	if err := yaml.NewDecoder(bytes.NewReader(data), yaml.Strict()).Decode(cfg); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	if cfg.Package.Sources == nil {
		cfg.Package.Sources = Default().Package.Sources
	}
	return nil
}

// Validate checks value ranges; names of formats, levels and checkers are
// checked by their owners.
func (c *Config) Validate() error {
	switch {
	case c.Analysis.MaxDiagnostics < 0:
		return fmt.Errorf("%w: analysis.max-diagnostics must be >= 0, got %d", ErrInvalidConfig, c.Analysis.MaxDiagnostics)
	case c.Analysis.Jobs < 0:
		return fmt.Errorf("%w: analysis.jobs must be >= 0, got %d", ErrInvalidConfig, c.Analysis.Jobs)
	case len(c.Package.Sources) == 0:
		return fmt.Errorf("%w: package.sources is empty", ErrInvalidConfig)
	}
	switch c.Output.Color {
	case "", "auto", "always", "never":
	default:
		return fmt.Errorf("%w: output.color must be auto|always|never, got %q", ErrInvalidConfig, c.Output.Color)
	}
	if _, err := diag.ParseSeverity(c.Output.MinSeverity); err != nil {
		return fmt.Errorf("%w: output.min-severity: %w", ErrInvalidConfig, err)
	}
	if _, err := c.HeartbeatInterval(); err != nil {
		return err
	}
	for _, s := range c.Package.Sources {
		if filepath.IsAbs(s) {
			return fmt.Errorf("%w: package.sources entry %q must be relative", ErrInvalidConfig, s)
		}
	}
	return nil
}

// HeartbeatInterval parses Trace.Heartbeat; empty means disabled.
func (c *Config) HeartbeatInterval() (time.Duration, error) {
	if c.Trace.Heartbeat == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Trace.Heartbeat)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%w: trace.heartbeat must be a non-negative duration, got %q", ErrInvalidConfig, c.Trace.Heartbeat)
	}
	return d, nil
}

// LoadFrom finds the manifest above startDir and loads it; without one it
// returns Default rooted at startDir.
func LoadFrom(startDir string) (Config, bool, error) {
	path, ok, err := FindManifest(startDir)
	if err != nil {
		return Config{}, false, err
	}
	if !ok {
		cfg := Default()
		abs, err := filepath.Abs(startDir)
		if err != nil {
			return Config{}, false, err
		}
		cfg.Root = abs
		return cfg, false, nil
	}
	cfg, err := Load(path)
	return cfg, true, err
}

// SourceFiles expands Package.Sources (files or directories, walked
// recursively) into a sorted, de-duplicated list of .tn paths.
func (c *Config) SourceFiles() ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	add := func(p string) {
		if _, dup := seen[p]; !dup {
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	for _, s := range c.Package.Sources {
		p := filepath.Join(c.Root, filepath.FromSlash(s))
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("package.sources %q: %w", s, err)
		}
		if !info.IsDir() {
			add(p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() && path != p && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			if !d.IsDir() && filepath.Ext(path) == SourceExt {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", p, err)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w under %s", ErrNoSources, c.Root)
	}
	sort.Strings(out)
	return out, nil
}

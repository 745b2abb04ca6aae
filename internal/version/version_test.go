package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestVersion_DefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
}

func TestString(t *testing.T) {
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	defer func() { Version, GitCommit, BuildDate = origVersion, origCommit, origDate }()

	Version, GitCommit, BuildDate = "1.2.3", "", ""
	if got := String(false); got != "tern 1.2.3" {
		t.Errorf("String() = %q", got)
	}

	GitCommit, BuildDate = "abc123", "2024-01-15"
	if got, want := String(false), "tern 1.2.3 (abc123) built 2024-01-15"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestColored(t *testing.T) {
	origVersion, origNoColor := Version, color.NoColor
	defer func() { Version, color.NoColor = origVersion, origNoColor }()
	color.NoColor = true

	cases := map[string]string{
		"0.1.0-dev":            "0.1.0-dev",
		"1.2.3":                "1.2.3",
		"1.2.3-rc.1+build.123": "1.2.3-rc.1+build.123",
		"weird":                "weird",
	}
	for in, want := range cases {
		Version = in
		if got := Colored(); got != want {
			t.Errorf("Colored(%q) = %q, want %q", in, got, want)
		}
	}

	color.NoColor = false
	Version = "1.2.3"
	if got := Colored(); got == "1.2.3" {
		t.Error("Colored() should add escape codes when color is enabled")
	}
}

// BenchmarkVersionString benchmarks rendering the version line
func BenchmarkVersionString(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = String(false)
	}
}

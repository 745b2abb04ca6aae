package project

import (
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"
)

// ManifestNames in lookup order; in one directory tern.toml wins.
var ManifestNames = []string{"tern.toml", "tern.yaml", "tern.yml"}

// ancestors yields dir, its parent and so on up to the filesystem root.
// The search stops at the root of a git repository: a manifest above it
// belongs to another project.
func ancestors(dir string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for {
			if !yield(dir) || isRepoRoot(dir) {
				return
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				return
			}
			dir = parent
		}
	}
}

func isRepoRoot(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

// FindManifest returns the nearest manifest at or above startDir.
func FindManifest(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for dir := range ancestors(abs) {
		for _, name := range ManifestNames {
			candidate := filepath.Join(dir, name)
			_, err := os.Stat(candidate)
			switch {
			case err == nil:
				return candidate, true, nil
			case !errors.Is(err, os.ErrNotExist):
				return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
			}
		}
	}
	return "", false, nil
}

package source

import (
	"os"
	"path/filepath"
	"strings"
)

// GetLine returns line n (1-based) without its newline, or "" past the end.
func (f *File) GetLine(n uint32) string {
	// LineIdx[i] is the offset of the i-th '\n'; line n lies between the (n-1)-th and the n-th
	if n == 0 || int(n) > len(f.LineIdx)+1 {
		return ""
	}
	start, end := 0, len(f.Content)
	if n > 1 {
		start = int(f.LineIdx[n-2]) + 1
	}
	if int(n) <= len(f.LineIdx) {
		end = int(f.LineIdx[n-1])
	}
	if start >= end {
		return ""
	}
	return string(f.Content[start:end])
}

// FormatPath renders Path for diagnostics: "absolute", "relative" (to
// baseDir, or the working directory), "basename" or "auto" (basename only
// for long absolute paths). Synthetic names like <prelude>/tern.tn are
// returned as is.
func (f *File) FormatPath(mode, baseDir string) string {
	if f.IsVirtual() && strings.HasPrefix(f.Path, "<") {
		return f.Path
	}
	switch mode {
	case "absolute":
		if abs, err := filepath.Abs(f.Path); err == nil {
			return filepath.ToSlash(abs)
		}
	case "relative":
		if baseDir == "" {
			baseDir, _ = os.Getwd()
		}
		if rel, err := filepath.Rel(baseDir, f.Path); err == nil {
			return filepath.ToSlash(rel)
		}
	case "basename":
		return filepath.Base(f.Path)
	case "auto":
		if len(f.Path) >= 40 && filepath.IsAbs(f.Path) {
			return filepath.Base(f.Path)
		}
	}
	return f.Path
}

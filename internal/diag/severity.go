package diag

import (
	"fmt"
	"strings"
)

// Severity defines the importance of a diagnostic. Order matters:
// filters compare with >=.
type Severity uint8

const (
	SevInfo Severity = iota
	// SevWarning: checker findings (deprecated, named args and such).
	SevWarning
	// SevError: resolution errors; any of them fails the run.
	SevError
)

var severityNames = [...]string{SevInfo: "INFO", SevWarning: "WARNING", SevError: "ERROR"}

func (s Severity) String() string {
	if int(s) < len(severityNames) {
		return severityNames[s]
	}
	return "UNKNOWN"
}

// ParseSeverity accepts the names produced by String in any case, plus
// the short forms "warn" and "err".
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "info", "":
		return SevInfo, nil
	case "warning", "warn":
		return SevWarning, nil
	case "error", "err":
		return SevError, nil
	}
	return SevInfo, fmt.Errorf("unknown severity %q (expected info|warning|error)", s)
}

// AtLeast returns a new bag with the diagnostics of b whose severity is >= min.
// The limit of the source Bag is kept.
func (b *Bag) AtLeast(min Severity) *Bag {
	out := NewBag(b.max)
	for i := range b.items {
		if b.items[i].Severity >= min {
			out.items = append(out.items, b.items[i])
		}
	}
	return out
}

// Limit returns b itself when it holds at most max items (or max <= 0),
// otherwise a bag with the first max of them.
func (b *Bag) Limit(max int) *Bag {
	if max <= 0 || len(b.items) <= max {
		return b
	}
	out := NewBag(max)
	out.items = append(out.items, b.items[:max]...)
	return out
}

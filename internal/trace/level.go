package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity. Each level enables every scope no
// deeper than itself: phase sees driver and pass, detail adds files, debug goes
// all the way down to single calls.
type Level uint8

const (
	LevelOff Level = iota
	// LevelError: nothing is streamed, the ring is dumped on panic only.
	LevelError
	LevelPhase
	LevelDetail
	LevelDebug
)

var levelNames = [...]string{"off", "error", "phase", "detail", "debug"}

// deepest scope emitted per level; LevelOff and LevelError emit none.
var levelScope = [...]Scope{LevelPhase: ScopePass, LevelDetail: ScopeModule, LevelDebug: ScopeNode}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// LevelNames lists accepted level names in increasing verbosity; used in
// CLI help.
func LevelNames() []string { return levelNames[:] }

// ParseLevel converts a case-insensitive name to a Level.
func ParseLevel(s string) (Level, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range levelNames {
		if n == name {
			return Level(i), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: %s)", s, strings.Join(levelNames[:], "|"))
}

// ShouldEmit reports whether events of scope pass this level.
func (l Level) ShouldEmit(scope Scope) bool {
	if l < LevelPhase || int(l) >= len(levelScope) {
		return false
	}
	return scope <= levelScope[l]
}

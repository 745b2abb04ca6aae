package trace

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Tracer receives events from spans and points. Emit is called concurrently
// from resolve tasks.
type Tracer interface {
	Emit(ev *Event)
	Flush() error
	Close() error
	Level() Level
	// Enabled is false for Nop and LevelOff; span helpers skip work then.
	Enabled() bool
}

// StorageMode says where events go: written immediately, kept in a ring
// for panic dumps, or both.
type StorageMode uint8

const (
	ModeStream StorageMode = iota + 1
	ModeRing
	ModeBoth
)

var modeNames = [...]string{ModeStream: "stream", ModeRing: "ring", ModeBoth: "both"}

func (m StorageMode) String() string {
	if int(m) < len(modeNames) && modeNames[m] != "" {
		return modeNames[m]
	}
	return "unknown"
}

func ParseMode(s string) (StorageMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for m, name := range modeNames {
		if name != "" && name == s {
			return StorageMode(m), nil
		}
	}
	return ModeRing, fmt.Errorf("invalid storage mode: %q (expected: stream|ring|both)", s)
}

// Config describes the `tern check` tracer: the level, where to write and
// whether OnRecord is needed for --timings aggregation.
type Config struct {
	Level  Level
	Mode   StorageMode
	Format Format
	// Output for stream; if nil, OutputPath is opened ("-" or "" = stderr).
	Output     io.Writer
	OutputPath string
	RingSize   int // 4096 when unset
	OnRecord   OnRecordTraceFunc
}

const defaultRingSize = 4096

// New builds the tracer described by cfg. LevelOff yields Nop regardless of
// the other fields. A *.ndjson output path switches text to NDJSON.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}
	if cfg.RingSize <= 0 {
		cfg.RingSize = defaultRingSize
	}
	if cfg.Format == FormatText && strings.HasSuffix(cfg.OutputPath, ".ndjson") {
		cfg.Format = FormatNDJSON
	}

	var sinks []Tracer
	if cfg.Mode == ModeStream || cfg.Mode == ModeBoth {
		st, err := openStream(cfg)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, st)
	}
	if cfg.Mode == ModeRing || cfg.Mode == ModeBoth {
		sinks = append(sinks, NewRingTracer(cfg.RingSize, cfg.Level))
	}
	if len(sinks) == 0 {
		return nil, fmt.Errorf("unknown storage mode: %v", cfg.Mode)
	}
	if cfg.OnRecord != nil {
		sinks = append(sinks, NewRecordTracer(cfg.Level, cfg.OnRecord))
	}
	if len(sinks) == 1 {
		return sinks[0], nil
	}
	return NewMultiTracer(cfg.Level, sinks...), nil
}

// openStream: Output and stderr are never closed, a file from OutputPath is.
func openStream(cfg Config) (*StreamTracer, error) {
	switch {
	case cfg.Output != nil:
		return NewStreamTracer(cfg.Output, cfg.Level, cfg.Format), nil
	case cfg.OutputPath == "" || cfg.OutputPath == "-":
		return NewStreamTracer(os.Stderr, cfg.Level, cfg.Format), nil
	}
	f, err := os.Create(cfg.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace output: %w", err)
	}
	return newOwnedStream(f, cfg.Level, cfg.Format), nil
}

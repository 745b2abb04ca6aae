package trace

import "errors"

// MultiTracer fans events out to several tracers (stream + ring + the
// --timings recorder in `tern check`).
type MultiTracer struct {
	tracers []Tracer
	level   Level
}

// NewMultiTracer flattens nested MultiTracers and drops nil and disabled
// children, so each event reaches every sink exactly once.
func NewMultiTracer(level Level, tracers ...Tracer) *MultiTracer {
	m := &MultiTracer{level: level}
	for _, tr := range tracers {
		switch tr := tr.(type) {
		case nil:
		case *MultiTracer:
			m.tracers = append(m.tracers, tr.tracers...)
		default:
			if tr.Enabled() {
				m.tracers = append(m.tracers, tr)
			}
		}
	}
	return m
}

func (t *MultiTracer) Emit(ev *Event) {
	for _, tr := range t.tracers {
		tr.Emit(ev)
	}
}

// Flush flushes every child and joins their errors.
func (t *MultiTracer) Flush() error {
	var errs []error
	for _, tr := range t.tracers {
		errs = append(errs, tr.Flush())
	}
	return errors.Join(errs...)
}

// Close closes every child and joins their errors.
func (t *MultiTracer) Close() error {
	var errs []error
	for _, tr := range t.tracers {
		errs = append(errs, tr.Close())
	}
	return errors.Join(errs...)
}

func (t *MultiTracer) Level() Level { return t.level }

// Enabled is false when no child survived construction.
func (t *MultiTracer) Enabled() bool {
	return t.level > LevelOff && len(t.tracers) > 0
}

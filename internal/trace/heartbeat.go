package trace

import (
	"strconv"
	"sync"
	"time"
)

// Probe snapshots live counters for a heartbeat event, e.g. memo
// computed/waits of the running check. Called from the heartbeat goroutine.
type Probe func() map[string]string

// Heartbeat periodically emits KindHeartbeat events. A run whose heartbeats
// keep coming while memo.waits stops changing is stuck on a lost waiter.
type Heartbeat struct {
	tracer   Tracer
	interval time.Duration
	probe    Probe
	stop     chan struct{}
	done     chan struct{}
	once     sync.Once
}

// StartHeartbeat starts the heartbeat goroutine; it returns nil (a valid
// no-op Heartbeat) when tracing is off or interval <= 0. probe may be nil.
func StartHeartbeat(tracer Tracer, interval time.Duration, probe Probe) *Heartbeat {
	if tracer == nil || !tracer.Enabled() || interval <= 0 {
		return nil
	}
	h := &Heartbeat{
		tracer:   tracer,
		interval: interval,
		probe:    probe,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *Heartbeat) run() {
	defer close(h.done)
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	var seq int
	for {
		select {
		case <-ticker.C:
			seq++
			ev := &Event{
				Time:   time.Now(),
				Seq:    NextSeq(),
				Kind:   KindHeartbeat,
				Scope:  ScopeDriver,
				Name:   "heartbeat",
				Detail: "#" + strconv.Itoa(seq),
			}
			if h.probe != nil {
				ev.Extra = h.probe()
			}
			h.tracer.Emit(ev)
		case <-h.stop:
			return
		}
	}
}

// Stop stops the goroutine and waits for it; safe to call more than once.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.once.Do(func() { close(h.stop) })
	<-h.done
}

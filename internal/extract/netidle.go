package extract

import (
	"sync"
	"time"
)

// idleTracker counts in-flight requests and signals once at most max of them
// have been pending for a full quiet period. Events received before arm are
// counted but cannot fire the signal.
type idleTracker struct {
	max   int
	quiet time.Duration

	mu       sync.Mutex
	inflight map[string]struct{}
	armed    bool
	fired    bool
	gen      uint64
	timer    *time.Timer
	ch       chan struct{}
}

func newIdleTracker(max int, quiet time.Duration) *idleTracker {
	return &idleTracker{
		max:      max,
		quiet:    quiet,
		inflight: make(map[string]struct{}),
		ch:       make(chan struct{}),
	}
}

func (t *idleTracker) started(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.inflight[id] = struct{}{}
	t.reschedule()
}

func (t *idleTracker) finished(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.inflight, id)
	t.reschedule()
}

// arm enables the idle signal. Called once the load event has fired.
func (t *idleTracker) arm() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.armed = true
	t.reschedule()
}

func (t *idleTracker) done() <-chan struct{} { return t.ch }

func (t *idleTracker) stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.fired = true
	t.gen++
	if t.timer != nil {
		t.timer.Stop()
	}
}

// reschedule restarts the quiet timer on every change. Callers hold mu.
func (t *idleTracker) reschedule() {
	if t.fired {
		return
	}
	t.gen++
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	if !t.armed || len(t.inflight) > t.max {
		return
	}
	gen := t.gen
	t.timer = time.AfterFunc(t.quiet, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if t.fired || gen != t.gen {
			return
		}
		t.fired = true
		close(t.ch)
	})
}

package cmd

import (
	"sync"
	"time"
)

// PerformanceTimer records named wall-clock intervals for a command run
type PerformanceTimer struct {
	mu      sync.Mutex
	created time.Time
	starts  map[string]time.Time
	spans   map[string]time.Duration
	order   []string
}

// NewPerformanceTimer creates a timer; total duration counts from now
func NewPerformanceTimer() *PerformanceTimer {
	return &PerformanceTimer{
		created: time.Now(),
		starts:  make(map[string]time.Time),
		spans:   make(map[string]time.Duration),
	}
}

// StartEvent marks the start of an event, restarting it if already running
func (t *PerformanceTimer) StartEvent(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, seen := t.spans[name]; !seen {
		if _, running := t.starts[name]; !running {
			t.order = append(t.order, name)
		}
	}
	t.starts[name] = time.Now()
}

// EndEvent stops a running event. Ending an unknown event is a no-op.
func (t *PerformanceTimer) EndEvent(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	start, ok := t.starts[name]
	if !ok {
		return
	}
	t.spans[name] += time.Since(start)
	delete(t.starts, name)
}

// GetDuration returns the accumulated duration of an event, including the
// running portion of an event not yet ended
func (t *PerformanceTimer) GetDuration(name string) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	d := t.spans[name]
	if start, ok := t.starts[name]; ok {
		d += time.Since(start)
	}
	return d
}

// GetTotalDuration returns the time since the timer was created
func (t *PerformanceTimer) GetTotalDuration() time.Duration {
	return time.Since(t.created)
}

// Events returns event names in the order they were first started
func (t *PerformanceTimer) Events() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

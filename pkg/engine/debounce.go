package engine

import (
	"sync"
	"time"
)

// DefaultDebounce is the delay applied to per-keystroke renders of
// non-controller free-text fields.
const DefaultDebounce = 300 * time.Millisecond

// debouncer keeps one pending timer per field name. Scheduling replaces the
// field's existing timer, so a burst of keystrokes collapses into a single
// render a fixed delay after the last one.
type debouncer struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
}

func newDebouncer() *debouncer {
	return &debouncer{timers: make(map[string]*time.Timer)}
}

// schedule arms (or re-arms) the field's timer. The callback runs on the
// timer goroutine after removing itself from the pending set, so a fired
// timer can no longer be cancelled and a cancelled timer never fires fn.
func (d *debouncer) schedule(name string, delay time.Duration, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.timers[name]; ok {
		t.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		d.mu.Lock()
		if d.timers[name] == timer {
			delete(d.timers, name)
		} else {
			// A newer timer replaced this one while it was firing.
			d.mu.Unlock()
			return
		}
		d.mu.Unlock()
		fn()
	})
	d.timers[name] = timer
}

// cancel discards the field's pending timer, if any. Immediate renders call
// this first so a stale debounced render cannot clobber a committed value.
func (d *debouncer) cancel(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.timers[name]; ok {
		t.Stop()
		delete(d.timers, name)
	}
}

// cancelAll discards every pending timer. Called on schema load and reset so
// a stale render never fires against a replaced schema.
func (d *debouncer) cancelAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for name, t := range d.timers {
		t.Stop()
		delete(d.timers, name)
	}
}

// pending reports whether the field has an armed timer.
func (d *debouncer) pending(name string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.timers[name]
	return ok
}

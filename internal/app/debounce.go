package app

import (
	"sync"
	"time"
)

// Debounce delays for the two background boundaries: emitting the sketch
// payload to the AI collaborator and persisting the document to the store.
const (
	EmitDelay    = 300 * time.Millisecond
	PersistDelay = 1500 * time.Millisecond
)

// Debouncer runs a callback on the trailing edge of a burst of triggers:
// the callback fires no sooner than the delay after the most recent
// Trigger, and every new trigger cancels and reschedules the pending run.
// A newer edit therefore always supersedes in-flight scheduled work.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	fn    func()
	timer *time.Timer
}

// NewDebouncer creates a debouncer for the given callback.
func NewDebouncer(delay time.Duration, fn func()) *Debouncer {
	return &Debouncer{delay: delay, fn: fn}
}

// Trigger schedules (or reschedules) the callback.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fn)
}

// Stop cancels any pending run.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Flush runs a pending callback synchronously instead of waiting out the
// delay. Used at shutdown so the last edits are not lost to a cancelled
// timer. A no-op when nothing is scheduled.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	pending := d.timer != nil
	if pending {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()
	if pending {
		d.fn()
	}
}

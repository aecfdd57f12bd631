package watch

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of triggers into one callback after a quiet delay
type Debouncer struct {
	duration time.Duration
	timer    *time.Timer
	pending  bool
	stopped  bool
	mutex    sync.Mutex
	callback func()
}

// NewDebouncer creates a new debouncer instance
func NewDebouncer(duration time.Duration) *Debouncer {
	return &Debouncer{duration: duration}
}

// Trigger restarts the delay
func (d *Debouncer) Trigger() {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.stopped {
		return
	}
	d.pending = true

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.duration, d.flush)
}

// flush runs the callback once per burst
func (d *Debouncer) flush() {
	d.mutex.Lock()
	if !d.pending || d.stopped {
		d.mutex.Unlock()
		return
	}
	d.pending = false
	callback := d.callback
	d.mutex.Unlock()

	if callback != nil {
		callback()
	}
}

// SetCallback sets the callback function
func (d *Debouncer) SetCallback(callback func()) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.callback = callback
}

// Stop drops any pending trigger
func (d *Debouncer) Stop() {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.stopped = true
	d.pending = false
}

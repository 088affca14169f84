package watcher

import (
	"sync"
	"time"
)

// Debouncer holds new attachments until events for them stop arriving,
// then hands each to its callback once. Paths the handler produced itself
// are suppressed: their pending delay is cancelled, or their next Add is
// dropped when nothing is pending yet.
type Debouncer struct {
	delay      time.Duration
	pending    map[string]*time.Timer
	suppressed map[string]bool
	callback   func(path string)
	mu         sync.Mutex
}

// NewDebouncer creates a Debouncer that calls callback for a path once
// delay has passed without another Add for it. A delay of zero or less
// calls callback right away on its own goroutine.
func NewDebouncer(delay time.Duration, callback func(path string)) *Debouncer {
	return &Debouncer{
		delay:      delay,
		pending:    make(map[string]*time.Timer),
		suppressed: make(map[string]bool),
		callback:   callback,
	}
}

// Add schedules path, restarting its delay if it is already pending. It
// returns false when path was suppressed and is dropped instead.
func (d *Debouncer) Add(path string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.suppressed[path] {
		delete(d.suppressed, path)
		return false
	}

	if d.delay <= 0 {
		go d.fire(path)
		return true
	}

	if timer, exists := d.pending[path]; exists {
		timer.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		// A timer stopped too late by Add, Suppress or Cancel no longer owns the path.
		if d.pending[path] != timer {
			d.mu.Unlock()
			return
		}
		delete(d.pending, path)
		d.mu.Unlock()
		d.fire(path)
	})
	d.pending[path] = timer
	return true
}

// fire runs the callback outside the lock so it may Add or Suppress.
func (d *Debouncer) fire(path string) {
	if d.callback != nil {
		d.callback(path)
	}
}

// Suppress drops path: a pending delay is cancelled, otherwise the next
// Add for it is ignored. Suppressing a path that was handed to the
// callback already marks it for Take.
func (d *Debouncer) Suppress(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if timer, exists := d.pending[path]; exists {
		timer.Stop()
		delete(d.pending, path)
		return
	}
	d.suppressed[path] = true
}

// Take reports whether path was suppressed after it reached the callback,
// clearing the mark.
func (d *Debouncer) Take(path string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.suppressed[path] {
		return false
	}
	delete(d.suppressed, path)
	return true
}

// Cancel drops a pending path and any suppression of it, for paths that
// were removed or renamed away. Unknown paths are ignored.
func (d *Debouncer) Cancel(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.suppressed, path)
	if timer, exists := d.pending[path]; exists {
		timer.Stop()
		delete(d.pending, path)
	}
}

// CancelAll drops every pending path and returns how many were dropped.
func (d *Debouncer) CancelAll() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := len(d.pending)
	for path, timer := range d.pending {
		timer.Stop()
		delete(d.pending, path)
	}
	return n
}

package watch

import (
	"slices"
	"sync"
	"time"
)

// Debouncer coalesces rapid file system events into batched rebuilds.
type Debouncer struct {
	mu       sync.Mutex
	pending  map[string]struct{}
	timer    *time.Timer
	window   time.Duration
	callback func(keys []string)
}

// NewDebouncer creates a debouncer that calls callback with the keys added
// during a quiet period of window.
func NewDebouncer(window time.Duration, callback func(keys []string)) *Debouncer {
	return &Debouncer{
		pending:  make(map[string]struct{}),
		window:   window,
		callback: callback,
	}
}

// Add schedules key and restarts the quiet period.
func (d *Debouncer) Add(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending[key] = struct{}{}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.fire)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	keys := d.take()
	d.timer = nil
	d.mu.Unlock()

	if len(keys) > 0 && d.callback != nil {
		d.callback(keys)
	}
}

// Flush calls the callback with everything pending and blocks until it
// returns.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		if !d.timer.Stop() {
			// already firing
			d.mu.Unlock()
			return
		}
		d.timer = nil
	}
	keys := d.take()
	d.mu.Unlock()

	if len(keys) > 0 && d.callback != nil {
		d.callback(keys)
	}
}

// take returns the pending keys in order and clears them. d.mu must be held.
func (d *Debouncer) take() []string {
	keys := make([]string, 0, len(d.pending))
	for k := range d.pending {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	clear(d.pending)
	return keys
}

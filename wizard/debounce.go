package wizard

import (
	"sync"
	"time"
)

type debounceState int

const (
	debounceIdle debounceState = iota
	debouncePending
	debounceInFlight
)

// debouncer coalesces rapid edits into one save. One timer per form
// instance: a new edit cancels and replaces the pending one, so the last
// edit within the window wins. Flush forces the pending save synchronously
// and is called before step navigation and before shutdown.
type debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	state   debounceState
	timer   *time.Timer
	pending []string
	save    func(fields []string)
}

func newDebouncer(delay time.Duration, save func([]string)) *debouncer {
	return &debouncer{delay: delay, save: save}
}

// Edit records the fields of the latest edit and restarts the timer.
func (d *debouncer) Edit(fields []string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = fields
	d.state = debouncePending
	d.timer = time.AfterFunc(d.delay, d.fire)
}

func (d *debouncer) fire() {
	d.mu.Lock()
	if d.state != debouncePending {
		d.mu.Unlock()
		return
	}
	fields := d.pending
	d.pending = nil
	d.timer = nil
	d.state = debounceInFlight
	d.mu.Unlock()

	d.save(fields)

	d.mu.Lock()
	if d.state == debounceInFlight {
		d.state = debounceIdle
	}
	d.mu.Unlock()
}

// Flush runs the pending save now, if any.
func (d *debouncer) Flush() {
	d.mu.Lock()
	if d.state != debouncePending {
		d.mu.Unlock()
		return
	}
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	fields := d.pending
	d.pending = nil
	d.state = debounceInFlight
	d.mu.Unlock()

	d.save(fields)

	d.mu.Lock()
	if d.state == debounceInFlight {
		d.state = debounceIdle
	}
	d.mu.Unlock()
}

// Stop drops any pending save without running it.
func (d *debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = nil
	if d.state == debouncePending {
		d.state = debounceIdle
	}
}

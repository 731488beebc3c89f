package submission

import (
	"sync"
	"time"
)

// Timer is the part of *time.Timer the debouncer needs.
type Timer interface {
	Stop() bool
}

// TimerFactory schedules f after d.
type TimerFactory func(d time.Duration, f func()) Timer

func realTimer(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Debouncer runs fn once the quiet period has elapsed without another Trigger.
// A timer that was superseded never runs fn, even if it already fired.
type Debouncer struct {
	mu       sync.Mutex
	delay    time.Duration
	fn       func()
	newTimer TimerFactory
	timer    Timer
	gen      uint64
}

func NewDebouncer(delay time.Duration, fn func(), factory TimerFactory) *Debouncer {
	if factory == nil {
		factory = realTimer
	}
	return &Debouncer{delay: delay, fn: fn, newTimer: factory}
}

// Trigger starts the quiet period, or restarts it if one is running.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = d.newTimer(d.delay, func() { d.fire(gen) })
}

// Flush runs a pending fn immediately. It reports whether anything was pending.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	if d.timer == nil {
		d.mu.Unlock()
		return false
	}
	d.timer.Stop()
	gen := d.gen
	d.mu.Unlock()

	d.fire(gen)
	return true
}

// Stop cancels a pending run. It reports whether anything was pending.
func (d *Debouncer) Stop() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer == nil {
		return false
	}
	d.timer.Stop()
	d.timer = nil
	d.gen++
	return true
}

func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || d.timer == nil {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.mu.Unlock()

	d.fn()
}

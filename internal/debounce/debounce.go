// Package debounce turns a rapidly changing input into a single settled value.
package debounce

import (
	"sync"
	"time"
)

// Debouncer holds the latest input and emits it once the input has been
// quiet for the configured delay.
type Debouncer[T comparable] struct {
	delay time.Duration
	emit  func(T)

	mu         sync.Mutex
	timer      *time.Timer
	generation uint64 // bumped on every Set/Stop; a firing timer must match it
	input      T
	settled    T
	stopped    bool
}

// New creates a debouncer whose settled value starts at initial.
// emit is called (outside the lock) each time the settled value changes.
func New[T comparable](initial T, delay time.Duration, emit func(T)) *Debouncer[T] {
	if emit == nil {
		emit = func(T) {}
	}
	return &Debouncer[T]{
		delay:   delay,
		emit:    emit,
		input:   initial,
		settled: initial,
	}
}

// Set records a new input value and restarts the quiet period.
func (d *Debouncer[T]) Set(v T) {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.generation++
	gen := d.generation
	d.input = v
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}

	if d.delay <= 0 {
		changed := v != d.settled
		d.settled = v
		d.mu.Unlock()
		if changed {
			d.emit(v)
		}
		return
	}

	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen, v) })
	d.mu.Unlock()
}

func (d *Debouncer[T]) fire(gen uint64, v T) {
	d.mu.Lock()
	if d.stopped || gen != d.generation {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	if v == d.settled {
		// Burst ended where it started; nothing changed.
		d.mu.Unlock()
		return
	}
	d.settled = v
	d.mu.Unlock()
	d.emit(v)
}

// Settled returns the most recently settled value.
func (d *Debouncer[T]) Settled() T {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.settled
}

// Input returns the most recent raw input.
func (d *Debouncer[T]) Input() T {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.input
}

// Pending reports whether the latest input is still waiting to settle.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil && d.input != d.settled
}

// Stop cancels any pending emission. Stop is idempotent; Set is ignored afterwards.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.stopped = true
	d.generation++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

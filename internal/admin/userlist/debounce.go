package userlist

import (
	"sync"
	"time"
)

// debouncer delivers only the latest value pushed during a burst, once no
// new value has arrived for the whole window.
type debouncer[T any] struct {
	mu     sync.Mutex
	window time.Duration
	fn     func(T)
	timer  *time.Timer
	latest T
	gen    uint64
	closed bool
}

func newDebouncer[T any](window time.Duration, fn func(T)) *debouncer[T] {
	return &debouncer[T]{window: window, fn: fn}
}

// Push replaces the pending value and restarts the quiet period.
func (d *debouncer[T]) Push(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}

	d.latest = v
	d.gen++
	gen := d.gen

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, func() {
		d.fire(gen)
	})
}

func (d *debouncer[T]) fire(gen uint64) {
	d.mu.Lock()
	// A timer that lost the race with Stop must not deliver a stale value.
	if d.closed || gen != d.gen {
		d.mu.Unlock()
		return
	}
	v := d.latest
	d.timer = nil
	d.mu.Unlock()

	d.fn(v)
}

// Close drops any pending value. Pushes after Close are ignored.
func (d *debouncer[T]) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closed = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

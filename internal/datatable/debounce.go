package datatable

import (
	"sync"
	"time"
)

// Debouncer delivers the trailing value of a burst of calls once the input
// has been quiet for the configured wait. Intermediate values are dropped.
type Debouncer[V any] struct {
	mu      sync.Mutex
	wait    time.Duration
	fn      func(V)
	timer   *time.Timer
	gen     uint64
	pending V
	has     bool
}

// NewDebouncer returns a debouncer that calls fn after wait of quiescence.
func NewDebouncer[V any](wait time.Duration, fn func(V)) *Debouncer[V] {
	if wait <= 0 {
		wait = DefaultDebounce
	}
	return &Debouncer[V]{wait: wait, fn: fn}
}

// Call records v and restarts the quiescence window.
func (d *Debouncer[V]) Call(v V) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending = v
	d.has = true
	d.gen++
	gen := d.gen

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.wait, func() { d.fire(gen) })
}

// fire delivers the pending value if no later Call superseded generation gen.
func (d *Debouncer[V]) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || !d.has {
		d.mu.Unlock()
		return
	}
	v := d.take()
	d.mu.Unlock()

	d.fn(v)
}

// take clears and returns the pending value. Caller holds mu.
func (d *Debouncer[V]) take() V {
	v := d.pending
	var zero V
	d.pending = zero
	d.has = false
	d.timer = nil
	return v
}

// Flush delivers a pending value immediately. It is a no-op when nothing
// is pending.
func (d *Debouncer[V]) Flush() {
	d.mu.Lock()
	if !d.has {
		d.mu.Unlock()
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	v := d.take()
	d.mu.Unlock()

	d.fn(v)
}

// Cancel drops a pending value without delivering it.
func (d *Debouncer[V]) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	d.take()
}

// Pending reports whether a value is waiting for the window to close.
func (d *Debouncer[V]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.has
}

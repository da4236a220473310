package datatable

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recorder[V any] struct {
	mu   sync.Mutex
	seen []V
}

func (r *recorder[V]) record(v V) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, v)
}

func (r *recorder[V]) values() []V {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]V(nil), r.seen...)
}

func TestDebouncer_DeliversOnlyLastValueOfBurst(t *testing.T) {
	rec := &recorder[string]{}
	d := NewDebouncer(20*time.Millisecond, rec.record)

	for _, v := range []string{"j", "jo", "joh", "john"} {
		d.Call(v)
	}
	assert.True(t, d.Pending())

	assert.Eventually(t, func() bool { return len(rec.values()) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(40 * time.Millisecond)

	assert.Equal(t, []string{"john"}, rec.values())
	assert.False(t, d.Pending())
}

func TestDebouncer_SeparateWindowsDeliverSeparately(t *testing.T) {
	rec := &recorder[int]{}
	d := NewDebouncer(10*time.Millisecond, rec.record)

	d.Call(1)
	assert.Eventually(t, func() bool { return len(rec.values()) == 1 }, time.Second, 2*time.Millisecond)
	d.Call(2)
	assert.Eventually(t, func() bool { return len(rec.values()) == 2 }, time.Second, 2*time.Millisecond)

	assert.Equal(t, []int{1, 2}, rec.values())
}

func TestDebouncer_Flush(t *testing.T) {
	rec := &recorder[string]{}
	d := NewDebouncer(time.Hour, rec.record)

	d.Flush()
	assert.Empty(t, rec.values(), "flush with nothing pending")

	d.Call("a")
	d.Call("b")
	d.Flush()

	assert.Equal(t, []string{"b"}, rec.values())
	assert.False(t, d.Pending())
}

func TestDebouncer_Cancel(t *testing.T) {
	rec := &recorder[string]{}
	d := NewDebouncer(10*time.Millisecond, rec.record)

	d.Call("a")
	d.Cancel()
	time.Sleep(40 * time.Millisecond)

	assert.Empty(t, rec.values())
	assert.False(t, d.Pending())
}

func TestNewDebouncer_DefaultWait(t *testing.T) {
	d := NewDebouncer(0, func(string) {})
	assert.Equal(t, DefaultDebounce, d.wait)
}

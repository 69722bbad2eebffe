package debounce

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	values []string
	times  []time.Time
}

func (r *recorder) emit(v string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = append(r.values, v)
	r.times = append(r.times, time.Now())
}

func (r *recorder) snapshot() ([]string, []time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.values...), append([]time.Time(nil), r.times...)
}

func TestDebouncer_InitialValueIsSettledImmediately(t *testing.T) {
	rec := &recorder{}
	d := New("start", 50*time.Millisecond, rec.emit)
	defer d.Stop()

	assert.Equal(t, "start", d.Settled())
	assert.False(t, d.Pending())
	values, _ := rec.snapshot()
	assert.Empty(t, values)
}

func TestDebouncer_CoalescesBurst(t *testing.T) {
	const delay = 60 * time.Millisecond
	rec := &recorder{}
	d := New("", delay, rec.emit)
	defer d.Stop()

	d.Set("a")
	time.Sleep(10 * time.Millisecond)
	d.Set("b")
	time.Sleep(10 * time.Millisecond)
	d.Set("c")
	last := time.Now()

	assert.True(t, d.Pending())
	assert.Equal(t, "", d.Settled())

	require.Eventually(t, func() bool {
		values, _ := rec.snapshot()
		return len(values) == 1
	}, time.Second, 5*time.Millisecond)

	// Give any stray timers a chance to fire.
	time.Sleep(2 * delay)

	values, times := rec.snapshot()
	require.Equal(t, []string{"c"}, values)
	assert.GreaterOrEqual(t, times[0].Sub(last), delay)
	assert.Equal(t, "c", d.Settled())
	assert.False(t, d.Pending())
}

func TestDebouncer_SeparateBurstsEmitEach(t *testing.T) {
	rec := &recorder{}
	d := New("", 20*time.Millisecond, rec.emit)
	defer d.Stop()

	d.Set("bat")
	require.Eventually(t, func() bool { return d.Settled() == "bat" }, time.Second, 5*time.Millisecond)
	d.Set("batman")
	require.Eventually(t, func() bool { return d.Settled() == "batman" }, time.Second, 5*time.Millisecond)

	values, _ := rec.snapshot()
	assert.Equal(t, []string{"bat", "batman"}, values)
}

func TestDebouncer_StopCancelsPendingEmission(t *testing.T) {
	rec := &recorder{}
	d := New("", 30*time.Millisecond, rec.emit)

	d.Set("x")
	d.Stop()
	d.Set("y") // ignored after Stop

	time.Sleep(100 * time.Millisecond)
	values, _ := rec.snapshot()
	assert.Empty(t, values)
	assert.Equal(t, "", d.Settled())

	d.Stop() // idempotent
}

func TestDebouncer_ZeroDelayEmitsSynchronously(t *testing.T) {
	rec := &recorder{}
	d := New("", 0, rec.emit)
	defer d.Stop()

	d.Set("a")
	d.Set("b")
	d.Set("b")

	values, _ := rec.snapshot()
	assert.Equal(t, []string{"a", "b"}, values)
	assert.Equal(t, "b", d.Settled())
	assert.False(t, d.Pending())
}

func TestDebouncer_BurstReturningToSettledDoesNotEmit(t *testing.T) {
	rec := &recorder{}
	d := New("dune", 20*time.Millisecond, rec.emit)
	defer d.Stop()

	d.Set("dun")
	d.Set("dune")

	time.Sleep(80 * time.Millisecond)
	values, _ := rec.snapshot()
	assert.Empty(t, values)
	assert.Equal(t, "dune", d.Settled())
}

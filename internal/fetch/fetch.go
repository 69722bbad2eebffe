// Package fetch coordinates asynchronous loads whose results may arrive out
// of order. Only the most recently issued execution may commit its result.
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Producer loads a value. It should honour ctx cancellation but is not
// required to; late results from superseded calls are discarded.
type Producer[T any] func(ctx context.Context) (T, error)

// State is a snapshot of a coordinator's request lifecycle.
type State[T any] struct {
	Data    T
	Loading bool
	Err     error
}

// Option configures a Coordinator
type Option[T any] func(*Coordinator[T])

// WithAutoRun executes the producer once when the coordinator is created.
func WithAutoRun[T any]() Option[T] {
	return func(c *Coordinator[T]) { c.autoRun = true }
}

// WithObserver registers a callback invoked after every state transition.
// It runs outside the coordinator lock, on whichever goroutine made the
// change, so snapshots from concurrent transitions may arrive out of order;
// call State for the authoritative value.
func WithObserver[T any](fn func(State[T])) Option[T] {
	return func(c *Coordinator[T]) { c.observer = fn }
}

// WithLogger sets the logger used for debug output.
func WithLogger[T any](logger *slog.Logger) Option[T] {
	return func(c *Coordinator[T]) { c.logger = logger }
}

// WithName labels log lines from this coordinator.
func WithName[T any](name string) Option[T] {
	return func(c *Coordinator[T]) { c.name = name }
}

// Coordinator runs a Producer and tracks its data/loading/error state.
type Coordinator[T any] struct {
	logger   *slog.Logger
	observer func(State[T])
	autoRun  bool
	name     string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	producer Producer[T]
	seq      uint64 // sequence number of the current execution
	inflight context.CancelFunc
	state    State[T]
	closed   bool
}

// New creates a coordinator for fn.
func New[T any](fn Producer[T], opts ...Option[T]) *Coordinator[T] {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Coordinator[T]{
		producer: fn,
		ctx:      ctx,
		cancel:   cancel,
		name:     "fetch",
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.autoRun {
		c.Execute()
	}
	return c
}

// State returns the current state.
func (c *Coordinator[T]) State() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Execute starts a new run of the current producer and returns its sequence
// number. Any earlier run still in flight becomes stale. Returns 0 when the
// coordinator is closed.
func (c *Coordinator[T]) Execute() uint64 {
	c.mu.Lock()
	fn := c.producer
	c.mu.Unlock()
	return c.ExecuteWith(fn)
}

// ExecuteWith replaces the producer and starts a run of it.
func (c *Coordinator[T]) ExecuteWith(fn Producer[T]) uint64 {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return 0
	}
	c.producer = fn
	c.seq++
	seq := c.seq
	if c.inflight != nil {
		c.inflight()
	}
	ctx, cancel := context.WithCancel(c.ctx)
	c.inflight = cancel
	c.state.Loading = true
	c.state.Err = nil
	snap := c.state
	c.wg.Add(1)
	c.mu.Unlock()

	c.logger.Debug("fetch started", "name", c.name, "seq", seq)
	c.notify(snap)

	go c.run(ctx, cancel, seq, fn)
	return seq
}

func (c *Coordinator[T]) run(ctx context.Context, cancel context.CancelFunc, seq uint64, fn Producer[T]) {
	defer c.wg.Done()
	defer cancel()

	data, err := call(ctx, fn)

	c.mu.Lock()
	if c.closed || seq != c.seq {
		c.mu.Unlock()
		c.logger.Debug("discarding stale result", "name", c.name, "seq", seq)
		return
	}
	if err != nil {
		c.state.Err = err
	} else {
		c.state.Data = data
	}
	c.state.Loading = false
	c.inflight = nil
	snap := c.state
	c.mu.Unlock()

	if err != nil {
		c.logger.Debug("fetch failed", "name", c.name, "seq", seq, "error", err)
	} else {
		c.logger.Debug("fetch committed", "name", c.name, "seq", seq)
	}
	c.notify(snap)
}

// call runs fn, converting a panic into an error so it never escapes the
// producer goroutine.
func call[T any](ctx context.Context, fn Producer[T]) (data T, err error) {
	if fn == nil {
		return data, fmt.Errorf("no producer configured")
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("producer panicked: %v", r)
		}
	}()
	return fn(ctx)
}

// Reset clears data, error and loading, and makes every in-flight run stale.
func (c *Coordinator[T]) Reset() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.seq++
	if c.inflight != nil {
		c.inflight()
		c.inflight = nil
	}
	c.state = State[T]{}
	snap := c.state
	c.mu.Unlock()

	c.notify(snap)
}

// Close tears the coordinator down. In-flight runs are cancelled and their
// results discarded; later Execute calls do nothing.
func (c *Coordinator[T]) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.seq++
	c.inflight = nil
	c.mu.Unlock()

	c.cancel()
}

// Wait blocks until every producer goroutine started so far has returned.
func (c *Coordinator[T]) Wait() {
	c.wg.Wait()
}

func (c *Coordinator[T]) notify(s State[T]) {
	if c.observer != nil {
		c.observer(s)
	}
}

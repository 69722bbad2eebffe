package fetch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gated returns a producer that blocks until release is closed.
func gated(value string, release <-chan struct{}) Producer[string] {
	return func(ctx context.Context) (string, error) {
		<-release
		return value, nil
	}
}

func TestCoordinator_ExecuteCommitsResult(t *testing.T) {
	c := New(func(ctx context.Context) (string, error) { return "dune", nil })
	defer c.Close()

	assert.Equal(t, State[string]{}, c.State())

	c.Execute()
	c.Wait()

	st := c.State()
	assert.Equal(t, "dune", st.Data)
	assert.False(t, st.Loading)
	assert.NoError(t, st.Err)
}

func TestCoordinator_LoadingWhileInFlight(t *testing.T) {
	release := make(chan struct{})
	c := New(gated("x", release))
	defer c.Close()

	c.Execute()
	assert.True(t, c.State().Loading)

	close(release)
	c.Wait()
	assert.False(t, c.State().Loading)
}

func TestCoordinator_StaleResponseNeverOverwrites(t *testing.T) {
	firstRelease := make(chan struct{})
	secondRelease := make(chan struct{})

	c := New[string](nil)
	defer c.Close()

	c.ExecuteWith(gated("first", firstRelease))
	c.ExecuteWith(gated("second", secondRelease))

	// Second resolves first, then the stale first call completes.
	close(secondRelease)
	require.Eventually(t, func() bool { return c.State().Data == "second" }, time.Second, time.Millisecond)
	close(firstRelease)
	c.Wait()

	st := c.State()
	assert.Equal(t, "second", st.Data)
	assert.False(t, st.Loading)
}

func TestCoordinator_StaleErrorIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	c := New[string](nil)
	defer c.Close()

	c.ExecuteWith(func(ctx context.Context) (string, error) {
		<-release
		return "", errors.New("boom")
	})
	c.ExecuteWith(func(ctx context.Context) (string, error) { return "fresh", nil })

	require.Eventually(t, func() bool { return c.State().Data == "fresh" }, time.Second, time.Millisecond)
	close(release)
	c.Wait()

	assert.NoError(t, c.State().Err)
	assert.Equal(t, "fresh", c.State().Data)
}

func TestCoordinator_SupersededContextIsCancelled(t *testing.T) {
	cancelled := make(chan struct{})
	c := New[string](nil)
	defer c.Close()

	c.ExecuteWith(func(ctx context.Context) (string, error) {
		<-ctx.Done()
		close(cancelled)
		return "", ctx.Err()
	})
	c.ExecuteWith(func(ctx context.Context) (string, error) { return "ok", nil })

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("superseded producer was not cancelled")
	}
	c.Wait()
	assert.Equal(t, "ok", c.State().Data)
	assert.NoError(t, c.State().Err)
}

func TestCoordinator_ErrorIsCapturedNotThrown(t *testing.T) {
	wantErr := errors.New("catalog down")
	c := New(func(ctx context.Context) ([]string, error) { return nil, wantErr })
	defer c.Close()

	c.Execute()
	c.Wait()

	st := c.State()
	assert.ErrorIs(t, st.Err, wantErr)
	assert.False(t, st.Loading)
	assert.Nil(t, st.Data)
}

func TestCoordinator_PanicBecomesError(t *testing.T) {
	c := New(func(ctx context.Context) (int, error) { panic("bad producer") })
	defer c.Close()

	c.Execute()
	c.Wait()

	require.Error(t, c.State().Err)
	assert.Contains(t, c.State().Err.Error(), "bad producer")
}

func TestCoordinator_ExecuteClearsPreviousError(t *testing.T) {
	fail := atomic.Bool{}
	fail.Store(true)
	c := New(func(ctx context.Context) (string, error) {
		if fail.Load() {
			return "", errors.New("nope")
		}
		return "yes", nil
	})
	defer c.Close()

	c.Execute()
	c.Wait()
	require.Error(t, c.State().Err)

	fail.Store(false)
	c.Execute()
	assert.NoError(t, c.State().Err)
	c.Wait()
	assert.Equal(t, "yes", c.State().Data)
}

func TestCoordinator_ResetDiscardsInFlight(t *testing.T) {
	release := make(chan struct{})
	c := New(gated("late", release))
	defer c.Close()

	c.Execute()
	c.Reset()
	close(release)
	c.Wait()

	assert.Equal(t, State[string]{}, c.State())
}

func TestCoordinator_ResetClearsData(t *testing.T) {
	c := New(func(ctx context.Context) ([]string, error) { return []string{"a"}, nil })
	defer c.Close()

	c.Execute()
	c.Wait()
	require.Len(t, c.State().Data, 1)

	c.Reset()
	st := c.State()
	assert.Empty(t, st.Data)
	assert.False(t, st.Loading)
	assert.NoError(t, st.Err)
}

func TestCoordinator_AutoRun(t *testing.T) {
	var calls atomic.Int32
	c := New(func(ctx context.Context) (int, error) {
		calls.Add(1)
		return 42, nil
	}, WithAutoRun[int]())
	defer c.Close()

	c.Wait()
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 42, c.State().Data)
}

func TestCoordinator_NoAutoRunByDefault(t *testing.T) {
	var calls atomic.Int32
	c := New(func(ctx context.Context) (int, error) {
		calls.Add(1)
		return 1, nil
	})
	defer c.Close()

	c.Wait()
	assert.Equal(t, int32(0), calls.Load())
}

func TestCoordinator_CloseDiscardsAndDisables(t *testing.T) {
	release := make(chan struct{})
	c := New(gated("late", release))

	c.Execute()
	c.Close()
	close(release)
	c.Wait()

	assert.Equal(t, uint64(0), c.Execute())
	assert.Empty(t, c.State().Data)
}

func TestCoordinator_ObserverSeesTransitions(t *testing.T) {
	var loading, committed atomic.Int32
	c := New(func(ctx context.Context) (string, error) { return "v", nil },
		WithObserver(func(s State[string]) {
			if s.Loading {
				loading.Add(1)
			} else if s.Data == "v" {
				committed.Add(1)
			}
		}))
	defer c.Close()

	c.Execute()
	c.Wait()

	assert.Equal(t, int32(1), loading.Load())
	assert.Equal(t, int32(1), committed.Load())
}

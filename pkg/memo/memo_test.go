package memo

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/loci-travelbot-api/pkg/observability"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestGetOrCompute_HitSkipsCompute(t *testing.T) {
	c := New[string]("test", nil, newTestLogger())
	var calls atomic.Int32
	fn := func(ctx context.Context) (string, error) {
		calls.Add(1)
		return "value", nil
	}

	first, err := c.GetOrCompute(context.Background(), "k", fn)
	require.NoError(t, err)
	second, err := c.GetOrCompute(context.Background(), "k", fn)
	require.NoError(t, err)

	assert.Equal(t, "value", first)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 1, c.Len())
}

func TestGetOrCompute_KeysAreIndependent(t *testing.T) {
	c := New[int]("test", nil, newTestLogger())

	a, err := c.GetOrCompute(context.Background(), "a", func(ctx context.Context) (int, error) { return 1, nil })
	require.NoError(t, err)
	b, err := c.GetOrCompute(context.Background(), "b", func(ctx context.Context) (int, error) { return 2, nil })
	require.NoError(t, err)

	assert.Equal(t, 1, a)
	assert.Equal(t, 2, b)
}

func TestGetOrCompute_FailureIsNotCached(t *testing.T) {
	c := New[string]("test", nil, newTestLogger())
	boom := errors.New("upstream down")
	var calls atomic.Int32

	_, err := c.GetOrCompute(context.Background(), "k", func(ctx context.Context) (string, error) {
		calls.Add(1)
		return "", boom
	})
	require.ErrorIs(t, err, boom)
	_, ok := c.Get("k")
	assert.False(t, ok)

	v, err := c.GetOrCompute(context.Background(), "k", func(ctx context.Context) (string, error) {
		calls.Add(1)
		return "recovered", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "recovered", v)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGetOrCompute_EntriesAreNeverOverwritten(t *testing.T) {
	c := New[string]("test", nil, newTestLogger())
	_, err := c.GetOrCompute(context.Background(), "k", func(ctx context.Context) (string, error) { return "first", nil })
	require.NoError(t, err)

	v, err := c.GetOrCompute(context.Background(), "k", func(ctx context.Context) (string, error) { return "second", nil })
	require.NoError(t, err)
	assert.Equal(t, "first", v)
}

func TestGetOrCompute_SingleFlight(t *testing.T) {
	c := New[string]("test", nil, newTestLogger())
	const callers = 32

	var calls atomic.Int32
	release := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once

	fn := func(ctx context.Context) (string, error) {
		calls.Add(1)
		once.Do(func() { close(started) })
		<-release
		return "shared", nil
	}

	var wg sync.WaitGroup
	results := make([]string, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.GetOrCompute(context.Background(), "chile", fn)
		}(i)
	}

	<-started
	// Give the remaining goroutines time to pile up behind the flight.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "shared", results[i])
	}
}

func TestGetOrCompute_CancelledWaiterReturnsPromptly(t *testing.T) {
	c := New[string]("test", nil, newTestLogger())
	release := make(chan struct{})
	started := make(chan struct{})

	go func() {
		_, _ = c.GetOrCompute(context.Background(), "k", func(ctx context.Context) (string, error) {
			close(started)
			<-release
			return "late", nil
		})
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.GetOrCompute(ctx, "k", func(ctx context.Context) (string, error) {
		t.Fatal("second compute must not run while the first is in flight")
		return "", nil
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	require.Eventually(t, func() bool {
		v, ok := c.Get("k")
		return ok && v == "late"
	}, time.Second, 5*time.Millisecond)
}

func TestGetOrCompute_CancelledStarterDoesNotPoisonWaiters(t *testing.T) {
	c := New[string]("test", nil, newTestLogger())
	starterCtx, cancelStarter := context.WithCancel(context.Background())
	started := make(chan struct{})
	var calls atomic.Int32

	fn := func(ctx context.Context) (string, error) {
		if calls.Add(1) == 1 {
			close(started)
			<-ctx.Done()
			return "", ctx.Err()
		}
		return "second try", nil
	}

	starterErr := make(chan error, 1)
	go func() {
		_, err := c.GetOrCompute(starterCtx, "k", fn)
		starterErr <- err
	}()
	<-started

	waiterResult := make(chan string, 1)
	go func() {
		v, err := c.GetOrCompute(context.Background(), "k", fn)
		assert.NoError(t, err)
		waiterResult <- v
	}()

	time.Sleep(20 * time.Millisecond)
	cancelStarter()

	require.ErrorIs(t, <-starterErr, context.Canceled)
	select {
	case v := <-waiterResult:
		assert.Equal(t, "second try", v)
	case <-time.After(time.Second):
		t.Fatal("waiter never completed")
	}
	assert.Equal(t, int32(2), calls.Load())
}

func TestGetOrCompute_AlreadyCancelledContext(t *testing.T) {
	c := New[string]("test", nil, newTestLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.GetOrCompute(ctx, "k", func(ctx context.Context) (string, error) {
		t.Fatal("compute must not run for a cancelled caller")
		return "", nil
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, c.Len())
}

func TestGetOrCompute_RecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	c := New[string]("sun_times", metrics, newTestLogger())

	_, err := c.GetOrCompute(context.Background(), "k", func(ctx context.Context) (string, error) { return "v", nil })
	require.NoError(t, err)
	_, err = c.GetOrCompute(context.Background(), "k", func(ctx context.Context) (string, error) { return "v", nil })
	require.NoError(t, err)

	expected := `
# HELP travelbot_cache_lookups_total Cache lookups partitioned by tier and hit or miss.
# TYPE travelbot_cache_lookups_total counter
travelbot_cache_lookups_total{cache="sun_times",result="hit"} 1
travelbot_cache_lookups_total{cache="sun_times",result="miss"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "travelbot_cache_lookups_total"))
}

func TestGetOrCompute_RetryAfterAbandonedFlightCountsOneMiss(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New[string]("capitals", observability.NewMetrics(reg), newTestLogger())
	starterCtx, cancelStarter := context.WithCancel(context.Background())
	started := make(chan struct{})
	var calls atomic.Int32

	fn := func(ctx context.Context) (string, error) {
		if calls.Add(1) == 1 {
			close(started)
			<-ctx.Done()
			return "", ctx.Err()
		}
		return "Santiago", nil
	}

	starterErr := make(chan error, 1)
	go func() {
		_, err := c.GetOrCompute(starterCtx, "Chile", fn)
		starterErr <- err
	}()
	<-started

	waiterErr := make(chan error, 1)
	go func() {
		_, err := c.GetOrCompute(context.Background(), "Chile", fn)
		waiterErr <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancelStarter()

	require.ErrorIs(t, <-starterErr, context.Canceled)
	require.NoError(t, <-waiterErr)
	assert.Equal(t, int32(2), calls.Load())

	// One miss per caller, however many flights the waiter needed.
	expected := `
# HELP travelbot_cache_lookups_total Cache lookups partitioned by tier and hit or miss.
# TYPE travelbot_cache_lookups_total counter
travelbot_cache_lookups_total{cache="capitals",result="miss"} 2
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "travelbot_cache_lookups_total"))
}

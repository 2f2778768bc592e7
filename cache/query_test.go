package cache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func newAnyCache(t *testing.T, cfg Config) *SmartCache[any] {
	t.Helper()
	c, err := New[any](cfg.withDefaults())
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	t.Cleanup(c.Destroy)
	return c
}

func TestGetWithCacheLoadsOnce(t *testing.T) {
	c := newAnyCache(t, Config{})
	ctx := context.Background()

	var calls atomic.Int64
	loader := func(ctx context.Context) (int, error) {
		calls.Add(1)
		return 42, nil
	}

	v, err := GetWithCache(ctx, c, "p1", loader)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	if v != 42 {
		t.Fatalf("first call = %d; want 42", v)
	}

	v, err = GetWithCache(ctx, c, "p1", loader)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if v != 42 {
		t.Fatalf("second call = %d; want 42", v)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("loader ran %d times; want 1", got)
	}
}

func TestGetWithCachePropagatesLoaderError(t *testing.T) {
	c := newAnyCache(t, Config{})
	boom := errors.New("database unreachable")

	_, err := GetWithCache(context.Background(), c, "k", func(ctx context.Context) (int, error) {
		return 0, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v; want the loader's error", err)
	}

	// Failures are never cached; the next call must retry the loader.
	v, err := GetWithCache(context.Background(), c, "k", func(ctx context.Context) (int, error) {
		return 7, nil
	})
	if err != nil || v != 7 {
		t.Fatalf("retry = %d, %v; want 7, nil", v, err)
	}
}

func TestGetWithCacheCoalescesConcurrentMisses(t *testing.T) {
	c := newAnyCache(t, Config{})

	var calls atomic.Int64
	release := make(chan struct{})
	loader := func(ctx context.Context) (string, error) {
		calls.Add(1)
		<-release
		return "value", nil
	}

	const workers = 16
	var wg sync.WaitGroup
	results := make([]string, workers)
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = GetWithCache(context.Background(), c, "cold", loader)
		}(i)
	}

	// Give every worker a chance to reach the flight before the load finishes.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	for i := 0; i < workers; i++ {
		if errs[i] != nil {
			t.Fatalf("worker %d: %v", i, errs[i])
		}
		if results[i] != "value" {
			t.Fatalf("worker %d = %q; want value", i, results[i])
		}
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("loader ran %d times under concurrent misses; want 1", got)
	}
}

func TestGetWithCacheTypeMismatch(t *testing.T) {
	c := newAnyCache(t, Config{})
	c.Set("k", "a string")

	_, err := GetWithCache(context.Background(), c, "k", func(ctx context.Context) (int, error) {
		return 1, nil
	})
	if !errors.Is(err, ErrInvalidResultType) {
		t.Fatalf("err = %v; want ErrInvalidResultType", err)
	}
}

func TestGetWithCacheNilValueRoundTrips(t *testing.T) {
	c := newAnyCache(t, Config{})

	v, err := GetWithCache(context.Background(), c, "k", func(ctx context.Context) (*string, error) {
		return nil, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != nil {
		t.Fatalf("v = %v; want nil", v)
	}
}

func TestGetWithCacheTTLRespected(t *testing.T) {
	c := newAnyCache(t, Config{})

	var calls atomic.Int64
	loader := func(ctx context.Context) (int, error) {
		calls.Add(1)
		return int(calls.Load()), nil
	}

	if _, err := GetWithCacheTTL(context.Background(), c, "k", loader, 10*time.Millisecond); err != nil {
		t.Fatalf("first call: %v", err)
	}
	time.Sleep(15 * time.Millisecond)

	v, err := GetWithCacheTTL(context.Background(), c, "k", loader, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if v != 2 {
		t.Fatalf("expected reload after TTL expiry, got %d", v)
	}
}

func TestInvalidatePattern(t *testing.T) {
	c := newTestCache(t, Config{})

	c.Set("product:1", 1)
	c.Set("product:2", 2)
	c.Set("customer:9", 3)

	if got := InvalidatePattern(c, "product"); got != 2 {
		t.Fatalf("removed %d keys; want 2", got)
	}
	if _, ok := c.Get("customer:9"); !ok {
		t.Fatalf("expected customer:9 to survive")
	}
	if c.Has("product:1") || c.Has("product:2") {
		t.Fatalf("expected product keys to be removed")
	}
}

func TestInvalidatePatternNoMatches(t *testing.T) {
	c := newTestCache(t, Config{})
	c.Set("a", 1)

	if got := InvalidatePattern(c, "zzz"); got != 0 {
		t.Fatalf("removed %d keys; want 0", got)
	}
}

func TestWarmUpSeedsCache(t *testing.T) {
	c := newAnyCache(t, Config{})

	WarmUp(context.Background(), c, func(ctx context.Context) ([]Seed[int], error) {
		return []Seed[int]{{Key: "a", Data: 1}, {Key: "b", Data: 2}}, nil
	}, 0, discardLogger())

	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("Get(a) = %v, %v; want 1, true", v, ok)
	}
	if v, ok := c.Get("b"); !ok || v != 2 {
		t.Fatalf("Get(b) = %v, %v; want 2, true", v, ok)
	}
}

func TestWarmUpSwallowsLoaderError(t *testing.T) {
	c := newAnyCache(t, Config{})

	WarmUp(context.Background(), c, func(ctx context.Context) ([]Seed[int], error) {
		return nil, errors.New("bulk load failed")
	}, 0, discardLogger())

	if got := c.Size(); got != 0 {
		t.Fatalf("size = %d; want 0 after failed warm-up", got)
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

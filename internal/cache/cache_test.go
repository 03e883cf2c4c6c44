package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestLRU(size int, ttl time.Duration) (*LRUCache[string], *fakeClock) {
	clk := &fakeClock{t: time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)}
	c := NewLRUCache[string](size, ttl)
	c.now = clk.now
	return c, clk
}

func TestLRUExpiration(t *testing.T) {
	c, clk := newTestLRU(10, time.Minute)
	c.Set("a", "1")
	if v, ok := c.Get("a"); !ok || v != "1" {
		t.Fatalf("expected hit, got %q %v", v, ok)
	}
	clk.t = clk.t.Add(2 * time.Minute)
	if _, ok := c.Get("a"); ok {
		t.Fatal("expected expiry")
	}
	if c.Size() != 0 {
		t.Fatalf("expired entry should be removed on read, size %d", c.Size())
	}
}

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c, _ := newTestLRU(2, time.Hour)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Get("a") // a is now most recent
	c.Set("c", "3")

	if _, ok := c.Get("b"); ok {
		t.Fatal("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatal("a should survive")
	}
	if c.Size() != 2 {
		t.Fatalf("size = %d, want 2", c.Size())
	}
}

func TestLRUDeleteAndPurge(t *testing.T) {
	c, _ := newTestLRU(10, time.Hour)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Fatal("deleted key still present")
	}
	c.Purge()
	if c.Size() != 0 {
		t.Fatalf("purge left %d entries", c.Size())
	}
	c.Set("c", "3")
	if v, ok := c.Get("c"); !ok || v != "3" {
		t.Fatal("cache unusable after purge")
	}
}

func TestLRUCleanExpired(t *testing.T) {
	c, clk := newTestLRU(10, time.Minute)
	c.Set("old", "1")
	clk.t = clk.t.Add(30 * time.Second)
	c.Set("new", "2")
	clk.t = clk.t.Add(45 * time.Second)

	if n := c.CleanExpired(); n != 1 {
		t.Fatalf("cleaned %d, want 1", n)
	}
	if _, ok := c.Get("new"); !ok {
		t.Fatal("fresh entry removed")
	}
}

func TestLoaderCachesAndCollapses(t *testing.T) {
	l := NewLoader[string](NewLRUCache[string](10, time.Hour))
	var calls atomic.Int32
	release := make(chan struct{})
	load := func(context.Context) (string, error) {
		calls.Add(1)
		<-release
		return "v", nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if v, err := l.Get(context.Background(), "k", load); err != nil || v != "v" {
				t.Errorf("got %q %v", v, err)
			}
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := calls.Load(); n != 1 {
		t.Fatalf("load called %d times, want 1", n)
	}
	if _, err := l.Get(context.Background(), "k", load); err != nil || calls.Load() != 1 {
		t.Fatalf("second get should hit the cache")
	}
}

func TestLoaderDoesNotCacheErrors(t *testing.T) {
	l := NewLoader[int](NewLRUCache[int](10, time.Hour))
	boom := errors.New("boom")
	if _, err := l.Get(context.Background(), "k", func(context.Context) (int, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	v, err := l.Get(context.Background(), "k", func(context.Context) (int, error) { return 7, nil })
	if err != nil || v != 7 {
		t.Fatalf("error was cached: %d %v", v, err)
	}
}

func TestLoaderPurgeDuringLoad(t *testing.T) {
	l := NewLoader[string](NewLRUCache[string](10, time.Hour))
	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = l.Get(context.Background(), "k", func(context.Context) (string, error) {
			close(started)
			<-release
			return "stale", nil
		})
	}()
	<-started
	l.Purge()
	close(release)
	<-done

	v, _ := l.Get(context.Background(), "k", func(context.Context) (string, error) { return "fresh", nil })
	if v != "fresh" {
		t.Fatalf("stale load filled the cache after purge: %q", v)
	}
}

func TestLoaderCancelledCallerDoesNotFailOthers(t *testing.T) {
	l := NewLoader[string](NewLRUCache[string](10, time.Hour))
	started := make(chan struct{})
	var startOnce sync.Once
	release := make(chan struct{})
	load := func(ctx context.Context) (string, error) {
		startOnce.Do(func() { close(started) })
		select {
		case <-release:
			return "v", nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := l.Get(firstCtx, "k", load)
		firstErr <- err
	}()
	<-started

	second := make(chan string, 1)
	go func() {
		v, err := l.Get(context.Background(), "k", load)
		if err != nil {
			t.Errorf("second caller failed: %v", err)
		}
		second <- v
	}()
	time.Sleep(20 * time.Millisecond)

	cancelFirst()
	if err := <-firstErr; !errors.Is(err, context.Canceled) {
		t.Fatalf("first caller: expected context.Canceled, got %v", err)
	}
	close(release)

	if v := <-second; v != "v" {
		t.Fatalf("second caller got %q", v)
	}
	if v, ok := l.cache.Get("k"); !ok || v != "v" {
		t.Fatalf("shared load did not fill the cache: %q %v", v, ok)
	}
}

func TestManagerStop(t *testing.T) {
	m := NewManager()
	c, _ := newTestLRU(1, time.Nanosecond)
	m.Register(c)
	m.StartCleanup(time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	m.Stop()
	m.Stop()

	NewManager().Stop() // never started
}

package flight

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestGetCachesResult(t *testing.T) {
	var calls atomic.Int64
	c := New(func(k string) (string, error) {
		calls.Add(1)
		return "made:" + k, nil
	}, 0)

	for i := 0; i < 3; i++ {
		v, err := c.Get("a")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v != "made:a" {
			t.Errorf("v = %q", v)
		}
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("work ran %d times, want 1", got)
	}
}

func TestGetDoesNotCacheErrors(t *testing.T) {
	var calls atomic.Int64
	boom := errors.New("boom")
	c := New(func(string) (int, error) {
		calls.Add(1)
		return 0, boom
	}, 0)

	for i := 0; i < 2; i++ {
		if _, err := c.Get("a"); !errors.Is(err, boom) {
			t.Fatalf("err = %v", err)
		}
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("work ran %d times, want 2", got)
	}
}

func TestGetCoalescesConcurrentCallers(t *testing.T) {
	var calls atomic.Int64
	release := make(chan struct{})
	c := New(func(k string) (string, error) {
		calls.Add(1)
		<-release
		return "slow:" + k, nil
	}, 0)

	const n = 8
	var wg sync.WaitGroup
	results := make([]string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := c.Get("a")
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			results[i] = v
		}(i)
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("work ran %d times, want 1", got)
	}
	for i, v := range results {
		if v != "slow:a" {
			t.Errorf("results[%d] = %q", i, v)
		}
	}
}

func TestGetExpiresAfterTTL(t *testing.T) {
	var calls atomic.Int64
	c := New(func(string) (int, error) {
		return int(calls.Add(1)), nil
	}, 10*time.Millisecond)

	first, _ := c.Get("a")
	if first != 1 {
		t.Fatalf("first = %d", first)
	}
	time.Sleep(25 * time.Millisecond)
	second, _ := c.Get("a")
	if second != 2 {
		t.Errorf("second = %d, want recomputed value", second)
	}
}

func TestExpiredEntriesAreReleasedWithoutAccess(t *testing.T) {
	c := New(func(k string) ([]byte, error) {
		return make([]byte, 1<<20), nil
	}, 10*time.Millisecond)

	for _, k := range []string{"a", "b", "c"} {
		if _, err := c.Get(k); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	// The sweeper, not a follow-up request, must evict expired values.
	deadline := time.Now().Add(time.Second)
	for {
		c.mu.Lock()
		n := len(c.finished)
		c.mu.Unlock()
		if n == 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("finished map still holds %d expired entries", n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestForceRecomputes(t *testing.T) {
	var calls atomic.Int64
	c := New(func(string) (int, error) {
		return int(calls.Add(1)), nil
	}, 0)

	if v, _ := c.Get("a"); v != 1 {
		t.Fatalf("v = %d", v)
	}
	if v, _ := c.Force("a"); v != 2 {
		t.Errorf("force returned %d, want fresh value", v)
	}
	if v, _ := c.Get("a"); v != 2 {
		t.Errorf("get after force = %d, want cached fresh value", v)
	}
}

func TestDistinctKeysDoNotShareResults(t *testing.T) {
	c := New(func(k string) (string, error) { return "made:" + k, nil }, 0)

	a, _ := c.Get("a")
	b, _ := c.Get("b")
	if a == b {
		t.Errorf("keys collided: %q / %q", a, b)
	}
}

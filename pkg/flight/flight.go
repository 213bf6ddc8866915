// Package flight coalesces identical in-flight computations and caches
// finished results for a bounded time. Used at the HTTP layer to avoid
// paying twice for the same illustration; the generation pipeline itself
// stays dedup-free.
package flight

import (
	"sync"
	"time"
)

type Cache[K comparable, V any] struct {
	finished map[K]entry[V]
	pending  map[K]*job[V]
	mu       sync.Mutex

	work func(K) (V, error)
	ttl  time.Duration
}

type entry[V any] struct {
	val      V
	deadline time.Time // zero => never expires
}

type job[V any] struct {
	val  V
	err  error
	done chan struct{}
}

// New builds a cache that runs work on miss. ttl <= 0 keeps results forever.
func New[K comparable, V any](work func(K) (V, error), ttl time.Duration) *Cache[K, V] {
	c := &Cache[K, V]{
		finished: make(map[K]entry[V]),
		pending:  make(map[K]*job[V]),
		work:     work,
		ttl:      ttl,
	}
	if ttl > 0 {
		go c.sweep()
	}
	return c
}

// sweep drops expired entries on a TTL cadence so their values do not stay
// reachable for keys that are never requested again.
func (c *Cache[K, V]) sweep() {
	tick := time.NewTicker(c.ttl)
	defer tick.Stop()
	for range tick.C {
		now := time.Now()
		c.mu.Lock()
		for k, e := range c.finished {
			if !e.deadline.IsZero() && now.After(e.deadline) {
				delete(c.finished, k)
			}
		}
		c.mu.Unlock()
	}
}

// Get returns the cached value for k, joins an in-flight computation if one
// exists, or computes the value itself.
func (c *Cache[K, V]) Get(k K) (V, error) {
	c.mu.Lock()
	if e, ok := c.finished[k]; ok {
		if e.deadline.IsZero() || time.Now().Before(e.deadline) {
			c.mu.Unlock()
			return e.val, nil
		}
		delete(c.finished, k)
	}
	if p, ok := c.pending[k]; ok {
		c.mu.Unlock()
		<-p.done
		return p.val, p.err
	}
	return c.run(k)
}

// Force recomputes k even if a finished value exists, still coalescing with
// any computation already in flight.
func (c *Cache[K, V]) Force(k K) (V, error) {
	c.mu.Lock()
	delete(c.finished, k)
	if p, ok := c.pending[k]; ok {
		c.mu.Unlock()
		<-p.done
		return p.val, p.err
	}
	return c.run(k)
}

// run starts a new job for k. Caller must hold c.mu; run releases it.
func (c *Cache[K, V]) run(k K) (V, error) {
	j := &job[V]{done: make(chan struct{})}
	c.pending[k] = j
	c.mu.Unlock()

	j.val, j.err = c.work(k)

	c.mu.Lock()
	if j.err == nil {
		e := entry[V]{val: j.val}
		if c.ttl > 0 {
			e.deadline = time.Now().Add(c.ttl)
		}
		c.finished[k] = e
	}
	delete(c.pending, k)
	c.mu.Unlock()

	close(j.done)
	return j.val, j.err
}

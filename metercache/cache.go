// Package metercache wraps a dualcache handle with operation metrics:
// latency timers per operation and hit/miss counters, collected in a
// go-metrics registry.
package metercache

import (
	"time"

	"github.com/rcrowley/go-metrics"

	"github.com/skipor/dualcache"
)

type Cache[K comparable, V any] struct {
	next dualcache.Interface[K, V]

	getTimer    metrics.Timer
	insertTimer metrics.Timer
	updateTimer metrics.Timer
	deleteTimer metrics.Timer
	hit         metrics.Counter
	miss        metrics.Counter
}

var _ dualcache.Interface[string, any] = (*Cache[string, any])(nil)

func New[K comparable, V any](next dualcache.Interface[K, V], r metrics.Registry) *Cache[K, V] {
	return &Cache[K, V]{
		next:        next,
		getTimer:    metrics.GetOrRegisterTimer("dualcache.get", r),
		insertTimer: metrics.GetOrRegisterTimer("dualcache.insert", r),
		updateTimer: metrics.GetOrRegisterTimer("dualcache.update", r),
		deleteTimer: metrics.GetOrRegisterTimer("dualcache.delete", r),
		hit:         metrics.GetOrRegisterCounter("dualcache.hit", r),
		miss:        metrics.GetOrRegisterCounter("dualcache.miss", r),
	}
}

func (c *Cache[K, V]) Get(key K) (V, bool) {
	start := time.Now()
	value, ok := c.next.Get(key)
	c.getTimer.UpdateSince(start)
	if ok {
		c.hit.Inc(1)
	} else {
		c.miss.Inc(1)
	}
	return value, ok
}

func (c *Cache[K, V]) Insert(key K, value V, timestamp uint64) {
	start := time.Now()
	c.next.Insert(key, value, timestamp)
	c.insertTimer.UpdateSince(start)
}

func (c *Cache[K, V]) Update(key K, value V) bool {
	start := time.Now()
	ok := c.next.Update(key, value)
	c.updateTimer.UpdateSince(start)
	return ok
}

func (c *Cache[K, V]) Delete(key K) bool {
	start := time.Now()
	deleted := c.next.Delete(key)
	c.deleteTimer.UpdateSince(start)
	return deleted
}

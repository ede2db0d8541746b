package dualcache

import (
	"sync"

	"github.com/rcrowley/go-metrics"

	"github.com/skipor/dualcache/internal/tag"
)

// Interface is the operation surface shared by the cache handle and its
// decorators.
type Interface[K comparable, V any] interface {
	Get(key K) (V, bool)
	Insert(key K, value V, timestamp uint64)
	Update(key K, value V) bool
	Delete(key K) bool
}

// Cache is the shareable handle. All methods are safe for concurrent use.
//
// Reads resolve through the mirror and never take the master mutex; a hit
// lossily signals the maintenance worker. Writers acquire the master mutex
// directly. An insert is visible to Get only after the next mirror
// publication (worker cadence, SyncMirror, or InsertAndPublish).
type Cache[K comparable, V any] struct {
	conf    Config[K, V]
	master  *master[K, V]
	mirror  *mirror[K, V]
	signals *signals[K]

	hits      metrics.Counter
	misses    metrics.Counter
	published metrics.Counter
	evicted   metrics.Counter
	dropped   metrics.Counter

	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

var _ Interface[string, any] = (*Cache[string, any])(nil)

// New constructs the cache and starts its maintenance worker.
// Callers must Close the cache to stop the worker; after Close the handle
// keeps functioning in a degraded but correct mode (§ worker-terminated).
func New[K comparable, V any](conf Config[K, V]) (*Cache[K, V], error) {
	if err := conf.validate(); err != nil {
		return nil, err
	}
	conf.init()
	if tag.Debug {
		conf.Logger.Warn("Using debug build. It has more runtime checks and large performance overhead.")
	}
	c := &Cache[K, V]{
		conf:      conf,
		hits:      metrics.GetOrRegisterCounter("dualcache.get.hit", conf.Metrics),
		misses:    metrics.GetOrRegisterCounter("dualcache.get.miss", conf.Metrics),
		published: metrics.GetOrRegisterCounter("dualcache.mirror.publish", conf.Metrics),
		evicted:   metrics.GetOrRegisterCounter("dualcache.evict", conf.Metrics),
		dropped:   metrics.GetOrRegisterCounter("dualcache.signal.drop", conf.Metrics),
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	c.master = newMaster(conf, c.evicted)
	c.mirror = newMirror[K, V]()
	c.signals = newSignals[K](conf.SignalChannelCapacity, c.dropped)

	w := &worker[K, V]{
		master:        c.master,
		signals:       c.signals,
		sync:          c.SyncMirror,
		publishEveryN: conf.PublishEveryNPromotions,
		publishEvery:  conf.PublishEvery,
		drainBatch:    conf.DrainBatch,
		clock:         conf.Clock,
		quit:          c.quit,
		done:          c.done,
		log:           conf.Logger,
	}
	go w.run()
	return c, nil
}

// Get resolves key through the current mirror snapshot. On a hit the value
// is copied out and the key is lossily signalled to the worker. Get never
// blocks and never touches the master.
func (c *Cache[K, V]) Get(key K) (value V, ok bool) {
	snap := c.mirror.load()
	value, ok = snap.get(key)
	if !ok {
		c.misses.Inc(1)
		return value, false
	}
	c.hits.Inc(1)
	c.signals.trySend(key)
	return value, true
}

// Insert adds or overwrites an entry on the master. Visibility to readers
// waits for the next publication.
func (c *Cache[K, V]) Insert(key K, value V, timestamp uint64) {
	c.master.Insert(key, value, timestamp)
}

// InsertAndPublish is the synchronous read-your-write variant: the new entry
// is visible to Get on return.
func (c *Cache[K, V]) InsertAndPublish(key K, value V, timestamp uint64) {
	c.master.Insert(key, value, timestamp)
	c.SyncMirror()
}

// Update overwrites the value of a present key, preserving its counter and
// position. Reports whether the key was present.
func (c *Cache[K, V]) Update(key K, value V) bool {
	return c.master.Update(key, value)
}

// Delete removes a key from the master. Mirror readers may still observe it
// until the next publication.
func (c *Cache[K, V]) Delete(key K) bool {
	return c.master.Delete(key)
}

// HandleUpdate applies one hit signal to the master: promote plus membrane
// adjust. It is the per-key entry point for embedders that run their own
// worker loop instead of the built-in one.
func (c *Cache[K, V]) HandleUpdate(key K) bool {
	return c.master.Promote(key, 1)
}

// DecayAll halves every counter. Intended for external scheduled triggers
// ("midnight decay"); it holds the master lock for O(len).
func (c *Cache[K, V]) DecayAll() {
	c.master.Decay()
}

// Compact rebuilds the master index, reclaiming stale keys left behind by
// cliff-edge truncations.
func (c *Cache[K, V]) Compact() {
	c.master.Compact()
}

// SyncMirror snapshots the master and publishes the snapshot to the mirror.
func (c *Cache[K, V]) SyncMirror() {
	c.mirror.publish(c.master.Snapshot())
	c.published.Inc(1)
}

// Stats is a point-in-time observability snapshot.
type Stats struct {
	Len            int
	Capacity       int
	EvictPoint     int
	CounterSum     uint64
	MirrorLen      int
	Hits           int64
	Misses         int64
	SignalsDropped int64
	Publications   int64
	Evictions      int64
}

func (c *Cache[K, V]) Stats() Stats {
	length, evictPoint, counterSum := c.master.state()
	return Stats{
		Len:            length,
		Capacity:       c.conf.Capacity,
		EvictPoint:     evictPoint,
		CounterSum:     counterSum,
		MirrorLen:      c.mirror.load().len(),
		Hits:           c.hits.Count(),
		Misses:         c.misses.Count(),
		SignalsDropped: c.dropped.Count(),
		Publications:   c.published.Count(),
		Evictions:      c.evicted.Count(),
	}
}

// Close stops the maintenance worker: buffered signals are drained and
// applied, a final snapshot is published, then the worker exits. Close is
// idempotent. The handle stays usable: Get serves the last mirror, signal
// sends drop silently once the buffer fills, and direct master writes still
// work.
func (c *Cache[K, V]) Close() {
	c.closeOnce.Do(func() {
		close(c.quit)
		<-c.done
	})
}

package dualcache

import (
	"os"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/facebookgo/stackerr"
	"github.com/rcrowley/go-metrics"

	"github.com/skipor/dualcache/log"
)

const (
	// DefaultSignalChannelCapacity bounds the hit-signal queue when the
	// capacity-proportional value is smaller.
	DefaultSignalChannelCapacity = 10000
	// DefaultDrainBatch is how many extra signals the worker coalesces per
	// lock acquisition.
	DefaultDrainBatch = 64
)

type Config[K comparable, V any] struct {
	// Capacity bounds the number of cached entries. Required, > 0.
	// Immutable after construction.
	Capacity int

	// SignalChannelCapacity bounds the lossy hit-signal queue.
	// Default: 10000 or 1% of Capacity, whichever is larger.
	SignalChannelCapacity int

	// PublishEveryNPromotions makes the worker republish the mirror after
	// that many applied promotions. Default: Capacity / 100, min 1.
	PublishEveryNPromotions int

	// PublishEvery additionally republishes when this much time elapsed
	// with promotions pending. Zero disables the time criterion.
	PublishEvery time.Duration

	// DrainBatch is how many extra signals the worker drains without
	// blocking after the first one. Default: DefaultDrainBatch.
	DrainBatch int

	// MembraneStep is the evict point advance on a weak boundary.
	// Default: max(1, Capacity / 10).
	MembraneStep int

	// MembraneWatermark is the arena length at or below which the membrane
	// rests.
	// Default: Capacity / 2.
	MembraneWatermark int

	// OnEvict, if set, is called under the master lock for every entry
	// removed by cliff-edge truncation. Keep it cheap.
	OnEvict func(Entry[K, V])

	// Logger defaults to an error-level stderr logger.
	Logger log.Logger

	// Clock defaults to the wall clock. Tests substitute a mock.
	Clock clock.Clock

	// Metrics is the registry for cache counters (get.hit, get.miss,
	// signal.drop, mirror.publish, evict). Defaults to a private registry.
	Metrics metrics.Registry
}

// init fills unset fields with documented defaults.
func (c *Config[K, V]) init() {
	if c.SignalChannelCapacity == 0 {
		c.SignalChannelCapacity = max(DefaultSignalChannelCapacity, c.Capacity/100)
	}
	if c.PublishEveryNPromotions == 0 {
		c.PublishEveryNPromotions = max(1, c.Capacity/100)
	}
	if c.DrainBatch == 0 {
		c.DrainBatch = DefaultDrainBatch
	}
	if c.MembraneStep == 0 {
		c.MembraneStep = max(1, c.Capacity/10)
	}
	if c.MembraneWatermark == 0 {
		c.MembraneWatermark = c.Capacity / 2
	}
	if c.Logger == nil {
		c.Logger = log.NewLogger(log.ErrorLevel, os.Stderr)
	}
	if c.Clock == nil {
		c.Clock = clock.New()
	}
	if c.Metrics == nil {
		c.Metrics = metrics.NewRegistry()
	}
}

func (c *Config[K, V]) validate() error {
	if c.Capacity <= 0 {
		return stackerr.Newf("dualcache: capacity must be positive, got %v", c.Capacity)
	}
	if c.SignalChannelCapacity < 0 {
		return stackerr.Newf("dualcache: negative signal channel capacity %v", c.SignalChannelCapacity)
	}
	if c.PublishEveryNPromotions < 0 {
		return stackerr.Newf("dualcache: negative publish promotion threshold %v", c.PublishEveryNPromotions)
	}
	if c.PublishEvery < 0 {
		return stackerr.Newf("dualcache: negative publish period %v", c.PublishEvery)
	}
	if c.MembraneStep < 0 {
		return stackerr.Newf("dualcache: negative membrane step %v", c.MembraneStep)
	}
	if c.MembraneWatermark < 0 || c.MembraneWatermark > c.Capacity {
		return stackerr.Newf("dualcache: membrane watermark %v out of [0, capacity]", c.MembraneWatermark)
	}
	return nil
}

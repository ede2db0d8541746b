package dualcache

import (
	"time"

	"github.com/benbjohnson/clock"

	"github.com/skipor/dualcache/log"
)

// worker is the single consumer of the signal channel. It drains signals in
// batches, coalesces repeats into (key, count) pairs to cut mutex traffic,
// applies promotions to the master and republishes the mirror when the
// publication criterion is met: promotions-since-last reaching publishEveryN,
// or publishEvery elapsing with promotions pending.
type worker[K comparable, V any] struct {
	master  *master[K, V]
	signals *signals[K]
	sync    func() // snapshots the master and publishes the mirror

	publishEveryN int
	publishEvery  time.Duration // 0 disables the elapsed-time criterion
	drainBatch    int

	clock clock.Clock
	quit  chan struct{}
	done  chan struct{}
	log   log.Logger
}

func (w *worker[K, V]) run() {
	defer close(w.done)
	w.log.Debug("maintenance worker started")

	var tick <-chan time.Time
	if w.publishEvery > 0 {
		t := w.clock.Ticker(w.publishEvery)
		defer t.Stop()
		tick = t.C
	}

	pending := 0
	batch := make(map[K]uint64, w.drainBatch+1)
	for {
		select {
		case <-w.quit:
			w.drainRemaining(batch)
			w.sync()
			w.log.Debug("maintenance worker stopped")
			return
		case key := <-w.signals.ch:
			clear(batch)
			batch[key] = 1
			w.drainInto(batch)
			pending += w.master.PromoteBatch(batch)
			if pending >= w.publishEveryN {
				w.sync()
				pending = 0
			}
		case <-tick:
			w.master.AdjustMembrane()
			if pending > 0 {
				w.sync()
				pending = 0
			}
		}
	}
}

// drainInto coalesces up to drainBatch additional signals without blocking.
func (w *worker[K, V]) drainInto(batch map[K]uint64) {
	for extra := w.drainBatch; extra > 0; extra-- {
		key, ok := w.signals.tryRecv()
		if !ok {
			return
		}
		batch[key]++
	}
}

// drainRemaining applies whatever is still buffered at shutdown, so signals
// received before Close are not thrown away with the worker.
func (w *worker[K, V]) drainRemaining(batch map[K]uint64) {
	for {
		clear(batch)
		w.drainInto(batch)
		if len(batch) == 0 {
			return
		}
		w.master.PromoteBatch(batch)
	}
}

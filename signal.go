package dualcache

import "github.com/rcrowley/go-metrics"

// signals is the bounded lossy hit-signal queue between readers and the
// maintenance worker. Senders never block: a full channel drops the signal
// and that is the designed backpressure. Under saturation ranking accuracy
// degrades; read latency does not.
type signals[K comparable] struct {
	ch      chan K
	dropped metrics.Counter
}

func newSignals[K comparable](capacity int, dropped metrics.Counter) *signals[K] {
	return &signals[K]{
		ch:      make(chan K, capacity),
		dropped: dropped,
	}
}

// trySend enqueues a hit signal without blocking. Loss is silent from the
// reader's point of view; it is only counted.
func (s *signals[K]) trySend(key K) {
	select {
	case s.ch <- key:
	default:
		s.dropped.Inc(1)
	}
}

// tryRecv drains one signal without blocking.
func (s *signals[K]) tryRecv() (key K, ok bool) {
	select {
	case key = <-s.ch:
		return key, true
	default:
		return key, false
	}
}

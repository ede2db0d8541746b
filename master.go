package dualcache

import (
	"sync"

	"github.com/rcrowley/go-metrics"

	"github.com/skipor/dualcache/log"
)

// master owns the authoritative arena, index and membrane under a single
// non-reentrant mutex. It is the sole mutator: the maintenance worker and
// external writers all serialize here. Most critical sections are O(1)
// amortized; Decay, Compact and Snapshot are O(len), truncation is
// O(removed), and a grandfather-clause hold scans the protected prefix.
type master[K comparable, V any] struct {
	mu       sync.Mutex
	arena    *arena[K, V]
	membrane membrane

	// onEvict is called under the lock for every entry removed by
	// cliff-edge truncation. Hook point for external TTL or persistence
	// collaborators.
	onEvict func(Entry[K, V])
	evicted metrics.Counter
	log     log.Logger
}

func newMaster[K comparable, V any](conf Config[K, V], evicted metrics.Counter) *master[K, V] {
	return &master[K, V]{
		arena:    newArena[K, V](conf.Capacity),
		membrane: newMembrane(conf.Capacity, conf.MembraneStep, conf.MembraneWatermark),
		onEvict:  conf.OnEvict,
		evicted:  evicted,
		log:      conf.Logger,
	}
}

// Promote applies a single coalesced hit signal: the entry's counter grows
// by count and the entry climbs exactly one position. This is the only
// hit-driven promotion path.
func (m *master[K, V]) Promote(key K, count uint64) (applied bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	defer m.checkInvariants()
	applied = m.promote(key, count)
	m.adjustMembrane()
	return applied
}

// PromoteBatch applies a drained batch of coalesced signals under one lock
// acquisition and reconsiders the membrane once. It reports the number of
// promotions applied to present keys; signals for keys no longer present
// are skipped and not counted anywhere.
func (m *master[K, V]) PromoteBatch(batch map[K]uint64) (applied int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	defer m.checkInvariants()
	for key, count := range batch {
		if m.promote(key, count) {
			applied += int(count)
		}
	}
	m.adjustMembrane()
	return applied
}

func (m *master[K, V]) promote(key K, count uint64) bool {
	p, ok := m.arena.lookup(key)
	if !ok {
		return false
	}
	m.arena.bump(p, count)
	if p > 0 {
		m.arena.swapPositions(p, p-1)
	}
	return true
}

// Insert adds a new entry or, when the key is already present, overwrites
// its value preserving counter and position. A full arena is cut at the
// membrane first.
func (m *master[K, V]) Insert(key K, value V, timestamp uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	defer m.checkInvariants()
	if p, ok := m.arena.lookup(key); ok {
		m.arena.entries[p].Value = value
		return
	}
	if m.arena.len() == m.membrane.capacity {
		m.cliffEdge()
	}
	m.arena.appendEntry(Entry[K, V]{Key: key, Value: value, Timestamp: timestamp})
	n := m.arena.len()
	// Inject adjacent to the membrane, not at the head. With the membrane
	// at rest the gate is the tail itself.
	gate := min(m.membrane.evictPoint, n-1)
	if n > 1 && gate != n-1 {
		m.arena.swapPositions(n-1, gate)
	}
	m.adjustMembrane()
}

// cliffEdge truncates the arena at the membrane. The cut point is clamped to
// len-1 so a full arena always frees at least one slot, even with the
// membrane at rest. Index is left dirty on purpose.
func (m *master[K, V]) cliffEdge() {
	point := min(m.membrane.evictPoint, m.arena.len()-1)
	removed := m.arena.truncate(point)
	m.evicted.Inc(int64(len(removed)))
	m.log.Debugf("cliff-edge eviction at %v removed %v entries", point, len(removed))
	if m.onEvict != nil {
		for _, e := range removed {
			m.onEvict(e)
		}
	}
}

// Update overwrites the value of a present key. Counter and position are
// preserved: updates are not hits.
func (m *master[K, V]) Update(key K, value V) (ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	defer m.checkInvariants()
	p, ok := m.arena.lookup(key)
	if !ok {
		return false
	}
	m.arena.entries[p].Value = value
	return true
}

// Delete removes a present key in O(1) by swapping it with the tail and
// popping.
func (m *master[K, V]) Delete(key K) (deleted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	defer m.checkInvariants()
	p, ok := m.arena.lookup(key)
	if !ok {
		return false
	}
	m.arena.removeAt(p)
	m.adjustMembrane()
	return true
}

// Decay halves every counter. Invoked by external scheduled triggers, never
// from the read path. The index is rebuilt while we are already paying an
// O(len) pass, reclaiming stale keys.
func (m *master[K, V]) Decay() {
	m.mu.Lock()
	defer m.mu.Unlock()
	defer m.checkInvariants()
	m.arena.decay()
	m.arena.rebuildIndex()
	m.adjustMembrane()
}

// Compact rebuilds the index from the arena, dropping stale keys
// accumulated by truncations.
func (m *master[K, V]) Compact() {
	m.mu.Lock()
	defer m.mu.Unlock()
	defer m.checkInvariants()
	m.arena.rebuildIndex()
}

// AdjustMembrane reconsiders the membrane unconditionally, as on a
// maintenance tick.
func (m *master[K, V]) AdjustMembrane() {
	m.mu.Lock()
	defer m.mu.Unlock()
	defer m.checkInvariants()
	m.adjustMembrane()
}

// Snapshot deep-copies the arena and index for mirror publication.
func (m *master[K, V]) Snapshot() *snapshot[K, V] {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries, index := m.arena.clone()
	return &snapshot[K, V]{entries: entries, index: index}
}

// state reports current lengths for Stats.
func (m *master[K, V]) state() (length, evictPoint int, counterSum uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.arena.len(), m.membrane.evictPoint, m.arena.counterSum
}

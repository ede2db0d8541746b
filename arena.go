package dualcache

// Invariants for arena methods, with the master mutex held:
//   - position 0 is hottest, position len-1 is coldest.
//   - every entry's key maps to its own position in index.
//   - counterSum equals the sum of all entry counters.
//   - index may additionally contain stale keys left behind by truncation;
//     lookup filters them out.
type arena[K comparable, V any] struct {
	entries    []Entry[K, V]
	index      map[K]int
	counterSum uint64
}

func newArena[K comparable, V any](capacity int) *arena[K, V] {
	return &arena[K, V]{
		entries: make([]Entry[K, V], 0, capacity),
		index:   make(map[K]int, capacity),
	}
}

func (a *arena[K, V]) len() int { return len(a.entries) }

// lookup resolves key to its current position. Index entries can be stale
// after truncation, so a raw map hit is confirmed against arena bounds and
// the key stored at the position.
func (a *arena[K, V]) lookup(key K) (p int, ok bool) {
	p, ok = a.index[key]
	if !ok || p >= len(a.entries) || a.entries[p].Key != key {
		return 0, false
	}
	return p, true
}

func (a *arena[K, V]) swapPositions(i, j int) {
	if i == j {
		return
	}
	a.entries[i], a.entries[j] = a.entries[j], a.entries[i]
	a.index[a.entries[i].Key] = i
	a.index[a.entries[j].Key] = j
}

// bump increases the counter of the entry at p and the running sum.
func (a *arena[K, V]) bump(p int, by uint64) {
	a.entries[p].Counter += by
	a.counterSum += by
}

// appendEntry places e at the tail and indexes it. The caller has made sure
// there is room.
func (a *arena[K, V]) appendEntry(e Entry[K, V]) {
	a.entries = append(a.entries, e)
	a.index[e.Key] = len(a.entries) - 1
}

// removeAt deletes the entry at p by swapping it with the tail and popping.
// The moved tail entry is reindexed; the removed key is dropped from index
// and its counter subtracted from the sum.
func (a *arena[K, V]) removeAt(p int) Entry[K, V] {
	last := len(a.entries) - 1
	removed := a.entries[p]
	delete(a.index, removed.Key)
	a.counterSum -= removed.Counter
	if p != last {
		a.entries[p] = a.entries[last]
		a.index[a.entries[p].Key] = p
	}
	a.entries[last] = Entry[K, V]{} // Do not retain evicted values.
	a.entries = a.entries[:last]
	return removed
}

// truncate drops every entry at position point and below the tail, returning
// the removed suffix. Index is intentionally NOT cleaned: cleanup is deferred
// to lazy validation and compaction. That keeps the cut O(removed) with no
// map traffic.
func (a *arena[K, V]) truncate(point int) []Entry[K, V] {
	if point >= len(a.entries) {
		return nil
	}
	cut := a.entries[point:]
	removed := make([]Entry[K, V], len(cut))
	copy(removed, cut)
	for i := range cut {
		a.counterSum -= cut[i].Counter
		cut[i] = Entry[K, V]{} // Do not retain evicted values.
	}
	a.entries = a.entries[:point]
	return removed
}

// decay halves every counter and recomputes the sum from scratch.
// Positions are preserved.
func (a *arena[K, V]) decay() {
	var sum uint64
	for i := range a.entries {
		a.entries[i].Counter >>= 1
		sum += a.entries[i].Counter
	}
	a.counterSum = sum
}

// rebuildIndex rewrites index from the arena, dropping stale keys
// accumulated by truncations.
func (a *arena[K, V]) rebuildIndex() {
	clear(a.index)
	for i := range a.entries {
		a.index[a.entries[i].Key] = i
	}
}

// clone deep-copies the arena contents for snapshot publication.
// The index is copied verbatim, stale keys included; readers run the same
// lazy validation as master lookups.
func (a *arena[K, V]) clone() (entries []Entry[K, V], index map[K]int) {
	entries = make([]Entry[K, V], len(a.entries))
	copy(entries, a.entries)
	index = make(map[K]int, len(a.index))
	for k, p := range a.index {
		index[k] = p
	}
	return entries, index
}

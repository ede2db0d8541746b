// Package dualcache provides an in-process key/value cache for
// read-dominated, power-law workloads.
//
// The cache is split in two:
//   - The master is the authoritative mutable copy: a dense arena of entries
//     ordered by rank plus a key-to-position index, guarded by a single mutex.
//   - The mirror is an immutable snapshot of the arena and index behind an
//     atomically swapped pointer. Reads resolve only through the mirror and
//     never take the master mutex.
//
// A read hit enqueues the key on a bounded signal channel. Sends never block:
// when the channel is full the signal is dropped, so ranking accuracy degrades
// under saturation instead of read latency. A single maintenance worker drains
// the channel, applies promotions to the master and republishes the mirror on
// a configured cadence.
//
// Ranking physics:
//   - A promoted entry swaps one position toward the head. Hot items amortize
//     upward one step per hit; cold items sink only by the climbs of others.
//   - New entries are placed adjacent to the eviction membrane, not at the
//     head. They must earn their way up. While the membrane rests past the
//     end of the arena, adjacent to it is the tail.
//   - When the arena is full, everything below the membrane is truncated in
//     one cut. The index is not cleaned; readers validate positions lazily.
//   - The membrane auto-tunes: a below-average boundary entry lets it advance,
//     an above-average one holds it in place.
package dualcache

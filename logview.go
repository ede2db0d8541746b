package dualcache

import "github.com/skipor/dualcache/log"

// LogView wraps a cache handle with per-operation debug logging. It is meant
// for development and incident debugging of embedders; keep it off hot
// production paths with a debug-level logger.
type LogView[K comparable, V any] struct {
	next Interface[K, V]
	log  log.Logger
}

func NewLogView[K comparable, V any](next Interface[K, V], l log.Logger) *LogView[K, V] {
	return &LogView[K, V]{next: next, log: l}
}

var _ Interface[string, any] = (*LogView[string, any])(nil)

func (v *LogView[K, V]) Get(key K) (V, bool) {
	value, ok := v.next.Get(key)
	v.log.Debugf("get %v hit=%v", key, ok)
	return value, ok
}

func (v *LogView[K, V]) Insert(key K, value V, timestamp uint64) {
	v.next.Insert(key, value, timestamp)
	v.log.Debugf("insert %v ts=%v", key, timestamp)
}

func (v *LogView[K, V]) Update(key K, value V) bool {
	ok := v.next.Update(key, value)
	v.log.Debugf("update %v present=%v", key, ok)
	return ok
}

func (v *LogView[K, V]) Delete(key K) bool {
	deleted := v.next.Delete(key)
	v.log.Debugf("delete %v deleted=%v", key, deleted)
	return deleted
}

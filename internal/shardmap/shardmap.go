// Package shardmap is a string-keyed concurrent map split into independently
// locked shards. Keys are routed to shards by their xxhash digest, so operations
// on keys that land in different shards never contend.
package shardmap

import (
	"runtime"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Map is a sharded map from string keys to values of type V.
// The zero value is not usable; create maps with New.
type Map[V any] struct {
	shards []*shard[V]
	mask   uint64
}

type shard[V any] struct {
	mu sync.RWMutex
	m  map[string]V
}

// DefaultShardCount returns the shard count used when New is given zero:
// four shards per available CPU, rounded up to a power of two.
func DefaultShardCount() int {
	return nextPow2(runtime.GOMAXPROCS(0) * 4)
}

// New creates a map with the given number of shards (rounded up to a power of
// two; zero or negative selects DefaultShardCount) and an initial total
// capacity spread evenly across the shards.
func New[V any](shards, capacity int) *Map[V] {
	if shards <= 0 {
		shards = DefaultShardCount()
	}
	shards = nextPow2(shards)
	if capacity < 0 {
		capacity = 0
	}
	per := (capacity + shards - 1) / shards

	m := &Map[V]{
		shards: make([]*shard[V], shards),
		mask:   uint64(shards - 1),
	}
	for i := range m.shards {
		m.shards[i] = &shard[V]{m: make(map[string]V, per)}
	}
	return m
}

// ShardCount reports how many shards back the map.
func (m *Map[V]) ShardCount() int {
	return len(m.shards)
}

func (m *Map[V]) shardFor(key string) *shard[V] {
	return m.shards[xxhash.Sum64String(key)&m.mask]
}

// Load returns the value stored under key.
func (m *Map[V]) Load(key string) (V, bool) {
	s := m.shardFor(key)
	s.mu.RLock()
	v, ok := s.m[key]
	s.mu.RUnlock()
	return v, ok
}

// LoadOrStore returns the existing value for key if present. Otherwise it
// stores value and returns it. The loaded result is true if the value was
// already present. The check and the insert happen under one shard lock.
func (m *Map[V]) LoadOrStore(key string, value V) (actual V, loaded bool) {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.m[key]; ok {
		return existing, true
	}
	s.m[key] = value
	return value, false
}

// LoadAndDelete removes key and returns the value it held, if any.
func (m *Map[V]) LoadAndDelete(key string) (V, bool) {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.m[key]
	if ok {
		delete(s.m, key)
	}
	return v, ok
}

// DeleteIf removes every entry for which pred returns true and returns the
// removed values. Each shard is locked only while it is being scanned, and
// pred runs under that lock, so it must not call back into the map.
func (m *Map[V]) DeleteIf(pred func(key string, value V) bool) []V {
	var removed []V
	for _, s := range m.shards {
		s.mu.Lock()
		for k, v := range s.m {
			if pred(k, v) {
				delete(s.m, k)
				removed = append(removed, v)
			}
		}
		s.mu.Unlock()
	}
	return removed
}

// Len returns the number of entries. Shards are counted one at a time, so the
// result is a snapshot that may be stale under concurrent writes.
func (m *Map[V]) Len() int {
	n := 0
	for _, s := range m.shards {
		s.mu.RLock()
		n += len(s.m)
		s.mu.RUnlock()
	}
	return n
}

// Keys returns a snapshot of all keys in no particular order.
func (m *Map[V]) Keys() []string {
	keys := make([]string, 0, m.Len())
	for _, s := range m.shards {
		s.mu.RLock()
		for k := range s.m {
			keys = append(keys, k)
		}
		s.mu.RUnlock()
	}
	return keys
}

// Range calls f for each entry until f returns false. The shard being visited
// is read-locked during the callbacks.
func (m *Map[V]) Range(f func(key string, value V) bool) {
	for _, s := range m.shards {
		s.mu.RLock()
		for k, v := range s.m {
			if !f(k, v) {
				s.mu.RUnlock()
				return
			}
		}
		s.mu.RUnlock()
	}
}

func nextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

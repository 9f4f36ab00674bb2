package encoding

import (
	"math/bits"

	"github.com/zeebo/xxh3"
)

const (
	minNodeCacheSize = 256
	maxNodeCacheSize = 16384
)

// nodeCacheSize picks a power-of-two cache size for a lookup table of n entries.
func nodeCacheSize(n uint32) int {
	size := max(int(n), minNodeCacheSize)
	size = min(size, maxNodeCacheSize)
	return 1 << bits.Len(uint(size-1))
}

type cacheSlot[V any] struct {
	kind  byte
	k1    string
	k2    string
	used  bool
	value V
}

// nodeCache is a fixed-size direct-mapped cache. A colliding put overwrites
// the previous occupant, so a get can miss for a key that was once cached.
type nodeCache[V any] struct {
	slots []cacheSlot[V]
	mask  uint64
}

func newNodeCache[V any](size int) *nodeCache[V] {
	return &nodeCache[V]{
		slots: make([]cacheSlot[V], size),
		mask:  uint64(size - 1),
	}
}

func (c *nodeCache[V]) slot(kind byte, k1, k2 string) *cacheSlot[V] {
	h := xxh3.HashString(k1) + uint64(kind)
	if k2 != "" {
		h ^= xxh3.HashString(k2) * 0x9E3779B97F4A7C15
	}
	return &c.slots[h&c.mask]
}

func (c *nodeCache[V]) get(kind byte, k1, k2 string) (V, bool) {
	s := c.slot(kind, k1, k2)
	if s.used && s.kind == kind && s.k1 == k1 && s.k2 == k2 {
		return s.value, true
	}
	var zero V
	return zero, false
}

func (c *nodeCache[V]) put(kind byte, k1, k2 string, value V) {
	s := c.slot(kind, k1, k2)
	s.kind, s.k1, s.k2 = kind, k1, k2
	s.value = value
	s.used = true
}

// Package lookup implements the lookup tables shared by the encoder,
// decoder and transcoder: a fixed-capacity LRU on the encoding side and
// flat arrays on the decoding side.
package lookup

// Entry is the result of adding a key to an EncoderLookup.
type Entry struct {
	// GetID is the stable 1-based ID used to reference the key.
	GetID uint32
	// SetID is the ID to put in the table entry row: 0 when the slot directly
	// follows the previously set one, GetID otherwise. Meaningless when New is false.
	SetID uint32
	// New reports whether the key was not in the table and a row must be emitted.
	New bool
	// Serial is the current serial of the slot.
	Serial uint32
}

// Per-slot layout in EncoderLookup.links.
const (
	linkPrev   = 0
	linkNext   = 1
	linkSerial = 2
	linkWidth  = 3
)

// EncoderLookup is a fixed-capacity LRU map from string keys to small
// integer IDs.
//
// The recency list is an intrusive doubly linked list stored in a flat
// slice of (prev, next, serial) triples indexed by slot. Slot 0 is the list
// sentinel: its next is the least recently used slot, its prev the most
// recently used one.
//
// Slots can be pinned for the duration of a statement. A pinned slot is
// never evicted, so every reference written since the last ReleasePins
// keeps resolving to the key it was written for.
type EncoderLookup struct {
	capacity  uint32
	used      uint32
	lastSetID uint32
	links     []uint32
	keys      []string
	index     map[string]uint32

	// pins[id] == epoch marks slot id as pinned.
	pins  []uint32
	epoch uint32
}

// NewEncoderLookup creates a table holding at most capacity keys.
func NewEncoderLookup(capacity uint32) *EncoderLookup {
	return &EncoderLookup{
		capacity: capacity,
		links:    make([]uint32, (int(capacity)+1)*linkWidth),
		keys:     make([]string, int(capacity)+1),
		index:    make(map[string]uint32, capacity),
		pins:     make([]uint32, int(capacity)+1),
		epoch:    1,
	}
}

// Capacity returns the maximum number of keys.
func (l *EncoderLookup) Capacity() uint32 {
	return l.capacity
}

// Len returns the number of occupied slots.
func (l *EncoderLookup) Len() uint32 {
	return l.used
}

// Key returns the key currently bound to id.
func (l *EncoderLookup) Key(id uint32) (string, bool) {
	if id == 0 || id > l.used {
		return "", false
	}
	return l.keys[id], true
}

// ID returns the slot holding key, without touching it.
func (l *EncoderLookup) ID(key string) (uint32, bool) {
	id, ok := l.index[key]
	return id, ok
}

// Serial returns the current serial of slot id.
func (l *EncoderLookup) Serial(id uint32) uint32 {
	return l.links[int(id)*linkWidth+linkSerial]
}

// LeastRecent returns the slot that would be evicted next, or 0 when the
// table is not full.
func (l *EncoderLookup) LeastRecent() uint32 {
	if l.used < l.capacity {
		return 0
	}
	return l.links[linkNext]
}

// AddOrTouch returns the entry for key, inserting it if needed. A present
// key becomes most recently used. When the table is full the least
// recently used slot is evicted and rebound to key.
func (l *EncoderLookup) AddOrTouch(key string) Entry {
	return l.AddOrReplace(key, 0)
}

// AddOrReplace behaves like AddOrTouch, except that when the table is full
// and victim is a valid unpinned slot, victim is evicted instead of the
// least recently used one. Pinned slots are skipped when looking for a slot
// to evict. If every slot is pinned nothing changes and the returned entry
// has a zero GetID.
func (l *EncoderLookup) AddOrReplace(key string, victim uint32) Entry {
	if id, ok := l.index[key]; ok {
		l.Touch(id)
		return Entry{GetID: id, New: false, Serial: l.Serial(id)}
	}

	var id uint32
	if l.used < l.capacity {
		l.used++
		id = l.used
		l.links[int(id)*linkWidth+linkSerial] = 1
		l.append(id)
	} else {
		if l.capacity == 0 {
			return Entry{}
		}
		if victim == 0 || victim > l.used || l.Pinned(victim) {
			victim = l.leastRecentUnpinned()
		}
		if victim == 0 {
			return Entry{}
		}
		id = victim
		delete(l.index, l.keys[id])
		l.links[int(id)*linkWidth+linkSerial]++
		l.unlink(id)
		l.append(id)
	}
	l.keys[id] = key
	l.index[key] = id

	setID := id
	if id == l.lastSetID+1 {
		setID = 0
	}
	l.lastSetID = id
	return Entry{GetID: id, SetID: setID, New: true, Serial: l.Serial(id)}
}

// Pin protects slot id from eviction until the next ReleasePins.
func (l *EncoderLookup) Pin(id uint32) {
	if id == 0 || id > l.used {
		return
	}
	l.pins[id] = l.epoch
}

// Pinned reports whether slot id is pinned.
func (l *EncoderLookup) Pinned(id uint32) bool {
	return id != 0 && id <= l.used && l.pins[id] == l.epoch
}

// ReleasePins unpins every slot.
func (l *EncoderLookup) ReleasePins() {
	l.epoch++
	if l.epoch == 0 {
		clear(l.pins)
		l.epoch = 1
	}
}

func (l *EncoderLookup) leastRecentUnpinned() uint32 {
	for id := l.links[linkNext]; id != 0; id = l.links[int(id)*linkWidth+linkNext] {
		if l.pins[id] != l.epoch {
			return id
		}
	}
	return 0
}

// Touch marks slot id as most recently used.
func (l *EncoderLookup) Touch(id uint32) {
	if id == 0 || id > l.used {
		return
	}
	if l.links[linkPrev] == id {
		return
	}
	l.unlink(id)
	l.append(id)
}

func (l *EncoderLookup) unlink(id uint32) {
	base := int(id) * linkWidth
	prev, next := l.links[base+linkPrev], l.links[base+linkNext]
	l.links[int(prev)*linkWidth+linkNext] = next
	l.links[int(next)*linkWidth+linkPrev] = prev
}

// append links id at the most recently used end.
func (l *EncoderLookup) append(id uint32) {
	base := int(id) * linkWidth
	tail := l.links[linkPrev]
	l.links[base+linkPrev] = tail
	l.links[base+linkNext] = 0
	l.links[int(tail)*linkWidth+linkNext] = id
	l.links[linkPrev] = id
}

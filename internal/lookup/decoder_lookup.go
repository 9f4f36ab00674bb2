package lookup

import (
	"github.com/aleksaelezovic/jelly/pkg/jelly"
)

// DecoderLookup is the decoding side of a lookup table: a flat array of
// values addressed by 1-based ID.
type DecoderLookup[T any] struct {
	values    []T
	serials   []uint32
	lastSetID uint32
}

// NewDecoderLookup creates a table with capacity slots.
func NewDecoderLookup[T any](capacity uint32) *DecoderLookup[T] {
	return &DecoderLookup[T]{
		values:  make([]T, capacity),
		serials: make([]uint32, capacity),
	}
}

// Capacity returns the number of slots.
func (d *DecoderLookup[T]) Capacity() uint32 {
	return uint32(len(d.values))
}

// Resolve turns an entry-row ID into the slot it assigns without storing
// anything. ID 0 means the slot after the previously assigned one.
func (d *DecoderLookup[T]) Resolve(id uint32) (uint32, error) {
	if id == 0 {
		id = d.lastSetID + 1
	}
	if id > uint32(len(d.values)) {
		return 0, jelly.Deserializationf("lookup entry id %d out of range (table size %d)", id, len(d.values))
	}
	return id, nil
}

// Update stores value at the slot named by id and returns that slot.
func (d *DecoderLookup[T]) Update(id uint32, value T) (uint32, error) {
	slot, err := d.Resolve(id)
	if err != nil {
		return 0, err
	}
	d.values[slot-1] = value
	d.serials[slot-1]++
	d.lastSetID = slot
	return slot, nil
}

// Get returns the value at id. Referencing a slot that was never set is an error.
func (d *DecoderLookup[T]) Get(id uint32) (T, error) {
	var zero T
	if id == 0 || id > uint32(len(d.values)) {
		return zero, jelly.Deserializationf("lookup reference %d out of range (table size %d)", id, len(d.values))
	}
	if d.serials[id-1] == 0 {
		return zero, jelly.Deserializationf("lookup reference %d points to an empty slot", id)
	}
	return d.values[id-1], nil
}

// Serial returns how many times slot id was assigned; 0 means never.
func (d *DecoderLookup[T]) Serial(id uint32) uint32 {
	if id == 0 || id > uint32(len(d.values)) {
		return 0
	}
	return d.serials[id-1]
}

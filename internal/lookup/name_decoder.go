package lookup

import (
	"github.com/aleksaelezovic/jelly/pkg/jelly"
)

type nameSlot[N any] struct {
	name string
	set  bool

	// last IRI built from this name and the prefix that produced it
	cached       N
	cacheValid   bool
	cachePrefix  uint32
	cacheVersion uint32
}

// NameDecoder rebuilds IRIs from (prefix ID, name ID) pairs.
//
// Entry rows move the assignment cursors (lastNameSet, via the prefix
// DecoderLookup); IRI references move the separate reference cursors
// (lastNameRef, lastPrefixRef).
type NameDecoder[N any] struct {
	names       []nameSlot[N]
	prefixes    *DecoderLookup[string]
	lastNameSet uint32

	lastNameRef   uint32
	lastPrefixRef uint32

	makeIri func(iri string) N
}

// NewNameDecoder creates a decoder with the given table sizes. makeIri turns
// a full IRI string into a native node.
func NewNameDecoder[N any](nameCapacity, prefixCapacity uint32, makeIri func(string) N) *NameDecoder[N] {
	return &NameDecoder[N]{
		names:    make([]nameSlot[N], nameCapacity),
		prefixes: NewDecoderLookup[string](prefixCapacity),
		makeIri:  makeIri,
	}
}

// UpdateName applies a name entry row.
func (d *NameDecoder[N]) UpdateName(e *jelly.NameEntry) error {
	id := e.ID
	if id == 0 {
		id = d.lastNameSet + 1
	}
	if id > uint32(len(d.names)) {
		return jelly.Deserializationf("name entry id %d out of range (table size %d)", id, len(d.names))
	}
	slot := &d.names[id-1]
	slot.name = e.Value
	slot.set = true
	slot.cacheValid = false
	d.lastNameSet = id
	return nil
}

// UpdatePrefix applies a prefix entry row.
func (d *NameDecoder[N]) UpdatePrefix(e *jelly.PrefixEntry) error {
	if d.prefixes.Capacity() == 0 {
		return jelly.Deserializationf("prefix entry received but the prefix table is disabled")
	}
	_, err := d.prefixes.Update(e.ID, e.Value)
	return err
}

// Decode resolves an IRI reference into a native node.
func (d *NameDecoder[N]) Decode(iri jelly.Iri) (N, error) {
	var zero N

	nameID := iri.NameID
	if nameID == 0 {
		nameID = d.lastNameRef + 1
	}
	if nameID > uint32(len(d.names)) {
		return zero, jelly.Deserializationf("name reference %d out of range (table size %d)", nameID, len(d.names))
	}
	slot := &d.names[nameID-1]
	if !slot.set {
		return zero, jelly.Deserializationf("name reference %d points to an empty slot", nameID)
	}

	prefixID := iri.PrefixID
	if prefixID == 0 {
		prefixID = d.lastPrefixRef
	}
	if prefixID == 0 && d.prefixes.Capacity() > 0 {
		return zero, jelly.Deserializationf("invalid IRI reference, no prefix")
	}

	var version uint32
	var prefix string
	if prefixID != 0 {
		var err error
		if prefix, err = d.prefixes.Get(prefixID); err != nil {
			return zero, err
		}
		version = d.prefixes.Serial(prefixID)
	}

	d.lastNameRef = nameID
	d.lastPrefixRef = prefixID

	if slot.cacheValid && slot.cachePrefix == prefixID && slot.cacheVersion == version {
		return slot.cached, nil
	}
	node := d.makeIri(prefix + slot.name)
	slot.cached = node
	slot.cacheValid = true
	slot.cachePrefix = prefixID
	slot.cacheVersion = version
	return node, nil
}

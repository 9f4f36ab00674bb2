package transcoding

import (
	"github.com/aleksaelezovic/jelly/internal/lookup"
	"github.com/aleksaelezovic/jelly/pkg/jelly"
)

// remapTable maps one lookup kind from the input ID space into an output
// EncoderLookup.
//
// refs counts the live input IDs pointing at each output slot. When an
// input slot is reassigned and nothing else points at its old output slot,
// that slot is the eviction victim, so the output table forgets exactly what
// the input table forgot. Output slots left with no references whose
// release did not lead to an eviction are kept in free and used for the
// next insert into a full table. A slot with live references is never
// evicted.
type remapTable struct {
	kind      string
	out       *lookup.EncoderLookup
	remap     []uint32
	refs      []uint32
	free      []uint32
	inFree    []bool
	lastInSet uint32
}

func newRemapTable(kind string, outCapacity uint32) *remapTable {
	return &remapTable{
		kind:   kind,
		out:    lookup.NewEncoderLookup(outCapacity),
		refs:   make([]uint32, int(outCapacity)+1),
		inFree: make([]bool, int(outCapacity)+1),
	}
}

// reset starts a new input ID space of inCapacity slots. The output table
// keeps its contents.
func (r *remapTable) reset(inCapacity uint32) {
	if uint32(cap(r.remap)) >= inCapacity {
		r.remap = r.remap[:inCapacity]
		clear(r.remap)
	} else {
		r.remap = make([]uint32, inCapacity)
	}
	clear(r.refs)
	r.free = r.free[:0]
	clear(r.inFree)
	for id := r.out.Len(); id >= 1; id-- {
		r.release(id)
	}
	r.lastInSet = 0
}

// update applies an input entry row and returns the output entry.
func (r *remapTable) update(id uint32, value string) (lookup.Entry, error) {
	if id == 0 {
		id = r.lastInSet + 1
	}
	if id > uint32(len(r.remap)) {
		return lookup.Entry{}, jelly.Deserializationf("%s entry id %d out of range (table size %d)", r.kind, id, len(r.remap))
	}
	var victim uint32
	if old := r.remap[id-1]; old != 0 {
		r.refs[old]--
		if r.refs[old] == 0 {
			victim = old
		}
	}
	if victim == 0 && r.out.Len() == r.out.Capacity() {
		if _, ok := r.out.ID(value); !ok {
			if victim = r.takeFree(); victim == 0 {
				return lookup.Entry{}, jelly.Transcodingf("%s table: no unreferenced output slot for %q", r.kind, value)
			}
		}
	}
	e := r.out.AddOrReplace(value, victim)
	if victim != 0 && e.GetID != victim {
		r.release(victim)
	}
	r.remap[id-1] = e.GetID
	r.refs[e.GetID]++
	r.lastInSet = id
	return e, nil
}

// release records an unreferenced output slot.
func (r *remapTable) release(id uint32) {
	if r.inFree[id] {
		return
	}
	r.inFree[id] = true
	r.free = append(r.free, id)
}

// takeFree pops an output slot that is still unreferenced, or returns 0.
func (r *remapTable) takeFree() uint32 {
	for len(r.free) > 0 {
		id := r.free[len(r.free)-1]
		r.free = r.free[:len(r.free)-1]
		r.inFree[id] = false
		if r.refs[id] == 0 {
			return id
		}
	}
	return 0
}

// get returns the output ID for an input ID.
func (r *remapTable) get(id uint32) (uint32, error) {
	if id == 0 || id > uint32(len(r.remap)) {
		return 0, jelly.Deserializationf("%s reference %d out of range (table size %d)", r.kind, id, len(r.remap))
	}
	out := r.remap[id-1]
	if out == 0 {
		return 0, jelly.Deserializationf("%s reference %d points to an empty slot", r.kind, id)
	}
	return out, nil
}

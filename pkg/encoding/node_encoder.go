// Package encoding turns native RDF statements into Jelly rows.
//
// NodeEncoder turns individual terms into wire terms, maintaining the
// name, prefix and datatype lookup tables and emitting their entry rows.
// ProtoEncoder drives a NodeEncoder for whole statements, omitting roles
// that repeat the previous statement.
package encoding

import (
	"strings"

	"github.com/aleksaelezovic/jelly/internal/lookup"
	"github.com/aleksaelezovic/jelly/pkg/jelly"
)

// iriSplitMinOffset is where the search for a '#' separator starts, which
// keeps the "scheme://" part of an IRI out of the way.
const iriSplitMinOffset = 8

const (
	cacheBlankNode byte = iota + 1
	cacheSimpleLiteral
	cacheLangLiteral
)

// SplitIri splits iri into a prefix and a local name. The split is after
// the last '#' at or after offset 8, otherwise after the last '/'; with
// neither the prefix is empty.
func SplitIri(iri string) (prefix, name string) {
	if i := strings.LastIndexByte(iri, '#'); i >= iriSplitMinOffset {
		return iri[:i+1], iri[i+1:]
	}
	if i := strings.LastIndexByte(iri, '/'); i >= 0 {
		return iri[:i+1], iri[i+1:]
	}
	return "", iri
}

// iriEntry remembers which lookup slots an IRI resolved to. It is valid only
// while both slots still carry the recorded serials.
type iriEntry struct {
	nameID       uint32
	nameSerial   uint32
	prefixID     uint32
	prefixSerial uint32
}

type dtEntry struct {
	dtID     uint32
	dtSerial uint32
}

var defaultGraph jelly.Term = jelly.DefaultGraph{}

// NodeEncoder encodes terms for a single stream. Lookup entry rows are
// appended to the sink as soon as a term needs them, so they always precede
// the statement row that references them.
type NodeEncoder struct {
	sink jelly.RowSink

	names     *lookup.EncoderLookup
	prefixes  *lookup.EncoderLookup // nil when the prefix table is disabled
	datatypes *lookup.EncoderLookup // nil when the datatype table is disabled

	iriCache   *nodeCache[iriEntry]
	dtCache    *nodeCache[dtEntry]
	plainCache *nodeCache[jelly.Term]

	lastIriPrefix uint32
	lastIriName   uint32
}

// NewNodeEncoder creates an encoder sized from opts that writes entry rows to sink.
func NewNodeEncoder(opts *jelly.StreamOptions, sink jelly.RowSink) *NodeEncoder {
	cacheSize := nodeCacheSize(opts.MaxNameTableSize)
	e := &NodeEncoder{
		sink:       sink,
		names:      lookup.NewEncoderLookup(opts.MaxNameTableSize),
		iriCache:   newNodeCache[iriEntry](cacheSize),
		dtCache:    newNodeCache[dtEntry](cacheSize),
		plainCache: newNodeCache[jelly.Term](cacheSize),
	}
	if opts.MaxPrefixTableSize > 0 {
		e.prefixes = lookup.NewEncoderLookup(opts.MaxPrefixTableSize)
	}
	if opts.MaxDatatypeTableSize > 0 {
		e.datatypes = lookup.NewEncoderLookup(opts.MaxDatatypeTableSize)
	}
	return e
}

// MakeIri encodes an IRI, emitting prefix and name entry rows for parts
// not yet in the tables. Every slot it uses stays pinned until the next
// statement begins.
func (e *NodeEncoder) MakeIri(iri string) (jelly.Term, error) {
	if c, ok := e.iriCache.get(0, iri, ""); ok && e.iriValid(c) {
		e.names.Touch(c.nameID)
		e.names.Pin(c.nameID)
		if e.prefixes != nil {
			e.prefixes.Touch(c.prefixID)
			e.prefixes.Pin(c.prefixID)
		}
		return e.outputIri(c.prefixID, c.nameID), nil
	}

	var entry iriEntry
	if e.prefixes == nil {
		ne, err := e.addName(iri, iri)
		if err != nil {
			return nil, err
		}
		entry = iriEntry{nameID: ne.GetID, nameSerial: ne.Serial}
	} else {
		prefix, name := SplitIri(iri)
		pe := e.prefixes.AddOrTouch(prefix)
		if pe.GetID == 0 {
			// every prefix slot is in use by this statement
			var ok bool
			if pe, ok = e.pinnedPrefixOf(iri); !ok {
				return nil, jelly.Serializationf("cannot encode <%s>: all %d prefix table slots are referenced by the current statement",
					iri, e.prefixes.Capacity())
			}
			prefix, _ = e.prefixes.Key(pe.GetID)
			name = iri[len(prefix):]
		}
		if pe.New {
			e.sink.Append(&jelly.PrefixEntry{ID: pe.SetID, Value: prefix})
		}
		e.prefixes.Pin(pe.GetID)
		ne, err := e.addName(iri, name)
		if err != nil {
			return nil, err
		}
		entry = iriEntry{
			nameID: ne.GetID, nameSerial: ne.Serial,
			prefixID: pe.GetID, prefixSerial: pe.Serial,
		}
	}
	e.iriCache.put(0, iri, "", entry)
	return e.outputIri(entry.prefixID, entry.nameID), nil
}

func (e *NodeEncoder) addName(iri, name string) (lookup.Entry, error) {
	ne := e.names.AddOrTouch(name)
	if ne.GetID == 0 {
		return ne, jelly.Serializationf("cannot encode <%s>: all %d name table slots are referenced by the current statement",
			iri, e.names.Capacity())
	}
	if ne.New {
		e.sink.Append(&jelly.NameEntry{ID: ne.SetID, Value: name})
	}
	e.names.Pin(ne.GetID)
	return ne, nil
}

// pinnedPrefixOf finds the longest pinned prefix that iri starts with.
func (e *NodeEncoder) pinnedPrefixOf(iri string) (lookup.Entry, bool) {
	var best lookup.Entry
	bestLen := -1
	for id := uint32(1); id <= e.prefixes.Len(); id++ {
		if !e.prefixes.Pinned(id) {
			continue
		}
		p, _ := e.prefixes.Key(id)
		if len(p) > bestLen && strings.HasPrefix(iri, p) {
			best = lookup.Entry{GetID: id, Serial: e.prefixes.Serial(id)}
			bestLen = len(p)
		}
	}
	return best, bestLen >= 0
}

func (e *NodeEncoder) iriValid(c iriEntry) bool {
	if e.names.Serial(c.nameID) != c.nameSerial {
		return false
	}
	return e.prefixes == nil || e.prefixes.Serial(c.prefixID) == c.prefixSerial
}

// outputIri applies the "same prefix" and "next name" compression relative
// to the previous IRI written by this encoder.
func (e *NodeEncoder) outputIri(prefixID, nameID uint32) jelly.Term {
	out := jelly.Iri{PrefixID: prefixID, NameID: nameID}
	if prefixID == e.lastIriPrefix {
		out.PrefixID = 0
	}
	if nameID == e.lastIriName+1 {
		out.NameID = 0
	}
	e.lastIriPrefix = prefixID
	e.lastIriName = nameID
	return out
}

// MakeBlankNode encodes a blank node.
func (e *NodeEncoder) MakeBlankNode(label string) jelly.Term {
	if t, ok := e.plainCache.get(cacheBlankNode, label, ""); ok {
		return t
	}
	t := jelly.Term(jelly.BlankNode{Label: label})
	e.plainCache.put(cacheBlankNode, label, "", t)
	return t
}

// MakeSimpleLiteral encodes a literal with neither language nor datatype.
func (e *NodeEncoder) MakeSimpleLiteral(lex string) jelly.Term {
	if t, ok := e.plainCache.get(cacheSimpleLiteral, lex, ""); ok {
		return t
	}
	t := jelly.Term(jelly.Literal{Lex: lex})
	e.plainCache.put(cacheSimpleLiteral, lex, "", t)
	return t
}

// MakeLangLiteral encodes a language-tagged literal.
func (e *NodeEncoder) MakeLangLiteral(lex, lang string) jelly.Term {
	if t, ok := e.plainCache.get(cacheLangLiteral, lex, lang); ok {
		return t
	}
	t := jelly.Term(jelly.Literal{Lex: lex, LangTag: lang})
	e.plainCache.put(cacheLangLiteral, lex, lang, t)
	return t
}

// MakeDtLiteral encodes a datatyped literal. It fails when the stream has
// no datatype table.
func (e *NodeEncoder) MakeDtLiteral(lex, datatype string) (jelly.Term, error) {
	if e.datatypes == nil {
		return nil, jelly.Serializationf("datatype literal %q^^<%s> cannot be encoded: the datatype table is disabled", lex, datatype)
	}
	if c, ok := e.dtCache.get(0, lex, datatype); ok && e.datatypes.Serial(c.dtID) == c.dtSerial {
		e.datatypes.Touch(c.dtID)
		e.datatypes.Pin(c.dtID)
		return jelly.Literal{Lex: lex, Datatype: c.dtID}, nil
	}
	de := e.datatypes.AddOrTouch(datatype)
	if de.GetID == 0 {
		return nil, jelly.Serializationf("cannot encode datatype <%s>: all %d datatype table slots are referenced by the current statement",
			datatype, e.datatypes.Capacity())
	}
	e.datatypes.Pin(de.GetID)
	if de.New {
		e.sink.Append(&jelly.DatatypeEntry{ID: de.SetID, Value: datatype})
	}
	e.dtCache.put(0, lex, datatype, dtEntry{dtID: de.GetID, dtSerial: de.Serial})
	return jelly.Literal{Lex: lex, Datatype: de.GetID}, nil
}

// MakeQuotedTriple wraps already encoded terms into a quoted triple.
func (e *NodeEncoder) MakeQuotedTriple(s, p, o jelly.Term) jelly.Term {
	return jelly.TripleTerm{S: s, P: p, O: o}
}

// MakeDefaultGraph returns the default graph marker.
func (e *NodeEncoder) MakeDefaultGraph() jelly.Term {
	return defaultGraph
}

// iriState is the part of the encoder that statement rollback restores.
type iriState struct {
	prefix, name uint32
}

// beginStatement releases the slots pinned by the previous statement.
func (e *NodeEncoder) beginStatement() {
	e.names.ReleasePins()
	if e.prefixes != nil {
		e.prefixes.ReleasePins()
	}
	if e.datatypes != nil {
		e.datatypes.ReleasePins()
	}
}

func (e *NodeEncoder) checkpoint() iriState {
	return iriState{prefix: e.lastIriPrefix, name: e.lastIriName}
}

func (e *NodeEncoder) restore(s iriState) {
	e.lastIriPrefix, e.lastIriName = s.prefix, s.name
}

var _ jelly.NodeEncoder = (*NodeEncoder)(nil)

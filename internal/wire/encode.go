// Package wire implements the protobuf encoding of Jelly frames and rows.
//
// Messages are written and read field by field with protowire, using the
// field numbers of the Jelly rdf.proto schema, so the bytes are compatible
// with any other Jelly implementation.
package wire

import (
	"maps"
	"slices"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/aleksaelezovic/jelly/pkg/jelly"
)

// RdfStreamFrame fields.
const (
	frameRows     protowire.Number = 1
	frameMetadata protowire.Number = 15

	mapKey   protowire.Number = 1
	mapValue protowire.Number = 2
)

// RdfStreamRow oneof fields.
const (
	rowOptions    protowire.Number = 1
	rowTriple     protowire.Number = 2
	rowQuad       protowire.Number = 3
	rowGraphStart protowire.Number = 4
	rowGraphEnd   protowire.Number = 5
	rowNamespace  protowire.Number = 6
	rowName       protowire.Number = 9
	rowPrefix     protowire.Number = 10
	rowDatatype   protowire.Number = 11
)

// RdfStreamOptions fields.
const (
	optStreamName     protowire.Number = 1
	optPhysicalType   protowire.Number = 2
	optGeneralized    protowire.Number = 3
	optRdfStar        protowire.Number = 4
	optMaxNameTable   protowire.Number = 9
	optMaxPrefixTable protowire.Number = 10
	optMaxDtTable     protowire.Number = 11
	optLogicalType    protowire.Number = 14
	optVersion        protowire.Number = 15
)

// Term oneof offsets. A statement position starting at field n uses n for
// IRIs, n+1 for blank nodes, n+2 for literals and n+3 for quoted triples
// (or the default graph, in the graph position).
const (
	termIri     = 0
	termBnode   = 1
	termLiteral = 2
	termQuoted  = 3

	posSubject    protowire.Number = 1
	posPredicate  protowire.Number = 5
	posObject     protowire.Number = 9
	posQuadGraph  protowire.Number = 13
	posGraphStart protowire.Number = 1
)

// Graph oneof offsets differ from the term layout.
const (
	graphIri     = 0
	graphBnode   = 1
	graphDefault = 2
	graphLiteral = 3
)

const (
	iriPrefix protowire.Number = 1
	iriName   protowire.Number = 2

	litLex      protowire.Number = 1
	litLangTag  protowire.Number = 2
	litDatatype protowire.Number = 3

	entryID    protowire.Number = 1
	entryValue protowire.Number = 2

	nsName  protowire.Number = 1
	nsValue protowire.Number = 2
)

// MarshalFrame encodes frame as an RdfStreamFrame message.
func MarshalFrame(frame jelly.Frame) ([]byte, error) {
	return AppendFrame(nil, frame)
}

// AppendFrame appends the encoding of frame to b.
func AppendFrame(b []byte, frame jelly.Frame) ([]byte, error) {
	var err error
	for _, row := range frame.Rows {
		b = protowire.AppendTag(b, frameRows, protowire.BytesType)
		if b, err = appendSized(b, func(b []byte) ([]byte, error) { return AppendRow(b, row) }); err != nil {
			return nil, err
		}
	}
	for _, k := range sortedKeys(frame.Metadata) {
		b = protowire.AppendTag(b, frameMetadata, protowire.BytesType)
		var entry []byte
		entry = protowire.AppendTag(entry, mapKey, protowire.BytesType)
		entry = protowire.AppendString(entry, k)
		entry = protowire.AppendTag(entry, mapValue, protowire.BytesType)
		entry = protowire.AppendBytes(entry, frame.Metadata[k])
		b = protowire.AppendBytes(b, entry)
	}
	return b, nil
}

// AppendRow appends the encoding of row as an RdfStreamRow message to b.
func AppendRow(b []byte, row jelly.Row) ([]byte, error) {
	switch r := row.(type) {
	case *jelly.StreamOptions:
		b = protowire.AppendTag(b, rowOptions, protowire.BytesType)
		return protowire.AppendBytes(b, appendOptions(nil, r)), nil
	case *jelly.NameEntry:
		return appendEntry(b, rowName, r.ID, r.Value), nil
	case *jelly.PrefixEntry:
		return appendEntry(b, rowPrefix, r.ID, r.Value), nil
	case *jelly.DatatypeEntry:
		return appendEntry(b, rowDatatype, r.ID, r.Value), nil
	case *jelly.Triple:
		b = protowire.AppendTag(b, rowTriple, protowire.BytesType)
		return appendSized(b, func(b []byte) ([]byte, error) { return appendSPO(b, r.S, r.P, r.O) })
	case *jelly.Quad:
		b = protowire.AppendTag(b, rowQuad, protowire.BytesType)
		return appendSized(b, func(b []byte) ([]byte, error) {
			b, err := appendSPO(b, r.S, r.P, r.O)
			if err != nil {
				return nil, err
			}
			return appendGraph(b, posQuadGraph, r.G)
		})
	case *jelly.GraphStart:
		if r.G == nil {
			return nil, jelly.Serializationf("graph start without a graph")
		}
		b = protowire.AppendTag(b, rowGraphStart, protowire.BytesType)
		return appendSized(b, func(b []byte) ([]byte, error) { return appendGraph(b, posGraphStart, r.G) })
	case *jelly.GraphEnd:
		b = protowire.AppendTag(b, rowGraphEnd, protowire.BytesType)
		return protowire.AppendBytes(b, nil), nil
	case *jelly.NamespaceDeclaration:
		var msg []byte
		if r.Name != "" {
			msg = protowire.AppendTag(msg, nsName, protowire.BytesType)
			msg = protowire.AppendString(msg, r.Name)
		}
		msg = protowire.AppendTag(msg, nsValue, protowire.BytesType)
		msg = protowire.AppendBytes(msg, appendIri(nil, r.Value))
		b = protowire.AppendTag(b, rowNamespace, protowire.BytesType)
		return protowire.AppendBytes(b, msg), nil
	default:
		return nil, jelly.Serializationf("cannot marshal %s row", jelly.RowKind(row))
	}
}

// appendSized writes the message produced by fn with a length prefix.
func appendSized(b []byte, fn func([]byte) ([]byte, error)) ([]byte, error) {
	msg, err := fn(nil)
	if err != nil {
		return nil, err
	}
	return protowire.AppendBytes(b, msg), nil
}

func appendOptions(b []byte, o *jelly.StreamOptions) []byte {
	if o.StreamName != "" {
		b = protowire.AppendTag(b, optStreamName, protowire.BytesType)
		b = protowire.AppendString(b, o.StreamName)
	}
	b = appendVarintField(b, optPhysicalType, uint64(o.PhysicalType))
	b = appendVarintField(b, optGeneralized, protowire.EncodeBool(o.GeneralizedStatements))
	b = appendVarintField(b, optRdfStar, protowire.EncodeBool(o.RdfStar))
	b = appendVarintField(b, optMaxNameTable, uint64(o.MaxNameTableSize))
	b = appendVarintField(b, optMaxPrefixTable, uint64(o.MaxPrefixTableSize))
	b = appendVarintField(b, optMaxDtTable, uint64(o.MaxDatatypeTableSize))
	b = appendVarintField(b, optLogicalType, uint64(o.LogicalType))
	b = appendVarintField(b, optVersion, uint64(o.Version))
	return b
}

// appendVarintField writes a proto3 scalar, skipping the zero value.
func appendVarintField(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendEntry(b []byte, num protowire.Number, id uint32, value string) []byte {
	var msg []byte
	msg = appendVarintField(msg, entryID, uint64(id))
	if value != "" {
		msg = protowire.AppendTag(msg, entryValue, protowire.BytesType)
		msg = protowire.AppendString(msg, value)
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}

func appendIri(b []byte, iri jelly.Iri) []byte {
	b = appendVarintField(b, iriPrefix, uint64(iri.PrefixID))
	return appendVarintField(b, iriName, uint64(iri.NameID))
}

func appendLiteral(b []byte, l jelly.Literal) []byte {
	if l.Lex != "" {
		b = protowire.AppendTag(b, litLex, protowire.BytesType)
		b = protowire.AppendString(b, l.Lex)
	}
	switch l.Kind() {
	case jelly.LiteralLang:
		b = protowire.AppendTag(b, litLangTag, protowire.BytesType)
		b = protowire.AppendString(b, l.LangTag)
	case jelly.LiteralDatatype:
		b = protowire.AppendTag(b, litDatatype, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(l.Datatype))
	}
	return b
}

func appendSPO(b []byte, s, p, o jelly.Term) ([]byte, error) {
	var err error
	if b, err = appendTerm(b, posSubject, s); err != nil {
		return nil, err
	}
	if b, err = appendTerm(b, posPredicate, p); err != nil {
		return nil, err
	}
	return appendTerm(b, posObject, o)
}

// appendTerm writes t in the statement position starting at field base.
// A nil term is left out.
func appendTerm(b []byte, base protowire.Number, t jelly.Term) ([]byte, error) {
	switch v := t.(type) {
	case nil:
		return b, nil
	case jelly.Iri:
		b = protowire.AppendTag(b, base+termIri, protowire.BytesType)
		return protowire.AppendBytes(b, appendIri(nil, v)), nil
	case jelly.BlankNode:
		b = protowire.AppendTag(b, base+termBnode, protowire.BytesType)
		return protowire.AppendString(b, v.Label), nil
	case jelly.Literal:
		b = protowire.AppendTag(b, base+termLiteral, protowire.BytesType)
		return protowire.AppendBytes(b, appendLiteral(nil, v)), nil
	case jelly.TripleTerm:
		if v.S == nil || v.P == nil || v.O == nil {
			return nil, jelly.Serializationf("quoted triple with a missing term")
		}
		b = protowire.AppendTag(b, base+termQuoted, protowire.BytesType)
		return appendSized(b, func(b []byte) ([]byte, error) { return appendSPO(b, v.S, v.P, v.O) })
	default:
		return nil, jelly.Serializationf("cannot marshal %s term in a statement position", jelly.TermKind(t))
	}
}

// appendGraph writes t in the graph position starting at field base.
func appendGraph(b []byte, base protowire.Number, t jelly.Term) ([]byte, error) {
	switch v := t.(type) {
	case nil:
		return b, nil
	case jelly.Iri:
		b = protowire.AppendTag(b, base+graphIri, protowire.BytesType)
		return protowire.AppendBytes(b, appendIri(nil, v)), nil
	case jelly.BlankNode:
		b = protowire.AppendTag(b, base+graphBnode, protowire.BytesType)
		return protowire.AppendString(b, v.Label), nil
	case jelly.DefaultGraph:
		b = protowire.AppendTag(b, base+graphDefault, protowire.BytesType)
		return protowire.AppendBytes(b, nil), nil
	case jelly.Literal:
		b = protowire.AppendTag(b, base+graphLiteral, protowire.BytesType)
		return protowire.AppendBytes(b, appendLiteral(nil, v)), nil
	default:
		return nil, jelly.Serializationf("cannot marshal %s term in the graph position", jelly.TermKind(t))
	}
}

func sortedKeys(m map[string][]byte) []string {
	return slices.Sorted(maps.Keys(m))
}

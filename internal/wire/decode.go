package wire

import (
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/aleksaelezovic/jelly/pkg/jelly"
)

// UnmarshalFrame decodes an RdfStreamFrame message. Unknown fields are
// skipped.
func UnmarshalFrame(b []byte) (jelly.Frame, error) {
	var frame jelly.Frame
	err := eachField(b, func(num protowire.Number, typ protowire.Type, v []byte, _ uint64) error {
		switch {
		case num == frameRows && typ == protowire.BytesType:
			row, err := UnmarshalRow(v)
			if err != nil {
				return err
			}
			frame.Rows = append(frame.Rows, row)
		case num == frameMetadata && typ == protowire.BytesType:
			k, val, err := unmarshalMapEntry(v)
			if err != nil {
				return err
			}
			if frame.Metadata == nil {
				frame.Metadata = make(map[string][]byte)
			}
			frame.Metadata[k] = val
		}
		return nil
	})
	return frame, err
}

// UnmarshalRow decodes an RdfStreamRow message. A row with none of the
// known kinds set is an error.
func UnmarshalRow(b []byte) (jelly.Row, error) {
	var row jelly.Row
	err := eachField(b, func(num protowire.Number, typ protowire.Type, v []byte, _ uint64) error {
		if typ != protowire.BytesType {
			return nil
		}
		var err error
		switch num {
		case rowOptions:
			row, err = unmarshalOptions(v)
		case rowTriple:
			row, err = unmarshalTriple(v)
		case rowQuad:
			row, err = unmarshalQuad(v)
		case rowGraphStart:
			row, err = unmarshalGraphStart(v)
		case rowGraphEnd:
			row = &jelly.GraphEnd{}
		case rowNamespace:
			row, err = unmarshalNamespace(v)
		case rowName:
			id, value, e := unmarshalEntry(v)
			row, err = &jelly.NameEntry{ID: id, Value: value}, e
		case rowPrefix:
			id, value, e := unmarshalEntry(v)
			row, err = &jelly.PrefixEntry{ID: id, Value: value}, e
		case rowDatatype:
			id, value, e := unmarshalEntry(v)
			row, err = &jelly.DatatypeEntry{ID: id, Value: value}, e
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, jelly.Deserializationf("row has no recognized kind")
	}
	return row, nil
}

// eachField walks the fields of a message. For length-delimited fields v
// holds the payload, for varint fields n holds the value.
func eachField(b []byte, fn func(num protowire.Number, typ protowire.Type, v []byte, n uint64) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return malformed(n)
		}
		b = b[n:]
		switch typ {
		case protowire.BytesType:
			v, m := protowire.ConsumeBytes(b)
			if m < 0 {
				return malformed(m)
			}
			if err := fn(num, typ, v, 0); err != nil {
				return err
			}
			b = b[m:]
		case protowire.VarintType:
			v, m := protowire.ConsumeVarint(b)
			if m < 0 {
				return malformed(m)
			}
			if err := fn(num, typ, nil, v); err != nil {
				return err
			}
			b = b[m:]
		default:
			m := protowire.ConsumeFieldValue(num, typ, b)
			if m < 0 {
				return malformed(m)
			}
			b = b[m:]
		}
	}
	return nil
}

func malformed(n int) error {
	return jelly.Deserializationf("malformed protobuf: %v", protowire.ParseError(n))
}

func unmarshalMapEntry(b []byte) (string, []byte, error) {
	var key string
	var value []byte
	err := eachField(b, func(num protowire.Number, typ protowire.Type, v []byte, _ uint64) error {
		if typ != protowire.BytesType {
			return nil
		}
		switch num {
		case mapKey:
			key = string(v)
		case mapValue:
			value = append([]byte(nil), v...)
		}
		return nil
	})
	return key, value, err
}

func unmarshalOptions(b []byte) (*jelly.StreamOptions, error) {
	o := &jelly.StreamOptions{}
	err := eachField(b, func(num protowire.Number, typ protowire.Type, v []byte, n uint64) error {
		if typ == protowire.BytesType {
			if num == optStreamName {
				o.StreamName = string(v)
			}
			return nil
		}
		switch num {
		case optPhysicalType:
			o.PhysicalType = jelly.PhysicalStreamType(int32(n))
		case optGeneralized:
			o.GeneralizedStatements = protowire.DecodeBool(n)
		case optRdfStar:
			o.RdfStar = protowire.DecodeBool(n)
		case optMaxNameTable:
			o.MaxNameTableSize = uint32(n)
		case optMaxPrefixTable:
			o.MaxPrefixTableSize = uint32(n)
		case optMaxDtTable:
			o.MaxDatatypeTableSize = uint32(n)
		case optLogicalType:
			o.LogicalType = jelly.LogicalStreamType(int32(n))
		case optVersion:
			o.Version = uint32(n)
		}
		return nil
	})
	return o, err
}

func unmarshalEntry(b []byte) (uint32, string, error) {
	var id uint32
	var value string
	err := eachField(b, func(num protowire.Number, typ protowire.Type, v []byte, n uint64) error {
		switch {
		case num == entryID && typ == protowire.VarintType:
			id = uint32(n)
		case num == entryValue && typ == protowire.BytesType:
			value = string(v)
		}
		return nil
	})
	return id, value, err
}

func unmarshalIri(b []byte) (jelly.Iri, error) {
	var iri jelly.Iri
	err := eachField(b, func(num protowire.Number, typ protowire.Type, _ []byte, n uint64) error {
		if typ != protowire.VarintType {
			return nil
		}
		switch num {
		case iriPrefix:
			iri.PrefixID = uint32(n)
		case iriName:
			iri.NameID = uint32(n)
		}
		return nil
	})
	return iri, err
}

func unmarshalLiteral(b []byte) (jelly.Literal, error) {
	var l jelly.Literal
	err := eachField(b, func(num protowire.Number, typ protowire.Type, v []byte, n uint64) error {
		switch {
		case num == litLex && typ == protowire.BytesType:
			l.Lex = string(v)
		case num == litLangTag && typ == protowire.BytesType:
			l.LangTag, l.Datatype = string(v), 0
		case num == litDatatype && typ == protowire.VarintType:
			l.Datatype, l.LangTag = uint32(n), ""
		}
		return nil
	})
	return l, err
}

// unmarshalTerm decodes field num as a term of the statement position
// starting at base. ok is false when num is not part of that position.
func unmarshalTerm(base, num protowire.Number, v []byte) (t jelly.Term, ok bool, err error) {
	switch num - base {
	case termIri:
		iri, err := unmarshalIri(v)
		return iri, true, err
	case termBnode:
		return jelly.BlankNode{Label: string(v)}, true, nil
	case termLiteral:
		l, err := unmarshalLiteral(v)
		return l, true, err
	case termQuoted:
		tr, err := unmarshalTriple(v)
		if err != nil {
			return nil, true, err
		}
		if tr.S == nil || tr.P == nil || tr.O == nil {
			return nil, true, jelly.Deserializationf("quoted triple with a missing term")
		}
		return jelly.TripleTerm{S: tr.S, P: tr.P, O: tr.O}, true, nil
	}
	return nil, false, nil
}

func unmarshalGraph(base, num protowire.Number, v []byte) (t jelly.Term, ok bool, err error) {
	switch num - base {
	case graphIri:
		iri, err := unmarshalIri(v)
		return iri, true, err
	case graphBnode:
		return jelly.BlankNode{Label: string(v)}, true, nil
	case graphDefault:
		return jelly.DefaultGraph{}, true, nil
	case graphLiteral:
		l, err := unmarshalLiteral(v)
		return l, true, err
	}
	return nil, false, nil
}

// spoField routes a length-delimited field to the subject, predicate or
// object of a statement.
func spoField(num protowire.Number, v []byte, s, p, o *jelly.Term) error {
	var target *jelly.Term
	var base protowire.Number
	switch {
	case num >= posSubject && num < posPredicate:
		target, base = s, posSubject
	case num >= posPredicate && num < posObject:
		target, base = p, posPredicate
	case num >= posObject && num < posQuadGraph:
		target, base = o, posObject
	default:
		return nil
	}
	t, _, err := unmarshalTerm(base, num, v)
	if err != nil {
		return err
	}
	*target = t
	return nil
}

func unmarshalTriple(b []byte) (*jelly.Triple, error) {
	r := &jelly.Triple{}
	err := eachField(b, func(num protowire.Number, typ protowire.Type, v []byte, _ uint64) error {
		if typ != protowire.BytesType {
			return nil
		}
		return spoField(num, v, &r.S, &r.P, &r.O)
	})
	return r, err
}

func unmarshalQuad(b []byte) (*jelly.Quad, error) {
	r := &jelly.Quad{}
	err := eachField(b, func(num protowire.Number, typ protowire.Type, v []byte, _ uint64) error {
		if typ != protowire.BytesType {
			return nil
		}
		if num >= posQuadGraph {
			g, ok, err := unmarshalGraph(posQuadGraph, num, v)
			if ok {
				r.G = g
			}
			return err
		}
		return spoField(num, v, &r.S, &r.P, &r.O)
	})
	return r, err
}

func unmarshalGraphStart(b []byte) (*jelly.GraphStart, error) {
	r := &jelly.GraphStart{}
	err := eachField(b, func(num protowire.Number, typ protowire.Type, v []byte, _ uint64) error {
		if typ != protowire.BytesType {
			return nil
		}
		g, ok, err := unmarshalGraph(posGraphStart, num, v)
		if ok {
			r.G = g
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if r.G == nil {
		return nil, jelly.Deserializationf("graph start without a graph")
	}
	return r, nil
}

func unmarshalNamespace(b []byte) (*jelly.NamespaceDeclaration, error) {
	r := &jelly.NamespaceDeclaration{}
	var hasValue bool
	err := eachField(b, func(num protowire.Number, typ protowire.Type, v []byte, _ uint64) error {
		if typ != protowire.BytesType {
			return nil
		}
		switch num {
		case nsName:
			r.Name = string(v)
		case nsValue:
			iri, err := unmarshalIri(v)
			if err != nil {
				return err
			}
			r.Value, hasValue = iri, true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !hasValue {
		return nil, jelly.Deserializationf("namespace declaration %q without a value", r.Name)
	}
	return r, nil
}

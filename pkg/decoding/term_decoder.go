package decoding

import (
	"github.com/aleksaelezovic/jelly/internal/lookup"
	"github.com/aleksaelezovic/jelly/pkg/jelly"
)

// TermDecoder turns wire terms back into native nodes. It owns the name,
// prefix and datatype tables of one stream.
type TermDecoder[N any] struct {
	conv      jelly.DecoderConverter[N]
	names     *lookup.NameDecoder[N]
	datatypes *lookup.DecoderLookup[N]
}

// NewTermDecoder creates a decoder whose tables are sized from opts.
func NewTermDecoder[N any](conv jelly.DecoderConverter[N], opts *jelly.StreamOptions) *TermDecoder[N] {
	return &TermDecoder[N]{
		conv:      conv,
		names:     lookup.NewNameDecoder(opts.MaxNameTableSize, opts.MaxPrefixTableSize, conv.MakeIri),
		datatypes: lookup.NewDecoderLookup[N](opts.MaxDatatypeTableSize),
	}
}

func (d *TermDecoder[N]) UpdateName(e *jelly.NameEntry) error {
	return d.names.UpdateName(e)
}

func (d *TermDecoder[N]) UpdatePrefix(e *jelly.PrefixEntry) error {
	return d.names.UpdatePrefix(e)
}

// UpdateDatatype stores the datatype node for e. The node is built once and
// shared by every literal that references the slot.
func (d *TermDecoder[N]) UpdateDatatype(e *jelly.DatatypeEntry) error {
	if d.datatypes.Capacity() == 0 {
		return jelly.Deserializationf("datatype entry received but the datatype table is disabled")
	}
	_, err := d.datatypes.Update(e.ID, d.conv.MakeDatatype(e.Value))
	return err
}

// DecodeIri resolves an IRI reference.
func (d *TermDecoder[N]) DecodeIri(iri jelly.Iri) (N, error) {
	return d.names.Decode(iri)
}

// DecodeSpo decodes a term in a subject, predicate or object position.
func (d *TermDecoder[N]) DecodeSpo(t jelly.Term) (N, error) {
	var zero N
	switch v := t.(type) {
	case jelly.Iri:
		return d.names.Decode(v)
	case jelly.BlankNode:
		return d.conv.MakeBlankNode(v.Label), nil
	case jelly.Literal:
		return d.decodeLiteral(v)
	case jelly.TripleTerm:
		return d.decodeQuoted(v)
	case nil:
		return zero, jelly.Deserializationf("missing term")
	default:
		return zero, jelly.Deserializationf("%s term is not allowed in a statement position", jelly.TermKind(t))
	}
}

// DecodeGraph decodes a term in the graph position.
func (d *TermDecoder[N]) DecodeGraph(t jelly.Term) (N, error) {
	var zero N
	switch v := t.(type) {
	case jelly.DefaultGraph:
		return d.conv.MakeDefaultGraph(), nil
	case jelly.Iri:
		return d.names.Decode(v)
	case jelly.BlankNode:
		return d.conv.MakeBlankNode(v.Label), nil
	case jelly.Literal:
		return d.decodeLiteral(v)
	case nil:
		return zero, jelly.Deserializationf("missing graph term")
	default:
		return zero, jelly.Deserializationf("%s term is not allowed in the graph position", jelly.TermKind(t))
	}
}

func (d *TermDecoder[N]) decodeLiteral(l jelly.Literal) (N, error) {
	switch l.Kind() {
	case jelly.LiteralLang:
		return d.conv.MakeLangLiteral(l.Lex, l.LangTag), nil
	case jelly.LiteralDatatype:
		dt, err := d.datatypes.Get(l.Datatype)
		if err != nil {
			var zero N
			return zero, err
		}
		return d.conv.MakeDtLiteral(l.Lex, dt), nil
	default:
		return d.conv.MakeSimpleLiteral(l.Lex), nil
	}
}

// decodeQuoted decodes a quoted triple. Its parts are decoded in subject,
// predicate, object order so IRI references resolve as they were written.
func (d *TermDecoder[N]) decodeQuoted(t jelly.TripleTerm) (N, error) {
	var zero N
	s, err := d.DecodeSpo(t.S)
	if err != nil {
		return zero, err
	}
	p, err := d.DecodeSpo(t.P)
	if err != nil {
		return zero, err
	}
	o, err := d.DecodeSpo(t.O)
	if err != nil {
		return zero, err
	}
	return d.conv.MakeQuotedTriple(s, p, o), nil
}

// Package rdfconv binds the pkg/rdf term model to the Jelly codec. A single
// Converter serves encoding, decoding and statement construction.
package rdfconv

import (
	"github.com/aleksaelezovic/jelly/pkg/jelly"
	"github.com/aleksaelezovic/jelly/pkg/rdf"
)

// Converter converts between rdf.Term values and wire terms.
type Converter struct{}

// New returns a Converter.
func New() Converter {
	return Converter{}
}

var _ jelly.EncoderConverter[rdf.Term] = Converter{}
var _ jelly.DecoderConverter[rdf.Term] = Converter{}
var _ jelly.StatementFactory[rdf.Term, *rdf.Triple, *rdf.Quad] = Converter{}

// NodeToProto encodes a subject, predicate or object.
func (Converter) NodeToProto(enc jelly.NodeEncoder, node rdf.Term) (jelly.Term, error) {
	switch n := node.(type) {
	case *rdf.NamedNode:
		return enc.MakeIri(n.IRI)
	case *rdf.BlankNode:
		return enc.MakeBlankNode(n.ID), nil
	case *rdf.Literal:
		return literalToProto(enc, n)
	case *rdf.TripleTerm:
		return quotedToProto(enc, n)
	case nil:
		return nil, jelly.Serializationf("cannot encode a nil term")
	default:
		return nil, jelly.Serializationf("cannot encode %s term in a statement position", node.Type())
	}
}

// GraphNodeToProto encodes a graph label.
func (c Converter) GraphNodeToProto(enc jelly.NodeEncoder, node rdf.Term) (jelly.Term, error) {
	switch n := node.(type) {
	case *rdf.DefaultGraph:
		return enc.MakeDefaultGraph(), nil
	case *rdf.NamedNode:
		return enc.MakeIri(n.IRI)
	case *rdf.BlankNode:
		return enc.MakeBlankNode(n.ID), nil
	case *rdf.Literal:
		return literalToProto(enc, n)
	case nil:
		return nil, jelly.Serializationf("cannot encode a nil graph")
	default:
		return nil, jelly.Serializationf("cannot encode %s term as a graph", node.Type())
	}
}

func literalToProto(enc jelly.NodeEncoder, l *rdf.Literal) (jelly.Term, error) {
	switch {
	case l.Language != "":
		return enc.MakeLangLiteral(l.Value, l.Language), nil
	case l.Datatype != nil:
		return enc.MakeDtLiteral(l.Value, l.Datatype.IRI)
	default:
		return enc.MakeSimpleLiteral(l.Value), nil
	}
}

func quotedToProto(enc jelly.NodeEncoder, t *rdf.TripleTerm) (jelly.Term, error) {
	c := Converter{}
	s, err := c.NodeToProto(enc, t.Subject)
	if err != nil {
		return nil, err
	}
	p, err := c.NodeToProto(enc, t.Predicate)
	if err != nil {
		return nil, err
	}
	o, err := c.NodeToProto(enc, t.Object)
	if err != nil {
		return nil, err
	}
	return enc.MakeQuotedTriple(s, p, o), nil
}

// Equal reports whether a and b are the same RDF term.
func (Converter) Equal(a, b rdf.Term) bool {
	return rdf.Equal(a, b)
}

func (Converter) MakeIri(iri string) rdf.Term {
	return rdf.NewNamedNode(iri)
}

func (Converter) MakeBlankNode(label string) rdf.Term {
	return rdf.NewBlankNode(label)
}

func (Converter) MakeSimpleLiteral(lex string) rdf.Term {
	return rdf.NewLiteral(lex)
}

func (Converter) MakeLangLiteral(lex, lang string) rdf.Term {
	return rdf.NewLiteralWithLanguage(lex, lang)
}

func (Converter) MakeDatatype(iri string) rdf.Term {
	return rdf.NewNamedNode(iri)
}

// MakeDtLiteral builds a typed literal. datatype is always a value returned
// by MakeDatatype.
func (Converter) MakeDtLiteral(lex string, datatype rdf.Term) rdf.Term {
	dt, _ := datatype.(*rdf.NamedNode)
	return rdf.NewLiteralWithDatatype(lex, dt)
}

func (Converter) MakeQuotedTriple(s, p, o rdf.Term) rdf.Term {
	return rdf.NewTripleTerm(s, p, o)
}

func (Converter) MakeDefaultGraph() rdf.Term {
	return rdf.NewDefaultGraph()
}

func (Converter) MakeTriple(s, p, o rdf.Term) *rdf.Triple {
	return rdf.NewTriple(s, p, o)
}

func (Converter) MakeQuad(s, p, o, g rdf.Term) *rdf.Quad {
	return rdf.NewQuad(s, p, o, g)
}

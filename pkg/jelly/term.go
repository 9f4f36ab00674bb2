package jelly

// Term is a wire term: the compact on-stream form of an RDF node.
// Implementations are Iri, BlankNode, Literal, TripleTerm and DefaultGraph.
type Term interface {
	isTerm()
}

// Iri references an IRI by prefix and name lookup IDs.
// A zero PrefixID means "same prefix as the previous IRI"; a zero NameID
// means "the name after the previous IRI's name".
type Iri struct {
	PrefixID uint32
	NameID   uint32
}

// BlankNode is a blank node label.
type BlankNode struct {
	Label string
}

// LiteralKind distinguishes the three literal shapes.
type LiteralKind byte

const (
	LiteralSimple LiteralKind = iota
	LiteralLang
	LiteralDatatype
)

// Literal is an RDF literal. At most one of LangTag and Datatype is set;
// when neither is set the literal is a simple (xsd:string) literal.
type Literal struct {
	Lex      string
	LangTag  string
	Datatype uint32
}

// Kind reports which literal shape l has.
func (l Literal) Kind() LiteralKind {
	if l.LangTag != "" {
		return LiteralLang
	}
	if l.Datatype != 0 {
		return LiteralDatatype
	}
	return LiteralSimple
}

// TripleTerm is a quoted triple (RDF-star). All three fields are always set.
type TripleTerm struct {
	S Term
	P Term
	O Term
}

// DefaultGraph marks the default graph in the graph position.
type DefaultGraph struct{}

func (Iri) isTerm()          {}
func (BlankNode) isTerm()    {}
func (Literal) isTerm()      {}
func (TripleTerm) isTerm()   {}
func (DefaultGraph) isTerm() {}

// TermKind returns a short name for the kind of t, used in error messages and metrics.
func TermKind(t Term) string {
	switch v := t.(type) {
	case nil:
		return "none"
	case Iri:
		return "iri"
	case BlankNode:
		return "bnode"
	case Literal:
		switch v.Kind() {
		case LiteralLang:
			return "lang_literal"
		case LiteralDatatype:
			return "dt_literal"
		}
		return "literal"
	case TripleTerm:
		return "triple_term"
	case DefaultGraph:
		return "default_graph"
	default:
		return "unknown"
	}
}

// IsGraphTerm reports whether t may appear in the graph position.
func IsGraphTerm(t Term) bool {
	switch t.(type) {
	case Iri, BlankNode, Literal, DefaultGraph:
		return true
	}
	return false
}

// IsSpoTerm reports whether t may appear in a subject, predicate or object position.
func IsSpoTerm(t Term) bool {
	switch t.(type) {
	case Iri, BlankNode, Literal, TripleTerm:
		return true
	}
	return false
}

package jelly

// RowSink receives encoded rows in stream order.
//
// Rows passed to Append may be reused by the caller after the next mutating
// call on the encoder that produced them; a sink that keeps rows past that
// point must not mutate them.
type RowSink interface {
	Append(row Row)
}

// RowSinkFunc adapts a function to RowSink.
type RowSinkFunc func(row Row)

// Append calls f(row).
func (f RowSinkFunc) Append(row Row) {
	f(row)
}

// RowSlice is a RowSink collecting rows in memory.
type RowSlice []Row

// Append appends row to s.
func (s *RowSlice) Append(row Row) {
	*s = append(*s, row)
}

// NodeEncoder turns the parts of a native node into wire terms. It is
// implemented by the term encoder and called back by an EncoderConverter.
type NodeEncoder interface {
	MakeIri(iri string) (Term, error)
	MakeBlankNode(label string) Term
	MakeSimpleLiteral(lex string) Term
	MakeLangLiteral(lex, lang string) Term
	MakeDtLiteral(lex, datatype string) (Term, error)
	MakeQuotedTriple(s, p, o Term) Term
	MakeDefaultGraph() Term
}

// EncoderConverter inspects native nodes of type N and encodes them through
// a NodeEncoder.
type EncoderConverter[N any] interface {
	// NodeToProto encodes a subject, predicate or object node.
	NodeToProto(enc NodeEncoder, node N) (Term, error)
	// GraphNodeToProto encodes a graph label. The native default graph
	// value must be encoded with MakeDefaultGraph.
	GraphNodeToProto(enc NodeEncoder, node N) (Term, error)
	// Equal reports whether two native nodes are the same RDF term.
	Equal(a, b N) bool
}

// DecoderConverter builds native nodes of type N from decoded wire data.
type DecoderConverter[N any] interface {
	MakeIri(iri string) N
	MakeBlankNode(label string) N
	MakeSimpleLiteral(lex string) N
	MakeLangLiteral(lex, lang string) N
	// MakeDatatype builds the datatype node; it is called once per datatype
	// table entry and the result is reused for every literal of that type.
	MakeDatatype(iri string) N
	MakeDtLiteral(lex string, datatype N) N
	MakeQuotedTriple(s, p, o N) N
	MakeDefaultGraph() N
}

// StatementFactory builds native statements from decoded nodes.
type StatementFactory[N, T, Q any] interface {
	MakeTriple(s, p, o N) T
	MakeQuad(s, p, o, g N) Q
}

// TripleHandler receives decoded triples.
type TripleHandler[N any] interface {
	HandleTriple(s, p, o N) error
}

// QuadHandler receives decoded quads.
type QuadHandler[N any] interface {
	HandleQuad(s, p, o, g N) error
}

// GraphHandler receives graph-grouped triples: a graph start, the triples of
// that graph, then a graph end.
type GraphHandler[N any] interface {
	TripleHandler[N]
	HandleGraphStart(g N) error
	HandleGraphEnd() error
}

// StatementHandler receives triples and quads.
type StatementHandler[N any] interface {
	TripleHandler[N]
	QuadHandler[N]
}

// NamespaceHandler is optionally implemented by handlers that want
// namespace declarations.
type NamespaceHandler[N any] interface {
	HandleNamespace(name string, iri N) error
}

package jelly

// Row is one unit of a stream. Implementations are *StreamOptions,
// *NameEntry, *PrefixEntry, *DatatypeEntry, *Triple, *Quad, *GraphStart,
// *GraphEnd and *NamespaceDeclaration.
type Row interface {
	isRow()
}

// NameEntry assigns a value to a slot of the name table.
// ID 0 means "the slot after the previously assigned one".
type NameEntry struct {
	ID    uint32
	Value string
}

// PrefixEntry assigns a value to a slot of the prefix table.
type PrefixEntry struct {
	ID    uint32
	Value string
}

// DatatypeEntry assigns a value to a slot of the datatype table.
type DatatypeEntry struct {
	ID    uint32
	Value string
}

// Triple is a triple statement. A nil field repeats the previous value
// of that role in the stream.
type Triple struct {
	S Term
	P Term
	O Term
}

// Quad is a quad statement. A nil field repeats the previous value
// of that role in the stream.
type Quad struct {
	S Term
	P Term
	O Term
	G Term
}

// GraphStart opens a graph in a GRAPHS stream.
type GraphStart struct {
	G Term
}

// GraphEnd closes the graph opened by the last GraphStart.
type GraphEnd struct{}

// NamespaceDeclaration binds a namespace name to an IRI.
type NamespaceDeclaration struct {
	Name  string
	Value Iri
}

func (*StreamOptions) isRow()        {}
func (*NameEntry) isRow()            {}
func (*PrefixEntry) isRow()          {}
func (*DatatypeEntry) isRow()        {}
func (*Triple) isRow()               {}
func (*Quad) isRow()                 {}
func (*GraphStart) isRow()           {}
func (*GraphEnd) isRow()             {}
func (*NamespaceDeclaration) isRow() {}

// RowKind returns a short name for the kind of r.
func RowKind(r Row) string {
	switch r.(type) {
	case *StreamOptions:
		return "options"
	case *NameEntry:
		return "name"
	case *PrefixEntry:
		return "prefix"
	case *DatatypeEntry:
		return "datatype"
	case *Triple:
		return "triple"
	case *Quad:
		return "quad"
	case *GraphStart:
		return "graph_start"
	case *GraphEnd:
		return "graph_end"
	case *NamespaceDeclaration:
		return "namespace"
	default:
		return "unknown"
	}
}

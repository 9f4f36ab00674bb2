package decoding

import (
	"github.com/aleksaelezovic/jelly/pkg/jelly"
)

// Namespace is a namespace declaration seen in a stream.
type Namespace[N any] struct {
	Name string
	IRI  N
}

// Collector is a handler that builds statements with a StatementFactory and
// keeps them in memory. Triples inside a GRAPHS stream decoded with a
// GraphsDecoder are collected as quads of the enclosing graph.
type Collector[N, T, Q any] struct {
	factory jelly.StatementFactory[N, T, Q]

	Triples    []T
	Quads      []Q
	Namespaces []Namespace[N]

	graph     N
	graphOpen bool
}

// NewCollector creates an empty collector.
func NewCollector[N, T, Q any](factory jelly.StatementFactory[N, T, Q]) *Collector[N, T, Q] {
	return &Collector[N, T, Q]{factory: factory}
}

func (c *Collector[N, T, Q]) HandleTriple(s, p, o N) error {
	if c.graphOpen {
		c.Quads = append(c.Quads, c.factory.MakeQuad(s, p, o, c.graph))
		return nil
	}
	c.Triples = append(c.Triples, c.factory.MakeTriple(s, p, o))
	return nil
}

func (c *Collector[N, T, Q]) HandleQuad(s, p, o, g N) error {
	c.Quads = append(c.Quads, c.factory.MakeQuad(s, p, o, g))
	return nil
}

func (c *Collector[N, T, Q]) HandleGraphStart(g N) error {
	c.graph = g
	c.graphOpen = true
	return nil
}

func (c *Collector[N, T, Q]) HandleGraphEnd() error {
	var zero N
	c.graph = zero
	c.graphOpen = false
	return nil
}

func (c *Collector[N, T, Q]) HandleNamespace(name string, iri N) error {
	c.Namespaces = append(c.Namespaces, Namespace[N]{Name: name, IRI: iri})
	return nil
}

var (
	_ jelly.StatementHandler[any] = (*Collector[any, any, any])(nil)
	_ jelly.GraphHandler[any]     = (*Collector[any, any, any])(nil)
	_ jelly.NamespaceHandler[any] = (*Collector[any, any, any])(nil)
)

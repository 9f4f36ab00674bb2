package decoding

import (
	"github.com/aleksaelezovic/jelly/pkg/jelly"
)

// TriplesDecoder decodes a TRIPLES stream.
type TriplesDecoder[N any] struct {
	base[N]
	handler jelly.TripleHandler[N]
}

// NewTriplesDecoder creates a decoder that passes triples to handler. If
// handler also implements jelly.NamespaceHandler it receives namespace
// declarations.
func NewTriplesDecoder[N any](conv jelly.DecoderConverter[N], handler jelly.TripleHandler[N], cfg Config) *TriplesDecoder[N] {
	return &TriplesDecoder[N]{
		base:    newBase(conv, jelly.PhysicalTriples, handler, cfg),
		handler: handler,
	}
}

func (d *TriplesDecoder[N]) Ingest(row jelly.Row) error {
	if done, err := d.ingestCommon(row); done {
		return err
	}
	r, ok := row.(*jelly.Triple)
	if !ok {
		return unexpectedRow(row, jelly.PhysicalTriples)
	}
	s, p, o, err := d.resolveSPO(r.S, r.P, r.O)
	if err != nil {
		return err
	}
	return d.handler.HandleTriple(s, p, o)
}

func (d *TriplesDecoder[N]) IngestFrame(frame jelly.Frame) error {
	return ingestFrame(d, frame)
}

// QuadsDecoder decodes a QUADS stream.
type QuadsDecoder[N any] struct {
	base[N]
	handler jelly.QuadHandler[N]
}

// NewQuadsDecoder creates a decoder that passes quads to handler.
func NewQuadsDecoder[N any](conv jelly.DecoderConverter[N], handler jelly.QuadHandler[N], cfg Config) *QuadsDecoder[N] {
	return &QuadsDecoder[N]{
		base:    newBase(conv, jelly.PhysicalQuads, handler, cfg),
		handler: handler,
	}
}

func (d *QuadsDecoder[N]) Ingest(row jelly.Row) error {
	if done, err := d.ingestCommon(row); done {
		return err
	}
	r, ok := row.(*jelly.Quad)
	if !ok {
		return unexpectedRow(row, jelly.PhysicalQuads)
	}
	s, p, o, g, err := d.resolveQuad(r.S, r.P, r.O, r.G)
	if err != nil {
		return err
	}
	return d.handler.HandleQuad(s, p, o, g)
}

func (d *QuadsDecoder[N]) IngestFrame(frame jelly.Frame) error {
	return ingestFrame(d, frame)
}

// GraphsAsQuadsDecoder decodes a GRAPHS stream into flat quads: every
// triple is tagged with the graph opened by the last GraphStart.
type GraphsAsQuadsDecoder[N any] struct {
	base[N]
	handler   jelly.QuadHandler[N]
	current   N
	graphOpen bool
}

// NewGraphsAsQuadsDecoder creates a decoder that passes quads to handler.
func NewGraphsAsQuadsDecoder[N any](conv jelly.DecoderConverter[N], handler jelly.QuadHandler[N], cfg Config) *GraphsAsQuadsDecoder[N] {
	return &GraphsAsQuadsDecoder[N]{
		base:    newBase(conv, jelly.PhysicalGraphs, handler, cfg),
		handler: handler,
	}
}

func (d *GraphsAsQuadsDecoder[N]) Ingest(row jelly.Row) error {
	if done, err := d.ingestCommon(row); done {
		return err
	}
	switch r := row.(type) {
	case *jelly.GraphStart:
		g, err := d.terms.DecodeGraph(r.G)
		if err != nil {
			return err
		}
		d.current = g
		d.graphOpen = true
		return nil
	case *jelly.GraphEnd:
		if !d.graphOpen {
			return jelly.Deserializationf("graph end without an open graph")
		}
		var zero N
		d.current = zero
		d.graphOpen = false
		return nil
	case *jelly.Triple:
		if !d.graphOpen {
			return jelly.Deserializationf("triple outside of a graph in a GRAPHS stream")
		}
		s, p, o, err := d.resolveSPO(r.S, r.P, r.O)
		if err != nil {
			return err
		}
		return d.handler.HandleQuad(s, p, o, d.current)
	default:
		return unexpectedRow(row, jelly.PhysicalGraphs)
	}
}

func (d *GraphsAsQuadsDecoder[N]) IngestFrame(frame jelly.Frame) error {
	return ingestFrame(d, frame)
}

// GraphsDecoder decodes a GRAPHS stream keeping its grouping: the handler
// sees a graph start, the triples of that graph, then a graph end.
type GraphsDecoder[N any] struct {
	base[N]
	handler   jelly.GraphHandler[N]
	graphOpen bool
}

// NewGraphsDecoder creates a decoder that passes graph groups to handler.
func NewGraphsDecoder[N any](conv jelly.DecoderConverter[N], handler jelly.GraphHandler[N], cfg Config) *GraphsDecoder[N] {
	return &GraphsDecoder[N]{
		base:    newBase(conv, jelly.PhysicalGraphs, handler, cfg),
		handler: handler,
	}
}

func (d *GraphsDecoder[N]) Ingest(row jelly.Row) error {
	if done, err := d.ingestCommon(row); done {
		return err
	}
	switch r := row.(type) {
	case *jelly.GraphStart:
		if d.graphOpen {
			return jelly.Deserializationf("graph start while another graph is open")
		}
		g, err := d.terms.DecodeGraph(r.G)
		if err != nil {
			return err
		}
		d.graphOpen = true
		return d.handler.HandleGraphStart(g)
	case *jelly.GraphEnd:
		if !d.graphOpen {
			return jelly.Deserializationf("graph end without an open graph")
		}
		d.graphOpen = false
		return d.handler.HandleGraphEnd()
	case *jelly.Triple:
		if !d.graphOpen {
			return jelly.Deserializationf("triple outside of a graph in a GRAPHS stream")
		}
		s, p, o, err := d.resolveSPO(r.S, r.P, r.O)
		if err != nil {
			return err
		}
		return d.handler.HandleTriple(s, p, o)
	default:
		return unexpectedRow(row, jelly.PhysicalGraphs)
	}
}

func (d *GraphsDecoder[N]) IngestFrame(frame jelly.Frame) error {
	return ingestFrame(d, frame)
}

var (
	_ Decoder = (*TriplesDecoder[any])(nil)
	_ Decoder = (*QuadsDecoder[any])(nil)
	_ Decoder = (*GraphsAsQuadsDecoder[any])(nil)
	_ Decoder = (*GraphsDecoder[any])(nil)
)

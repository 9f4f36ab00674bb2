package encoding

import (
	"github.com/aleksaelezovic/jelly/pkg/jelly"
)

// Params configures a ProtoEncoder.
type Params struct {
	// Options of the stream. Version is set by the encoder.
	Options *jelly.StreamOptions
	// EnableNamespaceDeclarations allows DeclareNamespace and raises the
	// stream version to ProtoVersion1_1.
	EnableNamespaceDeclarations bool
	// Sink receives every row, in stream order.
	Sink jelly.RowSink
}

// role tracks the last value written in one statement position.
type role[N any] struct {
	value N
	set   bool
}

// ProtoEncoder encodes native statements of node type N into rows. It is
// not safe for concurrent use.
type ProtoEncoder[N any] struct {
	conv     jelly.EncoderConverter[N]
	opts     *jelly.StreamOptions
	sink     jelly.RowSink
	nodes    *NodeEncoder
	enableNS bool

	emittedOptions bool
	graphOpen      bool

	subject, predicate, object role[N]
	graph                      role[N]
}

// NewProtoEncoder validates params and creates an encoder. Nothing is
// written until the first statement, graph or namespace call.
func NewProtoEncoder[N any](conv jelly.EncoderConverter[N], params Params) (*ProtoEncoder[N], error) {
	if params.Options == nil {
		return nil, jelly.Serializationf("stream options are required")
	}
	if params.Sink == nil {
		return nil, jelly.Serializationf("row sink is required")
	}
	opts := params.Options.Clone()
	opts.Version = jelly.ProtoVersion1_0
	if params.EnableNamespaceDeclarations {
		opts.Version = jelly.ProtoVersion1_1
	}
	if err := opts.Validate(); err != nil {
		return nil, jelly.Serializationf("invalid stream options: %v", err)
	}
	return &ProtoEncoder[N]{
		conv:     conv,
		opts:     opts,
		sink:     params.Sink,
		nodes:    NewNodeEncoder(opts, params.Sink),
		enableNS: params.EnableNamespaceDeclarations,
	}, nil
}

// Options returns the options row this encoder writes.
func (e *ProtoEncoder[N]) Options() *jelly.StreamOptions {
	return e.opts.Clone()
}

func (e *ProtoEncoder[N]) ensureOptions() {
	if e.emittedOptions {
		return
	}
	e.emittedOptions = true
	e.sink.Append(e.opts.Clone())
}

// AddTriple writes a triple. Allowed in TRIPLES streams, and in GRAPHS
// streams between StartGraph and EndGraph.
func (e *ProtoEncoder[N]) AddTriple(s, p, o N) error {
	switch e.opts.PhysicalType {
	case jelly.PhysicalTriples:
	case jelly.PhysicalGraphs:
		if !e.graphOpen {
			return jelly.Serializationf("cannot add a triple outside of a graph in a GRAPHS stream")
		}
	default:
		return jelly.Serializationf("cannot add a triple to a %s stream", e.opts.PhysicalType)
	}
	e.ensureOptions()

	cp := e.nodes.checkpoint()
	e.nodes.beginStatement()
	st, pt, ot, err := e.encodeSPO(s, p, o)
	if err != nil {
		e.nodes.restore(cp)
		return err
	}
	e.commitSPO(s, p, o, st, pt, ot)
	e.sink.Append(&jelly.Triple{S: st, P: pt, O: ot})
	return nil
}

// AddQuad writes a quad. Allowed in QUADS streams.
func (e *ProtoEncoder[N]) AddQuad(s, p, o, g N) error {
	if e.opts.PhysicalType != jelly.PhysicalQuads {
		return jelly.Serializationf("cannot add a quad to a %s stream", e.opts.PhysicalType)
	}
	e.ensureOptions()

	cp := e.nodes.checkpoint()
	e.nodes.beginStatement()
	st, pt, ot, err := e.encodeSPO(s, p, o)
	if err != nil {
		e.nodes.restore(cp)
		return err
	}
	var gt jelly.Term
	if !e.graph.set || !e.conv.Equal(e.graph.value, g) {
		if gt, err = e.conv.GraphNodeToProto(e.nodes, g); err != nil {
			e.nodes.restore(cp)
			return err
		}
	}
	e.commitSPO(s, p, o, st, pt, ot)
	if gt != nil {
		e.graph = role[N]{value: g, set: true}
	}
	e.sink.Append(&jelly.Quad{S: st, P: pt, O: ot, G: gt})
	return nil
}

// encodeSPO encodes the roles that differ from the previous statement. A
// nil result means the role is omitted.
func (e *ProtoEncoder[N]) encodeSPO(s, p, o N) (st, pt, ot jelly.Term, err error) {
	if st, err = e.encodeRole(&e.subject, s); err != nil {
		return nil, nil, nil, err
	}
	if pt, err = e.encodeRole(&e.predicate, p); err != nil {
		return nil, nil, nil, err
	}
	if ot, err = e.encodeRole(&e.object, o); err != nil {
		return nil, nil, nil, err
	}
	return st, pt, ot, nil
}

func (e *ProtoEncoder[N]) encodeRole(r *role[N], node N) (jelly.Term, error) {
	if r.set && e.conv.Equal(r.value, node) {
		return nil, nil
	}
	return e.conv.NodeToProto(e.nodes, node)
}

func (e *ProtoEncoder[N]) commitSPO(s, p, o N, st, pt, ot jelly.Term) {
	if st != nil {
		e.subject = role[N]{value: s, set: true}
	}
	if pt != nil {
		e.predicate = role[N]{value: p, set: true}
	}
	if ot != nil {
		e.object = role[N]{value: o, set: true}
	}
}

// StartGraph opens a graph in a GRAPHS stream.
func (e *ProtoEncoder[N]) StartGraph(g N) error {
	if e.opts.PhysicalType != jelly.PhysicalGraphs {
		return jelly.Serializationf("cannot start a graph in a %s stream", e.opts.PhysicalType)
	}
	if e.graphOpen {
		return jelly.Serializationf("cannot start a graph while another graph is open")
	}
	e.ensureOptions()

	cp := e.nodes.checkpoint()
	e.nodes.beginStatement()
	gt, err := e.conv.GraphNodeToProto(e.nodes, g)
	if err != nil {
		e.nodes.restore(cp)
		return err
	}
	e.graphOpen = true
	e.sink.Append(&jelly.GraphStart{G: gt})
	return nil
}

// StartDefaultGraph opens the default graph in a GRAPHS stream.
func (e *ProtoEncoder[N]) StartDefaultGraph() error {
	if e.opts.PhysicalType != jelly.PhysicalGraphs {
		return jelly.Serializationf("cannot start a graph in a %s stream", e.opts.PhysicalType)
	}
	if e.graphOpen {
		return jelly.Serializationf("cannot start a graph while another graph is open")
	}
	e.ensureOptions()
	e.graphOpen = true
	e.sink.Append(&jelly.GraphStart{G: e.nodes.MakeDefaultGraph()})
	return nil
}

// EndGraph closes the open graph.
func (e *ProtoEncoder[N]) EndGraph() error {
	if !e.emittedOptions || !e.graphOpen {
		return jelly.Serializationf("cannot end a graph that was never started")
	}
	e.graphOpen = false
	e.sink.Append(&jelly.GraphEnd{})
	return nil
}

// DeclareNamespace writes a namespace declaration. The stream must have
// been created with EnableNamespaceDeclarations and iri must encode to an IRI.
func (e *ProtoEncoder[N]) DeclareNamespace(name string, iri N) error {
	if !e.enableNS {
		return jelly.Serializationf("namespace declarations are not enabled for this stream")
	}
	e.ensureOptions()

	cp := e.nodes.checkpoint()
	e.nodes.beginStatement()
	t, err := e.conv.NodeToProto(e.nodes, iri)
	if err != nil {
		e.nodes.restore(cp)
		return err
	}
	value, ok := t.(jelly.Iri)
	if !ok {
		e.nodes.restore(cp)
		return jelly.Serializationf("namespace %q must be bound to an IRI, got %s", name, jelly.TermKind(t))
	}
	e.sink.Append(&jelly.NamespaceDeclaration{Name: name, Value: value})
	return nil
}

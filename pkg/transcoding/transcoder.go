// Package transcoding rewrites Jelly rows from one stream's lookup ID space
// into another's without turning terms back into RDF nodes.
//
// A Transcoder accepts any number of concatenated input streams and writes a
// single output stream. Every input options row starts a new input ID space;
// the output tables live for the whole output stream.
package transcoding

import (
	"go.uber.org/zap"

	"github.com/aleksaelezovic/jelly/pkg/jelly"
)

// Config configures a Transcoder.
type Config struct {
	// Output options. PhysicalType and LogicalType default to those of the
	// first input stream when unspecified.
	Output *jelly.StreamOptions
	// Supported is the ceiling input options are checked against.
	// Nil means jelly.DefaultSupportedOptions().
	Supported *jelly.StreamOptions
	// Logger receives stream restart events. Nil disables logging.
	Logger *zap.Logger
}

// Transcoder remaps rows into the output ID space and appends them to a
// sink. It is not safe for concurrent use.
type Transcoder struct {
	supported *jelly.StreamOptions
	output    *jelly.StreamOptions
	sink      jelly.RowSink
	log       *zap.Logger

	names     *remapTable
	prefixes  *remapTable
	datatypes *remapTable

	inputs int

	lastInPrefix, lastInName   uint32
	lastOutPrefix, lastOutName uint32
}

// New creates a Transcoder writing to sink.
func New(cfg Config, sink jelly.RowSink) (*Transcoder, error) {
	if cfg.Output == nil {
		return nil, jelly.Transcodingf("output options are required")
	}
	if sink == nil {
		return nil, jelly.Transcodingf("row sink is required")
	}
	supported := cfg.Supported
	if supported == nil {
		supported = jelly.DefaultSupportedOptions()
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Transcoder{
		supported: supported,
		output:    cfg.Output.Clone(),
		sink:      sink,
		log:       log,
	}, nil
}

// Options returns the output options, or nil before the first input options row.
func (t *Transcoder) Options() *jelly.StreamOptions {
	if t.inputs == 0 {
		return nil
	}
	return t.output.Clone()
}

// IngestFrame transcodes the rows of frame in order.
func (t *Transcoder) IngestFrame(frame jelly.Frame) error {
	for _, row := range frame.Rows {
		if err := t.Ingest(row); err != nil {
			return err
		}
	}
	return nil
}

// Ingest transcodes a single row. Rows that need no rewriting are passed to
// the sink as the same value.
func (t *Transcoder) Ingest(row jelly.Row) error {
	if o, ok := row.(*jelly.StreamOptions); ok {
		return t.handleOptions(o)
	}
	if t.inputs == 0 {
		return jelly.Deserializationf("%s row received before the stream options", jelly.RowKind(row))
	}

	switch r := row.(type) {
	case *jelly.NameEntry:
		e, err := t.names.update(r.ID, r.Value)
		if err != nil {
			return err
		}
		if e.New {
			t.sink.Append(&jelly.NameEntry{ID: e.SetID, Value: r.Value})
		}
	case *jelly.PrefixEntry:
		if len(t.prefixes.remap) == 0 {
			return jelly.Deserializationf("prefix entry received but the prefix table is disabled")
		}
		e, err := t.prefixes.update(r.ID, r.Value)
		if err != nil {
			return err
		}
		if e.New {
			t.sink.Append(&jelly.PrefixEntry{ID: e.SetID, Value: r.Value})
		}
	case *jelly.DatatypeEntry:
		if len(t.datatypes.remap) == 0 {
			return jelly.Deserializationf("datatype entry received but the datatype table is disabled")
		}
		e, err := t.datatypes.update(r.ID, r.Value)
		if err != nil {
			return err
		}
		if e.New {
			t.sink.Append(&jelly.DatatypeEntry{ID: e.SetID, Value: r.Value})
		}
	case *jelly.Triple:
		out, err := t.remapTriple(r)
		if err != nil {
			return err
		}
		t.sink.Append(out)
	case *jelly.Quad:
		out, err := t.remapQuad(r)
		if err != nil {
			return err
		}
		t.sink.Append(out)
	case *jelly.GraphStart:
		g, changed, err := t.remapTerm(r.G)
		if err != nil {
			return err
		}
		if changed {
			t.sink.Append(&jelly.GraphStart{G: g})
		} else {
			t.sink.Append(r)
		}
	case *jelly.GraphEnd:
		t.sink.Append(r)
	case *jelly.NamespaceDeclaration:
		iri, err := t.remapIri(r.Value)
		if err != nil {
			return err
		}
		if iri == r.Value {
			t.sink.Append(r)
		} else {
			t.sink.Append(&jelly.NamespaceDeclaration{Name: r.Name, Value: iri})
		}
	default:
		return jelly.Transcodingf("cannot transcode %s row", jelly.RowKind(row))
	}
	return nil
}

func (t *Transcoder) handleOptions(in *jelly.StreamOptions) error {
	if err := jelly.CheckCompatibility(in, t.supported); err != nil {
		return err
	}
	if err := in.Validate(); err != nil {
		return err
	}

	if t.inputs == 0 {
		out, err := outputOptions(t.output, in)
		if err != nil {
			return err
		}
		if err := checkTables(in, out); err != nil {
			return err
		}
		t.output = out
		t.names = newRemapTable("name", out.MaxNameTableSize)
		t.prefixes = newRemapTable("prefix", out.MaxPrefixTableSize)
		t.datatypes = newRemapTable("datatype", out.MaxDatatypeTableSize)
		t.sink.Append(out.Clone())
		t.log.Debug("output stream opened", zap.Stringer("options", out))
	} else {
		if in.PhysicalType != t.output.PhysicalType {
			return jelly.Transcodingf("input stream %d is %s, output is %s",
				t.inputs+1, in.PhysicalType, t.output.PhysicalType)
		}
		if err := checkTables(in, t.output); err != nil {
			return err
		}
		t.log.Debug("input stream restarted",
			zap.Int("input", t.inputs+1),
			zap.String("stream_name", in.StreamName),
		)
	}

	t.inputs++
	t.names.reset(in.MaxNameTableSize)
	t.prefixes.reset(in.MaxPrefixTableSize)
	t.datatypes.reset(in.MaxDatatypeTableSize)
	t.lastInPrefix, t.lastInName = 0, 0
	return nil
}

// outputOptions completes the configured output options from the first
// input stream.
func outputOptions(cfg, in *jelly.StreamOptions) (*jelly.StreamOptions, error) {
	out := cfg.Clone()
	if out.PhysicalType == jelly.PhysicalUnspecified {
		out.PhysicalType = in.PhysicalType
	}
	if out.PhysicalType != in.PhysicalType {
		return nil, jelly.Transcodingf("input stream is %s, output is %s", in.PhysicalType, out.PhysicalType)
	}
	if out.LogicalType == jelly.LogicalUnspecified {
		out.LogicalType = in.LogicalType
	}
	out.Version = max(out.Version, in.Version, jelly.ProtoVersion1_0)
	if in.MaxPrefixTableSize == 0 {
		// IRIs of the input carry no prefix, so neither can the output's.
		out.MaxPrefixTableSize = 0
	}
	if err := out.Validate(); err != nil {
		return nil, jelly.Transcodingf("invalid output options: %v", err)
	}
	return out, nil
}

func checkTables(in, out *jelly.StreamOptions) error {
	switch {
	case in.MaxNameTableSize > out.MaxNameTableSize:
		return jelly.Transcodingf("input name table (%d) is larger than the output name table (%d)",
			in.MaxNameTableSize, out.MaxNameTableSize)
	case in.MaxPrefixTableSize > out.MaxPrefixTableSize:
		return jelly.Transcodingf("input prefix table (%d) is larger than the output prefix table (%d)",
			in.MaxPrefixTableSize, out.MaxPrefixTableSize)
	case in.MaxPrefixTableSize == 0 && out.MaxPrefixTableSize > 0:
		return jelly.Transcodingf("input has no prefix table, the output requires one")
	case in.MaxDatatypeTableSize > out.MaxDatatypeTableSize:
		return jelly.Transcodingf("input datatype table (%d) is larger than the output datatype table (%d)",
			in.MaxDatatypeTableSize, out.MaxDatatypeTableSize)
	case in.GeneralizedStatements && !out.GeneralizedStatements:
		return jelly.Transcodingf("input uses generalized statements, the output does not allow them")
	case in.RdfStar && !out.RdfStar:
		return jelly.Transcodingf("input uses RDF-star, the output does not allow it")
	}
	return nil
}

func (t *Transcoder) remapTriple(r *jelly.Triple) (*jelly.Triple, error) {
	s, sc, err := t.remapTerm(r.S)
	if err != nil {
		return nil, err
	}
	p, pc, err := t.remapTerm(r.P)
	if err != nil {
		return nil, err
	}
	o, oc, err := t.remapTerm(r.O)
	if err != nil {
		return nil, err
	}
	if !sc && !pc && !oc {
		return r, nil
	}
	return &jelly.Triple{S: s, P: p, O: o}, nil
}

func (t *Transcoder) remapQuad(r *jelly.Quad) (*jelly.Quad, error) {
	s, sc, err := t.remapTerm(r.S)
	if err != nil {
		return nil, err
	}
	p, pc, err := t.remapTerm(r.P)
	if err != nil {
		return nil, err
	}
	o, oc, err := t.remapTerm(r.O)
	if err != nil {
		return nil, err
	}
	g, gc, err := t.remapTerm(r.G)
	if err != nil {
		return nil, err
	}
	if !sc && !pc && !oc && !gc {
		return r, nil
	}
	return &jelly.Quad{S: s, P: p, O: o, G: g}, nil
}

// remapTerm rewrites the lookup references inside term and reports whether
// anything changed.
func (t *Transcoder) remapTerm(term jelly.Term) (jelly.Term, bool, error) {
	switch v := term.(type) {
	case nil, jelly.BlankNode, jelly.DefaultGraph:
		return term, false, nil
	case jelly.Iri:
		out, err := t.remapIri(v)
		if err != nil {
			return nil, false, err
		}
		return out, out != v, nil
	case jelly.Literal:
		if v.Datatype == 0 {
			return term, false, nil
		}
		dt, err := t.datatypes.get(v.Datatype)
		if err != nil {
			return nil, false, err
		}
		if dt == v.Datatype {
			return term, false, nil
		}
		return jelly.Literal{Lex: v.Lex, LangTag: v.LangTag, Datatype: dt}, true, nil
	case jelly.TripleTerm:
		s, sc, err := t.remapTerm(v.S)
		if err != nil {
			return nil, false, err
		}
		p, pc, err := t.remapTerm(v.P)
		if err != nil {
			return nil, false, err
		}
		o, oc, err := t.remapTerm(v.O)
		if err != nil {
			return nil, false, err
		}
		if !sc && !pc && !oc {
			return term, false, nil
		}
		return jelly.TripleTerm{S: s, P: p, O: o}, true, nil
	default:
		return nil, false, jelly.Transcodingf("cannot transcode %s term", jelly.TermKind(term))
	}
}

// remapIri resolves an input IRI reference against the input cursors, maps
// both IDs and compresses the result against the output cursors.
func (t *Transcoder) remapIri(in jelly.Iri) (jelly.Iri, error) {
	nameID := in.NameID
	if nameID == 0 {
		nameID = t.lastInName + 1
	}
	prefixID := in.PrefixID
	if prefixID == 0 {
		prefixID = t.lastInPrefix
	}

	outName, err := t.names.get(nameID)
	if err != nil {
		return jelly.Iri{}, err
	}
	var outPrefix uint32
	if len(t.prefixes.remap) > 0 {
		if prefixID == 0 {
			return jelly.Iri{}, jelly.Deserializationf("invalid IRI reference, no prefix")
		}
		if outPrefix, err = t.prefixes.get(prefixID); err != nil {
			return jelly.Iri{}, err
		}
	}
	t.lastInName, t.lastInPrefix = nameID, prefixID

	out := jelly.Iri{PrefixID: outPrefix, NameID: outName}
	if outPrefix == t.lastOutPrefix {
		out.PrefixID = 0
	}
	if outName == t.lastOutName+1 {
		out.NameID = 0
	}
	t.lastOutPrefix, t.lastOutName = outPrefix, outName
	return out, nil
}

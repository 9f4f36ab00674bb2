// Package decoding turns Jelly rows back into native RDF statements.
//
// Every decoder starts in a state where only an options row is legal. The
// first options row is checked against the configured ceiling and freezes
// the lookup table capacities for the rest of the stream. Entry rows always
// go to the shared tables; statement rows are routed to a handler according
// to the decoder variant.
package decoding

import (
	"github.com/aleksaelezovic/jelly/pkg/jelly"
)

// Config is shared by every decoder variant.
type Config struct {
	// Supported is the ceiling incoming options are checked against.
	// Nil means jelly.DefaultSupportedOptions().
	Supported *jelly.StreamOptions
	// ExpectedLogicalType pins the logical type the stream must declare
	// (or a subtype of it). LogicalUnspecified accepts any.
	ExpectedLogicalType jelly.LogicalStreamType
}

// Decoder consumes rows of one stream.
type Decoder interface {
	// Ingest processes a single row.
	Ingest(row jelly.Row) error
	// IngestFrame processes the rows of a frame in order, stopping at the
	// first error.
	IngestFrame(frame jelly.Frame) error
	// Options returns the options of the stream, or nil before the first
	// options row.
	Options() *jelly.StreamOptions
}

// last holds the previous value of one statement role.
type last[N any] struct {
	value N
	set   bool
}

// base is the state shared by all decoder variants: options negotiation,
// lookup tables and the repeated-role holders.
type base[N any] struct {
	conv      jelly.DecoderConverter[N]
	supported *jelly.StreamOptions
	expected  jelly.LogicalStreamType
	physical  jelly.PhysicalStreamType

	opts  *jelly.StreamOptions
	terms *TermDecoder[N]
	ns    jelly.NamespaceHandler[N]

	subject, predicate, object last[N]
	graph                      last[N]
}

func newBase[N any](conv jelly.DecoderConverter[N], physical jelly.PhysicalStreamType, handler any, cfg Config) base[N] {
	supported := cfg.Supported
	if supported == nil {
		supported = jelly.DefaultSupportedOptions()
	}
	b := base[N]{
		conv:      conv,
		supported: supported,
		expected:  cfg.ExpectedLogicalType,
		physical:  physical,
	}
	if nh, ok := handler.(jelly.NamespaceHandler[N]); ok {
		b.ns = nh
	}
	return b
}

// Options returns a copy of the latest options row, or nil.
func (b *base[N]) Options() *jelly.StreamOptions {
	if b.opts == nil {
		return nil
	}
	return b.opts.Clone()
}

// ingestCommon handles the rows every variant treats the same way. It
// reports whether row was consumed; statement rows are left to the caller,
// but only once an options row has been seen.
func (b *base[N]) ingestCommon(row jelly.Row) (bool, error) {
	if o, ok := row.(*jelly.StreamOptions); ok {
		return true, b.handleOptions(o)
	}
	if b.terms == nil {
		return true, jelly.Deserializationf("%s row received before the stream options", jelly.RowKind(row))
	}
	switch r := row.(type) {
	case *jelly.NameEntry:
		return true, b.terms.UpdateName(r)
	case *jelly.PrefixEntry:
		return true, b.terms.UpdatePrefix(r)
	case *jelly.DatatypeEntry:
		return true, b.terms.UpdateDatatype(r)
	case *jelly.NamespaceDeclaration:
		return true, b.handleNamespace(r)
	case nil:
		return true, jelly.Deserializationf("empty row")
	}
	return false, nil
}

func (b *base[N]) handleOptions(o *jelly.StreamOptions) error {
	if err := jelly.CheckCompatibility(o, b.supported); err != nil {
		return err
	}
	if err := o.Validate(); err != nil {
		return err
	}
	if b.physical != jelly.PhysicalUnspecified && o.PhysicalType != b.physical {
		return &jelly.OptionsError{
			Field:  jelly.FieldPhysicalType,
			Reason: "decoder expects " + b.physical.String() + ", stream declares " + o.PhysicalType.String(),
		}
	}
	if err := jelly.CheckLogicalStreamType(o, b.expected); err != nil {
		return err
	}

	if b.opts == nil {
		b.terms = NewTermDecoder(b.conv, o)
		b.opts = o.Clone()
		return nil
	}

	// Table capacities stay as set by the first options row.
	if o.PhysicalType != b.opts.PhysicalType {
		return &jelly.OptionsError{
			Field:  jelly.FieldPhysicalType,
			Reason: "stream switched from " + b.opts.PhysicalType.String() + " to " + o.PhysicalType.String(),
		}
	}
	if err := checkFrozenSize(jelly.FieldNameTableSize, o.MaxNameTableSize, b.opts.MaxNameTableSize); err != nil {
		return err
	}
	if err := checkFrozenSize(jelly.FieldPrefixTableSize, o.MaxPrefixTableSize, b.opts.MaxPrefixTableSize); err != nil {
		return err
	}
	if err := checkFrozenSize(jelly.FieldDatatypeTableSize, o.MaxDatatypeTableSize, b.opts.MaxDatatypeTableSize); err != nil {
		return err
	}
	frozen := b.opts
	b.opts = o.Clone()
	b.opts.MaxNameTableSize = frozen.MaxNameTableSize
	b.opts.MaxPrefixTableSize = frozen.MaxPrefixTableSize
	b.opts.MaxDatatypeTableSize = frozen.MaxDatatypeTableSize
	return nil
}

func checkFrozenSize(field string, requested, frozen uint32) error {
	if requested > frozen {
		return &jelly.OptionsError{
			Field:  field,
			Reason: "repeated options row grows the table beyond the size fixed by the first options row",
		}
	}
	return nil
}

func (b *base[N]) handleNamespace(r *jelly.NamespaceDeclaration) error {
	iri, err := b.terms.DecodeIri(r.Value)
	if err != nil {
		return err
	}
	if b.ns == nil {
		return nil
	}
	return b.ns.HandleNamespace(r.Name, iri)
}

// resolve returns the state of one role after a statement. A nil term
// repeats the previous value of the role.
func (b *base[N]) resolve(r last[N], t jelly.Term, role string) (last[N], error) {
	if t == nil {
		if !r.set {
			return last[N]{}, jelly.Deserializationf("%s omitted but no previous %s exists", role, role)
		}
		return r, nil
	}
	v, err := b.terms.DecodeSpo(t)
	if err != nil {
		return last[N]{}, err
	}
	return last[N]{value: v, set: true}, nil
}

func (b *base[N]) resolveGraph(t jelly.Term) (last[N], error) {
	if t == nil {
		if !b.graph.set {
			return last[N]{}, jelly.Deserializationf("graph omitted but no previous graph exists")
		}
		return b.graph, nil
	}
	g, err := b.terms.DecodeGraph(t)
	if err != nil {
		return last[N]{}, err
	}
	return last[N]{value: g, set: true}, nil
}

func (b *base[N]) decodeSPO(s, p, o jelly.Term) (sl, pl, ol last[N], err error) {
	if sl, err = b.resolve(b.subject, s, "subject"); err != nil {
		return
	}
	if pl, err = b.resolve(b.predicate, p, "predicate"); err != nil {
		return
	}
	ol, err = b.resolve(b.object, o, "object")
	return
}

// resolveSPO decodes a triple. The remembered roles change only when every
// role decodes.
func (b *base[N]) resolveSPO(s, p, o jelly.Term) (sn, pn, on N, err error) {
	sl, pl, ol, err := b.decodeSPO(s, p, o)
	if err != nil {
		return
	}
	b.subject, b.predicate, b.object = sl, pl, ol
	return sl.value, pl.value, ol.value, nil
}

func (b *base[N]) resolveQuad(s, p, o, g jelly.Term) (sn, pn, on, gn N, err error) {
	sl, pl, ol, err := b.decodeSPO(s, p, o)
	if err != nil {
		return
	}
	gl, err := b.resolveGraph(g)
	if err != nil {
		return
	}
	b.subject, b.predicate, b.object, b.graph = sl, pl, ol, gl
	return sl.value, pl.value, ol.value, gl.value, nil
}

func ingestFrame(d Decoder, frame jelly.Frame) error {
	for _, row := range frame.Rows {
		if err := d.Ingest(row); err != nil {
			return err
		}
	}
	return nil
}

func unexpectedRow(row jelly.Row, physical jelly.PhysicalStreamType) error {
	return jelly.Deserializationf("unexpected %s row in a %s stream", jelly.RowKind(row), physical)
}

package decoding

import (
	"github.com/aleksaelezovic/jelly/pkg/jelly"
)

// AnyStatementDecoder decodes a stream of any physical type. The first
// options row picks the delegate: TRIPLES streams go to a TriplesDecoder,
// QUADS streams to a QuadsDecoder and GRAPHS streams are flattened by a
// GraphsAsQuadsDecoder. The delegate is fixed for the rest of the stream.
type AnyStatementDecoder[N any] struct {
	conv     jelly.DecoderConverter[N]
	handler  jelly.StatementHandler[N]
	cfg      Config
	delegate Decoder
}

// NewAnyStatementDecoder creates a decoder that passes triples and quads to handler.
func NewAnyStatementDecoder[N any](conv jelly.DecoderConverter[N], handler jelly.StatementHandler[N], cfg Config) *AnyStatementDecoder[N] {
	return &AnyStatementDecoder[N]{conv: conv, handler: handler, cfg: cfg}
}

func (d *AnyStatementDecoder[N]) Ingest(row jelly.Row) error {
	if d.delegate == nil {
		o, ok := row.(*jelly.StreamOptions)
		if !ok {
			return jelly.Deserializationf("%s row received before the stream options", jelly.RowKind(row))
		}
		switch o.PhysicalType {
		case jelly.PhysicalTriples:
			d.delegate = NewTriplesDecoder(d.conv, jelly.TripleHandler[N](d.handler), d.cfg)
		case jelly.PhysicalQuads:
			d.delegate = NewQuadsDecoder(d.conv, jelly.QuadHandler[N](d.handler), d.cfg)
		case jelly.PhysicalGraphs:
			d.delegate = NewGraphsAsQuadsDecoder(d.conv, jelly.QuadHandler[N](d.handler), d.cfg)
		default:
			return &jelly.OptionsError{
				Field:  jelly.FieldPhysicalType,
				Reason: "physical type " + o.PhysicalType.String() + " is not a stream type",
			}
		}
		if err := d.delegate.Ingest(row); err != nil {
			d.delegate = nil
			return err
		}
		return nil
	}
	return d.delegate.Ingest(row)
}

func (d *AnyStatementDecoder[N]) IngestFrame(frame jelly.Frame) error {
	return ingestFrame(d, frame)
}

// Options returns the options of the stream, or nil before the first options row.
func (d *AnyStatementDecoder[N]) Options() *jelly.StreamOptions {
	if d.delegate == nil {
		return nil
	}
	return d.delegate.Options()
}

var _ Decoder = (*AnyStatementDecoder[any])(nil)

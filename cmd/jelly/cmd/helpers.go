package cmd

import (
	"fmt"
	"strings"

	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aleksaelezovic/jelly/internal/metrics"
	"github.com/aleksaelezovic/jelly/pkg/decoding"
	"github.com/aleksaelezovic/jelly/pkg/jelly"
	"github.com/aleksaelezovic/jelly/pkg/rdf"
	"github.com/aleksaelezovic/jelly/pkg/rdfconv"
)

func parseStreamID(s string) (ksuid.KSUID, error) {
	id, err := ksuid.Parse(s)
	if err != nil {
		return ksuid.Nil, fmt.Errorf("invalid stream id %q: %w", s, err)
	}
	return id, nil
}

func parsePhysicalType(s string) (jelly.PhysicalStreamType, error) {
	switch strings.ToLower(s) {
	case "triples":
		return jelly.PhysicalTriples, nil
	case "quads":
		return jelly.PhysicalQuads, nil
	case "graphs":
		return jelly.PhysicalGraphs, nil
	}
	return jelly.PhysicalUnspecified, fmt.Errorf("unknown physical stream type %q (want triples, quads or graphs)", s)
}

// streamOptions returns the configured stream options, with the preset
// replaced when the command has a --preset flag set.
func streamOptions(cmd *cobra.Command, a *app) (*jelly.StreamOptions, error) {
	s := a.cfg.Stream
	if f := cmd.Flags().Lookup("preset"); f != nil && f.Changed {
		s.Preset = f.Value.String()
		s.MaxNameTableSize, s.MaxPrefixTableSize, s.MaxDatatypeTableSize = 0, 0, 0
	}
	return s.Options()
}

// decodeStream feeds every stored frame of stream id through a decoder of
// any physical type and returns the stream options it saw.
func decodeStream(a *app, id ksuid.KSUID, handler jelly.StatementHandler[rdf.Term], cfg decoding.Config) (*jelly.StreamOptions, error) {
	d := decoding.NewAnyStatementDecoder[rdf.Term](rdfconv.New(), handler, cfg)
	err := a.store.ForEachFrame(id, func(frame jelly.Frame) error {
		for _, row := range frame.Rows {
			a.metrics.RecordRow(metrics.DirectionIn, jelly.RowKind(row))
		}
		return d.IngestFrame(frame)
	})
	return d.Options(), err
}

// nquadsHandler writes decoded statements as N-Quads.
type nquadsHandler struct {
	w          *rdf.NQuadsWriter
	log        *zap.Logger
	statements int
}

func (h *nquadsHandler) HandleTriple(s, p, o rdf.Term) error {
	h.statements++
	return h.w.WriteTriple(rdf.NewTriple(s, p, o))
}

func (h *nquadsHandler) HandleQuad(s, p, o, g rdf.Term) error {
	h.statements++
	return h.w.WriteQuad(rdf.NewQuad(s, p, o, g))
}

func (h *nquadsHandler) HandleNamespace(name string, iri rdf.Term) error {
	h.log.Debug("namespace declared", zap.String("prefix", name), zap.String("iri", rdf.FormatTerm(iri)))
	return nil
}

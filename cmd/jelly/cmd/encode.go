package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aleksaelezovic/jelly/pkg/encoding"
	"github.com/aleksaelezovic/jelly/pkg/jelly"
	"github.com/aleksaelezovic/jelly/pkg/rdf"
	"github.com/aleksaelezovic/jelly/pkg/rdfconv"
	"github.com/aleksaelezovic/jelly/pkg/store"
)

var encodeCmd = &cobra.Command{
	Use:   "encode [file]",
	Short: "Encode N-Quads into a new stored stream",
	Long: `Reads N-Quads from a file (or stdin when the file is omitted or "-")
and stores them as a new Jelly stream. The stream id is printed on success.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEncode,
}

func init() {
	encodeCmd.Flags().String("physical", "quads", "Physical stream type: triples, quads or graphs")
	encodeCmd.Flags().String("preset", "", "Options preset (overrides the config): "+strings.Join(jelly.PresetNames(), ", "))
	encodeCmd.Flags().String("name", "", "Stream name (defaults to the input file name)")
	encodeCmd.Flags().StringArray("prefix", nil, "Namespace declaration name=iri (repeatable)")
	rootCmd.AddCommand(encodeCmd)
}

func runEncode(cmd *cobra.Command, args []string) error {
	a := appFrom(cmd)

	physicalFlag, _ := cmd.Flags().GetString("physical")
	physical, err := parsePhysicalType(physicalFlag)
	if err != nil {
		return err
	}
	opts, err := streamOptions(cmd, a)
	if err != nil {
		return err
	}
	opts = opts.WithPhysicalType(physical)

	prefixes, _ := cmd.Flags().GetStringArray("prefix")
	namespaces, err := parsePrefixes(prefixes)
	if err != nil {
		return err
	}

	in := io.Reader(os.Stdin)
	source := "stdin"
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		in, source = f, args[0]
	}

	name, _ := cmd.Flags().GetString("name")
	if name == "" {
		name = filepath.Base(source)
	}
	if opts.StreamName == "" {
		opts = opts.WithStreamName(name)
	}
	id, err := a.store.CreateStream(store.StreamMeta{
		Name:         name,
		PhysicalType: physical.String(),
		LogicalType:  opts.LogicalType.String(),
	})
	if err != nil {
		return err
	}

	w := a.store.NewFrameWriter(id, a.cfg.Frames.MaxRows)
	enc, err := encoding.NewProtoEncoder[rdf.Term](rdfconv.New(), encoding.Params{
		Options:                     opts,
		EnableNamespaceDeclarations: len(namespaces) > 0 || a.cfg.Stream.NamespaceDeclarations,
		Sink:                        w,
	})
	if err != nil {
		return cleanupStream(a, id, err)
	}
	for _, ns := range namespaces {
		if err := enc.DeclareNamespace(ns.name, rdf.NewNamedNode(ns.iri)); err != nil {
			return cleanupStream(a, id, err)
		}
	}

	n, err := encodeQuads(enc, rdf.NewNQuadsReader(in), physical)
	if err != nil {
		return cleanupStream(a, id, fmt.Errorf("stream %s: %w", id, err))
	}
	if err := w.Flush(); err != nil {
		return cleanupStream(a, id, err)
	}

	info, err := a.store.Stream(id)
	if err != nil {
		return err
	}
	a.log.Info("stream encoded",
		zap.Stringer("stream", id),
		zap.String("source", source),
		zap.Stringer("physical", physical),
		zap.Int("statements", n),
		zap.Uint64("frames", info.Frames),
		zap.Uint64("rows", info.Rows),
		zap.Uint64("bytes", info.Bytes))
	fmt.Fprintln(cmd.OutOrStdout(), id)
	return nil
}

type namespace struct {
	name, iri string
}

func parsePrefixes(values []string) ([]namespace, error) {
	var out []namespace
	for _, v := range values {
		name, iri, ok := strings.Cut(v, "=")
		if !ok || iri == "" {
			return nil, fmt.Errorf("invalid prefix %q (want name=iri)", v)
		}
		out = append(out, namespace{name: name, iri: iri})
	}
	return out, nil
}

// encodeQuads writes every quad read from r. TRIPLES streams reject named
// graphs. GRAPHS streams open a new graph whenever the graph of consecutive
// quads changes.
func encodeQuads(enc *encoding.ProtoEncoder[rdf.Term], r *rdf.NQuadsReader, physical jelly.PhysicalStreamType) (int, error) {
	var (
		n       int
		current rdf.Term
	)
	for {
		q, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return n, err
		}

		switch physical {
		case jelly.PhysicalTriples:
			if q.Graph.Type() != rdf.TermTypeDefaultGraph {
				return n, fmt.Errorf("statement %d has a named graph, which a triples stream cannot carry", n+1)
			}
			err = enc.AddTriple(q.Subject, q.Predicate, q.Object)
		case jelly.PhysicalQuads:
			err = enc.AddQuad(q.Subject, q.Predicate, q.Object, q.Graph)
		case jelly.PhysicalGraphs:
			if current == nil || !current.Equals(q.Graph) {
				if err = switchGraph(enc, current, q.Graph); err != nil {
					return n, err
				}
				current = q.Graph
			}
			err = enc.AddTriple(q.Subject, q.Predicate, q.Object)
		}
		if err != nil {
			return n, err
		}
		n++
	}
	if physical == jelly.PhysicalGraphs && current != nil {
		return n, enc.EndGraph()
	}
	return n, nil
}

func switchGraph(enc *encoding.ProtoEncoder[rdf.Term], current, next rdf.Term) error {
	if current != nil {
		if err := enc.EndGraph(); err != nil {
			return err
		}
	}
	if next.Type() == rdf.TermTypeDefaultGraph {
		return enc.StartDefaultGraph()
	}
	return enc.StartGraph(next)
}

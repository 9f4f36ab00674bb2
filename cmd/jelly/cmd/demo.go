package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aleksaelezovic/jelly/pkg/decoding"
	"github.com/aleksaelezovic/jelly/pkg/encoding"
	"github.com/aleksaelezovic/jelly/pkg/jelly"
	"github.com/aleksaelezovic/jelly/pkg/rdf"
	"github.com/aleksaelezovic/jelly/pkg/rdfconv"
	"github.com/aleksaelezovic/jelly/pkg/store"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Encode, store and decode a small sample dataset",
	Args:  cobra.NoArgs,
	RunE:  runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)
}

func sampleQuads() []*rdf.Quad {
	alice := rdf.NewNamedNode("http://example.org/alice")
	bob := rdf.NewNamedNode("http://example.org/bob")
	carol := rdf.NewNamedNode("http://example.org/carol")

	knows := rdf.NewNamedNode("http://xmlns.com/foaf/0.1/knows")
	name := rdf.NewNamedNode("http://xmlns.com/foaf/0.1/name")
	age := rdf.NewNamedNode("http://xmlns.com/foaf/0.1/age")
	says := rdf.NewNamedNode("http://example.org/says")

	graph1 := rdf.NewNamedNode("http://example.org/graph1")
	graph2 := rdf.NewNamedNode("http://example.org/graph2")
	dg := rdf.NewDefaultGraph()

	return []*rdf.Quad{
		rdf.NewQuad(alice, name, rdf.NewLiteral("Alice"), dg),
		rdf.NewQuad(alice, age, rdf.NewIntegerLiteral(30), dg),
		rdf.NewQuad(alice, knows, bob, dg),

		rdf.NewQuad(bob, name, rdf.NewLiteralWithLanguage("Bob", "en"), dg),
		rdf.NewQuad(bob, age, rdf.NewIntegerLiteral(25), dg),
		rdf.NewQuad(bob, knows, carol, dg),

		rdf.NewQuad(carol, name, rdf.NewLiteral("Carol"), dg),
		rdf.NewQuad(carol, age, rdf.NewIntegerLiteral(28), dg),
		rdf.NewQuad(carol, says, rdf.NewTripleTerm(alice, knows, bob), dg),

		rdf.NewQuad(alice, name, rdf.NewLiteral("Alice in Graph1"), graph1),
		rdf.NewQuad(bob, name, rdf.NewLiteral("Bob in Graph1"), graph1),
		rdf.NewQuad(alice, name, rdf.NewLiteral("Alice in Graph2"), graph2),
		rdf.NewQuad(rdf.NewBlankNode("c"), name, rdf.NewLiteral("Carol in Graph2"), graph2),
	}
}

func runDemo(cmd *cobra.Command, args []string) error {
	a := appFrom(cmd)
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "=== Jelly demo ===")
	fmt.Fprintln(out)

	opts := jelly.SmallAllFeatures().
		WithPhysicalType(jelly.PhysicalQuads).
		WithLogicalType(jelly.LogicalFlatQuads).
		WithStreamName("demo")
	id, err := a.store.CreateStream(store.StreamMeta{
		Name:         "demo",
		PhysicalType: opts.PhysicalType.String(),
		LogicalType:  opts.LogicalType.String(),
		Labels:       map[string]string{"source": "demo"},
	})
	if err != nil {
		return err
	}

	// Small frames so the sample spans several of them.
	w := a.store.NewFrameWriter(id, 8)
	enc, err := encoding.NewProtoEncoder[rdf.Term](rdfconv.New(), encoding.Params{
		Options:                     opts,
		EnableNamespaceDeclarations: true,
		Sink:                        w,
	})
	if err != nil {
		return err
	}
	if err := enc.DeclareNamespace("foaf", rdf.NewNamedNode("http://xmlns.com/foaf/0.1/")); err != nil {
		return err
	}
	if err := enc.DeclareNamespace("ex", rdf.NewNamedNode("http://example.org/")); err != nil {
		return err
	}

	fmt.Fprintln(out, "Encoding sample data...")
	for _, q := range sampleQuads() {
		if err := enc.AddQuad(q.Subject, q.Predicate, q.Object, q.Graph); err != nil {
			return err
		}
		fmt.Fprintf(out, "  ✓ %s", rdf.FormatNQuad(q.Subject, q.Predicate, q.Object, q.Graph))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	info, err := a.store.Stream(id)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nStored stream %s: %d frames, %d rows, %d bytes\n\n", id, info.Frames, info.Rows, info.Bytes)

	fmt.Fprintln(out, "Decoding the stored stream...")
	h := &nquadsHandler{w: rdf.NewNQuadsWriter(out), log: a.log}
	decoded, err := decodeStream(a, id, h, decoding.Config{ExpectedLogicalType: jelly.LogicalFlatQuads})
	if ferr := h.w.Flush(); err == nil {
		err = ferr
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\n✓ %d statements decoded with %s\n", h.statements, decoded)
	return nil
}

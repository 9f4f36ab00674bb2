package decoding

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleksaelezovic/jelly/pkg/encoding"
	"github.com/aleksaelezovic/jelly/pkg/jelly"
	"github.com/aleksaelezovic/jelly/pkg/rdf"
	"github.com/aleksaelezovic/jelly/pkg/rdfconv"
)

type rdfCollector = Collector[rdf.Term, *rdf.Triple, *rdf.Quad]

func newCollector() *rdfCollector {
	return NewCollector[rdf.Term, *rdf.Triple, *rdf.Quad](rdfconv.New())
}

func ex(local string) *rdf.NamedNode {
	return rdf.NewNamedNode("http://example.org/" + local)
}

func sampleTriples() []*rdf.Triple {
	return []*rdf.Triple{
		rdf.NewTriple(ex("alice"), ex("name"), rdf.NewLiteral("Alice")),
		rdf.NewTriple(ex("alice"), ex("age"), rdf.NewIntegerLiteral(30)),
		rdf.NewTriple(ex("alice"), ex("knows"), ex("bob")),
		rdf.NewTriple(ex("bob"), ex("name"), rdf.NewLiteralWithLanguage("Bob", "en")),
		rdf.NewTriple(ex("bob"), ex("name"), rdf.NewLiteralWithLanguage("Robert", "fr")),
		rdf.NewTriple(rdf.NewBlankNode("b0"), rdf.NewNamedNode("http://xmlns.com/foaf/0.1/#nick"), rdf.NewLiteral("b")),
		rdf.NewTriple(ex("bob"), ex("score"), rdf.NewDoubleLiteral(1.5)),
		rdf.NewTriple(ex("bob"), ex("score"), rdf.NewLiteralWithDatatype("x", rdf.XSDString)),
		rdf.NewTriple(rdf.NewNamedNode("urn:isbn:123"), ex("title"), rdf.NewLiteral("")),
	}
}

func encodeTriples(t *testing.T, opts *jelly.StreamOptions, triples []*rdf.Triple) jelly.RowSlice {
	t.Helper()
	var rows jelly.RowSlice
	enc, err := encoding.NewProtoEncoder[rdf.Term](rdfconv.New(), encoding.Params{
		Options: opts.WithPhysicalType(jelly.PhysicalTriples),
		Sink:    &rows,
	})
	require.NoError(t, err)
	for _, tr := range triples {
		require.NoError(t, enc.AddTriple(tr.Subject, tr.Predicate, tr.Object))
	}
	return rows
}

func ingestAll(t *testing.T, d Decoder, rows []jelly.Row) {
	t.Helper()
	require.NoError(t, d.IngestFrame(jelly.Frame{Rows: rows}))
}

func assertTriples(t *testing.T, want, got []*rdf.Triple) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.True(t, want[i].Equals(got[i]), "triple %d: want %s, got %s", i, want[i], got[i])
	}
}

func assertQuads(t *testing.T, want, got []*rdf.Quad) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.True(t, want[i].Equals(got[i]), "quad %d: want %s, got %s", i, want[i], got[i])
	}
}

func TestTriplesRoundTrip(t *testing.T) {
	for _, name := range jelly.PresetNames() {
		t.Run(name, func(t *testing.T) {
			opts, err := jelly.PresetByName(name)
			require.NoError(t, err)
			rows := encodeTriples(t, opts, sampleTriples())

			c := newCollector()
			d := NewTriplesDecoder[rdf.Term](rdfconv.New(), c, Config{})
			ingestAll(t, d, rows)

			assertTriples(t, sampleTriples(), c.Triples)
			assert.Equal(t, jelly.PhysicalTriples, d.Options().PhysicalType)
		})
	}
}

func TestTriplesRoundTrip_NoPrefixTable(t *testing.T) {
	opts := jelly.SmallStrict()
	opts.MaxPrefixTableSize = 0
	rows := encodeTriples(t, opts, sampleTriples())

	c := newCollector()
	ingestAll(t, NewTriplesDecoder[rdf.Term](rdfconv.New(), c, Config{}), rows)
	assertTriples(t, sampleTriples(), c.Triples)
}

func TestTriplesRoundTrip_TableChurn(t *testing.T) {
	// more distinct names than the table holds forces evictions and reuse
	opts := &jelly.StreamOptions{MaxNameTableSize: 8, MaxPrefixTableSize: 3, MaxDatatypeTableSize: 2, Version: 1}
	var triples []*rdf.Triple
	for i := 0; i < 200; i++ {
		s := rdf.NewNamedNode(fmt.Sprintf("http://example.org/s/%d", i%13))
		p := rdf.NewNamedNode(fmt.Sprintf("http://example.org/p#%d", i%5))
		o := rdf.NewNamedNode(fmt.Sprintf("http://other%d.org/%d", i%2, i%17))
		triples = append(triples, rdf.NewTriple(s, p, o))
	}
	rows := encodeTriples(t, opts, triples)

	c := newCollector()
	ingestAll(t, NewTriplesDecoder[rdf.Term](rdfconv.New(), c, Config{}), rows)
	assertTriples(t, triples, c.Triples)
}

func TestTriplesRoundTrip_RdfStar(t *testing.T) {
	quoted := rdf.NewTripleTerm(ex("alice"), ex("knows"), ex("bob"))
	nested := rdf.NewTripleTerm(quoted, ex("source"), rdf.NewLiteral("x"))
	triples := []*rdf.Triple{
		rdf.NewTriple(quoted, ex("certainty"), rdf.NewDoubleLiteral(0.9)),
		rdf.NewTriple(quoted, ex("since"), rdf.NewIntegerLiteral(2001)),
		rdf.NewTriple(ex("claim"), ex("about"), nested),
	}
	rows := encodeTriples(t, jelly.SmallRdfStar(), triples)

	c := newCollector()
	ingestAll(t, NewTriplesDecoder[rdf.Term](rdfconv.New(), c, Config{}), rows)
	assertTriples(t, triples, c.Triples)
}

func TestTriplesRoundTrip_AfterFailedStatement(t *testing.T) {
	opts := jelly.SmallStrict().WithPhysicalType(jelly.PhysicalTriples)
	opts.MaxDatatypeTableSize = 0
	var rows jelly.RowSlice
	enc, err := encoding.NewProtoEncoder[rdf.Term](rdfconv.New(), encoding.Params{Options: opts, Sink: &rows})
	require.NoError(t, err)

	t1 := rdf.NewTriple(ex("a"), ex("b"), rdf.NewLiteral("1"))
	t3 := rdf.NewTriple(ex("c"), ex("d"), ex("e"))
	require.NoError(t, enc.AddTriple(t1.Subject, t1.Predicate, t1.Object))
	require.Error(t, enc.AddTriple(ex("x"), ex("y"), rdf.NewIntegerLiteral(2)))
	require.NoError(t, enc.AddTriple(t3.Subject, t3.Predicate, t3.Object))

	c := newCollector()
	ingestAll(t, NewTriplesDecoder[rdf.Term](rdfconv.New(), c, Config{}), rows)
	assertTriples(t, []*rdf.Triple{t1, t3}, c.Triples)
}

func TestTriplesRoundTrip_QuotedTripleFillsNameTable(t *testing.T) {
	opts := &jelly.StreamOptions{MaxNameTableSize: jelly.MinNameTableSize, RdfStar: true, Version: 1}
	var rows jelly.RowSlice
	enc, err := encoding.NewProtoEncoder[rdf.Term](rdfconv.New(), encoding.Params{
		Options: opts.WithPhysicalType(jelly.PhysicalTriples),
		Sink:    &rows,
	})
	require.NoError(t, err)

	n := func(i int) rdf.Term { return rdf.NewNamedNode(fmt.Sprintf("http://n.org/%d", i)) }
	q := func(i int) rdf.Term { return rdf.NewNamedNode(fmt.Sprintf("http://q.org/%d", i)) }
	quoted := func(last rdf.Term) rdf.Term {
		return rdf.NewTripleTerm(
			rdf.NewTripleTerm(q(0), q(1), q(2)),
			q(3),
			rdf.NewTripleTerm(q(4), q(5), last))
	}
	want := []*rdf.Triple{
		rdf.NewTriple(n(0), n(1), n(2)),
		rdf.NewTriple(n(3), n(4), n(5)),
		rdf.NewTriple(n(6), n(7), rdf.NewLiteral("full")),
		// eight distinct names in one statement replace the whole table
		rdf.NewTriple(quoted(q(0)), q(6), q(7)),
	}
	for _, tr := range want {
		require.NoError(t, enc.AddTriple(tr.Subject, tr.Predicate, tr.Object))
	}

	// a ninth name would have to evict a slot the statement already uses
	err = enc.AddTriple(quoted(q(6)), q(7), q(8))
	require.ErrorIs(t, err, jelly.ErrSerialization)

	after := rdf.NewTriple(q(8), q(0), rdf.NewLiteral("after"))
	require.NoError(t, enc.AddTriple(after.Subject, after.Predicate, after.Object))
	want = append(want, after)

	c := newCollector()
	ingestAll(t, NewTriplesDecoder[rdf.Term](rdfconv.New(), c, Config{}), rows)
	assertTriples(t, want, c.Triples)
}

func TestTriplesRoundTrip_SinglePrefixSlot(t *testing.T) {
	opts := &jelly.StreamOptions{MaxNameTableSize: jelly.MinNameTableSize, MaxPrefixTableSize: 1, Version: 1}
	var rows jelly.RowSlice
	enc, err := encoding.NewProtoEncoder[rdf.Term](rdfconv.New(), encoding.Params{
		Options: opts.WithPhysicalType(jelly.PhysicalTriples),
		Sink:    &rows,
	})
	require.NoError(t, err)

	want := []*rdf.Triple{
		rdf.NewTriple(rdf.NewNamedNode("http://a.org/x"), rdf.NewNamedNode("http://a.org/sub/y"), rdf.NewLiteral("z")),
		rdf.NewTriple(rdf.NewNamedNode("http://b.org/x"), rdf.NewNamedNode("http://b.org/y"), rdf.NewLiteral("z")),
	}
	for _, tr := range want {
		require.NoError(t, enc.AddTriple(tr.Subject, tr.Predicate, tr.Object))
	}
	err = enc.AddTriple(rdf.NewNamedNode("http://a.org/x"), rdf.NewNamedNode("http://b.org/y"), rdf.NewLiteral("z"))
	require.ErrorIs(t, err, jelly.ErrSerialization, "two prefixes cannot share one slot")

	c := newCollector()
	ingestAll(t, NewTriplesDecoder[rdf.Term](rdfconv.New(), c, Config{}), rows)
	assertTriples(t, want, c.Triples)
}

func TestQuadsRoundTrip(t *testing.T) {
	g1 := ex("graph1")
	quads := []*rdf.Quad{
		rdf.NewQuad(ex("a"), ex("p"), rdf.NewLiteral("1"), rdf.NewDefaultGraph()),
		rdf.NewQuad(ex("a"), ex("p"), rdf.NewLiteral("2"), rdf.NewDefaultGraph()),
		rdf.NewQuad(ex("a"), ex("p"), rdf.NewLiteral("3"), g1),
		rdf.NewQuad(ex("b"), ex("p"), rdf.NewLiteral("4"), g1),
		rdf.NewQuad(ex("b"), ex("p"), rdf.NewLiteral("5"), rdf.NewBlankNode("g2")),
		rdf.NewQuad(ex("b"), ex("p"), rdf.NewLiteral("6"), rdf.NewDefaultGraph()),
	}

	var rows jelly.RowSlice
	enc, err := encoding.NewProtoEncoder[rdf.Term](rdfconv.New(), encoding.Params{
		Options: jelly.SmallStrict().WithPhysicalType(jelly.PhysicalQuads),
		Sink:    &rows,
	})
	require.NoError(t, err)
	for _, q := range quads {
		require.NoError(t, enc.AddQuad(q.Subject, q.Predicate, q.Object, q.Graph))
	}

	c := newCollector()
	ingestAll(t, NewQuadsDecoder[rdf.Term](rdfconv.New(), c, Config{}), rows)
	assertQuads(t, quads, c.Quads)

	flat := newCollector()
	ingestAll(t, NewAnyStatementDecoder[rdf.Term](rdfconv.New(), flat, Config{}), rows)
	assertQuads(t, quads, flat.Quads)
}

func encodeGraphs(t *testing.T) (jelly.RowSlice, []*rdf.Quad) {
	t.Helper()
	var rows jelly.RowSlice
	enc, err := encoding.NewProtoEncoder[rdf.Term](rdfconv.New(), encoding.Params{
		Options: jelly.SmallStrict().WithPhysicalType(jelly.PhysicalGraphs),
		Sink:    &rows,
	})
	require.NoError(t, err)

	require.NoError(t, enc.StartGraph(ex("g1")))
	require.NoError(t, enc.AddTriple(ex("a"), ex("p"), ex("b")))
	require.NoError(t, enc.AddTriple(ex("a"), ex("p"), ex("c")))
	require.NoError(t, enc.EndGraph())
	require.NoError(t, enc.StartDefaultGraph())
	require.NoError(t, enc.AddTriple(ex("a"), ex("p"), ex("d")))
	require.NoError(t, enc.EndGraph())

	want := []*rdf.Quad{
		rdf.NewQuad(ex("a"), ex("p"), ex("b"), ex("g1")),
		rdf.NewQuad(ex("a"), ex("p"), ex("c"), ex("g1")),
		rdf.NewQuad(ex("a"), ex("p"), ex("d"), rdf.NewDefaultGraph()),
	}
	return rows, want
}

func TestGraphsAsQuads(t *testing.T) {
	rows, want := encodeGraphs(t)

	c := newCollector()
	ingestAll(t, NewGraphsAsQuadsDecoder[rdf.Term](rdfconv.New(), c, Config{}), rows)
	assertQuads(t, want, c.Quads)

	flat := newCollector()
	ingestAll(t, NewAnyStatementDecoder[rdf.Term](rdfconv.New(), flat, Config{}), rows)
	assertQuads(t, want, flat.Quads)
}

type graphEvents struct {
	events []string
}

func (g *graphEvents) HandleGraphStart(graph rdf.Term) error {
	g.events = append(g.events, "start "+graph.String())
	return nil
}

func (g *graphEvents) HandleTriple(s, p, o rdf.Term) error {
	g.events = append(g.events, "triple "+o.String())
	return nil
}

func (g *graphEvents) HandleGraphEnd() error {
	g.events = append(g.events, "end")
	return nil
}

func TestGraphsDecoder(t *testing.T) {
	rows, _ := encodeGraphs(t)

	h := &graphEvents{}
	ingestAll(t, NewGraphsDecoder[rdf.Term](rdfconv.New(), h, Config{}), rows)
	assert.Equal(t, []string{
		"start <http://example.org/g1>",
		"triple <http://example.org/b>",
		"triple <http://example.org/c>",
		"end",
		"start DEFAULT",
		"triple <http://example.org/d>",
		"end",
	}, h.events)
}

func TestGraphsDecoder_Errors(t *testing.T) {
	opts := jelly.SmallStrict().WithPhysicalType(jelly.PhysicalGraphs)
	b := jelly.BlankNode{Label: "b"}

	tests := []struct {
		name string
		rows []jelly.Row
	}{
		{"end without start", []jelly.Row{opts, &jelly.GraphEnd{}}},
		{"triple outside graph", []jelly.Row{opts, &jelly.Triple{S: b, P: b, O: b}}},
		{"triple after end", []jelly.Row{opts, &jelly.GraphStart{G: b}, &jelly.GraphEnd{}, &jelly.Triple{S: b, P: b, O: b}}},
		{"nested start", []jelly.Row{opts, &jelly.GraphStart{G: b}, &jelly.GraphStart{G: b}}},
		{"quad row", []jelly.Row{opts, &jelly.Quad{S: b, P: b, O: b, G: b}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewGraphsDecoder[rdf.Term](rdfconv.New(), &graphEvents{}, Config{})
			err := d.IngestFrame(jelly.Frame{Rows: tt.rows})
			require.Error(t, err)
			assert.ErrorIs(t, err, jelly.ErrDeserialization)
		})
	}
}

func TestDecoder_OptionsStateMachine(t *testing.T) {
	b := jelly.BlankNode{Label: "b"}
	triples := jelly.SmallStrict().WithPhysicalType(jelly.PhysicalTriples)

	t.Run("row before options", func(t *testing.T) {
		d := NewTriplesDecoder[rdf.Term](rdfconv.New(), newCollector(), Config{})
		err := d.Ingest(&jelly.Triple{S: b, P: b, O: b})
		assert.ErrorIs(t, err, jelly.ErrDeserialization)
		assert.Nil(t, d.Options())
	})

	t.Run("physical type mismatch", func(t *testing.T) {
		d := NewQuadsDecoder[rdf.Term](rdfconv.New(), newCollector(), Config{})
		err := d.Ingest(triples)
		var optErr *jelly.OptionsError
		require.ErrorAs(t, err, &optErr)
		assert.Equal(t, jelly.FieldPhysicalType, optErr.Field)
	})

	t.Run("exceeds supported ceiling", func(t *testing.T) {
		d := NewTriplesDecoder[rdf.Term](rdfconv.New(), newCollector(), Config{Supported: jelly.SmallStrict().WithPhysicalType(jelly.PhysicalTriples)})
		err := d.Ingest(jelly.BigStrict().WithPhysicalType(jelly.PhysicalTriples))
		var optErr *jelly.OptionsError
		require.ErrorAs(t, err, &optErr)
		assert.Equal(t, jelly.FieldNameTableSize, optErr.Field)
		assert.Equal(t, jelly.ErrCodeIncompatibleOptions, jelly.Code(err))
	})

	t.Run("expected logical type", func(t *testing.T) {
		d := NewTriplesDecoder[rdf.Term](rdfconv.New(), newCollector(), Config{ExpectedLogicalType: jelly.LogicalGraphs})
		err := d.Ingest(triples.WithLogicalType(jelly.LogicalFlatTriples))
		var optErr *jelly.OptionsError
		require.ErrorAs(t, err, &optErr)
		assert.Equal(t, jelly.FieldLogicalType, optErr.Field)
	})

	t.Run("repeated options may not grow tables", func(t *testing.T) {
		d := NewTriplesDecoder[rdf.Term](rdfconv.New(), newCollector(), Config{})
		require.NoError(t, d.Ingest(triples))
		require.NoError(t, d.Ingest(triples.WithStreamName("again")))
		assert.Equal(t, "again", d.Options().StreamName)

		bigger := triples.Clone()
		bigger.MaxNameTableSize *= 2
		var optErr *jelly.OptionsError
		require.ErrorAs(t, d.Ingest(bigger), &optErr)
		assert.Equal(t, jelly.FieldNameTableSize, optErr.Field)
	})

	t.Run("any decoder keeps its delegate", func(t *testing.T) {
		d := NewAnyStatementDecoder[rdf.Term](rdfconv.New(), newCollector(), Config{})
		require.NoError(t, d.Ingest(triples))
		err := d.Ingest(triples.WithPhysicalType(jelly.PhysicalQuads))
		var optErr *jelly.OptionsError
		require.ErrorAs(t, err, &optErr)
		assert.Equal(t, jelly.FieldPhysicalType, optErr.Field)
	})
}

func TestDecoder_MalformedRows(t *testing.T) {
	opts := jelly.SmallStrict().WithPhysicalType(jelly.PhysicalTriples)
	b := jelly.BlankNode{Label: "b"}

	tests := []struct {
		name string
		rows []jelly.Row
	}{
		{"omitted subject without previous", []jelly.Row{opts, &jelly.Triple{P: b, O: b}}},
		{"unset name", []jelly.Row{opts, &jelly.PrefixEntry{Value: "http://e/"}, &jelly.Triple{S: jelly.Iri{PrefixID: 1, NameID: 3}, P: b, O: b}}},
		{"unset datatype", []jelly.Row{opts, &jelly.Triple{S: b, P: b, O: jelly.Literal{Lex: "1", Datatype: 2}}}},
		{"name id out of range", []jelly.Row{opts, &jelly.NameEntry{ID: 129, Value: "x"}}},
		{"iri without prefix", []jelly.Row{opts, &jelly.NameEntry{Value: "x"}, &jelly.Triple{S: jelly.Iri{NameID: 1}, P: b, O: b}}},
		{"default graph as subject", []jelly.Row{opts, &jelly.Triple{S: jelly.DefaultGraph{}, P: b, O: b}}},
		{"quad in triples stream", []jelly.Row{opts, &jelly.Quad{S: b, P: b, O: b, G: b}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewTriplesDecoder[rdf.Term](rdfconv.New(), newCollector(), Config{})
			err := d.IngestFrame(jelly.Frame{Rows: tt.rows})
			require.Error(t, err)
			assert.Equal(t, jelly.ErrCodeDeserialization, jelly.Code(err))
		})
	}
}

func TestDecoder_FailedRowKeepsPreviousRoles(t *testing.T) {
	a, b := jelly.BlankNode{Label: "a"}, jelly.BlankNode{Label: "b"}
	lit := jelly.Literal{Lex: "x"}
	missingDt := jelly.Literal{Lex: "1", Datatype: 3}

	t.Run("triples", func(t *testing.T) {
		c := newCollector()
		d := NewTriplesDecoder[rdf.Term](rdfconv.New(), c, Config{})
		require.NoError(t, d.Ingest(jelly.SmallStrict().WithPhysicalType(jelly.PhysicalTriples)))
		require.NoError(t, d.Ingest(&jelly.Triple{S: a, P: a, O: lit}))

		err := d.Ingest(&jelly.Triple{S: b, P: b, O: missingDt})
		require.ErrorIs(t, err, jelly.ErrDeserialization)

		require.NoError(t, d.Ingest(&jelly.Triple{O: b}))
		want := rdf.NewTriple(rdf.NewBlankNode("a"), rdf.NewBlankNode("a"), rdf.NewBlankNode("b"))
		require.Len(t, c.Triples, 2)
		assert.True(t, want.Equals(c.Triples[1]), "got %s", c.Triples[1])
	})

	t.Run("quads", func(t *testing.T) {
		c := newCollector()
		d := NewQuadsDecoder[rdf.Term](rdfconv.New(), c, Config{})
		require.NoError(t, d.Ingest(jelly.SmallStrict().WithPhysicalType(jelly.PhysicalQuads)))
		require.NoError(t, d.Ingest(&jelly.Quad{S: a, P: a, O: a, G: a}))

		err := d.Ingest(&jelly.Quad{S: b, P: b, O: b, G: missingDt})
		require.ErrorIs(t, err, jelly.ErrDeserialization)

		require.NoError(t, d.Ingest(&jelly.Quad{O: lit}))
		ba := rdf.NewBlankNode("a")
		want := rdf.NewQuad(ba, ba, rdf.NewLiteral("x"), ba)
		require.Len(t, c.Quads, 2)
		assert.True(t, want.Equals(c.Quads[1]), "got %s", c.Quads[1])
	})
}

func TestDecoder_PrefixTableDisabled(t *testing.T) {
	opts := jelly.SmallStrict().WithPhysicalType(jelly.PhysicalTriples)
	opts.MaxPrefixTableSize = 0
	d := NewTriplesDecoder[rdf.Term](rdfconv.New(), newCollector(), Config{})
	require.NoError(t, d.Ingest(opts))
	assert.ErrorIs(t, d.Ingest(&jelly.PrefixEntry{Value: "http://e/"}), jelly.ErrDeserialization)
}

func TestDecoder_Namespaces(t *testing.T) {
	var rows jelly.RowSlice
	enc, err := encoding.NewProtoEncoder[rdf.Term](rdfconv.New(), encoding.Params{
		Options:                     jelly.SmallStrict().WithPhysicalType(jelly.PhysicalTriples),
		EnableNamespaceDeclarations: true,
		Sink:                        &rows,
	})
	require.NoError(t, err)
	require.NoError(t, enc.DeclareNamespace("ex", ex("")))
	require.NoError(t, enc.AddTriple(ex("a"), ex("b"), ex("c")))
	require.NoError(t, enc.DeclareNamespace("foaf", rdf.NewNamedNode("http://xmlns.com/foaf/0.1/")))

	c := newCollector()
	ingestAll(t, NewTriplesDecoder[rdf.Term](rdfconv.New(), c, Config{}), rows)

	require.Len(t, c.Namespaces, 2)
	assert.Equal(t, "ex", c.Namespaces[0].Name)
	assert.True(t, ex("").Equals(c.Namespaces[0].IRI))
	assert.Equal(t, "foaf", c.Namespaces[1].Name)
	assert.True(t, rdf.NewNamedNode("http://xmlns.com/foaf/0.1/").Equals(c.Namespaces[1].IRI))
	assertTriples(t, []*rdf.Triple{rdf.NewTriple(ex("a"), ex("b"), ex("c"))}, c.Triples)
}

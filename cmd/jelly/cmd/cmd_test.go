package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleksaelezovic/jelly/pkg/encoding"
	"github.com/aleksaelezovic/jelly/pkg/jelly"
	"github.com/aleksaelezovic/jelly/pkg/rdf"
	"github.com/aleksaelezovic/jelly/pkg/rdfconv"
)

const sampleNQuads = `<http://example.org/a> <http://example.org/p> "one" .
<http://example.org/a> <http://example.org/p> "two"@en <http://example.org/g1> .
<http://example.org/b> <http://example.org/p> <http://example.org/a> <http://example.org/g1> .
_:x <http://example.org/q> "3"^^<http://www.w3.org/2001/XMLSchema#integer> <http://example.org/g2> .
`

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute(), "jelly %s", strings.Join(args, " "))
	return out.String()
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.nq")
	require.NoError(t, os.WriteFile(input, []byte(sampleNQuads), 0o600))
	data := filepath.Join(dir, "data")

	want, err := rdf.ParseNQuads(sampleNQuads)
	require.NoError(t, err)

	for _, physical := range []string{"quads", "graphs"} {
		t.Run(physical, func(t *testing.T) {
			id := strings.TrimSpace(run(t, "-d", data, "--log-level", "error", "encode", input, "--physical", physical))
			_, err := parseStreamID(id)
			require.NoError(t, err)

			got, err := rdf.ParseNQuads(run(t, "-d", data, "--log-level", "error", "decode", id))
			require.NoError(t, err)
			require.Len(t, got, len(want))
			for i := range want {
				assert.True(t, want[i].Equals(got[i]), "statement %d: %s", i, got[i])
			}
		})
	}

	listing := run(t, "-d", data, "--log-level", "error", "streams")
	assert.Contains(t, listing, "in.nq")
	assert.Contains(t, listing, "GRAPHS")
}

func TestExportImport(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "data")
	input := filepath.Join(dir, "in.nq")
	require.NoError(t, os.WriteFile(input, []byte(sampleNQuads), 0o600))
	file := filepath.Join(dir, "out.jelly")

	id := strings.TrimSpace(run(t, "-d", data, "--log-level", "error", "encode", input, "--physical", "quads", "--prefix", "ex=http://example.org/"))
	run(t, "-d", data, "--log-level", "error", "export", id, file)
	imported := strings.TrimSpace(run(t, "-d", data, "--log-level", "error", "import", file))
	require.NotEqual(t, id, imported)

	original := run(t, "-d", data, "--log-level", "error", "decode", id)
	assert.Equal(t, original, run(t, "-d", data, "--log-level", "error", "decode", imported))

	transcoded := strings.TrimSpace(run(t, "-d", data, "--log-level", "error", "transcode", id, imported, "--preset", "big_strict"))
	doubled := run(t, "-d", data, "--log-level", "error", "decode", transcoded)
	assert.Equal(t, original+original, doubled)

	run(t, "-d", data, "--log-level", "error", "delete", imported)
	assert.NotContains(t, run(t, "-d", data, "--log-level", "error", "streams"), imported)
}

func TestEncodeQuads_TriplesRejectNamedGraphs(t *testing.T) {
	var rows jelly.RowSlice
	enc, err := encoding.NewProtoEncoder[rdf.Term](rdfconv.New(), encoding.Params{
		Options: jelly.SmallStrict().WithPhysicalType(jelly.PhysicalTriples),
		Sink:    &rows,
	})
	require.NoError(t, err)

	n, err := encodeQuads(enc, rdf.NewNQuadsReader(strings.NewReader(sampleNQuads)), jelly.PhysicalTriples)
	require.Error(t, err)
	assert.Equal(t, 1, n)
	assert.Contains(t, err.Error(), "statement 2")
}

func TestEncodeQuads_GraphsGroupConsecutiveQuads(t *testing.T) {
	var rows jelly.RowSlice
	enc, err := encoding.NewProtoEncoder[rdf.Term](rdfconv.New(), encoding.Params{
		Options: jelly.SmallStrict().WithPhysicalType(jelly.PhysicalGraphs),
		Sink:    &rows,
	})
	require.NoError(t, err)

	n, err := encodeQuads(enc, rdf.NewNQuadsReader(strings.NewReader(sampleNQuads)), jelly.PhysicalGraphs)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	var starts, ends int
	for _, row := range rows {
		switch row.(type) {
		case *jelly.GraphStart:
			starts++
		case *jelly.GraphEnd:
			ends++
		}
	}
	assert.Equal(t, 3, starts)
	assert.Equal(t, 3, ends)
}

func TestParsePrefixes(t *testing.T) {
	ns, err := parsePrefixes([]string{"ex=http://example.org/", "=http://default/"})
	require.NoError(t, err)
	assert.Equal(t, []namespace{{"ex", "http://example.org/"}, {"", "http://default/"}}, ns)

	_, err = parsePrefixes([]string{"ex"})
	assert.Error(t, err)
	_, err = parsePrefixes([]string{"ex="})
	assert.Error(t, err)
}

func TestParsePhysicalType(t *testing.T) {
	p, err := parsePhysicalType("GRAPHS")
	require.NoError(t, err)
	assert.Equal(t, jelly.PhysicalGraphs, p)

	_, err = parsePhysicalType("nquads")
	assert.Error(t, err)
}

func TestDescribeRow(t *testing.T) {
	assert.Equal(t, `#3 = "name"`, describeRow(&jelly.NameEntry{ID: 3, Value: "name"}))
	assert.Equal(t, `iri(1,0) = "x"@en default`, describeRow(&jelly.Quad{
		S: jelly.Iri{PrefixID: 1},
		O: jelly.Literal{Lex: "x", LangTag: "en"},
		G: jelly.DefaultGraph{},
	}))
	assert.Equal(t, `<<_:b iri(0,2) "1"^^dt(1)>> = =`, describeRow(&jelly.Triple{
		S: jelly.TripleTerm{
			S: jelly.BlankNode{Label: "b"},
			P: jelly.Iri{NameID: 2},
			O: jelly.Literal{Lex: "1", Datatype: 1},
		},
	}))
	assert.Equal(t, "ex: iri(2,1)", describeRow(&jelly.NamespaceDeclaration{Name: "ex", Value: jelly.Iri{PrefixID: 2, NameID: 1}}))
}

package rdf

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNQuads(t *testing.T) {
	input := `# people
<http://example.org/alice> <http://xmlns.com/foaf/0.1/name> "Alice" .
<http://example.org/alice> <http://xmlns.com/foaf/0.1/age> "30"^^<http://www.w3.org/2001/XMLSchema#integer> <http://example.org/g> .

_:b1 <http://xmlns.com/foaf/0.1/name> "Bob"@en-US _:g1 .
_:b2 <http://example.org/p> "tab\there \"quoted\" é" . # trailing comment
<<( _:b1 <http://example.org/p> <http://example.org/o> )>> <http://example.org/says> <<( <http://example.org/s> <http://example.org/p> "x" )>> .
`
	quads, err := ParseNQuads(input)
	require.NoError(t, err)
	require.Len(t, quads, 5)

	assert.True(t, quads[0].Equals(NewQuad(
		NewNamedNode("http://example.org/alice"),
		NewNamedNode("http://xmlns.com/foaf/0.1/name"),
		NewLiteral("Alice"),
		NewDefaultGraph(),
	)))
	assert.True(t, quads[1].Object.Equals(NewIntegerLiteral(30)))
	assert.True(t, quads[1].Graph.Equals(NewNamedNode("http://example.org/g")))
	assert.True(t, quads[2].Subject.Equals(NewBlankNode("b1")))
	assert.True(t, quads[2].Object.Equals(NewLiteralWithLanguage("Bob", "en-US")))
	assert.True(t, quads[2].Graph.Equals(NewBlankNode("g1")))
	assert.Equal(t, "tab\there \"quoted\" é", quads[3].Object.(*Literal).Value)

	st, ok := quads[4].Subject.(*TripleTerm)
	require.True(t, ok)
	assert.True(t, st.Subject.Equals(NewBlankNode("b1")))
	ot, ok := quads[4].Object.(*TripleTerm)
	require.True(t, ok)
	assert.True(t, ot.Object.Equals(NewLiteral("x")))
}

func TestParseNQuads_BlankNodeBeforeDot(t *testing.T) {
	quads, err := ParseNQuads("<http://e/s> <http://e/p> _:o.\n")
	require.NoError(t, err)
	require.Len(t, quads, 1)
	assert.True(t, quads[0].Object.Equals(NewBlankNode("o")))
}

func TestParseNQuads_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing dot", `<http://e/s> <http://e/p> <http://e/o>`},
		{"relative iri", `<s> <http://e/p> <http://e/o> .`},
		{"literal subject", `"s" <http://e/p> <http://e/o> .`},
		{"blank node predicate", `<http://e/s> _:p <http://e/o> .`},
		{"unclosed literal", `<http://e/s> <http://e/p> "open .`},
		{"bad escape", `<http://e/s> <http://e/p> "\q" .`},
		{"space in iri", `<http://e/a b> <http://e/p> <http://e/o> .`},
		{"trailing garbage", `<http://e/s> <http://e/p> <http://e/o> . <x>`},
		{"unclosed triple term", `<http://e/s> <http://e/p> <<( <http://e/a> <http://e/b> <http://e/c> .`},
		{"prefixed name", `ex:s <http://e/p> <http://e/o> .`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseNQuads(tt.input)
			assert.Error(t, err)
		})
	}
}

func TestParseNQuads_ErrorLine(t *testing.T) {
	_, err := ParseNQuads("<http://e/s> <http://e/p> <http://e/o> .\n\n<http://e/s> <http://e/p> .\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
}

func TestNQuadsWriter_RoundTrip(t *testing.T) {
	ex := func(s string) *NamedNode { return NewNamedNode("http://example.org/" + s) }
	quads := []*Quad{
		NewQuad(ex("a"), ex("p"), NewLiteral("line\nbreak \\ \"q\" \x01"), NewDefaultGraph()),
		NewQuad(NewBlankNode("x"), ex("p"), NewLiteralWithLanguage("hi", "en"), ex("g")),
		NewQuad(ex("a"), ex("p"), NewLiteralWithDatatype("s", XSDString), NewBlankNode("g")),
		NewQuad(NewTripleTerm(ex("a"), ex("p"), NewDoubleLiteral(1.5)), ex("p"), ex("o"), NewDefaultGraph()),
	}

	var buf bytes.Buffer
	w := NewNQuadsWriter(&buf)
	for _, q := range quads {
		require.NoError(t, w.WriteQuad(q))
	}
	require.NoError(t, w.WriteTriple(NewTriple(ex("t"), ex("p"), ex("o"))))
	require.NoError(t, w.Flush())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, `<http://example.org/a> <http://example.org/p> "line\nbreak \\ \"q\" \u0001" .`, lines[0])
	assert.Equal(t, `<http://example.org/t> <http://example.org/p> <http://example.org/o> .`, lines[4])

	got, err := ParseNQuads(buf.String())
	require.NoError(t, err)
	require.Len(t, got, 5)
	for i, q := range quads {
		assert.True(t, q.Equals(got[i]), "quad %d: %s", i, got[i])
	}
}

func TestFormatTerm(t *testing.T) {
	assert.Equal(t, "<http://e/x>", FormatTerm(NewNamedNode("http://e/x")))
	assert.Equal(t, "_:b", FormatTerm(NewBlankNode("b")))
	assert.Equal(t, `"1"^^<http://www.w3.org/2001/XMLSchema#integer>`, FormatTerm(NewIntegerLiteral(1)))
	assert.Equal(t, "", FormatTerm(NewDefaultGraph()))
}

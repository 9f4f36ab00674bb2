package rdf

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// NQuadsReader reads N-Quads (and N-Triples, whose statements land in the
// default graph) one statement per line. Triple terms written as
// <<( s p o )>> are accepted as subjects and objects.
type NQuadsReader struct {
	scanner *bufio.Scanner
	line    int
}

// NewNQuadsReader creates a new N-Quads reader
func NewNQuadsReader(r io.Reader) *NQuadsReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	return &NQuadsReader{scanner: scanner}
}

// Read returns the next quad, or io.EOF at the end of the input.
func (r *NQuadsReader) Read() (*Quad, error) {
	for r.scanner.Scan() {
		r.line++
		p := &lineParser{input: r.scanner.Text()}
		p.skipWhitespaceAndComments()
		if p.done() {
			continue
		}
		quad, err := p.parseQuad()
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", r.line, err)
		}
		return quad, nil
	}
	if err := r.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

// ReadAll reads every remaining quad
func (r *NQuadsReader) ReadAll() ([]*Quad, error) {
	var quads []*Quad
	for {
		q, err := r.Read()
		if err == io.EOF {
			return quads, nil
		}
		if err != nil {
			return nil, err
		}
		quads = append(quads, q)
	}
}

// ParseNQuads parses a whole N-Quads document
func ParseNQuads(input string) ([]*Quad, error) {
	return NewNQuadsReader(strings.NewReader(input)).ReadAll()
}

// lineParser parses the statement on a single line
type lineParser struct {
	input string
	pos   int
}

func (p *lineParser) done() bool {
	return p.pos >= len(p.input)
}

func (p *lineParser) peek() byte {
	if p.done() {
		return 0
	}
	return p.input[p.pos]
}

func (p *lineParser) skipWhitespaceAndComments() {
	for !p.done() {
		switch p.input[p.pos] {
		case ' ', '\t', '\r':
			p.pos++
		case '#':
			p.pos = len(p.input)
		default:
			return
		}
	}
}

// parseQuad parses: subject predicate object [graph] .
func (p *lineParser) parseQuad() (*Quad, error) {
	subject, err := p.parseTerm()
	if err != nil {
		return nil, fmt.Errorf("error parsing subject: %w", err)
	}
	if subject.Type() == TermTypeLiteral {
		return nil, fmt.Errorf("subject cannot be a literal")
	}
	p.skipWhitespaceAndComments()

	predicate, err := p.parseTerm()
	if err != nil {
		return nil, fmt.Errorf("error parsing predicate: %w", err)
	}
	if predicate.Type() != TermTypeNamedNode {
		return nil, fmt.Errorf("predicate must be an IRI, got %s", predicate.Type())
	}
	p.skipWhitespaceAndComments()

	object, err := p.parseTerm()
	if err != nil {
		return nil, fmt.Errorf("error parsing object: %w", err)
	}
	p.skipWhitespaceAndComments()

	var graph Term = NewDefaultGraph()
	if c := p.peek(); c == '<' || c == '_' {
		if graph, err = p.parseTerm(); err != nil {
			return nil, fmt.Errorf("error parsing graph: %w", err)
		}
		p.skipWhitespaceAndComments()
	}

	if p.peek() != '.' {
		return nil, fmt.Errorf("expected '.' at end of statement")
	}
	p.pos++
	p.skipWhitespaceAndComments()
	if !p.done() {
		return nil, fmt.Errorf("unexpected content after '.' at position %d", p.pos)
	}
	return NewQuad(subject, predicate, object, graph), nil
}

func (p *lineParser) parseTerm() (Term, error) {
	switch p.peek() {
	case '<':
		if strings.HasPrefix(p.input[p.pos:], "<<(") {
			return p.parseTripleTerm()
		}
		iri, err := p.parseIRI()
		if err != nil {
			return nil, err
		}
		return NewNamedNode(iri), nil
	case '_':
		return p.parseBlankNode()
	case '"':
		return p.parseLiteral()
	case 0:
		return nil, fmt.Errorf("unexpected end of line")
	default:
		return nil, fmt.Errorf("unexpected character %q at position %d", p.peek(), p.pos)
	}
}

// parseIRI parses an absolute IRI enclosed in < >
func (p *lineParser) parseIRI() (string, error) {
	if p.peek() != '<' {
		return "", fmt.Errorf("expected '<' at start of IRI")
	}
	p.pos++

	var b strings.Builder
	for !p.done() && p.input[p.pos] != '>' {
		ch := p.input[p.pos]
		if ch == '\\' {
			r, err := p.parseUnicodeEscape()
			if err != nil {
				return "", err
			}
			b.WriteRune(r)
			continue
		}
		// IRIs cannot contain: space, <, >, ", {, }, |, ^, ` or control characters
		if ch <= 0x20 || strings.IndexByte("<\"{}|^`", ch) >= 0 {
			return "", fmt.Errorf("invalid character in IRI: %q at position %d", ch, p.pos)
		}
		b.WriteByte(ch)
		p.pos++
	}
	if p.done() {
		return "", fmt.Errorf("unclosed IRI")
	}
	p.pos++

	iri := b.String()
	if !strings.Contains(iri, ":") {
		return "", fmt.Errorf("relative IRI not allowed: %s", iri)
	}
	return iri, nil
}

func (p *lineParser) parseBlankNode() (Term, error) {
	if !strings.HasPrefix(p.input[p.pos:], "_:") {
		return nil, fmt.Errorf("expected '_:' at start of blank node")
	}
	p.pos += 2

	start := p.pos
	for !p.done() {
		ch := p.input[p.pos]
		if ch == ' ' || ch == '\t' || ch == '<' || ch == ')' {
			break
		}
		p.pos++
	}
	label := strings.TrimSuffix(p.input[start:p.pos], ".")
	p.pos = start + len(label)
	if label == "" {
		return nil, fmt.Errorf("empty blank node label")
	}
	return NewBlankNode(label), nil
}

func (p *lineParser) parseLiteral() (Term, error) {
	p.pos++ // opening '"'

	var value strings.Builder
	for {
		if p.done() {
			return nil, fmt.Errorf("unclosed string literal")
		}
		ch := p.input[p.pos]
		if ch == '"' {
			p.pos++
			break
		}
		if ch != '\\' {
			value.WriteByte(ch)
			p.pos++
			continue
		}
		if p.pos+1 >= len(p.input) {
			return nil, fmt.Errorf("unexpected end of line in escape sequence")
		}
		switch esc := p.input[p.pos+1]; esc {
		case 'u', 'U':
			r, err := p.parseUnicodeEscape()
			if err != nil {
				return nil, err
			}
			value.WriteRune(r)
			continue
		case 'n':
			value.WriteByte('\n')
		case 't':
			value.WriteByte('\t')
		case 'r':
			value.WriteByte('\r')
		case 'b':
			value.WriteByte('\b')
		case 'f':
			value.WriteByte('\f')
		case '"', '\'', '\\':
			value.WriteByte(esc)
		default:
			return nil, fmt.Errorf("invalid escape sequence \\%c at position %d", esc, p.pos)
		}
		p.pos += 2
	}

	switch {
	case p.peek() == '@':
		p.pos++
		start := p.pos
		for !p.done() {
			ch := p.input[p.pos]
			if !isLetter(ch) && !(ch >= '0' && ch <= '9') && ch != '-' {
				break
			}
			p.pos++
		}
		lang := p.input[start:p.pos]
		if lang == "" || !isLetter(lang[0]) {
			return nil, fmt.Errorf("invalid language tag %q", lang)
		}
		return NewLiteralWithLanguage(value.String(), lang), nil
	case strings.HasPrefix(p.input[p.pos:], "^^"):
		p.pos += 2
		dt, err := p.parseIRI()
		if err != nil {
			return nil, fmt.Errorf("error parsing datatype: %w", err)
		}
		return NewLiteralWithDatatype(value.String(), NewNamedNode(dt)), nil
	}
	return NewLiteral(value.String()), nil
}

// parseTripleTerm parses <<( subject predicate object )>>
func (p *lineParser) parseTripleTerm() (Term, error) {
	p.pos += 3
	p.skipWhitespaceAndComments()

	subject, err := p.parseTerm()
	if err != nil {
		return nil, fmt.Errorf("error parsing triple term subject: %w", err)
	}
	if subject.Type() == TermTypeLiteral {
		return nil, fmt.Errorf("triple term subject cannot be a literal")
	}
	p.skipWhitespaceAndComments()

	predicate, err := p.parseTerm()
	if err != nil {
		return nil, fmt.Errorf("error parsing triple term predicate: %w", err)
	}
	if predicate.Type() != TermTypeNamedNode {
		return nil, fmt.Errorf("triple term predicate must be an IRI")
	}
	p.skipWhitespaceAndComments()

	object, err := p.parseTerm()
	if err != nil {
		return nil, fmt.Errorf("error parsing triple term object: %w", err)
	}
	p.skipWhitespaceAndComments()

	if !strings.HasPrefix(p.input[p.pos:], ")>>") {
		return nil, fmt.Errorf("expected ')>>' at end of triple term")
	}
	p.pos += 3
	return NewTripleTerm(subject, predicate, object), nil
}

// parseUnicodeEscape parses \uXXXX or \UXXXXXXXX
func (p *lineParser) parseUnicodeEscape() (rune, error) {
	if !strings.HasPrefix(p.input[p.pos:], `\u`) && !strings.HasPrefix(p.input[p.pos:], `\U`) {
		return 0, fmt.Errorf("invalid escape sequence at position %d", p.pos)
	}
	digits := 4
	if p.input[p.pos+1] == 'U' {
		digits = 8
	}
	p.pos += 2
	if p.pos+digits > len(p.input) {
		return 0, fmt.Errorf("incomplete Unicode escape sequence")
	}
	hex := p.input[p.pos : p.pos+digits]
	cp, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid hex digits in Unicode escape: %s", hex)
	}
	p.pos += digits
	return rune(cp), nil
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

// NQuadsWriter writes quads as N-Quads lines
type NQuadsWriter struct {
	w *bufio.Writer
}

// NewNQuadsWriter creates a writer over w. Call Flush when done.
func NewNQuadsWriter(w io.Writer) *NQuadsWriter {
	return &NQuadsWriter{w: bufio.NewWriter(w)}
}

// WriteQuad writes q on its own line. The default graph is left out.
func (w *NQuadsWriter) WriteQuad(q *Quad) error {
	_, err := w.w.WriteString(FormatNQuad(q.Subject, q.Predicate, q.Object, q.Graph))
	return err
}

// WriteTriple writes a triple in the default graph
func (w *NQuadsWriter) WriteTriple(t *Triple) error {
	_, err := w.w.WriteString(FormatNQuad(t.Subject, t.Predicate, t.Object, nil))
	return err
}

// Flush writes any buffered data
func (w *NQuadsWriter) Flush() error {
	return w.w.Flush()
}

// FormatNQuad renders one statement as an N-Quads line, including the
// trailing newline. A nil or default graph is left out.
func FormatNQuad(s, p, o, g Term) string {
	var b strings.Builder
	writeTerm(&b, s)
	b.WriteByte(' ')
	writeTerm(&b, p)
	b.WriteByte(' ')
	writeTerm(&b, o)
	if g != nil && g.Type() != TermTypeDefaultGraph {
		b.WriteByte(' ')
		writeTerm(&b, g)
	}
	b.WriteString(" .\n")
	return b.String()
}

// FormatTerm formats a term in N-Quads syntax
func FormatTerm(t Term) string {
	var b strings.Builder
	writeTerm(&b, t)
	return b.String()
}

func writeTerm(b *strings.Builder, term Term) {
	switch t := term.(type) {
	case *NamedNode:
		b.WriteByte('<')
		b.WriteString(t.IRI)
		b.WriteByte('>')
	case *BlankNode:
		b.WriteString("_:")
		b.WriteString(t.ID)
	case *Literal:
		b.WriteByte('"')
		escapeString(b, t.Value)
		b.WriteByte('"')
		if t.Language != "" {
			b.WriteByte('@')
			b.WriteString(t.Language)
		} else if t.Datatype != nil {
			b.WriteString("^^<")
			b.WriteString(t.Datatype.IRI)
			b.WriteByte('>')
		}
	case *TripleTerm:
		b.WriteString("<<( ")
		writeTerm(b, t.Subject)
		b.WriteByte(' ')
		writeTerm(b, t.Predicate)
		b.WriteByte(' ')
		writeTerm(b, t.Object)
		b.WriteString(" )>>")
	case *DefaultGraph:
	default:
		fmt.Fprintf(b, "%v", term)
	}
}

// escapeString escapes a literal value using the N-Triples named escapes
// and \uXXXX for the remaining control characters.
func escapeString(b *strings.Builder, s string) {
	for _, r := range s {
		switch r {
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\f':
			b.WriteString(`\f`)
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		default:
			if r < 0x20 || r == 0x7F || r == 0xFFFE || r == 0xFFFF {
				fmt.Fprintf(b, `\u%04X`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
}

package xgettext

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/runenames"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokPunct
	tokOther
	tokInvalid
)

type token struct {
	kind tokenKind
	// text is the identifier name or punctuation for idents and punct.
	text string
	// value is the decoded text of a string literal.
	value string
	line  int
}

func (t token) is(kind tokenKind, text string) bool {
	return t.kind == kind && t.text == text
}

// lexer turns a source buffer into tokens on demand.
// Comments, whitespace, newlines and line continuations never produce tokens.
type lexer struct {
	syntax Syntax
	src    []byte
	pos    int
	line   int
}

func newLexer(syntax Syntax, src []byte) *lexer {
	return &lexer{syntax: syntax, src: src, line: 1}
}

func (l *lexer) next() token {
	for l.pos < len(l.src) {
		c := l.src[l.pos]

		switch {
		case c == '\n':
			l.line++
			l.pos++
			continue
		case c == '\\' && l.continuation(l.pos+1) > 0:
			l.pos += 1 + l.continuation(l.pos+1)
			l.line++
			continue
		case c == ' ' || c == '\t' || c == '\r' || c == '\f' || c == '\v':
			l.pos++
			continue
		}

		if l.skipComment() {
			continue
		}

		switch {
		case c == '"' || (c == '\'' && l.syntax.SingleQuoteStrings):
			return l.lexString("")
		case c == '\'':
			return l.lexCharLiteral()
		case c >= '0' && c <= '9':
			return l.lexNumber()
		}

		r, size := utf8.DecodeRune(l.src[l.pos:])
		if r == '_' || unicode.IsLetter(r) {
			return l.lexIdent()
		}

		t := token{kind: tokPunct, text: string(l.src[l.pos : l.pos+size]), line: l.line}
		if r == utf8.RuneError || size > 1 {
			t.kind = tokOther
		}
		l.pos += size

		return t
	}

	return token{kind: tokEOF, line: l.line}
}

// continuation returns the length of the line break at pos, or 0.
func (l *lexer) continuation(pos int) int {
	if pos < len(l.src) && l.src[pos] == '\n' {
		return 1
	}

	if pos+1 < len(l.src) && l.src[pos] == '\r' && l.src[pos+1] == '\n' {
		return 2
	}

	return 0
}

func (l *lexer) skipComment() bool {
	rest := l.src[l.pos:]

	for _, start := range l.syntax.LineComments {
		if !bytes.HasPrefix(rest, []byte(start)) {
			continue
		}

		// The final newline is left for next to count.
		from := 0
		for {
			end := bytes.IndexByte(rest[from:], '\n')
			if end < 0 {
				l.pos = len(l.src)
				return true
			}
			end += from

			line := bytes.TrimSuffix(rest[:end], []byte{'\r'})
			if l.syntax.ContinuedComments && bytes.HasSuffix(line, []byte{'\\'}) {
				l.line++
				from = end + 1
				continue
			}

			l.pos += end
			return true
		}
	}

	for _, pair := range l.syntax.BlockComments {
		if !bytes.HasPrefix(rest, []byte(pair[0])) {
			continue
		}

		body := rest[len(pair[0]):]
		end := bytes.Index(body, []byte(pair[1]))
		if end < 0 {
			// An unterminated block comment swallows the rest of the file.
			l.line += bytes.Count(body, []byte{'\n'})
			l.pos = len(l.src)
			return true
		}

		l.line += bytes.Count(body[:end], []byte{'\n'})
		l.pos += len(pair[0]) + end + len(pair[1])

		return true
	}

	return false
}

func (l *lexer) lexIdent() token {
	start := l.pos
	for l.pos < len(l.src) {
		r, size := utf8.DecodeRune(l.src[l.pos:])
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		l.pos += size
	}

	text := string(l.src[start:l.pos])

	// String prefixes such as r"..." or f'...' glue directly onto the quote.
	if l.pos < len(l.src) && l.isPrefix(text) {
		q := l.src[l.pos]
		if q == '"' || (q == '\'' && l.syntax.SingleQuoteStrings) {
			return l.lexString(text)
		}
	}

	return token{kind: tokIdent, text: text, line: l.line}
}

func (l *lexer) isPrefix(text string) bool {
	if slices.Contains(l.syntax.EncodingPrefixes, text) {
		return true
	}

	if text == "" || len(text) > 2 {
		return false
	}

	all := l.syntax.RawPrefixes + l.syntax.StringPrefixes + l.syntax.NonLiteralPrefixes
	for _, r := range text {
		if !strings.ContainsRune(all, r) {
			return false
		}
	}

	return true
}

func (l *lexer) lexNumber() token {
	start := l.pos
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c != '.' && c != '_' && !(c >= '0' && c <= '9') && !(c >= 'a' && c <= 'z') && !(c >= 'A' && c <= 'Z') {
			break
		}
		l.pos++
	}

	return token{kind: tokOther, text: string(l.src[start:l.pos]), line: l.line}
}

func (l *lexer) lexCharLiteral() token {
	line := l.line
	start := l.pos
	l.pos++

	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case '\\':
			l.pos += 2
			continue
		case '\'':
			l.pos++
			return token{kind: tokOther, text: string(l.src[start:l.pos]), line: line}
		case '\n':
			return token{kind: tokInvalid, text: "unterminated character literal", line: line}
		}
		l.pos++
	}

	l.pos = len(l.src)
	return token{kind: tokInvalid, text: "unterminated character literal", line: line}
}

// lexString reads a string literal starting at the opening quote.
// prefix holds the already consumed string prefix, if any.
func (l *lexer) lexString(prefix string) token {
	line := l.line
	quote := l.src[l.pos]

	delim := []byte{quote}
	if l.syntax.TripleQuotes && bytes.HasPrefix(l.src[l.pos:], []byte{quote, quote, quote}) {
		delim = []byte{quote, quote, quote}
	}
	l.pos += len(delim)

	start := l.pos
	for {
		if l.pos >= len(l.src) {
			return token{kind: tokInvalid, text: "unterminated string literal", line: line}
		}

		c := l.src[l.pos]
		switch {
		case c == '\\':
			if n := l.continuation(l.pos + 1); n > 0 {
				l.line++
				l.pos += 1 + n
				continue
			}
			l.pos += 2
			continue
		case c == '\n':
			if len(delim) == 1 {
				// Resume on the next line.
				return token{kind: tokInvalid, text: "unterminated string literal", line: line}
			}
			l.line++
		case bytes.HasPrefix(l.src[l.pos:], delim):
			body := string(l.src[start:l.pos])
			l.pos += len(delim)

			if len(delim) > 1 {
				body = strings.ReplaceAll(body, "\r\n", "\n")
			}

			return l.stringToken(prefix, body, line)
		}
		l.pos++
	}
}

func (l *lexer) stringToken(prefix, body string, line int) token {
	raw := false
	for _, r := range prefix {
		if strings.ContainsRune(l.syntax.NonLiteralPrefixes, r) {
			return token{kind: tokOther, text: prefix + "string", line: line}
		}
		if strings.ContainsRune(l.syntax.RawPrefixes, r) {
			raw = true
		}
	}

	if raw {
		return token{kind: tokString, value: body, line: line}
	}

	value, err := unescape(body, l.syntax)
	if err != nil {
		return token{kind: tokInvalid, text: err.Error(), line: line}
	}

	return token{kind: tokString, value: value, line: line}
}

var simpleEscapes = map[byte]byte{
	'n':  '\n',
	't':  '\t',
	'r':  '\r',
	'a':  '\a',
	'b':  '\b',
	'f':  '\f',
	'v':  '\v',
	'\\': '\\',
	'\'': '\'',
	'"':  '"',
	'?':  '?',
}

// unescape resolves backslash escapes. Unknown escapes are kept verbatim.
func unescape(s string, syntax Syntax) (string, error) {
	if !strings.Contains(s, `\`) {
		return s, nil
	}

	byteEscapes := syntax.ByteEscapes

	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}

		i++
		e := s[i]

		if v, ok := simpleEscapes[e]; ok {
			b.WriteByte(v)
			continue
		}

		switch {
		case e == '\n':
		case e == '\r' && i+1 < len(s) && s[i+1] == '\n':
			i++
		case e >= '0' && e <= '7':
			n, used := parseDigits(s[i:], 8, 3)
			writeCode(&b, n, byteEscapes)
			i += used - 1
		case e == 'x':
			limit := 2
			if byteEscapes {
				limit = len(s)
			}
			n, used := parseDigits(s[i+1:], 16, limit)
			if used == 0 {
				b.WriteString(`\x`)
				continue
			}
			writeCode(&b, n, byteEscapes)
			i += used
		case e == 'N' && syntax.NamedEscapes && i+1 < len(s) && s[i+1] == '{':
			end := strings.IndexByte(s[i+1:], '}')
			if end < 0 {
				return "", fmt.Errorf("malformed \\N character escape")
			}

			name := s[i+2 : i+1+end]
			r, ok := runeByName(name)
			if !ok {
				return "", fmt.Errorf("unknown character name %q", name)
			}
			b.WriteRune(r)
			i += 1 + end
		case e == 'u' || e == 'U':
			size := 4
			if e == 'U' {
				size = 8
			}
			n, used := parseDigits(s[i+1:], 16, size)
			if used != size || !utf8.ValidRune(rune(n)) {
				b.WriteByte('\\')
				b.WriteByte(e)
				continue
			}
			b.WriteRune(rune(n))
			i += used
		default:
			b.WriteByte('\\')
			b.WriteByte(e)
		}
	}

	return b.String(), nil
}

var runeNames = sync.OnceValue(func() map[string]rune {
	names := make(map[string]rune)
	for r := rune(0); r <= unicode.MaxRune; r++ {
		if r >= 0xd800 && r <= 0xdfff {
			continue
		}

		name := runenames.Name(r)
		if name == "" || strings.HasPrefix(name, "<") {
			continue
		}
		names[name] = r
	}

	return names
})

// runeByName resolves a \N{...} escape. Names are matched case insensitively.
func runeByName(name string) (rune, bool) {
	r, ok := runeNames()[strings.ToUpper(strings.TrimSpace(name))]
	return r, ok
}

func writeCode(b *strings.Builder, n int, asByte bool) {
	if asByte {
		b.WriteByte(byte(n))
		return
	}

	b.WriteRune(rune(n))
}

// parseDigits reads up to limit digits of the given base from the start of s.
func parseDigits(s string, base, limit int) (n, used int) {
	for used < len(s) && used < limit {
		d := digitVal(s[used])
		if d >= base {
			break
		}
		n = n*base + d
		used++
	}

	return n, used
}

func digitVal(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}

	return 16
}

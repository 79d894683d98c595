package xgettext

import (
	"errors"
	"fmt"
	"iter"
	"slices"
)

var (
	// ErrSyntax marks a call that could not be parsed. The call is skipped and scanning continues.
	ErrSyntax = fmt.Errorf("syntax error")
	// ErrNonLiteral marks a call whose domain or message argument is not a literal string.
	ErrNonLiteral = fmt.Errorf("non-literal argument")
)

// Entry is a message found in a marker call.
type Entry struct {
	// Domain is empty for the default domain.
	Domain    string
	Singular  string
	Plural    string
	HasPlural bool
	// Line is the line of the marker identifier, not of the string.
	Line   int
	Marker string
	// Empty is set when the message id is the empty string.
	// Such entries are dropped by the catalog.
	Empty bool
}

// CallError is the diagnostic for a rejected marker call.
type CallError struct {
	File   string
	Marker string
	Line   int
	Err    error
	Detail string
}

func (e *CallError) Error() string {
	msg := fmt.Sprintf("line %d", e.Line)
	if e.File != "" {
		msg = fmt.Sprintf("%s:%d", e.File, e.Line)
	}

	if e.Marker != "" {
		msg += ": " + e.Marker
	}

	msg += ": " + e.Err.Error()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}

	return msg
}

func (e *CallError) Unwrap() error {
	return e.Err
}

// Extractor finds marker calls in source text of a single syntax.
// It holds no state between calls to Extract and may be shared between goroutines.
type Extractor struct {
	syntax  Syntax
	markers Markers
}

func NewExtractor(syntax Syntax, markers Markers) *Extractor {
	return &Extractor{syntax: syntax, markers: markers}
}

// Extract returns the entries of src in source order.
// Rejected calls and malformed input are yielded as a *CallError with a zero Entry;
// scanning always continues after them.
func (e *Extractor) Extract(src []byte) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		s := &tokenStream{lx: newLexer(e.syntax, src)}
		reported := make(map[int]bool)

		for i := 0; ; i++ {
			t := s.at(i)

			switch t.kind {
			case tokEOF:
				return
			case tokInvalid:
				if !reported[i] {
					if !yield(Entry{}, &CallError{Line: t.line, Err: ErrSyntax, Detail: t.text}) {
						return
					}
				}
				continue
			case tokIdent:
			default:
				continue
			}

			spec, ok := e.markers.Lookup(t.text)
			if !ok || !s.at(i+1).is(tokPunct, "(") {
				continue
			}

			if i > 0 {
				if prev := s.at(i - 1); prev.kind == tokIdent && slices.Contains(e.syntax.DeclKeywords, prev.text) {
					continue
				}
			}

			// Scanning resumes right after the opening parenthesis so marker
			// calls nested in the arguments are still found.
			entry, err := e.call(s, i, spec, reported)
			if !yield(entry, err) {
				return
			}
		}
	}
}

// call parses the marker call whose name is token i.
func (e *Extractor) call(s *tokenStream, i int, spec MarkerSpec, reported map[int]bool) (Entry, error) {
	line := s.at(i).line
	callErr := func(err error, detail string) error {
		return &CallError{Marker: spec.Name, Line: line, Err: err, Detail: detail}
	}

	args, err := s.args(i + 2)
	if err != nil {
		if err.pos >= 0 {
			reported[err.pos] = true
		}
		return Entry{}, callErr(ErrSyntax, err.msg)
	}

	slots := spec.Kind.Slots()
	if len(args) < slots.MinArgs() {
		return Entry{}, callErr(ErrSyntax, fmt.Sprintf("expected at least %d arguments, got %d", slots.MinArgs(), len(args)))
	}

	arg := func(slot int) (string, bool) {
		if slot < 0 {
			return "", true
		}

		return literal(args[slot])
	}

	domain, ok := arg(slots.Domain)
	if !ok {
		return Entry{}, callErr(ErrNonLiteral, "domain argument")
	}

	id, ok := arg(slots.ID)
	if !ok {
		return Entry{}, callErr(ErrNonLiteral, "msgid argument")
	}

	plural, ok := arg(slots.Plural)
	if !ok {
		return Entry{}, callErr(ErrNonLiteral, "plural argument")
	}

	return Entry{
		Domain:    domain,
		Singular:  id,
		Plural:    plural,
		HasPlural: slots.Plural >= 0,
		Line:      line,
		Marker:    spec.Name,
		Empty:     id == "",
	}, nil
}

// literal concatenates an argument made only of adjacent string literals.
func literal(arg []token) (string, bool) {
	if len(arg) == 0 {
		return "", false
	}

	var s string
	for _, t := range arg {
		if t.kind != tokString {
			return "", false
		}
		s += t.value
	}

	return s, true
}

// tokenStream buffers lexed tokens so calls can be parsed ahead of the scan position.
type tokenStream struct {
	lx  *lexer
	buf []token
	// brackets maps the index of every opening bracket to its closing bracket.
	// It is filled in one pass over the whole source on first use.
	brackets map[int]bracket
}

func (s *tokenStream) at(i int) token {
	for len(s.buf) <= i {
		if n := len(s.buf); n > 0 && s.buf[n-1].kind == tokEOF {
			return s.buf[n-1]
		}
		s.buf = append(s.buf, s.lx.next())
	}

	return s.buf[i]
}

type argsError struct {
	msg string
	// pos of the offending token, -1 if there is none.
	pos int
}

// bracket is the closing position of an opening bracket, or the reason it has none.
type bracket struct {
	close int
	err   *argsError
}

var closing = map[string]string{"(": ")", "[": "]", "{": "}"}

func isClosing(text string) bool {
	return text == ")" || text == "]" || text == "}"
}

// balance pairs up all brackets of the source with a single stack pass.
// A closing bracket pairs with the nearest open bracket of its kind; brackets
// opened after that one are mismatched. Brackets still open at an invalid
// token or at EOF are unbalanced.
func (s *tokenStream) balance() {
	if s.brackets != nil {
		return
	}
	s.brackets = make(map[int]bracket)

	var stack []int
	fail := func(err *argsError) {
		for _, open := range stack {
			s.brackets[open] = bracket{close: -1, err: err}
		}
		stack = stack[:0]
	}

	for j := 0; ; j++ {
		t := s.at(j)

		switch t.kind {
		case tokEOF:
			fail(&argsError{msg: "unbalanced parentheses", pos: -1})
			return
		case tokInvalid:
			fail(&argsError{msg: t.text, pos: j})
			continue
		case tokPunct:
		default:
			continue
		}

		if _, ok := closing[t.text]; ok {
			stack = append(stack, j)
			continue
		}

		if !isClosing(t.text) {
			continue
		}

		k := len(stack) - 1
		for k >= 0 && closing[s.buf[stack[k]].text] != t.text {
			k--
		}

		mismatched := &argsError{msg: "mismatched " + t.text, pos: -1}
		if k < 0 {
			fail(mismatched)
			continue
		}

		for _, open := range stack[k+1:] {
			s.brackets[open] = bracket{close: -1, err: mismatched}
		}
		s.brackets[stack[k]] = bracket{close: j}
		stack = stack[:k]
	}
}

// args splits the argument list starting at token i, just after "(", on top level commas.
func (s *tokenStream) args(i int) ([][]token, *argsError) {
	s.balance()

	b, ok := s.brackets[i-1]
	if !ok {
		return nil, &argsError{msg: "unbalanced parentheses", pos: -1}
	}
	if b.err != nil {
		return nil, b.err
	}

	var (
		args  [][]token
		cur   []token
		depth int
	)

	for j := i; j < b.close; j++ {
		t := s.buf[j]

		if t.kind == tokPunct {
			switch {
			case t.text == "," && depth == 0:
				args = append(args, cur)
				cur = nil
				continue
			case isClosing(t.text):
				depth--
			default:
				if _, ok := closing[t.text]; ok {
					depth++
				}
			}
		}

		cur = append(cur, t)
	}

	if len(cur) > 0 || len(args) > 0 {
		args = append(args, cur)
	}

	// A trailing comma leaves an empty last argument.
	if n := len(args); n > 1 && len(args[n-1]) == 0 {
		args = args[:n-1]
	}

	return args, nil
}

// ExtractFile extracts all entries of a file, picking the syntax by extension.
// When markers is nil the default markers of the syntax are used.
func ExtractFile(name string, src []byte, markers Markers) ([]Entry, []error, error) {
	syntax, err := SyntaxFor(name)
	if err != nil {
		return nil, nil, err
	}

	if markers == nil {
		markers = DefaultMarkers(syntax)
	}

	var (
		entries []Entry
		diags   []error
	)

	for entry, err := range NewExtractor(syntax, markers).Extract(src) {
		if err != nil {
			var callErr *CallError
			if errors.As(err, &callErr) {
				callErr.File = name
			}
			diags = append(diags, err)
			continue
		}

		entries = append(entries, entry)
	}

	return entries, diags, nil
}

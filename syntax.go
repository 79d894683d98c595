package xgettext

import (
	"fmt"
	"path/filepath"
	"strings"
)

var (
	ErrNoSyntax = fmt.Errorf("no syntax for file")
)

// Syntax describes the lexical rules the lexer needs for one source language.
type Syntax struct {
	Name       string
	Extensions []string

	// LineComments start a comment that runs to the end of the line.
	LineComments []string
	// BlockComments are start/end pairs, e.g. {"/*", "*/"}.
	BlockComments [][2]string

	// SingleQuoteStrings makes '...' a string. Otherwise it is a char literal.
	SingleQuoteStrings bool
	// TripleQuotes enables """...""" and '''...''' literals spanning lines.
	TripleQuotes bool

	// RawPrefixes are string prefixes that disable escape decoding.
	RawPrefixes string
	// StringPrefixes are prefixes that still produce a literal string.
	StringPrefixes string
	// NonLiteralPrefixes produce strings that are not constant text, e.g. f-strings.
	NonLiteralPrefixes string
	// EncodingPrefixes are whole prefixes that only select the character
	// type of a literal, e.g. L"..." or u8"..." in C.
	EncodingPrefixes []string

	// ByteEscapes decodes \x and octal escapes as raw bytes instead of code points.
	ByteEscapes bool
	// NamedEscapes enables \N{NAME} escapes.
	NamedEscapes bool
	// ContinuedComments lets a backslash at the end of a line comment
	// continue the comment on the next line.
	ContinuedComments bool

	// DeclKeywords are identifiers that introduce a definition, so a marker
	// name following one of them is a declaration and not a call.
	DeclKeywords []string
}

var (
	Python = Syntax{
		Name:               "python",
		Extensions:         []string{".py"},
		LineComments:       []string{"#"},
		SingleQuoteStrings: true,
		TripleQuotes:       true,
		RawPrefixes:        "rR",
		StringPrefixes:     "uU",
		NonLiteralPrefixes: "bBfF",
		NamedEscapes:       true,
		DeclKeywords:       []string{"def"},
	}

	C = Syntax{
		Name:              "c",
		Extensions:        []string{".c", ".h"},
		LineComments:      []string{"//"},
		BlockComments:     [][2]string{{"/*", "*/"}},
		EncodingPrefixes:  []string{"L", "u", "U", "u8"},
		ByteEscapes:       true,
		ContinuedComments: true,
		DeclKeywords:      []string{"define"},
	}

	CPP = Syntax{
		Name:              "c++",
		Extensions:        []string{".cc", ".cpp", ".cxx", ".hh", ".hpp", ".hxx"},
		LineComments:      []string{"//"},
		BlockComments:     [][2]string{{"/*", "*/"}},
		EncodingPrefixes:  []string{"L", "u", "U", "u8"},
		ByteEscapes:       true,
		ContinuedComments: true,
		DeclKeywords:      []string{"define"},
	}
)

// Syntaxes lists the built in syntaxes.
var Syntaxes = []Syntax{Python, C, CPP}

// SyntaxFor returns the syntax matching the extension of filename.
func SyntaxFor(filename string) (Syntax, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, s := range Syntaxes {
		for _, e := range s.Extensions {
			if e == ext {
				return s, nil
			}
		}
	}

	return Syntax{}, fmt.Errorf("%w: %s", ErrNoSyntax, filename)
}

// DefaultMarkers returns the default marker table for the syntax.
func DefaultMarkers(s Syntax) Markers {
	switch s.Name {
	case Python.Name:
		return PythonMarkers()
	default:
		return CMarkers()
	}
}

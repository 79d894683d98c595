package xgettext

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type wantEntry struct {
	domain   string
	singular string
	plural   string
	line     int
}

func requireEntries(t *testing.T, want []wantEntry, got []Entry) {
	t.Helper()

	require.Len(t, got, len(want))
	for i, w := range want {
		require.Equal(t, w.domain, got[i].Domain, "entry %d", i)
		require.Equal(t, w.singular, got[i].Singular, "entry %d", i)
		require.Equal(t, w.plural, got[i].Plural, "entry %d", i)
		require.Equal(t, w.plural != "", got[i].HasPlural, "entry %d", i)
		require.Equal(t, w.line, got[i].Line, "entry %d: %q", i, w.singular)
		require.Equal(t, w.singular == "", got[i].Empty, "entry %d", i)
	}
}

func diagLines(t *testing.T, diags []error, target error) []int {
	t.Helper()

	var lines []int
	for _, diag := range diags {
		var callErr *CallError
		require.True(t, errors.As(diag, &callErr), "unexpected diagnostic %v", diag)
		require.ErrorIs(t, diag, target)
		lines = append(lines, callErr.Line)
	}

	return lines
}

func TestExtractPythonFixture(t *testing.T) {
	src, err := os.ReadFile("./testdata/fixtures/gettext.py")
	require.NoError(t, err)

	entries, diags, err := ExtractFile("testdata/fixtures/gettext.py", src, nil)
	require.NoError(t, err)

	requireEntries(t, []wantEntry{
		{singular: "gettext", line: 8},
		{singular: "lgettext", line: 9},
		{singular: "_", line: 10},
		{singular: "N_", line: 11},
		{singular: "whitespace1", line: 14},
		{singular: "whitespace2", line: 15},
		{singular: "whitespace3", line: 16},
		{singular: "whitespace4", line: 17},
		{singular: "whitespace5", line: 18},
		{singular: "whitespace6", line: 22},
		{singular: "multi\nline\nstring", line: 25},
		{singular: "adjacent literals", line: 28},
		{domain: "test-domain", singular: "dgettext1", line: 31},
		{domain: "some-other-domain", singular: "dgettext2", line: 32},
		{singular: "ngettext1", plural: "ngettext1-plural", line: 35},
		{domain: "test-domain", singular: "dngettext1", plural: "dngettext1-plural", line: 36},
		{domain: "some-other-domain", singular: "dngettext2", plural: "dngettext2-plural", line: 37},
		{singular: "", line: 39},
	}, entries)

	// gettext(Z) and the f-string.
	require.Equal(t, []int{12, 43}, diagLines(t, diags, ErrNonLiteral))

	for _, diag := range diags {
		require.Contains(t, diag.Error(), "testdata/fixtures/gettext.py:")
	}
}

func TestExtractCFixture(t *testing.T) {
	src, err := os.ReadFile("./testdata/fixtures/gettext.c")
	require.NoError(t, err)

	entries, diags, err := ExtractFile("testdata/fixtures/gettext.c", src, nil)
	require.NoError(t, err)

	requireEntries(t, []wantEntry{
		{singular: "gettext", line: 11},
		{singular: "_", line: 12},
		{singular: "N_", line: 13},
		{singular: "whitespace1", line: 16},
		{singular: "whitespace5", line: 17},
		{domain: "test-domain", singular: "dgettext1", line: 22},
		{domain: "test-domain", singular: "dcgettext1", line: 23},
		{singular: "ngettext1", plural: "ngettext1-plural", line: 26},
		{domain: "some-other-domain", singular: "dcngettext1", plural: "dcngettext1-plural", line: 27},
		{singular: "adjacent literals\n", line: 29},
		{singular: "", line: 30},
	}, entries)

	// gettext((x)) in the _ macro and gettext(Z).
	require.Equal(t, []int{4, 14}, diagLines(t, diags, ErrNonLiteral))
}

func TestExtractUnknownSyntax(t *testing.T) {
	_, _, err := ExtractFile("main.rb", []byte(`_("x")`), nil)
	require.ErrorIs(t, err, ErrNoSyntax)
}

func TestExtract(t *testing.T) {
	type result struct {
		singular string
		line     int
		err      error
	}

	cases := []struct {
		name   string
		syntax Syntax
		src    string
		want   []result
	}{
		{
			name:   "no whitespace",
			syntax: Python,
			src:    `_("a")`,
			want:   []result{{singular: "a", line: 1}},
		},
		{
			name:   "marker on its own line",
			syntax: Python,
			src:    "x = 1\n_\n(\n\"a\"\n)\n",
			want:   []result{{singular: "a", line: 2}},
		},
		{
			name:   "line continuation",
			syntax: C,
			src:    "_ \\\n(\"a\");",
			want:   []result{{singular: "a", line: 1}},
		},
		{
			name:   "variable argument",
			syntax: Python,
			src:    `_(Z)`,
			want:   []result{{line: 1, err: ErrNonLiteral}},
		},
		{
			name:   "concatenation with a variable",
			syntax: Python,
			src:    `_("a" + Z)`,
			want:   []result{{line: 1, err: ErrNonLiteral}},
		},
		{
			name:   "non literal domain",
			syntax: Python,
			src:    `dgettext(domain, "a")`,
			want:   []result{{line: 1, err: ErrNonLiteral}},
		},
		{
			name:   "non literal count is fine",
			syntax: Python,
			src:    `ngettext("a", "b", len(items))`,
			want:   []result{{singular: "a", line: 1}},
		},
		{
			name:   "too few arguments",
			syntax: Python,
			src:    `dgettext("domain")`,
			want:   []result{{line: 1, err: ErrSyntax}},
		},
		{
			name:   "trailing comma",
			syntax: Python,
			src:    `_("a",)`,
			want:   []result{{singular: "a", line: 1}},
		},
		{
			name:   "nested marker calls",
			syntax: Python,
			src:    `_(N_("a"))`,
			want:   []result{{line: 1, err: ErrNonLiteral}, {singular: "a", line: 1}},
		},
		{
			name:   "marker inside another call",
			syntax: C,
			src:    `printf("%s", _("a"));`,
			want:   []result{{singular: "a", line: 1}},
		},
		{
			name:   "unbalanced parentheses",
			syntax: Python,
			src:    "_(\"a\"",
			want:   []result{{line: 1, err: ErrSyntax}},
		},
		{
			name:   "mismatched bracket",
			syntax: Python,
			src:    "_(\"a\"]\n_(\"b\")",
			want:   []result{{line: 1, err: ErrSyntax}, {singular: "b", line: 2}},
		},
		{
			name:   "unterminated string resumes on the next line",
			syntax: Python,
			src:    "_(\"a\n_(\"b\")",
			want:   []result{{line: 1, err: ErrSyntax}, {singular: "b", line: 2}},
		},
		{
			name:   "unterminated string outside a call",
			syntax: C,
			src:    "x = \"a\n_(\"b\");",
			want:   []result{{line: 1, err: ErrSyntax}, {singular: "b", line: 2}},
		},
		{
			name:   "line comment",
			syntax: Python,
			src:    "# _(\"a\")\n_(\"b\")",
			want:   []result{{singular: "b", line: 2}},
		},
		{
			name:   "block comment keeps line numbers",
			syntax: C,
			src:    "/* _(\"a\")\n\n */ _(\"b\");",
			want:   []result{{singular: "b", line: 3}},
		},
		{
			name:   "marker inside a string",
			syntax: C,
			src:    `x = "_(\"a\")";`,
		},
		{
			name:   "definition is not a call",
			syntax: Python,
			src:    "def _(message): return message",
		},
		{
			name:   "unknown function",
			syntax: Python,
			src:    `print("a")`,
		},
		{
			name:   "marker without call",
			syntax: Python,
			src:    `f = _`,
		},
		{
			name:   "escapes",
			syntax: Python,
			src:    `_("tab\there é \x41 \101 \q")`,
			want:   []result{{singular: "tab\there é A A \\q", line: 1}},
		},
		{
			name:   "escaped quote",
			syntax: C,
			src:    `_("say \"hi\"");`,
			want:   []result{{singular: `say "hi"`, line: 1}},
		},
		{
			name:   "raw string",
			syntax: Python,
			src:    `_(r"a\nb")`,
			want:   []result{{singular: `a\nb`, line: 1}},
		},
		{
			name:   "bytes are not text",
			syntax: Python,
			src:    `_(b"a")`,
			want:   []result{{line: 1, err: ErrNonLiteral}},
		},
		{
			name:   "string continuation",
			syntax: C,
			src:    "_(\"a\\\nb\");",
			want:   []result{{singular: "ab", line: 1}},
		},
		{
			name:   "char literal",
			syntax: C,
			src:    `_('"');`,
			want:   []result{{line: 1, err: ErrNonLiteral}},
		},
		{
			name:   "triple quoted string with CRLF line endings",
			syntax: Python,
			src:    "_(\"\"\"multi\r\nline\"\"\")",
			want:   []result{{singular: "multi\nline", line: 1}},
		},
		{
			name:   "named escape",
			syntax: Python,
			src:    `_("a\N{EM DASH}b\N{latin small letter e with acute}")`,
			want:   []result{{singular: "a\u2014b\u00e9", line: 1}},
		},
		{
			name:   "unknown character name",
			syntax: Python,
			src:    "_(\"\\N{NO SUCH CHARACTER}\")\n_(\"b\")",
			want:   []result{{line: 1, err: ErrSyntax}, {singular: "b", line: 2}},
		},
		{
			name:   "named escape is not a C escape",
			syntax: C,
			src:    `_("\N{EM DASH}");`,
			want:   []result{{singular: `\N{EM DASH}`, line: 1}},
		},
		{
			name:   "encoding prefixes",
			syntax: C,
			src:    `_(L"a"); _(u"b"); _(U"c"); _(u8"d");`,
			want: []result{
				{singular: "a", line: 1},
				{singular: "b", line: 1},
				{singular: "c", line: 1},
				{singular: "d", line: 1},
			},
		},
		{
			name:   "line comment continued by a backslash",
			syntax: C,
			src:    "// note \\\n_(\"hidden\");\n_(\"shown\");",
			want:   []result{{singular: "shown", line: 3}},
		},
		{
			name:   "python comments do not continue",
			syntax: Python,
			src:    "# note \\\n_(\"shown\")",
			want:   []result{{singular: "shown", line: 2}},
		},
		{
			name:   "extra category argument",
			syntax: C,
			src:    `dcgettext("d", "a", LC_MESSAGES);`,
			want:   []result{{singular: "a", line: 1}},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var got []result
			for entry, err := range NewExtractor(c.syntax, DefaultMarkers(c.syntax)).Extract([]byte(c.src)) {
				if err != nil {
					var callErr *CallError
					require.ErrorAs(t, err, &callErr)

					target := ErrNonLiteral
					if errors.Is(err, ErrSyntax) {
						target = ErrSyntax
					}
					got = append(got, result{line: callErr.Line, err: target})
					continue
				}

				got = append(got, result{singular: entry.Singular, line: entry.Line})
			}

			require.Equal(t, c.want, got)
		})
	}
}

func TestExtractManyUnclosedCalls(t *testing.T) {
	const n = 20000
	src := []byte(strings.Repeat("_(\"x\"\n", n))

	start := time.Now()

	diags := 0
	for _, err := range NewExtractor(Python, PythonMarkers()).Extract(src) {
		require.ErrorIs(t, err, ErrSyntax)
		diags++
	}

	require.Equal(t, n, diags)
	require.Less(t, time.Since(start), 5*time.Second)
}

func TestExtractStopsEarly(t *testing.T) {
	extractor := NewExtractor(Python, PythonMarkers())

	var got []string
	for entry, err := range extractor.Extract([]byte(`_("a") _("b") _("c")`)) {
		require.NoError(t, err)
		got = append(got, entry.Singular)

		if len(got) == 2 {
			break
		}
	}

	require.Equal(t, []string{"a", "b"}, got)
}

func TestExtractIsRestartable(t *testing.T) {
	extractor := NewExtractor(C, CMarkers())
	src := []byte(`_("a"); ngettext("b", "c", n);`)

	collect := func() []Entry {
		var entries []Entry
		for entry, err := range extractor.Extract(src) {
			require.NoError(t, err)
			entries = append(entries, entry)
		}
		return entries
	}

	require.Equal(t, collect(), collect())
}

func TestExtractCustomMarkers(t *testing.T) {
	markers := NewMarkers(MarkerSpec{Name: "tr", Kind: KindPlural})

	var entries []Entry
	for entry, err := range NewExtractor(Python, markers).Extract([]byte(`tr("a", "b", n); _("c")`)) {
		require.NoError(t, err)
		entries = append(entries, entry)
	}

	require.Len(t, entries, 1)
	require.Equal(t, "a", entries[0].Singular)
	require.Equal(t, "b", entries[0].Plural)
	require.Equal(t, "tr", entries[0].Marker)
}

func TestCallErrorMessage(t *testing.T) {
	err := &CallError{File: "a.py", Marker: "_", Line: 3, Err: ErrNonLiteral, Detail: "msgid argument"}
	require.Equal(t, "a.py:3: _: non-literal argument: msgid argument", err.Error())

	err = &CallError{Line: 7, Err: ErrSyntax, Detail: "unterminated string literal"}
	require.Equal(t, "line 7: syntax error: unterminated string literal", err.Error())
}

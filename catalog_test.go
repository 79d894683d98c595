package xgettext

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCatalog(t *testing.T) {
	catalog := NewCatalog("")
	require.Equal(t, DefaultDomain, catalog.DefaultDomain())

	require.True(t, catalog.Add("a.py", Entry{Singular: "hello", Line: 1}))
	require.True(t, catalog.Add("a.py", Entry{Singular: "apple", Plural: "apples", HasPlural: true, Line: 2}))
	require.True(t, catalog.Add("b.py", Entry{Singular: "hello", Line: 7}))
	require.True(t, catalog.Add("b.py", Entry{Domain: "errors", Singular: "hello", Line: 8}))
	require.True(t, catalog.Add("b.py", Entry{Singular: "hello", HasPlural: true, Line: 9}))
	require.False(t, catalog.Add("b.py", Entry{Singular: "", Line: 10, Empty: true}))

	require.Equal(t, []string{"errors", "messages"}, catalog.Domains())
	require.Equal(t, 4, catalog.Len())

	require.Equal(t, []*Message{
		{Domain: "messages", ID: "hello", Refs: []Ref{{File: "a.py", Line: 1}, {File: "b.py", Line: 7}}},
		{Domain: "messages", ID: "apple", Plural: "apples", HasPlural: true, Refs: []Ref{{File: "a.py", Line: 2}}},
		{Domain: "messages", ID: "hello", HasPlural: true, Refs: []Ref{{File: "b.py", Line: 9}}},
	}, catalog.Messages("messages"))

	require.Equal(t, []*Message{
		{Domain: "errors", ID: "hello", Refs: []Ref{{File: "b.py", Line: 8}}},
	}, catalog.Messages("errors"))

	require.Nil(t, catalog.Messages("missing"))

	require.Equal(t, Stats{Accepted: 5, Empty: 1}, catalog.Stats())
}

func TestCatalogDefaultDomain(t *testing.T) {
	catalog := NewCatalog("app")

	catalog.Add("a.c", Entry{Singular: "hello", Line: 1})
	catalog.Add("a.c", Entry{Domain: "app", Singular: "hello", Line: 2})

	require.Equal(t, []string{"app"}, catalog.Domains())
	require.Len(t, catalog.Messages("app"), 1)
	require.Len(t, catalog.Messages("app")[0].Refs, 2)
}

func TestCatalogMessagesIsACopy(t *testing.T) {
	catalog := NewCatalog("")
	catalog.Add("a.c", Entry{Singular: "a", Line: 1})
	catalog.Add("a.c", Entry{Singular: "b", Line: 2})

	msgs := catalog.Messages(DefaultDomain)
	msgs[0], msgs[1] = msgs[1], msgs[0]

	require.Equal(t, "a", catalog.Messages(DefaultDomain)[0].ID)
}

func TestCatalogAddResult(t *testing.T) {
	catalog := NewCatalog("")

	catalog.AddResult(FileResult{
		File: "a.py",
		Entries: []Entry{
			{Singular: "a", Line: 1},
			{Singular: "", Line: 2, Empty: true},
		},
		Diagnostics: []error{
			&CallError{File: "a.py", Line: 3, Err: ErrNonLiteral},
			&CallError{File: "a.py", Line: 4, Err: ErrSyntax},
			&CallError{File: "a.py", Line: 5, Err: ErrNonLiteral},
		},
	})

	stats := catalog.Stats()
	require.Equal(t, Stats{Accepted: 1, Empty: 1, Syntax: 1, NonLiteral: 2}, stats)
	require.Equal(t, 4, stats.Skipped())
}

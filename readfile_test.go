package xgettext

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func sourceFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()

	fs := afero.NewMemMapFs()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}

	return fs
}

func TestSourceFiles(t *testing.T) {
	fs := sourceFs(t, map[string]string{
		"src/app.py":          `_("app")`,
		"src/lib/util.c":      `_("util");`,
		"src/lib/util.h":      `#define X 1`,
		"src/lib/widget.cpp":  `_("widget");`,
		"src/.venv/dep.py":    `_("dep")`,
		"src/README.md":       "readme",
		"src/main.go":         "package main",
		"src/templates/a.txt": "a",
	})

	files, err := SourceFiles(fs, "src")
	require.NoError(t, err)
	require.Equal(t, []string{
		"src/app.py",
		"src/lib/util.c",
		"src/lib/util.h",
		"src/lib/widget.cpp",
	}, files)
}

func TestHasGoFiles(t *testing.T) {
	fs := sourceFs(t, map[string]string{
		"a/app.py":          "",
		"b/pkg/pkg.go":      "package pkg",
		"c/pkg/pkg_test.go": "package pkg",
	})

	cases := []struct {
		root string
		want bool
	}{
		{root: "a", want: false},
		{root: "b", want: true},
		{root: "c", want: false},
	}

	for _, c := range cases {
		t.Run(c.root, func(t *testing.T) {
			found, err := HasGoFiles(fs, c.root)
			require.NoError(t, err)
			require.Equal(t, c.want, found)
		})
	}
}

func TestScan(t *testing.T) {
	fs := sourceFs(t, map[string]string{
		"a.py": "_(\"a\")\ngettext(x)\n",
		"b.c":  "ngettext(\"b\", \"bs\", n);",
		"c.py": "tr(\"c\")\n_(\"d\")",
	})

	scanner := NewScanner(fs,
		WithWorkers(2),
		WithExtraMarkers(MarkerSpec{Name: "tr", Kind: KindSimple}),
	)

	results, err := scanner.Scan(context.Background(), []string{"c.py", "a.py", "b.c"})
	require.NoError(t, err)
	require.Len(t, results, 3)

	require.Equal(t, "c.py", results[0].File)
	require.Len(t, results[0].Entries, 2)
	require.Equal(t, "c", results[0].Entries[0].Singular)
	require.Equal(t, "d", results[0].Entries[1].Singular)

	require.Equal(t, "a.py", results[1].File)
	require.Len(t, results[1].Entries, 1)
	require.Len(t, results[1].Diagnostics, 1)
	require.ErrorIs(t, results[1].Diagnostics[0], ErrNonLiteral)

	require.Equal(t, "b.c", results[2].File)
	require.Equal(t, []Entry{{Singular: "b", Plural: "bs", HasPlural: true, Line: 1, Marker: "ngettext"}}, results[2].Entries)
}

func TestScanWithMarkers(t *testing.T) {
	fs := sourceFs(t, map[string]string{
		"a.py": "_(\"a\")\ntr(\"b\")",
		"b.c":  "_(\"c\");",
	})

	scanner := NewScanner(fs, WithMarkers("python", NewMarkers(MarkerSpec{Name: "tr", Kind: KindSimple})))

	results, err := scanner.Scan(context.Background(), []string{"a.py", "b.c"})
	require.NoError(t, err)

	require.Len(t, results[0].Entries, 1)
	require.Equal(t, "b", results[0].Entries[0].Singular)

	// Other syntaxes keep their defaults.
	require.Len(t, results[1].Entries, 1)
	require.Equal(t, "c", results[1].Entries[0].Singular)

	// Extra markers do not leak into the defaults.
	_, ok := DefaultMarkers(Python).Lookup("tr")
	require.False(t, ok)
}

func TestScanErrors(t *testing.T) {
	fs := sourceFs(t, map[string]string{
		"a.py":  `_("a")`,
		"a.txt": "text",
	})

	scanner := NewScanner(fs)

	_, err := scanner.Scan(context.Background(), []string{"a.py", "missing.py"})
	require.Error(t, err)

	_, err = scanner.Scan(context.Background(), []string{"a.txt"})
	require.ErrorIs(t, err, ErrNoSyntax)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = scanner.Scan(ctx, []string{"a.py"})
	require.ErrorIs(t, err, context.Canceled)
}

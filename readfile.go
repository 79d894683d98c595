package xgettext

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// SourceFiles returns every file below root with a known syntax, sorted by path.
// Hidden directories are skipped.
func SourceFiles(fs afero.Fs, root string) ([]string, error) {
	var files []string

	err := afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if path != root && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if _, err := SyntaxFor(path); err != nil {
			Logger.Debug().Str("file", path).Msg("Skipping file without syntax")
			return nil
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}

	slices.Sort(files)

	return files, nil
}

// HasGoFiles reports whether root or any directory below it contains go files.
func HasGoFiles(fs afero.Fs, root string) (bool, error) {
	found := false

	err := afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !info.IsDir() && filepath.Ext(path) == ".go" && !strings.HasSuffix(path, "_test.go") {
			found = true
			return filepath.SkipAll
		}

		return nil
	})
	if err != nil && !errors.Is(err, filepath.SkipAll) {
		return false, fmt.Errorf("walking %s: %w", root, err)
	}

	return found, nil
}

// FileResult holds what was extracted from one file.
type FileResult struct {
	File        string
	Entries     []Entry
	Diagnostics []error
}

// Scanner extracts many files in parallel. Each file gets its own Extractor run.
type Scanner struct {
	fs      afero.Fs
	markers map[string]Markers
	extra   []MarkerSpec
	workers int
}

// ScanOpt is a functional option for the Scanner.
type ScanOpt func(*Scanner)

// WithMarkers replaces the marker table used for the named syntax.
func WithMarkers(syntax string, markers Markers) ScanOpt {
	return func(s *Scanner) {
		s.markers[syntax] = markers
	}
}

// WithExtraMarkers adds markers to the table of every syntax.
func WithExtraMarkers(specs ...MarkerSpec) ScanOpt {
	return func(s *Scanner) {
		s.extra = append(s.extra, specs...)
	}
}

// WithWorkers limits the number of files read and scanned at once.
func WithWorkers(n int) ScanOpt {
	return func(s *Scanner) {
		if n > 0 {
			s.workers = n
		}
	}
}

func NewScanner(fs afero.Fs, opts ...ScanOpt) *Scanner {
	s := &Scanner{
		fs:      fs,
		markers: make(map[string]Markers),
		workers: runtime.GOMAXPROCS(0),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// MarkersFor returns the marker table used for the syntax.
func (s *Scanner) MarkersFor(syntax Syntax) Markers {
	markers, ok := s.markers[syntax.Name]
	if !ok {
		markers = DefaultMarkers(syntax)
	}

	if len(s.extra) == 0 {
		return markers
	}

	markers = markers.Clone()
	markers.Add(s.extra...)

	return markers
}

// Scan extracts the given files. Results are returned in the order of files.
// Malformed calls never fail the scan, they end up in the Diagnostics of the file.
// A file that can not be read or has no syntax fails the whole scan.
func (s *Scanner) Scan(ctx context.Context, files []string) ([]FileResult, error) {
	results := make([]FileResult, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			result, err := s.scanFile(file)
			if err != nil {
				return err
			}

			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

func (s *Scanner) scanFile(file string) (FileResult, error) {
	syntax, err := SyntaxFor(file)
	if err != nil {
		return FileResult{}, err
	}

	src, err := afero.ReadFile(s.fs, file)
	if err != nil {
		return FileResult{}, fmt.Errorf("reading file: %w", err)
	}

	entries, diags, err := ExtractFile(file, src, s.MarkersFor(syntax))
	if err != nil {
		return FileResult{}, err
	}

	for _, diag := range diags {
		logDiagnostic(diag)
	}

	Logger.Debug().
		Str("file", file).
		Str("syntax", syntax.Name).
		Int("entries", len(entries)).
		Int("skipped", len(diags)).
		Msg("Scanned file")

	return FileResult{File: file, Entries: entries, Diagnostics: diags}, nil
}

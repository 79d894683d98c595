package xgettext

import (
	"cmp"
	"fmt"
	"go/ast"
	"go/constant"
	gotoken "go/token"
	"go/types"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/tools/go/packages"
)

// FileEntry is an entry together with the file it was found in.
type FileEntry struct {
	File string
	Entry
}

// ExtractGoPackages loads the go packages in dir and extracts every call to a marker.
// Arguments must be compile time constant strings: literals, consts and constant
// expressions like "a" + "b" are accepted.
// Markers match the called identifier, so Get matches both Get(...) and l.Get(...).
// A qualified marker like gotext.Get only matches calls of that package function.
func ExtractGoPackages(dir string, markers Markers) ([]FileEntry, []error, error) {
	dirs, err := findDirsRecursively(dir)
	if err != nil {
		return nil, nil, err
	}

	var (
		entries []FileEntry
		diags   []error
	)

	for _, dir := range dirs {
		fset := gotoken.NewFileSet()

		mode := packages.NeedName | packages.NeedSyntax |
			packages.NeedTypes | packages.NeedTypesInfo | packages.NeedCompiledGoFiles

		cfg := &packages.Config{
			Mode:  mode,
			Dir:   dir,
			Fset:  fset,
			Tests: false,
		}

		pkgs, err := packages.Load(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("loading package: %w", err)
		}

		pkgsErrs := ""
		packages.Visit(pkgs, nil, func(pkg *packages.Package) {
			for _, err := range pkg.Errors {
				if strings.HasPrefix(err.Msg, "build constraints exclude all Go files") {
					continue
				}

				pkgsErrs += err.Error() + "\n"
			}
		})
		if pkgsErrs != "" {
			return nil, nil, fmt.Errorf("package load error: %s", pkgsErrs)
		}

		for _, pkg := range pkgs {
			if pkg.TypesInfo == nil {
				continue
			}

			for _, f := range pkg.Syntax {
				ast.Inspect(f, func(n ast.Node) bool {
					call, ok := n.(*ast.CallExpr)
					if !ok {
						return true
					}

					entry, err := extractGoCall(fset, pkg.TypesInfo, call, markers)
					switch {
					case err != nil:
						diags = append(diags, err)
					case entry != nil:
						entries = append(entries, *entry)
					}

					return true
				})
			}
		}
	}

	slices.SortStableFunc(entries, func(a, b FileEntry) int {
		return cmp.Or(cmp.Compare(a.File, b.File), cmp.Compare(a.Line, b.Line))
	})

	return entries, diags, nil
}

// findDirsRecursively finds all directories that contain go files in the given root directory.
// Directories named testdata are skipped below the root, the root itself is always searched.
func findDirsRecursively(rootDir string) ([]string, error) {
	var subdirs []string

	err := filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() {
			return nil
		}

		// Skip the directories the go tool ignores as well.
		name := d.Name()
		if path != rootDir && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "testdata") {
			return filepath.SkipDir
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			return err
		}

		for _, entry := range entries {
			if !entry.IsDir() && filepath.Ext(entry.Name()) == ".go" {
				subdirs = append(subdirs, path)
				break
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return subdirs, nil
}

// extractGoCall returns nil, nil when the call is not a marker call.
func extractGoCall(fset *gotoken.FileSet, info *types.Info, call *ast.CallExpr, markers Markers) (*FileEntry, error) {
	var (
		ident *ast.Ident
		names []string
	)

	switch fun := call.Fun.(type) {
	case *ast.Ident:
		// It is a direct call to a function.
		ident = fun
		names = []string{fun.Name}
	case *ast.SelectorExpr:
		// It is a call to a method or a package function. Package functions
		// also match their qualified name, e.g. gotext.Get.
		ident = fun.Sel
		if x, ok := fun.X.(*ast.Ident); ok {
			if pkg, ok := info.Uses[x].(*types.PkgName); ok {
				names = append(names, pkg.Imported().Name()+"."+fun.Sel.Name)
			}
		}
		names = append(names, fun.Sel.Name)
	default:
		return nil, nil
	}

	var (
		spec  MarkerSpec
		found bool
	)
	for _, name := range names {
		if spec, found = markers.Lookup(name); found {
			break
		}
	}
	if !found {
		return nil, nil
	}

	// Conversions like Get(x) where Get is a type are not calls.
	if tv, ok := info.Types[call.Fun]; ok && tv.IsType() {
		return nil, nil
	}

	pos := fset.Position(ident.Pos())
	callErr := func(err error, detail string) error {
		return &CallError{File: pos.Filename, Marker: spec.Name, Line: pos.Line, Err: err, Detail: detail}
	}

	slots := spec.Kind.Slots()
	if len(call.Args) < slots.MinArgs() {
		return nil, callErr(ErrSyntax, fmt.Sprintf("expected at least %d arguments, got %d", slots.MinArgs(), len(call.Args)))
	}

	arg := func(slot int, name string) (string, error) {
		if slot < 0 {
			return "", nil
		}

		s, ok := constString(info, call.Args[slot])
		if !ok {
			return "", callErr(ErrNonLiteral, name+" argument")
		}

		return s, nil
	}

	domain, err := arg(slots.Domain, "domain")
	if err != nil {
		return nil, err
	}

	id, err := arg(slots.ID, "msgid")
	if err != nil {
		return nil, err
	}

	plural, err := arg(slots.Plural, "plural")
	if err != nil {
		return nil, err
	}

	return &FileEntry{
		File: pos.Filename,
		Entry: Entry{
			Domain:    domain,
			Singular:  id,
			Plural:    plural,
			HasPlural: slots.Plural >= 0,
			Line:      pos.Line,
			Marker:    spec.Name,
			Empty:     id == "",
		},
	}, nil
}

// constString evaluates expr to a constant string if possible using types.Info.
// Non-constant expressions return false.
func constString(info *types.Info, expr ast.Expr) (string, bool) {
	tv, ok := info.Types[expr]
	if !ok || tv.Value == nil || tv.Value.Kind() != constant.String {
		return "", false
	}

	return constant.StringVal(tv.Value), true
}

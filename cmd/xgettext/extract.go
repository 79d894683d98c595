package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wvell/xgettext"
)

const (
	dirPermissions  = 0o755
	filePermissions = 0o644
)

var extractCmd = &cobra.Command{
	Use:   "extract [dirs or files...]",
	Short: "Extract messages into a template per domain",
	Long: `Extract scans the given directories recursively (default ".") and writes
<output>/<domain>.pot for every domain it found messages for. Messages without
a domain go to the default domain.

With --update, every existing <output>/<lang>/<domain>.po is merged with the
new template. Only files that exist are updated; create an empty file to start
a new translation:

    $ mkdir -p po/nl && touch po/nl/messages.po`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := optionsFromConfig(args)
		if err != nil {
			return err
		}

		return runExtract(cmd.Context(), afero.NewOsFs(), opts)
	},
}

func init() {
	flags := extractCmd.Flags()
	flags.StringP("output", "o", "po", "output directory for templates and translations")
	flags.StringP("default-domain", "d", xgettext.DefaultDomain, "domain of messages without an explicit domain")
	flags.String("package-name", "PACKAGE", "package name for the Project-Id-Version header")
	flags.String("package-version", "VERSION", "package version for the Project-Id-Version header")
	flags.String("bugs-address", "", "address for the Report-Msgid-Bugs-To header")
	flags.Bool("update", false, "merge the templates into the existing translations")
	flags.Bool("remove", false, "drop translations that are no longer found in the source code instead of keeping them as obsolete")
	flags.Bool("go", true, "extract go packages using type information")
	flags.Int("workers", 0, "number of files scanned at once (default: number of CPUs)")

	for _, name := range []string{"output", "default-domain", "package-name", "package-version", "bugs-address", "update", "remove", "go", "workers"} {
		_ = viper.BindPFlag(name, flags.Lookup(name))
	}

	rootCmd.AddCommand(extractCmd)
}

type options struct {
	sources        []string
	output         string
	defaultDomain  string
	keywords       []string
	markersFile    string
	packageName    string
	packageVersion string
	bugsAddress    string
	update         bool
	remove         bool
	golang         bool
	workers        int
	now            time.Time
}

func optionsFromConfig(args []string) (options, error) {
	sources := args
	if len(sources) == 0 {
		sources = []string{"."}
	}

	opts := options{
		sources:        sources,
		output:         viper.GetString("output"),
		defaultDomain:  viper.GetString("default-domain"),
		keywords:       viper.GetStringSlice("keyword"),
		markersFile:    viper.GetString("markers"),
		packageName:    viper.GetString("package-name"),
		packageVersion: viper.GetString("package-version"),
		bugsAddress:    viper.GetString("bugs-address"),
		update:         viper.GetBool("update"),
		remove:         viper.GetBool("remove"),
		golang:         viper.GetBool("go"),
		workers:        viper.GetInt("workers"),
		now:            time.Now(),
	}

	if opts.output == "" {
		return options{}, fmt.Errorf("output directory is required")
	}

	return opts, nil
}

func (o options) extraMarkers(fs afero.Fs) ([]xgettext.MarkerSpec, error) {
	var specs []xgettext.MarkerSpec

	if o.markersFile != "" {
		fromFile, err := xgettext.LoadMarkers(fs, o.markersFile)
		if err != nil {
			return nil, err
		}

		specs = append(specs, fromFile...)
	}

	for _, keyword := range o.keywords {
		spec, err := xgettext.ParseMarker(keyword)
		if err != nil {
			return nil, fmt.Errorf("parsing keyword: %w", err)
		}

		specs = append(specs, spec)
	}

	return specs, nil
}

func (o options) header() xgettext.Header {
	return xgettext.Header{
		ProjectIDVersion:  o.packageName + " " + o.packageVersion,
		ReportMsgidBugsTo: o.bugsAddress,
		CreationDate:      o.now,
	}
}

func runExtract(ctx context.Context, fs afero.Fs, opts options) error {
	extra, err := opts.extraMarkers(fs)
	if err != nil {
		return err
	}

	catalog := xgettext.NewCatalog(opts.defaultDomain)

	if err := scanSources(ctx, fs, opts, extra, catalog); err != nil {
		return err
	}

	if opts.golang {
		if err := scanGoPackages(fs, opts, extra, catalog); err != nil {
			return err
		}
	}

	stats := catalog.Stats()
	if stats.Syntax > 0 || stats.NonLiteral > 0 {
		log.Warn().
			Int("syntax", stats.Syntax).
			Int("non_literal", stats.NonLiteral).
			Msg("Skipped calls that could not be extracted")
	}

	log.Info().
		Int("messages", catalog.Len()).
		Int("domains", len(catalog.Domains())).
		Int("empty", stats.Empty).
		Msg("Extracted messages")

	if err := fs.MkdirAll(opts.output, dirPermissions); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	for _, domain := range catalog.Domains() {
		path := filepath.Join(opts.output, domain+".pot")
		if err := writePOFile(fs, path, xgettext.NewTemplate(catalog.Messages(domain), opts.header())); err != nil {
			return err
		}

		log.Info().Str("domain", domain).Str("file", path).Msg("Wrote template")
	}

	if opts.update {
		return updateTranslations(fs, opts, catalog)
	}

	return nil
}

func scanSources(ctx context.Context, fs afero.Fs, opts options, extra []xgettext.MarkerSpec, catalog *xgettext.Catalog) error {
	var files []string
	for _, src := range opts.sources {
		info, err := fs.Stat(src)
		if err != nil {
			return fmt.Errorf("reading source %s: %w", src, err)
		}

		if !info.IsDir() {
			if _, err := xgettext.SyntaxFor(src); err != nil {
				log.Warn().Str("file", src).Msg("Skipping file without syntax, pass its directory to extract go sources")
				continue
			}

			files = append(files, src)
			continue
		}

		found, err := xgettext.SourceFiles(fs, src)
		if err != nil {
			return err
		}

		files = append(files, found...)
	}

	scanner := xgettext.NewScanner(fs, xgettext.WithExtraMarkers(extra...), xgettext.WithWorkers(opts.workers))

	results, err := scanner.Scan(ctx, files)
	if err != nil {
		return fmt.Errorf("scanning sources: %w", err)
	}

	for _, result := range results {
		catalog.AddResult(result)
	}

	return nil
}

// scanGoPackages uses the go toolchain, so it only works on the real filesystem.
func scanGoPackages(fs afero.Fs, opts options, extra []xgettext.MarkerSpec, catalog *xgettext.Catalog) error {
	if _, ok := fs.(*afero.OsFs); !ok {
		return nil
	}

	markers := xgettext.GoMarkers()
	markers.Add(extra...)

	for _, src := range opts.sources {
		if info, err := fs.Stat(src); err != nil || !info.IsDir() {
			continue
		}

		hasGo, err := xgettext.HasGoFiles(fs, src)
		if err != nil {
			return err
		}

		if !hasGo {
			continue
		}

		entries, diags, err := xgettext.ExtractGoPackages(src, markers)
		if err != nil {
			return fmt.Errorf("extracting go packages in %s: %w", src, err)
		}

		for _, e := range entries {
			file := e.File
			if rel, err := filepath.Rel(mustAbs(src), file); err == nil {
				file = filepath.ToSlash(filepath.Join(src, rel))
			}

			catalog.Add(file, e.Entry)
		}

		for _, diag := range diags {
			log.Debug().Err(diag).Msg("Skipped go call")
		}

		catalog.AddDiagnostics(diags...)
	}

	return nil
}

func mustAbs(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}

	return abs
}

func updateTranslations(fs afero.Fs, opts options, catalog *xgettext.Catalog) error {
	parser := xgettext.NewParser(fs)

	dirs, err := parser.TranslationDirs(opts.output)
	if err != nil {
		return err
	}

	if len(dirs) == 0 {
		log.Warn().Str("dir", opts.output).Msg("No locale directories found, nothing to update")
		return nil
	}

	for lang, dir := range dirs {
		langID, err := xgettext.ParseLanguage(lang)
		if err != nil {
			return fmt.Errorf("parsing language %s: %w", lang, err)
		}

		for _, domain := range catalog.Domains() {
			path := filepath.Join(dir, domain+".po")

			exists, err := afero.Exists(fs, path)
			if err != nil {
				return fmt.Errorf("checking %s: %w", path, err)
			}

			if !exists {
				continue
			}

			existing, err := parser.ReadPO(path)
			if err != nil {
				return fmt.Errorf("reading language file %s: %w", path, err)
			}

			header := opts.header()
			header.Language = langID.POLanguage()

			merged := xgettext.Merge(catalog.Messages(domain), existing, header, opts.remove)
			if err := writePOFile(fs, path, merged); err != nil {
				return err
			}

			log.Info().Str("language", lang).Str("file", path).Msg("Updated translations")
		}
	}

	return nil
}

func writePOFile(fs afero.Fs, path string, f *xgettext.POFile) error {
	out, err := fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePermissions)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer out.Close()

	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	return out.Close()
}

package xgettext

import (
	"fmt"
	"path/filepath"
	"regexp"
	"slices"

	"github.com/leonelquinteros/gotext"
	"github.com/spf13/afero"
	"golang.org/x/exp/maps"
)

var isLocaleDir = regexp.MustCompile(`^([a-zA-Z]{2}(?:[-_][a-zA-Z]{2})?)$`)

func NewParser(fs afero.Fs) *Parser {
	return &Parser{fs: fs}
}

// Parser reads existing translations.
type Parser struct {
	fs afero.Fs
}

// TranslationDirs returns the locale directories in dir keyed by language id.
// The expected layout is <dir>/<lang>/<domain>.po, e.g. po/nl/messages.po or po/pt_BR/messages.po.
// Directories whose name is not a language are ignored.
func (p *Parser) TranslationDirs(dir string) (map[string]string, error) {
	entries, err := afero.ReadDir(p.fs, dir)
	if err != nil {
		return nil, fmt.Errorf("reading translations: %w", err)
	}

	dirs := make(map[string]string)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		match := isLocaleDir.FindStringSubmatch(entry.Name())
		if match == nil {
			Logger.Debug().Str("dir", entry.Name()).Msg("Skipping non locale directory")
			continue
		}

		langID, err := ParseLanguage(match[1])
		if err != nil {
			return nil, fmt.Errorf("parsing language id: %w", err)
		}

		dirs[langID.String()] = filepath.Join(dir, entry.Name())
	}

	return dirs, nil
}

// Translations holds the translated messages of an existing PO file.
type Translations struct {
	PluralForms  string
	RevisionDate string
	entries      map[string]POEntry
}

// Lookup returns the translations of msg. Translations of a message that changed
// between singular and plural are not reused.
func (t *Translations) Lookup(msg *Message) ([]string, bool) {
	if t == nil {
		return nil, false
	}

	e, ok := t.entries[msg.ID]
	if !ok || e.HasPlural != msg.HasPlural {
		return nil, false
	}

	return e.Strs, true
}

// IDs returns the msgids of all translations, sorted.
func (t *Translations) IDs() []string {
	if t == nil {
		return nil
	}

	ids := maps.Keys(t.entries)
	slices.Sort(ids)

	return ids
}

// ReadPO parses the PO file at path. A missing file yields empty translations.
func (p *Parser) ReadPO(path string) (*Translations, error) {
	exists, err := afero.Exists(p.fs, path)
	if err != nil {
		return nil, fmt.Errorf("checking %s: %w", path, err)
	}

	if !exists {
		return &Translations{entries: make(map[string]POEntry)}, nil
	}

	data, err := afero.ReadFile(p.fs, path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}

	return ParsePO(data), nil
}

// ParsePO parses PO data with gotext.
func ParsePO(data []byte) *Translations {
	po := gotext.NewPo()
	po.Parse(data)

	t := &Translations{
		PluralForms:  headerField(data, "Plural-Forms"),
		RevisionDate: headerField(data, "PO-Revision-Date"),
		entries:      make(map[string]POEntry),
	}

	for id, tr := range po.GetDomain().GetTranslations() {
		if id == "" {
			continue
		}

		e := POEntry{
			ID:        tr.ID,
			Plural:    tr.PluralID,
			HasPlural: tr.PluralID != "",
		}

		for i := range len(tr.Trs) {
			e.Strs = append(e.Strs, tr.Trs[i])
		}

		t.entries[id] = e
	}

	return t
}

// headerField finds a field in the header entry of raw PO data.
func headerField(data []byte, name string) string {
	re := regexp.MustCompile(`"` + regexp.QuoteMeta(name) + `:\s*([^"\\]*)\\n"`)

	match := re.FindSubmatch(data)
	if match == nil {
		return ""
	}

	return string(match[1])
}

// Merge builds the PO file for a locale from the current messages and the existing translations.
// Translations of messages that are gone are kept as obsolete entries, or dropped when remove is set.
func Merge(msgs []*Message, existing *Translations, header Header, remove bool) *POFile {
	if header.PluralForms == "" && existing != nil {
		header.PluralForms = existing.PluralForms
	}
	if header.RevisionDate == "" && existing != nil {
		header.RevisionDate = existing.RevisionDate
	}

	type shape struct {
		id        string
		hasPlural bool
	}

	f := &POFile{Header: header}
	current := make(map[shape]bool, len(msgs))

	for _, msg := range msgs {
		strs, _ := existing.Lookup(msg)

		f.Entries = append(f.Entries, POEntry{
			ID:        msg.ID,
			Plural:    msg.Plural,
			HasPlural: msg.HasPlural,
			Refs:      msg.Refs,
			Strs:      strs,
		})
		current[shape{msg.ID, msg.HasPlural}] = true
	}

	if remove {
		return f
	}

	// A translation whose message switched between singular and plural is not
	// reused above, so it is kept as obsolete as well.
	for _, id := range existing.IDs() {
		e := existing.entries[id]
		if current[shape{id, e.HasPlural}] {
			continue
		}

		Logger.Warn().
			Str("msgid", id).
			Str("language", header.Language).
			Msg("Translation not found in source code, use remove to drop it")

		f.Obsolete = append(f.Obsolete, e)
	}

	return f
}

package xgettext

import (
	"cmp"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
)

const (
	templatePluralForms = "nplurals=INTEGER; plural=EXPRESSION;"
	templateDate        = "YEAR-MO-DA HO:MI+ZONE"
	poDateLayout        = "2006-01-02 15:04-0700"
)

var nplurals = regexp.MustCompile(`nplurals\s*=\s*(\d+)`)

// Header holds the fields of the header entry of a PO file.
type Header struct {
	ProjectIDVersion  string
	ReportMsgidBugsTo string
	CreationDate      time.Time
	// RevisionDate is written as is. Templates use the gettext placeholder.
	RevisionDate string
	Language     string
	// PluralForms defaults to the gettext template placeholder.
	PluralForms string
}

// NPlurals returns the number of plural forms declared by the header, at least 2.
func (h Header) NPlurals() int {
	match := nplurals.FindStringSubmatch(h.PluralForms)
	if match == nil {
		return 2
	}

	n, err := strconv.Atoi(match[1])
	if err != nil || n < 1 {
		return 2
	}

	return n
}

func (h Header) fields() [][2]string {
	revision := cmp.Or(h.RevisionDate, templateDate)
	pluralForms := cmp.Or(h.PluralForms, templatePluralForms)

	created := ""
	if !h.CreationDate.IsZero() {
		created = h.CreationDate.Format(poDateLayout)
	}

	return [][2]string{
		{"Project-Id-Version", h.ProjectIDVersion},
		{"Report-Msgid-Bugs-To", h.ReportMsgidBugsTo},
		{"POT-Creation-Date", created},
		{"PO-Revision-Date", revision},
		{"Language", h.Language},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/plain; charset=UTF-8"},
		{"Content-Transfer-Encoding", "8bit"},
		{"Plural-Forms", pluralForms},
	}
}

// POEntry is a message with its translations. Strs holds msgstr, or
// msgstr[0..n-1] for plural entries.
type POEntry struct {
	ID        string
	Plural    string
	HasPlural bool
	Refs      []Ref
	Strs      []string
}

// POFile is a PO or POT file ready to be written.
type POFile struct {
	Header  Header
	Entries []POEntry
	// Obsolete entries are written commented out with "#~".
	Obsolete []POEntry
}

// NewTemplate builds a POT file for the messages of one domain.
func NewTemplate(msgs []*Message, header Header) *POFile {
	f := &POFile{Header: header}
	for _, msg := range msgs {
		f.Entries = append(f.Entries, POEntry{
			ID:        msg.ID,
			Plural:    msg.Plural,
			HasPlural: msg.HasPlural,
			Refs:      msg.Refs,
		})
	}

	return f
}

// WriteTo writes the file in the gettext PO format.
func (f *POFile) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder

	b.WriteString("msgid \"\"\nmsgstr \"\"\n")
	for _, field := range f.Header.fields() {
		fmt.Fprintf(&b, "\"%s: %s\\n\"\n", field[0], escape(field[1]))
	}

	n := f.Header.NPlurals()

	for _, e := range f.Entries {
		b.WriteString("\n")
		writeEntry(&b, e, n, "")
	}

	for _, e := range f.Obsolete {
		b.WriteString("\n")
		writeEntry(&b, e, n, "#~ ")
	}

	written, err := io.WriteString(w, b.String())
	return int64(written), err
}

// WritePOT writes the template of one domain to w.
func WritePOT(w io.Writer, msgs []*Message, header Header) error {
	_, err := NewTemplate(msgs, header).WriteTo(w)
	return err
}

func writeEntry(b *strings.Builder, e POEntry, nplurals int, prefix string) {
	if len(e.Refs) > 0 && prefix == "" {
		writeRefs(b, e.Refs)
	}

	writeString(b, prefix, "msgid", e.ID)

	if !e.HasPlural {
		writeString(b, prefix, "msgstr", msgstr(e.Strs, 0))
		return
	}

	writeString(b, prefix, "msgid_plural", e.Plural)
	for i := range max(nplurals, len(e.Strs)) {
		writeString(b, prefix, fmt.Sprintf("msgstr[%d]", i), msgstr(e.Strs, i))
	}
}

func msgstr(strs []string, i int) string {
	if i < len(strs) {
		return strs[i]
	}

	return ""
}

// writeRefs writes sorted, de-duplicated "#: file:line" references.
func writeRefs(b *strings.Builder, refs []Ref) {
	sorted := slices.Clone(refs)
	slices.SortFunc(sorted, func(a, b Ref) int {
		return cmp.Or(cmp.Compare(a.File, b.File), cmp.Compare(a.Line, b.Line))
	})
	sorted = slices.Compact(sorted)

	b.WriteString("#:")
	for _, r := range sorted {
		fmt.Fprintf(b, " %s:%d", r.File, r.Line)
	}
	b.WriteString("\n")
}

// writeString writes a keyword with its quoted value. Values spanning
// multiple lines are split after every newline, gettext style.
func writeString(b *strings.Builder, prefix, keyword, value string) {
	lines := strings.SplitAfter(value, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	if len(lines) <= 1 {
		fmt.Fprintf(b, "%s%s \"%s\"\n", prefix, keyword, escape(value))
		return
	}

	fmt.Fprintf(b, "%s%s \"\"\n", prefix, keyword)
	for _, line := range lines {
		fmt.Fprintf(b, "%s\"%s\"\n", prefix, escape(line))
	}
}

func escape(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			if c < 0x20 || c == 0x7f {
				fmt.Fprintf(&b, `\%03o`, c)
				continue
			}
			b.WriteByte(c)
		}
	}

	return b.String()
}

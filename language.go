package xgettext

import (
	"fmt"
	"regexp"

	"golang.org/x/text/language"
)

var langRe = regexp.MustCompile(`(?i)([a-z]{2,8})([-_][a-z]{4})?([-_][a-z]{2}|\d{3})?`)

// ParseLanguage parses the language string into a LanguageID.
// If the region can not reliably be parsed, it is set to an empty string.
func ParseLanguage(lang string) (LanguageID, error) {
	match := langRe.FindString(lang)
	if match == "" {
		return LanguageID{}, fmt.Errorf("invalid language: %s", lang)
	}
	lang = match

	tag, err := language.Parse(lang)
	if err != nil {
		return LanguageID{}, fmt.Errorf("error parsing %s: %w", lang, err)
	}

	var id LanguageID

	base, baseconf := tag.Base()
	if baseconf != language.Exact {
		return LanguageID{}, fmt.Errorf("error parsing %s: could not parse base language", lang)
	}

	id.Language = base.String()

	region, regionconf := tag.Region()
	if regionconf == language.Exact {
		id.Region = region.String()
	}

	return id, nil
}

// LanguageID holds the language and an optional region.
type LanguageID struct {
	Language string
	Region   string
}

func (l LanguageID) String() string {
	if l.Region != "" {
		return l.Language + "-" + l.Region
	}

	return l.Language
}

// POLanguage returns the id in the form used by the PO Language header, e.g. pt_BR.
func (l LanguageID) POLanguage() string {
	if l.Region != "" {
		return l.Language + "_" + l.Region
	}

	return l.Language
}

func (l LanguageID) Empty() bool {
	return l.Language == "" && l.Region == ""
}

package xgettext

import (
	"fmt"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/afero"
	"golang.org/x/exp/maps"
)

var (
	ErrUnknownKind = fmt.Errorf("unknown marker kind")
)

// Kind describes which argument slots of a marker call carry the domain,
// the message ids and the count.
type Kind int

const (
	KindSimple Kind = iota
	KindDomain
	KindPlural
	KindDomainPlural
)

var kindNames = map[Kind]string{
	KindSimple:       "simple",
	KindDomain:       "domain",
	KindPlural:       "plural",
	KindDomainPlural: "domain+plural",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return fmt.Sprintf("Kind(%d)", int(k))
}

func (k Kind) MarshalText() ([]byte, error) {
	if _, ok := kindNames[k]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(k))
	}

	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	kind, err := ParseKind(string(text))
	if err != nil {
		return err
	}

	*k = kind
	return nil
}

// ParseKind parses the text form of a Kind.
func ParseKind(s string) (Kind, error) {
	for kind, name := range kindNames {
		if strings.EqualFold(name, strings.TrimSpace(s)) {
			return kind, nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Slots holds the zero based argument positions of a marker call.
// A position of -1 means the slot is absent.
type Slots struct {
	Domain int
	ID     int
	Plural int
	Count  int
}

// Slots returns the argument layout for the kind.
func (k Kind) Slots() Slots {
	switch k {
	case KindDomain:
		return Slots{Domain: 0, ID: 1, Plural: -1, Count: -1}
	case KindPlural:
		return Slots{Domain: -1, ID: 0, Plural: 1, Count: 2}
	case KindDomainPlural:
		return Slots{Domain: 0, ID: 1, Plural: 2, Count: 3}
	default:
		return Slots{Domain: -1, ID: 0, Plural: -1, Count: -1}
	}
}

// MinArgs is the number of arguments a call needs for every slot to be present.
// Calls may pass more, e.g. the category argument of dcgettext.
func (s Slots) MinArgs() int {
	return max(s.Domain, s.ID, s.Plural, s.Count) + 1
}

// MarkerSpec names a function whose calls wrap translatable strings.
type MarkerSpec struct {
	Name string `yaml:"name"`
	Kind Kind   `yaml:"kind"`
}

// ParseMarker parses a keyword in the form "name" or "name:kind".
func ParseMarker(keyword string) (MarkerSpec, error) {
	name, kind, found := strings.Cut(keyword, ":")
	name = strings.TrimSpace(name)
	if name == "" {
		return MarkerSpec{}, fmt.Errorf("empty marker name in %q", keyword)
	}

	spec := MarkerSpec{Name: name, Kind: KindSimple}
	if found {
		k, err := ParseKind(kind)
		if err != nil {
			return MarkerSpec{}, err
		}

		spec.Kind = k
	}

	return spec, nil
}

// Markers is the table of recognised marker functions keyed by name.
// Names are matched literally, aliases are not resolved.
type Markers map[string]MarkerSpec

func NewMarkers(specs ...MarkerSpec) Markers {
	m := make(Markers, len(specs))
	m.Add(specs...)

	return m
}

// Add inserts the specs, replacing existing entries with the same name.
func (m Markers) Add(specs ...MarkerSpec) {
	for _, spec := range specs {
		m[spec.Name] = spec
	}
}

func (m Markers) Lookup(name string) (MarkerSpec, bool) {
	spec, ok := m[name]
	return spec, ok
}

// Names returns the marker names in sorted order.
func (m Markers) Names() []string {
	names := maps.Keys(m)
	slices.Sort(names)

	return names
}

// Clone returns a copy that can be extended without touching m.
func (m Markers) Clone() Markers {
	c := make(Markers, len(m))
	maps.Copy(c, m)

	return c
}

// PythonMarkers returns the markers recognised by xgettext for Python sources.
func PythonMarkers() Markers {
	return NewMarkers(
		MarkerSpec{Name: "gettext", Kind: KindSimple},
		MarkerSpec{Name: "lgettext", Kind: KindSimple},
		MarkerSpec{Name: "ugettext", Kind: KindSimple},
		MarkerSpec{Name: "_", Kind: KindSimple},
		MarkerSpec{Name: "N_", Kind: KindSimple},
		MarkerSpec{Name: "dgettext", Kind: KindDomain},
		MarkerSpec{Name: "ldgettext", Kind: KindDomain},
		MarkerSpec{Name: "ngettext", Kind: KindPlural},
		MarkerSpec{Name: "lngettext", Kind: KindPlural},
		MarkerSpec{Name: "ungettext", Kind: KindPlural},
		MarkerSpec{Name: "dngettext", Kind: KindDomainPlural},
		MarkerSpec{Name: "ldngettext", Kind: KindDomainPlural},
	)
}

// CMarkers returns the markers recognised for C and C++ sources.
func CMarkers() Markers {
	return NewMarkers(
		MarkerSpec{Name: "gettext", Kind: KindSimple},
		MarkerSpec{Name: "_", Kind: KindSimple},
		MarkerSpec{Name: "N_", Kind: KindSimple},
		MarkerSpec{Name: "dgettext", Kind: KindDomain},
		MarkerSpec{Name: "dcgettext", Kind: KindDomain},
		MarkerSpec{Name: "ngettext", Kind: KindPlural},
		MarkerSpec{Name: "dngettext", Kind: KindDomainPlural},
		MarkerSpec{Name: "dcngettext", Kind: KindDomainPlural},
	)
}

// GoMarkers returns the markers for Go sources: the package functions of gotext.
func GoMarkers() Markers {
	return NewMarkers(
		MarkerSpec{Name: "gotext.Get", Kind: KindSimple},
		MarkerSpec{Name: "gotext.GetD", Kind: KindDomain},
		MarkerSpec{Name: "gotext.GetN", Kind: KindPlural},
		MarkerSpec{Name: "gotext.GetND", Kind: KindDomainPlural},
	)
}

// MarkersFile is the format of a marker table file.
//
//	markers:
//	  - name: tr
//	    kind: simple
//	  - name: trn
//	    kind: plural
type MarkersFile struct {
	Markers []MarkerSpec `yaml:"markers"`
}

// LoadMarkers reads extra marker specs from a yaml file.
func LoadMarkers(fs afero.Fs, path string) ([]MarkerSpec, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading markers: %w", err)
	}

	var file MarkersFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decoding markers %s: %w", path, err)
	}

	for i, spec := range file.Markers {
		if spec.Name == "" {
			return nil, fmt.Errorf("marker %d in %s has no name", i, path)
		}
	}

	return file.Markers, nil
}

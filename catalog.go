package xgettext

import (
	"errors"
	"slices"

	"golang.org/x/exp/maps"
)

// DefaultDomain is the domain used for entries without an explicit domain.
const DefaultDomain = "messages"

// Ref points at the marker call a message was extracted from.
type Ref struct {
	File string
	Line int
}

// Message is a catalog entry. It is identified by its domain, id and plural.
type Message struct {
	Domain    string
	ID        string
	Plural    string
	HasPlural bool
	Refs      []Ref
}

type messageKey struct {
	id     string
	plural string
	// hasPlural keeps ngettext("a", "", n) apart from gettext("a").
	hasPlural bool
}

type domain struct {
	index    map[messageKey]*Message
	messages []*Message
}

// Stats counts what happened to the calls that were fed to a catalog.
type Stats struct {
	Accepted   int
	Empty      int
	Syntax     int
	NonLiteral int
}

// Skipped is the number of calls that produced no message.
func (s Stats) Skipped() int {
	return s.Empty + s.Syntax + s.NonLiteral
}

// Catalog merges entries from many files into per domain message lists.
// Messages keep the order in which they were first seen.
type Catalog struct {
	defaultDomain string
	domains       map[string]*domain
	stats         Stats
}

func NewCatalog(defaultDomain string) *Catalog {
	if defaultDomain == "" {
		defaultDomain = DefaultDomain
	}

	return &Catalog{
		defaultDomain: defaultDomain,
		domains:       make(map[string]*domain),
	}
}

// Add merges the entry into the catalog. Empty entries are discarded and false is returned.
func (c *Catalog) Add(file string, e Entry) bool {
	if e.Empty {
		c.stats.Empty++
		return false
	}

	name := e.Domain
	if name == "" {
		name = c.defaultDomain
	}

	d, ok := c.domains[name]
	if !ok {
		d = &domain{index: make(map[messageKey]*Message)}
		c.domains[name] = d
	}

	c.stats.Accepted++

	key := messageKey{id: e.Singular, plural: e.Plural, hasPlural: e.HasPlural}
	ref := Ref{File: file, Line: e.Line}

	if msg, ok := d.index[key]; ok {
		msg.Refs = append(msg.Refs, ref)
		return true
	}

	msg := &Message{
		Domain:    name,
		ID:        e.Singular,
		Plural:    e.Plural,
		HasPlural: e.HasPlural,
		Refs:      []Ref{ref},
	}
	d.index[key] = msg
	d.messages = append(d.messages, msg)

	return true
}

// AddResult adds every entry of a scanned file and counts its diagnostics.
func (c *Catalog) AddResult(r FileResult) {
	for _, e := range r.Entries {
		c.Add(r.File, e)
	}

	c.AddDiagnostics(r.Diagnostics...)
}

// AddDiagnostics counts rejected calls.
func (c *Catalog) AddDiagnostics(diags ...error) {
	for _, err := range diags {
		switch {
		case errors.Is(err, ErrNonLiteral):
			c.stats.NonLiteral++
		default:
			c.stats.Syntax++
		}
	}
}

// DefaultDomain returns the domain used for entries without a domain.
func (c *Catalog) DefaultDomain() string {
	return c.defaultDomain
}

// Domains returns the names of all domains with at least one message, sorted.
func (c *Catalog) Domains() []string {
	names := maps.Keys(c.domains)
	slices.Sort(names)

	return names
}

// Messages returns the messages of a domain in first appearance order.
func (c *Catalog) Messages(name string) []*Message {
	d, ok := c.domains[name]
	if !ok {
		return nil
	}

	return slices.Clone(d.messages)
}

// Len returns the number of messages over all domains.
func (c *Catalog) Len() int {
	n := 0
	for _, d := range c.domains {
		n += len(d.messages)
	}

	return n
}

func (c *Catalog) Stats() Stats {
	return c.stats
}

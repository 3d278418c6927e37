package extract

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"txjs-cli/internal/interpolation"
	"txjs-cli/internal/phrase"
)

// Diagnostic is a non-fatal note about a translation site. Dropped is set
// when the site produced no record; otherwise the record was kept and the
// diagnostic is a warning about it.
type Diagnostic struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Path    string `json:"path"`
	Reason  string `json:"reason"`
	Dropped bool   `json:"dropped"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d:%d: %s: %s", d.File, d.Line, d.Column, d.Path, d.Reason)
}

// Diagnostic reasons.
const (
	ReasonMissing       = "phrase argument missing"
	ReasonNotConstant   = "phrase is not a constant string"
	ReasonEmpty         = "phrase is empty"
	ReasonCharLimit     = "phrase exceeds character limit"
	ReasonFilteredByTag = "dropped by tag filter"
	ReasonPlaceholder   = "phrase contains a non-ICU placeholder"
)

// Builder turns matches into phrase records.
type Builder struct {
	Keys phrase.KeyGenerator
	Tags phrase.TagPolicy
}

// Build resolves m against the analysis it came from. It reports false when
// the match contributes no record; diagnostics explain why, or flag a kept
// record whose string exceeds its character limit.
func (b Builder) Build(a *Analysis, m Match) (phrase.Record, []Diagnostic, bool) {
	diag := func(reason string) Diagnostic {
		return Diagnostic{File: m.File, Line: m.Line, Column: m.Column, Path: m.Path, Reason: reason}
	}
	drop := func(reason string) (phrase.Record, []Diagnostic, bool) {
		d := diag(reason)
		d.Dropped = true
		return phrase.Record{}, []Diagnostic{d}, false
	}

	if m.Phrase == nil {
		return drop(ReasonMissing)
	}
	str, ok := a.fold(m.Phrase, m.scope)
	if !ok {
		return drop(ReasonNotConstant)
	}
	if str == "" {
		return drop(ReasonEmpty)
	}

	rec := phrase.Record{
		String:      str,
		Context:     strings.Join(b.metaList(a, m, MetaContext), ","),
		Comment:     b.metaString(a, m, MetaComment),
		Occurrences: []string{m.File},
	}
	if limit, ok := b.metaInt(a, m, MetaCharLimit); ok && limit > 0 {
		rec.CharLimit = limit
	}
	rec.EscapeVars = b.metaBool(a, m, MetaEscapeVars)
	rec.Inline = b.metaBool(a, m, MetaInline)
	rec.Sanitize = b.metaBool(a, m, MetaSanitize)

	tags, keep := b.Tags.Apply(phrase.UnionTags(nil, b.metaList(a, m, MetaTags)))
	if !keep {
		return drop(ReasonFilteredByTag)
	}
	rec.Tags = tags

	rec.Key = b.metaString(a, m, MetaKey)
	if rec.Key == "" {
		keys := b.Keys
		if keys == nil {
			keys = phrase.SourceKeys{}
		}
		rec.Key = keys.Key(rec.String, rec.Context)
	}

	var diags []Diagnostic
	if n := utf8.RuneCountInString(rec.String); rec.CharLimit > 0 && n > rec.CharLimit {
		diags = append(diags, diag(fmt.Sprintf("%s (%d > %d)", ReasonCharLimit, n, rec.CharLimit)))
	}
	for _, p := range interpolation.Suspicious(rec.String) {
		diags = append(diags, diag(fmt.Sprintf("%s %q, use {name}", ReasonPlaceholder, p.Text)))
	}
	return rec, diags, true
}

func (b Builder) metaString(a *Analysis, m Match, name string) string {
	v, ok := m.Meta[name]
	if !ok {
		return ""
	}
	s, _ := a.fold(v, m.scope)
	return s
}

func (b Builder) metaList(a *Analysis, m Match, name string) []string {
	v, ok := m.Meta[name]
	if !ok {
		return nil
	}
	items, _ := a.foldList(v, m.scope)
	return items
}

func (b Builder) metaInt(a *Analysis, m Match, name string) (int, bool) {
	v, ok := m.Meta[name]
	if !ok {
		return 0, false
	}
	return a.foldInt(v, m.scope)
}

func (b Builder) metaBool(a *Analysis, m Match, name string) bool {
	v, ok := m.Meta[name]
	if !ok {
		return false
	}
	val, _ := a.foldBool(v, m.scope)
	return val
}

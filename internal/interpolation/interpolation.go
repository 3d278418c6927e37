// Package interpolation inspects the placeholders inside phrase strings.
// Phrases use ICU message syntax, so {name} is a variable; JavaScript
// ${name} and printf-style %s left in a plain string are almost always a
// mistake and are reported.
package interpolation

import (
	"regexp"
	"slices"
	"strings"
)

// Kind classifies a placeholder.
type Kind string

const (
	KindICU      Kind = "icu"
	KindTemplate Kind = "template"
	KindPrintf   Kind = "printf"
)

// Placeholder is one detected placeholder.
type Placeholder struct {
	Kind  Kind
	Text  string
	Start int
}

var (
	templatePattern = regexp.MustCompile(`\$\{[^{}]*\}`)
	printfPattern   = regexp.MustCompile(`%[-+0#]*[0-9]*(?:\.[0-9]+)?[dsfieEgGxXoucq]`)
	// top-level ICU argument: {name} or {name, plural, ...}
	icuArgPattern = regexp.MustCompile(`^\{\s*([\p{L}_][\p{L}\p{N}_]*)\s*(?:,|\})`)
)

// Find returns every placeholder in s, ordered by position. Overlapping
// matches keep the earliest, longest one.
func Find(s string) []Placeholder {
	var all []Placeholder
	for _, loc := range templatePattern.FindAllStringIndex(s, -1) {
		all = append(all, Placeholder{Kind: KindTemplate, Text: s[loc[0]:loc[1]], Start: loc[0]})
	}
	for _, loc := range printfPattern.FindAllStringIndex(s, -1) {
		all = append(all, Placeholder{Kind: KindPrintf, Text: s[loc[0]:loc[1]], Start: loc[0]})
	}
	all = append(all, icuArguments(s)...)
	if len(all) == 0 {
		return nil
	}

	slices.SortStableFunc(all, func(a, b Placeholder) int {
		if a.Start != b.Start {
			return a.Start - b.Start
		}
		return len(b.Text) - len(a.Text)
	})

	var filtered []Placeholder
	lastEnd := -1
	for _, p := range all {
		if p.Start >= lastEnd {
			filtered = append(filtered, p)
			lastEnd = p.Start + len(p.Text)
		}
	}
	return filtered
}

// Suspicious returns the non-ICU placeholders of s. A literal "%%" is not
// a placeholder.
func Suspicious(s string) []Placeholder {
	s = strings.ReplaceAll(s, "%%", "\x00\x00")
	var out []Placeholder
	for _, p := range Find(s) {
		if p.Kind != KindICU {
			out = append(out, p)
		}
	}
	return out
}

// icuArguments scans top-level brace groups, honouring ICU apostrophe
// quoting, and returns those that start with an argument name. An
// apostrophe opens a quote only before a syntax character; elsewhere it is
// literal, so "Don't" quotes nothing.
func icuArguments(s string) []Placeholder {
	var out []Placeholder
	depth, start := 0, -1
	quoted := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\'':
			if i+1 < len(s) && s[i+1] == '\'' {
				i++
				continue
			}
			if quoted {
				quoted = false
			} else if depth == 0 && i+1 < len(s) && strings.IndexByte("{}#|", s[i+1]) >= 0 {
				quoted = true
			}
		case quoted:
		case c == '{':
			if depth == 0 {
				start = i
			}
			depth++
		case c == '}' && depth > 0:
			depth--
			if depth == 0 && start >= 0 {
				group := s[start : i+1]
				if (start == 0 || s[start-1] != '$') && icuArgPattern.MatchString(group) {
					out = append(out, Placeholder{Kind: KindICU, Text: group, Start: start})
				}
				start = -1
			}
		}
	}
	return out
}

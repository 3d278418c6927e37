package extract

import (
	"slices"
	"strings"

	"txjs-cli/internal/syntax"
)

// Match is one recognised translation site. Phrase and metadata are left
// unevaluated; the builder folds them against the match's scope.
type Match struct {
	Path   string
	Phrase syntax.Node
	Meta   map[string]syntax.Node
	File   string
	Line   int
	Column int

	scope *scope
}

// Classify walks the analysed file in source order and returns every call
// or markup element matching shapes.
//
// Method shapes match on the last path segment alone, whatever the
// receiver is, so unrelated objects exposing translate() are picked up too.
func (a *Analysis) Classify(shapes Shapes) []Match {
	c := &classifier{a: a, shapes: shapes}
	c.visit(a.File.Root, nil)
	return c.matches
}

type classifier struct {
	a       *Analysis
	shapes  Shapes
	matches []Match
}

func (c *classifier) visit(n syntax.Node, sc *scope) {
	switch n := n.(type) {
	case *syntax.Scope:
		sc = c.a.scopes[n]
	case *syntax.CallExpr:
		if m, ok := c.call(n, sc); ok {
			c.matches = append(c.matches, m)
		}
	case *syntax.Element:
		if m, ok := c.element(n, sc); ok {
			c.matches = append(c.matches, m)
		}
	}
	for _, child := range syntax.Children(n) {
		c.visit(child, sc)
	}
}

func (c *classifier) matchesPath(path string) bool {
	if slices.Contains(c.shapes.PlainFunctions, path) {
		return true
	}
	i := strings.LastIndexByte(path, '.')
	return i > 0 && slices.Contains(c.shapes.InstanceMethods, path[i+1:])
}

func (c *classifier) call(n *syntax.CallExpr, sc *scope) (Match, bool) {
	path, ok := ResolvePath(n.Callee)
	if !ok || !c.matchesPath(path) {
		return Match{}, false
	}
	m := c.newMatch(path, n.Span, sc)
	if len(n.Args) > 0 {
		m.Phrase = n.Args[0]
	}
	if len(n.Args) > 1 {
		if bag, ok := n.Args[1].(*syntax.ObjectLit); ok {
			for _, p := range bag.Props {
				if p.Computed || p.Spread || !c.shapes.isMetadata(p.Key) {
					continue
				}
				if _, seen := m.Meta[p.Key]; !seen {
					m.Meta[p.Key] = p.Value
				}
			}
		}
	}
	return m, true
}

func (c *classifier) element(n *syntax.Element, sc *scope) (Match, bool) {
	if !slices.Contains(c.shapes.MarkupTags, n.Tag) {
		return Match{}, false
	}
	m := c.newMatch(n.Tag, n.Span, sc)
	for _, attr := range n.Attrs {
		switch {
		case attr.Name == c.shapes.PhraseAttribute:
			m.Phrase = attr.Value
		case c.shapes.isMetadata(attr.Name):
			v := attr.Value
			if v == nil {
				// <T _inline /> means true
				v = &syntax.BoolLit{Span: n.Span, Value: true}
			}
			m.Meta[attr.Name] = v
		}
	}
	return m, true
}

func (c *classifier) newMatch(path string, sp syntax.Span, sc *scope) Match {
	return Match{
		Path:   path,
		Meta:   make(map[string]syntax.Node),
		File:   c.a.File.Path,
		Line:   sp.Line,
		Column: sp.Column,
		scope:  sc,
	}
}

package extract

import (
	"txjs-cli/internal/syntax"
)

// binding is one declared name. Its constant value is computed lazily and
// memoised; reassignment anywhere in the file disqualifies it for every use.
type binding struct {
	name       string
	kind       syntax.DeclKind
	param      bool
	decls      int
	reassigned bool
	init       syntax.Node
	initScope  *scope

	state foldState
	value string
	ok    bool
}

type foldState int

const (
	unvisited foldState = iota
	visiting
	done
)

func (b *binding) constant() bool {
	if b.param || b.reassigned || b.decls != 1 || b.init == nil {
		return false
	}
	switch b.kind {
	case syntax.DeclConst, syntax.DeclLet, syntax.DeclVar:
		return true
	}
	return false
}

type scope struct {
	parent *scope
	kind   syntax.ScopeKind
	vars   map[string]*binding
}

func newScope(parent *scope, kind syntax.ScopeKind) *scope {
	return &scope{parent: parent, kind: kind, vars: make(map[string]*binding)}
}

func (s *scope) lookup(name string) *binding {
	for sc := s; sc != nil; sc = sc.parent {
		if b, ok := sc.vars[name]; ok {
			return b
		}
	}
	return nil
}

// functionScope returns the nearest scope that var declarations hoist to.
func (s *scope) functionScope() *scope {
	sc := s
	for sc.parent != nil && sc.kind == syntax.ScopeBlock {
		sc = sc.parent
	}
	return sc
}

func (s *scope) ensure(name string, kind syntax.DeclKind) *binding {
	if b, ok := s.vars[name]; ok {
		return b
	}
	b := &binding{name: name, kind: kind}
	s.vars[name] = b
	return b
}

// declScope is where a declaration of kind lands when seen in s.
func (s *scope) declScope(kind syntax.DeclKind) *scope {
	switch kind {
	case syntax.DeclVar, syntax.DeclFunction:
		return s.functionScope()
	}
	return s
}

// Analysis is the constant-binding state of one file. It is built by a
// single pass over the tree and never shared across files.
type Analysis struct {
	File   *syntax.File
	root   *scope
	scopes map[*syntax.Scope]*scope
}

// Analyze builds the scope tree and binding table for f.
func Analyze(f *syntax.File) *Analysis {
	a := &Analysis{File: f, scopes: make(map[*syntax.Scope]*scope)}
	a.root = a.enter(f.Root, nil)
	return a
}

func (a *Analysis) enter(sn *syntax.Scope, parent *scope) *scope {
	sc := newScope(parent, sn.Kind)
	a.scopes[sn] = sc

	for _, p := range sn.Params {
		b := sc.ensure(p, syntax.DeclVar)
		b.param = true
	}
	for _, n := range sn.Body {
		a.hoist(n, sc, true)
	}
	for _, n := range sn.Body {
		a.walk(n, sc)
	}
	return sc
}

// hoist registers names before the walk so that assignments appearing
// earlier in source order still resolve to the right binding. Block-scoped
// names are only registered when direct is set.
func (a *Analysis) hoist(n syntax.Node, sc *scope, direct bool) {
	switch n := n.(type) {
	case *syntax.VarDecl:
		if n.Kind == syntax.DeclVar || n.Kind == syntax.DeclFunction || direct {
			sc.declScope(n.Kind).ensure(n.Name, n.Kind)
		}
	case *syntax.Scope:
		if n.Kind == syntax.ScopeFunction {
			return
		}
		direct = false
	}
	for _, c := range syntax.Children(n) {
		a.hoist(c, sc, direct)
	}
}

func (a *Analysis) walk(n syntax.Node, sc *scope) {
	switch n := n.(type) {
	case *syntax.Scope:
		a.enter(n, sc)
		return
	case *syntax.VarDecl:
		b := sc.declScope(n.Kind).ensure(n.Name, n.Kind)
		b.decls++
		if b.decls == 1 {
			b.init = n.Init
			b.initScope = sc
		}
	case *syntax.Assign:
		if n.Target != "" {
			if b := sc.lookup(n.Target); b != nil {
				b.reassigned = true
			}
		}
	}
	for _, c := range syntax.Children(n) {
		a.walk(c, sc)
	}
}

// Constant reports the folded value of name as seen from the program scope.
func (a *Analysis) Constant(name string) (string, bool) {
	b := a.root.lookup(name)
	if b == nil || !b.constant() {
		return "", false
	}
	return a.bindingValue(b)
}

package extract

import (
	"strconv"
	"strings"

	"txjs-cli/internal/phrase"
	"txjs-cli/internal/syntax"
)

// maxIndirection bounds identifier chasing for non-string metadata.
const maxIndirection = 32

// Fold computes the compile-time string value of expr in scope sc.
// Only string literals, substitution-free templates, + concatenation of
// foldable operands, and references to constant bindings fold.
func (a *Analysis) fold(expr syntax.Node, sc *scope) (string, bool) {
	switch n := expr.(type) {
	case *syntax.StringLit:
		return n.Value, true
	case *syntax.TemplateLit:
		if len(n.Exprs) > 0 {
			return "", false
		}
		return strings.Join(n.Quasis, ""), true
	case *syntax.BinaryExpr:
		if n.Op != "+" {
			return "", false
		}
		left, ok := a.fold(n.Left, sc)
		if !ok {
			return "", false
		}
		right, ok := a.fold(n.Right, sc)
		if !ok {
			return "", false
		}
		return left + right, true
	case *syntax.Ident:
		if sc == nil {
			return "", false
		}
		b := sc.lookup(n.Name)
		if b == nil || !b.constant() {
			return "", false
		}
		return a.bindingValue(b)
	default:
		return "", false
	}
}

func (a *Analysis) bindingValue(b *binding) (string, bool) {
	switch b.state {
	case done:
		return b.value, b.ok
	case visiting:
		// self-referential initializer
		return "", false
	}
	b.state = visiting
	b.value, b.ok = a.fold(b.init, b.initScope)
	b.state = done
	return b.value, b.ok
}

// resolve follows identifiers through constant bindings to the expression
// they were initialised with.
func (a *Analysis) resolve(expr syntax.Node, sc *scope) (syntax.Node, *scope) {
	for range maxIndirection {
		id, ok := expr.(*syntax.Ident)
		if !ok || sc == nil {
			return expr, sc
		}
		b := sc.lookup(id.Name)
		if b == nil || !b.constant() {
			return expr, sc
		}
		expr, sc = b.init, b.initScope
	}
	return nil, nil
}

// foldInt folds a numeric literal, or a string that parses as an integer.
func (a *Analysis) foldInt(expr syntax.Node, sc *scope) (int, bool) {
	target, tsc := a.resolve(expr, sc)
	if num, ok := target.(*syntax.NumberLit); ok {
		n, err := strconv.Atoi(strings.ReplaceAll(num.Raw, "_", ""))
		return n, err == nil
	}
	s, ok := a.fold(target, tsc)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	return n, err == nil
}

// foldBool folds a boolean literal.
func (a *Analysis) foldBool(expr syntax.Node, sc *scope) (bool, bool) {
	target, _ := a.resolve(expr, sc)
	if b, ok := target.(*syntax.BoolLit); ok {
		return b.Value, true
	}
	return false, false
}

// foldList folds a comma-separated string or an array of foldable strings.
// Array elements that do not fold are skipped.
func (a *Analysis) foldList(expr syntax.Node, sc *scope) ([]string, bool) {
	target, tsc := a.resolve(expr, sc)
	if arr, ok := target.(*syntax.ArrayLit); ok {
		var out []string
		for _, e := range arr.Elems {
			if s, ok := a.fold(e, tsc); ok {
				out = append(out, phrase.SplitList(s)...)
			}
		}
		return out, true
	}
	s, ok := a.fold(target, tsc)
	if !ok {
		return nil, false
	}
	return phrase.SplitList(s), true
}

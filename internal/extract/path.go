// Package extract is the static phrase extraction engine: it resolves call
// paths, folds constant strings, classifies translation call sites and turns
// them into phrase records.
package extract

import (
	"slices"
	"strings"
	"unicode"

	"txjs-cli/internal/syntax"
)

// ResolvePath reconstructs the dotted name of a callee such as a.b.c.
// Computed access, calls inside the chain, and non-identifier roots
// (this, literals, call results) are unresolvable.
func ResolvePath(callee syntax.Node) (string, bool) {
	var names []string
	for {
		switch n := callee.(type) {
		case *syntax.Ident:
			if !isIdentifier(n.Name) {
				return "", false
			}
			names = append(names, n.Name)
			slices.Reverse(names)
			return strings.Join(names, "."), true
		case *syntax.MemberExpr:
			if n.Computed || !isIdentifier(n.Property) {
				return "", false
			}
			names = append(names, n.Property)
			callee = n.Object
		default:
			return "", false
		}
	}
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}

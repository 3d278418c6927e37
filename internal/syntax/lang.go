package syntax

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Language binds file extensions to a tree-sitter grammar.
type Language struct {
	Name       string
	Extensions []string
	lang       *sitter.Language
}

// NewParser creates a fresh tree-sitter parser for this language.
// Parsers are not safe for concurrent use; create one per goroutine.
func (l *Language) NewParser() *sitter.Parser {
	p := sitter.NewParser()
	p.SetLanguage(l.lang)
	return p
}

// Languages maps language names to their configuration.
var Languages = map[string]*Language{
	"javascript": {
		Name:       "javascript",
		Extensions: []string{".js", ".jsx", ".mjs", ".cjs"},
		lang:       javascript.GetLanguage(),
	},
	"typescript": {
		Name:       "typescript",
		Extensions: []string{".ts", ".mts", ".cts"},
		lang:       typescript.GetLanguage(),
	},
	"tsx": {
		Name:       "tsx",
		Extensions: []string{".tsx"},
		lang:       tsx.GetLanguage(),
	},
}

var extensionMap = func() map[string]*Language {
	m := make(map[string]*Language)
	for _, l := range Languages {
		for _, ext := range l.Extensions {
			m[ext] = l
		}
	}
	return m
}()

// ForPath returns the language for a file path by extension, or nil.
func ForPath(path string) *Language {
	return extensionMap[strings.ToLower(filepath.Ext(path))]
}

// Supported reports whether files with this path's extension can be parsed.
func Supported(path string) bool {
	return ForPath(path) != nil
}

// File is a lowered source file.
type File struct {
	Path string
	Lang string
	Root *Scope
}

// ParseError reports a file that could not be parsed cleanly.
type ParseError struct {
	Path   string
	Line   int
	Column int
	Reason string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", e.Path, e.Line, e.Column, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

// ParseFile parses source with the grammar selected by path and lowers it.
// A tree containing ERROR or MISSING nodes yields a *ParseError.
func ParseFile(ctx context.Context, path string, source []byte) (*File, error) {
	l := ForPath(path)
	if l == nil {
		return nil, &ParseError{Path: path, Reason: "unsupported file extension"}
	}

	tree, err := l.NewParser().ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse %s: %w", path, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, &ParseError{Path: path, Reason: "empty syntax tree"}
	}
	if root.HasError() {
		bad := firstError(root)
		pe := &ParseError{Path: path, Reason: "syntax error"}
		if bad != nil {
			pe.Line = int(bad.StartPoint().Row) + 1
			pe.Column = int(bad.StartPoint().Column) + 1
			if bad.IsMissing() {
				pe.Reason = fmt.Sprintf("missing %s", bad.Type())
			}
		}
		return nil, pe
	}

	lw := &lowerer{src: source}
	return &File{Path: path, Lang: l.Name, Root: lw.program(root)}, nil
}

// firstError returns the first ERROR or MISSING node in document order.
func firstError(n *sitter.Node) *sitter.Node {
	if n.IsError() || n.IsMissing() {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c == nil || !c.HasError() && !c.IsMissing() {
			continue
		}
		if bad := firstError(c); bad != nil {
			return bad
		}
	}
	return nil
}

// Package syntax holds the closed set of syntax node kinds the extractor
// understands and the lowering from tree-sitter concrete syntax trees.
package syntax

// Span locates a node in its source file. Line and Column are 1-based.
type Span struct {
	Line   int
	Column int
}

// Pos returns the span itself so every node embedding Span satisfies Node.
func (s Span) Pos() Span { return s }

// Node is implemented only by the node kinds declared in this file.
// Consumers switch on the concrete type; Unknown covers everything else.
type Node interface {
	Pos() Span
	node()
}

// Ident is a plain identifier reference.
type Ident struct {
	Span
	Name string
}

// StringLit is a quoted string literal with escapes already decoded.
type StringLit struct {
	Span
	Value string
}

// TemplateLit is a backtick template. len(Quasis) == len(Exprs)+1.
type TemplateLit struct {
	Span
	Quasis []string
	Exprs  []Node
}

// NumberLit keeps the numeric literal as written.
type NumberLit struct {
	Span
	Raw string
}

// BoolLit is true or false.
type BoolLit struct {
	Span
	Value bool
}

// ArrayLit is an array literal.
type ArrayLit struct {
	Span
	Elems []Node
}

// BinaryExpr is a binary operation; grouping is already encoded by the tree.
type BinaryExpr struct {
	Span
	Op    string
	Left  Node
	Right Node
}

// MemberExpr is a.b (Computed false) or a[expr] (Computed true, Index set).
type MemberExpr struct {
	Span
	Object   Node
	Property string
	Computed bool
	Index    Node
}

// CallExpr is a call or invocation.
type CallExpr struct {
	Span
	Callee Node
	Args   []Node
}

// Property is one entry of an object literal.
type Property struct {
	Key       string
	Value     Node
	Computed  bool
	Shorthand bool
	Spread    bool
}

// ObjectLit is an object literal.
type ObjectLit struct {
	Span
	Props []Property
}

// Lookup returns the value of the first non-computed property named key.
func (o *ObjectLit) Lookup(key string) (Node, bool) {
	for _, p := range o.Props {
		if !p.Computed && !p.Spread && p.Key == key {
			return p.Value, true
		}
	}
	return nil, false
}

// Attribute is a markup attribute. Value is nil for valueless attributes.
type Attribute struct {
	Name  string
	Value Node
}

// Element is a markup element such as <T _str="..." />.
type Element struct {
	Span
	Tag      string
	Attrs    []Attribute
	Children []Node
}

// DeclKind says how a name was introduced.
type DeclKind string

const (
	DeclConst    DeclKind = "const"
	DeclLet      DeclKind = "let"
	DeclVar      DeclKind = "var"
	DeclFunction DeclKind = "function"
	DeclClass    DeclKind = "class"
	DeclImport   DeclKind = "import"
)

// VarDecl declares Name. Init is nil when there is no initializer, or when
// the name comes out of a destructuring pattern.
type VarDecl struct {
	Span
	Kind DeclKind
	Name string
	Init Node
}

// Assign writes to Target. Target is empty when the left side is not a
// plain identifier. Op is "=", an augmented operator, "++" or "--".
type Assign struct {
	Span
	Target string
	Op     string
	Value  Node
}

// ScopeKind distinguishes the lexical scopes a Scope node opens.
type ScopeKind string

const (
	ScopeProgram  ScopeKind = "program"
	ScopeFunction ScopeKind = "function"
	ScopeBlock    ScopeKind = "block"
)

// Scope opens a lexical scope. Params are names bound on entry
// (function parameters, catch parameter).
type Scope struct {
	Span
	Kind   ScopeKind
	Params []string
	Body   []Node
}

// Unknown is any construct without its own kind. Its children are still
// lowered so nested calls and declarations are visible.
type Unknown struct {
	Span
	Kind     string
	Children []Node
}

func (*Ident) node()       {}
func (*StringLit) node()   {}
func (*TemplateLit) node() {}
func (*NumberLit) node()   {}
func (*BoolLit) node()     {}
func (*ArrayLit) node()    {}
func (*BinaryExpr) node()  {}
func (*MemberExpr) node()  {}
func (*CallExpr) node()    {}
func (*ObjectLit) node()   {}
func (*Element) node()     {}
func (*VarDecl) node()     {}
func (*Assign) node()      {}
func (*Scope) node()       {}
func (*Unknown) node()     {}

// Children returns the direct child nodes of n in source order.
func Children(n Node) []Node {
	var out []Node
	add := func(c Node) {
		if c != nil {
			out = append(out, c)
		}
	}
	switch n := n.(type) {
	case *Ident, *StringLit, *NumberLit, *BoolLit:
	case *TemplateLit:
		for _, e := range n.Exprs {
			add(e)
		}
	case *ArrayLit:
		for _, e := range n.Elems {
			add(e)
		}
	case *BinaryExpr:
		add(n.Left)
		add(n.Right)
	case *MemberExpr:
		add(n.Object)
		add(n.Index)
	case *CallExpr:
		add(n.Callee)
		for _, a := range n.Args {
			add(a)
		}
	case *ObjectLit:
		for _, p := range n.Props {
			add(p.Value)
		}
	case *Element:
		for _, a := range n.Attrs {
			add(a.Value)
		}
		for _, c := range n.Children {
			add(c)
		}
	case *VarDecl:
		add(n.Init)
	case *Assign:
		add(n.Value)
	case *Scope:
		for _, c := range n.Body {
			add(c)
		}
	case *Unknown:
		for _, c := range n.Children {
			add(c)
		}
	}
	return out
}

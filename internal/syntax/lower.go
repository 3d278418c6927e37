package syntax

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// skipped node types carry no runtime expressions worth visiting.
var skipped = map[string]struct{}{
	"comment":                  {},
	"hash_bang_line":           {},
	"regex":                    {},
	"jsx_text":                 {},
	"jsx_closing_element":      {},
	"html_character_reference": {},
	"type_annotation":          {},
	"type_arguments":           {},
	"type_parameters":          {},
	"interface_declaration":    {},
	"type_alias_declaration":   {},
	"ambient_declaration":      {},
	"empty_statement":          {},
}

// transparent node types lower to their first named child.
var transparent = map[string]struct{}{
	"parenthesized_expression": {},
	"as_expression":            {},
	"satisfies_expression":     {},
	"non_null_expression":      {},
	"expression_statement":     {},
	"await_expression":         {},
}

var functionTypes = map[string]struct{}{
	"function":                       {},
	"function_expression":            {},
	"function_declaration":           {},
	"generator_function":             {},
	"generator_function_declaration": {},
	"arrow_function":                 {},
	"method_definition":              {},
}

type lowerer struct {
	src []byte
}

func (lw *lowerer) span(n *sitter.Node) Span {
	p := n.StartPoint()
	return Span{Line: int(p.Row) + 1, Column: int(p.Column) + 1}
}

func (lw *lowerer) text(n *sitter.Node) string {
	return n.Content(lw.src)
}

func (lw *lowerer) program(root *sitter.Node) *Scope {
	return &Scope{Span: lw.span(root), Kind: ScopeProgram, Body: lw.list(root)}
}

// list lowers every named child of n in order.
func (lw *lowerer) list(n *sitter.Node) []Node {
	var out []Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		out = append(out, lw.lowerAll(n.NamedChild(i))...)
	}
	return out
}

// lower lowers an expression position. Multi-node results are wrapped.
func (lw *lowerer) lower(n *sitter.Node) Node {
	if n == nil {
		return nil
	}
	nodes := lw.lowerAll(n)
	switch len(nodes) {
	case 0:
		return nil
	case 1:
		return nodes[0]
	default:
		return &Unknown{Span: lw.span(n), Kind: n.Type(), Children: nodes}
	}
}

// lowerAll lowers n into zero or more nodes. Declarations with several
// declarators produce one VarDecl each.
func (lw *lowerer) lowerAll(n *sitter.Node) []Node {
	if n == nil {
		return nil
	}
	typ := n.Type()
	if _, ok := skipped[typ]; ok {
		return nil
	}
	if _, ok := transparent[typ]; ok {
		if n.NamedChildCount() == 0 {
			return nil
		}
		return lw.lowerAll(n.NamedChild(0))
	}
	if _, ok := functionTypes[typ]; ok {
		return lw.functionLike(n)
	}

	sp := lw.span(n)

	switch typ {
	case "identifier", "undefined":
		return one(&Ident{Span: sp, Name: lw.text(n)})
	case "string":
		return one(&StringLit{Span: sp, Value: Unescape(unquote(lw.text(n)))})
	case "template_string":
		return one(lw.template(n))
	case "number":
		return one(&NumberLit{Span: sp, Raw: lw.text(n)})
	case "true", "false":
		return one(&BoolLit{Span: sp, Value: typ == "true"})
	case "array":
		return one(&ArrayLit{Span: sp, Elems: lw.list(n)})
	case "binary_expression":
		op := ""
		if o := n.ChildByFieldName("operator"); o != nil {
			op = lw.text(o)
		}
		return one(&BinaryExpr{
			Span:  sp,
			Op:    op,
			Left:  lw.lower(n.ChildByFieldName("left")),
			Right: lw.lower(n.ChildByFieldName("right")),
		})
	case "member_expression":
		prop := ""
		if p := n.ChildByFieldName("property"); p != nil {
			prop = lw.text(p)
		}
		return one(&MemberExpr{Span: sp, Object: lw.lower(n.ChildByFieldName("object")), Property: prop})
	case "subscript_expression":
		return one(&MemberExpr{
			Span:     sp,
			Object:   lw.lower(n.ChildByFieldName("object")),
			Computed: true,
			Index:    lw.lower(n.ChildByFieldName("index")),
		})
	case "call_expression":
		return one(lw.call(n))
	case "object":
		return one(lw.object(n))
	case "jsx_element", "jsx_self_closing_element":
		return one(lw.element(n))
	case "jsx_expression":
		if n.NamedChildCount() == 0 {
			return nil
		}
		return lw.lowerAll(n.NamedChild(0))
	case "lexical_declaration", "variable_declaration":
		return lw.declaration(n)
	case "class_declaration":
		var out []Node
		if name := n.ChildByFieldName("name"); name != nil {
			out = append(out, &VarDecl{Span: lw.span(name), Kind: DeclClass, Name: lw.text(name)})
		}
		if body := n.ChildByFieldName("body"); body != nil {
			out = append(out, &Unknown{Span: lw.span(body), Kind: body.Type(), Children: lw.list(body)})
		}
		return out
	case "statement_block":
		return one(&Scope{Span: sp, Kind: ScopeBlock, Body: lw.list(n)})
	case "for_statement", "switch_statement":
		return one(&Scope{Span: sp, Kind: ScopeBlock, Body: lw.list(n)})
	case "for_in_statement":
		return one(lw.forIn(n))
	case "catch_clause":
		sc := &Scope{Span: sp, Kind: ScopeBlock}
		if p := n.ChildByFieldName("parameter"); p != nil {
			sc.Params = lw.patternNames(p, nil)
		}
		if body := n.ChildByFieldName("body"); body != nil {
			sc.Body = lw.list(body)
		}
		return one(sc)
	case "assignment_expression", "augmented_assignment_expression":
		return lw.assignment(n)
	case "update_expression":
		arg := unwrapParens(n.ChildByFieldName("argument"))
		if arg != nil && arg.Type() == "identifier" {
			op := "++"
			if strings.Contains(lw.text(n), "--") {
				op = "--"
			}
			return one(&Assign{Span: sp, Target: lw.text(arg), Op: op})
		}
	case "import_statement":
		return lw.imports(n)
	}

	return one(&Unknown{Span: sp, Kind: typ, Children: lw.list(n)})
}

func one(n Node) []Node {
	if n == nil {
		return nil
	}
	return []Node{n}
}

func unquote(s string) string {
	if len(s) >= 2 {
		return s[1 : len(s)-1]
	}
	return ""
}

func unwrapParens(n *sitter.Node) *sitter.Node {
	for n != nil && n.Type() == "parenthesized_expression" && n.NamedChildCount() > 0 {
		n = n.NamedChild(0)
	}
	return n
}

func (lw *lowerer) template(n *sitter.Node) *TemplateLit {
	t := &TemplateLit{Span: lw.span(n)}
	start := n.StartByte() + 1
	end := n.EndByte() - 1
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() != "template_substitution" {
			continue
		}
		t.Quasis = append(t.Quasis, Unescape(string(lw.src[start:c.StartByte()])))
		var expr Node
		if c.NamedChildCount() > 0 {
			expr = lw.lower(c.NamedChild(0))
		}
		if expr == nil {
			expr = &Unknown{Span: lw.span(c), Kind: c.Type()}
		}
		t.Exprs = append(t.Exprs, expr)
		start = c.EndByte()
	}
	if start > end {
		start = end
	}
	t.Quasis = append(t.Quasis, Unescape(string(lw.src[start:end])))
	return t
}

func (lw *lowerer) call(n *sitter.Node) *CallExpr {
	c := &CallExpr{Span: lw.span(n), Callee: lw.lower(n.ChildByFieldName("function"))}
	args := n.ChildByFieldName("arguments")
	if args == nil {
		return c
	}
	if args.Type() == "template_string" {
		c.Args = one(lw.template(args))
		return c
	}
	for i := 0; i < int(args.NamedChildCount()); i++ {
		a := args.NamedChild(i)
		if a.Type() == "comment" {
			continue
		}
		arg := lw.lower(a)
		if arg == nil {
			arg = &Unknown{Span: lw.span(a), Kind: a.Type()}
		}
		c.Args = append(c.Args, arg)
	}
	return c
}

func (lw *lowerer) object(n *sitter.Node) *ObjectLit {
	o := &ObjectLit{Span: lw.span(n)}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		switch c.Type() {
		case "pair":
			p := Property{Value: lw.lower(c.ChildByFieldName("value"))}
			if key := c.ChildByFieldName("key"); key != nil {
				switch key.Type() {
				case "string":
					p.Key = Unescape(unquote(lw.text(key)))
				case "computed_property_name":
					p.Computed = true
				default:
					p.Key = lw.text(key)
				}
			}
			o.Props = append(o.Props, p)
		case "shorthand_property_identifier":
			name := lw.text(c)
			o.Props = append(o.Props, Property{
				Key:       name,
				Value:     &Ident{Span: lw.span(c), Name: name},
				Shorthand: true,
			})
		case "spread_element":
			o.Props = append(o.Props, Property{Spread: true, Value: lw.lower(c)})
		case "method_definition":
			key := ""
			if name := c.ChildByFieldName("name"); name != nil {
				key = lw.text(name)
			}
			o.Props = append(o.Props, Property{Key: key, Value: lw.lower(c)})
		}
	}
	return o
}

func (lw *lowerer) element(n *sitter.Node) *Element {
	el := &Element{Span: lw.span(n)}
	open := n
	if n.Type() == "jsx_element" {
		open = n.ChildByFieldName("open_tag")
		if open == nil && n.NamedChildCount() > 0 {
			open = n.NamedChild(0)
		}
	}
	if open != nil {
		if name := open.ChildByFieldName("name"); name != nil {
			el.Tag = strings.Join(strings.Fields(lw.text(name)), "")
		}
		for i := 0; i < int(open.NamedChildCount()); i++ {
			a := open.NamedChild(i)
			if a.Type() != "jsx_attribute" || a.NamedChildCount() == 0 {
				continue
			}
			attr := Attribute{Name: lw.text(a.NamedChild(0))}
			if a.NamedChildCount() > 1 {
				attr.Value = lw.attributeValue(a.NamedChild(1))
			}
			el.Attrs = append(el.Attrs, attr)
		}
	}
	if n.Type() == "jsx_element" {
		for i := 0; i < int(n.NamedChildCount()); i++ {
			c := n.NamedChild(i)
			if c.Type() == "jsx_opening_element" {
				continue
			}
			el.Children = append(el.Children, lw.lowerAll(c)...)
		}
	}
	return el
}

// attributeValue lowers a JSX attribute value. JSX strings are verbatim.
func (lw *lowerer) attributeValue(v *sitter.Node) Node {
	switch v.Type() {
	case "string":
		return &StringLit{Span: lw.span(v), Value: unquote(lw.text(v))}
	case "jsx_expression":
		if v.NamedChildCount() == 0 {
			return &Unknown{Span: lw.span(v), Kind: v.Type()}
		}
		if inner := lw.lower(v.NamedChild(0)); inner != nil {
			return inner
		}
		return &Unknown{Span: lw.span(v), Kind: v.Type()}
	default:
		return lw.lower(v)
	}
}

func declKind(n *sitter.Node) DeclKind {
	if n.Type() == "variable_declaration" {
		return DeclVar
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		switch n.Child(i).Type() {
		case "const":
			return DeclConst
		case "let":
			return DeclLet
		case "var":
			return DeclVar
		}
	}
	return DeclLet
}

func (lw *lowerer) declaration(n *sitter.Node) []Node {
	kind := declKind(n)
	var out []Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		d := n.NamedChild(i)
		if d.Type() != "variable_declarator" {
			continue
		}
		name := d.ChildByFieldName("name")
		value := d.ChildByFieldName("value")
		if name == nil {
			continue
		}
		if name.Type() == "identifier" {
			out = append(out, &VarDecl{Span: lw.span(d), Kind: kind, Name: lw.text(name), Init: lw.lower(value)})
			continue
		}
		// destructuring: names are bound but never constant
		if v := lw.lower(value); v != nil {
			out = append(out, v)
		}
		for _, pn := range lw.patternNames(name, nil) {
			out = append(out, &VarDecl{Span: lw.span(d), Kind: kind, Name: pn})
		}
	}
	return out
}

func (lw *lowerer) functionLike(n *sitter.Node) []Node {
	sc := &Scope{Span: lw.span(n), Kind: ScopeFunction}
	var out []Node

	name := n.ChildByFieldName("name")
	switch n.Type() {
	case "function_declaration", "generator_function_declaration":
		if name != nil {
			out = append(out, &VarDecl{Span: lw.span(name), Kind: DeclFunction, Name: lw.text(name)})
		}
	case "function", "function_expression", "generator_function":
		if name != nil {
			sc.Params = append(sc.Params, lw.text(name))
		}
	}

	if params := n.ChildByFieldName("parameters"); params != nil {
		sc.Params = lw.patternNames(params, sc.Params)
	}
	if param := n.ChildByFieldName("parameter"); param != nil {
		sc.Params = lw.patternNames(param, sc.Params)
	}

	if body := n.ChildByFieldName("body"); body != nil {
		if body.Type() == "statement_block" {
			sc.Body = lw.list(body)
		} else {
			sc.Body = lw.lowerAll(body)
		}
	}

	return append(out, sc)
}

// patternNames collects the identifiers bound by a parameter list or a
// destructuring pattern, skipping default values and type annotations.
func (lw *lowerer) patternNames(n *sitter.Node, out []string) []string {
	if n == nil {
		return out
	}
	switch n.Type() {
	case "identifier", "shorthand_property_identifier_pattern":
		return append(out, lw.text(n))
	case "assignment_pattern", "object_assignment_pattern":
		return lw.patternNames(n.ChildByFieldName("left"), out)
	case "pair_pattern":
		return lw.patternNames(n.ChildByFieldName("value"), out)
	case "required_parameter", "optional_parameter":
		return lw.patternNames(n.ChildByFieldName("pattern"), out)
	case "type_annotation", "comment", "this", "property_identifier":
		return out
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		out = lw.patternNames(n.NamedChild(i), out)
	}
	return out
}

func (lw *lowerer) forIn(n *sitter.Node) *Scope {
	sc := &Scope{Span: lw.span(n), Kind: ScopeBlock}

	var kind DeclKind
	for i := 0; i < int(n.ChildCount()); i++ {
		switch n.Child(i).Type() {
		case "const":
			kind = DeclConst
		case "let":
			kind = DeclLet
		case "var":
			kind = DeclVar
		}
	}

	if left := n.ChildByFieldName("left"); left != nil {
		switch {
		case kind != "":
			for _, name := range lw.patternNames(left, nil) {
				sc.Body = append(sc.Body, &VarDecl{Span: lw.span(left), Kind: kind, Name: name})
			}
		case unwrapParens(left).Type() == "identifier":
			sc.Body = append(sc.Body, &Assign{Span: lw.span(left), Target: lw.text(unwrapParens(left)), Op: "="})
		default:
			sc.Body = append(sc.Body, lw.lowerAll(left)...)
		}
	}
	sc.Body = append(sc.Body, lw.lowerAll(n.ChildByFieldName("right"))...)
	sc.Body = append(sc.Body, lw.lowerAll(n.ChildByFieldName("body"))...)
	return sc
}

func (lw *lowerer) assignment(n *sitter.Node) []Node {
	sp := lw.span(n)
	op := "="
	if o := n.ChildByFieldName("operator"); o != nil {
		op = lw.text(o)
	}
	value := lw.lower(n.ChildByFieldName("right"))
	left := unwrapParens(n.ChildByFieldName("left"))
	if left == nil {
		return one(value)
	}

	switch left.Type() {
	case "identifier":
		return one(&Assign{Span: sp, Target: lw.text(left), Op: op, Value: value})
	case "object_pattern", "array_pattern":
		out := one(value)
		for _, name := range lw.patternNames(left, nil) {
			out = append(out, &Assign{Span: sp, Target: name, Op: op})
		}
		return out
	}

	return one(&Unknown{Span: sp, Kind: n.Type(), Children: append(lw.lowerAll(left), one(value)...)})
}

func (lw *lowerer) imports(n *sitter.Node) []Node {
	var out []Node
	var walk func(c *sitter.Node)
	walk = func(c *sitter.Node) {
		switch c.Type() {
		case "import_specifier":
			name := c.ChildByFieldName("alias")
			if name == nil {
				name = c.ChildByFieldName("name")
			}
			if name != nil {
				out = append(out, &VarDecl{Span: lw.span(name), Kind: DeclImport, Name: lw.text(name)})
			}
			return
		case "identifier":
			out = append(out, &VarDecl{Span: lw.span(c), Kind: DeclImport, Name: lw.text(c)})
			return
		case "string":
			return
		}
		for i := 0; i < int(c.NamedChildCount()); i++ {
			walk(c.NamedChild(i))
		}
	}
	walk(n)
	return out
}

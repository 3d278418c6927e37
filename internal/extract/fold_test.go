package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"txjs-cli/internal/syntax"
)

func analyze(t *testing.T, path, src string) *Analysis {
	t.Helper()
	f, err := syntax.ParseFile(context.Background(), path, []byte(src))
	require.NoError(t, err)
	return Analyze(f)
}

func TestConstantFolding(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want string
		ok   bool
	}{
		{name: "literal", src: "const x = 'a';", want: "a", ok: true},
		{name: "chain", src: "const a = 'b'; const c = a + 'c'; const x = c + '!' + a;", want: "bc!b", ok: true},
		{name: "let without writes", src: "let x = 'a' + 'b';", want: "ab", ok: true},
		{name: "var", src: `var x = "dq";`, want: "dq", ok: true},
		{name: "plain template", src: "const x = `tpl`;", want: "tpl", ok: true},
		{name: "template with substitution", src: "const n = 'a'; const x = `hi ${n}`;", ok: false},
		{name: "reassigned", src: "let x = 'a'; x = 'b';", ok: false},
		{name: "operand reassigned later", src: "let a = 'a'; const x = a + 'b'; a += 'c';", ok: false},
		{name: "reassigned inside function", src: "var x = 'a'; function f() { x = 'b'; }", ok: false},
		{name: "incremented", src: "let x = 'a'; x++;", ok: false},
		{name: "for-of target", src: "let x = 'a'; for (x of list) {}", ok: false},
		{name: "declared twice", src: "var x = 'a'; var x = 'a';", ok: false},
		{name: "no initializer", src: "let x;", ok: false},
		{name: "numeric", src: "const x = 1 + 2;", ok: false},
		{name: "subtraction", src: "const x = 'a' - 'b';", ok: false},
		{name: "call", src: "const x = f('a');", ok: false},
		{name: "import", src: "import x from 'mod';", ok: false},
		{name: "destructured", src: "const { x } = obj;", ok: false},
		{name: "cycle", src: "const x = y; const y = x;", ok: false},
		{name: "self reference", src: "const x = x + 'a';", ok: false},
		{name: "hoisted var", src: "const y = x; var x = 'late';", want: "late", ok: true},
		{name: "class", src: "class x {}", ok: false},
		{name: "function", src: "function x() {}", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a := analyze(t, "input.js", tt.src)
			got, ok := a.Constant("x")
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestHoistedVarUseBeforeDeclaration(t *testing.T) {
	t.Parallel()

	a := analyze(t, "input.js", "const y = x + '!'; var x = 'late';")
	got, ok := a.Constant("y")
	require.True(t, ok)
	assert.Equal(t, "late!", got)
}

func TestFoldMetadataHelpers(t *testing.T) {
	t.Parallel()

	a := analyze(t, "input.js", `
const limit = 20;
const flag = true;
const tags = ['a', 'b, c'];
const csv = 'x, y,,z';
const numeric = '42';
`)
	lookup := func(name string) syntax.Node {
		b := a.root.lookup(name)
		require.NotNil(t, b, name)
		return &syntax.Ident{Name: name}
	}

	n, ok := a.foldInt(lookup("limit"), a.root)
	require.True(t, ok)
	assert.Equal(t, 20, n)

	n, ok = a.foldInt(lookup("numeric"), a.root)
	require.True(t, ok)
	assert.Equal(t, 42, n)

	_, ok = a.foldInt(lookup("csv"), a.root)
	assert.False(t, ok)

	b, ok := a.foldBool(lookup("flag"), a.root)
	require.True(t, ok)
	assert.True(t, b)

	list, ok := a.foldList(lookup("tags"), a.root)
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b", "c"}, list)

	list, ok = a.foldList(lookup("csv"), a.root)
	require.True(t, ok)
	assert.Equal(t, []string{"x", "y", "z"}, list)
}

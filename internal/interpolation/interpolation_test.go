package interpolation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func icuTexts(s string) []string {
	var out []string
	for _, p := range Find(s) {
		if p.Kind == KindICU {
			out = append(out, p.Text)
		}
	}
	return out
}

func TestFindICUArguments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want []string
	}{
		{in: "Hello {name}", want: []string{"{name}"}},
		{in: "{count, plural, one {# item} other {# items}} for {name}", want: []string{"{count, plural, one {# item} other {# items}}", "{name}"}},
		{in: "No variables", want: nil},
		{in: "Quoted '{literal}' and {real}", want: []string{"{real}"}},
		{in: "It''s {who}", want: []string{"{who}"}},
		{in: "Don't forget {name}", want: []string{"{name}"}},
		{in: "Don't, won't, can't {a} or {b}", want: []string{"{a}", "{b}"}},
		{in: "Template ${name}", want: nil},
		{in: "{0} positional", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, icuTexts(tt.in))
		})
	}
}

func TestSuspiciousAfterApostrophe(t *testing.T) {
	t.Parallel()

	got := Suspicious("Don't use ${name} here")
	if assert.Len(t, got, 1) {
		assert.Equal(t, "${name}", got[0].Text)
	}
}

func TestSuspicious(t *testing.T) {
	t.Parallel()

	got := Suspicious("Hi ${user}, you have %d messages from {sender} (100%%)")
	if assert.Len(t, got, 2) {
		assert.Equal(t, KindTemplate, got[0].Kind)
		assert.Equal(t, "${user}", got[0].Text)
		assert.Equal(t, KindPrintf, got[1].Kind)
		assert.Equal(t, "%d", got[1].Text)
	}

	assert.Empty(t, Suspicious("Plain {name} text"))
}

func TestFindOrdersAndDeduplicates(t *testing.T) {
	t.Parallel()

	got := Find("%s then {a} then ${b}")
	kinds := make([]Kind, len(got))
	for i, p := range got {
		kinds[i] = p.Kind
	}
	assert.Equal(t, []Kind{KindPrintf, KindICU, KindTemplate}, kinds)
}

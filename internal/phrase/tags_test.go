package phrase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTags(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"a", "b", "c"}, ParseTags(" c, a ,,b,a"))
	assert.Nil(t, ParseTags(" , "))
	assert.Equal(t, []string{"x", "y"}, UnionTags([]string{"y"}, []string{"x", "y"}))
}

func TestTagPolicy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		policy TagPolicy
		tags   []string
		want   []string
		keep   bool
	}{
		{"no policy", TagPolicy{}, []string{"b", "a"}, []string{"a", "b"}, true},
		{"no policy no tags", TagPolicy{}, nil, nil, true},
		{"append", TagPolicy{AppendTags: []string{"v2", "a"}}, []string{"a"}, []string{"a", "v2"}, true},
		{"with match", TagPolicy{WithTagsOnly: []string{"x", "a"}}, []string{"a"}, []string{"a"}, true},
		{"with miss", TagPolicy{WithTagsOnly: []string{"x"}}, []string{"a"}, nil, false},
		{"with untagged", TagPolicy{WithTagsOnly: []string{"x"}}, nil, nil, false},
		{"without match", TagPolicy{WithoutTagsOnly: []string{"a"}}, []string{"a", "b"}, nil, false},
		{"without miss", TagPolicy{WithoutTagsOnly: []string{"z"}}, []string{"a"}, []string{"a"}, true},
		{"without wins", TagPolicy{WithTagsOnly: []string{"a"}, WithoutTagsOnly: []string{"b"}}, []string{"a", "b"}, nil, false},
		{"filter before append", TagPolicy{WithoutTagsOnly: []string{"new"}, AppendTags: []string{"new"}}, []string{"a"}, []string{"a", "new"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, keep := tt.policy.Apply(tt.tags)
			assert.Equal(t, tt.keep, keep)
			assert.Equal(t, tt.want, got)
		})
	}
}

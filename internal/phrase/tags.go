package phrase

import (
	"slices"
	"strings"
)

// TagPolicy is the CLI-level tag handling applied to every record.
type TagPolicy struct {
	// WithTagsOnly keeps only records carrying at least one of these tags.
	WithTagsOnly []string
	// WithoutTagsOnly drops records carrying any of these tags. Evaluated
	// after WithTagsOnly and wins on conflict.
	WithoutTagsOnly []string
	// AppendTags are added to every surviving record.
	AppendTags []string
}

// Apply filters on the record's own tags and then appends. It returns the
// final tag set and whether the record survives.
func (p TagPolicy) Apply(tags []string) ([]string, bool) {
	if len(p.WithTagsOnly) > 0 && !containsAny(tags, p.WithTagsOnly) {
		return nil, false
	}
	if len(p.WithoutTagsOnly) > 0 && containsAny(tags, p.WithoutTagsOnly) {
		return nil, false
	}
	return UnionTags(tags, p.AppendTags), true
}

func containsAny(tags, wanted []string) bool {
	for _, w := range wanted {
		if slices.Contains(tags, w) {
			return true
		}
	}
	return false
}

// SplitList splits a comma-separated list, trimming items and dropping
// empty ones.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ParseTags parses a comma-separated tag list into a sorted set.
func ParseTags(s string) []string {
	return UnionTags(nil, SplitList(s))
}

// UnionTags returns the sorted, duplicate-free union of a and b.
func UnionTags(a, b []string) []string {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := make([]string, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	slices.Sort(out)
	return slices.Compact(out)
}

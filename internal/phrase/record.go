// Package phrase holds the canonical extraction output: phrase records,
// their keys, tag policy, and the key-deduplicated record set.
package phrase

import (
	"slices"
)

// Record is one translatable phrase. Identity is Key.
// CharLimit is 0 when no limit was given.
type Record struct {
	Key         string   `json:"key"`
	String      string   `json:"string"`
	Context     string   `json:"context,omitempty"`
	Comment     string   `json:"developer_comment,omitempty"`
	CharLimit   int      `json:"character_limit,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Occurrences []string `json:"occurrences,omitempty"`
	EscapeVars  bool     `json:"escape_vars,omitempty"`
	Inline      bool     `json:"inline,omitempty"`
	Sanitize    bool     `json:"sanitize,omitempty"`
}

// Contexts splits the comma-separated context into its parts.
func (r Record) Contexts() []string {
	return SplitList(r.Context)
}

func (r Record) clone() *Record {
	c := r
	c.Tags = slices.Clone(r.Tags)
	c.Occurrences = slices.Clone(r.Occurrences)
	return &c
}

// merge folds other into r: tag union, occurrence union in arrival order,
// and metadata fields that r left empty.
func (r *Record) merge(other Record) {
	r.Tags = UnionTags(r.Tags, other.Tags)
	for _, occ := range other.Occurrences {
		if !slices.Contains(r.Occurrences, occ) {
			r.Occurrences = append(r.Occurrences, occ)
		}
	}
	if r.Comment == "" {
		r.Comment = other.Comment
	}
	if r.CharLimit == 0 {
		r.CharLimit = other.CharLimit
	}
	r.EscapeVars = r.EscapeVars || other.EscapeVars
	r.Inline = r.Inline || other.Inline
	r.Sanitize = r.Sanitize || other.Sanitize
}

// Set is an insertion-ordered collection of records deduplicated by key.
// It is not safe for concurrent use.
type Set struct {
	index   map[string]int
	records []*Record
}

// NewSet creates an empty set.
func NewSet() *Set {
	return &Set{index: make(map[string]int)}
}

// Add inserts r or merges it into the record already holding r.Key.
// It reports whether a merge happened.
func (s *Set) Add(r Record) bool {
	if i, ok := s.index[r.Key]; ok {
		s.records[i].merge(r)
		return true
	}
	c := r.clone()
	c.Tags = UnionTags(nil, c.Tags)
	c.Occurrences = dedupe(c.Occurrences)
	s.index[r.Key] = len(s.records)
	s.records = append(s.records, c)
	return false
}

// Get returns a copy of the record for key.
func (s *Set) Get(key string) (Record, bool) {
	i, ok := s.index[key]
	if !ok {
		return Record{}, false
	}
	return *s.records[i].clone(), true
}

// Len returns the number of distinct keys.
func (s *Set) Len() int {
	return len(s.records)
}

// Records returns copies of all records in insertion order.
func (s *Set) Records() []Record {
	out := make([]Record, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, *r.clone())
	}
	return out
}

func dedupe(items []string) []string {
	var out []string
	for _, it := range items {
		if !slices.Contains(out, it) {
			out = append(out, it)
		}
	}
	return out
}

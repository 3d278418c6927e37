package extract

import "slices"

// Metadata attribute names understood by the builder. They are used both as
// object-literal keys in calls and as attribute names on markup elements.
const (
	MetaKey        = "_key"
	MetaContext    = "_context"
	MetaComment    = "_comment"
	MetaCharLimit  = "_charlimit"
	MetaTags       = "_tags"
	MetaEscapeVars = "_escapeVars"
	MetaInline     = "_inline"
	MetaSanitize   = "_sanitize"
)

// Shapes lists the call shapes recognised as translation sites.
type Shapes struct {
	PlainFunctions     []string `toml:"functions"`
	InstanceMethods    []string `toml:"methods"`
	MarkupTags         []string `toml:"tags"`
	PhraseAttribute    string   `toml:"phrase_attribute"`
	MetadataAttributes []string `toml:"metadata_attributes"`
}

// DefaultShapes returns t(...), x.translate(...), <T/> and <UT/>.
func DefaultShapes() Shapes {
	return Shapes{
		PlainFunctions:  []string{"t"},
		InstanceMethods: []string{"translate"},
		MarkupTags:      []string{"T", "UT"},
		PhraseAttribute: "_str",
		MetadataAttributes: []string{
			MetaKey, MetaContext, MetaComment, MetaCharLimit,
			MetaTags, MetaEscapeVars, MetaInline, MetaSanitize,
		},
	}
}

// WithDefaults fills every empty field from DefaultShapes.
func (s Shapes) WithDefaults() Shapes {
	d := DefaultShapes()
	if len(s.PlainFunctions) == 0 {
		s.PlainFunctions = d.PlainFunctions
	}
	if len(s.InstanceMethods) == 0 {
		s.InstanceMethods = d.InstanceMethods
	}
	if len(s.MarkupTags) == 0 {
		s.MarkupTags = d.MarkupTags
	}
	if s.PhraseAttribute == "" {
		s.PhraseAttribute = d.PhraseAttribute
	}
	if len(s.MetadataAttributes) == 0 {
		s.MetadataAttributes = d.MetadataAttributes
	}
	return s
}

func (s Shapes) isMetadata(name string) bool {
	return slices.Contains(s.MetadataAttributes, name)
}

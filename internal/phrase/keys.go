package phrase

import (
	"fmt"
	"strings"

	"txjs-cli/internal/textutil"
)

// KeyGenerator derives the key of a phrase that has no explicit key.
// Implementations must be stable across runs and files.
type KeyGenerator interface {
	Name() string
	Key(str, context string) string
}

// SourceKeys uses the source string itself, suffixed with "::" and the
// normalised context when there is one.
type SourceKeys struct{}

func (SourceKeys) Name() string { return "source" }

func (SourceKeys) Key(str, context string) string {
	context = NormalizeContext(context)
	if context == "" {
		return str
	}
	return str + "::" + context
}

// HashKeys uses the MD5 hex digest of str + ":" + normalised context.
// The digest is fixed for the lifetime of a project's key namespace.
type HashKeys struct{}

func (HashKeys) Name() string { return "hash" }

func (HashKeys) Key(str, context string) string {
	return textutil.MD5(str + ":" + NormalizeContext(context))
}

// KeyGeneratorFor returns the generator named by the --key-generator flag.
func KeyGeneratorFor(name string) (KeyGenerator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "source":
		return SourceKeys{}, nil
	case "hash":
		return HashKeys{}, nil
	default:
		return nil, fmt.Errorf("unknown key generator %q (want source or hash)", name)
	}
}

// NormalizeContext trims every comma-separated context item and drops
// empty ones, so "a, b" and "a,b" produce the same key.
func NormalizeContext(context string) string {
	return strings.Join(SplitList(context), ",")
}

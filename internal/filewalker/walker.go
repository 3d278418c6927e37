// Package filewalker expands the file arguments of the CLI into a sorted
// list of parseable source files.
package filewalker

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog/log"
	ignore "github.com/sabhiram/go-gitignore"

	"txjs-cli/internal/syntax"
)

var skipDirs = map[string]struct{}{
	"node_modules":     {},
	"bower_components": {},
	".git":             {},
	".hg":              {},
	".svn":             {},
	"dist":             {},
	"build":            {},
	"coverage":         {},
}

// Walker resolves patterns relative to a base directory. Files matched by
// the base directory's .gitignore are skipped.
type Walker struct {
	base   string
	ignore *ignore.GitIgnore
}

// NewWalker creates a Walker rooted at base. A missing .gitignore is fine.
func NewWalker(base string) (*Walker, error) {
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("resolve base path: %w", err)
	}
	w := &Walker{base: abs}
	if gi, err := ignore.CompileIgnoreFile(filepath.Join(abs, ".gitignore")); err == nil {
		w.ignore = gi
	}
	return w, nil
}

// Expand turns patterns into files. A pattern is a doublestar glob such as
// src/**/*.{js,tsx}, a single file, or a directory that is walked for
// supported extensions. Results are deduplicated and sorted.
func (w *Walker) Expand(patterns []string) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string
	add := func(path string) {
		path = filepath.Clean(path)
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, pattern := range patterns {
		before := len(files)
		if err := w.expandOne(pattern, add); err != nil {
			return nil, err
		}
		if len(files) == before {
			log.Warn().Str("pattern", pattern).Msg("pattern matched no files")
		}
	}

	slices.Sort(files)
	log.Debug().Int("count", len(files)).Strs("patterns", patterns).Msg("expanded patterns")
	return files, nil
}

func (w *Walker) expandOne(pattern string, add func(string)) error {
	if info, err := os.Stat(pattern); err == nil {
		if info.IsDir() {
			return w.walkDir(pattern, add)
		}
		if syntax.Supported(pattern) {
			add(pattern)
		}
		return nil
	}

	if !doublestar.ValidatePathPattern(pattern) {
		return fmt.Errorf("invalid pattern %q: %w", pattern, doublestar.ErrBadPattern)
	}
	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly(), doublestar.WithNoFollow())
	if err != nil {
		return fmt.Errorf("glob %q: %w", pattern, err)
	}
	for _, m := range matches {
		if !syntax.Supported(m) || inSkippedDir(m) || w.ignored(m) {
			continue
		}
		add(m)
	}
	return nil
}

func (w *Walker) walkDir(root string, add func(string)) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("error walking path")
			return nil
		}

		name := d.Name()
		if d.IsDir() {
			if path == root {
				return nil
			}
			if _, skip := skipDirs[name]; skip || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			if w.ignored(path) {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 || !syntax.Supported(name) || w.ignored(path) {
			return nil
		}
		add(path)
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk %s: %w", root, err)
	}
	return nil
}

func (w *Walker) ignored(path string) bool {
	if w.ignore == nil {
		return false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(w.base, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	return w.ignore.MatchesPath(filepath.ToSlash(rel))
}

func inSkippedDir(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(filepath.Dir(path)), "/") {
		if _, ok := skipDirs[part]; ok {
			return true
		}
	}
	return false
}

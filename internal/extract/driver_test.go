package extract

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"txjs-cli/internal/phrase"
	"txjs-cli/internal/syntax"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func TestRunSkipsBrokenFile(t *testing.T) {
	t.Parallel()

	dir := writeFiles(t, map[string]string{
		"a.js":      "t('one');",
		"b.js":      "t('two');",
		"broken.js": "t('broken',",
		"c.ts":      "t('three' as string);",
		"d.jsx":     `const x = <T _str="four" />;`,
	})
	paths := []string{
		filepath.Join(dir, "a.js"),
		filepath.Join(dir, "b.js"),
		filepath.Join(dir, "broken.js"),
		filepath.Join(dir, "c.ts"),
		filepath.Join(dir, "d.jsx"),
	}

	report, err := NewDriver(Options{Workers: 3}).Run(context.Background(), paths)
	require.NoError(t, err)

	assert.Equal(t, 5, report.FilesScanned)
	assert.Equal(t, 4, report.FilesWithPhrases)
	assert.Equal(t, 4, report.PhrasesFound)
	assert.Equal(t, []string{"one", "two", "three", "four"}, phraseStrings(report.Records))

	require.Len(t, report.Failures, 1)
	assert.Equal(t, paths[2], report.Failures[0].Path)
	var pe *syntax.ParseError
	assert.ErrorAs(t, report.Failures[0].Err, &pe)
}

func TestRunMissingFile(t *testing.T) {
	t.Parallel()

	dir := writeFiles(t, map[string]string{"a.js": "t('one');"})
	paths := []string{filepath.Join(dir, "missing.js"), filepath.Join(dir, "a.js")}

	report, err := NewDriver(Options{}).Run(context.Background(), paths)
	require.NoError(t, err)
	require.Len(t, report.Failures, 1)
	assert.ErrorIs(t, report.Failures[0].Err, os.ErrNotExist)
	assert.Equal(t, []string{"one"}, phraseStrings(report.Records))
}

func TestRunMergesDuplicates(t *testing.T) {
	t.Parallel()

	dir := writeFiles(t, map[string]string{
		"one.js":   "t('Hello', { _tags: 'b' }); t('Hello', { _tags: 'a' });",
		"two.js":   "t('Hello', { _tags: 'c,a' }); t('Bye');",
		"three.js": "t('Hello', { _context: 'other' });",
	})
	paths := []string{
		filepath.Join(dir, "one.js"),
		filepath.Join(dir, "two.js"),
		filepath.Join(dir, "three.js"),
	}

	report, err := NewDriver(Options{Workers: 2}).Run(context.Background(), paths)
	require.NoError(t, err)

	assert.Equal(t, 5, report.PhrasesFound)
	require.Len(t, report.Records, 3)

	hello := report.Records[0]
	assert.Equal(t, "Hello", hello.Key)
	assert.Equal(t, []string{"a", "b", "c"}, hello.Tags)
	assert.Equal(t, []string{paths[0], paths[1]}, hello.Occurrences)

	assert.Equal(t, "Bye", report.Records[1].Key)
	assert.Equal(t, "Hello::other", report.Records[2].Key)
	assert.Equal(t, []string{paths[2]}, report.Records[2].Occurrences)
}

func TestRunIsDeterministic(t *testing.T) {
	t.Parallel()

	files := map[string]string{}
	var paths []string
	dir := t.TempDir()
	for _, name := range []string{"e.js", "d.js", "c.js", "b.js", "a.js"} {
		files[name] = "t('" + name + "'); t('shared');"
		paths = append(paths, filepath.Join(dir, name))
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(files[name]), 0o644))
	}

	first, err := NewDriver(Options{Workers: 4}).Run(context.Background(), paths)
	require.NoError(t, err)
	for range 5 {
		again, err := NewDriver(Options{Workers: 4}).Run(context.Background(), paths)
		require.NoError(t, err)
		assert.Equal(t, first.Records, again.Records)
	}
	assert.Equal(t, []string{"e.js", "shared", "d.js", "c.js", "b.js", "a.js"}, phraseStrings(first.Records))
}

func TestAppendTagsSurvivesEncoding(t *testing.T) {
	t.Parallel()

	dir := writeFiles(t, map[string]string{
		"a.js": "t('first'); t('second', { _tags: 'x' }); t('third', { _tags: 'y,z' });",
	})
	policy := phrase.TagPolicy{AppendTags: phrase.ParseTags("custom")}

	report, err := NewDriver(Options{Tags: policy}).Run(context.Background(), []string{filepath.Join(dir, "a.js")})
	require.NoError(t, err)
	require.Len(t, report.Records, 3)

	raw, err := json.Marshal(report.Records)
	require.NoError(t, err)
	var decoded []phrase.Record
	require.NoError(t, json.Unmarshal(raw, &decoded))

	require.Len(t, decoded, 3)
	for _, rec := range decoded {
		assert.Contains(t, rec.Tags, "custom", rec.Key)
	}
	assert.Equal(t, []string{"custom", "y", "z"}, decoded[2].Tags)
}

func TestRunCancelled(t *testing.T) {
	t.Parallel()

	dir := writeFiles(t, map[string]string{"a.js": "t('one');"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDriver(Options{}).Run(ctx, []string{filepath.Join(dir, "a.js")})
	assert.ErrorIs(t, err, context.Canceled)
}

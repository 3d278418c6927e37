package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("TRANSIFEX_TOKEN", "tok")
	t.Setenv("TRANSIFEX_SECRET", "sec")
	t.Setenv("WORKER_COUNT", "3")
	t.Setenv("TRANSIFEX_CDS_HOST", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "tok", cfg.Token)
	assert.Equal(t, "sec", cfg.Secret)
	// the client picks its default host when none is configured
	assert.Empty(t, cfg.CDSHost)
	assert.Equal(t, 3, cfg.WorkerCount)
	assert.Equal(t, "bolt://localhost:7687", cfg.Neo4jURI)
}

func TestLoadRejectsBadNumber(t *testing.T) {
	t.Setenv("WORKER_COUNT", "many")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadProject(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "txjs.toml")
	content := `
patterns = ["src/**/*.{js,jsx}"]
key_generator = "hash"
append_tags = ["web"]
without_tags_only = ["internal"]

[shapes]
functions = ["t", "_t"]
methods = ["translate", "tr"]
tags = ["T"]
phrase_attribute = "_str"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	p, err := LoadProject(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"src/**/*.{js,jsx}"}, p.Patterns)
	assert.Equal(t, "hash", p.KeyGenerator)
	assert.Equal(t, []string{"web"}, p.AppendTags)
	assert.Equal(t, []string{"internal"}, p.WithoutTagsOnly)
	assert.Equal(t, []string{"t", "_t"}, p.Shapes.PlainFunctions)
	assert.Equal(t, []string{"translate", "tr"}, p.Shapes.InstanceMethods)
	assert.Equal(t, []string{"T"}, p.Shapes.MarkupTags)
	assert.Empty(t, p.Shapes.MetadataAttributes)
}

func TestLoadProjectMissing(t *testing.T) {
	t.Parallel()

	_, err := LoadProject(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoadProjectInvalid(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("patterns = [unterminated"), 0o644))

	_, err := LoadProject(path)
	assert.Error(t, err)
}

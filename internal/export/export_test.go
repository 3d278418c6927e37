package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"txjs-cli/internal/phrase"
)

func sample() []phrase.Record {
	return []phrase.Record{
		{
			Key:         "Text 1::foo",
			String:      "Text 1 <b>",
			Context:     "foo",
			Comment:     "two\tcols",
			CharLimit:   10,
			Tags:        []string{"tag1", "tag2"},
			Occurrences: []string{"a.js", "b.js"},
		},
		{Key: "multi", String: "line\nbreak"},
	}
}

func TestEncodeJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, EncodeJSON(&buf, sample()))
	assert.Contains(t, buf.String(), "<b>")
	assert.Contains(t, buf.String(), "\n  {")

	var decoded []phrase.Record
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	if diff := cmp.Diff(sample(), decoded); diff != "" {
		t.Errorf("decoded records (-want +got):\n%s", diff)
	}
}

func TestEncodeJSONEmpty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, EncodeJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestEncodeTSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, EncodeTSV(&buf, sample()))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "key\tstring\tcontext\tdeveloper_comment\tcharacter_limit\ttags\toccurrences", lines[0])
	assert.Equal(t, "Text 1::foo\tText 1 <b>\tfoo\ttwo\\tcols\t10\ttag1,tag2\ta.js,b.js", lines[1])
	assert.Equal(t, "multi\tline\\nbreak\t\t\t\t\t", lines[2])
}

func TestWriteFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out := filepath.Join(dir, "phrases.tsv")
	require.NoError(t, Write("TSV", out, sample()))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "key\t"))
}

func TestWriteUnknownFormat(t *testing.T) {
	t.Parallel()

	err := Write("xml", filepath.Join(t.TempDir(), "x"), nil)
	assert.ErrorContains(t, err, "unknown export format")
}

func TestEncodeDispatch(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, "tsv", sample()))
	assert.True(t, strings.HasPrefix(buf.String(), "key\t"))

	buf.Reset()
	require.NoError(t, Encode(&buf, "", sample()))
	assert.True(t, strings.HasPrefix(buf.String(), "["))
}

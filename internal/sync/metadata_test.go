package sync

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseServerMetadata(t *testing.T) {
	tests := []struct {
		name        string
		doc         string
		wantVersion int
		wantFiles   int
	}{
		{"numeric version", `{"version": 3, "files": []}`, 3, 0},
		{"labelled version", `{"version": "v12", "files": []}`, 12, 0},
		{"missing version", `{"files": []}`, 0, 0},
		{"garbage version", `{"version": "latest"}`, 0, 0},
		{"with files", `{"version": 1, "files": [
			{"path": "a.txt", "size": 5, "checksum": "aa", "mtime": "2020-05-01T12:00:00.123Z"},
			{"path": "dir/b.gpkg", "size": 9, "checksum": "bb", "mtime": "2020-05-01T12:00:00.456Z"}
		]}`, 1, 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			meta, err := ParseServerMetadata([]byte(tc.doc))
			require.NoError(t, err)
			assert.Equal(t, tc.wantVersion, meta.Version)
			assert.Equal(t, tc.wantFiles, meta.FileCount())
		})
	}

	_, err := ParseServerMetadata([]byte(`not json`))
	assert.Error(t, err)
}

func TestParseServerMetadata_FileDetails(t *testing.T) {
	meta, err := ParseServerMetadata([]byte(`{"version": "v2", "files": [
		{"path": "survey.gpkg", "size": 2048, "checksum": "DA39A3EE5E6B4B0D3255BFEF95601890AFD80709", "mtime": "2020-05-01T12:00:00.123Z"}
	]}`))
	require.NoError(t, err)

	f, ok := meta.Files["survey.gpkg"]
	require.True(t, ok)
	assert.Equal(t, int64(2048), f.Size)
	assert.Equal(t, time.Date(2020, 5, 1, 12, 0, 0, 123000000, time.UTC), f.MtimeTime())

	lower := FileRecord{Checksum: "da39a3ee5e6b4b0d3255bfef95601890afd80709"}
	assert.True(t, f.SameContent(&lower))
}

func TestReadBaseline_MissingOrMalformed(t *testing.T) {
	dir := t.TempDir()

	meta := ReadBaseline(dir)
	assert.Equal(t, 0, meta.Version)
	assert.Empty(t, meta.Files)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, MetaDir), 0o755))
	require.NoError(t, os.WriteFile(BaselinePath(dir), []byte("{{{"), 0o644))

	meta = ReadBaseline(dir)
	assert.Equal(t, 0, meta.Version)
	assert.Empty(t, meta.Files)
}

func TestWriteBaseline_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	doc := []byte(`{"version": 7, "files": [{"path": "a", "size": 1, "checksum": "aa", "mtime": "2020-05-01T12:00:00.000Z"}]}`)

	require.NoError(t, WriteBaseline(dir, doc))

	// verbatim persistence
	onDisk, err := os.ReadFile(BaselinePath(dir))
	require.NoError(t, err)
	assert.Equal(t, doc, onDisk)

	meta := ReadBaseline(dir)
	assert.Equal(t, 7, meta.Version)
	assert.Contains(t, meta.Files, "a")

	// overwrite replaces atomically
	require.NoError(t, WriteBaseline(dir, []byte(`{"version": 8, "files": []}`)))
	assert.Equal(t, 8, ReadBaseline(dir).Version)
}

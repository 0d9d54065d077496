package sync

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/merginmaps/mergin-go/internal/mergin"
	"github.com/merginmaps/mergin-go/internal/utils"
)

// MetaDir is the per-project directory holding the cached baseline. It is
// never indexed or synced.
const MetaDir = ".mergin"

// MetaFile is the baseline cache inside MetaDir: the server metadata document
// of the version last fully realized on disk.
const MetaFile = "mergin.json"

// mtimeFormat is the wire format for file timestamps: ISO-8601 with
// millisecond precision, UTC.
const mtimeFormat = "2006-01-02T15:04:05.000Z07:00"

// FileRecord describes one file of a project version. Two records with equal
// checksums are content-identical.
type FileRecord struct {
	Path     string   `json:"path"`
	Size     int64    `json:"size"`
	Checksum string   `json:"checksum"`
	Mtime    string   `json:"mtime"`
	Chunks   []string `json:"chunks,omitempty"`
}

// MtimeTime parses the record timestamp; a malformed stamp yields zero time.
func (f *FileRecord) MtimeTime() time.Time {
	if t, err := time.Parse(time.RFC3339, f.Mtime); err == nil {
		return t.UTC()
	}
	return time.Time{}
}

// SameContent compares checksums. Hex digests compare case-insensitively.
func (f *FileRecord) SameContent(other *FileRecord) bool {
	return strings.EqualFold(f.Checksum, other.Checksum)
}

// ProjectMetadata is a parsed server metadata document: a project version and
// its file set keyed by relative path.
type ProjectMetadata struct {
	Version int
	Files   map[string]FileRecord
}

func (m *ProjectMetadata) FileCount() int {
	return len(m.Files)
}

// ParseServerMetadata decodes a server project metadata document. The version
// travels either as an integer or as a "v<int>" label; a missing version
// means 0.
func ParseServerMetadata(data []byte) (*ProjectMetadata, error) {
	var doc struct {
		Version json.RawMessage `json:"version"`
		Files   []FileRecord    `json:"files"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	meta := &ProjectMetadata{
		Version: parseVersionValue(doc.Version),
		Files:   make(map[string]FileRecord, len(doc.Files)),
	}
	for _, f := range doc.Files {
		meta.Files[f.Path] = f
	}

	return meta, nil
}

func parseVersionValue(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}

	var asInt int
	if err := json.Unmarshal(raw, &asInt); err == nil {
		return asInt
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return mergin.ParseVersionLabel(asString)
	}

	return 0
}

// BaselinePath is the location of the cached baseline for a project directory.
func BaselinePath(projectDir string) string {
	return filepath.Join(projectDir, MetaDir, MetaFile)
}

// ReadBaseline loads the cached baseline of a project directory. A missing or
// malformed cache is the expected initial state and yields empty metadata at
// version 0.
func ReadBaseline(projectDir string) *ProjectMetadata {
	data, err := os.ReadFile(BaselinePath(projectDir))
	if err != nil {
		return &ProjectMetadata{Version: 0, Files: map[string]FileRecord{}}
	}

	meta, err := ParseServerMetadata(data)
	if err != nil {
		return &ProjectMetadata{Version: 0, Files: map[string]FileRecord{}}
	}

	return meta
}

// WriteBaseline atomically replaces the cached baseline with the given server
// metadata document, verbatim.
func WriteBaseline(projectDir string, metadataJSON []byte) error {
	return utils.WriteFileAtomic(BaselinePath(projectDir), metadataJSON)
}

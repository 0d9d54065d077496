package sync

import (
	gitignore "github.com/sabhiram/go-gitignore"
)

// Files that never sync: journal/lock sidecars of geodatabases, editor
// backups, bytecode, and the metadata cache itself.
var ignoreLines = []string{
	"*.gpkg-shm",
	"*.gpkg-wal",
	"*.qgs~",
	"*.qgz~",
	"*.pyc",
	"*.swap",
	"mergin.json",
	".DS_Store",
	MetaDir + "/",
}

// IgnoreList decides which paths are excluded from indexing and sync.
type IgnoreList struct {
	ignore *gitignore.GitIgnore
}

func NewIgnoreList() *IgnoreList {
	return &IgnoreList{ignore: gitignore.CompileIgnoreLines(ignoreLines...)}
}

// ShouldIgnore matches a project-relative, forward-slash path.
func (l *IgnoreList) ShouldIgnore(relPath string) bool {
	return l.ignore.MatchesPath(relPath)
}

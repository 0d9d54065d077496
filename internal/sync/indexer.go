package sync

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/merginmaps/mergin-go/internal/utils"
)

// IndexProject walks a project directory and fingerprints every file that is
// not excluded by the ignore rules. Paths in the returned map are relative to
// projectDir and forward-slash separated.
func IndexProject(projectDir string) (map[string]FileRecord, error) {
	if !utils.DirExists(projectDir) {
		return nil, fmt.Errorf("project directory %s does not exist", projectDir)
	}

	ignore := NewIgnoreList()
	files := make(map[string]FileRecord)

	err := filepath.WalkDir(projectDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(projectDir, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if d.IsDir() {
			if d.Name() == MetaDir {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || ignore.ShouldIgnore(relPath) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		checksum, err := utils.Sha1File(path)
		if err != nil {
			return fmt.Errorf("fingerprint %s: %w", relPath, err)
		}

		files[relPath] = FileRecord{
			Path:     relPath,
			Size:     info.Size(),
			Checksum: checksum,
			Mtime:    info.ModTime().UTC().Format(mtimeFormat),
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("index %s: %w", projectDir, err)
	}

	return files, nil
}

// indexOrEmpty indexes a directory that may not exist yet; a missing
// directory yields an empty file set, which is the first-download case.
func indexOrEmpty(projectDir string) (map[string]FileRecord, error) {
	if _, err := os.Stat(projectDir); os.IsNotExist(err) {
		return map[string]FileRecord{}, nil
	}
	return IndexProject(projectDir)
}

package sync

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/merginmaps/mergin-go/internal/mergin"
	"github.com/merginmaps/mergin-go/internal/utils"
)

// DownloadProject performs the first-time download of a project into
// targetDir, or into a freshly allocated directory under the data dir when
// targetDir is empty. On any failure the created directory is removed again.
func (c *Coordinator) DownloadProject(ctx context.Context, project ProjectID, targetDir string) error {
	tx, err := c.store.Begin(ctx, project, TxUpdate)
	if err != nil {
		return err
	}

	if targetDir == "" {
		targetDir = AllocateProjectDir(c.dataDir, project.Name)
	}
	tx.ProjectDir = targetDir
	_, statErr := os.Stat(targetDir)
	tx.FirstTimeDownload = os.IsNotExist(statErr)

	err = utils.EnsureDir(targetDir)
	if err == nil {
		err = c.runUpdate(tx)
	}
	c.finishSync(tx, err)
	return err
}

// UpdateProject pulls the latest server version into a registered project
// directory.
func (c *Coordinator) UpdateProject(ctx context.Context, projectDir string) error {
	info, err := c.registry.FindByDir(projectDir)
	if err != nil {
		return err
	}
	if info == nil {
		return fmt.Errorf("directory %s is not a registered project", projectDir)
	}

	tx, err := c.store.Begin(ctx, info.ID(), TxUpdate)
	if err != nil {
		return err
	}
	tx.ProjectDir = projectDir

	err = c.runUpdate(tx)
	c.finishSync(tx, err)
	return err
}

// runUpdate drives fetch-info, planning, download and finalization for one
// update transaction.
func (c *Coordinator) runUpdate(tx *Transaction) error {
	remote, err := c.fetchProjectInfo(tx)
	if err != nil {
		return err
	}
	return c.updateToMetadata(tx, remote)
}

// updateToMetadata runs the update flow against already fetched server
// metadata. The upload flow re-enters here for its update-before-upload leg.
func (c *Coordinator) updateToMetadata(tx *Transaction, remote *ProjectMetadata) error {
	tx.TargetVersion = remote.Version

	baseline := ReadBaseline(tx.ProjectDir)
	local, err := indexOrEmpty(tx.ProjectDir)
	if err != nil {
		return err
	}

	tx.Diff = Compare(baseline.Files, remote.Files, local)

	tx.Files = tx.Files[:0]
	tx.TotalBytes = 0
	tx.TransferredBytes = 0
	for _, path := range tx.Diff.DownloadList() {
		record := remote.Files[path]
		tx.Files = append(tx.Files, record)
		tx.TotalBytes += record.Size
	}

	slog.Info("update planned",
		"project", tx.Project,
		"version", remote.Version,
		"files", len(tx.Files),
		"bytes", humanize.Bytes(uint64(tx.TotalBytes)))

	if len(tx.Files) > 0 {
		if err := c.downloadFiles(tx); err != nil {
			return err
		}
	}

	return c.finalizeUpdate(tx, remote)
}

// downloadFiles stages every planned file under the transaction temp dir,
// fetching chunk by chunk in order.
func (c *Coordinator) downloadFiles(tx *Transaction) error {
	tx.TempDir = c.tempDirFor(tx.Project)
	if err := os.RemoveAll(tx.TempDir); err != nil {
		return fmt.Errorf("clear temp dir: %w", err)
	}

	versionLabel := mergin.VersionLabel(tx.TargetVersion)
	c.events.progress(tx.Project, 0, tx.TotalBytes)

	for _, file := range tx.Files {
		if err := c.downloadFile(tx, &file, versionLabel); err != nil {
			return fmt.Errorf("download %s: %w", file.Path, err)
		}
	}

	return nil
}

func (c *Coordinator) downloadFile(tx *Transaction, file *FileRecord, versionLabel string) error {
	destPath := filepath.Join(tx.TempDir, filepath.FromSlash(file.Path))

	if file.Size == 0 {
		return utils.Touch(destPath)
	}

	if err := utils.EnsureParent(destPath); err != nil {
		return err
	}
	dest, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer dest.Close()

	chunkCount := int((file.Size + mergin.UploadChunkSize - 1) / mergin.UploadChunkSize)
	for i := 0; i < chunkCount; i++ {
		data, err := c.client.DownloadChunk(tx.Context(), tx.Project.FullName(), file.Path, versionLabel, i)
		if err != nil {
			return err
		}
		if _, err := dest.Write(data); err != nil {
			return err
		}

		tx.TransferredBytes += int64(len(data))
		c.events.progress(tx.Project, tx.TransferredBytes, tx.TotalBytes)
	}

	return dest.Close()
}

// finalizeUpdate commits a completed download: losing local edits are set
// aside under conflict renames, the staged files land in the project
// directory, remote deletions are applied, and the new baseline and versions
// are persisted.
func (c *Coordinator) finalizeUpdate(tx *Transaction, remote *ProjectMetadata) error {
	for _, path := range tx.Diff.ConflictList() {
		src := filepath.Join(tx.ProjectDir, filepath.FromSlash(path))
		if err := os.Rename(src, src+conflictSuffix); err != nil {
			slog.Warn("conflict rename failed", "path", path, "error", err)
		} else {
			slog.Warn("conflicting local edits preserved", "path", path+conflictSuffix)
		}
	}

	if tx.TempDir != "" {
		if err := utils.CopyDir(tx.TempDir, tx.ProjectDir); err != nil {
			return fmt.Errorf("apply downloaded files: %w", err)
		}
	}

	for _, path := range tx.Diff.RemoteDeleted {
		target := filepath.Join(tx.ProjectDir, filepath.FromSlash(path))
		if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("apply remote deletion of %s: %w", path, err)
		}
	}

	info, err := c.registry.FindByDir(tx.ProjectDir)
	if err != nil {
		return err
	}
	if info == nil {
		if _, err := c.registry.Register(tx.ProjectDir, tx.Project); err != nil {
			return err
		}
	}

	if err := WriteBaseline(tx.ProjectDir, tx.MetadataJSON); err != nil {
		return fmt.Errorf("persist baseline: %w", err)
	}
	if err := c.registry.SetLocalVersion(tx.ProjectDir, remote.Version); err != nil {
		return err
	}

	if tx.TempDir != "" {
		if err := os.RemoveAll(tx.TempDir); err != nil {
			slog.Warn("temp dir cleanup failed", "dir", tx.TempDir, "error", err)
		}
		tx.TempDir = ""
	}

	return nil
}

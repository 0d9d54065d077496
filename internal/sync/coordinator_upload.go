package sync

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/dustin/go-humanize"

	"github.com/merginmaps/mergin-go/internal/mergin"
)

// UploadProject pushes the local changes of a registered project directory
// to the server. When the server has moved past the local version, the
// project is first updated in the same transaction and the upload re-enters
// from the top.
func (c *Coordinator) UploadProject(ctx context.Context, projectDir string) error {
	info, err := c.registry.FindByDir(projectDir)
	if err != nil {
		return err
	}
	if info == nil {
		return fmt.Errorf("directory %s is not a registered project", projectDir)
	}

	tx, err := c.store.Begin(ctx, info.ID(), TxUpload)
	if err != nil {
		return err
	}
	tx.ProjectDir = projectDir

	err = c.runUpload(tx)
	c.finishSync(tx, err)
	return err
}

func (c *Coordinator) runUpload(tx *Transaction) error {
	for {
		remote, err := c.fetchProjectInfo(tx)
		if err != nil {
			return err
		}

		baseline := ReadBaseline(tx.ProjectDir)
		if baseline.Version >= remote.Version {
			return c.uploadAgainst(tx, remote)
		}

		if tx.UpdateBeforeUpload {
			return fmt.Errorf("project %s still behind server after update (local v%d, server v%d)",
				tx.Project, baseline.Version, remote.Version)
		}

		slog.Info("server ahead, updating before upload",
			"project", tx.Project, "local", baseline.Version, "server", remote.Version)
		tx.Kind = TxUpdateThenUpload
		tx.UpdateBeforeUpload = true
		if err := c.updateToMetadata(tx, remote); err != nil {
			return err
		}
	}
}

// uploadAgainst plans and performs the push against the given server state.
func (c *Coordinator) uploadAgainst(tx *Transaction, remote *ProjectMetadata) error {
	tx.TargetVersion = remote.Version

	baseline := ReadBaseline(tx.ProjectDir)
	local, err := IndexProject(tx.ProjectDir)
	if err != nil {
		return err
	}

	tx.Diff = Compare(baseline.Files, remote.Files, local)
	if !tx.Diff.HasLocalChanges() {
		slog.Info("nothing to upload", "project", tx.Project, "version", remote.Version)
		return nil
	}

	changes, uploadQueue := buildPushChanges(tx.Diff, baseline, local)
	tx.Files = uploadQueue
	tx.TotalBytes = 0
	tx.TransferredBytes = 0
	for _, file := range uploadQueue {
		tx.TotalBytes += file.Size
	}

	slog.Info("upload planned",
		"project", tx.Project,
		"base", remote.Version,
		"added", len(changes.Added),
		"updated", len(changes.Updated),
		"removed", len(changes.Removed),
		"bytes", humanize.Bytes(uint64(tx.TotalBytes)))

	resp, err := c.client.PushStart(tx.Context(), tx.Project.FullName(), &mergin.PushStartRequest{
		Version: mergin.VersionLabel(remote.Version),
		Changes: *changes,
	})
	if err != nil {
		return err
	}

	newMetadataJSON := resp.Raw
	if resp.Transaction != "" {
		tx.ServerTransaction = resp.Transaction

		if err := c.uploadFiles(tx); err != nil {
			return err
		}

		newMetadataJSON, err = c.client.PushFinish(tx.Context(), tx.ServerTransaction)
		if err != nil {
			return err
		}
	}

	return c.finalizeUpload(tx, newMetadataJSON)
}

// buildPushChanges assembles the wire-level change lists from the local side
// of the diff and returns the files that need chunk uploads, in order.
func buildPushChanges(diff *ProjectDiff, baseline *ProjectMetadata, local map[string]FileRecord) (*mergin.Changes, []FileRecord) {
	changes := &mergin.Changes{
		Added:   []mergin.FileChange{},
		Removed: []mergin.FileChange{},
		Updated: []mergin.FileChange{},
		Renamed: []mergin.FileChange{},
	}
	var queue []FileRecord

	appendLocal := func(paths []string, dest *[]mergin.FileChange) {
		sorted := append([]string(nil), paths...)
		sort.Strings(sorted)
		for _, path := range sorted {
			record := local[path]
			record.Chunks = PlanChunks(record.Size)
			*dest = append(*dest, toFileChange(&record))
			queue = append(queue, record)
		}
	}

	appendLocal(diff.LocalAdded, &changes.Added)
	appendLocal(diff.LocalUpdated, &changes.Updated)

	deleted := append([]string(nil), diff.LocalDeleted...)
	sort.Strings(deleted)
	for _, path := range deleted {
		record := baseline.Files[path]
		changes.Removed = append(changes.Removed, toFileChange(&record))
	}

	return changes, queue
}

func toFileChange(record *FileRecord) mergin.FileChange {
	return mergin.FileChange{
		Path:     record.Path,
		Checksum: record.Checksum,
		Size:     record.Size,
		Mtime:    record.Mtime,
		Chunks:   record.Chunks,
	}
}

// uploadFiles streams each queued file to the open push transaction, one
// chunk per request, in queue order.
func (c *Coordinator) uploadFiles(tx *Transaction) error {
	buf := make([]byte, mergin.UploadChunkSize)
	c.events.progress(tx.Project, 0, tx.TotalBytes)

	for _, file := range tx.Files {
		if err := c.uploadFile(tx, &file, buf); err != nil {
			return fmt.Errorf("upload %s: %w", file.Path, err)
		}
	}

	return nil
}

func (c *Coordinator) uploadFile(tx *Transaction, file *FileRecord, buf []byte) error {
	if len(file.Chunks) == 0 {
		return nil
	}

	src, err := os.Open(filepath.Join(tx.ProjectDir, filepath.FromSlash(file.Path)))
	if err != nil {
		return err
	}
	defer src.Close()

	for _, chunkID := range file.Chunks {
		n, err := io.ReadFull(src, buf)
		if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
			return err
		}
		if n == 0 {
			break
		}

		if err := c.client.PushChunk(tx.Context(), tx.ServerTransaction, chunkID, buf[:n]); err != nil {
			return err
		}

		tx.TransferredBytes += int64(n)
		c.events.progress(tx.Project, tx.TransferredBytes, tx.TotalBytes)
	}

	return nil
}

// finalizeUpload commits the server's new metadata as the local baseline and
// advances the recorded versions.
func (c *Coordinator) finalizeUpload(tx *Transaction, metadataJSON []byte) error {
	newMeta, err := ParseServerMetadata(metadataJSON)
	if err != nil {
		return fmt.Errorf("parse push reply: %w", err)
	}

	tx.MetadataJSON = metadataJSON
	tx.TargetVersion = newMeta.Version
	tx.ServerTransaction = ""

	if err := WriteBaseline(tx.ProjectDir, metadataJSON); err != nil {
		return fmt.Errorf("persist baseline: %w", err)
	}
	return c.registry.SetLocalVersion(tx.ProjectDir, newMeta.Version)
}

package sync

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/merginmaps/mergin-go/internal/mergin"
)

// tempFolderPrefix names the staging directories for in-flight downloads,
// kept under the data directory and removed on every exit path.
const tempFolderPrefix = ".temp_"

// conflictSuffix is appended to a local file whose edits lost against the
// server copy. The local bytes survive under the renamed path.
const conflictSuffix = "_conflict"

// Coordinator drives the update, upload and update-then-upload flows for
// local projects. All state it touches is passed in at construction; it owns
// no globals.
type Coordinator struct {
	client   *mergin.Client
	registry *Registry
	store    *TransactionStore
	dataDir  string
	events   *Events
}

func NewCoordinator(client *mergin.Client, registry *Registry, dataDir string, events *Events) *Coordinator {
	return &Coordinator{
		client:   client,
		registry: registry,
		store:    NewTransactionStore(),
		dataDir:  dataDir,
		events:   events,
	}
}

// Transactions exposes the in-flight transaction store.
func (c *Coordinator) Transactions() *TransactionStore {
	return c.store
}

// CancelSync aborts the in-flight sync of a project, if any. The outstanding
// request fails on its reply path, which tears the transaction down; calling
// again after teardown is a no-op.
func (c *Coordinator) CancelSync(project ProjectID) {
	if tx := c.store.Get(project); tx != nil {
		slog.Info("sync cancel requested", "project", project, "kind", tx.Kind)
		tx.Cancel()
	}
}

// tempDirFor is the staging directory for one project's download.
func (c *Coordinator) tempDirFor(project ProjectID) string {
	return filepath.Join(c.dataDir, tempFolderPrefix+strings.ReplaceAll(project.FullName(), "/", "_"))
}

// AllocateProjectDir picks a fresh directory under the data dir for a
// first-time download, suffixing the name when the plain one is taken.
func AllocateProjectDir(dataDir, name string) string {
	dir := filepath.Join(dataDir, name)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return dir
	}
	for i := 0; ; i++ {
		candidate := fmt.Sprintf("%s%d", dir, i)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}

// fetchProjectInfo retrieves and parses the current server metadata, keeping
// the raw document on the transaction for later baseline persistence.
func (c *Coordinator) fetchProjectInfo(tx *Transaction) (*ProjectMetadata, error) {
	metaJSON, err := c.client.ProjectInfo(tx.Context(), tx.Project.FullName())
	if err != nil {
		return nil, err
	}

	remote, err := ParseServerMetadata(metaJSON)
	if err != nil {
		return nil, fmt.Errorf("parse project info for %s: %w", tx.Project, err)
	}

	tx.MetadataJSON = metaJSON
	return remote, nil
}

// finishSync is the single funnel every sync outcome passes through: it
// emits the failure sentinel and the terminal result, cleans staged state and
// drops the transaction from the store.
func (c *Coordinator) finishSync(tx *Transaction, err error) {
	if err != nil {
		slog.Warn("sync failed", "project", tx.Project, "kind", tx.Kind, "error", err)
		c.events.progress(tx.Project, FailedProgressSentinel, tx.TotalBytes)

		if tx.ServerTransaction != "" {
			// the transaction context may already be cancelled; give the
			// server-side cancel its own deadline
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			c.client.PushCancel(ctx, tx.ServerTransaction)
			cancel()
		}
	} else {
		slog.Info("sync finished", "project", tx.Project, "kind", tx.Kind, "version", tx.TargetVersion)
	}

	if tx.TempDir != "" {
		if rmErr := os.RemoveAll(tx.TempDir); rmErr != nil {
			slog.Warn("temp dir cleanup failed", "dir", tx.TempDir, "error", rmErr)
		}
	}
	if err != nil && tx.FirstTimeDownload && tx.ProjectDir != "" {
		if rmErr := os.RemoveAll(tx.ProjectDir); rmErr != nil {
			slog.Warn("project dir cleanup failed", "dir", tx.ProjectDir, "error", rmErr)
		}
	}

	c.events.finished(newResult(tx, err))
	c.store.Remove(tx.Project)
}

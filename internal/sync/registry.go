package sync

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

const registrySchema = `
CREATE TABLE IF NOT EXISTS local_projects (
    project_dir TEXT PRIMARY KEY,
    namespace TEXT NOT NULL,
    name TEXT NOT NULL,
    local_version INTEGER NOT NULL DEFAULT -1,
    server_version INTEGER NOT NULL DEFAULT -1,
    UNIQUE(namespace, name)
);

CREATE INDEX IF NOT EXISTS idx_local_projects_name ON local_projects(namespace, name);
`

// Registry is the persistent index of projects present on this machine and
// the versions they are at, backed by SQLite.
type Registry struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
}

// OpenRegistry creates or opens the registry database at dbPath.
func OpenRegistry(dbPath string) (*Registry, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create registry directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?mode=rwc&_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open registry db at %s: %w", dbPath, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(registrySchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize registry schema: %w", err)
	}

	return &Registry{db: db, dbPath: dbPath}, nil
}

func (r *Registry) Close() error {
	return r.db.Close()
}

// Register records a project directory. When a baseline cache is already
// present in the directory, its version seeds localVersion so re-registering
// an existing checkout resumes where it left off.
func (r *Registry) Register(projectDir string, project ProjectID) (*LocalProjectInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	localVersion := -1
	if baseline := ReadBaseline(projectDir); baseline.Version > 0 {
		localVersion = baseline.Version
	}

	info := &LocalProjectInfo{
		ProjectDir:    projectDir,
		Namespace:     project.Namespace,
		Name:          project.Name,
		LocalVersion:  localVersion,
		ServerVersion: -1,
	}

	_, err := r.db.Exec(
		"INSERT OR REPLACE INTO local_projects (project_dir, namespace, name, local_version, server_version) VALUES (?, ?, ?, ?, ?)",
		info.ProjectDir, info.Namespace, info.Name, info.LocalVersion, info.ServerVersion,
	)
	if err != nil {
		return nil, fmt.Errorf("register project %s: %w", project, err)
	}
	return info, nil
}

// Unregister removes a project directory from the registry.
func (r *Registry) Unregister(projectDir string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec("DELETE FROM local_projects WHERE project_dir = ?", projectDir)
	return err
}

// FindByName looks a project up by its full name. Absent projects return nil.
func (r *Registry) FindByName(project ProjectID) (*LocalProjectInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.scanOne("SELECT project_dir, namespace, name, local_version, server_version FROM local_projects WHERE namespace = ? AND name = ?",
		project.Namespace, project.Name)
}

// FindByDir looks a project up by its directory. Absent directories return nil.
func (r *Registry) FindByDir(projectDir string) (*LocalProjectInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.scanOne("SELECT project_dir, namespace, name, local_version, server_version FROM local_projects WHERE project_dir = ?",
		projectDir)
}

func (r *Registry) scanOne(query string, args ...any) (*LocalProjectInfo, error) {
	var info LocalProjectInfo
	err := r.db.QueryRow(query, args...).Scan(
		&info.ProjectDir, &info.Namespace, &info.Name, &info.LocalVersion, &info.ServerVersion,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query registry: %w", err)
	}
	return &info, nil
}

// All lists every registered project.
func (r *Registry) All() ([]*LocalProjectInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows, err := r.db.Query("SELECT project_dir, namespace, name, local_version, server_version FROM local_projects ORDER BY namespace, name")
	if err != nil {
		return nil, fmt.Errorf("query registry: %w", err)
	}
	defer rows.Close()

	var infos []*LocalProjectInfo
	for rows.Next() {
		var info LocalProjectInfo
		if err := rows.Scan(&info.ProjectDir, &info.Namespace, &info.Name, &info.LocalVersion, &info.ServerVersion); err != nil {
			return nil, fmt.Errorf("scan registry row: %w", err)
		}
		infos = append(infos, &info)
	}
	return infos, rows.Err()
}

// SetLocalVersion records the version fully realized on disk, also bumping
// the last seen server version to at least the same value.
func (r *Registry) SetLocalVersion(projectDir string, version int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(
		"UPDATE local_projects SET local_version = ?, server_version = MAX(server_version, ?) WHERE project_dir = ?",
		version, version, projectDir,
	)
	return err
}

// SetServerVersion records the latest version observed on the server, as
// reported by project listings.
func (r *Registry) SetServerVersion(project ProjectID, version int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(
		"UPDATE local_projects SET server_version = ? WHERE namespace = ? AND name = ?",
		version, project.Namespace, project.Name,
	)
	return err
}

package sync

import (
	"sort"
)

// ProjectDiff classifies every path touched by a three-way comparison of the
// cached baseline, the current server state and the current on-disk state.
// The categories are pairwise disjoint.
type ProjectDiff struct {
	LocalAdded   []string
	LocalUpdated []string
	LocalDeleted []string

	RemoteAdded   []string
	RemoteUpdated []string
	RemoteDeleted []string

	ConflictRemoteUpdatedLocalUpdated []string
	ConflictRemoteAddedLocalAdded     []string
	ConflictRemoteDeletedLocalUpdated []string
	ConflictRemoteUpdatedLocalDeleted []string
}

// Empty reports whether the diff carries no changes at all.
func (d *ProjectDiff) Empty() bool {
	return len(d.LocalAdded) == 0 && len(d.LocalUpdated) == 0 && len(d.LocalDeleted) == 0 &&
		len(d.RemoteAdded) == 0 && len(d.RemoteUpdated) == 0 && len(d.RemoteDeleted) == 0 &&
		len(d.ConflictRemoteUpdatedLocalUpdated) == 0 && len(d.ConflictRemoteAddedLocalAdded) == 0 &&
		len(d.ConflictRemoteDeletedLocalUpdated) == 0 && len(d.ConflictRemoteUpdatedLocalDeleted) == 0
}

// HasLocalChanges reports whether anything needs pushing.
func (d *ProjectDiff) HasLocalChanges() bool {
	return len(d.LocalAdded) > 0 || len(d.LocalUpdated) > 0 || len(d.LocalDeleted) > 0
}

// DownloadList returns the paths whose remote content must be fetched during
// an update, in deterministic order. Conflicting paths are included: the
// remote version wins on disk while the local bytes are preserved under a
// conflict rename.
func (d *ProjectDiff) DownloadList() []string {
	paths := make([]string, 0,
		len(d.RemoteAdded)+len(d.RemoteUpdated)+
			len(d.ConflictRemoteUpdatedLocalUpdated)+len(d.ConflictRemoteAddedLocalAdded)+
			len(d.ConflictRemoteUpdatedLocalDeleted))
	paths = append(paths, d.RemoteAdded...)
	paths = append(paths, d.RemoteUpdated...)
	paths = append(paths, d.ConflictRemoteUpdatedLocalUpdated...)
	paths = append(paths, d.ConflictRemoteAddedLocalAdded...)
	paths = append(paths, d.ConflictRemoteUpdatedLocalDeleted...)
	sort.Strings(paths)
	return paths
}

// ConflictList returns the paths whose local bytes must be preserved under a
// `<path>_conflict` rename before the remote content lands.
func (d *ProjectDiff) ConflictList() []string {
	paths := make([]string, 0, len(d.ConflictRemoteUpdatedLocalUpdated)+len(d.ConflictRemoteAddedLocalAdded))
	paths = append(paths, d.ConflictRemoteUpdatedLocalUpdated...)
	paths = append(paths, d.ConflictRemoteAddedLocalAdded...)
	sort.Strings(paths)
	return paths
}

// Compare classifies each path reachable from the baseline, the remote state
// or the local file set by its presence triple and checksum relations. Paths
// compare byte-exact; checksums compare as case-insensitive hex.
func Compare(baseline, remote, local map[string]FileRecord) *ProjectDiff {
	diff := &ProjectDiff{}

	for _, path := range unionPaths(baseline, remote, local) {
		oldRec, inOld := baseline[path]
		newRec, inNew := remote[path]
		localRec, inLocal := local[path]

		switch {
		case !inOld && !inNew && inLocal:
			diff.LocalAdded = append(diff.LocalAdded, path)

		case inOld && !inNew && inLocal:
			if oldRec.SameContent(&localRec) {
				diff.RemoteDeleted = append(diff.RemoteDeleted, path)
			} else {
				diff.ConflictRemoteDeletedLocalUpdated = append(diff.ConflictRemoteDeletedLocalUpdated, path)
			}

		case !inOld && inNew && inLocal:
			if !newRec.SameContent(&localRec) {
				diff.ConflictRemoteAddedLocalAdded = append(diff.ConflictRemoteAddedLocalAdded, path)
			}
			// identical content added on both sides converged independently

		case inOld && inNew && inLocal:
			switch {
			case oldRec.SameContent(&newRec) && newRec.SameContent(&localRec):
				// no change anywhere
			case oldRec.SameContent(&newRec):
				diff.LocalUpdated = append(diff.LocalUpdated, path)
			case newRec.SameContent(&localRec):
				// remote change already present locally
			case oldRec.SameContent(&localRec):
				diff.RemoteUpdated = append(diff.RemoteUpdated, path)
			default:
				diff.ConflictRemoteUpdatedLocalUpdated = append(diff.ConflictRemoteUpdatedLocalUpdated, path)
			}

		case inOld && inNew && !inLocal:
			if oldRec.SameContent(&newRec) {
				diff.LocalDeleted = append(diff.LocalDeleted, path)
			} else {
				diff.ConflictRemoteUpdatedLocalDeleted = append(diff.ConflictRemoteUpdatedLocalDeleted, path)
			}

		case !inOld && inNew && !inLocal:
			diff.RemoteAdded = append(diff.RemoteAdded, path)

		case inOld && !inNew && !inLocal:
			// deleted on both sides, nothing to do
		}
	}

	return diff
}

func unionPaths(sets ...map[string]FileRecord) []string {
	seen := make(map[string]struct{})
	for _, set := range sets {
		for path := range set {
			seen[path] = struct{}{}
		}
	}

	paths := make([]string, 0, len(seen))
	for path := range seen {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

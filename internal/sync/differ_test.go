package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(path, checksum string) FileRecord {
	return FileRecord{Path: path, Checksum: checksum, Size: 10}
}

func set(records ...FileRecord) map[string]FileRecord {
	m := make(map[string]FileRecord, len(records))
	for _, r := range records {
		m[r.Path] = r
	}
	return m
}

// one test case per row of the classification table
func TestCompare_Classification(t *testing.T) {
	const p = "file.gpkg"

	pick := func(d *ProjectDiff, bucket string) []string {
		switch bucket {
		case "localAdded":
			return d.LocalAdded
		case "localUpdated":
			return d.LocalUpdated
		case "localDeleted":
			return d.LocalDeleted
		case "remoteAdded":
			return d.RemoteAdded
		case "remoteUpdated":
			return d.RemoteUpdated
		case "remoteDeleted":
			return d.RemoteDeleted
		case "conflictUpdatedUpdated":
			return d.ConflictRemoteUpdatedLocalUpdated
		case "conflictAddedAdded":
			return d.ConflictRemoteAddedLocalAdded
		case "conflictDeletedUpdated":
			return d.ConflictRemoteDeletedLocalUpdated
		case "conflictUpdatedDeleted":
			return d.ConflictRemoteUpdatedLocalDeleted
		default:
			t.Fatalf("unknown bucket %q", bucket)
			return nil
		}
	}

	tests := []struct {
		name     string
		baseline map[string]FileRecord
		remote   map[string]FileRecord
		local    map[string]FileRecord
		want     string // empty means no category at all
	}{
		{"local added", nil, nil, set(rec(p, "aa")), "localAdded"},
		{"remote deleted, local untouched", set(rec(p, "aa")), nil, set(rec(p, "aa")), "remoteDeleted"},
		{"remote deleted, local edited", set(rec(p, "aa")), nil, set(rec(p, "cc")), "conflictDeletedUpdated"},
		{"added on both sides, different content", nil, set(rec(p, "bb")), set(rec(p, "cc")), "conflictAddedAdded"},
		{"added on both sides, same content", nil, set(rec(p, "bb")), set(rec(p, "bb")), ""},
		{"unchanged everywhere", set(rec(p, "aa")), set(rec(p, "aa")), set(rec(p, "aa")), ""},
		{"local updated", set(rec(p, "aa")), set(rec(p, "aa")), set(rec(p, "cc")), "localUpdated"},
		{"remote change already caught up", set(rec(p, "aa")), set(rec(p, "bb")), set(rec(p, "bb")), ""},
		{"remote updated", set(rec(p, "aa")), set(rec(p, "bb")), set(rec(p, "aa")), "remoteUpdated"},
		{"updated on both sides", set(rec(p, "aa")), set(rec(p, "bb")), set(rec(p, "cc")), "conflictUpdatedUpdated"},
		{"local deleted", set(rec(p, "aa")), set(rec(p, "aa")), nil, "localDeleted"},
		{"local deleted, remote updated", set(rec(p, "aa")), set(rec(p, "bb")), nil, "conflictUpdatedDeleted"},
		{"remote added", nil, set(rec(p, "bb")), nil, "remoteAdded"},
		{"deleted consistently", set(rec(p, "aa")), nil, nil, ""},
	}

	buckets := []string{
		"localAdded", "localUpdated", "localDeleted",
		"remoteAdded", "remoteUpdated", "remoteDeleted",
		"conflictUpdatedUpdated", "conflictAddedAdded",
		"conflictDeletedUpdated", "conflictUpdatedDeleted",
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			diff := Compare(tc.baseline, tc.remote, tc.local)

			for _, bucket := range buckets {
				got := pick(diff, bucket)
				if bucket == tc.want {
					assert.Equal(t, []string{p}, got, "expected %s in %s", p, bucket)
				} else {
					assert.Empty(t, got, "unexpected entry in %s", bucket)
				}
			}
		})
	}
}

func TestCompare_ChecksumCaseInsensitive(t *testing.T) {
	baseline := set(rec("x", "ABCDEF"))
	remote := set(rec("x", "abcdef"))
	local := set(rec("x", "abcdef"))

	diff := Compare(baseline, remote, local)
	assert.True(t, diff.Empty())
}

func TestCompare_DisjointAcrossManyPaths(t *testing.T) {
	baseline := set(rec("keep", "aa"), rec("gone-remote", "aa"), rec("edit", "aa"))
	remote := set(rec("keep", "aa"), rec("edit", "bb"), rec("new-remote", "dd"))
	local := set(rec("keep", "aa"), rec("gone-remote", "aa"), rec("edit", "aa"), rec("new-local", "ee"))

	diff := Compare(baseline, remote, local)

	assert.Equal(t, []string{"new-local"}, diff.LocalAdded)
	assert.Equal(t, []string{"gone-remote"}, diff.RemoteDeleted)
	assert.Equal(t, []string{"edit"}, diff.RemoteUpdated)
	assert.Equal(t, []string{"new-remote"}, diff.RemoteAdded)

	// each path lands in exactly one category
	all := map[string]int{}
	for _, paths := range [][]string{
		diff.LocalAdded, diff.LocalUpdated, diff.LocalDeleted,
		diff.RemoteAdded, diff.RemoteUpdated, diff.RemoteDeleted,
		diff.ConflictRemoteUpdatedLocalUpdated, diff.ConflictRemoteAddedLocalAdded,
		diff.ConflictRemoteDeletedLocalUpdated, diff.ConflictRemoteUpdatedLocalDeleted,
	} {
		for _, p := range paths {
			all[p]++
		}
	}
	for path, count := range all {
		require.Equal(t, 1, count, "path %s classified %d times", path, count)
	}
}

func TestDownloadList_IncludesConflicts(t *testing.T) {
	diff := &ProjectDiff{
		RemoteAdded:                       []string{"b"},
		RemoteUpdated:                     []string{"a"},
		ConflictRemoteUpdatedLocalUpdated: []string{"c"},
		ConflictRemoteAddedLocalAdded:     []string{"d"},
		ConflictRemoteUpdatedLocalDeleted: []string{"e"},
		ConflictRemoteDeletedLocalUpdated: []string{"kept-local"},
	}

	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, diff.DownloadList())
	assert.Equal(t, []string{"c", "d"}, diff.ConflictList())
}

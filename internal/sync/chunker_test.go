package sync

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/merginmaps/mergin-go/internal/mergin"
)

func TestPlanChunks(t *testing.T) {
	tests := []struct {
		name string
		size int64
		want int
	}{
		{"zero", 0, 0},
		{"one byte", 1, 1},
		{"just under", mergin.UploadChunkSize - 1, 1},
		{"exact", mergin.UploadChunkSize, 1},
		{"one over", mergin.UploadChunkSize + 1, 2},
		{"several", 3*mergin.UploadChunkSize + 512, 4},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			chunks := PlanChunks(tc.size)
			assert.Len(t, chunks, tc.want)

			seen := map[string]bool{}
			for _, id := range chunks {
				_, err := uuid.Parse(id)
				require.NoError(t, err, "chunk id must be a canonical UUID")
				assert.False(t, seen[id], "chunk ids must be unique")
				seen[id] = true
			}
		})
	}
}

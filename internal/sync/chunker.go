package sync

import (
	"github.com/google/uuid"

	"github.com/merginmaps/mergin-go/internal/mergin"
)

// PlanChunks generates one fresh chunk id per UploadChunkSize slice of a
// file. A zero-size file needs no chunks; the coordinator creates it
// directly.
func PlanChunks(sizeBytes int64) []string {
	if sizeBytes <= 0 {
		return nil
	}

	count := int((sizeBytes + mergin.UploadChunkSize - 1) / mergin.UploadChunkSize)
	ids := make([]string, count)
	for i := range ids {
		ids[i] = uuid.NewString()
	}
	return ids
}

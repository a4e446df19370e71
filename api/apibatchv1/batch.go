package apibatchv1

import (
	"github.com/fulldump/stagedb/batch"
)

type BatchResponse struct {
	Name       string `json:"name"`
	Total      int    `json:"total"`
	Operations int64  `json:"operations"`
}

func newBatchResponse(name string, b *batch.Batch) *BatchResponse {
	return &BatchResponse{
		Name:       name,
		Total:      b.Len(),
		Operations: b.OperationCount(),
	}
}

package apibatchv1

import (
	"context"
	"net/http"

	"github.com/fulldump/stagedb/batch"
)

func logs(ctx context.Context, w http.ResponseWriter) ([]batch.LogEntry, error) {

	b, err := currentBatch(ctx)
	if err != nil {
		return nil, err
	}

	return b.Logs(), nil
}

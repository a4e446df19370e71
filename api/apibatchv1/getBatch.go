package apibatchv1

import (
	"context"

	"github.com/fulldump/box"
)

func getBatch(ctx context.Context) (*BatchResponse, error) {

	b, err := currentBatch(ctx)
	if err != nil {
		return nil, err
	}

	return newBatchResponse(box.GetUrlParameter(ctx, "batchName"), b), nil
}

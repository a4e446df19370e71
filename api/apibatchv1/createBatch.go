package apibatchv1

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fulldump/stagedb/staging"
)

type createBatchRequest struct {
	Name    string           `json:"name"`
	Records []staging.Record `json:"records"`
}

func createBatch(ctx context.Context, w http.ResponseWriter, input *createBatchRequest) (*BatchResponse, error) {

	if input.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	s := GetServicer(ctx)

	b, err := s.CreateBatch(input.Name, input.Records)
	if err != nil {
		return nil, err
	}

	w.WriteHeader(http.StatusCreated)
	return newBatchResponse(input.Name, b), nil
}

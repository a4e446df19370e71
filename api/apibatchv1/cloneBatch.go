package apibatchv1

import (
	"context"
	"net/http"

	"github.com/fulldump/box"
	"github.com/google/uuid"
)

type cloneBatchRequest struct {
	Name string `json:"name"`
}

func cloneBatch(ctx context.Context, w http.ResponseWriter, r *http.Request) (*BatchResponse, error) {

	input := cloneBatchRequest{}
	err := readInput(r, &input)
	if err != nil {
		return nil, err
	}

	batchName := box.GetUrlParameter(ctx, "batchName")
	if input.Name == "" {
		input.Name = batchName + "-" + uuid.NewString()
	}

	s := GetServicer(ctx)
	cloned, err := s.CloneBatch(batchName, input.Name)
	if err != nil {
		return nil, err
	}

	w.WriteHeader(http.StatusCreated)
	return newBatchResponse(input.Name, cloned), nil
}

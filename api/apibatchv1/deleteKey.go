package apibatchv1

import (
	"context"
	"fmt"
	"net/http"
)

type deleteRequest struct {
	target
	Key string `json:"key"`
}

func deleteKey(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

	input := deleteRequest{}
	err := readInput(r, &input)
	if err != nil {
		return err
	}
	if input.Key == "" {
		return fmt.Errorf("%w: key is required", ErrInvalidInput)
	}

	b, err := currentBatch(ctx)
	if err != nil {
		return err
	}

	return b.Delete(input.Key, input.Id)
}

package apibatchv1

import (
	"context"
	"fmt"
	"net/http"
)

type updateRequest struct {
	target
	Key   string `json:"key"`
	Value any    `json:"value"`
}

func update(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

	input := updateRequest{}
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

	return b.Update(input.Key, input.Value, input.Id)
}

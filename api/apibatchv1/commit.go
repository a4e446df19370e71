package apibatchv1

import (
	"context"
	"net/http"
)

func commit(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

	input := target{}
	err := readInput(r, &input)
	if err != nil {
		return err
	}

	b, err := currentBatch(ctx)
	if err != nil {
		return err
	}

	b.Commit(input.Id)

	return nil
}

package apibatchv1

import (
	"context"
	"net/http"
)

// stop cancels the deadline of the targeted members and revokes them.
func stop(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

	input := target{}
	err := readInput(r, &input)
	if err != nil {
		return err
	}

	b, err := currentBatch(ctx)
	if err != nil {
		return err
	}

	b.Stop(input.Id)

	return nil
}

package apibatchv1

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

type timeoutRequest struct {
	target
	Milliseconds int64 `json:"milliseconds"`
	Commit       bool  `json:"commit"`
}

func timeout(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

	input := timeoutRequest{}
	err := readInput(r, &input)
	if err != nil {
		return err
	}
	if input.Milliseconds < 0 {
		return fmt.Errorf("%w: milliseconds must be positive", ErrInvalidInput)
	}

	b, err := currentBatch(ctx)
	if err != nil {
		return err
	}

	b.Timeout(time.Duration(input.Milliseconds)*time.Millisecond, input.Commit, nil, input.Id)

	return nil
}

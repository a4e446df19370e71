package apibatchv1

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/fulldump/box"

	"github.com/fulldump/stagedb/batch"
)

var ErrInvalidInput = errors.New("invalid input")
var ErrMemberNotFound = errors.New("member not found")

// readInput decodes the request body into v. An empty body leaves v untouched.
func readInput(r *http.Request, v any) error {
	requestBody, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	if len(requestBody) == 0 {
		return nil
	}
	return json.Unmarshal(requestBody, v)
}

func currentBatch(ctx context.Context) (*batch.Batch, error) {
	s := GetServicer(ctx)
	batchName := box.GetUrlParameter(ctx, "batchName")
	return s.GetBatch(batchName)
}

// target is embedded by every action that can be scoped to one member.
// A zero id means every member of the batch.
type target struct {
	Id int `json:"id"`
}

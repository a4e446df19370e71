package apibatchv1

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/fulldump/stagedb/staging"
)

type findRequest struct {
	Field  string         `json:"field"`
	Value  any            `json:"value"`
	Filter map[string]any `json:"filter"`
}

// find looks up visible records either by field equality or with a
// mongo-like filter.
func find(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

	input := findRequest{}
	err := readInput(r, &input)
	if err != nil {
		return err
	}

	b, err := currentBatch(ctx)
	if err != nil {
		return err
	}

	var records []staging.Record
	if input.Field != "" {
		if input.Filter != nil {
			return fmt.Errorf("%w: use either field or filter", ErrInvalidInput)
		}
		records, err = b.Find(input.Field, input.Value)
		if err != nil {
			return err
		}
	} else {
		members, err := b.Match(input.Filter)
		if err != nil {
			return err
		}
		for _, member := range members {
			snapshot, err := member.View.Snapshot()
			if err != nil {
				return err
			}
			records = append(records, snapshot)
		}
	}

	e := json.NewEncoder(w)
	for _, record := range records {
		err := e.Encode(record)
		if err != nil {
			return err
		}
	}

	return nil
}

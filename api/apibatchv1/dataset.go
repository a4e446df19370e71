package apibatchv1

import (
	"context"
	"encoding/json"
	"net/http"
)

// dataset streams the visible state of every member, one JSON object per line.
func dataset(ctx context.Context, w http.ResponseWriter) error {

	b, err := currentBatch(ctx)
	if err != nil {
		return err
	}

	records, err := b.Dataset()
	if err != nil {
		return err
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

package apibatchv1

import (
	"context"
	"net/http"
	"sort"
)

func listBatches(ctx context.Context, w http.ResponseWriter) ([]*BatchResponse, error) {

	s := GetServicer(ctx)

	response := []*BatchResponse{}
	for name, b := range s.ListBatches() {
		response = append(response, newBatchResponse(name, b))
	}
	sort.Slice(response, func(i, j int) bool {
		return response[i].Name < response[j].Name
	})

	return response, nil
}

package apibatchv1

import (
	"context"
	"net/http"

	"github.com/fulldump/box"
)

func dropBatch(ctx context.Context, w http.ResponseWriter) error {

	s := GetServicer(ctx)
	batchName := box.GetUrlParameter(ctx, "batchName")

	return s.DeleteBatch(batchName)
}

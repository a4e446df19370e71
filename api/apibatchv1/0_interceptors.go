package apibatchv1

import (
	"context"

	"github.com/fulldump/stagedb/service"
)

const ContextServicerKey = "5b1c8e2a-7d42-11ef-8c61-3f0a9e4b21d7"

func SetServicer(ctx context.Context, s service.Servicer) context.Context {
	return context.WithValue(ctx, ContextServicerKey, s)
}

func GetServicer(ctx context.Context) service.Servicer {
	return ctx.Value(ContextServicerKey).(service.Servicer) // TODO: can raise panic :D
}

package service

import (
	"github.com/fulldump/stagedb/batch"
	"github.com/fulldump/stagedb/database"
	"github.com/fulldump/stagedb/staging"
)

var ErrorBatchNotFound = database.ErrBatchNotFound
var ErrorBatchAlreadyExists = database.ErrBatchAlreadyExists

type Servicer interface { // todo: review naming
	CreateBatch(name string, records []staging.Record) (*batch.Batch, error)
	CloneBatch(src, dst string) (*batch.Batch, error)
	GetBatch(name string) (*batch.Batch, error)
	ListBatches() map[string]*batch.Batch
	DeleteBatch(name string) error
}

package service

import (
	"github.com/fulldump/stagedb/batch"
	"github.com/fulldump/stagedb/database"
	"github.com/fulldump/stagedb/staging"
)

type Service struct {
	db *database.Database
}

func NewService(db *database.Database) *Service {
	return &Service{
		db: db,
	}
}

func (s *Service) CreateBatch(name string, records []staging.Record) (*batch.Batch, error) {
	return s.db.CreateBatch(name, records)
}

func (s *Service) CloneBatch(src, dst string) (*batch.Batch, error) {
	return s.db.CloneBatch(src, dst)
}

func (s *Service) GetBatch(name string) (*batch.Batch, error) {
	return s.db.GetBatch(name)
}

func (s *Service) ListBatches() map[string]*batch.Batch {
	return s.db.ListBatches()
}

func (s *Service) DeleteBatch(name string) error {
	return s.db.DropBatch(name)
}

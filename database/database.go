package database

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"github.com/fulldump/stagedb/batch"
	"github.com/fulldump/stagedb/staging"
)

const (
	StatusOpening   = "opening"
	StatusOperating = "operating"
	StatusClosing   = "closing"
)

var ErrBatchAlreadyExists = errors.New("batch already exists")
var ErrBatchNotFound = errors.New("batch not found")

type Config struct {
	// AuditLog is the path of a JSON lines file where every batch appends its
	// audit entries. Empty means in-memory only.
	AuditLog string
}

type Database struct {
	config  *Config
	status  string
	Batches map[string]*batch.Batch
	journal io.WriteCloser
	mutex   *sync.RWMutex
	exit    chan struct{}
}

func NewDatabase(config *Config) *Database { // todo: return error?
	s := &Database{
		config:  config,
		status:  StatusOpening,
		Batches: map[string]*batch.Batch{},
		mutex:   &sync.RWMutex{},
		exit:    make(chan struct{}),
	}

	return s
}

func (db *Database) GetStatus() string {
	db.mutex.RLock()
	defer db.mutex.RUnlock()
	return db.status
}

func (db *Database) options() []batch.Option {
	if db.journal == nil {
		return nil
	}
	return []batch.Option{batch.WithJournal(db.journal)}
}

func (db *Database) CreateBatch(name string, records []staging.Record) (*batch.Batch, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	_, exists := db.Batches[name]
	if exists {
		return nil, ErrBatchAlreadyExists
	}

	b := batch.From(records, db.options()...)
	db.Batches[name] = b

	return b, nil
}

// CloneBatch registers under dst a copy of the visible state of src.
func (db *Database) CloneBatch(src, dst string) (*batch.Batch, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	original, exists := db.Batches[src]
	if !exists {
		return nil, ErrBatchNotFound
	}
	if _, exists := db.Batches[dst]; exists {
		return nil, ErrBatchAlreadyExists
	}

	cloned, err := original.Clone(db.options()...)
	if err != nil {
		return nil, fmt.Errorf("clone '%s': %w", src, err)
	}
	db.Batches[dst] = cloned

	return cloned, nil
}

func (db *Database) GetBatch(name string) (*batch.Batch, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	b, exists := db.Batches[name]
	if !exists {
		return nil, ErrBatchNotFound
	}

	return b, nil
}

func (db *Database) ListBatches() map[string]*batch.Batch {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	result := make(map[string]*batch.Batch, len(db.Batches))
	for name, b := range db.Batches {
		result[name] = b
	}
	return result
}

// DropBatch stops every transaction of the batch and forgets it.
func (db *Database) DropBatch(name string) error {
	db.mutex.Lock()
	b, exists := db.Batches[name]
	delete(db.Batches, name)
	db.mutex.Unlock()

	if !exists {
		return ErrBatchNotFound
	}

	b.Stop(batch.All)

	return nil
}

func (db *Database) Load() error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	if db.config.AuditLog != "" {
		log.Printf("Opening audit log %s...\n", db.config.AuditLog)
		f, err := os.OpenFile(db.config.AuditLog, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0666)
		if err != nil {
			db.status = StatusClosing
			return fmt.Errorf("open audit log: %w", err)
		}
		db.journal = f
	}

	db.status = StatusOperating

	return nil
}

func (db *Database) Start() error {

	err := db.Load()
	if err != nil {
		return err
	}

	<-db.exit

	return nil
}

func (db *Database) Stop() error {

	defer close(db.exit)

	db.mutex.Lock()
	db.status = StatusClosing
	batches := db.Batches
	db.Batches = map[string]*batch.Batch{}
	db.mutex.Unlock()

	for name, b := range batches {
		log.Printf("Stopping '%s'...\n", name)
		b.Stop(batch.All)
	}

	if db.journal == nil {
		return nil
	}

	err := db.journal.Close()
	if err != nil {
		log.Printf("ERROR: close audit log: %s\n", err.Error())
	}
	return err
}

package batch

import (
	"log"
	"time"

	json2 "github.com/go-json-experiment/json"
	"github.com/google/uuid"

	"github.com/fulldump/stagedb/staging"
)

type LogEntry struct {
	TransactionID int       `json:"transactionId"`
	OperationID   int64     `json:"operationId"`
	Operation     string    `json:"operation"`
	Time          time.Time `json:"time"`
	Uuid          string    `json:"uuid"`
}

func (b *Batch) initLogEvents() {
	for _, member := range b.members {
		id := member.Id
		for _, e := range staging.Events() {
			member.Transaction.On(e, func(e staging.Event) {
				b.saveLog(id, e)
			})
		}
	}
}

func (b *Batch) saveLog(transactionID int, e staging.Event) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.operationCount++
	entry := &LogEntry{
		TransactionID: transactionID,
		OperationID:   b.operationCount,
		Operation:     e.String(),
		Time:          b.now().UTC(),
		Uuid:          uuid.New().String(),
	}
	b.logs = append(b.logs, entry)

	if b.journal == nil {
		return
	}

	line, err := json2.Marshal(entry)
	if err != nil {
		log.Printf("ERROR: encode log entry %d: %s\n", entry.OperationID, err.Error())
		return
	}
	_, err = b.journal.Write(append(line, '\n'))
	if err != nil {
		log.Printf("ERROR: write log entry %d: %s\n", entry.OperationID, err.Error())
	}
}

// Logs returns a copy of the audit log in the order entries were appended.
func (b *Batch) Logs() []LogEntry {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	result := make([]LogEntry, len(b.logs))
	for i, entry := range b.logs {
		result[i] = *entry
	}
	return result
}

func (b *Batch) OperationCount() int64 {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.operationCount
}

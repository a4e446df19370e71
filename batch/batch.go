package batch

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/SierraSoftworks/connor"
	"github.com/google/btree"

	"github.com/fulldump/stagedb/staging"
)

// All targets every member of a batch. Member ids start at 1.
const All = 0

type Member struct {
	Id          int
	Transaction *staging.Transaction
	View        *staging.View
}

// Less is required by the btree index.
func (m *Member) Less(than *Member) bool {
	return m.Id < than.Id
}

type Batch struct {
	members []*Member
	index   *btree.BTreeG[*Member]

	logs           []*LogEntry
	operationCount int64
	journal        io.Writer
	now            func() time.Time

	// listeners added through Batch.On, the audit ones are not here
	subscriptions map[int]map[staging.Event][]staging.ListenerID

	mutex *sync.Mutex
}

type Option func(b *Batch)

// WithJournal writes every audit entry to w as a JSON line.
func WithJournal(w io.Writer) Option {
	return func(b *Batch) {
		b.journal = w
	}
}

func WithClock(now func() time.Time) Option {
	return func(b *Batch) {
		b.now = now
	}
}

// From starts one transaction per record, with ids 1..N in input order, and
// subscribes the audit log to all of them.
func From(records []staging.Record, options ...Option) *Batch {

	b := &Batch{
		members:       make([]*Member, 0, len(records)),
		index:         btree.NewG(32, func(x, y *Member) bool { return x.Less(y) }),
		logs:          []*LogEntry{},
		now:           time.Now,
		subscriptions: map[int]map[staging.Event][]staging.ListenerID{},
		mutex:         &sync.Mutex{},
	}

	for _, option := range options {
		option(b)
	}

	for i, record := range records {
		id := i + 1
		transaction, view := staging.Start(record, id)
		member := &Member{
			Id:          id,
			Transaction: transaction,
			View:        view,
		}
		b.members = append(b.members, member)
		b.index.ReplaceOrInsert(member)
	}

	b.initLogEvents()

	return b
}

func (b *Batch) Len() int {
	return len(b.members)
}

func (b *Batch) Members() []*Member {
	return append([]*Member(nil), b.members...)
}

// Dataset returns the visible state of every member, in member order.
func (b *Batch) Dataset() ([]staging.Record, error) {
	result := make([]staging.Record, 0, len(b.members))
	for _, member := range b.members {
		snapshot, err := member.View.Snapshot()
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", member.Id, err)
		}
		result = append(result, snapshot)
	}
	return result, nil
}

func (b *Batch) FindByID(id int) (*Member, bool) {
	return b.index.Get(&Member{Id: id})
}

// Find returns the visible records whose field equals value.
func (b *Batch) Find(field string, value any) ([]staging.Record, error) {

	dataset, err := b.Dataset()
	if err != nil {
		return nil, err
	}

	result := []staging.Record{}
	for _, record := range dataset {
		v, exists := record[field]
		if !exists || !reflect.DeepEqual(v, value) {
			continue
		}
		result = append(result, record)
	}

	return result, nil
}

// Match returns the members whose visible state satisfies a mongo-like filter.
func (b *Batch) Match(filter map[string]any) ([]*Member, error) {

	result := []*Member{}
	for _, member := range b.members {
		snapshot, err := member.View.Snapshot()
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", member.Id, err)
		}

		if len(filter) > 0 {
			match, err := connor.Match(filter, map[string]interface{}(snapshot))
			if err != nil {
				return nil, fmt.Errorf("match: %w", err)
			}
			if !match {
				continue
			}
		}

		result = append(result, member)
	}

	return result, nil
}

// Clone starts a new batch over copies of the visible state of every member.
// Ids are assigned again from 1 and the audit log starts empty.
func (b *Batch) Clone(options ...Option) (*Batch, error) {
	dataset, err := b.Dataset()
	if err != nil {
		return nil, err
	}
	return From(dataset, options...), nil
}

func (b *Batch) CloneMember(id int) (*staging.Transaction, *staging.View, bool) {
	member, found := b.FindByID(id)
	if !found {
		return nil, nil, false
	}
	transaction, view := member.Transaction.Clone()
	return transaction, view, true
}

func (b *Batch) Commit(id int) {
	b.performTransAction(id, func(t *staging.Transaction) {
		t.Commit()
	})
}

func (b *Batch) Rollback(id int) {
	b.performTransAction(id, func(t *staging.Transaction) {
		t.Rollback()
	})
}

func (b *Batch) On(e staging.Event, l staging.Listener, id int) {
	b.performTransAction(id, func(t *staging.Transaction) {
		listenerID := t.On(e, l)
		if listenerID == 0 {
			return
		}

		b.mutex.Lock()
		defer b.mutex.Unlock()

		byEvent, exists := b.subscriptions[t.ID()]
		if !exists {
			byEvent = map[staging.Event][]staging.ListenerID{}
			b.subscriptions[t.ID()] = byEvent
		}
		byEvent[e] = append(byEvent[e], listenerID)
	})
}

// RemoveListener drops the listeners registered with On for event e. The
// audit log keeps listening.
func (b *Batch) RemoveListener(e staging.Event, id int) {
	b.performTransAction(id, func(t *staging.Transaction) {
		b.mutex.Lock()
		listenerIDs := b.subscriptions[t.ID()][e]
		delete(b.subscriptions[t.ID()], e)
		b.mutex.Unlock()

		for _, listenerID := range listenerIDs {
			t.RemoveListener(e, listenerID)
		}
	})
}

func (b *Batch) Update(key string, value any, id int) error {
	var errs []error
	b.performTransAction(id, func(t *staging.Transaction) {
		err := t.Update(key, value)
		if err != nil {
			errs = append(errs, fmt.Errorf("transaction %d: %w", t.ID(), err))
		}
	})
	return errors.Join(errs...)
}

func (b *Batch) Delete(key string, id int) error {
	var errs []error
	b.performTransAction(id, func(t *staging.Transaction) {
		_, err := t.Delete(key)
		if err != nil {
			errs = append(errs, fmt.Errorf("transaction %d: %w", t.ID(), err))
		}
	})
	return errors.Join(errs...)
}

func (b *Batch) Timeout(d time.Duration, commit bool, done func(staging.Event), id int) {
	b.performTransAction(id, func(t *staging.Transaction) {
		t.Timeout(d, commit, done)
	})
}

func (b *Batch) Stop(id int) {
	b.performTransAction(id, func(t *staging.Transaction) {
		t.Stop()
	})
}

func (b *Batch) RemoveTimer(id int) {
	b.performTransAction(id, func(t *staging.Transaction) {
		t.RemoveTimer()
	})
}

// String encodes one member record, or all of them separated by commas.
func (b *Batch) String(id int) string {
	if id != All {
		member, found := b.FindByID(id)
		if !found {
			return ""
		}
		return member.Transaction.String()
	}

	transactions := make([]string, len(b.members))
	for i, member := range b.members {
		transactions[i] = member.Transaction.String()
	}
	return strings.Join(transactions, ",")
}

func (b *Batch) performTransAction(id int, operation func(t *staging.Transaction)) {
	if id == All {
		for _, member := range b.members {
			operation(member.Transaction)
		}
		return
	}

	member, found := b.FindByID(id)
	if found {
		operation(member.Transaction)
	}
}

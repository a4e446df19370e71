package staging

import (
	"sync"
	"testing"
	"time"

	. "github.com/fulldump/biff"
)

func getData() Record {
	return Record{
		"name":  "John Doe",
		"age":   30,
		"email": "johndoe@example.com",
	}
}

type recorder struct {
	mutex  sync.Mutex
	events []Event
}

func (r *recorder) listen(t *Transaction) {
	for _, e := range Events() {
		t.On(e, func(e Event) {
			r.mutex.Lock()
			r.events = append(r.events, e)
			r.mutex.Unlock()
		})
	}
}

func (r *recorder) names() []string {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	names := []string{}
	for _, e := range r.events {
		names = append(names, e.String())
	}
	return names
}

func (r *recorder) count(e Event) int {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	n := 0
	for _, item := range r.events {
		if item == e {
			n++
		}
	}
	return n
}

func TestStart(t *testing.T) {
	data := getData()
	transaction, view := Start(data, 7)

	AssertEqual(transaction.ID(), 7)
	AssertEqual(transaction.View(), view)
	AssertEqual(view.Transaction(), transaction)
	AssertEqual(transaction.Delta(), Record{})
	AssertEqual(transaction.Tombstones(), []string{})
	AssertEqual(transaction.State(), StateIdle)
	AssertFalse(transaction.Revoked())
}

func TestCommit(t *testing.T) {
	data := getData()
	transaction, view := Start(data, 1)

	view.Set("name", "Jane Doe")
	view.Set("age", 25)

	r := &recorder{}
	r.listen(transaction)

	transaction.Commit()

	AssertEqual(r.names(), []string{"commit"})
	name, _, _ := view.Get("name")
	AssertEqual(name, "Jane Doe")
	AssertEqual(data["age"], 25)
	AssertEqual(transaction.Data(), Record{"name": "Jane Doe", "age": 25, "email": "johndoe@example.com"})
	AssertEqual(transaction.Delta(), Record{})
	AssertEqual(transaction.Tombstones(), []string{})

	// session is still usable
	AssertNil(view.Set("age", 26))
	AssertEqual(transaction.Delta(), Record{"age": 26})
}

func TestCommit_AppliesTombstones(t *testing.T) {
	transaction, view := Start(Record{"a": 1, "b": 2}, 1)

	view.Delete("b")
	view.Set("c", 3)
	transaction.Commit()

	AssertEqual(transaction.Data(), Record{"a": 1, "c": 3})
}

func TestRollback(t *testing.T) {
	data := getData()
	transaction, view := Start(data, 1)

	view.Set("name", "Jane Doe")
	view.Set("age", 25)
	view.Delete("email")

	snapshot, _ := view.Snapshot()
	AssertEqual(snapshot, Record{"name": "Jane Doe", "age": 25})

	r := &recorder{}
	r.listen(transaction)

	transaction.Rollback()

	AssertEqual(r.names(), []string{"rollback"})
	snapshot, _ = view.Snapshot()
	AssertEqual(snapshot, getData())
	AssertEqual(transaction.Data(), getData())
	AssertEqual(transaction.Delta(), Record{})
	AssertEqual(transaction.Tombstones(), []string{})
}

func TestRollback_Twice(t *testing.T) {
	transaction, view := Start(Record{"a": 1}, 1)
	view.Set("a", 2)

	r := &recorder{}
	r.listen(transaction)

	transaction.Rollback()
	transaction.Rollback()

	AssertEqual(r.names(), []string{"rollback", "rollback"})
	snapshot, _ := view.Snapshot()
	AssertEqual(snapshot, Record{"a": 1})
}

func TestScenario_WriteCommit(t *testing.T) {
	transaction, view := Start(Record{"name": "A", "age": 1}, 1)

	view.Set("age", 2)

	snapshot, _ := view.Snapshot()
	AssertEqual(snapshot, Record{"name": "A", "age": 2})
	AssertEqual(transaction.Delta(), Record{"age": 2})

	transaction.Commit()

	AssertEqual(transaction.Data(), Record{"name": "A", "age": 2})
	AssertEqual(transaction.Delta(), Record{})
}

func TestScenario_DeleteRollback(t *testing.T) {
	transaction, view := Start(Record{"a": 1, "b": 2}, 1)

	view.Delete("b")

	snapshot, _ := view.Snapshot()
	AssertEqual(snapshot, Record{"a": 1})
	AssertEqual(transaction.Tombstones(), []string{"b"})

	transaction.Rollback()

	snapshot, _ = view.Snapshot()
	AssertEqual(snapshot, Record{"a": 1, "b": 2})
	AssertEqual(transaction.Tombstones(), []string{})
}

func TestRevoke(t *testing.T) {
	transaction, view := Start(getData(), 1)

	r := &recorder{}
	r.listen(transaction)

	transaction.Revoke()

	_, _, err := view.Get("name")
	AssertEqual(err, ErrRevoked)
	AssertEqual(view.Set("name", "x"), ErrRevoked)
	_, err = view.Delete("name")
	AssertEqual(err, ErrRevoked)
	_, err = view.Keys()
	AssertEqual(err, ErrRevoked)
	AssertEqual(r.names(), []string{"revoke"})
	AssertTrue(transaction.Revoked())
}

func TestStop(t *testing.T) {
	transaction, view := Start(getData(), 1)

	transaction.Timeout(time.Second, false, nil)
	AssertTrue(transaction.Running())

	transaction.Stop()

	AssertFalse(transaction.Running())
	AssertEqual(transaction.State(), StateIdle)
	_, _, err := view.Get("name")
	AssertEqual(err, ErrRevoked)
}

func TestClone(t *testing.T) {
	data := getData()
	transaction, view := Start(data, 3)

	view.Set("languages", []any{"JS"})

	cloned, clonedView := transaction.Clone()

	AssertEqual(transaction.Data(), getData())
	AssertEqual(cloned.Data(), getData())
	AssertEqual(cloned.Delta(), transaction.Delta())
	AssertEqual(cloned.ID(), 0)

	original, _ := view.Snapshot()
	copied, _ := clonedView.Snapshot()
	AssertEqual(copied, original)

	// independence, both ways
	clonedView.Set("name", "Clone")
	cloned.Commit()
	name, _, _ := view.Get("name")
	AssertEqual(name, "John Doe")
	AssertEqual(data["name"], "John Doe")

	view.Set("age", 99)
	age, _, _ := clonedView.Get("age")
	AssertEqual(age, 30)
}

func TestClone_DoesNotCopyTombstones(t *testing.T) {
	transaction, view := Start(Record{"a": 1, "b": 2}, 1)
	view.Delete("b")

	cloned, clonedView := transaction.Clone()

	AssertEqual(cloned.Tombstones(), []string{})
	b, exists, _ := clonedView.Get("b")
	AssertTrue(exists)
	AssertEqual(b, 2)
}

func TestString(t *testing.T) {
	transaction, view := Start(Record{"b": 2, "a": "x"}, 1)

	view.Set("c", true)

	AssertEqual(transaction.String(), `{"a":"x","b":2}`)

	transaction.Commit()
	AssertEqual(transaction.String(), `{"a":"x","b":2,"c":true}`)
}

func TestOn_UnknownEventIgnored(t *testing.T) {
	transaction, _ := Start(Record{}, 1)

	called := false
	id := transaction.On(Event(99), func(Event) { called = true })
	transaction.emit(Event(99))

	AssertEqual(id, ListenerID(0))
	AssertFalse(called)
}

func TestRemoveListener(t *testing.T) {
	transaction, view := Start(Record{}, 1)

	calls := 0
	id := transaction.On(EventSet, func(Event) { calls++ })

	view.Set("a", 1)
	AssertTrue(transaction.RemoveListener(EventSet, id))
	AssertFalse(transaction.RemoveListener(EventSet, id))
	view.Set("a", 2)

	AssertEqual(calls, 1)
}

func TestRemoveListeners(t *testing.T) {
	transaction, view := Start(Record{}, 1)

	calls := 0
	transaction.On(EventGet, func(Event) { calls++ })
	transaction.On(EventGet, func(Event) { calls++ })
	transaction.RemoveListeners(EventGet)

	view.Get("a")

	AssertEqual(calls, 0)
}

func TestListener_Reentrant(t *testing.T) {
	transaction, view := Start(Record{"a": 1}, 1)

	var seen any
	transaction.On(EventSet, func(Event) {
		seen, _, _ = view.Get("a")
	})

	view.Set("a", 2)

	AssertEqual(seen, 2)
}

func TestParseEvent(t *testing.T) {
	for _, e := range Events() {
		parsed, ok := ParseEvent(e.String())
		AssertTrue(ok)
		AssertEqual(parsed, e)
	}

	_, ok := ParseEvent("explode")
	AssertFalse(ok)
	AssertEqual(Event(0).String(), "unknown")
}

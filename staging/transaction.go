package staging

import (
	"errors"
	"sort"
	"sync"
	"time"
)

var ErrRevoked = errors.New("transaction revoked")

// State tells whether writes are notified at once (idle) or held back until
// a deadline commits them (armed).
type State string

const (
	StateIdle  State = "idle"
	StateArmed State = "armed"
)

type deadline struct {
	duration time.Duration
	commit   bool
	done     func(Event)
}

// Transaction buffers writes and deletes over a record until they are
// committed or rolled back. All access from callers goes through its View.
type Transaction struct {
	id      int
	data    Record
	delta   Record
	deleted map[string]struct{}
	revoked bool

	state      State
	deadline   deadline
	timer      *time.Timer
	generation uint64
	pending    []Event

	listeners      map[Event][]listener
	nextListenerID ListenerID

	view  *View
	mutex *sync.Mutex
}

// Start takes ownership of record; the caller must not touch it afterwards.
func Start(record Record, id int) (*Transaction, *View) {
	if record == nil {
		record = Record{}
	}

	t := &Transaction{
		id:        id,
		data:      record,
		delta:     Record{},
		deleted:   map[string]struct{}{},
		state:     StateIdle,
		listeners: map[Event][]listener{},
		mutex:     &sync.Mutex{},
	}
	t.view = &View{t: t}

	return t, t.view
}

func (t *Transaction) ID() int {
	return t.id
}

func (t *Transaction) View() *View {
	return t.view
}

// Data returns a copy of the underlying record, staged changes excluded.
func (t *Transaction) Data() Record {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.data.Clone()
}

func (t *Transaction) Delta() Record {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.delta.Clone()
}

// Tombstones returns the fields pending deletion, sorted.
func (t *Transaction) Tombstones() []string {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	result := make([]string, 0, len(t.deleted))
	for k := range t.deleted {
		result = append(result, k)
	}
	sort.Strings(result)
	return result
}

func (t *Transaction) State() State {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.state
}

func (t *Transaction) Armed() bool {
	return t.State() == StateArmed
}

// Running reports whether a deadline countdown is in progress.
func (t *Transaction) Running() bool {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.timer != nil
}

func (t *Transaction) Revoked() bool {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.revoked
}

func (t *Transaction) Update(key string, value any) error {
	return t.view.Set(key, value)
}

func (t *Transaction) Delete(key string) (bool, error) {
	return t.view.Delete(key)
}

func (t *Transaction) Commit() {
	t.mutex.Lock()
	events := t.commit()
	t.mutex.Unlock()

	t.emit(events...)
}

// commit applies tombstones and then the delta. Notifications held back by
// an armed deadline are dropped, only the deadline itself releases them.
func (t *Transaction) commit() []Event {
	t.stopTimer()

	for key := range t.deleted {
		delete(t.data, key)
	}
	for key, value := range t.delta {
		t.data[key] = value
	}
	t.delta = Record{}
	t.deleted = map[string]struct{}{}

	t.pending = nil

	return []Event{EventCommit}
}

func (t *Transaction) Rollback() {
	t.mutex.Lock()
	events := t.rollback()
	t.mutex.Unlock()

	t.emit(events...)
}

func (t *Transaction) rollback() []Event {
	t.stopTimer()

	t.delta = Record{}
	t.deleted = map[string]struct{}{}
	t.pending = nil

	return []Event{EventRollback}
}

// Timeout arms a deadline: after d without writes the transaction commits
// (commit=true) or rolls back, calls done with the resolution and emits
// EventTimeout. Every write or delete while armed restarts the countdown.
// A negative duration is ignored.
func (t *Transaction) Timeout(d time.Duration, commit bool, done func(Event)) {
	if d < 0 {
		return
	}

	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.state = StateArmed
	t.deadline = deadline{
		duration: d,
		commit:   commit,
		done:     done,
	}
	t.startTimer()
}

// RemoveTimer cancels the countdown without resolving it and drops the
// notifications it was holding. Later writes are notified immediately again.
func (t *Transaction) RemoveTimer() {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.stopTimer()
	t.pending = nil
	t.state = StateIdle
	t.deadline = deadline{}
}

// Revoke disables the view forever. A running countdown is left untouched,
// use Stop to cancel it too.
func (t *Transaction) Revoke() {
	t.mutex.Lock()
	t.revoked = true
	t.mutex.Unlock()

	t.emit(EventRevoke)
}

// Stop cancels any countdown and revokes the transaction.
func (t *Transaction) Stop() {
	t.mutex.Lock()
	t.stopTimer()
	t.state = StateIdle
	t.deadline = deadline{}
	t.pending = nil
	t.mutex.Unlock()

	t.Revoke()
}

// Clone detaches the staged state into an independent transaction: a copy of
// the record with the delta on top. Tombstones are not carried over.
func (t *Transaction) Clone() (*Transaction, *View) {
	t.mutex.Lock()
	data := t.data.Clone()
	delta := t.delta.Clone()
	t.mutex.Unlock()

	cloned, view := Start(data, 0)
	cloned.delta = delta

	return cloned, view
}

// String encodes the underlying record, staged changes are not visible.
func (t *Transaction) String() string {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.data.String()
}

// On subscribes l to e. Unknown events are ignored and return 0.
func (t *Transaction) On(e Event, l Listener) ListenerID {
	if !e.Valid() || l == nil {
		return 0
	}

	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.nextListenerID++
	id := t.nextListenerID
	t.listeners[e] = append(t.listeners[e], listener{id: id, f: l})

	return id
}

func (t *Transaction) RemoveListener(e Event, id ListenerID) bool {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	listeners := t.listeners[e]
	for i, l := range listeners {
		if l.id != id {
			continue
		}
		t.listeners[e] = append(listeners[:i:i], listeners[i+1:]...)
		return true
	}

	return false
}

func (t *Transaction) RemoveListeners(e Event) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	delete(t.listeners, e)
}

func (t *Transaction) emit(events ...Event) {
	for _, e := range events {
		if !e.Valid() {
			continue
		}

		t.mutex.Lock()
		listeners := append([]listener(nil), t.listeners[e]...)
		t.mutex.Unlock()

		for _, l := range listeners {
			l.f(e)
		}
	}
}

// notify routes a write notification: immediate while idle, held back while
// armed until the deadline expires with a commit. Must be called with the mutex held.
func (t *Transaction) notify(e Event) []Event {
	if t.state != StateArmed {
		return []Event{e}
	}

	t.pending = append(t.pending, e)
	t.startTimer()

	return nil
}

func (t *Transaction) startTimer() {
	t.stopTimer()

	generation := t.generation
	t.timer = time.AfterFunc(t.deadline.duration, func() {
		t.expire(generation)
	})
}

func (t *Transaction) stopTimer() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.generation++
}

func (t *Transaction) expire(generation uint64) {
	t.mutex.Lock()
	if t.timer == nil || generation != t.generation {
		// replaced or cancelled after the timer already fired
		t.mutex.Unlock()
		return
	}
	t.timer = nil

	d := t.deadline
	var events, released []Event
	if d.commit {
		released = t.pending
		events = t.commit()
	} else {
		events = t.rollback()
	}
	t.mutex.Unlock()

	t.emit(events...)
	if d.done != nil {
		d.done(events[0])
	}
	t.emit(released...)
	t.emit(EventTimeout)
}

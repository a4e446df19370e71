package staging

import (
	"sync"
	"testing"
	"time"

	. "github.com/fulldump/biff"
)

const wait = 150 * time.Millisecond

func TestTimeout_Commit(t *testing.T) {
	transaction, view := Start(getData(), 1)

	resolved := make(chan Event, 1)
	transaction.Timeout(wait, true, func(e Event) {
		resolved <- e
	})

	view.Set("name", "Jane Doe")
	view.Delete("age")

	r := &recorder{}
	r.listen(transaction)

	time.Sleep(wait + 100*time.Millisecond)

	AssertEqual(<-resolved, EventCommit)
	AssertEqual(r.count(EventTimeout), 1)
	AssertEqual(r.count(EventCommit), 1)
	AssertEqual(r.count(EventRollback), 0)
	AssertEqual(transaction.Data(), Record{"name": "Jane Doe", "email": "johndoe@example.com"})
	AssertEqual(transaction.Delta(), Record{})
	AssertEqual(transaction.Tombstones(), []string{})

	transaction.Stop()
}

func TestTimeout_Rollback(t *testing.T) {
	transaction, view := Start(getData(), 1)

	resolved := make(chan Event, 1)
	transaction.Timeout(wait, false, func(e Event) {
		resolved <- e
	})

	view.Set("name", "Jane Doe")
	view.Delete("age")

	r := &recorder{}
	r.listen(transaction)

	time.Sleep(wait + 100*time.Millisecond)

	AssertEqual(<-resolved, EventRollback)
	AssertEqual(r.count(EventTimeout), 1)
	AssertEqual(r.count(EventCommit), 0)
	AssertEqual(r.count(EventRollback), 1)
	AssertEqual(r.count(EventSet), 0)
	AssertEqual(r.count(EventDelete), 0)
	AssertEqual(transaction.Data(), getData())

	transaction.Stop()
}

func TestTimeout_DeferredEvents(t *testing.T) {
	transaction, view := Start(getData(), 1)

	r := &recorder{}
	r.listen(transaction)

	done := make(chan struct{})
	transaction.Timeout(wait, true, func(Event) {
		close(done)
	})

	view.Set("name", "Jane Doe")
	view.Delete("email")

	// nothing is notified while the window is open
	AssertEqual(r.count(EventSet), 0)
	AssertEqual(r.count(EventDelete), 0)

	<-done
	time.Sleep(10 * time.Millisecond)

	AssertEqual(r.names(), []string{"commit", "set", "delete", "timeout"})
}

func TestTimeout_SlidingWindow(t *testing.T) {
	transaction, view := Start(getData(), 1)

	r := &recorder{}
	r.listen(transaction)

	transaction.Timeout(wait, true, nil)

	for i := 0; i < 3; i++ {
		time.Sleep(wait / 2)
		view.Set("age", 40+i)
	}

	// 225ms since the timeout was armed but only 75ms since the last write
	AssertEqual(r.count(EventTimeout), 0)

	time.Sleep(wait + 100*time.Millisecond)

	AssertEqual(r.count(EventTimeout), 1)
	AssertEqual(r.count(EventCommit), 1)
	AssertEqual(r.count(EventSet), 3)
	AssertEqual(transaction.Data()["age"], 42)
}

func TestTimeout_Negative(t *testing.T) {
	transaction, view := Start(getData(), 1)

	transaction.Timeout(-time.Second, true, nil)

	AssertEqual(transaction.State(), StateIdle)
	AssertFalse(transaction.Running())

	calls := 0
	transaction.On(EventSet, func(Event) { calls++ })
	view.Set("name", "x")
	AssertEqual(calls, 1)
}

func TestTimeout_RearmReplaces(t *testing.T) {
	transaction, _ := Start(getData(), 1)

	var mutex sync.Mutex
	resolutions := []Event{}
	record := func(e Event) {
		mutex.Lock()
		resolutions = append(resolutions, e)
		mutex.Unlock()
	}

	transaction.Timeout(wait, true, record)
	transaction.Timeout(wait, false, record)

	time.Sleep(wait + 100*time.Millisecond)

	mutex.Lock()
	defer mutex.Unlock()
	AssertEqual(resolutions, []Event{EventRollback})
}

func TestRemoveTimer(t *testing.T) {
	transaction, view := Start(getData(), 1)

	r := &recorder{}
	r.listen(transaction)

	transaction.Timeout(wait, true, nil)
	view.Set("name", "Jane Doe")
	transaction.RemoveTimer()

	AssertEqual(transaction.State(), StateIdle)
	AssertFalse(transaction.Running())

	view.Set("age", 1)
	time.Sleep(wait + 100*time.Millisecond)

	AssertEqual(r.count(EventTimeout), 0)
	AssertEqual(r.count(EventCommit), 0)
	// the write after RemoveTimer is notified immediately
	AssertEqual(r.count(EventSet), 1)

	// the held back one is gone for good
	transaction.Commit()
	AssertEqual(r.names(), []string{"set", "commit"})
}

func TestCommit_WhileArmedDropsHeldBackEvents(t *testing.T) {
	transaction, view := Start(getData(), 1)

	r := &recorder{}
	r.listen(transaction)

	transaction.Timeout(time.Hour, false, nil)
	view.Set("name", "Jane Doe")
	view.Delete("email")
	transaction.Commit()

	AssertEqual(r.names(), []string{"commit"})
	AssertEqual(transaction.Data(), Record{"name": "Jane Doe", "age": 30})
	AssertEqual(transaction.State(), StateArmed)

	transaction.Stop()
	AssertEqual(r.names(), []string{"commit", "revoke"})
}

func TestTimeout_DoneBeforeReleasedEvents(t *testing.T) {
	transaction, view := Start(getData(), 1)

	r := &recorder{}
	r.listen(transaction)

	seen := make(chan []string, 1)
	transaction.Timeout(wait, true, func(Event) {
		seen <- r.names()
	})

	view.Set("name", "Jane Doe")

	AssertEqual(<-seen, []string{"commit"})
	time.Sleep(10 * time.Millisecond)
	AssertEqual(r.names(), []string{"commit", "set", "timeout"})
}

func TestCommit_CancelsDeadline(t *testing.T) {
	transaction, view := Start(getData(), 1)

	r := &recorder{}
	r.listen(transaction)

	transaction.Timeout(wait, false, nil)
	view.Set("name", "Jane Doe")
	transaction.Commit()

	AssertFalse(transaction.Running())
	AssertTrue(transaction.Armed())

	time.Sleep(wait + 100*time.Millisecond)

	AssertEqual(r.count(EventTimeout), 0)
	AssertEqual(r.count(EventRollback), 0)
	AssertEqual(transaction.Data()["name"], "Jane Doe")
}

func TestTimeout_NewWindowAfterExpiry(t *testing.T) {
	transaction, view := Start(getData(), 1)

	r := &recorder{}
	r.listen(transaction)

	transaction.Timeout(wait/3, true, nil)
	time.Sleep(wait)
	AssertEqual(r.count(EventTimeout), 1)

	view.Set("name", "Later")
	AssertTrue(transaction.Running())

	time.Sleep(wait)
	AssertEqual(r.count(EventTimeout), 2)
	AssertEqual(transaction.Data()["name"], "Later")
}

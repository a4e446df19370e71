package staging

// Event is a lifecycle notification emitted by a Transaction.
type Event int

const (
	EventCommit Event = iota + 1
	EventRollback
	EventGet
	EventSet
	EventDelete
	EventTimeout
	EventRevoke
)

var eventNames = map[Event]string{
	EventCommit:   "commit",
	EventRollback: "rollback",
	EventGet:      "get",
	EventSet:      "set",
	EventDelete:   "delete",
	EventTimeout:  "timeout",
	EventRevoke:   "revoke",
}

// Events returns every event kind a Transaction can emit.
func Events() []Event {
	return []Event{
		EventCommit,
		EventRollback,
		EventGet,
		EventSet,
		EventDelete,
		EventTimeout,
		EventRevoke,
	}
}

func (e Event) String() string {
	name, ok := eventNames[e]
	if !ok {
		return "unknown"
	}
	return name
}

func (e Event) Valid() bool {
	_, ok := eventNames[e]
	return ok
}

// ParseEvent resolves an event by name, ok is false for unknown names.
func ParseEvent(name string) (Event, bool) {
	for e, n := range eventNames {
		if n == name {
			return e, true
		}
	}
	return 0, false
}

// Listener is called synchronously, after the transaction has released its
// lock, so it may call back into the same transaction.
type Listener func(e Event)

type ListenerID uint64

type listener struct {
	id ListenerID
	f  Listener
}

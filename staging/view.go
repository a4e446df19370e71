package staging

import (
	"github.com/fulldump/stagedb/utils"
)

// View is the accessor facade over a transaction: reads see the record with
// the delta applied and tombstoned fields hidden, writes only touch the delta.
type View struct {
	t *Transaction
}

func (v *View) Transaction() *Transaction {
	return v.t
}

// Get returns the visible value of key and emits EventGet.
func (v *View) Get(key string) (any, bool, error) {
	t := v.t

	t.mutex.Lock()
	if t.revoked {
		t.mutex.Unlock()
		return nil, false, ErrRevoked
	}
	value, exists := t.lookup(key)
	t.mutex.Unlock()

	t.emit(EventGet)

	return value, exists, nil
}

func (t *Transaction) lookup(key string) (any, bool) {
	if value, exists := t.delta[key]; exists {
		return value, true
	}
	if _, deleted := t.deleted[key]; deleted {
		return nil, false
	}
	value, exists := t.data[key]
	return value, exists
}

// Set stages value for key. Setting a field back to the value held by the
// record drops it from the delta.
func (v *View) Set(key string, value any) error {
	t := v.t

	t.mutex.Lock()
	if t.revoked {
		t.mutex.Unlock()
		return ErrRevoked
	}

	current, exists := t.data[key]
	if exists && sameValue(current, value) {
		delete(t.delta, key)
	} else {
		t.delta[key] = value
	}
	delete(t.deleted, key)

	events := t.notify(EventSet)
	t.mutex.Unlock()

	t.emit(events...)

	return nil
}

// Delete tombstones key. It returns false when key was already tombstoned,
// in which case nothing changes and no event is emitted.
func (v *View) Delete(key string) (bool, error) {
	t := v.t

	t.mutex.Lock()
	if t.revoked {
		t.mutex.Unlock()
		return false, ErrRevoked
	}
	if _, deleted := t.deleted[key]; deleted {
		t.mutex.Unlock()
		return false, nil
	}

	t.deleted[key] = struct{}{}
	delete(t.delta, key)

	events := t.notify(EventDelete)
	t.mutex.Unlock()

	t.emit(events...)

	return true, nil
}

func (v *View) Has(key string) (bool, error) {
	t := v.t

	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.revoked {
		return false, ErrRevoked
	}
	_, exists := t.lookup(key)

	return exists, nil
}

// Keys returns (record fields ∪ delta fields) minus tombstones, sorted.
func (v *View) Keys() ([]string, error) {
	t := v.t

	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.revoked {
		return nil, ErrRevoked
	}

	return utils.GetKeys(map[string]any(t.visible())), nil
}

// Snapshot returns a copy of the visible state.
func (v *View) Snapshot() (Record, error) {
	t := v.t

	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.revoked {
		return nil, ErrRevoked
	}

	return t.visible().Clone(), nil
}

func (t *Transaction) visible() Record {
	result := make(Record, len(t.data)+len(t.delta))
	for k, value := range t.data {
		if _, deleted := t.deleted[k]; deleted {
			continue
		}
		result[k] = value
	}
	for k, value := range t.delta {
		result[k] = value
	}
	return result
}

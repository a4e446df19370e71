package staging

import (
	"encoding/json"
	"reflect"

	json2 "github.com/go-json-experiment/json"
)

// Record is an opaque set of fields, values are never validated nor coerced.
type Record map[string]any

// Clone returns a deep copy of the record, maps and slices included.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	cloned := make(Record, len(r))
	for k, v := range r {
		cloned[k] = cloneValue(v)
	}
	return cloned
}

// String encodes the record as JSON with its keys sorted.
func (r Record) String() string {
	b, err := json2.Marshal(map[string]any(r), json2.Deterministic(true))
	if err != nil {
		return ""
	}
	return string(b)
}

func cloneValue(value any) any {
	switch v := value.(type) {
	case Record:
		return v.Clone()
	case map[string]any:
		cloned := make(map[string]any, len(v))
		for k, item := range v {
			cloned[k] = cloneValue(item)
		}
		return cloned
	case []any:
		if v == nil {
			return nil
		}
		cloned := make([]any, len(v))
		for i, item := range v {
			cloned[i] = cloneValue(item)
		}
		return cloned
	case json.RawMessage:
		if v == nil {
			return nil
		}
		cloned := make(json.RawMessage, len(v))
		copy(cloned, v)
		return cloned
	default:
		return v
	}
}

func sameValue(a, b any) bool {
	return reflect.DeepEqual(a, b)
}

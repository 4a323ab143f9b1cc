package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// MarshalSortedByKeys serializes a document with object keys in sorted
// order, indented for the history/version endpoints that sort by key.
func MarshalSortedByKeys(v any) ([]byte, error) {
	// encoding/json already emits map keys sorted.
	return json.MarshalIndent(v, "", "    ")
}

// MarshalSortedByValues serializes a string-keyed map ordered by its values
// rather than its keys. Some consumers sort release maps by the shipped
// date stored in the value, so key order cannot be used.
func MarshalSortedByValues(values map[string]string) ([]byte, error) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if values[keys[i]] != values[keys[j]] {
			return values[keys[i]] < values[keys[j]]
		}
		return keys[i] < keys[j]
	})

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteString(", ")
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, fmt.Errorf("marshal key %q: %w", k, err)
		}
		val, err := json.Marshal(values[k])
		if err != nil {
			return nil, fmt.Errorf("marshal value for %q: %w", k, err)
		}
		buf.Write(key)
		buf.WriteString(": ")
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

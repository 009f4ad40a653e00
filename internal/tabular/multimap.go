package tabular

import "fmt"

// Multimap groups the values of one column by the values of another, keeping
// keys in first-appearance order and values in source row order.
type Multimap struct {
	keys   []string
	groups map[string][]string
}

// GroupBy builds a multimap from rows: each row contributes its valuesColumn
// cell to the group named by its keyColumn cell. With overwrite set, a
// repeated key replaces the group instead of appending, so each group holds
// only the key's last value.
func GroupBy(rows Rows, keyColumn, valuesColumn string, overwrite bool) (Multimap, error) {
	mm := Multimap{groups: make(map[string][]string)}
	for i, row := range rows {
		key, ok := row.Get(keyColumn)
		if !ok {
			return Multimap{}, fmt.Errorf("%w: row %d has no column %q", ErrDataFormat, i+1, keyColumn)
		}
		value, ok := row.Get(valuesColumn)
		if !ok {
			return Multimap{}, fmt.Errorf("%w: row %d has no column %q", ErrDataFormat, i+1, valuesColumn)
		}

		group, seen := mm.groups[key]
		if !seen {
			mm.keys = append(mm.keys, key)
		}
		if overwrite {
			mm.groups[key] = []string{value}
			continue
		}
		mm.groups[key] = append(group, value)
	}
	return mm, nil
}

// Keys returns the group keys in first-appearance order.
func (m Multimap) Keys() []string {
	return m.keys
}

// Get returns the values grouped under key, or nil for an unknown key.
func (m Multimap) Get(key string) []string {
	return m.groups[key]
}

// Len returns the number of groups.
func (m Multimap) Len() int {
	return len(m.keys)
}

// Map returns the multimap as a plain map.
func (m Multimap) Map() map[string][]string {
	out := make(map[string][]string, len(m.groups))
	for k, v := range m.groups {
		out[k] = v
	}
	return out
}

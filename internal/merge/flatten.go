package merge

import "strings"

type flattenOptions struct {
	reverse      bool
	suppressKeys bool
}

// FlattenOption adjusts how Flatten serializes results.
type FlattenOption func(*flattenOptions)

// WithReverse emits entries in reverse insertion order.
func WithReverse() FlattenOption {
	return func(o *flattenOptions) { o.reverse = true }
}

// WithoutKeys omits the key and key/value separator from each entry.
func WithoutKeys() FlattenOption {
	return func(o *flattenOptions) { o.suppressKeys = true }
}

// Flatten serializes results into a single delimited string for inspection.
// Each entry becomes key + kvSep + text (or just text with WithoutKeys), and
// entries are joined with itemSep. Output is deterministic for any input.
func Flatten(res Results, kvSep, itemSep string, opts ...FlattenOption) string {
	var o flattenOptions
	for _, opt := range opts {
		opt(&o)
	}

	entries := res.Entries()
	segments := make([]string, 0, len(entries))
	for _, e := range entries {
		if o.suppressKeys {
			segments = append(segments, e.Text)
			continue
		}
		segments = append(segments, e.Key+kvSep+e.Text)
	}

	if o.reverse {
		for i, j := 0, len(segments)-1; i < j; i, j = i+1, j-1 {
			segments[i], segments[j] = segments[j], segments[i]
		}
	}
	return strings.Join(segments, itemSep)
}

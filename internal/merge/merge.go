// Package merge renders a message template once per gradebook row.
//
// Results keep first-appearance order, keyed either by a designated column's
// values or by the zero-based row position.
package merge

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/template"

	"github.com/courseta/courseta/internal/tabular"
)

// ErrTemplate indicates the template failed to parse or render.
var ErrTemplate = errors.New("template rendering failed")

// Entry is one rendered message with its recipient key.
type Entry struct {
	Key  string
	Text string
}

// Results is an ordered mapping from recipient key to rendered message.
type Results struct {
	entries []Entry
	index   map[string]int
}

func (r *Results) add(key, text string) error {
	if r.index == nil {
		r.index = make(map[string]int)
	}
	if _, exists := r.index[key]; exists {
		return fmt.Errorf("%w: duplicate key %q", tabular.ErrDataFormat, key)
	}
	r.index[key] = len(r.entries)
	r.entries = append(r.entries, Entry{Key: key, Text: text})
	return nil
}

// Len returns the number of rendered messages.
func (r Results) Len() int {
	return len(r.entries)
}

// Get returns the rendered message for a key and whether the key exists.
func (r Results) Get(key string) (string, bool) {
	i, ok := r.index[key]
	if !ok {
		return "", false
	}
	return r.entries[i].Text, true
}

// Entries returns the rendered messages in first-appearance order.
func (r Results) Entries() []Entry {
	return r.entries
}

// Map returns the results as a plain key->message map.
func (r Results) Map() map[string]string {
	m := make(map[string]string, len(r.entries))
	for _, e := range r.entries {
		m[e.Key] = e.Text
	}
	return m
}

// Render renders templateText against each row and returns one result entry
// per row. With a non-empty key, entries are keyed by that column's values,
// which must be present in every row and unique across rows. With an empty
// key, entries are keyed by the zero-based row index.
//
// Templates use text/template syntax with row columns as fields, e.g.
// {{.First_Name}}. Referencing a column the row does not have is an error.
func Render(templateText string, rows tabular.Rows, key string) (Results, error) {
	tmpl, err := template.New("message").Option("missingkey=error").Parse(templateText)
	if err != nil {
		return Results{}, fmt.Errorf("%w: %v", ErrTemplate, err)
	}

	var res Results
	for i, row := range rows {
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, row.Map()); err != nil {
			return Results{}, fmt.Errorf("%w: row %d: %v", ErrTemplate, i+1, err)
		}

		k := strconv.Itoa(i)
		if key != "" {
			v, ok := row.Get(key)
			if !ok {
				return Results{}, fmt.Errorf("%w: key column %q missing in row %d", tabular.ErrDataFormat, key, i+1)
			}
			k = v
		}
		if err := res.add(k, buf.String()); err != nil {
			return Results{}, err
		}
	}
	return res, nil
}

// FromCSV mail merges a template against CSV data with a header line.
// Both arguments are open readers, not paths.
func FromCSV(templateR, data io.Reader, key string) (Results, error) {
	templateText, err := io.ReadAll(templateR)
	if err != nil {
		return Results{}, fmt.Errorf("read template: %w", err)
	}
	rows, err := tabular.ReadCSV(data)
	if err != nil {
		return Results{}, err
	}
	return Render(string(templateText), rows, key)
}

// FromXLSX mail merges a template against the named worksheet of an XLSX
// workbook with a header row.
func FromXLSX(templateR, data io.Reader, sheet, key string) (Results, error) {
	templateText, err := io.ReadAll(templateR)
	if err != nil {
		return Results{}, fmt.Errorf("read template: %w", err)
	}
	rows, err := tabular.ReadXLSX(data, sheet)
	if err != nil {
		return Results{}, err
	}
	return Render(string(templateText), rows, key)
}

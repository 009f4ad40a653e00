// Package calendar converts a week-per-row gradebook worksheet into a
// date-annotated YAML document, one entry per calendar day.
package calendar

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/courseta/courseta/internal/tabular"
)

// ISO 8601 weekday order, Monday through Sunday. Column names in the source
// worksheet are matched against these.
var WeekdayColumns = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

const dateLayout = "2006-01-02"

// Day is one calendar day with its scheduled items.
type Day struct {
	Weekday string   `yaml:"weekday"`
	Date    string   `yaml:"date"`
	Items   []string `yaml:"items"`
}

// Week groups the days of one source row.
type Week struct {
	Number int   `yaml:"week"`
	Days   []Day `yaml:"days"`
}

// Calendar is an ordered sequence of weeks, in source row order. Serializing
// a Calendar is deterministic: identical input yields byte-identical output.
type Calendar []Week

// Convert builds a calendar from rows that carry a week number in weekCol and
// items for each weekday in columns named after WeekdayColumns. Weekday
// columns absent from the source are skipped. The date of each day is the
// Monday of week 1 plus 7*(week-1) days plus the weekday offset, where week 1
// is the ISO week (Monday through Sunday) containing start.
//
// Cell text is split on itemDelim; items are whitespace-trimmed and empty
// items dropped, so a blank cell yields a day with no items. A blank or
// non-numeric week number is an error.
func Convert(rows tabular.Rows, start time.Time, itemDelim, weekCol string) (Calendar, error) {
	if itemDelim == "" {
		itemDelim = "|"
	}

	// Round back to the Monday of the week containing start.
	monday := start.AddDate(0, 0, -((int(start.Weekday()) + 6) % 7))

	cal := make(Calendar, 0, len(rows))
	for i, row := range rows {
		raw, ok := row.Get(weekCol)
		if !ok {
			return nil, fmt.Errorf("%w: week number column %q missing in row %d", tabular.ErrDataFormat, weekCol, i+1)
		}
		number, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("%w: week number %q in row %d is not an integer", tabular.ErrDataFormat, raw, i+1)
		}

		week := Week{Number: number}
		for offset, name := range WeekdayColumns {
			cell, ok := row.Get(name)
			if !ok {
				continue
			}
			date := monday.AddDate(0, 0, 7*(number-1)+offset)
			week.Days = append(week.Days, Day{
				Weekday: name,
				Date:    date.Format(dateLayout),
				Items:   splitItems(cell, itemDelim),
			})
		}
		cal = append(cal, week)
	}
	return cal, nil
}

// splitItems splits cell text on the item delimiter, trimming whitespace and
// dropping empty items. Always returns a non-nil slice so blank cells
// serialize as an empty list.
func splitItems(cell, delim string) []string {
	items := []string{}
	for _, part := range strings.Split(cell, delim) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

// Encode writes the calendar as YAML. It encodes through a local alias type
// so the yaml encoder does not re-enter MarshalText on Calendar itself.
func (c Calendar) Encode(w io.Writer) error {
	type weeks []Week
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(weeks(c)); err != nil {
		return fmt.Errorf("encode calendar: %w", err)
	}
	return enc.Close()
}

// MarshalText returns the YAML serialization of the calendar.
func (c Calendar) MarshalText() ([]byte, error) {
	var buf bytes.Buffer
	if err := c.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Parse reads a calendar document produced by Encode.
func Parse(r io.Reader) (Calendar, error) {
	var cal Calendar
	if err := yaml.NewDecoder(r).Decode(&cal); err != nil {
		return nil, fmt.Errorf("%w: parse calendar: %v", tabular.ErrDataFormat, err)
	}
	return cal, nil
}

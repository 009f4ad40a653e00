// Package tabular parses CSV files and XLSX worksheets into ordered rows.
//
// Rows preserve the source column order instead of relying on map iteration,
// so downstream consumers (mail merge, calendar conversion) produce the same
// output for the same input every time.
package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrDataFormat indicates malformed or unusable tabular input.
	ErrDataFormat = errors.New("malformed tabular data")

	// ErrNoWorksheet indicates the requested worksheet does not exist. It
	// matches ErrDataFormat.
	ErrNoWorksheet = fmt.Errorf("%w: worksheet not found", ErrDataFormat)
)

// Cell is a single column/value pair within a row.
type Cell struct {
	Column string
	Value  string
}

// Row is an ordered mapping from column name to cell value, built from one
// data row and the header row above it.
type Row struct {
	cells []Cell
	index map[string]int
}

// NewRow builds a row from parallel column and value slices. Missing trailing
// values are treated as empty cells; extra values are dropped.
func NewRow(columns, values []string) Row {
	r := Row{
		cells: make([]Cell, len(columns)),
		index: make(map[string]int, len(columns)),
	}
	for i, col := range columns {
		val := ""
		if i < len(values) {
			val = values[i]
		}
		r.cells[i] = Cell{Column: col, Value: val}
		r.index[col] = i
	}
	return r
}

// Get returns the value for a column and whether the column exists.
func (r Row) Get(column string) (string, bool) {
	i, ok := r.index[column]
	if !ok {
		return "", false
	}
	return r.cells[i].Value, true
}

// Has reports whether the row has the named column.
func (r Row) Has(column string) bool {
	_, ok := r.index[column]
	return ok
}

// Columns returns the column names in source order.
func (r Row) Columns() []string {
	cols := make([]string, len(r.cells))
	for i, c := range r.cells {
		cols[i] = c.Column
	}
	return cols
}

// Cells returns the column/value pairs in source order.
func (r Row) Cells() []Cell {
	return r.cells
}

// Map returns the row as a plain map, for template rendering.
func (r Row) Map() map[string]string {
	m := make(map[string]string, len(r.cells))
	for _, c := range r.cells {
		m[c.Column] = c.Value
	}
	return m
}

// Rows is an ordered sequence of rows, one per source data row.
type Rows []Row

// ReadCSV parses CSV content with the first line as the header row.
func ReadCSV(r io.Reader) (Rows, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: missing header row", ErrDataFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	var rows Rows
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", len(rows)+2, err)
		}
		rows = append(rows, NewRow(header, record))
	}
	return rows, nil
}

// ReadXLSX parses the named worksheet of an XLSX workbook with the first row
// as the header row. The worksheet name must exist in the workbook.
func ReadXLSX(r io.Reader, sheet string) (Rows, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer wb.Close()

	idx, err := wb.GetSheetIndex(sheet)
	if err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoWorksheet, sheet)
	}

	raw, err := wb.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read worksheet %q: %w", sheet, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: worksheet %q has no header row", ErrDataFormat, sheet)
	}

	header := raw[0]
	rows := make(Rows, 0, len(raw)-1)
	for _, record := range raw[1:] {
		rows = append(rows, NewRow(header, record))
	}
	return rows, nil
}

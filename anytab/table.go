// Package anytab reads tabular records and converts them
// to and from the dense feature encoding used for
// training.
package anytab

import (
	"crypto/md5"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tabgen/anycvae/anysgd"
)

// MissingValue is the placeholder some datasets (census
// data in particular) use for an unknown cell.
const MissingValue = "?"

// A Table is a list of string records with named columns.
//
// A Table implements anysgd.Hasher, so it may be split
// with anysgd.HashSplit before any preprocessing is fit.
type Table struct {
	Columns []string
	Rows    [][]string
}

// ReadCSV reads a table whose first record is a header.
// Leading spaces in cells are trimmed.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("error reading data header: %w", err)
	}
	res := &Table{Columns: header}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("error reading record %d: %w", len(res.Rows)+1, err)
		}
		res.Rows = append(res.Rows, record)
	}
	return res, nil
}

// ReadCSVFile reads a table from a CSV file.
func ReadCSVFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// WriteCSV writes the header followed by every row.
func (t *Table) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Columns); err != nil {
		return fmt.Errorf("error writing header: %w", err)
	}
	if err := writer.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("error writing rows: %w", err)
	}
	return nil
}

// ColumnIndex returns the index of the named column.
func (t *Table) ColumnIndex(name string) (int, error) {
	for i, col := range t.Columns {
		if col == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("column %s not found in data header", name)
}

// Column returns a copy of every value in a column.
func (t *Table) Column(name string) ([]string, error) {
	idx, err := t.ColumnIndex(name)
	if err != nil {
		return nil, err
	}
	res := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		res[i] = row[idx]
	}
	return res, nil
}

// Select creates a table with only the named columns, in
// the given order.
func (t *Table) Select(names ...string) (*Table, error) {
	indices := make([]int, len(names))
	for i, name := range names {
		idx, err := t.ColumnIndex(name)
		if err != nil {
			return nil, err
		}
		indices[i] = idx
	}
	res := &Table{
		Columns: append([]string{}, names...),
		Rows:    make([][]string, len(t.Rows)),
	}
	for i, row := range t.Rows {
		newRow := make([]string, len(indices))
		for j, idx := range indices {
			newRow[j] = row[idx]
		}
		res.Rows[i] = newRow
	}
	return res, nil
}

// AppendColumn adds a column to the right of the table.
// The number of values must match the number of rows.
func (t *Table) AppendColumn(name string, values []string) error {
	if len(values) != len(t.Rows) {
		return fmt.Errorf("column %s has %d values for %d rows", name, len(values), len(t.Rows))
	}
	t.Columns = append(t.Columns, name)
	for i, v := range values {
		t.Rows[i] = append(t.Rows[i], v)
	}
	return nil
}

// DropMissing returns a table without the rows that have
// an empty or MissingValue cell, or that are too short
// for the header.
func (t *Table) DropMissing() *Table {
	res := &Table{Columns: t.Columns}
	for _, row := range t.Rows {
		if !rowMissing(row, len(t.Columns)) {
			res.Rows = append(res.Rows, row)
		}
	}
	return res
}

func rowMissing(row []string, width int) bool {
	if len(row) < width {
		return true
	}
	for _, cell := range row {
		cell = strings.TrimSpace(cell)
		if cell == "" || cell == MissingValue {
			return true
		}
	}
	return false
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Swap swaps two rows.
func (t *Table) Swap(i, j int) {
	t.Rows[i], t.Rows[j] = t.Rows[j], t.Rows[i]
}

// Slice creates a table sharing the header with a subset
// of the rows.
func (t *Table) Slice(i, j int) anysgd.SampleList {
	return &Table{
		Columns: t.Columns,
		Rows:    append([][]string{}, t.Rows[i:j]...),
	}
}

// Hash hashes the contents of a row.
func (t *Table) Hash(i int) []byte {
	sum := md5.Sum([]byte(strings.Join(t.Rows[i], "\x00")))
	return sum[:]
}

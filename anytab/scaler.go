package anytab

import (
	"fmt"
	"math"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// A MinMaxScaler maps numeric columns linearly onto [0, 1]
// using the minimum and maximum seen while fitting.
//
// Columns that were constant during fitting map to 0.
type MinMaxScaler struct {
	Columns []string
	Min     []float64
	Max     []float64
}

// Fit parses every column of t as numbers and records the
// per-column range.
// The table must have at least one row.
func (m *MinMaxScaler) Fit(t *Table) error {
	values, err := parseNumeric(t)
	if err != nil {
		return err
	}
	if values == nil {
		return fmt.Errorf("cannot fit scaler on empty table")
	}
	_, cols := values.Dims()
	m.Columns = append([]string{}, t.Columns...)
	m.Min = make([]float64, cols)
	m.Max = make([]float64, cols)
	for j := 0; j < cols; j++ {
		col := mat.Col(nil, j, values)
		m.Min[j] = floats.Min(col)
		m.Max[j] = floats.Max(col)
	}
	return nil
}

// Transform scales the columns of t.
// Values outside the fitted range map outside of [0, 1].
func (m *MinMaxScaler) Transform(t *Table) (*mat.Dense, error) {
	if len(t.Columns) != len(m.Columns) {
		return nil, fmt.Errorf("scaler expects %d columns but got %d", len(m.Columns), len(t.Columns))
	}
	values, err := parseNumeric(t)
	if err != nil || values == nil {
		return values, err
	}
	rows, cols := values.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			values.Set(i, j, m.scale(j, values.At(i, j)))
		}
	}
	return values, nil
}

// InverseTransform maps scaled values back onto the
// original range of every column.
func (m *MinMaxScaler) InverseTransform(values mat.Matrix) *Table {
	rows, cols := values.Dims()
	res := &Table{Columns: append([]string{}, m.Columns...), Rows: make([][]string, rows)}
	for i := 0; i < rows; i++ {
		row := make([]string, cols)
		for j := range row {
			x := values.At(i, j)*(m.Max[j]-m.Min[j]) + m.Min[j]
			row[j] = formatNumber(x)
		}
		res.Rows[i] = row
	}
	return res
}

// formatNumber writes x in plain decimal notation, rounded
// to six decimal places.
func formatNumber(x float64) string {
	return strconv.FormatFloat(math.Round(x*1e6)/1e6, 'f', -1, 64)
}

func (m *MinMaxScaler) scale(col int, x float64) float64 {
	span := m.Max[col] - m.Min[col]
	if span == 0 {
		return 0
	}
	return (x - m.Min[col]) / span
}

// parseNumeric returns nil when the table has no rows or
// no columns.
func parseNumeric(t *Table) (*mat.Dense, error) {
	if len(t.Rows) == 0 || len(t.Columns) == 0 {
		return nil, nil
	}
	res := mat.NewDense(len(t.Rows), len(t.Columns), nil)
	for i, row := range t.Rows {
		for j, name := range t.Columns {
			x, err := strconv.ParseFloat(row[j], 64)
			if err != nil {
				return nil, fmt.Errorf("error parsing feature %s: %w", name, err)
			}
			res.Set(i, j, x)
		}
	}
	return res, nil
}

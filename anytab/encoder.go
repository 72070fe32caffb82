package anytab

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// A OneHotEncoder expands every categorical column into a
// block of indicator columns, one per known category.
type OneHotEncoder struct {
	Columns []string

	// Categories stores the sorted categories of each
	// column.
	Categories [][]string
}

// Fit records the distinct values of every column.
func (o *OneHotEncoder) Fit(t *Table) {
	o.Columns = append([]string{}, t.Columns...)
	o.Categories = make([][]string, len(t.Columns))
	for j := range t.Columns {
		o.Categories[j] = distinct(t.Rows, j)
	}
}

// Width returns the total number of indicator columns.
func (o *OneHotEncoder) Width() int {
	var res int
	for _, cats := range o.Categories {
		res += len(cats)
	}
	return res
}

// Transform encodes the table.
// It fails if a value was not seen while fitting.
// The result is nil if the table has no rows or the
// encoder has no columns.
func (o *OneHotEncoder) Transform(t *Table) (*mat.Dense, error) {
	if len(t.Columns) != len(o.Columns) {
		return nil, fmt.Errorf("encoder expects %d columns but got %d", len(o.Columns), len(t.Columns))
	}
	width := o.Width()
	if len(t.Rows) == 0 || width == 0 {
		return nil, nil
	}
	res := mat.NewDense(len(t.Rows), width, nil)
	for i, row := range t.Rows {
		offset := 0
		for j, cats := range o.Categories {
			idx := sort.SearchStrings(cats, row[j])
			if idx == len(cats) || cats[idx] != row[j] {
				return nil, fmt.Errorf("unknown value %s for categorical attribute %s", row[j], o.Columns[j])
			}
			res.Set(i, offset+idx, 1)
			offset += len(cats)
		}
	}
	return res, nil
}

// InverseTransform picks the category with the largest
// indicator in every block.
func (o *OneHotEncoder) InverseTransform(values mat.Matrix) *Table {
	rows, _ := values.Dims()
	res := &Table{Columns: append([]string{}, o.Columns...), Rows: make([][]string, rows)}
	for i := 0; i < rows; i++ {
		rowVals := mat.Row(nil, i, values)
		row := make([]string, len(o.Categories))
		offset := 0
		for j, cats := range o.Categories {
			block := rowVals[offset : offset+len(cats)]
			row[j] = cats[floats.MaxIdx(block)]
			offset += len(cats)
		}
		res.Rows[i] = row
	}
	return res
}

// A LabelEncoder maps class names to consecutive integer
// codes, in sorted name order.
type LabelEncoder struct {
	Classes []string
}

// FitTransform fits the encoder to values and returns
// their codes.
func (l *LabelEncoder) FitTransform(values []string) []int {
	l.Classes = distinct(columnRows(values), 0)
	codes, _ := l.Transform(values)
	return codes
}

// Transform encodes class names.
func (l *LabelEncoder) Transform(values []string) ([]int, error) {
	res := make([]int, len(values))
	for i, v := range values {
		code, err := l.Code(v)
		if err != nil {
			return nil, err
		}
		res[i] = code
	}
	return res, nil
}

// Code encodes a single class name.
func (l *LabelEncoder) Code(class string) (int, error) {
	idx := sort.SearchStrings(l.Classes, class)
	if idx == len(l.Classes) || l.Classes[idx] != class {
		return 0, fmt.Errorf("unknown categorical target value %s", class)
	}
	return idx, nil
}

// Inverse decodes codes back to class names.
func (l *LabelEncoder) Inverse(codes []int) ([]string, error) {
	res := make([]string, len(codes))
	for i, c := range codes {
		if c < 0 || c >= len(l.Classes) {
			return nil, fmt.Errorf("label %d out of range [0, %d)", c, len(l.Classes))
		}
		res[i] = l.Classes[c]
	}
	return res, nil
}

// NumClasses returns the number of distinct classes.
func (l *LabelEncoder) NumClasses() int {
	return len(l.Classes)
}

func distinct(rows [][]string, col int) []string {
	seen := map[string]bool{}
	var res []string
	for _, row := range rows {
		if !seen[row[col]] {
			seen[row[col]] = true
			res = append(res, row[col])
		}
	}
	sort.Strings(res)
	return res
}

func columnRows(values []string) [][]string {
	res := make([][]string, len(values))
	for i, v := range values {
		res[i] = []string{v}
	}
	return res
}

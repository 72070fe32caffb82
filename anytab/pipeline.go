package anytab

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// A Pipeline turns raw records into feature vectors and
// integer labels, and turns feature vectors back into
// records.
//
// The feature layout is the scaled numeric columns,
// followed by the one-hot blocks of the categorical
// columns.
type Pipeline struct {
	NumericColumns     []string
	CategoricalColumns []string
	TargetColumn       string

	Scaler  *MinMaxScaler
	Encoder *OneHotEncoder
	Labels  *LabelEncoder
}

// NewPipeline creates an unfitted pipeline.
func NewPipeline(numeric, categorical []string, target string) *Pipeline {
	return &Pipeline{
		NumericColumns:     numeric,
		CategoricalColumns: categorical,
		TargetColumn:       target,
	}
}

// InferColumns creates an unfitted pipeline for t in
// which every column other than the target is numeric
// unless it is listed as categorical.
func InferColumns(t *Table, categorical []string, target string) (*Pipeline, error) {
	if _, err := t.ColumnIndex(target); err != nil {
		return nil, err
	}
	isCategorical := map[string]bool{}
	for _, c := range categorical {
		if _, err := t.ColumnIndex(c); err != nil {
			return nil, err
		}
		isCategorical[c] = true
	}
	var numeric []string
	for _, c := range t.Columns {
		if c != target && !isCategorical[c] {
			numeric = append(numeric, c)
		}
	}
	return NewPipeline(numeric, categorical, target), nil
}

// Fit fits the scaler, the one-hot encoder and the label
// encoder.
func (p *Pipeline) Fit(t *Table) error {
	if err := p.FitNumeric(t); err != nil {
		return err
	}
	categorical, err := t.Select(p.CategoricalColumns...)
	if err != nil {
		return err
	}
	targets, err := t.Column(p.TargetColumn)
	if err != nil {
		return err
	}
	p.Encoder = &OneHotEncoder{}
	p.Encoder.Fit(categorical)
	p.Labels = &LabelEncoder{}
	p.Labels.FitTransform(targets)
	return nil
}

// FitNumeric refits only the scaler, leaving the known
// categories and labels untouched.
func (p *Pipeline) FitNumeric(t *Table) error {
	if t.Len() == 0 {
		return fmt.Errorf("cannot fit pipeline on empty table")
	}
	numeric, err := t.Select(p.NumericColumns...)
	if err != nil {
		return err
	}
	p.Scaler = &MinMaxScaler{}
	if len(p.NumericColumns) > 0 {
		if err := p.Scaler.Fit(numeric); err != nil {
			return err
		}
	}
	return nil
}

// FeatureCount returns the width of a feature vector.
func (p *Pipeline) FeatureCount() int {
	return len(p.NumericColumns) + p.Encoder.Width()
}

// NumClasses returns the number of target classes.
func (p *Pipeline) NumClasses() int {
	return p.Labels.NumClasses()
}

// OutputColumns returns the columns produced by
// InverseTransform.
func (p *Pipeline) OutputColumns() []string {
	return append(append([]string{}, p.NumericColumns...), p.CategoricalColumns...)
}

// Transform encodes a table into a feature matrix with
// one row per record and the label code of each record.
func (p *Pipeline) Transform(t *Table) (*mat.Dense, []int, error) {
	if t.Len() == 0 {
		return nil, nil, fmt.Errorf("cannot transform empty table")
	}
	numericTable, err := t.Select(p.NumericColumns...)
	if err != nil {
		return nil, nil, err
	}
	categoricalTable, err := t.Select(p.CategoricalColumns...)
	if err != nil {
		return nil, nil, err
	}
	targets, err := t.Column(p.TargetColumn)
	if err != nil {
		return nil, nil, err
	}

	numeric, err := p.Scaler.Transform(numericTable)
	if err != nil {
		return nil, nil, err
	}
	categorical, err := p.Encoder.Transform(categoricalTable)
	if err != nil {
		return nil, nil, err
	}
	labels, err := p.Labels.Transform(targets)
	if err != nil {
		return nil, nil, err
	}

	res := mat.NewDense(t.Len(), p.FeatureCount(), nil)
	numCount := len(p.NumericColumns)
	for i := 0; i < t.Len(); i++ {
		row := res.RawRowView(i)
		if numeric != nil {
			copy(row, numeric.RawRowView(i))
		}
		if categorical != nil {
			copy(row[numCount:], categorical.RawRowView(i))
		}
	}
	return res, labels, nil
}

// InverseTransform decodes a feature matrix into a table
// with the OutputColumns.
func (p *Pipeline) InverseTransform(features mat.Matrix) (*Table, error) {
	rows, cols := features.Dims()
	if cols != p.FeatureCount() {
		return nil, fmt.Errorf("expected %d feature columns but got %d", p.FeatureCount(), cols)
	}
	numCount := len(p.NumericColumns)
	numeric := p.Scaler.InverseTransform(subColumns(features, 0, numCount))
	categorical := p.Encoder.InverseTransform(subColumns(features, numCount, cols))

	res := &Table{Columns: p.OutputColumns(), Rows: make([][]string, rows)}
	for i := range res.Rows {
		var row []string
		if numCount > 0 {
			row = append(row, numeric.Rows[i]...)
		}
		if len(p.CategoricalColumns) > 0 {
			row = append(row, categorical.Rows[i]...)
		}
		res.Rows[i] = row
	}
	return res, nil
}

type columnView struct {
	mat.Matrix
	from, to int
}

func subColumns(m mat.Matrix, from, to int) mat.Matrix {
	return columnView{Matrix: m, from: from, to: to}
}

func (c columnView) Dims() (r, cols int) {
	r, _ = c.Matrix.Dims()
	return r, c.to - c.from
}

func (c columnView) At(i, j int) float64 {
	return c.Matrix.At(i, c.from+j)
}

func (c columnView) T() mat.Matrix {
	return mat.Transpose{Matrix: c}
}

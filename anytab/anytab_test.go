package anytab

import (
	"bytes"
	"encoding/gob"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tabgen/anycvae/anysgd"
)

const testCSV = `age, workclass, hours, income
39, State-gov, 40, <=50K
50, Self-emp, 13, <=50K
38, Private, 40, >50K
53, ?, 40, <=50K
28, Private, 60, >50K
`

func readTestTable(t *testing.T) *Table {
	table, err := ReadCSV(strings.NewReader(testCSV))
	require.NoError(t, err)
	return table
}

func TestReadCSV(t *testing.T) {
	table := readTestTable(t)
	require.Equal(t, []string{"age", "workclass", "hours", "income"}, table.Columns)
	require.Equal(t, 5, table.Len())
	require.Equal(t, []string{"38", "Private", "40", ">50K"}, table.Rows[2])

	col, err := table.Column("hours")
	require.NoError(t, err)
	require.Equal(t, []string{"40", "13", "40", "40", "60"}, col)

	_, err = table.Column("missing")
	require.Error(t, err)
}

func TestDropMissing(t *testing.T) {
	table := readTestTable(t).DropMissing()
	require.Equal(t, 4, table.Len())
	for _, row := range table.Rows {
		require.NotContains(t, row, MissingValue)
	}
}

func TestWriteCSV(t *testing.T) {
	table, err := readTestTable(t).Select("income", "age")
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, table.WriteCSV(&buf))
	require.True(t, strings.HasPrefix(buf.String(), "income,age\n<=50K,39\n"))

	back, err := ReadCSV(&buf)
	require.NoError(t, err)
	require.Equal(t, table, back)
}

func TestTableHashSplit(t *testing.T) {
	table := readTestTable(t)
	left, right := anysgd.HashSplit(table, 0.5)
	require.Equal(t, table.Len(), left.Len()+right.Len())
	require.Equal(t, table.Columns, left.(*Table).Columns)
}

func TestMinMaxScaler(t *testing.T) {
	table, err := readTestTable(t).Select("age", "hours")
	require.NoError(t, err)

	var s MinMaxScaler
	require.NoError(t, s.Fit(table))
	require.Equal(t, []float64{28, 13}, s.Min)
	require.Equal(t, []float64{53, 60}, s.Max)

	scaled, err := s.Transform(table)
	require.NoError(t, err)
	require.InDelta(t, 11.0/25, scaled.At(0, 0), 1e-9)
	require.InDelta(t, 0, scaled.At(1, 1), 1e-9)
	require.InDelta(t, 1, scaled.At(4, 1), 1e-9)

	back := s.InverseTransform(scaled)
	require.Equal(t, table.Columns, back.Columns)
	require.Equal(t, table.Rows, back.Rows)
}

func TestMinMaxScalerConstant(t *testing.T) {
	table := &Table{Columns: []string{"x"}, Rows: [][]string{{"3"}, {"3"}}}
	var s MinMaxScaler
	require.NoError(t, s.Fit(table))
	scaled, err := s.Transform(table)
	require.NoError(t, err)
	require.Equal(t, 0.0, scaled.At(0, 0))
	require.Equal(t, "3", s.InverseTransform(scaled).Rows[1][0])
}

func TestOneHotEncoder(t *testing.T) {
	table, err := readTestTable(t).DropMissing().Select("workclass")
	require.NoError(t, err)

	var o OneHotEncoder
	o.Fit(table)
	require.Equal(t, [][]string{{"Private", "Self-emp", "State-gov"}}, o.Categories)
	require.Equal(t, 3, o.Width())

	encoded, err := o.Transform(table)
	require.NoError(t, err)
	require.Equal(t, []float64{0, 0, 1}, encoded.RawRowView(0))
	require.Equal(t, []float64{1, 0, 0}, encoded.RawRowView(2))

	encoded.Set(0, 1, 1.5)
	decoded := o.InverseTransform(encoded)
	require.Equal(t, "Self-emp", decoded.Rows[0][0])
	require.Equal(t, "Private", decoded.Rows[2][0])

	unknown := &Table{Columns: []string{"workclass"}, Rows: [][]string{{"Never-worked"}}}
	_, err = o.Transform(unknown)
	require.Error(t, err)
}

func TestLabelEncoder(t *testing.T) {
	var l LabelEncoder
	codes := l.FitTransform([]string{">50K", "<=50K", ">50K"})
	require.Equal(t, []int{1, 0, 1}, codes)
	require.Equal(t, 2, l.NumClasses())

	names, err := l.Inverse([]int{0, 1})
	require.NoError(t, err)
	require.Equal(t, []string{"<=50K", ">50K"}, names)

	_, err = l.Inverse([]int{2})
	require.Error(t, err)
	_, err = l.Transform([]string{"unknown"})
	require.Error(t, err)
}

func TestPipeline(t *testing.T) {
	table := readTestTable(t).DropMissing()
	p, err := InferColumns(table, []string{"workclass"}, "income")
	require.NoError(t, err)
	require.Equal(t, []string{"age", "hours"}, p.NumericColumns)
	require.NoError(t, p.Fit(table))

	require.Equal(t, 5, p.FeatureCount())
	require.Equal(t, 2, p.NumClasses())
	require.Equal(t, []string{"age", "hours", "workclass"}, p.OutputColumns())

	features, labels, err := p.Transform(table)
	require.NoError(t, err)
	rows, cols := features.Dims()
	require.Equal(t, 4, rows)
	require.Equal(t, 5, cols)
	require.Equal(t, []int{0, 0, 1, 1}, labels)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			require.True(t, features.At(i, j) >= 0 && features.At(i, j) <= 1)
		}
	}

	back, err := p.InverseTransform(features)
	require.NoError(t, err)
	expected, err := table.Select(p.OutputColumns()...)
	require.NoError(t, err)
	require.Equal(t, expected, back)
}

func TestPipelineNumericOnly(t *testing.T) {
	table := readTestTable(t)
	p := NewPipeline([]string{"age", "hours"}, nil, "income")
	require.NoError(t, p.Fit(table))
	features, _, err := p.Transform(table)
	require.NoError(t, err)

	back, err := p.InverseTransform(features)
	require.NoError(t, err)
	require.Equal(t, []string{"age", "hours"}, back.Columns)
	require.Equal(t, table.Len(), back.Len())
}

func TestPipelineGob(t *testing.T) {
	table := readTestTable(t).DropMissing()
	p, err := InferColumns(table, []string{"workclass"}, "income")
	require.NoError(t, err)
	require.NoError(t, p.Fit(table))

	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(p))
	var decoded Pipeline
	require.NoError(t, gob.NewDecoder(&buf).Decode(&decoded))

	expected, _, err := p.Transform(table)
	require.NoError(t, err)
	actual, _, err := decoded.Transform(table)
	require.NoError(t, err)
	require.Equal(t, expected.RawMatrix().Data, actual.RawMatrix().Data)
}

func TestMinMaxScalerLargeValues(t *testing.T) {
	table := &Table{
		Columns: []string{"fnlwgt"},
		Rows:    [][]string{{"12285"}, {"189778"}, {"1484705"}, {"0.25"}},
	}
	var s MinMaxScaler
	require.NoError(t, s.Fit(table))
	scaled, err := s.Transform(table)
	require.NoError(t, err)
	back := s.InverseTransform(scaled)
	require.Equal(t, table.Rows, back.Rows)
}

func TestPipelineFitNumeric(t *testing.T) {
	table := readTestTable(t).DropMissing()
	p, err := InferColumns(table, []string{"workclass"}, "income")
	require.NoError(t, err)
	require.NoError(t, p.Fit(table))
	categories := p.Encoder.Categories
	classes := p.Labels.Classes

	train := table.Slice(0, 2).(*Table)
	require.NoError(t, p.FitNumeric(train))
	require.Equal(t, []float64{39, 13}, p.Scaler.Min)
	require.Equal(t, []float64{50, 40}, p.Scaler.Max)
	require.Equal(t, categories, p.Encoder.Categories)
	require.Equal(t, classes, p.Labels.Classes)

	// Rows outside the training split still encode.
	features, labels, err := p.Transform(table)
	require.NoError(t, err)
	require.Equal(t, []int{0, 0, 1, 1}, labels)
	require.InDelta(t, 0, features.At(0, 0), 1e-9)
	require.InDelta(t, -1, features.At(3, 0), 1e-9)

	require.Error(t, p.FitNumeric(&Table{Columns: table.Columns}))
}

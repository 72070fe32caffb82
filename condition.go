package anycvae

import (
	"fmt"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
)

// OneHot encodes label as a vector of length classes with
// a single 1 at the label's index.
//
// It panics if the label is out of range.
func OneHot(label, classes int) []float64 {
	if label < 0 || label >= classes {
		panic(fmt.Sprintf("label %d out of range [0, %d)", label, classes))
	}
	res := make([]float64, classes)
	res[label] = 1
	return res
}

// OneHotBatch packs the one-hot encodings of labels into
// a single vector, one row per label.
func OneHotBatch(c anyvec.Creator, labels []int, classes int) anyvec.Vector {
	data := make([]float64, 0, len(labels)*classes)
	for _, label := range labels {
		data = append(data, OneHot(label, classes)...)
	}
	return c.MakeVectorData(c.MakeNumericList(data))
}

// Condition appends the one-hot encoding of each row's
// label to that row.
// The input packs len(labels) rows; the output packs the
// same number of rows, each classes components wider.
func Condition(in anydiff.Res, labels []int, classes int) anydiff.Res {
	c := in.Output().Creator()
	oneHot := anydiff.NewConst(OneHotBatch(c, labels, classes))
	return JoinRows(in, oneHot, len(labels))
}

// JoinRows concatenates the i-th packed row of left with
// the i-th packed row of right, for each of the n rows.
// It is the inverse of SplitRows.
func JoinRows(left, right anydiff.Res, n int) anydiff.Res {
	return anydiff.Pool(left, func(left anydiff.Res) anydiff.Res {
		return anydiff.Pool(right, func(right anydiff.Res) anydiff.Res {
			leftCols := left.Output().Len() / n
			rightCols := right.Output().Len() / n
			parts := make([]anydiff.Res, 0, 2*n)
			for i := 0; i < n; i++ {
				parts = append(parts,
					anydiff.Slice(left, i*leftCols, (i+1)*leftCols),
					anydiff.Slice(right, i*rightCols, (i+1)*rightCols))
			}
			return anydiff.Concat(parts...)
		})
	})
}

// SplitRows splits every packed row at column at, returning
// the packed left parts and the packed right parts.
//
// Each half back-propagates into in exactly once, no
// matter how many rows there are.
func SplitRows(in anydiff.Res, n, at int) (left, right anydiff.Res) {
	cols := in.Output().Len() / n
	if at < 0 || at > cols {
		panic(fmt.Sprintf("split column %d out of range [0, %d]", at, cols))
	}
	leftTable := make([]int, 0, n*at)
	rightTable := make([]int, 0, n*(cols-at))
	for i := 0; i < n; i++ {
		for j := 0; j < cols; j++ {
			if j < at {
				leftTable = append(leftTable, i*cols+j)
			} else {
				rightTable = append(rightTable, i*cols+j)
			}
		}
	}
	return gather(in, leftTable), gather(in, rightTable)
}

// gather picks the components of in listed in table.
func gather(in anydiff.Res, table []int) anydiff.Res {
	c := in.Output().Creator()
	if len(table) == 0 {
		return anydiff.NewConst(c.MakeVector(0))
	}
	return anydiff.Map(c.MakeMapper(in.Output().Len(), table), in)
}

package anyvae

import (
	"fmt"

	"github.com/tabgen/anycvae/anysgd"
	"github.com/unixpickle/anyvec"
	"gonum.org/v1/gonum/mat"
)

// A Sample is a feature vector and the label it is
// conditioned on.
type Sample struct {
	Features anyvec.Vector
	Label    int
}

// A SampleList is an anysgd.SampleList that produces
// labeled feature vectors.
type SampleList interface {
	anysgd.SampleList

	GetSample(idx int) (*Sample, error)
}

// A SliceSampleList is a concrete SampleList with
// predetermined samples.
type SliceSampleList []*Sample

// NewSamples creates one sample per row of features.
func NewSamples(c anyvec.Creator, features *mat.Dense, labels []int) (SliceSampleList, error) {
	rows, _ := features.Dims()
	if rows != len(labels) {
		return nil, fmt.Errorf("got %d feature rows but %d labels", rows, len(labels))
	}
	res := make(SliceSampleList, rows)
	for i := range res {
		row := append([]float64{}, features.RawRowView(i)...)
		res[i] = &Sample{
			Features: c.MakeVectorData(c.MakeNumericList(row)),
			Label:    labels[i],
		}
	}
	return res, nil
}

// Len returns the number of samples.
func (s SliceSampleList) Len() int {
	return len(s)
}

// Swap swaps two samples.
func (s SliceSampleList) Swap(i, j int) {
	s[i], s[j] = s[j], s[i]
}

// Slice copies a sub-slice of the list.
func (s SliceSampleList) Slice(i, j int) anysgd.SampleList {
	return append(SliceSampleList{}, s[i:j]...)
}

// GetSample returns the sample at the index.
func (s SliceSampleList) GetSample(idx int) (*Sample, error) {
	return s[idx], nil
}

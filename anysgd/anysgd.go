// Package anysgd provides tools for mini-batch Stochastic
// Gradient Descent over a fixed list of samples.
package anysgd

import (
	"math/rand"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/essentials"
)

// SGD performs stochastic gradient descent.
type SGD struct {
	// Fetcher is used to turn each mini-batch of samples
	// into a Batch for the Gradienter.
	Fetcher Fetcher

	// Gradienter is used to compute initial, untransformed
	// gradients for each mini-batch.
	Gradienter Gradienter

	// Transformer, if non-nil, is used to transform each
	// gradient before the step.
	Transformer Transformer

	// Samples is the list of training samples to use for
	// training.
	// It will be shuffled at the start of every epoch.
	//
	// The list may not be empty.
	Samples SampleList

	// Rater determines the learning rate for each step.
	Rater Rater

	// StatusFunc, if non-nil, is called after every step
	// with the mini-batch that was just applied.
	StatusFunc func(b Batch)

	// BatchSize is the mini-batch size.
	// If it is 0, then the entire sample list is used at
	// every iteration.
	BatchSize int

	// Rand is used for shuffling.
	// If it is nil, the math/rand global source is used.
	Rand *rand.Rand

	// NumProcessed keeps track of the number of samples that
	// have been passed to Gradienter so far.
	// It is used to compute the epoch for Rater.
	NumProcessed int
}

// Epoch shuffles the samples and runs one full pass over
// them, one mini-batch at a time.
// The final mini-batch may be smaller than BatchSize.
func (s *SGD) Epoch() error {
	if s.Samples.Len() == 0 {
		panic("cannot run SGD with empty sample list")
	}
	Shuffle(s.Samples, s.Rand)
	for _, samples := range Batches(s.Samples, s.BatchSize) {
		batch, err := s.Fetcher.Fetch(samples)
		if err != nil {
			return essentials.AddCtx("SGD epoch", err)
		}

		grad := s.Gradienter.Gradient(batch)
		if s.Transformer != nil {
			grad = s.Transformer.Transform(grad)
		}

		epoch := float64(s.NumProcessed) / float64(s.Samples.Len())
		scaleGrad(grad, -s.Rater.Rate(epoch))
		grad.AddToVars()

		s.NumProcessed += samples.Len()

		if s.StatusFunc != nil {
			s.StatusFunc(batch)
		}
	}
	return nil
}

// Run runs epochs until stopper indicates to stop.
// The stopper is consulted before every epoch.
func (s *SGD) Run(stopper Stopper) error {
	for !stopper.Done() {
		if err := s.Epoch(); err != nil {
			return err
		}
	}
	return nil
}

// Batches splits a list into consecutive mini-batches of
// at most size samples, without shuffling.
// If size is 0, the whole list is a single batch.
func Batches(s SampleList, size int) []SampleList {
	if size <= 0 || size > s.Len() {
		size = s.Len()
	}
	var res []SampleList
	for i := 0; i < s.Len(); i += size {
		end := i + size
		if end > s.Len() {
			end = s.Len()
		}
		res = append(res, s.Slice(i, end))
	}
	return res
}

func scaleGrad(g anydiff.Grad, s float64) {
	for _, v := range g {
		g.Scale(v.Creator().MakeNumeric(s))
		return
	}
}

func copyGrad(g anydiff.Grad) anydiff.Grad {
	res := anydiff.Grad{}
	for v, x := range g {
		res[v] = x.Copy()
	}
	return res
}

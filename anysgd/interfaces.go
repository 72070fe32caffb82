package anysgd

import "github.com/unixpickle/anydiff"

// A SampleList is an ordered, swappable list of training
// samples.
type SampleList interface {
	Len() int
	Swap(i, j int)

	// Slice returns a shallow copy of samples i through j.
	Slice(i, j int) SampleList
}

// A Batch is a materialized mini-batch, produced by a
// Fetcher and consumed by a Gradienter.
type Batch interface{}

// A Fetcher materializes a list of samples.
type Fetcher interface {
	Fetch(s SampleList) (Batch, error)
}

// A Gradienter computes the gradient of the loss for a
// Batch.
// The returned gradient may be reused by later calls.
type Gradienter interface {
	Gradient(b Batch) anydiff.Grad
}

// A Transformer rewrites gradients before each step, for
// example to implement an adaptive optimizer.
//
// A Transformer may modify and return its argument, but
// it may not retain it.
// Every gradient it sees must cover the same variables.
type Transformer interface {
	Transform(g anydiff.Grad) anydiff.Grad
}

// A Rater picks the learning rate for a (possibly
// fractional) epoch.
type Rater interface {
	Rate(epoch float64) float64
}

// A Stopper decides when to stop training.
// SGD.Run consults it before every epoch, so it may also
// act on the epoch that just finished.
type Stopper interface {
	Done() bool
}

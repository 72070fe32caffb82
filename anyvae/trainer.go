package anyvae

import (
	"errors"

	"github.com/tabgen/anycvae"
	"github.com/tabgen/anycvae/anysgd"
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/essentials"
	"gonum.org/v1/gonum/stat"
)

// A Batch stores a packed batch of feature vectors and
// their labels.
type Batch struct {
	Features *anydiff.Const
	Labels   []int
	Num      int
}

// A Trainer constructs batches and computes gradients of
// the mean batch loss of a VAE.
type Trainer struct {
	VAE *VAE

	// Noise is used for the reparameterization step.
	// If nil, RandNoise with the global source is used.
	Noise NoiseSource

	// Params are the variables to differentiate.
	// If nil, every parameter of the VAE is used.
	Params []*anydiff.Var

	// After every gradient computation, LastLoss is set to
	// the losses of the batch.
	LastLoss LossValues
}

// Fetch produces a *Batch for the subset of samples.
// The s argument must implement SampleList.
// The batch may not be empty.
func (t *Trainer) Fetch(s anysgd.SampleList) (anysgd.Batch, error) {
	if s.Len() == 0 {
		return nil, errors.New("fetch batch: empty batch")
	}

	l := s.(SampleList)
	features := make([]anyvec.Vector, l.Len())
	labels := make([]int, l.Len())
	for i := range features {
		sample, err := l.GetSample(i)
		if err != nil {
			return nil, essentials.AddCtx("fetch batch", err)
		}
		features[i] = sample.Features
		labels[i] = sample.Label
	}

	joined := features[0].Creator().Concat(features...)
	return &Batch{
		Features: anydiff.NewConst(joined),
		Labels:   labels,
		Num:      l.Len(),
	}, nil
}

// TotalLoss runs a forward pass on the *Batch and returns
// its losses.
func (t *Trainer) TotalLoss(batch anysgd.Batch) *Loss {
	b := batch.(*Batch)
	return t.VAE.Forward(b.Features, b.Labels, t.noise(), true).Loss
}

func (t *Trainer) noise() NoiseSource {
	if t.Noise == nil {
		return RandNoise{}
	}
	return t.Noise
}

// Gradient computes the gradient of the batch's total
// loss.
// It also sets t.LastLoss.
//
// The b argument must be a *Batch.
func (t *Trainer) Gradient(b anysgd.Batch) anydiff.Grad {
	params := t.Params
	if params == nil {
		params = t.VAE.Parameters()
	}
	anycvae.SetDropout(t.VAE.Encoder, true)
	loss := t.TotalLoss(b)
	anycvae.SetDropout(t.VAE.Encoder, false)

	grad := anydiff.NewGrad(params...)
	c := loss.Total.Output().Creator()
	upstream := c.MakeVector(1)
	upstream.AddScalar(c.MakeNumeric(1))
	loss.Total.Propagate(upstream, grad)

	t.LastLoss = loss.Values()
	return grad
}

// Evaluate computes the mean batch losses over the
// samples, visited in order, without touching the
// parameters.
func (t *Trainer) Evaluate(s SampleList, batchSize int) (LossValues, error) {
	if s.Len() == 0 {
		return LossValues{}, errors.New("evaluate: empty sample list")
	}
	var totals, recons, kls []float64
	for _, samples := range anysgd.Batches(s, batchSize) {
		batch, err := t.Fetch(samples)
		if err != nil {
			return LossValues{}, essentials.AddCtx("evaluate", err)
		}
		values := t.TotalLoss(batch).Values()
		totals = append(totals, values.Total)
		recons = append(recons, values.Reconstruction)
		kls = append(kls, values.KL)
	}
	return LossValues{
		Total:          stat.Mean(totals, nil),
		Reconstruction: stat.Mean(recons, nil),
		KL:             stat.Mean(kls, nil),
	}, nil
}

// RowErrors computes the mean squared reconstruction
// error of every sample, decoding from the latent mean.
func (t *Trainer) RowErrors(s SampleList) ([]float64, error) {
	batch, err := t.Fetch(s)
	if err != nil {
		return nil, essentials.AddCtx("row errors", err)
	}
	b := batch.(*Batch)
	out := t.VAE.Forward(b.Features, b.Labels, ZeroNoise{}, false)
	cost := anycvae.MSE{}.Cost(b.Features, out.Reconstruction, b.Num)
	return vectorFloats(cost.Output()), nil
}

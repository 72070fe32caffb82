package anyvae

import (
	"github.com/tabgen/anycvae"
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
)

// An Output is the result of a forward pass.
type Output struct {
	Mean           anydiff.Res
	Std            anydiff.Res
	Latent         anydiff.Res
	Reconstruction anydiff.Res

	// Loss is nil if the loss was not requested.
	Loss *Loss
}

// A Loss stores the single-component loss terms of a
// forward pass.
type Loss struct {
	Total          anydiff.Res
	Reconstruction anydiff.Res
	KL             anydiff.Res
}

// NewLoss computes the reconstruction error, the KL
// divergence from the standard normal prior, and their
// unweighted sum.
func NewLoss(features, recon, mean, std anydiff.Res) *Loss {
	reconLoss := anycvae.MeanSquaredError(features, recon)
	kl := anycvae.GaussianKL(mean, std)
	return &Loss{
		Total:          anydiff.Add(reconLoss, kl),
		Reconstruction: reconLoss,
		KL:             kl,
	}
}

// Values extracts the numerical loss values.
func (l *Loss) Values() LossValues {
	return LossValues{
		Total:          scalar(l.Total.Output()),
		Reconstruction: scalar(l.Reconstruction.Output()),
		KL:             scalar(l.KL.Output()),
	}
}

// LossValues stores numerical loss values.
type LossValues struct {
	Total          float64
	Reconstruction float64
	KL             float64
}

func scalar(v anyvec.Vector) float64 {
	return vectorFloats(v)[0]
}

func vectorFloats(v anyvec.Vector) []float64 {
	return v.Creator().Float64Slice(v.Data())
}

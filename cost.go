package anycvae

import "github.com/unixpickle/anydiff"

// A Cost provides a way to measure the amount of error
// from the output of a network.
//
// Just like regular Layers, a Cost function is batched.
// It takes a packed batch of desired outputs and actual
// outputs, and produces a batch of costs.
type Cost interface {
	Cost(desired, actual anydiff.Res, n int) anydiff.Res
}

// MSE evaluates cost as the squared Euclidean distance
// between the actual and desired output.
type MSE struct{}

// Cost computes, for each output, the mean squared
// distance between the actual and desired output value.
func (m MSE) Cost(desired, actual anydiff.Res, n int) anydiff.Res {
	neg := anydiff.Scale(actual, actual.Output().Creator().MakeNumeric(-1))
	diff := anydiff.Add(desired, neg)
	sq := anydiff.Square(diff)
	numComps := sq.Output().Len() / n
	sum := anydiff.SumCols(&anydiff.Matrix{
		Data: sq,
		Rows: n,
		Cols: numComps,
	})
	normalizer := 1.0 / float64(numComps)
	return anydiff.Scale(sum, sum.Output().Creator().MakeNumeric(normalizer))
}

// MeanSquaredError computes a single-component mean of
// the squared differences over every element of the
// packed batch.
func MeanSquaredError(desired, actual anydiff.Res) anydiff.Res {
	diff := anydiff.Sub(actual, desired)
	return meanAll(anydiff.Square(diff))
}

// GaussianKL computes the KL divergence between diagonal
// Gaussians N(mean, std^2) and the standard normal prior,
// averaged over every latent element of the batch:
//
//     -0.5 * mean(1 + log(std^2) - mean^2 - std^2)
//
// The result has one component.
func GaussianKL(mean, std anydiff.Res) anydiff.Res {
	c := mean.Output().Creator()
	return anydiff.Pool(mean, func(mean anydiff.Res) anydiff.Res {
		return anydiff.Pool(std, func(std anydiff.Res) anydiff.Res {
			variance := anydiff.Square(std)
			terms := anydiff.Sub(
				anydiff.Sub(Log(variance), anydiff.Square(mean)),
				variance,
			)
			terms = anydiff.AddScalar(terms, c.MakeNumeric(1))
			return anydiff.Scale(
				anydiff.Sum(terms),
				c.MakeNumeric(-0.5/float64(terms.Output().Len())),
			)
		})
	})
}

func meanAll(in anydiff.Res) anydiff.Res {
	c := in.Output().Creator()
	return anydiff.Scale(anydiff.Sum(in), c.MakeNumeric(1/float64(in.Output().Len())))
}

package anyvae

import (
	"math/rand"

	"github.com/unixpickle/anyvec"
)

// A NoiseSource produces the noise for the
// reparameterization step and for prior samples.
type NoiseSource interface {
	Normal(c anyvec.Creator, size int) anyvec.Vector
}

// RandNoise draws independent standard normal values.
type RandNoise struct {
	// Rand is used to draw the noise.
	// If it is nil, the global source is used.
	Rand *rand.Rand
}

// Normal draws size standard normal values.
func (r RandNoise) Normal(c anyvec.Creator, size int) anyvec.Vector {
	res := c.MakeVector(size)
	if r.Rand == nil {
		anyvec.Rand(res, anyvec.Normal, nil)
		return res
	}
	data := make([]float64, size)
	for i := range data {
		data[i] = r.Rand.NormFloat64()
	}
	res.SetData(c.MakeNumericList(data))
	return res
}

// ZeroNoise always produces zeros, which turns sampling
// into taking the mean.
type ZeroNoise struct{}

// Normal returns a zero vector.
func (z ZeroNoise) Normal(c anyvec.Creator, size int) anyvec.Vector {
	return c.MakeVector(size)
}

package anyvae

import (
	"fmt"

	"github.com/tabgen/anycvae/anytab"
	"github.com/unixpickle/anydiff"
	"gonum.org/v1/gonum/mat"
)

// A Generator draws synthetic records from a trained VAE.
type Generator struct {
	VAE      *VAE
	Pipeline *anytab.Pipeline

	// Noise is used to sample the prior.
	// If nil, RandNoise with the global source is used.
	Noise NoiseSource
}

// GenerateFeatures decodes n prior samples conditioned on
// label into a feature matrix with one row per sample.
func (g *Generator) GenerateFeatures(n, label int) (*mat.Dense, error) {
	cfg := g.VAE.Config
	if n <= 0 {
		return nil, fmt.Errorf("invalid sample count: %d", n)
	}
	if label < 0 || label >= cfg.ClassCount {
		return nil, fmt.Errorf("label %d out of range [0, %d)", label, cfg.ClassCount)
	}
	noise := g.Noise
	if noise == nil {
		noise = RandNoise{}
	}

	labels := make([]int, n)
	for i := range labels {
		labels[i] = label
	}
	c := g.VAE.Creator()
	latent := anydiff.NewConst(noise.Normal(c, n*cfg.LatentDim))
	out := g.VAE.Decode(latent, labels)
	return mat.NewDense(n, cfg.FeatureCount, vectorFloats(out.Output())), nil
}

// Generate decodes n prior samples conditioned on label
// into records with the pipeline's output columns.
func (g *Generator) Generate(n, label int) (*anytab.Table, error) {
	features, err := g.GenerateFeatures(n, label)
	if err != nil {
		return nil, err
	}
	return g.Pipeline.InverseTransform(features)
}

package anyvae

import (
	"errors"
	"fmt"

	"github.com/tabgen/anycvae"
)

// Config describes the shape of a VAE.
type Config struct {
	// FeatureCount is the width of a feature vector.
	FeatureCount int

	// ClassCount is the number of conditioning labels.
	ClassCount int

	// LatentDim is the dimensionality of the latent space.
	LatentDim int

	// HiddenDims lists the hidden layer widths of the
	// encoder, from the input side.
	// The decoder uses them in reverse order.
	HiddenDims []int

	// Epsilon is added to every standard deviation.
	Epsilon float64

	// Activation follows every hidden layer.
	Activation anycvae.Activation

	// KeepProb, if between 0 and 1, adds dropout to the
	// encoder input while training.
	KeepProb float64
}

// DefaultConfig creates a Config with the default latent
// dimensionality and hidden layers.
func DefaultConfig(features, classes int) Config {
	return Config{
		FeatureCount: features,
		ClassCount:   classes,
		LatentDim:    10,
		HiddenDims:   []int{64, 32},
		Epsilon:      1e-6,
		Activation:   anycvae.ReLU,
	}
}

// Validate checks that the Config describes a usable
// model.
func (c Config) Validate() error {
	switch {
	case c.FeatureCount <= 0:
		return errors.New("feature count must be positive")
	case c.ClassCount <= 0:
		return errors.New("class count must be positive")
	case c.LatentDim <= 0:
		return errors.New("latent dimension must be positive")
	case c.Epsilon < 0:
		return errors.New("epsilon must not be negative")
	case c.KeepProb < 0 || c.KeepProb > 1:
		return fmt.Errorf("keep probability %f out of range [0, 1]", c.KeepProb)
	}
	for _, h := range c.HiddenDims {
		if h <= 0 {
			return fmt.Errorf("invalid hidden layer width: %d", h)
		}
	}
	return nil
}

func (c Config) dropout() bool {
	return c.KeepProb > 0 && c.KeepProb < 1
}

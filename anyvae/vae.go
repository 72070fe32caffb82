// Package anyvae implements a conditional variational
// autoencoder over packed batches of feature vectors.
package anyvae

import (
	"fmt"
	"math/rand"

	"github.com/tabgen/anycvae"
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

func init() {
	var v VAE
	serializer.RegisterTypedDeserializer(v.SerializerType(), DeserializeVAE)
}

// A VAE is a conditional variational autoencoder.
//
// The encoder maps a feature vector joined with a one-hot
// label to the mean and log-variance of a diagonal
// Gaussian.
// The decoder maps a latent vector joined with the same
// one-hot label to a reconstruction in [0, 1].
type VAE struct {
	Config  Config
	Encoder anycvae.Net
	Decoder anycvae.Net
}

// New creates a randomly initialized VAE.
// If r is nil, the global random source is used.
func New(c anyvec.Creator, cfg Config, r *rand.Rand) (*VAE, error) {
	if err := cfg.Validate(); err != nil {
		return nil, essentials.AddCtx("new VAE", err)
	}

	var encoder anycvae.Net
	if cfg.dropout() {
		encoder = append(encoder, &anycvae.Dropout{KeepProb: cfg.KeepProb, Rand: r})
	}
	inCount := cfg.FeatureCount + cfg.ClassCount
	for _, h := range cfg.HiddenDims {
		encoder = append(encoder, anycvae.NewFC(c, inCount, h, r), cfg.Activation)
		inCount = h
	}
	encoder = append(encoder, anycvae.NewFC(c, inCount, 2*cfg.LatentDim, r))

	var decoder anycvae.Net
	inCount = cfg.LatentDim + cfg.ClassCount
	for i := len(cfg.HiddenDims) - 1; i >= 0; i-- {
		h := cfg.HiddenDims[i]
		decoder = append(decoder, anycvae.NewFC(c, inCount, h, r), cfg.Activation)
		inCount = h
	}
	decoder = append(decoder, anycvae.NewFC(c, inCount, cfg.FeatureCount, r),
		anycvae.Sigmoid)

	return &VAE{Config: cfg, Encoder: encoder, Decoder: decoder}, nil
}

// DeserializeVAE deserializes a VAE.
func DeserializeVAE(d []byte) (*VAE, error) {
	var res VAE
	var features, classes, latent int
	var epsilon float64
	err := serializer.DeserializeAny(d, &res.Encoder, &res.Decoder, &features, &classes,
		&latent, &epsilon)
	if err != nil {
		return nil, essentials.AddCtx("deserialize VAE", err)
	}
	res.Config = Config{
		FeatureCount: features,
		ClassCount:   classes,
		LatentDim:    latent,
		Epsilon:      epsilon,
	}
	for i, layer := range res.Encoder {
		switch layer := layer.(type) {
		case *anycvae.FC:
			if i < len(res.Encoder)-1 {
				res.Config.HiddenDims = append(res.Config.HiddenDims, layer.OutCount)
			}
		case anycvae.Activation:
			res.Config.Activation = layer
		case *anycvae.Dropout:
			res.Config.KeepProb = layer.KeepProb
		}
	}
	if err := res.Config.Validate(); err != nil {
		return nil, essentials.AddCtx("deserialize VAE", err)
	}
	return &res, nil
}

// Creator returns the creator of the model's parameters.
func (v *VAE) Creator() anyvec.Creator {
	return v.Parameters()[0].Vector.Creator()
}

// Encode computes the mean and standard deviation of the
// latent distribution for each row of the batch.
// There must be one label per packed row.
func (v *VAE) Encode(features anydiff.Res, labels []int) (mean, std anydiff.Res) {
	n := len(labels)
	in := anycvae.Condition(features, labels, v.Config.ClassCount)
	out := v.Encoder.Apply(in, n)
	mean, logVar := anycvae.SplitRows(out, n, v.Config.LatentDim)
	c := out.Output().Creator()
	std = anydiff.Exp(anydiff.Scale(logVar, c.MakeNumeric(0.5)))
	std = anydiff.AddScalar(std, c.MakeNumeric(v.Config.Epsilon))
	return mean, std
}

// Reparameterize computes mean + std*noise.
// The result is differentiable with respect to mean and
// std.
func (v *VAE) Reparameterize(mean, std anydiff.Res, noise anyvec.Vector) anydiff.Res {
	if noise.Len() != mean.Output().Len() {
		panic(fmt.Sprintf("noise length should be %d, but got %d",
			mean.Output().Len(), noise.Len()))
	}
	return anydiff.Add(mean, anydiff.Mul(std, anydiff.NewConst(noise)))
}

// Decode reconstructs a batch of feature vectors from a
// batch of latent vectors.
func (v *VAE) Decode(latent anydiff.Res, labels []int) anydiff.Res {
	in := anycvae.Condition(latent, labels, v.Config.ClassCount)
	return v.Decoder.Apply(in, len(labels))
}

// Forward encodes the batch, samples a latent vector for
// every row using noise, and decodes it.
//
// If computeLoss is false, the resulting Output has a nil
// Loss.
func (v *VAE) Forward(features anydiff.Res, labels []int, noise NoiseSource,
	computeLoss bool) *Output {
	mean, std := v.Encode(features, labels)
	c := mean.Output().Creator()
	latent := v.Reparameterize(mean, std, noise.Normal(c, mean.Output().Len()))
	recon := v.Decode(latent, labels)
	res := &Output{
		Mean:           mean,
		Std:            std,
		Latent:         latent,
		Reconstruction: recon,
	}
	if computeLoss {
		res.Loss = NewLoss(features, recon, mean, std)
	}
	return res
}

// Parameters returns the encoder parameters followed by
// the decoder parameters.
func (v *VAE) Parameters() []*anydiff.Var {
	return append(v.Encoder.Parameters(), v.Decoder.Parameters()...)
}

// SerializerType returns the unique ID used to serialize
// a VAE with the serializer package.
func (v *VAE) SerializerType() string {
	return "github.com/tabgen/anycvae/anyvae.VAE"
}

// Serialize serializes the VAE.
func (v *VAE) Serialize() ([]byte, error) {
	return serializer.SerializeAny(
		v.Encoder,
		v.Decoder,
		v.Config.FeatureCount,
		v.Config.ClassCount,
		v.Config.LatentDim,
		v.Config.Epsilon,
	)
}

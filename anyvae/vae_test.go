package anyvae

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tabgen/anycvae"
	"github.com/tabgen/anycvae/anytab"
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anydiff/anydifftest"
	"github.com/unixpickle/anyvec/anyvec64"
	"github.com/unixpickle/serializer"
)

func testVAE(t *testing.T, act anycvae.Activation) *VAE {
	cfg := Config{
		FeatureCount: 7,
		ClassCount:   3,
		LatentDim:    4,
		HiddenDims:   []int{8, 5},
		Epsilon:      1e-6,
		Activation:   act,
	}
	vae, err := New(anyvec64.DefaultCreator{}, cfg, rand.New(rand.NewSource(1337)))
	require.NoError(t, err)
	return vae
}

func testFeatures(r *rand.Rand, n, size int) anydiff.Res {
	data := make([]float64, n*size)
	for i := range data {
		data[i] = r.Float64()
	}
	c := anyvec64.DefaultCreator{}
	return anydiff.NewConst(c.MakeVectorData(data))
}

func TestNewValidates(t *testing.T) {
	_, err := New(anyvec64.DefaultCreator{}, Config{FeatureCount: 3, ClassCount: 2}, nil)
	require.Error(t, err)

	cfg := DefaultConfig(3, 2)
	cfg.HiddenDims = []int{4, 0}
	_, err = New(anyvec64.DefaultCreator{}, cfg, nil)
	require.Error(t, err)
}

func TestNewReproducible(t *testing.T) {
	v1 := testVAE(t, anycvae.ReLU)
	v2 := testVAE(t, anycvae.ReLU)
	p1, p2 := v1.Parameters(), v2.Parameters()
	require.Len(t, p1, 12)
	for i := range p1 {
		require.Equal(t, p1[i].Vector.Data(), p2[i].Vector.Data())
	}
}

func TestEncodeShapes(t *testing.T) {
	vae := testVAE(t, anycvae.ReLU)
	labels := []int{0, 2, 1}
	mean, std := vae.Encode(testFeatures(rand.New(rand.NewSource(1)), 3, 7), labels)
	require.Equal(t, 12, mean.Output().Len())
	require.Equal(t, 12, std.Output().Len())
	for _, x := range vectorFloats(std.Output()) {
		require.True(t, x > 0)
	}
}

func TestDecodeRange(t *testing.T) {
	vae := testVAE(t, anycvae.ReLU)
	r := rand.New(rand.NewSource(2))
	labels := []int{0, 2, 1, 1}
	out := vae.Forward(testFeatures(r, 4, 7), labels, RandNoise{Rand: r}, false)
	require.Nil(t, out.Loss)
	require.Equal(t, 16, out.Latent.Output().Len())

	recon := vectorFloats(out.Reconstruction.Output())
	require.Len(t, recon, 4*7)
	for _, x := range recon {
		require.True(t, x >= 0 && x <= 1, "value out of range: %f", x)
	}
}

func TestReparameterizeZeroNoise(t *testing.T) {
	vae := testVAE(t, anycvae.ReLU)
	c := anyvec64.DefaultCreator{}
	mean := anydiff.NewConst(c.MakeVectorData([]float64{0.5, -3, 2, 0}))
	std := anydiff.NewConst(c.MakeVectorData([]float64{1, 100, 0.001, 7}))
	latent := vae.Reparameterize(mean, std, ZeroNoise{}.Normal(c, 4))
	require.Equal(t, []float64{0.5, -3, 2, 0}, latent.Output().Data())
}

func TestReparameterize(t *testing.T) {
	vae := testVAE(t, anycvae.ReLU)
	c := anyvec64.DefaultCreator{}
	mean := anydiff.NewConst(c.MakeVectorData([]float64{1, 2}))
	std := anydiff.NewConst(c.MakeVectorData([]float64{3, 0.5}))
	noise := c.MakeVectorData([]float64{-1, 2})
	latent := vae.Reparameterize(mean, std, noise)
	require.Equal(t, []float64{-2, 3}, latent.Output().Data())
}

func TestLossDecomposition(t *testing.T) {
	vae := testVAE(t, anycvae.ReLU)
	r := rand.New(rand.NewSource(3))
	out := vae.Forward(testFeatures(r, 5, 7), []int{0, 1, 2, 0, 1}, RandNoise{Rand: r}, true)
	require.NotNil(t, out.Loss)
	values := out.Loss.Values()
	require.Equal(t, values.Reconstruction+values.KL, values.Total)
	require.True(t, values.Reconstruction >= 0)
}

func TestLossGradients(t *testing.T) {
	vae := testVAE(t, anycvae.Tanh)
	features := testFeatures(rand.New(rand.NewSource(4)), 2, 7)
	checker := &anydifftest.ResChecker{
		F: func() anydiff.Res {
			return vae.Forward(features, []int{1, 2}, ZeroNoise{}, true).Loss.Total
		},
		V: vae.Parameters(),
	}
	checker.FullCheck(t)
}

func TestSerializeVAE(t *testing.T) {
	cfg := DefaultConfig(7, 3)
	cfg.KeepProb = 0.9
	cfg.Activation = anycvae.Tanh
	vae, err := New(anyvec64.DefaultCreator{}, cfg, rand.New(rand.NewSource(5)))
	require.NoError(t, err)

	data, err := serializer.SerializeAny(vae)
	require.NoError(t, err)
	var decoded *VAE
	require.NoError(t, serializer.DeserializeAny(data, &decoded))
	require.Equal(t, vae.Config, decoded.Config)

	latent := anydiff.NewConst(RandNoise{Rand: rand.New(rand.NewSource(6))}.Normal(
		anyvec64.DefaultCreator{}, 2*cfg.LatentDim))
	expected := vae.Decode(latent, []int{0, 2}).Output().Data()
	actual := decoded.Decode(latent, []int{0, 2}).Output().Data()
	require.Equal(t, expected, actual)
}

func TestGenerate(t *testing.T) {
	table := &anytab.Table{
		Columns: []string{"a", "color", "b", "label"},
		Rows: [][]string{
			{"1", "red", "10", "yes"},
			{"2", "green", "20", "no"},
			{"3", "blue", "15", "yes"},
			{"4", "red", "12", "no"},
		},
	}
	pipeline, err := anytab.InferColumns(table, []string{"color"}, "label")
	require.NoError(t, err)
	require.NoError(t, pipeline.Fit(table))

	cfg := DefaultConfig(pipeline.FeatureCount(), pipeline.NumClasses())
	vae, err := New(anyvec64.DefaultCreator{}, cfg, rand.New(rand.NewSource(7)))
	require.NoError(t, err)

	gen := &Generator{
		VAE:      vae,
		Pipeline: pipeline,
		Noise:    RandNoise{Rand: rand.New(rand.NewSource(8))},
	}
	samples, err := gen.Generate(6, 1)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "color"}, samples.Columns)
	require.Equal(t, 6, samples.Len())
	for _, row := range samples.Rows {
		require.Contains(t, []string{"blue", "green", "red"}, row[2])
	}

	_, err = gen.Generate(1, 2)
	require.Error(t, err)
	_, err = gen.Generate(0, 0)
	require.Error(t, err)
}

func TestNoiseSources(t *testing.T) {
	c := anyvec64.DefaultCreator{}
	n1 := RandNoise{Rand: rand.New(rand.NewSource(9))}.Normal(c, 5)
	n2 := RandNoise{Rand: rand.New(rand.NewSource(9))}.Normal(c, 5)
	require.Equal(t, n1.Data(), n2.Data())
	require.Equal(t, make([]float64, 5), ZeroNoise{}.Normal(c, 5).Data())
}

func testFeaturesFrom(data []float64) anydiff.Res {
	c := anyvec64.DefaultCreator{}
	return anydiff.NewConst(c.MakeVectorData(append([]float64{}, data...)))
}

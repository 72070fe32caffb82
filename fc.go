package anycvae

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/anyvec/anyvecsave"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

func init() {
	var f FC
	serializer.RegisterTypedDeserializer(f.SerializerType(), DeserializeFC)
}

// FC is a fully-connected layer.
//
// Weights is a row-major OutCount by InCount matrix.
type FC struct {
	InCount  int
	OutCount int
	Weights  *anydiff.Var
	Biases   *anydiff.Var
}

// NewFC creates an FC with zero biases and normally
// distributed weights of variance 1/in, so that unit
// variance inputs give roughly unit variance outputs.
//
// Weights are drawn from r, or from the global source if
// r is nil.
func NewFC(c anyvec.Creator, in, out int, r *rand.Rand) *FC {
	weights := c.MakeVector(in * out)
	if r == nil {
		anyvec.Rand(weights, anyvec.Normal, nil)
	} else {
		data := make([]float64, in*out)
		for i := range data {
			data[i] = r.NormFloat64()
		}
		weights.SetData(c.MakeNumericList(data))
	}
	weights.Scale(c.MakeNumeric(1 / math.Sqrt(float64(in))))
	return &FC{
		InCount:  in,
		OutCount: out,
		Weights:  anydiff.NewVar(weights),
		Biases:   anydiff.NewVar(c.MakeVector(out)),
	}
}

// DeserializeFC deserializes an FC.
// The layer dimensions are recovered from the vector
// lengths.
func DeserializeFC(d []byte) (*FC, error) {
	var weights, biases *anyvecsave.S
	if err := serializer.DeserializeAny(d, &weights, &biases); err != nil {
		return nil, essentials.AddCtx("deserialize FC", err)
	}
	out := biases.Vector.Len()
	if out == 0 || weights.Vector.Len()%out != 0 {
		return nil, fmt.Errorf("deserialize FC: %d weights do not fit %d outputs",
			weights.Vector.Len(), out)
	}
	return &FC{
		InCount:  weights.Vector.Len() / out,
		OutCount: out,
		Weights:  anydiff.NewVar(weights.Vector),
		Biases:   anydiff.NewVar(biases.Vector),
	}, nil
}

// Apply computes in*W^T + b for every packed row.
func (f *FC) Apply(in anydiff.Res, n int) anydiff.Res {
	if n*f.InCount != in.Output().Len() {
		panic(fmt.Sprintf("FC input length should be %d, but got %d",
			n*f.InCount, in.Output().Len()))
	}
	product := anydiff.MatMul(false, true,
		&anydiff.Matrix{Data: in, Rows: n, Cols: f.InCount},
		&anydiff.Matrix{Data: f.Weights, Rows: f.OutCount, Cols: f.InCount},
	)
	return anydiff.AddRepeated(product.Data, f.Biases)
}

// Parameters returns the weights and the biases.
func (f *FC) Parameters() []*anydiff.Var {
	return []*anydiff.Var{f.Weights, f.Biases}
}

// SerializerType returns the unique ID used to serialize
// an FC with the serializer package.
func (f *FC) SerializerType() string {
	return "github.com/tabgen/anycvae.FC"
}

// Serialize serializes the weights and biases.
func (f *FC) Serialize() ([]byte, error) {
	return serializer.SerializeAny(
		&anyvecsave.S{Vector: f.Weights.Vector},
		&anyvecsave.S{Vector: f.Biases.Vector},
	)
}

package anycvae

import (
	"math/rand"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

func init() {
	var d Dropout
	serializer.RegisterTypedDeserializer(d.SerializerType(), DeserializeDropout)
}

// A Dropout layer zeroes random components while it is
// enabled and scales the kept ones by 1/KeepProb.
// While disabled, it passes its input through.
type Dropout struct {
	// Enabled is training-time state; it is not
	// serialized.
	Enabled bool

	// KeepProb is the probability of keeping a component.
	KeepProb float64

	// Rand, if non-nil, draws the masks.
	// It is not serialized.
	Rand *rand.Rand
}

// DeserializeDropout deserializes a disabled Dropout.
func DeserializeDropout(d []byte) (*Dropout, error) {
	var keepProb float64
	if err := serializer.DeserializeAny(d, &keepProb); err != nil {
		return nil, essentials.AddCtx("deserialize Dropout", err)
	}
	return &Dropout{KeepProb: keepProb}, nil
}

// Apply applies the layer.
func (d *Dropout) Apply(in anydiff.Res, n int) anydiff.Res {
	if !d.Enabled {
		return in
	}
	c := in.Output().Creator()
	mask := d.mask(c, in.Output().Len())
	mask.Scale(c.MakeNumeric(1 / d.KeepProb))
	return anydiff.Mul(in, anydiff.NewConst(mask))
}

func (d *Dropout) mask(c anyvec.Creator, size int) anyvec.Vector {
	if d.Rand == nil {
		mask := c.MakeVector(size)
		anyvec.Rand(mask, anyvec.Uniform, nil)
		anyvec.LessThan(mask, c.MakeNumeric(d.KeepProb))
		return mask
	}
	data := make([]float64, size)
	for i := range data {
		if d.Rand.Float64() < d.KeepProb {
			data[i] = 1
		}
	}
	return c.MakeVectorData(c.MakeNumericList(data))
}

// SerializerType returns the unique ID used to serialize
// a Dropout with the serializer package.
func (d *Dropout) SerializerType() string {
	return "github.com/tabgen/anycvae.Dropout"
}

// Serialize serializes the keep probability.
func (d *Dropout) Serialize() ([]byte, error) {
	return serializer.SerializeAny(d.KeepProb)
}

// SetDropout enables or disables every Dropout layer in
// the network.
func SetDropout(n Net, enabled bool) {
	for _, l := range n {
		if d, ok := l.(*Dropout); ok {
			d.Enabled = enabled
		}
	}
}

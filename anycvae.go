// Package anycvae provides the batched building blocks
// for a conditional variational autoencoder over tabular
// records: layers, costs, and label conditioning.
//
// Every layer works on packed batches: a batch of n rows
// is a single vector whose length is a multiple of n.
//
// Sub-packages implement the model itself (anyvae), the
// optimizer loop (anysgd), tabular preprocessing (anytab),
// metric sinks (anysink), training orchestration
// (anytrain), and model files (anyio).
package anycvae

import (
	"fmt"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

func init() {
	var n Net
	serializer.RegisterTypedDeserializer(n.SerializerType(), DeserializeNet)
}

// A Parameterizer has learnable variables, always listed
// in the same order.
type Parameterizer interface {
	Parameters() []*anydiff.Var
}

// A Layer maps a packed batch of n rows to another packed
// batch of n rows.
type Layer interface {
	Apply(in anydiff.Res, n int) anydiff.Res
}

// A Net applies its layers in order.
// An empty Net is the identity.
type Net []Layer

// DeserializeNet deserializes a Net whose layers were all
// registered with the serializer package.
func DeserializeNet(d []byte) (Net, error) {
	slice, err := serializer.DeserializeSlice(d)
	if err != nil {
		return nil, essentials.AddCtx("deserialize Net", err)
	}
	res := make(Net, 0, len(slice))
	for _, obj := range slice {
		layer, ok := obj.(Layer)
		if !ok {
			return nil, fmt.Errorf("deserialize Net: not a Layer: %T", obj)
		}
		res = append(res, layer)
	}
	return res, nil
}

// Apply applies every layer to the batch.
func (n Net) Apply(in anydiff.Res, batch int) anydiff.Res {
	for _, layer := range n {
		in = layer.Apply(in, batch)
	}
	return in
}

// Parameters concatenates the parameters of the layers.
func (n Net) Parameters() []*anydiff.Var {
	var res []*anydiff.Var
	for _, layer := range n {
		if p, ok := layer.(Parameterizer); ok {
			res = append(res, p.Parameters()...)
		}
	}
	return res
}

// OutCount returns the output width of the last FC layer,
// or 0 if there is none.
func (n Net) OutCount() int {
	for i := len(n) - 1; i >= 0; i-- {
		if fc, ok := n[i].(*FC); ok {
			return fc.OutCount
		}
	}
	return 0
}

// SerializerType returns the unique ID used to serialize
// a Net with the serializer package.
func (n Net) SerializerType() string {
	return "github.com/tabgen/anycvae.Net"
}

// Serialize serializes the layers.
// It fails if a layer is not a serializer.Serializer.
func (n Net) Serialize() ([]byte, error) {
	slice := make([]serializer.Serializer, len(n))
	for i, layer := range n {
		s, ok := layer.(serializer.Serializer)
		if !ok {
			return nil, fmt.Errorf("serialize Net: not a Serializer: %T", layer)
		}
		slice[i] = s
	}
	return serializer.SerializeSlice(slice)
}

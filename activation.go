package anycvae

import (
	"fmt"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/serializer"
)

func init() {
	var a Activation
	serializer.RegisterTypedDeserializer(a.SerializerType(), DeserializeActivation)
}

// An Activation is a standard activation function.
type Activation int

// These are the supported activation functions.
const (
	Tanh Activation = iota
	Sigmoid
	ReLU
	SELU
)

const (
	seluAlpha  = 1.6732632423543772848170429916717
	seluLambda = 1.0507009873554804934193349852946
)

// ParseActivation maps a flag value ("tanh", "sigmoid",
// "relu" or "selu") to an Activation.
func ParseActivation(name string) (Activation, error) {
	switch name {
	case "tanh":
		return Tanh, nil
	case "sigmoid":
		return Sigmoid, nil
	case "relu":
		return ReLU, nil
	case "selu":
		return SELU, nil
	default:
		return 0, fmt.Errorf("unknown activation: %s", name)
	}
}

// DeserializeActivation deserializes an Activation.
func DeserializeActivation(d []byte) (Activation, error) {
	if len(d) != 1 {
		return 0, fmt.Errorf("deserialize Activation: data length (%d) should be 1", len(d))
	}
	a := Activation(d[0])
	if a > SELU {
		return 0, fmt.Errorf("deserialize Activation: unknown activation ID: %d", a)
	}
	return a, nil
}

// Apply applies the activation function.
func (a Activation) Apply(in anydiff.Res, n int) anydiff.Res {
	switch a {
	case Tanh:
		return anydiff.Tanh(in)
	case Sigmoid:
		return anydiff.Sigmoid(in)
	case ReLU:
		return anydiff.ClipPos(in)
	case SELU:
		return selu(in)
	default:
		panic(fmt.Sprintf("unknown activation: %d", a))
	}
}

// String returns the flag name of the activation.
func (a Activation) String() string {
	switch a {
	case Tanh:
		return "tanh"
	case Sigmoid:
		return "sigmoid"
	case ReLU:
		return "relu"
	case SELU:
		return "selu"
	default:
		return fmt.Sprintf("Activation(%d)", int(a))
	}
}

// SerializerType returns the unique ID used to serialize
// an Activation.
func (a Activation) SerializerType() string {
	return "github.com/tabgen/anycvae.Activation"
}

// Serialize serializes the activation.
func (a Activation) Serialize() ([]byte, error) {
	return []byte{byte(a)}, nil
}

// selu is the scaled exponential linear unit with the
// self-normalizing constants of https://arxiv.org/abs/1706.02515.
func selu(in anydiff.Res) anydiff.Res {
	c := in.Output().Creator()
	return anydiff.Pool(in, func(in anydiff.Res) anydiff.Res {
		posPart := anydiff.ClipPos(in)
		negPart := anydiff.Scale(
			anydiff.ClipPos(anydiff.Scale(in, c.MakeNumeric(-1))),
			c.MakeNumeric(-1),
		)
		return anydiff.Scale(
			anydiff.AddScalar(
				anydiff.Add(posPart, anydiff.Scale(anydiff.Exp(negPart), c.MakeNumeric(seluAlpha))),
				c.MakeNumeric(-seluAlpha),
			),
			c.MakeNumeric(seluLambda),
		)
	})
}

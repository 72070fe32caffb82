package anysgd

import (
	"fmt"
	"math"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
)

const (
	adamDefaultDecayRate1  = 0.9
	adamDefaultDecayRate2  = 0.999
	rmspropDefaultDecay    = 0.9
	defaultMomentum        = 0.9
	transformerDampingTerm = 1e-8
)

// NewTransformer creates a gradient transformer by name.
//
// Supported names are "adam", "rmsprop", "momentum" and
// "sgd", which yields a nil Transformer (plain gradient
// steps).
func NewTransformer(name string) (Transformer, error) {
	switch name {
	case "adam":
		return &Adam{}, nil
	case "rmsprop":
		return &RMSProp{}, nil
	case "momentum":
		return &Momentum{}, nil
	case "sgd":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown optimizer: %s", name)
	}
}

// Adam implements the adaptive moments SGD technique
// described in https://arxiv.org/pdf/1412.6980.pdf.
//
// Zero fields take the defaults suggested in the paper.
type Adam struct {
	DecayRate1, DecayRate2 float64

	// Damping is added to the second moment before taking
	// its square root.
	Damping float64

	firstMoment  anydiff.Grad
	secondMoment anydiff.Grad
	iteration    float64
}

// Transform replaces the gradient with its bias-corrected
// first moment divided by the root of its second moment.
//
// This is not thread-safe.
func (a *Adam) Transform(g anydiff.Grad) anydiff.Grad {
	rate1 := valueOrDefault(a.DecayRate1, adamDefaultDecayRate1)
	rate2 := valueOrDefault(a.DecayRate2, adamDefaultDecayRate2)
	a.firstMoment = runningAverage(a.firstMoment, g, rate1, false)
	a.secondMoment = runningAverage(a.secondMoment, g, rate2, true)

	a.iteration++
	correction := math.Sqrt(1-math.Pow(rate2, a.iteration)) /
		(1 - math.Pow(rate1, a.iteration))
	damping := valueOrDefault(a.Damping, transformerDampingTerm)
	for v, vec := range g {
		vec.Set(a.firstMoment[v])
		vec.Scale(vec.Creator().MakeNumeric(correction))
		vec.Div(dampedPow(a.secondMoment[v], damping, 0.5))
	}
	return g
}

// RMSProp divides the gradient by the root of a running
// average of its square; see
// http://www.cs.toronto.edu/~tijmen/csc321/slides/lecture_slides_lec6.pdf.
type RMSProp struct {
	// DecayRate defaults to 0.9.
	DecayRate float64

	// Damping defaults to 1e-8.
	Damping float64

	moment anydiff.Grad
}

// Transform scales the gradient.
//
// This is not thread-safe.
func (r *RMSProp) Transform(g anydiff.Grad) anydiff.Grad {
	rate := valueOrDefault(r.DecayRate, rmspropDefaultDecay)
	if r.moment == nil {
		rate = 0
	}
	r.moment = runningAverage(r.moment, g, rate, true)
	damping := valueOrDefault(r.Damping, transformerDampingTerm)
	for v, vec := range g {
		vec.Mul(dampedPow(r.moment[v], damping, -0.5))
	}
	return g
}

// Momentum implements SGD with momentum.
//
// The transformed gradient v is computed as
//
//     v := momentum * v + grad
type Momentum struct {
	// Momentum defaults to 0.9.
	Momentum float64

	rolling anydiff.Grad
}

// Transform transforms the gradient using momentum.
//
// This is not thread-safe.
func (m *Momentum) Transform(g anydiff.Grad) anydiff.Grad {
	if m.rolling == nil {
		m.rolling = copyGrad(g)
		return g
	}
	momentum := valueOrDefault(m.Momentum, defaultMomentum)
	for v, rolling := range m.rolling {
		rolling.Scale(rolling.Creator().MakeNumeric(momentum))
		rolling.Add(g[v])
		g[v].Set(rolling)
	}
	return g
}

// runningAverage computes avg*rate + (1-rate)*g, or the
// element-wise square of g if square is set.
// A nil avg is treated as zero.
func runningAverage(avg, g anydiff.Grad, rate float64, square bool) anydiff.Grad {
	if avg == nil {
		avg = anydiff.Grad{}
	}
	for v, vec := range g {
		term := vec.Copy()
		if square {
			anyvec.Pow(term, term.Creator().MakeNumeric(2))
		}
		term.Scale(term.Creator().MakeNumeric(1 - rate))
		if old, ok := avg[v]; ok {
			old.Scale(old.Creator().MakeNumeric(rate))
			old.Add(term)
		} else {
			avg[v] = term
		}
	}
	return avg
}

func dampedPow(vec anyvec.Vector, damping, power float64) anyvec.Vector {
	res := vec.Copy()
	res.AddScalar(res.Creator().MakeNumeric(damping))
	anyvec.Pow(res, res.Creator().MakeNumeric(power))
	return res
}

package anysgd

import "math/rand"

// Shuffle shuffles a list of samples using r, or the
// global source if r is nil.
func Shuffle(s SampleList, r *rand.Rand) {
	intn := rand.Intn
	if r != nil {
		intn = r.Intn
	}
	for i := 0; i < s.Len(); i++ {
		j := i + intn(s.Len()-i)
		s.Swap(i, j)
	}
}

// A ConstRater is a Rater which always returns the same
// constant learning rate.
type ConstRater float64

// Rate returns float64(c).
func (c ConstRater) Rate(epoch float64) float64 {
	return float64(c)
}

// An EpochStopper is a Stopper that is done after a fixed
// number of calls to Done.
type EpochStopper struct {
	Remaining int
}

// Done returns true once Remaining calls have been made.
func (e *EpochStopper) Done() bool {
	if e.Remaining <= 0 {
		return true
	}
	e.Remaining--
	return false
}

func valueOrDefault(value, def float64) float64 {
	if value == 0 {
		return def
	}
	return value
}

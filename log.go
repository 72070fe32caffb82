package anycvae

import (
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
)

type logRes struct {
	In     anydiff.Res
	OutVec anyvec.Vector
}

// Log computes the natural logarithm of every component.
// Every input component must be positive.
func Log(in anydiff.Res) anydiff.Res {
	out := in.Output().Copy()
	anyvec.Log(out)
	return &logRes{In: in, OutVec: out}
}

func (l *logRes) Output() anyvec.Vector {
	return l.OutVec
}

func (l *logRes) Vars() anydiff.VarSet {
	return l.In.Vars()
}

func (l *logRes) Propagate(u anyvec.Vector, g anydiff.Grad) {
	if !g.Intersects(l.In.Vars()) {
		return
	}
	downstream := u.Copy()
	downstream.Div(l.In.Output())
	l.In.Propagate(downstream, g)
}

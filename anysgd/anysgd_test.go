package anysgd

import (
	"crypto/md5"
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/anyvec/anyvec64"
)

type testSample struct {
	X2 float64
	Y2 float64
	XY float64
	X  float64
	Y  float64
}

func (t *testSample) Apply(x, y anydiff.Res) anydiff.Res {
	mk := x.Output().Creator().MakeNumeric
	a := anydiff.Scale(anydiff.Mul(x, x), mk(t.X2))
	b := anydiff.Scale(anydiff.Mul(y, y), mk(t.Y2))
	c := anydiff.Scale(anydiff.Mul(x, y), mk(t.XY))
	d := anydiff.Scale(x, mk(t.X))
	e := anydiff.Scale(y, mk(t.Y))
	return anydiff.Add(
		anydiff.Add(a, b),
		anydiff.Add(anydiff.Add(c, d), e),
	)
}

type testSampleList []*testSample

func newTestSampleList() testSampleList {
	// Together, these polynomials add up to 3x^2+3xy-2x+y^2.
	// The global minimum is (x = 4/3, y = -2).
	return testSampleList{
		{X2: 2, X: -1, XY: 0, Y2: 0.5},
		{X2: -1, X: 0, XY: 2, Y2: 0.5},
		{X2: 2, X: -1, XY: 1, Y2: 0},
	}
}

func (t testSampleList) Len() int {
	return len(t)
}

func (t testSampleList) Swap(i, j int) {
	t[i], t[j] = t[j], t[i]
}

func (t testSampleList) Slice(i, j int) SampleList {
	return append(testSampleList{}, t[i:j]...)
}

func (t testSampleList) Hash(i int) []byte {
	h := md5.Sum([]byte(fmt.Sprint(*t[i])))
	return h[:]
}

type identityFetcher struct{}

func (identityFetcher) Fetch(s SampleList) (Batch, error) {
	return s, nil
}

type testGradienter struct {
	X *anydiff.Var
	Y *anydiff.Var

	Batches int
}

func newTestGradienter(c anyvec.Creator) *testGradienter {
	return &testGradienter{
		X: anydiff.NewVar(c.MakeVector(1)),
		Y: anydiff.NewVar(c.MakeVector(1)),
	}
}

func (t *testGradienter) Gradient(b Batch) anydiff.Grad {
	t.Batches++
	var cost anydiff.Res
	for _, x := range b.(testSampleList) {
		res := x.Apply(t.X, t.Y)
		if cost == nil {
			cost = res
		} else {
			cost = anydiff.Add(cost, res)
		}
	}
	grad := anydiff.NewGrad(t.X, t.Y)
	c := t.X.Vector.Creator()
	cost.Propagate(c.MakeVectorData(c.MakeNumericList([]float64{1})), grad)
	return grad
}

func (t *testGradienter) current() (x, y float64) {
	return t.X.Vector.Data().([]float64)[0], t.Y.Vector.Data().([]float64)[0]
}

func (t *testGradienter) errorMargin() float64 {
	x, y := t.current()
	return math.Max(math.Abs(x-4.0/3), math.Abs(y+2))
}

func TestSGDFullBatch(t *testing.T) {
	g := newTestGradienter(anyvec64.DefaultCreator{})
	s := &SGD{
		Fetcher:    identityFetcher{},
		Gradienter: g,
		Samples:    newTestSampleList(),
		Rater:      ConstRater(0.05),
		Rand:       rand.New(rand.NewSource(1)),
	}

	require.NoError(t, s.Run(&EpochStopper{Remaining: 3000}))
	require.Equal(t, 3000, g.Batches)
	require.Equal(t, 9000, s.NumProcessed)
	require.Less(t, g.errorMargin(), 1e-4)
}

func TestAdam(t *testing.T) {
	g := newTestGradienter(anyvec64.DefaultCreator{})
	s := &SGD{
		Fetcher:     identityFetcher{},
		Gradienter:  g,
		Transformer: &Adam{},
		Samples:     newTestSampleList(),
		Rater:       ConstRater(0.001),
		BatchSize:   1,
		Rand:        rand.New(rand.NewSource(1)),
	}

	require.NoError(t, s.Run(&EpochStopper{Remaining: 35000}))

	if g.errorMargin() > 1e-2 {
		x, y := g.current()
		t.Errorf("bad solution: %f, %f", x, y)
	}
}

func TestFullBatchTransformers(t *testing.T) {
	tests := []struct {
		name   string
		tr     Transformer
		rate   float64
		epochs int
	}{
		{"momentum", &Momentum{}, 0.01, 3000},
		{"rmsprop", &RMSProp{}, 0.001, 5000},
		{"adam", &Adam{}, 0.001, 10000},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			g := newTestGradienter(anyvec64.DefaultCreator{})
			s := &SGD{
				Fetcher:     identityFetcher{},
				Gradienter:  g,
				Transformer: test.tr,
				Samples:     newTestSampleList(),
				Rater:       ConstRater(test.rate),
			}
			require.NoError(t, s.Run(&EpochStopper{Remaining: test.epochs}))
			require.Less(t, g.errorMargin(), 1e-2)
		})
	}
}

func TestSGDStatusFunc(t *testing.T) {
	g := newTestGradienter(anyvec64.DefaultCreator{})
	var sizes []int
	s := &SGD{
		Fetcher:    identityFetcher{},
		Gradienter: g,
		Samples:    newTestSampleList(),
		Rater:      ConstRater(0.01),
		BatchSize:  2,
		StatusFunc: func(b Batch) {
			sizes = append(sizes, b.(SampleList).Len())
		},
	}
	require.NoError(t, s.Epoch())
	require.Equal(t, []int{2, 1}, sizes)
}

func TestBatches(t *testing.T) {
	list := newTestSampleList()
	batches := Batches(list, 2)
	require.Len(t, batches, 2)
	require.Equal(t, list[:2], batches[0])
	require.Equal(t, list[2:], batches[1])

	require.Len(t, Batches(list, 0), 1)
	require.Len(t, Batches(list, 10), 1)
}

func TestShuffleDeterministic(t *testing.T) {
	l1 := newTestSampleList()
	l2 := newTestSampleList()
	Shuffle(l1, rand.New(rand.NewSource(42)))
	Shuffle(l2, rand.New(rand.NewSource(42)))
	require.Equal(t, l1, l2)
}

func TestNewTransformer(t *testing.T) {
	for _, name := range []string{"adam", "rmsprop", "momentum"} {
		tr, err := NewTransformer(name)
		require.NoError(t, err)
		require.NotNil(t, tr)
	}
	tr, err := NewTransformer("sgd")
	require.NoError(t, err)
	require.Nil(t, tr)
	_, err = NewTransformer("lbfgs")
	require.Error(t, err)
}

// Package anytrain drives the training and evaluation of
// a conditional VAE.
package anytrain

import (
	"bytes"
	"errors"
	"math/rand"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/tabgen/anycvae/anysgd"
	"github.com/tabgen/anycvae/anysink"
	"github.com/tabgen/anycvae/anyvae"
	"github.com/unixpickle/essentials"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Params controls a training run.
type Params struct {
	Epochs       int
	BatchSize    int
	LearningRate float64

	// Optimizer names the gradient transformer, as accepted
	// by anysgd.NewTransformer.
	// If empty, "adam" is used.
	Optimizer string

	// ReportInterval is the number of steps between loss
	// reports. If 0, no step losses are reported.
	ReportInterval int

	// SampleInterval is the number of epochs between
	// generated sample dumps. If 0, no samples are drawn.
	SampleInterval int
	SampleCount    int
	SampleLabel    int
}

// DefaultParams returns the default training parameters.
func DefaultParams() Params {
	return Params{
		Epochs:         10,
		BatchSize:      64,
		LearningRate:   1e-3,
		Optimizer:      "adam",
		ReportInterval: 10,
		SampleCount:    5,
	}
}

// An EpochResult summarizes one epoch.
type EpochResult struct {
	Epoch int

	// Train holds the mean batch losses of the epoch.
	Train anyvae.LossValues

	// Test is nil when there is no test set.
	Test *anyvae.LossValues
}

// Train trains vae on trainSet for p.Epochs epochs.
//
// After every epoch, the test set (if non-empty) is
// evaluated and, every p.SampleInterval epochs, the
// generator (if non-nil) writes samples to the sink.
//
// The r argument drives shuffling and the
// reparameterization noise.
func Train(p Params, vae *anyvae.VAE, trainSet, testSet anyvae.SampleList,
	gen *anyvae.Generator, sink anysink.Sink, r *rand.Rand) ([]EpochResult, error) {
	if trainSet.Len() == 0 {
		return nil, errors.New("no data to train")
	}
	if sink == nil {
		sink = anysink.Discard{}
	}
	optimizer := p.Optimizer
	if optimizer == "" {
		optimizer = "adam"
	}
	transformer, err := anysgd.NewTransformer(optimizer)
	if err != nil {
		return nil, err
	}

	trainer := &anyvae.Trainer{
		VAE:   vae,
		Noise: anyvae.RandNoise{Rand: r},
	}

	monitor := &epochMonitor{
		params:  p,
		trainer: trainer,
		testSet: testSet,
		gen:     gen,
		sink:    sink,
		epochs:  anysgd.EpochStopper{Remaining: p.Epochs},
	}
	sgd := &anysgd.SGD{
		Fetcher:     trainer,
		Gradienter:  trainer,
		Transformer: transformer,
		Samples:     trainSet,
		Rater:       anysgd.ConstRater(p.LearningRate),
		BatchSize:   p.BatchSize,
		Rand:        r,
		StatusFunc:  monitor.step,
	}
	if err := sgd.Run(monitor); err != nil {
		return monitor.results, essentials.AddCtx("train", err)
	}
	return monitor.results, monitor.err
}

// epochMonitor records step losses and, when consulted
// between epochs, summarizes the finished epoch.
type epochMonitor struct {
	params  Params
	trainer *anyvae.Trainer
	testSet anyvae.SampleList
	gen     *anyvae.Generator
	sink    anysink.Sink
	epochs  anysgd.EpochStopper

	started bool
	epoch   int
	steps   int

	totals, recons, kls []float64

	results []EpochResult
	err     error
}

func (m *epochMonitor) step(b anysgd.Batch) {
	loss := m.trainer.LastLoss
	m.totals = append(m.totals, loss.Total)
	m.recons = append(m.recons, loss.Reconstruction)
	m.kls = append(m.kls, loss.KL)
	if m.params.ReportInterval > 0 && m.steps%m.params.ReportInterval == 0 {
		m.sink.Scalar("train/total", m.steps, loss.Total)
		m.sink.Scalar("train/reconstruction", m.steps, loss.Reconstruction)
		m.sink.Scalar("train/kl", m.steps, loss.KL)
	}
	m.steps++
}

// Done is called before every epoch.
func (m *epochMonitor) Done() bool {
	if m.started {
		m.err = m.finishEpoch()
		m.epoch++
		if m.err != nil {
			return true
		}
	}
	m.started = true
	m.totals, m.recons, m.kls = m.totals[:0], m.recons[:0], m.kls[:0]
	return m.epochs.Done()
}

func (m *epochMonitor) finishEpoch() error {
	result := EpochResult{
		Epoch: m.epoch,
		Train: anyvae.LossValues{
			Total:          stat.Mean(m.totals, nil),
			Reconstruction: stat.Mean(m.recons, nil),
			KL:             stat.Mean(m.kls, nil),
		},
	}
	log.Info().Int("Epoch", m.epoch).Float64("Loss", result.Train.Total).
		Float64("Reconstruction", result.Train.Reconstruction).
		Float64("KL", result.Train.KL).Msg("Train")

	if m.testSet != nil && m.testSet.Len() > 0 {
		test, err := evaluate(m.trainer, m.testSet, m.params.BatchSize)
		if err != nil {
			return err
		}
		result.Test = test
		m.sink.Scalar("test/total", m.epoch, test.Total)
		m.sink.Scalar("test/reconstruction", m.epoch, test.Reconstruction)
		m.sink.Scalar("test/kl", m.epoch, test.KL)
	}
	m.results = append(m.results, result)

	if m.gen != nil && m.params.SampleInterval > 0 && (m.epoch+1)%m.params.SampleInterval == 0 {
		return writeSamples(m.gen, m.params, m.epoch, m.sink)
	}
	return nil
}

func evaluate(trainer *anyvae.Trainer, testSet anyvae.SampleList,
	batchSize int) (*anyvae.LossValues, error) {
	test, err := trainer.Evaluate(testSet, batchSize)
	if err != nil {
		return nil, essentials.AddCtx("train", err)
	}
	rowErrors, err := trainer.RowErrors(testSet)
	if err != nil {
		return nil, essentials.AddCtx("train", err)
	}
	sorted := append([]float64{}, rowErrors...)
	sort.Float64s(sorted)
	log.Info().Float64("Loss", test.Total).
		Float64("Reconstruction", test.Reconstruction).
		Float64("KL", test.KL).
		Float64("MedianRowMSE", stat.Quantile(0.5, stat.Empirical, sorted, nil)).
		Float64("MaxRowMSE", floats.Max(rowErrors)).
		Msg("Test")
	return &test, nil
}

func writeSamples(gen *anyvae.Generator, p Params, epoch int, sink anysink.Sink) error {
	samples, err := gen.Generate(p.SampleCount, p.SampleLabel)
	if err != nil {
		return essentials.AddCtx("train", err)
	}
	var buf bytes.Buffer
	if err := samples.WriteCSV(&buf); err != nil {
		return essentials.AddCtx("train", err)
	}
	sink.Text("samples", epoch, buf.String())
	return nil
}

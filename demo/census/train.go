package main

import (
	"fmt"
	"math/rand"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/tabgen/anycvae"
	"github.com/tabgen/anycvae/anyio"
	"github.com/tabgen/anycvae/anysgd"
	"github.com/tabgen/anycvae/anysink"
	"github.com/tabgen/anycvae/anytab"
	"github.com/tabgen/anycvae/anytrain"
	"github.com/tabgen/anycvae/anyvae"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/anyvec/anyvec32"
	"github.com/unixpickle/anyvec/anyvec64"
)

type trainOptions struct {
	InputFile          string
	OutputFile         string
	TargetColumn       string
	NumericColumns     []string
	CategoricalColumns []string
	TestRatio          float64
	Precision          int
	RndSeed            int64
	Activation         string
	InputDropout       float64
	PlotFile           string
}

func TrainCommand() *cobra.Command {
	var opts trainOptions
	params := anytrain.DefaultParams()
	config := anyvae.DefaultConfig(0, 0)

	var cmd = &cobra.Command{
		Use:   "train -i data.csv -t target -o model",
		Short: "Trains a conditional VAE on the provided data and saves the trained model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return train(opts, params, config)
		},
	}

	cmd.Flags().StringVarP(&opts.InputFile, "input-file", "i", "", "name of the CSV data file")
	cmd.Flags().StringVarP(&opts.OutputFile, "output-file", "o", "", "name of the file to save the model to")
	cmd.Flags().StringVarP(&opts.TargetColumn, "target-column", "t", "", "column holding the conditioning category")
	cmd.Flags().StringSliceVarP(&opts.NumericColumns, "numeric-columns", "", nil, "list of numeric columns (default: every non-categorical column)")
	cmd.Flags().StringSliceVarP(&opts.CategoricalColumns, "categorical-columns", "", nil, "list of columns holding categorical data")
	cmd.Flags().Float64VarP(&opts.TestRatio, "test-ratio", "", 0.2, "fraction of records held out for evaluation")
	cmd.Flags().IntVarP(&opts.Precision, "precision", "", 32, "numeric precision: 32 or 64")
	cmd.Flags().Int64VarP(&opts.RndSeed, "random-seed", "x", 42, "random seed")
	cmd.Flags().StringVarP(&opts.Activation, "activation", "", "relu", "hidden activation: relu, selu, tanh or sigmoid")
	cmd.Flags().Float64VarP(&opts.InputDropout, "input-dropout-probability", "", 0.0, "probability of encoder input dropout")
	cmd.Flags().StringVarP(&opts.PlotFile, "plot", "", "", "name of a loss plot image to write (optional)")

	cmd.Flags().IntVarP(&params.Epochs, "num-epochs", "n", params.Epochs, "number of epochs to train")
	cmd.Flags().IntVarP(&params.BatchSize, "batch-size", "b", params.BatchSize, "batch size")
	cmd.Flags().Float64VarP(&params.LearningRate, "learning-rate", "l", params.LearningRate, "learning rate")
	cmd.Flags().StringVarP(&params.Optimizer, "optimizer", "", params.Optimizer, "optimizer: adam, rmsprop, momentum or sgd")
	cmd.Flags().IntVarP(&params.ReportInterval, "report-interval", "r", params.ReportInterval, "loss report interval in batches")
	cmd.Flags().IntVarP(&params.SampleInterval, "sample-interval", "", 0, "epochs between logged samples (0 disables)")
	cmd.Flags().IntVarP(&params.SampleCount, "sample-count", "", params.SampleCount, "number of logged samples")

	cmd.Flags().IntVarP(&config.LatentDim, "latent-dimension", "d", config.LatentDim, "latent dimension")
	cmd.Flags().IntSliceVarP(&config.HiddenDims, "hidden", "", config.HiddenDims, "encoder hidden layer widths")
	cmd.Flags().Float64VarP(&config.Epsilon, "epsilon", "", config.Epsilon, "constant added to the latent standard deviation")

	_ = cmd.MarkFlagRequired("input-file")
	_ = cmd.MarkFlagRequired("output-file")
	_ = cmd.MarkFlagRequired("target-column")

	return cmd
}

func train(opts trainOptions, params anytrain.Params, config anyvae.Config) error {
	creator, err := precisionCreator(opts.Precision)
	if err != nil {
		return err
	}
	activation, err := anycvae.ParseActivation(opts.Activation)
	if err != nil {
		return err
	}
	rndGen := rand.New(rand.NewSource(opts.RndSeed))

	table, err := anytab.ReadCSVFile(opts.InputFile)
	if err != nil {
		return fmt.Errorf("error reading training data: %w", err)
	}
	table = table.DropMissing()
	if table.Len() == 0 {
		return fmt.Errorf("no data to train")
	}

	var pipeline *anytab.Pipeline
	if len(opts.NumericColumns) > 0 {
		pipeline = anytab.NewPipeline(opts.NumericColumns, opts.CategoricalColumns, opts.TargetColumn)
	} else {
		pipeline, err = anytab.InferColumns(table, opts.CategoricalColumns, opts.TargetColumn)
		if err != nil {
			return err
		}
	}
	if err := pipeline.Fit(table); err != nil {
		return fmt.Errorf("error fitting pipeline: %w", err)
	}

	trainTable, testTable := anysgd.HashSplit(table, 1-opts.TestRatio)
	if trainTable.Len() == 0 {
		return fmt.Errorf("no data to train")
	}
	if err := pipeline.FitNumeric(trainTable.(*anytab.Table)); err != nil {
		return fmt.Errorf("error fitting pipeline: %w", err)
	}
	trainSet, err := samplesFor(creator, pipeline, trainTable.(*anytab.Table))
	if err != nil {
		return err
	}
	testSet, err := samplesFor(creator, pipeline, testTable.(*anytab.Table))
	if err != nil {
		return err
	}
	log.Info().Int("Train", trainSet.Len()).Int("Test", testSet.Len()).
		Int("Features", pipeline.FeatureCount()).Int("Classes", pipeline.NumClasses()).
		Msg("Loaded data")

	config.FeatureCount = pipeline.FeatureCount()
	config.ClassCount = pipeline.NumClasses()
	config.Activation = activation
	if opts.InputDropout > 0 {
		config.KeepProb = 1 - opts.InputDropout
	}
	vae, err := anyvae.New(creator, config, rndGen)
	if err != nil {
		return err
	}

	gen := &anyvae.Generator{
		VAE:      vae,
		Pipeline: pipeline,
		Noise:    anyvae.RandNoise{Rand: rndGen},
	}
	history := anysink.NewHistory()
	sink := anysink.Multi{anysink.LogSink{}, history}
	if _, err := anytrain.Train(params, vae, trainSet, testSet, gen, sink, rndGen); err != nil {
		return err
	}

	if opts.PlotFile != "" {
		if err := history.SavePlot(opts.PlotFile, "train/total", "train/reconstruction",
			"train/kl"); err != nil {
			return err
		}
	}

	model := &anyio.Model{Pipeline: pipeline, VAE: vae}
	if err := anyio.SaveModelFile(model, opts.OutputFile); err != nil {
		return err
	}
	log.Info().Str("File", opts.OutputFile).Msg("Saved model")
	return nil
}

func precisionCreator(precision int) (anyvec.Creator, error) {
	switch precision {
	case 32:
		return anyvec32.CurrentCreator(), nil
	case 64:
		return anyvec64.DefaultCreator{}, nil
	default:
		return nil, fmt.Errorf("unsupported precision: %d", precision)
	}
}

func samplesFor(c anyvec.Creator, p *anytab.Pipeline, t *anytab.Table) (anyvae.SliceSampleList, error) {
	if t.Len() == 0 {
		return anyvae.SliceSampleList{}, nil
	}
	features, labels, err := p.Transform(t)
	if err != nil {
		return nil, fmt.Errorf("error encoding data: %w", err)
	}
	return anyvae.NewSamples(c, features, labels)
}

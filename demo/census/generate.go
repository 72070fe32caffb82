package main

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/tabgen/anycvae/anyio"
	"github.com/tabgen/anycvae/anyvae"
)

func GenerateCommand() *cobra.Command {
	var modelFile string
	var outputFile string
	var className string
	var count int
	var rndSeed int64

	var cmd = &cobra.Command{
		Use:   "generate -m modelFile -c class [-n count] [-o outputFile]",
		Short: "Generates synthetic records of the given class and writes them as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			model, err := anyio.LoadModelFile(modelFile)
			if err != nil {
				return err
			}
			label, err := model.Pipeline.Labels.Code(className)
			if err != nil {
				return err
			}
			gen := &anyvae.Generator{
				VAE:      model.VAE,
				Pipeline: model.Pipeline,
				Noise:    anyvae.RandNoise{Rand: rand.New(rand.NewSource(rndSeed))},
			}
			samples, err := gen.Generate(count, label)
			if err != nil {
				return err
			}
			classes := make([]string, count)
			for i := range classes {
				classes[i] = className
			}
			if err := samples.AppendColumn(model.Pipeline.TargetColumn, classes); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if outputFile != "" {
				f, err := os.Create(outputFile)
				if err != nil {
					return fmt.Errorf("error creating output file %s: %w", outputFile, err)
				}
				defer f.Close()
				out = f
			}
			if err := samples.WriteCSV(out); err != nil {
				return err
			}
			log.Info().Int("Count", count).Str("Class", className).Msg("Generated samples")
			return nil
		},
	}

	cmd.Flags().StringVarP(&modelFile, "model", "m", "", "name of the trained model")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "name of output file (optional, uses stdout if not present)")
	cmd.Flags().StringVarP(&className, "class", "c", "", "category to condition the samples on")
	cmd.Flags().IntVarP(&count, "count", "n", 10, "number of samples")
	cmd.Flags().Int64VarP(&rndSeed, "random-seed", "x", 42, "random seed")

	_ = cmd.MarkFlagRequired("model")
	_ = cmd.MarkFlagRequired("class")

	return cmd
}

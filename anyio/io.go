// Package anyio saves and loads trained models.
package anyio

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"

	"github.com/tabgen/anycvae/anytab"
	"github.com/tabgen/anycvae/anyvae"
	"github.com/unixpickle/serializer"
)

// A Model is a fitted pipeline and the VAE trained on its
// output.
type Model struct {
	Pipeline *anytab.Pipeline
	VAE      *anyvae.VAE
}

type modelFile struct {
	Pipeline *anytab.Pipeline
	VAE      []byte
}

// SaveModel writes the model to writer.
func SaveModel(model *Model, writer io.Writer) error {
	vaeData, err := serializer.SerializeAny(model.VAE)
	if err != nil {
		return fmt.Errorf("error serializing VAE: %w", err)
	}
	encoder := gob.NewEncoder(writer)
	err = encoder.Encode(&modelFile{Pipeline: model.Pipeline, VAE: vaeData})
	if err != nil {
		return fmt.Errorf("error encoding model: %w", err)
	}
	return nil
}

// LoadModel reads a model written by SaveModel.
// The VAE keeps the numeric precision it was saved with.
func LoadModel(input io.Reader) (*Model, error) {
	decoder := gob.NewDecoder(input)
	var file modelFile
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("error decoding model: %w", err)
	}
	var vae *anyvae.VAE
	if err := serializer.DeserializeAny(file.VAE, &vae); err != nil {
		return nil, fmt.Errorf("error deserializing VAE: %w", err)
	}
	if file.Pipeline == nil {
		return nil, fmt.Errorf("error decoding model: missing pipeline")
	}
	if vae.Config.FeatureCount != file.Pipeline.FeatureCount() {
		return nil, fmt.Errorf("VAE expects %d features but pipeline produces %d",
			vae.Config.FeatureCount, file.Pipeline.FeatureCount())
	}
	if vae.Config.ClassCount != file.Pipeline.NumClasses() {
		return nil, fmt.Errorf("VAE expects %d classes but pipeline has %d",
			vae.Config.ClassCount, file.Pipeline.NumClasses())
	}
	return &Model{Pipeline: file.Pipeline, VAE: vae}, nil
}

// SaveModelFile writes the model to a new file at path.
func SaveModelFile(model *Model, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating output file %s: %w", path, err)
	}
	if err := SaveModel(model, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadModelFile reads a model from the file at path.
func LoadModelFile(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening model file: %w", err)
	}
	defer f.Close()
	return LoadModel(f)
}

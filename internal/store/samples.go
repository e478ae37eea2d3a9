package store

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"github.com/leapstack-labs/metastore/pkg/core"
	"gopkg.in/yaml.v3"
)

//go:embed samples.yaml
var samplesYAML []byte

// SampleModels returns the built-in demonstration models.
func SampleModels() []*core.Model {
	models, err := DecodeModels(samplesYAML)
	if err != nil {
		// the embedded file is part of the build
		panic(fmt.Sprintf("store: invalid embedded samples: %v", err))
	}
	return models
}

// DecodeModels parses a YAML list of models.
func DecodeModels(data []byte) ([]*core.Model, error) {
	var models []*core.Model
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&models); err != nil {
		return nil, fmt.Errorf("failed to decode models: %w", err)
	}
	for i, m := range models {
		if m == nil {
			return nil, fmt.Errorf("model %d is empty", i)
		}
		for j := range m.Steps {
			if m.Steps[j].ModelID == "" {
				m.Steps[j].ModelID = m.ID
			}
		}
	}
	return models, nil
}

// LoadModelsFile reads a YAML model file from disk.
func LoadModelsFile(path string) ([]*core.Model, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("failed to read models file: %w", err)
	}
	models, err := DecodeModels(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return models, nil
}

// EncodeModels renders models as YAML in the same format DecodeModels reads.
func EncodeModels(models []*core.Model) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(models); err != nil {
		return nil, fmt.Errorf("failed to encode models: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

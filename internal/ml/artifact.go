package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"

	"github.com/betbot/analytics-api/internal/models"
)

var (
	ErrFeatureMismatch = errors.New("model features do not match the feature contract")

	validate = validator.New()
)

type envelope struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// ArtifactPaths returns the model and metadata sidecar paths for a model
func ArtifactPaths(dir, name, version string) (model, metadata string) {
	base := fmt.Sprintf("%s_v%s", name, version)
	return filepath.Join(dir, base+".model.json"), filepath.Join(dir, base+"_metadata.json")
}

// SaveArtifact writes the classifier atomically
func SaveArtifact(path string, c Persistable) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.Kind(), err)
	}
	data, err := json.Marshal(envelope{Kind: c.Kind(), Payload: payload})
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data)
}

// LoadArtifact reads a classifier of any registered kind
func LoadArtifact(path string) (Classifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode artifact %s: %w", path, err)
	}
	decode, err := decoderFor(env.Kind)
	if err != nil {
		return nil, err
	}
	return decode(env.Payload)
}

func SaveMetadata(path string, md models.ModelMetadata) error {
	data, err := json.MarshalIndent(md, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data)
}

// LoadMetadata reads and validates a metadata sidecar. The feature list must
// equal models.FeatureNames exactly.
func LoadMetadata(path string) (*models.ModelMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var md models.ModelMetadata
	if err := json.Unmarshal(data, &md); err != nil {
		return nil, fmt.Errorf("decode metadata %s: %w", path, err)
	}
	if err := validate.Struct(md); err != nil {
		return nil, fmt.Errorf("invalid metadata %s: %w", path, err)
	}
	if err := checkFeatures(md.Features); err != nil {
		return nil, err
	}
	return &md, nil
}

func checkFeatures(features []string) error {
	if len(features) != len(models.FeatureNames) {
		return fmt.Errorf("%w: got %d features, want %d", ErrFeatureMismatch, len(features), len(models.FeatureNames))
	}
	for i, name := range models.FeatureNames {
		if features[i] != name {
			return fmt.Errorf("%w: position %d is %q, want %q", ErrFeatureMismatch, i, features[i], name)
		}
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-"+filepath.Base(path))
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

package ml

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArtifactPaths(t *testing.T) {
	model, meta := ArtifactPaths("/models/mlb", "mlb_predictor", "1.0")
	assert.Equal(t, "/models/mlb/mlb_predictor_v1.0.model.json", model)
	assert.Equal(t, "/models/mlb/mlb_predictor_v1.0_metadata.json", meta)
}

func TestLoadArtifact_UnknownKind(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.json")
	data, _ := json.Marshal(map[string]any{"kind": "random_forest", "payload": map[string]any{}})
	require.NoError(t, os.WriteFile(path, data, 0o644))

	_, err := LoadArtifact(path)
	assert.ErrorContains(t, err, "random_forest")
}

func TestLoadMetadata_Validation(t *testing.T) {
	dir := t.TempDir()

	missingVersion := validMetadata()
	missingVersion.Version = ""
	path := filepath.Join(dir, "bad.json")
	require.NoError(t, SaveMetadata(path, *missingVersion))
	_, err := LoadMetadata(path)
	assert.Error(t, err)

	reordered := validMetadata()
	reordered.Features[0], reordered.Features[1] = reordered.Features[1], reordered.Features[0]
	path = filepath.Join(dir, "reordered.json")
	require.NoError(t, SaveMetadata(path, *reordered))
	_, err = LoadMetadata(path)
	assert.ErrorIs(t, err, ErrFeatureMismatch)

	path = filepath.Join(dir, "good.json")
	require.NoError(t, SaveMetadata(path, *validMetadata()))
	md, err := LoadMetadata(path)
	require.NoError(t, err)
	assert.Equal(t, "1.0", md.Version)
}

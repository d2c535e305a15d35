package ml

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"mood-predictor/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelRegistry_AddActivateRollback(t *testing.T) {
	dir := t.TempDir()
	mr, err := NewModelRegistry(dir)
	require.NoError(t, err)
	assert.Empty(t, mr.ListVersions())
	assert.Nil(t, mr.GetCurrentVersion())

	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	older, err := mr.AddVersion(ModelVersion{
		Path:      "models/a.json",
		Family:    FamilyRandomForest,
		CreatedAt: base,
		Metrics:   ModelMetrics{MAE: 0.8, TrainingRows: 16, TestRows: 4},
	})
	require.NoError(t, err)
	newer, err := mr.AddVersion(ModelVersion{
		Path:      "models/b.json",
		Family:    FamilyKNN,
		CreatedAt: base.Add(time.Hour),
		Metrics:   ModelMetrics{MAE: 0.6},
	})
	require.NoError(t, err)
	require.NotEqual(t, older.Version, newer.Version)

	versions := mr.ListVersions()
	require.Len(t, versions, 2)
	assert.Equal(t, newer.Version, versions[0].Version)

	require.NoError(t, mr.ActivateVersion(newer.Version))
	require.NotNil(t, mr.GetCurrentVersion())
	assert.Equal(t, "models/b.json", mr.GetCurrentVersion().Path)

	require.NoError(t, mr.Rollback())
	assert.Equal(t, older.Version, mr.GetCurrentVersion().Version)
	assert.Error(t, mr.Rollback())

	// state survives a reload
	reloaded, err := NewModelRegistry(dir)
	require.NoError(t, err)
	require.Len(t, reloaded.ListVersions(), 2)
	require.NotNil(t, reloaded.GetCurrentVersion())
	assert.Equal(t, older.Version, reloaded.GetCurrentVersion().Version)
	assert.Equal(t, 16, reloaded.GetCurrentVersion().Metrics.TrainingRows)
}

func TestModelRegistry_DefaultPath(t *testing.T) {
	dir := t.TempDir()
	mr, err := NewModelRegistry(dir)
	require.NoError(t, err)

	v, err := mr.AddVersion(ModelVersion{Family: FamilyLinearRegression})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "model-"+v.Version+".json"), v.Path)
	assert.False(t, v.CreatedAt.IsZero())
}

func TestModelRegistry_ActivateUnknown(t *testing.T) {
	mr, err := NewModelRegistry(t.TempDir())
	require.NoError(t, err)
	assert.ErrorIs(t, mr.ActivateVersion("nope"), common.ErrNotFound)
}

func TestModelRegistry_CorruptFileStartsFresh(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "model_versions.json"), []byte("{not json"), 0o600))

	mr, err := NewModelRegistry(dir)
	require.NoError(t, err)
	assert.Empty(t, mr.ListVersions())
}

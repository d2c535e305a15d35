package ml

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"mood-predictor/internal/common"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ModelVersion represents a versioned saved model
type ModelVersion struct {
	Version   string       `json:"version"`
	Path      string       `json:"path"`
	Family    Family       `json:"family"`
	Params    Params       `json:"params"`
	Schema    string       `json:"schema_fingerprint"`
	CreatedAt time.Time    `json:"created_at"`
	Metrics   ModelMetrics `json:"metrics"`
	IsActive  bool         `json:"is_active"`
}

// ModelMetrics contains held-out accuracy for a model
type ModelMetrics struct {
	MAE          float64 `json:"mae"`
	R2           float64 `json:"r_squared"`
	TrainingRows int     `json:"training_rows"`
	TestRows     int     `json:"test_rows"`
}

// ModelRegistry handles model versioning and rollback
type ModelRegistry struct {
	modelsDir    string
	versionsFile string
	versions     []ModelVersion
	currentModel *ModelVersion
}

// NewModelRegistry creates a registry backed by model_versions.json in modelsDir
func NewModelRegistry(modelsDir string) (*ModelRegistry, error) {
	if err := os.MkdirAll(modelsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create models directory: %w", err)
	}

	mr := &ModelRegistry{
		modelsDir:    modelsDir,
		versionsFile: filepath.Join(modelsDir, "model_versions.json"),
		versions:     make([]ModelVersion, 0),
	}

	// Load existing versions if available
	if err := mr.loadVersions(); err != nil {
		log.Warn().Err(err).Msg("Failed to load model versions, starting fresh")
	}

	return mr, nil
}

// AddVersion records a model and returns the new version. When v.Path is
// empty the version is given its own file under the models directory.
func (mr *ModelRegistry) AddVersion(v ModelVersion) (ModelVersion, error) {
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now()
	}
	v.Version = v.CreatedAt.Format("20060102-150405") + "-" + uuid.NewString()[:8]
	v.IsActive = false
	if v.Path == "" {
		v.Path = filepath.Join(mr.modelsDir, "model-"+v.Version+".json")
	}

	mr.versions = append(mr.versions, v)

	// Newest first
	sort.SliceStable(mr.versions, func(i, j int) bool {
		return mr.versions[i].CreatedAt.After(mr.versions[j].CreatedAt)
	})
	mr.relinkCurrent()

	return v, mr.saveVersions()
}

// ActivateVersion activates a specific model version
func (mr *ModelRegistry) ActivateVersion(version string) error {
	found := false
	for i := range mr.versions {
		if mr.versions[i].Version == version {
			mr.versions[i].IsActive = true
			found = true
		} else {
			mr.versions[i].IsActive = false
		}
	}

	if !found {
		return fmt.Errorf("%w: model version %s", common.ErrNotFound, version)
	}

	mr.relinkCurrent()
	return mr.saveVersions()
}

// Rollback activates the version saved before the active one
func (mr *ModelRegistry) Rollback() error {
	if len(mr.versions) < 2 {
		return fmt.Errorf("no previous version available for rollback")
	}

	currentIdx := -1
	for i, v := range mr.versions {
		if v.IsActive {
			currentIdx = i
			break
		}
	}

	if currentIdx == -1 {
		return fmt.Errorf("no active version found")
	}

	if currentIdx+1 < len(mr.versions) {
		return mr.ActivateVersion(mr.versions[currentIdx+1].Version)
	}

	return fmt.Errorf("no previous version available")
}

// GetCurrentVersion returns the active version, or nil
func (mr *ModelRegistry) GetCurrentVersion() *ModelVersion {
	return mr.currentModel
}

// ListVersions returns all model versions, newest first
func (mr *ModelRegistry) ListVersions() []ModelVersion {
	return mr.versions
}

func (mr *ModelRegistry) relinkCurrent() {
	mr.currentModel = nil
	for i := range mr.versions {
		if mr.versions[i].IsActive {
			mr.currentModel = &mr.versions[i]
			return
		}
	}
}

func (mr *ModelRegistry) loadVersions() error {
	data, err := os.ReadFile(mr.versionsFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	var versions []ModelVersion
	if err := json.Unmarshal(data, &versions); err != nil {
		return err
	}

	mr.versions = versions
	mr.relinkCurrent()
	return nil
}

func (mr *ModelRegistry) saveVersions() error {
	data, err := json.MarshalIndent(mr.versions, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(mr.versionsFile, data, 0o600)
}

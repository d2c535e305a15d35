package features

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"

	"mood-predictor/internal/common"
)

// SchemaVersion changes whenever the meaning of a feature column changes.
const SchemaVersion = "1.0.0"

// Columns is the feature order every model is trained and queried with.
var Columns = []string{
	common.ColSleepHours,
	common.ColScreenTime,
	common.ColExercise,
	common.ColDayOfWeek,
	common.ColIsWeekend,
	common.ColDaysSinceLastLog,
}

// Schema identifies the feature layout a persisted model expects.
type Schema struct {
	Version     string   `json:"version"`
	Columns     []string `json:"columns"`
	Fingerprint string   `json:"fingerprint"`
}

// CurrentSchema describes the layout produced by this package.
func CurrentSchema() Schema {
	cols := slices.Clone(Columns)
	return Schema{
		Version:     SchemaVersion,
		Columns:     cols,
		Fingerprint: fingerprint(SchemaVersion, cols),
	}
}

// Compatible reports an ErrSchemaMismatch when s was produced by a different
// feature layout than the current one, or when its fingerprint was tampered with.
func (s Schema) Compatible() error {
	cur := CurrentSchema()
	if s.Fingerprint != fingerprint(s.Version, s.Columns) {
		return fmt.Errorf("%w: fingerprint %q does not match columns", common.ErrSchemaMismatch, s.Fingerprint)
	}
	if s.Fingerprint != cur.Fingerprint {
		return fmt.Errorf("%w: model expects v%s %v, deriver produces v%s %v",
			common.ErrSchemaMismatch, s.Version, s.Columns, cur.Version, cur.Columns)
	}
	return nil
}

func fingerprint(version string, cols []string) string {
	sum := sha256.Sum256([]byte(version + "|" + strings.Join(cols, ",")))
	return hex.EncodeToString(sum[:])
}

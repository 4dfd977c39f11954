package sim

import "fmt"

// FeederLimits bound the site's grid connection: MaxImportKW caps
// consumption (positive feeder power), MaxExportKW caps generation
// (magnitude of negative feeder power).
type FeederLimits struct {
	MaxImportKW float64
	MaxExportKW float64
}

func NewFeederLimits(maxImportKW, maxExportKW float64) (FeederLimits, error) {
	if maxImportKW < 0 || maxExportKW < 0 {
		return FeederLimits{}, fmt.Errorf("feeder: limits must be >= 0, got import=%v export=%v", maxImportKW, maxExportKW)
	}
	return FeederLimits{MaxImportKW: maxImportKW, MaxExportKW: maxExportKW}, nil
}

// Check reports whether the realized feeder power respects both limits.
// Limits are advisory: the engine records violations, it does not stop.
func (f FeederLimits) Check(feederKW float64) bool {
	return feederKW <= f.MaxImportKW && feederKW >= -f.MaxExportKW
}

// Clamp returns feederKW restricted to the allowed band. Used by
// controllers to pick feasible targets, never to fake telemetry.
func (f FeederLimits) Clamp(feederKW float64) float64 {
	if feederKW > f.MaxImportKW {
		return f.MaxImportKW
	}
	if feederKW < -f.MaxExportKW {
		return -f.MaxExportKW
	}
	return feederKW
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 24, cfg.Simulation.StepsPerDay)
	assert.Equal(t, 1, cfg.Simulation.Days)
	assert.Equal(t, int64(42), cfg.Simulation.Seed)
	assert.Equal(t, "naive", cfg.Simulation.Controller)
	assert.Equal(t, "simple", cfg.Solar.Model)
	require.Len(t, cfg.DREvents, 1)
	assert.Equal(t, 17, cfg.DREvents[0].StartStep)
	assert.Equal(t, 20, cfg.DREvents[0].EndStep)
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Simulation.Houses = -1
	cfg.Simulation.Controller = "psychic"
	cfg.Battery.InitialSoC = 2

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "houses")
	assert.Contains(t, err.Error(), "controller")
	assert.Contains(t, err.Error(), "initial_soc")
}

func TestValidateSolarWindow(t *testing.T) {
	cfg := Default()
	cfg.Solar.SunriseIdx = 20
	cfg.Solar.SunsetIdx = 6
	assert.Error(t, cfg.Validate())
}

func TestValidateDREvents(t *testing.T) {
	cfg := Default()
	cfg.DREvents = []DREventConfig{{StartStep: 10, EndStep: 5, CurtailKW: 1}}
	assert.Error(t, cfg.Validate())

	cfg.DREvents = []DREventConfig{{StartStep: 5, EndStep: 5, CurtailKW: -1}}
	assert.Error(t, cfg.Validate())
}

func TestLoadYAMLScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
simulation:
  days: 3
  seed: 7
solar:
  model: ar1
  kw_peak: 8.5
dr_events:
  - start_step: 2
    end_step: 4
    curtail_kw: 2.5
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Simulation.Days)
	assert.Equal(t, int64(7), cfg.Simulation.Seed)
	assert.Equal(t, 24, cfg.Simulation.StepsPerDay, "default fills the gap")
	assert.Equal(t, "ar1", cfg.Solar.Model)
	assert.Equal(t, 8.5, cfg.Solar.KWPeak)
	require.Len(t, cfg.DREvents, 1)
	assert.Equal(t, 2.5, cfg.DREvents[0].CurtailKW)
}

func TestLoadJSONScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"simulation":{"houses":4},"feeder":{"max_import_kw":12}}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Simulation.Houses)
	assert.Equal(t, 12.0, cfg.Feeder.MaxImportKW)
}

func TestLoadRejectsUnknownExtension(t *testing.T) {
	_, err := Load("scenario.toml")
	assert.Error(t, err)
}

func TestLoadRejectsInvalidScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("battery:\n  initial_soc: 3\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "initial_soc")
}

func TestLoadKeepsExplicitZeros(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flat.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
simulation:
  days: 0
baseload:
  amp_kw: 0
  noise_std: 0
battery:
  initial_soc: 0
dr_events: []
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	// Zeros written in the file mean zero, not "use the default".
	assert.Equal(t, 0, cfg.Simulation.Days)
	assert.Zero(t, cfg.Baseload.AmpKW)
	assert.Zero(t, cfg.Baseload.NoiseStd)
	assert.Zero(t, cfg.Battery.InitialSoC)
	assert.Empty(t, cfg.DREvents)

	// Untouched sections still carry the baseline.
	assert.Equal(t, 24, cfg.Simulation.StepsPerDay)
	assert.Equal(t, 0.8, cfg.Baseload.BaseKW)
	assert.Equal(t, 10.0, cfg.Battery.CapacityKWh)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("K_SIMULATION__DAYS", "9")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Simulation.Days)
}

func TestPresets(t *testing.T) {
	assert.Equal(t, []string{"baseline", "dr_stress", "high_solar"}, PresetNames())

	for _, name := range PresetNames() {
		t.Run(name, func(t *testing.T) {
			cfg, err := Preset(name)
			require.NoError(t, err)
			assert.NoError(t, cfg.Validate())
		})
	}
}

func TestPresetHighSolar(t *testing.T) {
	cfg, err := Preset("high_solar")
	require.NoError(t, err)
	assert.Equal(t, "ar1", cfg.Solar.Model)
	assert.Equal(t, 12.0, cfg.Solar.KWPeak)
	assert.Equal(t, 2.0, cfg.Feeder.MaxExportKW)
	assert.Equal(t, 24, cfg.Simulation.StepsPerDay, "defaults still fill unset fields")
}

func TestPresetUnknown(t *testing.T) {
	_, err := Preset("nope")
	assert.Error(t, err)
}

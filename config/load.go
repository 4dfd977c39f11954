package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// envPrefix namespaces the environment overrides, e.g.
// K_SIMULATION__DAYS=7 sets simulation.days.
const envPrefix = "K_"

// Load reads a scenario file (yaml or json) and applies K_*
// environment overrides. The file is unmarshalled over the baseline
// defaults, so only the keys present in the file change — explicit
// zeros are honored, absent fields keep their defaults. An empty path
// loads the baseline scenario from defaults and environment alone.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		parser, err := parserFor(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("config: load %s: %w", path, err)
		}
	}

	return finish(k, Default())
}

// LoadPreset resolves a named built-in scenario, then applies
// environment overrides on top.
func LoadPreset(name string) (*Config, error) {
	cfg, err := Preset(name)
	if err != nil {
		return nil, err
	}
	return finish(koanf.New("."), cfg)
}

// finish layers environment overrides onto k, unmarshals over base and
// validates.
func finish(k *koanf.Koanf, base *Config) (*Config, error) {
	if err := k.Load(env.Provider(envPrefix, "__", envKey), nil); err != nil {
		return nil, fmt.Errorf("config: load environment: %w", err)
	}
	if err := k.UnmarshalWithConf("", base, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := base.Validate(); err != nil {
		return nil, fmt.Errorf("config: invalid scenario: %w", err)
	}
	return base, nil
}

func parserFor(path string) (koanf.Parser, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	default:
		return nil, fmt.Errorf("config: unsupported scenario format %q (want .yaml, .yml or .json)", ext)
	}
}

// envKey maps K_SIMULATION__STEPS_PER_DAY to simulation.steps_per_day.
func envKey(s string) string {
	s = strings.TrimPrefix(strings.ToLower(s), "k_")
	return strings.ReplaceAll(s, "__", ".")
}

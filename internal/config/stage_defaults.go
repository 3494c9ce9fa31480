package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/davidvanstory/flowgenius/pkg/domain"
)

// StageDefaults carries per-stage prompt and model overrides, loaded from
// a YAML file of the shape:
//
//	prompts:
//	  brainstorm: "..."
//	  summary: "..."
//	  prd: "..."
//	models:
//	  brainstorm: gpt-4o
type StageDefaults struct {
	Prompts map[domain.Stage]string `yaml:"prompts"`
	Models  map[domain.Stage]string `yaml:"models"`
}

// LoadStageDefaults parses the YAML file at path. An empty path returns
// empty (no-override) defaults.
func LoadStageDefaults(path string) (*StageDefaults, error) {
	defaults := &StageDefaults{}
	if path == "" {
		return defaults, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read stage defaults: %w", err)
	}
	if err := yaml.Unmarshal(data, defaults); err != nil {
		return nil, fmt.Errorf("failed to parse stage defaults: %w", err)
	}

	for stage := range defaults.Prompts {
		if !stage.Valid() {
			return nil, fmt.Errorf("unknown stage %q in prompts", stage)
		}
	}
	for stage := range defaults.Models {
		if !stage.Valid() {
			return nil, fmt.Errorf("unknown stage %q in models", stage)
		}
	}
	return defaults, nil
}

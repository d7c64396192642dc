package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Dicklesworthstone/quorum/internal/modes"
)

// Preset is a reusable deliberation setup loaded from YAML:
//
//	mode: redteam
//	models:
//	  - openai/gpt-4o
//	  - anthropic/claude-3.7-sonnet
//	config:
//	  rounds: 3
type Preset struct {
	Mode   string         `yaml:"mode"`
	Models []string       `yaml:"models"`
	Config map[string]any `yaml:"config"`
}

// LoadPreset reads and validates a preset file.
func LoadPreset(path string) (*Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading preset: %w", err)
	}

	var p Preset
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing preset %s: %w", path, err)
	}
	if p.Mode != "" {
		if _, ok := modes.Lookup(p.Mode); !ok {
			return nil, fmt.Errorf("preset %s names unknown mode %q", path, p.Mode)
		}
	}
	return &p, nil
}

// ModeConfig folds the preset into a mode config bag. The models list wins
// over a models key inside config.
func (p *Preset) ModeConfig() modes.Config {
	cfg := modes.Config{}
	for k, v := range p.Config {
		cfg[k] = v
	}
	if len(p.Models) > 0 {
		cfg["models"] = p.Models
	}
	return cfg
}

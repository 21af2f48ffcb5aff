package fusion

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
	"github.com/vvakame/fusion/internal/composition"
)

// Config lists the subgraphs to compose and the composition settings.
type Config struct {
	Subgraphs []*SubgraphConfig `json:"subgraphs" yaml:"subgraphs"`
	Settings  Settings          `json:"settings,omitempty" yaml:"settings,omitempty"`
}

// SubgraphConfig describes where a subgraph SDL comes from.
// Exactly one of Schema, SchemaFiles or URL is used, in that order of preference.
type SubgraphConfig struct {
	Name string `json:"name" yaml:"name"`
	// URL is queried with { _service { sdl } } when no local schema is given.
	URL         string   `json:"url,omitempty" yaml:"url,omitempty"`
	Schema      string   `json:"schema,omitempty" yaml:"schema,omitempty"`
	SchemaFiles []string `json:"schemaFiles,omitempty" yaml:"schemaFiles,omitempty"`
}

type Settings = composition.Settings

// ParseConfig decodes a YAML config. Unknown keys are rejected.
func ParseConfig(b []byte) (*Config, error) {
	cfg := &Config{}
	err := yaml.UnmarshalWithOptions(b, cfg, yaml.Strict(), yaml.DisallowUnknownField())
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// LoadConfig reads a YAML config file.
// Relative schema file paths are resolved against the directory of the config file.
func LoadConfig(filePath string) (*Config, error) {
	b, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	cfg, err := ParseConfig(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}

	baseDir := filepath.Dir(filePath)
	for _, subgraph := range cfg.Subgraphs {
		if subgraph == nil {
			continue
		}
		for i, schemaFile := range subgraph.SchemaFiles {
			if !filepath.IsAbs(schemaFile) {
				subgraph.SchemaFiles[i] = filepath.Join(baseDir, schemaFile)
			}
		}
	}

	return cfg, nil
}

func (cfg *Config) validate() error {
	if cfg == nil || len(cfg.Subgraphs) == 0 {
		return fmt.Errorf("subgraphs are must required")
	}

	seen := make(map[string]bool)
	for idx, subgraph := range cfg.Subgraphs {
		if subgraph == nil {
			return fmt.Errorf("subgraphs[%d] is empty", idx)
		}
		if subgraph.Name == "" {
			return fmt.Errorf("subgraphs[%d].name is required", idx)
		}
		if seen[subgraph.Name] {
			return fmt.Errorf("subgraph %s is declared more than once", subgraph.Name)
		}
		seen[subgraph.Name] = true
		if subgraph.Schema == "" && len(subgraph.SchemaFiles) == 0 && subgraph.URL == "" {
			return fmt.Errorf("subgraph %s requires one of schema, schemaFiles or url", subgraph.Name)
		}
	}

	return nil
}

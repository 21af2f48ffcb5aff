package composition

import (
	"fmt"
	"os"
	"runtime"

	"github.com/goccy/go-yaml"
)

// Settings is read once at the start of a composition run.
type Settings struct {
	// ExcludeByTag drops types and members tagged with any of these names before merging.
	ExcludeByTag []string `json:"excludeByTag,omitempty" yaml:"excludeByTag,omitempty"`
	// EnableGlobalObjectIdentification adds Relay style node resolvers.
	EnableGlobalObjectIdentification bool `json:"enableGlobalObjectIdentification,omitempty" yaml:"enableGlobalObjectIdentification,omitempty"`
	// IncludeSatisfiabilityPaths computes how each field can be reached per subgraph.
	IncludeSatisfiabilityPaths bool `json:"includeSatisfiabilityPaths,omitempty" yaml:"includeSatisfiabilityPaths,omitempty"`
	// Concurrency limits phase one merge workers. Zero or less means GOMAXPROCS.
	Concurrency int `json:"concurrency,omitempty" yaml:"concurrency,omitempty"`
}

func (s *Settings) excluded(tags []string) bool {
	for _, tag := range tags {
		if containsString(s.ExcludeByTag, tag) {
			return true
		}
	}
	return false
}

func (s *Settings) concurrency() int {
	if s.Concurrency <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return s.Concurrency
}

// ParseSettings decodes YAML settings. Unknown keys are rejected.
func ParseSettings(b []byte) (*Settings, error) {
	settings := &Settings{}
	err := yaml.UnmarshalWithOptions(b, settings, yaml.Strict(), yaml.DisallowUnknownField())
	if err != nil {
		return nil, fmt.Errorf("failed to parse composition settings: %w", err)
	}
	return settings, nil
}

func LoadSettings(filePath string) (*Settings, error) {
	b, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return ParseSettings(b)
}

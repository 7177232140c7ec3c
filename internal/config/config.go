// Package config loads project-level settings from seamcheck.yml.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ProjectConfig holds project-level settings loaded from seamcheck.yml.
type ProjectConfig struct {
	// BackendDir and FrontendDir are scanned for Python and TypeScript
	// sources; empty means the whole project root.
	BackendDir  string `yaml:"backendDir,omitempty"`
	FrontendDir string `yaml:"frontendDir,omitempty"`

	// SpecPath points at the OpenAPI document. Empty disables endpoint
	// reconciliation.
	SpecPath string `yaml:"specPath,omitempty" validate:"omitempty,endswith=.yml|endswith=.yaml|endswith=.json"`

	ExcludeDirs []string `yaml:"excludeDirs,omitempty"`

	// CacheDir enables the graph snapshot cache when set.
	CacheDir string `yaml:"cacheDir,omitempty"`

	// UntypedTokens overrides the annotation tokens treated as opted out
	// of typing (dict, any, ...).
	UntypedTokens []string `yaml:"untypedTokens,omitempty"`

	// Output selects the report renderer.
	Output string `yaml:"output,omitempty" validate:"omitempty,oneof=text json"`

	Verbose bool `yaml:"verbose,omitempty"`
}

var validate = validator.New()

// Load reads seamcheck.yml or seamcheck.yaml from the given directory.
// A missing file yields a zero-value config, not an error; a present file
// that fails to parse or validate is an error.
func Load(dir string) (*ProjectConfig, error) {
	for _, name := range []string{"seamcheck.yml", "seamcheck.yaml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var cfg ProjectConfig
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		if err := validate.Struct(&cfg); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", name, err)
		}
		return &cfg, nil
	}
	return &ProjectConfig{}, nil
}

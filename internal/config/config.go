// Package config handles .pypmrc.yml project-level configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/nullpx/pypm/pkg/pypm"
)

// ProjectConfig represents the .pypmrc.yml configuration file: knobs
// a project can pin so every contributor's run behaves identically
// without repeating flags.
type ProjectConfig struct {
	Version          int      `yaml:"version"`
	Offline          bool     `yaml:"offline"`
	IndexURL         string   `yaml:"index_url"`
	ExtraIgnoreDirs  []string `yaml:"extra_ignore_dirs"`
	ParseWorkers     int      `yaml:"parse_workers"`
	LookupWorkers    int      `yaml:"lookup_workers"`
	PinStaticMapping map[string]string `yaml:"pin"`
}

// Load loads project configuration from .pypmrc.yml or .pypmrc.yaml.
// If explicitPath is provided (from --config flag), that file is
// loaded. Otherwise dir is searched first. Returns nil, nil if no
// config file is found -- defaults apply.
func Load(dir string, explicitPath string) (*ProjectConfig, error) {
	var configPath string

	if explicitPath != "" {
		configPath = explicitPath
	} else {
		ymlPath := filepath.Join(dir, ".pypmrc.yml")
		yamlPath := filepath.Join(dir, ".pypmrc.yaml")

		if _, err := os.Stat(ymlPath); err == nil {
			configPath = ymlPath
		} else if _, err := os.Stat(yamlPath); err == nil {
			configPath = yamlPath
		} else {
			return nil, nil
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read project config %s: %w", configPath, err)
	}

	cfg := &ProjectConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse project config %s: %w", configPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid project config %s: %w", configPath, err)
	}

	return cfg, nil
}

// Validate checks that the ProjectConfig values are sane.
func (c *ProjectConfig) Validate() error {
	if c.Version != 0 && c.Version != 1 {
		return fmt.Errorf("unsupported config version %d (expected 1)", c.Version)
	}
	if c.ParseWorkers < 0 {
		return fmt.Errorf("parse_workers must be >= 0, got %d", c.ParseWorkers)
	}
	if c.LookupWorkers < 0 {
		return fmt.Errorf("lookup_workers must be >= 0, got %d", c.LookupWorkers)
	}
	return nil
}

// ApplyToOptions overlays the project config onto opts, leaving
// already-set flag-driven fields untouched where the config is silent.
func (c *ProjectConfig) ApplyToOptions(opts *pypm.Options) {
	if c == nil || opts == nil {
		return
	}
	if c.Offline {
		opts.Offline = true
	}
	if c.IndexURL != "" {
		opts.IndexBaseURL = c.IndexURL
	}
	if c.ParseWorkers > 0 {
		opts.ParseWorkers = c.ParseWorkers
	}
	if c.LookupWorkers > 0 {
		opts.LookupWorkers = c.LookupWorkers
	}
	for _, dir := range c.ExtraIgnoreDirs {
		if opts.ExtraIgnoreDirs == nil {
			opts.ExtraIgnoreDirs = make(map[string]bool)
		}
		opts.ExtraIgnoreDirs[dir] = true
	}
}

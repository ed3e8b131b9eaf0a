package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultEntryPoints are the filename fragments treated as program entry
// points when a project does not configure its own.
var DefaultEntryPoints = []string{"main.py", "index.js", "app.py", "server.js", "__init__.py"}

// ProjectConfig holds project-level settings loaded from slopgraph.yml.
type ProjectConfig struct {
	Mode           string   `yaml:"mode,omitempty"`
	EntryPoints    []string `yaml:"entryPoints,omitempty"`
	Languages      []string `yaml:"languages,omitempty"`
	ExcludeDirs    []string `yaml:"excludeDirs,omitempty"`
	IgnorePatterns []string `yaml:"ignore,omitempty"`
	Workers        int      `yaml:"workers,omitempty"`
	Verbose        bool     `yaml:"verbose,omitempty"`
}

// Load attempts to read slopgraph.yml or slopgraph.yaml from the given
// directory. Returns the defaults (not an error) if no config file exists.
func Load(dir string) (*ProjectConfig, error) {
	for _, name := range []string{"slopgraph.yml", "slopgraph.yaml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var cfg ProjectConfig
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		if cfg.Workers < 0 {
			return nil, fmt.Errorf("parse %s: workers must not be negative", path)
		}
		cfg.applyDefaults()
		return &cfg, nil
	}
	cfg := &ProjectConfig{}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *ProjectConfig) applyDefaults() {
	if c.Mode == "" {
		c.Mode = "file"
	}
	if len(c.EntryPoints) == 0 {
		c.EntryPoints = append([]string(nil), DefaultEntryPoints...)
	}
}

// Package config loads the optional gpkgcheck.yaml run configuration.
package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// FileName is the config file looked up in the working directory when no
// explicit path is given.
const FileName = "gpkgcheck.yaml"

// RunConfig holds validation run settings. Pointer fields distinguish "not
// set" from an explicit false, so command-line flags can override cleanly.
type RunConfig struct {
	Categories       []string `yaml:"categories"`
	TableLevelChecks *bool    `yaml:"table_level_checks"`
	Geometry         *bool    `yaml:"geometry"`
	Color            *bool    `yaml:"color"`
}

// Load reads and parses the config file at path.
func Load(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg RunConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

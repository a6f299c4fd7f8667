// Package config handles program configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ScopeHints declares selector pre-filter hints for one scope type: class
// names guaranteed present on every instance and attribute names whose
// presence never changes once an element exists.
type ScopeHints struct {
	Type            string   `yaml:"type"`
	ConstantClasses []string `yaml:"constant-classes,omitempty"`
	ConstantAttrs   []string `yaml:"constant-attributes,omitempty"`
}

// Config is the complete program configuration.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Hints   []ScopeHints  `yaml:"hints,omitempty"`
}

// Default returns the configuration used when no file is provided.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Console: LoggerConfig{Level: "normal"},
			File:    LoggerConfig{Level: "none", Mode: "append"},
		},
	}
}

// LoadConfiguration reads configuration from path. An empty path returns
// the defaults.
func LoadConfiguration(path string) (*Config, error) {
	cfg := Default()
	if len(path) == 0 {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read configuration: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unable to parse configuration: %w", err)
	}
	if err := cfg.Logging.validate(); err != nil {
		return nil, fmt.Errorf("bad logging configuration: %w", err)
	}
	return cfg, nil
}

// Dump serializes the processed configuration.
func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to serialize configuration: %w", err)
	}
	return data, nil
}

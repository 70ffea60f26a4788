package discovery

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config lists bench resources that cannot be found by USB enumeration:
// instruments on plain serial ports and GPIB instruments behind a Prologix
// controller.
type Config struct {
	Serial []SerialResource `yaml:"serial"`
	GPIB   []GPIBResource   `yaml:"gpib"`
}

// SerialResource is an instrument speaking its protocol directly on a
// serial port. Model skips the *IDN? probe for instruments that do not
// answer one (the JDS6600 has no identification command).
type SerialResource struct {
	Port  string `yaml:"port"`
	Model string `yaml:"model,omitempty"`
}

// GPIBResource is an instrument on a GPIB bus behind a Prologix USB-serial
// controller.
type GPIBResource struct {
	Port    string `yaml:"port"`
	Address int    `yaml:"address"`
	Model   string `yaml:"model,omitempty"`
}

// LoadConfig reads a bench config file. A missing file yields an empty
// config, so the tool runs with USB discovery alone.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("discovery: read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("discovery: parse config %s: %w", path, err)
	}
	return &cfg, nil
}

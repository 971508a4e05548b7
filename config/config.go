// Package config handles okra.toml runtime configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/okralang/okra/interp"
)

// Config represents an okra.toml runtime configuration.
type Config struct {
	Runtime Runtime `toml:"runtime"`
	Debug   Debug   `toml:"debug"`

	// Dir is the directory containing the okra.toml file (set at load time).
	Dir string `toml:"-"`
}

// Runtime tunes the guest VM and interpreter features.
type Runtime struct {
	Random        bool  `toml:"random"`
	Seed          int64 `toml:"seed"`
	RegistrySize  int   `toml:"registry-size"`
	CallStackSize int   `toml:"call-stack-size"`
}

// Debug configures diagnostics.
type Debug struct {
	CaptureTraces bool `toml:"capture-traces"`
	Verbosity     int  `toml:"verbosity"`
}

// Default returns the configuration used when no okra.toml is present.
func Default() *Config {
	return &Config{}
}

// Load parses an okra.toml file from the given directory.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, "okra.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var c Config
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	c.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}
	return &c, nil
}

// FindAndLoad walks up from startDir to find an okra.toml file, then loads
// and returns the configuration. Returns nil if none is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, "okra.toml")
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// Options maps the configuration onto interpreter options.
func (c *Config) Options() interp.Options {
	return interp.Options{
		CaptureTraces: c.Debug.CaptureTraces,
		Random:        c.Runtime.Random,
		Seed:          c.Runtime.Seed,
		RegistrySize:  c.Runtime.RegistrySize,
		CallStackSize: c.Runtime.CallStackSize,
	}
}

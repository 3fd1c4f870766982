// Package config loads the toolchain-wide tunables: node-buffer capacity,
// error-sink caps, and the TAC interpreter's resource ceilings. All of them
// have spec-documented defaults; an optional cc99.yaml overrides them.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full set of knobs spec.md documents as configurable.
type Config struct {
	// NodeBufferCapacity is HB's N, shared by the AST and symbol mode caches
	// (spec.md §4.F: "N ≈ 100").
	NodeBufferCapacity int `yaml:"node_buffer_capacity"`

	MaxErrors   int `yaml:"max_errors"`
	MaxWarnings int `yaml:"max_warnings"`

	MaxSteps       uint64 `yaml:"max_steps"`
	MaxCallDepth   int    `yaml:"max_call_depth"`
	VirtualHeapLen int    `yaml:"virtual_heap_bytes"`
	NumTemps       int    `yaml:"num_temps"`
	NumVars        int    `yaml:"num_vars"`
}

// Default matches the constants named throughout spec.md.
func Default() Config {
	return Config{
		NodeBufferCapacity: 100,
		MaxErrors:          100,
		MaxWarnings:        200,
		MaxSteps:           1_000_000,
		MaxCallDepth:       256,
		VirtualHeapLen:     1 << 20,
		NumTemps:           4096,
		NumVars:            4096,
	}
}

// Load reads path (if it exists) and overlays it on Default. A missing file
// is not an error: the toolchain runs with documented defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

package server

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"gocrystal/pkg/lattice"
)

// Config is the server configuration, loadable from YAML. Zero values fall
// back to defaults.
type Config struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins"`

	// Render defaults, overridable per request.
	Elev   float64 `yaml:"elev"`
	Azim   float64 `yaml:"azim"`
	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`

	// HexCRatio overrides the hexagonal/trigonal c axial ratio when > 0.
	HexCRatio float64 `yaml:"hex_c_ratio"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		Addr:        ":8080",
		CORSOrigins: []string{"*"},
		Elev:        30,
		Azim:        -45,
		Width:       300,
		Height:      300,
	}
}

// LoadConfig reads a YAML config file over the defaults. An empty path
// returns the defaults unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Apply pushes config-level lattice overrides into the cell table.
func (c Config) Apply() {
	if c.HexCRatio > 0 {
		for _, sys := range []lattice.System{lattice.Hexagonal, lattice.Trigonal} {
			p := lattice.Cells[sys]
			p.C = c.HexCRatio
			lattice.Cells[sys] = p
		}
	}
}

// Package config holds the shared geometry settings threaded through every
// builder: wall thickness, screw geometry, rounding, tessellation resolution
// and the small slack used to keep boolean operands from sharing faces.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the set of global part settings. All lengths are in mm.
type Config struct {
	Thickness         float64 `toml:"thickness"`           // wall and base plate thickness
	ScrewDiameter     float64 `toml:"screw_diameter"`      // shaft diameter
	ScrewHeadDiameter float64 `toml:"screw_head_diameter"` // head diameter
	Countersunk       bool    `toml:"countersunk"`         // conical seat instead of a flat counterbore
	ScrewExtension    float64 `toml:"screw_extension"`     // head clearance cut above the seat
	RoundingRadius    float64 `toml:"rounding_radius"`     // base plate corner radius
	Champfer          float64 `toml:"champfer"`            // bore entry bevel depth
	FitEpsilon        float64 `toml:"fit_epsilon"`         // added to every bore diameter
	Segments          int     `toml:"segments"`            // facets per full circle
	Slack             float64 `toml:"slack"`               // overcut against coincident faces
	MeshCells         int     `toml:"mesh_cells"`          // marching cubes cells along the longest axis
	Strict            bool    `toml:"strict"`              // promote overlap warnings to errors
}

// Default returns the settings used when no configuration file is given.
func Default() Config {
	return Config{
		Thickness:         2.5,
		ScrewDiameter:     4,
		ScrewHeadDiameter: 8,
		Countersunk:       true,
		ScrewExtension:    30,
		RoundingRadius:    3,
		Champfer:          1,
		FitEpsilon:        0.4,
		Segments:          64,
		Slack:             0.01,
		MeshCells:         200,
	}
}

// Load reads a TOML file on top of Default. Keys missing from the file keep
// their default value.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports settings that would make every part degenerate.
func (c Config) Validate() error {
	var errs []error
	if c.Thickness <= 0 {
		errs = append(errs, fmt.Errorf("thickness is %.4f, must be positive", c.Thickness))
	}
	if c.ScrewDiameter <= 0 {
		errs = append(errs, fmt.Errorf("screw_diameter is %.4f, must be positive", c.ScrewDiameter))
	}
	if c.ScrewHeadDiameter < c.ScrewDiameter {
		errs = append(errs, fmt.Errorf("screw_head_diameter %.4f is smaller than screw_diameter %.4f",
			c.ScrewHeadDiameter, c.ScrewDiameter))
	}
	if c.RoundingRadius < 0 {
		errs = append(errs, fmt.Errorf("rounding_radius is %.4f, must not be negative", c.RoundingRadius))
	}
	if c.Champfer < 0 {
		errs = append(errs, fmt.Errorf("champfer is %.4f, must not be negative", c.Champfer))
	}
	if c.FitEpsilon < 0 {
		errs = append(errs, fmt.Errorf("fit_epsilon is %.4f, must not be negative", c.FitEpsilon))
	}
	if c.Segments < 3 {
		errs = append(errs, fmt.Errorf("segments is %d, need at least 3", c.Segments))
	}
	if c.Slack < 0 {
		errs = append(errs, fmt.Errorf("slack is %.4f, must not be negative", c.Slack))
	}
	if c.MeshCells <= 0 {
		errs = append(errs, fmt.Errorf("mesh_cells is %d, must be positive", c.MeshCells))
	}
	return errors.Join(errs...)
}

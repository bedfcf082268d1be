package config

import (
	"fmt"
	"sort"

	"github.com/san-kum/gravitas/internal/dynamo"
)

// Presets build a fresh Config per call so callers may modify the result.
var Presets = map[string]func() *Config{
	"default": DefaultConfig,
	"binary": func() *Config {
		c := DefaultConfig()
		c.Bodies.Primaries = []PrimaryConfig{
			{X: 300, Y: 300, Mass: 60},
			{X: 500, Y: 300, Mass: 60},
		}
		c.Bodies.Dynamics = 40
		return c
	},
	"crowded": func() *Config {
		c := DefaultConfig()
		c.Bodies.Dynamics = 150
		c.Bodies.DynamicMass = Range{Min: 1, Max: 4}
		c.Ticks = 2000
		return c
	},
	"collisions": func() *Config {
		c := DefaultConfig()
		c.DynamicCollisions = true
		c.Bodies.Dynamics = 80
		c.Bodies.DynamicSpeed = 1.5
		return c
	},
	"scattered": func() *Config {
		c := DefaultConfig()
		c.Bodies.Primaries = nil
		c.Bodies.RandomPrimaries = 5
		return c
	},
}

func GetPreset(name string) (*Config, error) {
	build, ok := Presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", dynamo.ErrUnknownPreset, name)
	}
	return build(), nil
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

package config

import (
	"fmt"
	"os"

	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/gravitas/internal/dynamo"
	"github.com/san-kum/gravitas/internal/sim"
)

const (
	DefaultTicks     = 1000
	DefaultDynamics  = 50
	DefaultSeedMass  = 50.0
	DefaultSpawnMinX = 100.0
	DefaultSpawnMinY = 100.0
	DefaultSpawnMaxX = 700.0
	DefaultSpawnMaxY = 500.0
)

type Config struct {
	Seed              int64         `yaml:"seed"`
	Ticks             int           `yaml:"ticks"`
	DynamicCollisions bool          `yaml:"dynamic_collisions"`
	Bodies            BodiesConfig  `yaml:"bodies"`
	Physics           PhysicsConfig `yaml:"physics"`
}

type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

func (p Point) Vec() r2.Vec { return r2.Vec{X: p.X, Y: p.Y} }

type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

type PrimaryConfig struct {
	X    float64 `yaml:"x"`
	Y    float64 `yaml:"y"`
	Mass float64 `yaml:"mass"`
}

// BodiesConfig is the initial population.
type BodiesConfig struct {
	Primaries       []PrimaryConfig `yaml:"primaries"`
	RandomPrimaries int             `yaml:"random_primaries"`
	Dynamics        int             `yaml:"dynamics"`
	DynamicMass     Range           `yaml:"dynamic_mass"`
	DynamicSpeed    float64         `yaml:"dynamic_speed"`
	SpawnMin        Point           `yaml:"spawn_min"`
	SpawnMax        Point           `yaml:"spawn_max"`
}

// PhysicsConfig mirrors dynamo.Params.
type PhysicsConfig struct {
	G                  float64 `yaml:"g"`
	Softening          float64 `yaml:"softening"`
	DistanceExp        float64 `yaml:"distance_exp"`
	MaxForce           float64 `yaml:"max_force"`
	MaxVelocity        float64 `yaml:"max_velocity"`
	Dt                 float64 `yaml:"dt"`
	Damping            float64 `yaml:"damping"`
	Tangential         Range   `yaml:"tangential"`
	Jitter             float64 `yaml:"jitter"`
	Restitution        float64 `yaml:"restitution"`
	CollisionDamping   float64 `yaml:"collision_damping"`
	DynamicScale       float64 `yaml:"dynamic_scale"`
	TrailLength        int     `yaml:"trail_length"`
	World              Point   `yaml:"world"`
	SmallHalfSize      float64 `yaml:"small_half_size"`
	LargeHalfSize      float64 `yaml:"large_half_size"`
	ProximityThreshold float64 `yaml:"proximity_threshold"`
	MergeTicks         int     `yaml:"merge_ticks"`
	BurstCount         int     `yaml:"burst_count"`
	BurstMass          float64 `yaml:"burst_mass"`
	BurstLifetime      int     `yaml:"burst_lifetime"`
	BurstSpeed         Range   `yaml:"burst_speed"`
}

func DefaultConfig() *Config {
	p := dynamo.DefaultParams()
	return &Config{
		Ticks: DefaultTicks,
		Bodies: BodiesConfig{
			Primaries: []PrimaryConfig{
				{X: 200, Y: 150, Mass: DefaultSeedMass},
				{X: 600, Y: 150, Mass: DefaultSeedMass},
				{X: 400, Y: 450, Mass: DefaultSeedMass},
			},
			Dynamics:     DefaultDynamics,
			DynamicMass:  Range{Min: 2, Max: 8},
			DynamicSpeed: 0.5,
			SpawnMin:     Point{X: DefaultSpawnMinX, Y: DefaultSpawnMinY},
			SpawnMax:     Point{X: DefaultSpawnMaxX, Y: DefaultSpawnMaxY},
		},
		Physics: PhysicsConfig{
			G:                  p.G,
			Softening:          p.Softening,
			DistanceExp:        p.DistanceExp,
			MaxForce:           p.MaxForce,
			MaxVelocity:        p.MaxVelocity,
			Dt:                 p.ForceDt,
			Damping:            p.Damping,
			Tangential:         Range{Min: p.TangentialMin, Max: p.TangentialMax},
			Jitter:             p.Jitter,
			Restitution:        p.Restitution,
			CollisionDamping:   p.CollisionDamping,
			DynamicScale:       p.DynamicScale,
			TrailLength:        p.TrailLength,
			World:              Point{X: p.World.X, Y: p.World.Y},
			SmallHalfSize:      p.SmallHalfSize,
			LargeHalfSize:      p.LargeHalfSize,
			ProximityThreshold: p.ProximityThreshold,
			MergeTicks:         p.MergeTicks,
			BurstCount:         p.BurstCount,
			BurstMass:          p.BurstMass,
			BurstLifetime:      p.BurstLifetime,
			BurstSpeed:         Range{Min: p.BurstSpeedMin, Max: p.BurstSpeedMax},
		},
	}
}

// Load overlays the YAML file at path onto DefaultConfig.
func Load(path string) (*Config, error) {
	return LoadOnto(path, DefaultConfig())
}

// LoadOnto overlays the YAML file at path onto base, which is modified in
// place. Keys absent from the file keep their base values.
func LoadOnto(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, base); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return base, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Params() dynamo.Params {
	ph := c.Physics
	return dynamo.Params{
		G:                  ph.G,
		Softening:          ph.Softening,
		DistanceExp:        ph.DistanceExp,
		MaxForce:           ph.MaxForce,
		MaxVelocity:        ph.MaxVelocity,
		ForceDt:            ph.Dt,
		Damping:            ph.Damping,
		TangentialMin:      ph.Tangential.Min,
		TangentialMax:      ph.Tangential.Max,
		Jitter:             ph.Jitter,
		Restitution:        ph.Restitution,
		CollisionDamping:   ph.CollisionDamping,
		DynamicScale:       ph.DynamicScale,
		TrailLength:        ph.TrailLength,
		World:              ph.World.Vec(),
		SmallHalfSize:      ph.SmallHalfSize,
		LargeHalfSize:      ph.LargeHalfSize,
		ProximityThreshold: ph.ProximityThreshold,
		MergeTicks:         ph.MergeTicks,
		BurstCount:         ph.BurstCount,
		BurstMass:          ph.BurstMass,
		BurstLifetime:      ph.BurstLifetime,
		BurstSpeedMin:      ph.BurstSpeed.Min,
		BurstSpeedMax:      ph.BurstSpeed.Max,
	}
}

func (c *Config) Setup() sim.Setup {
	b := c.Bodies
	primaries := make([]sim.PrimarySeed, len(b.Primaries))
	for i, p := range b.Primaries {
		primaries[i] = sim.PrimarySeed{Pos: r2.Vec{X: p.X, Y: p.Y}, Mass: p.Mass}
	}
	return sim.Setup{
		Seed:              c.Seed,
		Primaries:         primaries,
		RandomPrimaries:   b.RandomPrimaries,
		Dynamics:          b.Dynamics,
		DynamicMassMin:    b.DynamicMass.Min,
		DynamicMassMax:    b.DynamicMass.Max,
		DynamicSpeed:      b.DynamicSpeed,
		SpawnMin:          b.SpawnMin.Vec(),
		SpawnMax:          b.SpawnMax.Vec(),
		DynamicCollisions: c.DynamicCollisions,
		ValidateState:     true,
	}
}

func (c *Config) Validate() error {
	if c.Ticks <= 0 {
		return fmt.Errorf("%w: ticks must be positive, got %d", dynamo.ErrParameterBounds, c.Ticks)
	}
	if err := c.Params().Validate(); err != nil {
		return err
	}
	return c.Setup().Validate()
}

package config

import (
	"io/ioutil"
	"math"
	"time"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// MaxDepthLimit bounds trees to 5^8 leaves.
const MaxDepthLimit = 8

const MaxTicksPerSecond = 1000

type Material struct {
	Name      string  `yaml:"name" json:"name"`
	Roughness float32 `yaml:"roughness" json:"roughness"`
	Metallic  float32 `yaml:"metallic" json:"metallic"`
}

type Config struct {
	Mesh     string   `yaml:"mesh" json:"mesh"`
	Material Material `yaml:"material" json:"material"`

	MaxDepth         int     `yaml:"max_depth" json:"max_depth"`
	ChildScale       float32 `yaml:"child_scale" json:"child_scale"`
	MaxRotationSpeed float32 `yaml:"max_rotation_speed" json:"max_rotation_speed"`
	MaxTwist         float32 `yaml:"max_twist" json:"max_twist"`

	SpawnDelayMin float32 `yaml:"spawn_delay_min" json:"spawn_delay_min"`
	SpawnDelayMax float32 `yaml:"spawn_delay_max" json:"spawn_delay_max"`

	LowColor  string `yaml:"low_color" json:"low_color"`
	HighColor string `yaml:"high_color" json:"high_color"`

	TicksPerSecond int   `yaml:"ticks_per_second" json:"ticks_per_second"`
	Seed           int64 `yaml:"seed" json:"seed"`
	Verbose        bool  `yaml:"verbose" json:"verbose"`
}

func Default() Config {
	return Config{
		Mesh: "cube",
		Material: Material{
			Name:      "fractal",
			Roughness: 0.5,
		},
		MaxDepth:         4,
		ChildScale:       0.5,
		MaxRotationSpeed: 60,
		MaxTwist:         20,
		SpawnDelayMin:    0.1,
		SpawnDelayMax:    0.5,
		LowColor:         "#ff0000",
		HighColor:        "#0000ff",
		TicksPerSecond:   30,
	}
}

// Load reads a yaml file on top of Default(). Fields missing from the file keep
// their default values.
func Load(path string) (Config, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "Cannot read config %q", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, errors.Wrapf(err, "Config %q", path)
	}
	return cfg, nil
}

func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := cfg.Merge(data); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Merge overrides c with the fields present in data (yaml, so json works too)
// and validates the result.
func (c *Config) Merge(data []byte) error {
	next := *c
	if err := yaml.Unmarshal(data, &next); err != nil {
		return errors.Wrapf(err, "Unmarshaling error")
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

func finite(v float32) bool {
	return !math.IsNaN(float64(v)) && !math.IsInf(float64(v), 0)
}

func (c *Config) Validate() error {
	for _, f := range []struct {
		name  string
		value float32
	}{
		{"child_scale", c.ChildScale},
		{"max_rotation_speed", c.MaxRotationSpeed},
		{"max_twist", c.MaxTwist},
		{"spawn_delay_min", c.SpawnDelayMin},
		{"spawn_delay_max", c.SpawnDelayMax},
		{"material.roughness", c.Material.Roughness},
		{"material.metallic", c.Material.Metallic},
	} {
		if !finite(f.value) {
			return errors.Errorf("%s must be a finite number, got %v", f.name, f.value)
		}
	}

	switch {
	case c.MaxDepth < 0:
		return errors.Errorf("max_depth must not be negative, got %d", c.MaxDepth)
	case c.MaxDepth > MaxDepthLimit:
		return errors.Errorf("max_depth %d is over the limit of %d", c.MaxDepth, MaxDepthLimit)
	case c.ChildScale <= 0:
		return errors.Errorf("child_scale must be positive, got %v", c.ChildScale)
	case c.MaxRotationSpeed < 0:
		return errors.Errorf("max_rotation_speed must not be negative, got %v", c.MaxRotationSpeed)
	case c.MaxTwist < 0:
		return errors.Errorf("max_twist must not be negative, got %v", c.MaxTwist)
	case c.SpawnDelayMin < 0 || c.SpawnDelayMax < c.SpawnDelayMin:
		return errors.Errorf("invalid spawn delay range [%v, %v]", c.SpawnDelayMin, c.SpawnDelayMax)
	case c.TicksPerSecond <= 0 || c.TicksPerSecond > MaxTicksPerSecond:
		return errors.Errorf("ticks_per_second must be in [1, %d], got %d", MaxTicksPerSecond, c.TicksPerSecond)
	}
	if _, _, err := c.Colors(); err != nil {
		return err
	}
	return nil
}

func (c *Config) Colors() (low, high colorful.Color, err error) {
	if low, err = colorful.Hex(c.LowColor); err != nil {
		return low, high, errors.Wrapf(err, "low_color %q", c.LowColor)
	}
	if high, err = colorful.Hex(c.HighColor); err != nil {
		return low, high, errors.Wrapf(err, "high_color %q", c.HighColor)
	}
	return low, high, nil
}

func (c *Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.TicksPerSecond)
}

// LoadOrDefault is Load for a non empty path and Default otherwise.
func LoadOrDefault(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

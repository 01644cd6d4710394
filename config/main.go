package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/lin71008/RollerCoasters/curve"
	"github.com/lin71008/RollerCoasters/train"
	"gopkg.in/yaml.v3"
)

// Config holds the initial simulation settings and where to serve and store things.
type Config struct {
	// TickRate is the number of simulation ticks per second.
	TickRate  int        `yaml:"tick-rate" json:"tick-rate"`
	Mode      curve.Mode `yaml:"mode" json:"mode"`
	Speed     float64    `yaml:"speed" json:"speed"`
	ArcLength bool       `yaml:"arc-length" json:"arc-length"`
	Physics   bool       `yaml:"physics" json:"physics"`
	Cars      int        `yaml:"cars" json:"cars"`

	Listen         string   `yaml:"listen" json:"listen"`
	DB             string   `yaml:"db" json:"db"`
	AllowedOrigins []string `yaml:"allowed-origins" json:"allowed-origins"`

	Seed          int64   `yaml:"seed" json:"seed"`
	SceneryExtent float64 `yaml:"scenery-extent" json:"scenery-extent"`
}

const MaxSpeed = 10

func Default() Config {
	return Config{
		TickRate:       30,
		Mode:           curve.CardinalCubic,
		Speed:          2,
		ArcLength:      true,
		Physics:        true,
		Cars:           1,
		Listen:         "127.0.0.1:8001",
		DB:             "rollercoaster.db",
		AllowedOrigins: []string{"*"},
		Seed:           1,
		SceneryExtent:  100,
	}
}

// Load reads a YAML config file on top of Default.
// An empty path returns Default unchanged.
func Load(path string) (Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("parsing config YAML: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return c, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.TickRate < 1 || c.TickRate > 240 {
		errs = append(errs, fmt.Errorf("tick-rate %d out of range [1, 240]", c.TickRate))
	}
	if !c.Mode.Valid() {
		errs = append(errs, fmt.Errorf("unknown mode %s", c.Mode))
	}
	if !(c.Speed >= 0 && c.Speed <= MaxSpeed) {
		errs = append(errs, fmt.Errorf("speed %g out of range [0, %d]", c.Speed, MaxSpeed))
	}
	if c.Cars < train.MinCars || c.Cars > train.MaxCars {
		errs = append(errs, fmt.Errorf("cars %d out of range [%d, %d]", c.Cars, train.MinCars, train.MaxCars))
	}
	if c.SceneryExtent <= 0 {
		errs = append(errs, fmt.Errorf("scenery-extent must be positive, got %g", c.SceneryExtent))
	}
	return errors.Join(errs...)
}

// TickInterval is the time between simulation ticks.
func (c Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}

// Package config loads and saves steplab run configuration.
package config

import (
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mechalab/steplab/internal/plant"
)

const (
	DefaultPort       = "/dev/ttyACM0"
	DefaultBaud       = 115200
	DefaultKp         = 0.05
	DefaultPeriodMS   = 10
	DefaultSetpoint   = 8150
	DefaultSetpoint2  = 32000
	DefaultDataPoints = 100
)

type Config struct {
	Port       string      `yaml:"port"`
	Baud       int         `yaml:"baud"`
	Kp         float64     `yaml:"kp"`
	PeriodMS   int         `yaml:"period_ms"`
	Setpoint   int         `yaml:"setpoint"`
	Setpoint2  int         `yaml:"setpoint2"`
	DataPoints int         `yaml:"data_points"`
	Plant      PlantConfig `yaml:"plant"`
}

// PlantConfig parameterizes the simulated motor used by the simulate
// command.
type PlantConfig struct {
	MaxRate        float64 `yaml:"max_rate"`
	TimeConstantMS int     `yaml:"time_constant_ms"`
}

func DefaultConfig() *Config {
	return &Config{
		Port:       DefaultPort,
		Baud:       DefaultBaud,
		Kp:         DefaultKp,
		PeriodMS:   DefaultPeriodMS,
		Setpoint:   DefaultSetpoint,
		Setpoint2:  DefaultSetpoint2,
		DataPoints: DefaultDataPoints,
		Plant: PlantConfig{
			MaxRate:        plant.DefaultMaxRate,
			TimeConstantMS: int(plant.DefaultTimeConstant / time.Millisecond),
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Normalize substitutes the defaults for any out-of-range value. Bad
// configuration input never fails a session; it falls back silently.
//
// A zero setpoint reads as "unset" and gets the default: the motor starts at
// a zeroed encoder, so a zero-setpoint run would command nothing. A run that
// genuinely targets zero is not expressible in the config file; pass
// --setpoint 0 on the command line instead.
func (c *Config) Normalize() {
	if c.Port == "" {
		c.Port = DefaultPort
	}
	if c.Baud <= 0 {
		c.Baud = DefaultBaud
	}
	if c.Kp <= 0 || math.IsNaN(c.Kp) || math.IsInf(c.Kp, 0) {
		c.Kp = DefaultKp
	}
	if c.PeriodMS <= 0 {
		c.PeriodMS = DefaultPeriodMS
	}
	if c.DataPoints <= 0 {
		c.DataPoints = DefaultDataPoints
	}
	if c.Setpoint == 0 {
		c.Setpoint = DefaultSetpoint
	}
	if c.Setpoint2 == 0 {
		c.Setpoint2 = DefaultSetpoint2
	}
	if c.Plant.MaxRate <= 0 {
		c.Plant.MaxRate = plant.DefaultMaxRate
	}
	if c.Plant.TimeConstantMS <= 0 {
		c.Plant.TimeConstantMS = int(plant.DefaultTimeConstant / time.Millisecond)
	}
}

// Period returns the task period as a duration.
func (c *Config) Period() time.Duration {
	return time.Duration(c.PeriodMS) * time.Millisecond
}

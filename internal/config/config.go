package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/cosmodist/internal/cosmo"
	"github.com/san-kum/cosmodist/internal/integrators"
)

const (
	DefaultH0         = 67.32
	DefaultOmegaM     = 0.3158
	DefaultUnit       = "mpc"
	DefaultIntegrator = integrators.DefaultName
)

type Config struct {
	Cosmology  CosmologyConfig `yaml:"cosmology"`
	Extend     ExtendConfig    `yaml:"extend"`
	Integrator string          `yaml:"integrator"`
}

type CosmologyConfig struct {
	H0             float64 `yaml:"h0"`
	OmegaMatter    float64 `yaml:"omega_matter"`
	OmegaRadiation float64 `yaml:"omega_radiation"`
	// OmegaLambda is derived as 1 - Om - Or when omitted.
	OmegaLambda *float64 `yaml:"omega_lambda,omitempty"`
	Unit        string   `yaml:"unit"`
}

// ExtendConfig holds the extend targets. Distances are in the cosmology's
// unit and volume in unit^3; Bounds converts them to cm.
type ExtendConfig struct {
	MaxZ     float64 `yaml:"max_z"`
	MaxDL    float64 `yaml:"max_dl"`
	MaxDc    float64 `yaml:"max_dc"`
	MaxVc    float64 `yaml:"max_vc"`
	Dz       float64 `yaml:"dz"`
	MaxSteps int     `yaml:"max_steps"`
	ZCeiling float64 `yaml:"z_ceiling"`
}

func DefaultConfig() *Config {
	return &Config{
		Cosmology: CosmologyConfig{
			H0:          DefaultH0,
			OmegaMatter: DefaultOmegaM,
			Unit:        DefaultUnit,
		},
		Extend: ExtendConfig{
			MaxZ:     cosmo.DefaultMaxZ,
			Dz:       cosmo.DefaultStep,
			MaxSteps: cosmo.DefaultMaxSteps,
			ZCeiling: cosmo.DefaultZCeiling,
		},
		Integrator: DefaultIntegrator,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Lambda returns OmegaLambda, deriving it for flatness when unset.
func (c CosmologyConfig) Lambda() float64 {
	if c.OmegaLambda != nil {
		return *c.OmegaLambda
	}
	return 1.0 - (c.OmegaMatter + c.OmegaRadiation)
}

// Params converts the cosmology section into validated parameters.
func (c *Config) Params() (*cosmo.Params, error) {
	unit, err := cosmo.ParseUnit(c.Cosmology.Unit)
	if err != nil {
		return nil, err
	}
	return cosmo.NewParams(
		cosmo.HubbleFromKmSMpc(c.Cosmology.H0),
		c.Cosmology.OmegaMatter,
		c.Cosmology.OmegaRadiation,
		c.Cosmology.Lambda(),
		unit,
	)
}

// Bounds converts the extend targets to base units.
func (c *Config) Bounds() (cosmo.Bounds, error) {
	unit, err := cosmo.ParseUnit(c.Cosmology.Unit)
	if err != nil {
		return cosmo.Bounds{}, err
	}
	scale := unit.Scale()
	return cosmo.Bounds{
		MaxZ:  c.Extend.MaxZ,
		MaxDL: c.Extend.MaxDL * scale,
		MaxDc: c.Extend.MaxDc * scale,
		MaxVc: c.Extend.MaxVc * scale * scale * scale,
	}, nil
}

func (c *Config) ExtendConfig() cosmo.ExtendConfig {
	return cosmo.ExtendConfig{
		Step:     c.Extend.Dz,
		MaxSteps: c.Extend.MaxSteps,
		ZCeiling: c.Extend.ZCeiling,
	}
}

// Table builds a table for the configured cosmology and stepper, without
// extending it.
func (c *Config) Table(opts ...cosmo.Option) (*cosmo.Table, error) {
	p, err := c.Params()
	if err != nil {
		return nil, err
	}
	integ, err := integrators.Get(c.Integrator)
	if err != nil {
		return nil, err
	}
	return cosmo.NewTable(p, append([]cosmo.Option{cosmo.WithIntegrator(integ)}, opts...)...), nil
}

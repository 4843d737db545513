package config

import (
	"sort"

	"github.com/san-kum/cosmodist/internal/cosmo"
)

func lambda(v float64) *float64 { return &v }

var Presets = map[string]CosmologyConfig{
	"planck2018": {
		H0: cosmo.Planck2018H0(), OmegaMatter: cosmo.Planck2018OmegaMatter(),
		OmegaRadiation: cosmo.Planck2018OmegaRadiation(),
		OmegaLambda:    lambda(cosmo.Planck2018OmegaLambda()), Unit: "mpc",
	},
	"planck2015": {H0: 67.74, OmegaMatter: 0.3089, Unit: "mpc"},
	"wmap9":      {H0: 69.32, OmegaMatter: 0.2865, Unit: "mpc"},
	"einstein_de_sitter": {
		H0: 70, OmegaMatter: 1, OmegaLambda: lambda(0), Unit: "mpc",
	},
	"de_sitter": {H0: 70, OmegaMatter: 0, OmegaLambda: lambda(1), Unit: "mpc"},
}

// GetPreset returns a default config with the named cosmology, or nil.
func GetPreset(name string) *Config {
	c, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Cosmology = c
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

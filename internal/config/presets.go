package config

import "sort"

// Presets are named tuning profiles. Each one is a delta against the
// defaults, aimed at a particular shape of step response.
var Presets = map[string]*Config{
	"gentle": {
		Kp:       0.01,
		PeriodMS: 10,
	},
	"nominal": {
		Kp:       DefaultKp,
		PeriodMS: DefaultPeriodMS,
	},
	"aggressive": {
		Kp:       0.3,
		PeriodMS: 5,
	},
	"slow-sample": {
		Kp:       DefaultKp,
		PeriodMS: 50,
	},
}

// GetPreset returns a full config for the named profile, or nil if no such
// preset exists. The result is a copy and safe to mutate.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Kp = p.Kp
	cfg.PeriodMS = p.PeriodMS
	cfg.Normalize()
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

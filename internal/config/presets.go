package config

var Presets = map[string]*Config{
	"granite-reference": {
		Mode: "continuous", Material: "granite", Frequency: 7.83,
		DriveLevel: 110, LevelUnit: "db", Area: 0.01,
		Coupling: DefaultCoupling, PulseDuration: DefaultPulse,
		Run: RunConfig{Duration: 600, Dt: 0.01},
	},
	"frequency-scan": {
		Mode: "continuous", Material: "granite",
		DriveLevel: 110, LevelUnit: "db", Area: 0.01,
		Coupling: DefaultCoupling, PulseDuration: DefaultPulse,
		Sweep: SweepConfig{
			Frequencies: []float64{4.0, 6.0, 7.0, 7.83, 9.0, 11.0, 14.0},
		},
		Run: RunConfig{Duration: 600, Dt: 0.01},
	},
	"material-comparison": {
		Mode: "continuous", Frequency: 7.83,
		DriveLevel: 110, LevelUnit: "db", Area: 0.01,
		Coupling: DefaultCoupling, PulseDuration: DefaultPulse,
		Sweep: SweepConfig{
			Materials: []string{"granite", "basalt", "marble", "limestone", "concrete", "sandstone", "steel"},
		},
		Run: RunConfig{Duration: 600, Dt: 0.01},
	},
	"impulse-coupling": {
		Mode: "impulse", Material: "granite", Frequency: 7.83,
		DriveLevel: 0.5, LevelUnit: "watt", Area: 0.01,
		Coupling: 0.3, PulseDuration: 0.05,
		Sweep: SweepConfig{
			Modes: []string{"continuous", "impulse"},
		},
		Run: RunConfig{Duration: 1200, Dt: 0.01, DriveDuration: 600},
	},
}

// GetPreset returns a copy of the named preset, or nil if it does not
// exist. The copy owns its sweep-axis slices, so callers layering flags or
// config files on top can never mutate the shared preset table.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := *p
	cfg.Sweep.Materials = append([]string(nil), p.Sweep.Materials...)
	cfg.Sweep.Modes = append([]string(nil), p.Sweep.Modes...)
	cfg.Sweep.Frequencies = append([]float64(nil), p.Sweep.Frequencies...)
	cfg.Sweep.DriveLevels = append([]float64(nil), p.Sweep.DriveLevels...)
	return &cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}

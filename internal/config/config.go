package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/resonance/internal/engine"
	"github.com/san-kum/resonance/internal/sweep"
)

const (
	DefaultMaterial  = "granite"
	DefaultFrequency = 7.83
	DefaultLevelDB   = 110.0
	DefaultArea      = 0.01
	DefaultCoupling  = 0.3
	DefaultPulse     = 0.05
)

// Config is the on-disk run description. A single run uses the scalar
// fields; the sweep block, when any of its axes is set, overrides the
// corresponding scalar.
type Config struct {
	Mode       string  `yaml:"mode"`
	Material   string  `yaml:"material"`
	Frequency  float64 `yaml:"frequency"`
	DriveLevel float64 `yaml:"drive_level"`
	LevelUnit  string  `yaml:"level_unit"`

	Area          float64 `yaml:"area"`
	QOverride     float64 `yaml:"q_override"`
	Coupling      float64 `yaml:"coupling"`
	PulseDuration float64 `yaml:"pulse_duration"`

	Sweep SweepConfig `yaml:"sweep"`
	Run   RunConfig   `yaml:"run"`
}

// SweepConfig lists the grid axes. Empty axes inherit the scalar fields.
type SweepConfig struct {
	Materials   []string  `yaml:"materials"`
	Modes       []string  `yaml:"modes"`
	Frequencies []float64 `yaml:"frequencies"`
	DriveLevels []float64 `yaml:"drive_levels"`
}

// RunConfig mirrors the engine tuning parameters in YAML form. Zero fields
// keep the engine defaults.
type RunConfig struct {
	Dt                float64 `yaml:"dt"`
	Duration          float64 `yaml:"duration"`
	DriveDuration     float64 `yaml:"drive_duration"`
	NominalMass       float64 `yaml:"nominal_mass"`
	BaseOffset        float64 `yaml:"base_offset"`
	MaxDecoupling     float64 `yaml:"max_decoupling"`
	ModulationDepth   float64 `yaml:"modulation_depth"`
	ModulationCycle   float64 `yaml:"modulation_cycle"`
	PeakFrequency     float64 `yaml:"peak_frequency"`
	MismatchGain      float64 `yaml:"mismatch_gain"`
	EnergyScale       float64 `yaml:"energy_scale"`
	CirculationFactor float64 `yaml:"circulation_factor"`
	Epsilon           float64 `yaml:"epsilon"`
}

func DefaultConfig() *Config {
	return &Config{
		Mode:          engine.ModeContinuous.String(),
		Material:      DefaultMaterial,
		Frequency:     DefaultFrequency,
		DriveLevel:    DefaultLevelDB,
		LevelUnit:     "db",
		Area:          DefaultArea,
		Coupling:      DefaultCoupling,
		PulseDuration: DefaultPulse,
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
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// EngineRun resolves the YAML tuning block against the engine defaults.
func (c *Config) EngineRun() engine.RunConfig {
	rc := engine.DefaultRunConfig()
	if c.Run.Dt > 0 {
		rc.Dt = c.Run.Dt
	}
	if c.Run.Duration != 0 {
		rc.Duration = c.Run.Duration
	}
	if c.Run.DriveDuration > 0 {
		rc.DriveDuration = c.Run.DriveDuration
	} else if c.Run.Duration != 0 {
		rc.DriveDuration = c.Run.Duration
	}
	if c.Run.NominalMass > 0 {
		rc.NominalMass = c.Run.NominalMass
	}
	if c.Run.BaseOffset > 0 {
		rc.OBase = c.Run.BaseOffset
	}
	if c.Run.MaxDecoupling > 0 {
		rc.DMax = c.Run.MaxDecoupling
	}
	if c.Run.ModulationDepth > 0 {
		rc.ModulationDepth = c.Run.ModulationDepth
	}
	if c.Run.ModulationCycle > 0 {
		rc.ModulationCycle = c.Run.ModulationCycle
	}
	if c.Run.PeakFrequency > 0 {
		rc.PeakFrequency = c.Run.PeakFrequency
	}
	if c.Run.MismatchGain > 0 {
		rc.MismatchGain = c.Run.MismatchGain
	}
	if c.Run.EnergyScale > 0 {
		rc.EnergyScale = c.Run.EnergyScale
	}
	if c.Run.CirculationFactor > 0 {
		rc.CirculationFactor = c.Run.CirculationFactor
	}
	if c.Run.Epsilon > 0 {
		rc.Epsilon = c.Run.Epsilon
	}
	return rc
}

// SweepConfig expands the configuration into the runner's form. Empty sweep
// axes fall back to the scalar single-run fields, so a plain run config
// describes a 1×1×1×1 sweep.
func (c *Config) SweepConfig() (sweep.Config, error) {
	unit, err := sweep.ParseLevelUnit(c.LevelUnit)
	if err != nil {
		return sweep.Config{}, err
	}

	materials := c.Sweep.Materials
	if len(materials) == 0 {
		materials = []string{c.Material}
	}
	modeNames := c.Sweep.Modes
	if len(modeNames) == 0 {
		modeNames = []string{c.Mode}
	}
	modes := make([]engine.Mode, 0, len(modeNames))
	for _, name := range modeNames {
		m, err := engine.ParseMode(name)
		if err != nil {
			return sweep.Config{}, err
		}
		modes = append(modes, m)
	}
	frequencies := c.Sweep.Frequencies
	if len(frequencies) == 0 {
		frequencies = []float64{c.Frequency}
	}
	levels := c.Sweep.DriveLevels
	if len(levels) == 0 {
		levels = []float64{c.DriveLevel}
	}

	return sweep.Config{
		Materials:     materials,
		Modes:         modes,
		Frequencies:   frequencies,
		DriveLevels:   levels,
		LevelUnit:     unit,
		Area:          c.Area,
		QOverride:     c.QOverride,
		Coupling:      c.Coupling,
		PulseDuration: c.PulseDuration,
		Run:           c.EngineRun(),
	}, nil
}

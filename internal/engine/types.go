package engine

import (
	"fmt"
	"math"
	"strings"
)

// Physical constants shared across the engine.
const (
	// PRef is the reference pressure for dB SPL (20 micropascals).
	PRef = 20e-6

	// RhoAir is air density at sea level in kg/m³.
	RhoAir = 1.225

	// CAir is the speed of sound in air in m/s.
	CAir = 343.0

	// MaxLevelDB is the physical ceiling for a sound pressure level in air:
	// above ~194 dB the rarefaction half-cycle would require negative
	// absolute pressure.
	MaxLevelDB = 194.0

	// EarthG is standard gravity in m/s².
	EarthG = 9.81
)

// Phi is the golden ratio, used by the geometric phase modulation.
var Phi = (1 + math.Sqrt(5)) / 2

// Mode selects the excitation regime of a run.
type Mode int

const (
	ModeContinuous Mode = iota
	ModeImpulse
)

func (m Mode) String() string {
	switch m {
	case ModeContinuous:
		return "continuous"
	case ModeImpulse:
		return "impulse"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode resolves a configuration string to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "continuous":
		return ModeContinuous, nil
	case "impulse":
		return ModeImpulse, nil
	default:
		return 0, fmt.Errorf("%w: unknown mode %q", ErrInvalidParameter, s)
	}
}

// Sample is one instant of a completed run.
type Sample struct {
	T           float64 // seconds since run start
	Stored      float64 // stored energy E(t), joules
	Circulating float64 // circulating energy C(t), joules (impulse mode only)
	Decoupling  float64 // decoupling fraction D(t)
	Weight      float64 // effective weight = nominalMass * (1 - D(t))
}

// Force is the gravitational force on the effective weight, in newtons.
func (s Sample) Force() float64 {
	return s.Weight * EarthG
}

// Trajectory is the ordered output of a completed run. It is owned by the
// caller once returned and never mutated by the engine.
type Trajectory struct {
	Samples    []Sample
	Saturation float64 // analytic limit of D(t) under sustained drive
	Steps      int     // integration steps actually taken
	Mode       Mode
}

// Final returns the last sample of the trajectory.
func (tr *Trajectory) Final() Sample {
	if len(tr.Samples) == 0 {
		return Sample{}
	}
	return tr.Samples[len(tr.Samples)-1]
}

// At returns the first sample with T >= t, or the final sample if t is past
// the end of the run.
func (tr *Trajectory) At(t float64) Sample {
	for _, s := range tr.Samples {
		if s.T >= t {
			return s
		}
	}
	return tr.Final()
}

// Observer receives every sample of a run as it is produced.
type Observer interface {
	OnStep(s Sample)
}

// RunConfig holds the per-run integration and decoupling parameters.
type RunConfig struct {
	Dt            float64 // timestep, seconds
	Duration      float64 // total simulated time, seconds
	DriveDuration float64 // drive active for [0, DriveDuration); defaults to Duration
	NominalMass   float64 // kg

	OBase float64 // baseline decoupling fraction, D(0) and the post-drive asymptote
	DMax  float64 // decoupling ceiling

	ModulationDepth float64 // alpha in G = 1 + alpha*cos(2π·Phi·t/cycle)
	ModulationCycle float64 // seconds
	PeakFrequency   float64 // Hz, center of the resonance response
	MismatchGain    float64 // K in exp(-K·mismatch²)

	EnergyScale       float64 // joules; saturation scale of the accumulation term
	CirculationFactor float64 // tauC = CirculationFactor * tauQ, must be >= 10
	Epsilon           float64 // joules; early-exit threshold once drive has stopped
}

// DefaultRunConfig returns the reference run parameters. The modulation and
// response constants follow the published model: 15% golden-ratio modulation
// on a 60 s cycle, response peak at 7.83 Hz with a 1.5 Hz Gaussian width.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		Dt:                0.01,
		Duration:          600.0,
		DriveDuration:     600.0,
		NominalMass:       0.1,
		OBase:             0.0,
		DMax:              0.95,
		ModulationDepth:   0.15,
		ModulationCycle:   60.0,
		PeakFrequency:     7.83,
		MismatchGain:      1.0 / (2 * 1.5 * 1.5),
		EnergyScale:       1.0,
		CirculationFactor: 20.0,
		Epsilon:           1e-9,
	}
}

// Validate checks the bounds the integrator relies on. Frequency-dependent
// checks (the dt/tauQ precondition) live with the accumulator, which knows
// the drive frequency.
func (c RunConfig) Validate() error {
	switch {
	case c.Dt <= 0:
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalidParameter, c.Dt)
	case c.Duration <= 0:
		return fmt.Errorf("%w: duration must be positive, got %g", ErrInvalidParameter, c.Duration)
	case c.DriveDuration < 0 || c.DriveDuration > c.Duration:
		return fmt.Errorf("%w: drive duration %g outside [0, %g]", ErrInvalidParameter, c.DriveDuration, c.Duration)
	case c.NominalMass <= 0:
		return fmt.Errorf("%w: nominal mass must be positive, got %g", ErrInvalidParameter, c.NominalMass)
	case c.OBase < 0 || c.DMax > 1 || c.OBase >= c.DMax:
		return fmt.Errorf("%w: need 0 <= oBase < dMax <= 1, got [%g, %g]", ErrInvalidParameter, c.OBase, c.DMax)
	case math.Abs(c.ModulationDepth) >= 0.5:
		return fmt.Errorf("%w: modulation depth %g too large (|alpha| < 0.5)", ErrInvalidParameter, c.ModulationDepth)
	case c.ModulationCycle <= 0:
		return fmt.Errorf("%w: modulation cycle must be positive, got %g", ErrInvalidParameter, c.ModulationCycle)
	case c.MismatchGain < 0:
		return fmt.Errorf("%w: mismatch gain must be non-negative, got %g", ErrInvalidParameter, c.MismatchGain)
	case c.EnergyScale <= 0:
		return fmt.Errorf("%w: energy scale must be positive, got %g", ErrInvalidParameter, c.EnergyScale)
	case c.CirculationFactor < 10:
		return fmt.Errorf("%w: circulation factor must be >= 10 (tauC >> tauQ), got %g", ErrInvalidParameter, c.CirculationFactor)
	case c.Epsilon < 0:
		return fmt.Errorf("%w: epsilon must be non-negative, got %g", ErrInvalidParameter, c.Epsilon)
	}
	return nil
}

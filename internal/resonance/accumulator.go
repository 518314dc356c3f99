// Package resonance implements the core time-stepping integrator: a driven,
// damped energy balance whose stored energy maps to a decoupling fraction.
package resonance

import (
	"fmt"
	"math"

	"github.com/san-kum/resonance/internal/drive"
	"github.com/san-kum/resonance/internal/engine"
	"github.com/san-kum/resonance/internal/material"
)

// Accumulator integrates one run. It owns its field state exclusively; a
// single Run call is single-threaded, synchronous, and deterministic, with
// no suspension points inside the step loop.
type Accumulator struct {
	src       drive.Source
	coupled   drive.CoupledSource // non-nil in impulse mode only
	props     material.Properties
	frequency float64
	cfg       engine.RunConfig
	mode      engine.Mode

	tauQ     float64 // Q/(2π·f), resonance decay constant
	tauC     float64 // circulation decay constant, tauC >> tauQ
	response float64 // exp(-K·mismatch²), fixed per run

	observers []engine.Observer
}

// New validates every precondition up front and fails fast; a constructed
// accumulator cannot fail mid-run.
//
// The stability precondition dt <= 0.1·tauQ is hard: larger steps make the
// explicit decay update inaccurate, and the constructor refuses them with
// ErrUnstable rather than producing a wrong trajectory. A zero DriveDuration
// is taken to mean "drive for the whole run".
func New(mode engine.Mode, src drive.Source, props material.Properties, frequencyHz float64, cfg engine.RunConfig) (*Accumulator, error) {
	if cfg.DriveDuration == 0 {
		cfg.DriveDuration = cfg.Duration
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if frequencyHz <= 0 {
		return nil, fmt.Errorf("%w: frequency must be positive, got %g", engine.ErrInvalidParameter, frequencyHz)
	}
	if props.QFactor <= 0 {
		return nil, fmt.Errorf("%w: Q factor must be positive, got %g", engine.ErrInvalidParameter, props.QFactor)
	}
	if src == nil {
		return nil, fmt.Errorf("%w: nil excitation source", engine.ErrInvalidParameter)
	}

	tauQ := props.DecayTime(frequencyHz)
	if cfg.Dt > 0.1*tauQ {
		return nil, fmt.Errorf("%w: dt=%g > 0.1·tauQ=%g (Q=%g, f=%g Hz)",
			engine.ErrUnstable, cfg.Dt, 0.1*tauQ, props.QFactor, frequencyHz)
	}

	a := &Accumulator{
		src:       src,
		props:     props,
		frequency: frequencyHz,
		cfg:       cfg,
		mode:      mode,
		tauQ:      tauQ,
		tauC:      cfg.CirculationFactor * tauQ,
	}

	mismatch := frequencyHz - cfg.PeakFrequency
	a.response = math.Exp(-cfg.MismatchGain * mismatch * mismatch)

	if mode == engine.ModeImpulse {
		coupled, ok := src.(drive.CoupledSource)
		if !ok {
			return nil, fmt.Errorf("%w: impulse mode requires a coupled source, got %T", engine.ErrInvalidParameter, src)
		}
		a.coupled = coupled
	}
	return a, nil
}

// AddObserver registers a per-step hook. Observers must not retain the
// sample past the callback.
func (a *Accumulator) AddObserver(o engine.Observer) {
	a.observers = append(a.observers, o)
}

// TauQ returns the resonance decay constant of this run.
func (a *Accumulator) TauQ() float64 { return a.tauQ }

// Run integrates the configured duration and returns the trajectory. Per
// step dt:
//
//	E += p·dt − E/tauQ·dt            (clamped at zero)
//	C += coupled − C/tauC·dt         (impulse mode, clamped at zero)
//	G  = 1 + alpha·cos(2π·Phi·t/cycle)
//	D  = clamp(OBase + M(E+C)·G·response, OBase, DMax)
//
// While the drive is active D follows the non-decreasing envelope of the
// raw level; after the drive stops it follows the non-increasing envelope,
// relaxing back toward OBase as the stored energy drains. Once the drive is
// off and the reservoirs fall below Epsilon the run terminates early.
func (a *Accumulator) Run() *engine.Trajectory {
	cfg := a.cfg
	dt := cfg.Dt
	steps := int(math.Round(cfg.Duration / dt))

	tr := &engine.Trajectory{
		Samples: make([]engine.Sample, 0, steps+1),
		Mode:    a.mode,
	}

	var e, c float64
	d := cfg.OBase

	first := engine.Sample{
		T:          0,
		Decoupling: cfg.OBase,
		Weight:     cfg.NominalMass * (1 - cfg.OBase),
	}
	tr.Samples = append(tr.Samples, first)
	a.notify(first)

	for i := 0; i < steps; i++ {
		t := float64(i) * dt
		driving := t < cfg.DriveDuration

		var p float64
		if driving {
			p = a.src.Sample(t)
		}
		e += p*dt - e/a.tauQ*dt
		if e < 0 {
			e = 0
		}

		if a.coupled != nil {
			var in float64
			if driving {
				in = a.coupled.SampleCoupled(t, dt)
			}
			c += in - c/a.tauC*dt
			if c < 0 {
				c = 0
			}
		}

		t = float64(i+1) * dt
		raw := a.level(e+c, t)
		if driving {
			if raw > d {
				d = raw
			}
		} else if raw < d {
			d = raw
		}

		s := engine.Sample{
			T:           t,
			Stored:      e,
			Circulating: c,
			Decoupling:  d,
			Weight:      cfg.NominalMass * (1 - d),
		}
		tr.Samples = append(tr.Samples, s)
		a.notify(s)
		tr.Steps = i + 1

		if !driving && e < cfg.Epsilon && c < cfg.Epsilon {
			break
		}
	}

	tr.Saturation = a.Saturation()
	return tr
}

// Saturation is the analytic asymptote of D(t) under sustained drive: the
// steady state of the energy balance (E = P_avg·tauQ, plus the circulating
// reservoir's P_c·tauC in impulse mode) pushed through the decoupling map
// with the geometric modulation at its mean value 1.
func (a *Accumulator) Saturation() float64 {
	esat := a.src.AveragePower() * a.tauQ
	if a.coupled != nil {
		esat += a.coupled.CoupledPower() * a.tauC
	}
	d := a.cfg.OBase + a.accumulation(esat)*a.response
	if d > a.cfg.DMax {
		d = a.cfg.DMax
	}
	return d
}

// level is the raw decoupling at total reservoir energy u and time t.
func (a *Accumulator) level(u, t float64) float64 {
	g := 1 + a.cfg.ModulationDepth*engine.FastCos(2*math.Pi*engine.Phi*t/a.cfg.ModulationCycle)
	d := a.cfg.OBase + a.accumulation(u)*g*a.response
	if d < a.cfg.OBase {
		d = a.cfg.OBase
	}
	if d > a.cfg.DMax {
		d = a.cfg.DMax
	}
	return d
}

// accumulation maps reservoir energy to the bounded M(t) term.
func (a *Accumulator) accumulation(u float64) float64 {
	return (a.cfg.DMax - a.cfg.OBase) * (1 - math.Exp(-u/a.cfg.EnergyScale))
}

func (a *Accumulator) notify(s engine.Sample) {
	for _, o := range a.observers {
		o.OnStep(s)
	}
}

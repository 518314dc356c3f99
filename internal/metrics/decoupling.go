// Package metrics derives summary statistics from completed trajectories.
// Everything here is a read-only view: callers pass a finalized trajectory
// and nothing is mutated.
package metrics

import (
	"math"

	"github.com/san-kum/resonance/internal/engine"
)

// SaturationValue is the analytic limit of D(t) as t → ∞ under sustained
// drive. It comes from the run's energy balance, not from the last sample.
func SaturationValue(tr *engine.Trajectory) float64 {
	return tr.Saturation
}

// TimeToHalfSaturation returns the first time at which D(t) crosses halfway
// from its baseline to the saturation value, or NaN if the trajectory never
// gets there.
func TimeToHalfSaturation(tr *engine.Trajectory) float64 {
	if len(tr.Samples) == 0 {
		return math.NaN()
	}
	base := tr.Samples[0].Decoupling
	half := base + (tr.Saturation-base)/2
	for _, s := range tr.Samples {
		if s.Decoupling >= half {
			return s.T
		}
	}
	return math.NaN()
}

// PeakValue is the maximum decoupling fraction reached during the run.
func PeakValue(tr *engine.Trajectory) float64 {
	peak := 0.0
	for i, s := range tr.Samples {
		if i == 0 || s.Decoupling > peak {
			peak = s.Decoupling
		}
	}
	return peak
}

// FinalValue is the decoupling fraction of the last sample.
func FinalValue(tr *engine.Trajectory) float64 {
	return tr.Final().Decoupling
}

// MaxStored is the peak of the combined energy reservoirs, useful when
// comparing excitation regimes at equal average power.
func MaxStored(tr *engine.Trajectory) float64 {
	peak := 0.0
	for _, s := range tr.Samples {
		if u := s.Stored + s.Circulating; u > peak {
			peak = u
		}
	}
	return peak
}

// Peak is an engine.Observer that tracks the running decoupling maximum
// during a run, for callers that want the figure without retaining the
// whole trajectory.
type Peak struct {
	max float64
	set bool
}

func (p *Peak) OnStep(s engine.Sample) {
	if !p.set || s.Decoupling > p.max {
		p.max = s.Decoupling
		p.set = true
	}
}

func (p *Peak) Value() float64 { return p.max }

func (p *Peak) Reset() { p.max, p.set = 0, false }

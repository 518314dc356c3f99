package drive

import (
	"fmt"
	"math"

	"github.com/san-kum/resonance/internal/engine"
)

// ImpulseTrain delivers a fixed-energy pulse every Period seconds, active
// for PulseDuration. A fraction Coupling of each pulse routes into the
// circulating reservoir instead of the directly driven store, modelling
// energy retained between knocks rather than immediately dissipated.
type ImpulseTrain struct {
	Period        float64 // s between pulse onsets
	PulseEnergy   float64 // J per pulse
	PulseDuration float64 // s, active window of each pulse
	Coupling      float64 // fraction of pulse energy entering circulation
}

func NewImpulseTrain(periodS, pulseEnergyJ, pulseDurationS, coupling float64) (*ImpulseTrain, error) {
	switch {
	case periodS <= 0:
		return nil, fmt.Errorf("%w: impulse period must be positive, got %g", engine.ErrInvalidParameter, periodS)
	case pulseEnergyJ < 0:
		return nil, fmt.Errorf("%w: negative pulse energy %g", engine.ErrInvalidParameter, pulseEnergyJ)
	case pulseDurationS <= 0 || pulseDurationS > periodS:
		return nil, fmt.Errorf("%w: pulse duration %g outside (0, %g]", engine.ErrInvalidParameter, pulseDurationS, periodS)
	case coupling < 0 || coupling > 1:
		return nil, fmt.Errorf("%w: coupling efficiency %g outside [0, 1]", engine.ErrInvalidParameter, coupling)
	}
	return &ImpulseTrain{
		Period:        periodS,
		PulseEnergy:   pulseEnergyJ,
		PulseDuration: pulseDurationS,
		Coupling:      coupling,
	}, nil
}

// NewImpulseTrainFromPower sizes the pulse energy so the train delivers the
// given average power at the given repetition rate.
func NewImpulseTrainFromPower(rateHz, avgWatts, pulseDurationS, coupling float64) (*ImpulseTrain, error) {
	if rateHz <= 0 {
		return nil, fmt.Errorf("%w: impulse rate must be positive, got %g", engine.ErrInvalidParameter, rateHz)
	}
	if avgWatts < 0 {
		return nil, fmt.Errorf("%w: negative drive power %g", engine.ErrInvalidParameter, avgWatts)
	}
	return NewImpulseTrain(1/rateHz, avgWatts/rateHz, pulseDurationS, coupling)
}

// Sample returns the direct (non-circulating) drive power: the pulse's peak
// power scaled by 1-Coupling while inside a pulse window, zero between
// pulses.
func (im *ImpulseTrain) Sample(t float64) float64 {
	if math.Mod(t, im.Period) >= im.PulseDuration {
		return 0
	}
	return (1 - im.Coupling) * im.PulseEnergy / im.PulseDuration
}

// SampleCoupled integrates the overlap of [t, t+dt) with the pulse windows,
// so each pulse injects exactly Coupling·PulseEnergy into circulation no
// matter how the timestep aligns with the pulse edges.
func (im *ImpulseTrain) SampleCoupled(t, dt float64) float64 {
	if im.Coupling == 0 || dt <= 0 {
		return 0
	}
	rate := im.Coupling * im.PulseEnergy / im.PulseDuration
	overlap := 0.0
	for k := math.Floor(t / im.Period); k*im.Period < t+dt; k++ {
		start := math.Max(t, k*im.Period)
		end := math.Min(t+dt, k*im.Period+im.PulseDuration)
		if end > start {
			overlap += end - start
		}
	}
	return rate * overlap
}

func (im *ImpulseTrain) AveragePower() float64 {
	return (1 - im.Coupling) * im.PulseEnergy / im.Period
}

func (im *ImpulseTrain) CoupledPower() float64 {
	return im.Coupling * im.PulseEnergy / im.Period
}

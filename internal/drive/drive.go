// Package drive supplies the driving-power signal consumed by the
// accumulator. Two interchangeable implementations exist: a continuous
// standing-wave drive and an impulsive "knocking" train. The variant is
// picked once at configuration time, never re-dispatched per step.
package drive

// Source produces the instantaneous driving power of an excitation.
type Source interface {
	// Sample returns the driving power in watts at time t. It is evaluated
	// once per integration step and must be deterministic in t.
	Sample(t float64) float64

	// AveragePower is the time-averaged power of the source, used for the
	// analytic saturation limit.
	AveragePower() float64
}

// CoupledSource additionally routes a fraction of delivered energy into the
// circulating reservoir. Only the impulse train implements it.
type CoupledSource interface {
	Source

	// SampleCoupled returns the energy in joules routed to the circulating
	// reservoir during [t, t+dt). Integrating over a full period always
	// yields exactly the coupled fraction of one pulse energy, independent
	// of dt.
	SampleCoupled(t, dt float64) float64

	// CoupledPower is the time-averaged power entering the circulating
	// reservoir.
	CoupledPower() float64
}

package drive

import (
	"fmt"
	"math"

	"github.com/san-kum/resonance/internal/acoustic"
	"github.com/san-kum/resonance/internal/engine"
)

// ContinuousDrive is a constant-amplitude sinusoidal excitation. The
// instantaneous power follows sin² of the phase 2π·f·t, so it is never
// negative and averages to half the amplitude.
type ContinuousDrive struct {
	Frequency float64 // Hz
	Amplitude float64 // W, peak power
}

// NewContinuous builds a continuous drive with a peak power in watts.
func NewContinuous(frequencyHz, peakWatts float64) (*ContinuousDrive, error) {
	if frequencyHz <= 0 {
		return nil, fmt.Errorf("%w: frequency must be positive, got %g", engine.ErrInvalidParameter, frequencyHz)
	}
	if peakWatts < 0 {
		return nil, fmt.Errorf("%w: negative drive power %g", engine.ErrInvalidParameter, peakWatts)
	}
	return &ContinuousDrive{Frequency: frequencyHz, Amplitude: peakWatts}, nil
}

// NewContinuousFromPower builds a continuous drive that averages the given
// power over time. Watt-denominated drive levels mean average power in
// every excitation mode, so cross-mode comparisons at the same level
// deliver the same energy; the sin² waveform peaks at twice the average.
func NewContinuousFromPower(frequencyHz, avgWatts float64) (*ContinuousDrive, error) {
	return NewContinuous(frequencyHz, 2*avgWatts)
}

// NewContinuousFromLevel converts a sound pressure level into the drive
// power intercepted by an object of the given cross-sectional area. Levels
// above the physical ceiling surface the conversion's ErrOutOfRange.
func NewContinuousFromLevel(frequencyHz, levelDB, areaM2 float64) (*ContinuousDrive, error) {
	field, err := acoustic.Convert(levelDB, areaM2)
	if err != nil {
		return nil, err
	}
	return NewContinuous(frequencyHz, field.Intensity*areaM2)
}

func (c *ContinuousDrive) Sample(t float64) float64 {
	s := engine.FastSin(2 * math.Pi * c.Frequency * t)
	return c.Amplitude * s * s
}

func (c *ContinuousDrive) AveragePower() float64 {
	return c.Amplitude / 2
}

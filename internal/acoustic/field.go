// Package acoustic converts sound-level and power inputs into pressure,
// force, intensity, and internal mechanical stress.
package acoustic

import (
	"fmt"
	"math"

	"github.com/san-kum/resonance/internal/engine"
	"github.com/san-kum/resonance/internal/material"
)

// Field is the acoustic state at an object surface for a given drive level.
type Field struct {
	Pressure  float64 // Pa, amplitude
	Force     float64 // N, pressure × area
	Intensity float64 // W/m²
}

// Convert derives the acoustic field at an object from a sound pressure
// level and the exposed area:
//
//	pressure  = PRef · 10^(level/20)
//	intensity = pressure² / (rhoAir · cAir)
//	force     = pressure · area
//
// Levels above the ~194 dB atmospheric ceiling fail with ErrOutOfRange
// instead of returning a meaningless field.
func Convert(levelDB, areaM2 float64) (Field, error) {
	if levelDB > engine.MaxLevelDB {
		return Field{}, fmt.Errorf("%w: %.1f dB exceeds %.0f dB ceiling", engine.ErrOutOfRange, levelDB, engine.MaxLevelDB)
	}
	if areaM2 <= 0 {
		return Field{}, fmt.Errorf("%w: area must be positive, got %g", engine.ErrInvalidParameter, areaM2)
	}
	p := engine.PRef * math.Pow(10, levelDB/20)
	return Field{
		Pressure:  p,
		Force:     p * areaM2,
		Intensity: p * p / (engine.RhoAir * engine.CAir),
	}, nil
}

// Level is the inverse of Convert's pressure relation: the dB SPL of a
// pressure amplitude, floored at the reference pressure.
func Level(pressurePa float64) float64 {
	if pressurePa < engine.PRef {
		pressurePa = engine.PRef
	}
	return 20 * math.Log10(pressurePa/engine.PRef)
}

// InternalStress is the mechanical stress inside a resonating body driven by
// an external pressure amplitude. The quality factor amplifies stored energy
// by Q, so the pressure amplitude grows by √Q. This supersedes the earlier
// linear-Q convention; see InternalStressLinearQ for the legacy figures.
func InternalStress(externalPressurePa, qFactor float64) float64 {
	return externalPressurePa * math.Sqrt(qFactor)
}

// InternalStressLinearQ reproduces the legacy linear-Q stress convention.
// It exists only to compare against outputs produced before the √Q
// correction; new callers want InternalStress.
func InternalStressLinearQ(externalPressurePa, qFactor float64) float64 {
	return externalPressurePa * qFactor
}

// ImpedanceRatio is the ratio of a material's acoustic impedance to air's,
// the factor by which energy coupling at the interface is scaled.
func ImpedanceRatio(p material.Properties) float64 {
	return p.Impedance() / (engine.RhoAir * engine.CAir)
}

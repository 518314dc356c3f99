// Package material provides the read-only registry of material properties.
package material

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/san-kum/resonance/internal/engine"
)

// Properties are the fixed physical constants of one substance. Values are
// reference constants loaded once at process start; nothing mutates them.
type Properties struct {
	Name         string
	Density      float64 // kg/m³
	QFactor      float64 // dimensionless stored/dissipated energy ratio
	SpeedOfSound float64 // m/s in the bulk material
}

// DecayTime returns tauQ = Q/(2π·f), the resonance decay constant at the
// given drive frequency.
func (p Properties) DecayTime(frequencyHz float64) float64 {
	return p.QFactor / (2 * math.Pi * frequencyHz)
}

// Impedance returns the acoustic impedance rho·c of the material.
func (p Properties) Impedance() float64 {
	return p.Density * p.SpeedOfSound
}

// Registry is an immutable name -> Properties table, safe for concurrent
// reads. Build one with NewRegistry or share Default().
type Registry struct {
	byName map[string]Properties
}

// reference values for common test substances. Q factors derive from the
// internal damping of each material; granite carries the Q=82 reference
// figure used throughout the model literature.
var reference = []Properties{
	{Name: "granite", Density: 2750, QFactor: 82, SpeedOfSound: 4200},
	{Name: "basalt", Density: 3000, QFactor: 100, SpeedOfSound: 4850},
	{Name: "marble", Density: 2700, QFactor: 67, SpeedOfSound: 4700},
	{Name: "limestone", Density: 2700, QFactor: 20, SpeedOfSound: 3850},
	{Name: "concrete", Density: 2400, QFactor: 10, SpeedOfSound: 3500},
	{Name: "sandstone", Density: 2300, QFactor: 12, SpeedOfSound: 2950},
	{Name: "steel", Density: 7850, QFactor: 333, SpeedOfSound: 5050},
}

var defaultRegistry = NewRegistry(reference...)

// Default returns the shared reference registry.
func Default() *Registry { return defaultRegistry }

// NewRegistry builds a registry from the given property sets. The input is
// copied; later mutation of the slice does not affect the registry.
func NewRegistry(props ...Properties) *Registry {
	r := &Registry{byName: make(map[string]Properties, len(props))}
	for _, p := range props {
		r.byName[strings.ToLower(p.Name)] = p
	}
	return r
}

// Lookup resolves a material by name (case-insensitive). Unknown names fail
// with engine.ErrNotFound. The returned Properties is a copy.
func (r *Registry) Lookup(name string) (Properties, error) {
	p, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Properties{}, fmt.Errorf("%w: %q", engine.ErrNotFound, name)
	}
	return p, nil
}

// Names returns the registered material names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

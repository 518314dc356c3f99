package engine

import "math"

// TrigTable is a precomputed sin/cos lookup with linear interpolation.
// The drive sources and the geometric phase modulation evaluate a sinusoid
// on every integration step, so the hot loop goes through this table.
type TrigTable struct {
	sin []float64
	cos []float64
	n   int
}

// defaultTrig has 4096 entries, ~0.0015 rad resolution.
var defaultTrig = NewTrigTable(4096)

func NewTrigTable(n int) *TrigTable {
	t := &TrigTable{
		sin: make([]float64, n),
		cos: make([]float64, n),
		n:   n,
	}
	for i := 0; i < n; i++ {
		angle := float64(i) * 2 * math.Pi / float64(n)
		t.sin[i] = math.Sin(angle)
		t.cos[i] = math.Cos(angle)
	}
	return t
}

func (t *TrigTable) index(x float64) (i0, i1 int, frac float64) {
	x = math.Mod(x, 2*math.Pi)
	if x < 0 {
		x += 2 * math.Pi
	}
	idx := x * float64(t.n) / (2 * math.Pi)
	i := int(idx)
	return i % t.n, (i + 1) % t.n, idx - float64(i)
}

// Sin returns approximate sin(x) via table lookup with interpolation.
func (t *TrigTable) Sin(x float64) float64 {
	i0, i1, frac := t.index(x)
	return t.sin[i0]*(1-frac) + t.sin[i1]*frac
}

// Cos returns approximate cos(x) via table lookup with interpolation.
func (t *TrigTable) Cos(x float64) float64 {
	i0, i1, frac := t.index(x)
	return t.cos[i0]*(1-frac) + t.cos[i1]*frac
}

// FastSin evaluates sin through the shared default table.
func FastSin(x float64) float64 { return defaultTrig.Sin(x) }

// FastCos evaluates cos through the shared default table.
func FastCos(x float64) float64 { return defaultTrig.Cos(x) }

package sweep

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/resonance/internal/engine"
	"github.com/san-kum/resonance/internal/material"
)

func baseConfig() Config {
	run := engine.DefaultRunConfig()
	run.Duration = 10
	run.DriveDuration = 10
	return Config{
		Materials:     []string{"granite"},
		Modes:         []engine.Mode{engine.ModeContinuous},
		Frequencies:   []float64{7.83},
		DriveLevels:   []float64{110},
		LevelUnit:     UnitDB,
		Area:          0.01,
		Coupling:      0.3,
		PulseDuration: 0.05,
		Run:           run,
	}
}

func TestParseLevelUnit(t *testing.T) {
	tests := []struct {
		in   string
		want LevelUnit
	}{
		{"db", UnitDB},
		{"", UnitDB},
		{"DB", UnitDB},
		{"watt", UnitWatt},
		{"W", UnitWatt},
	}
	for _, tt := range tests {
		got, err := ParseLevelUnit(tt.in)
		if err != nil {
			t.Errorf("ParseLevelUnit(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLevelUnit(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := ParseLevelUnit("joule"); !errors.Is(err, engine.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	reg := material.Default()

	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"empty materials", func(c *Config) { c.Materials = nil }, engine.ErrInvalidParameter},
		{"empty frequencies", func(c *Config) { c.Frequencies = nil }, engine.ErrInvalidParameter},
		{"empty levels", func(c *Config) { c.DriveLevels = nil }, engine.ErrInvalidParameter},
		{"zero frequency", func(c *Config) { c.Frequencies = []float64{0} }, engine.ErrInvalidParameter},
		{"negative watt level", func(c *Config) {
			c.LevelUnit = UnitWatt
			c.DriveLevels = []float64{-1}
		}, engine.ErrInvalidParameter},
		{"zero area", func(c *Config) { c.Area = 0 }, engine.ErrInvalidParameter},
		{"coupling above one", func(c *Config) { c.Coupling = 1.5 }, engine.ErrInvalidParameter},
		{"impulse without pulse duration", func(c *Config) {
			c.Modes = []engine.Mode{engine.ModeImpulse}
			c.PulseDuration = 0
		}, engine.ErrInvalidParameter},
		{"zero run duration", func(c *Config) {
			c.Run.Duration = 0
			c.Run.DriveDuration = 0
		}, engine.ErrInvalidParameter},
		{"unknown material", func(c *Config) { c.Materials = []string{"unobtainium"} }, engine.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := baseConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(reg); !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}

	good := baseConfig()
	if err := good.Validate(reg); err != nil {
		t.Errorf("base config should validate: %v", err)
	}

	// Over-ceiling dB levels are a run-level failure, not a config error.
	hot := baseConfig()
	hot.DriveLevels = []float64{200}
	if err := hot.Validate(reg); err != nil {
		t.Errorf("200 dB should pass validation: %v", err)
	}
}

func TestRunGrid(t *testing.T) {
	cfg := baseConfig()
	cfg.Materials = []string{"granite", "steel"}
	cfg.Frequencies = []float64{7.83, 10}
	cfg.DriveLevels = []float64{100, 110}

	runner := NewRunner(material.Default())
	table, err := runner.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	if table.Len() != 8 {
		t.Fatalf("expected 8 entries, got %d", table.Len())
	}
	for _, k := range table.Keys() {
		e := table.Entries[k]
		if e.Err != nil {
			t.Errorf("%s: unexpected error %v", k, e.Err)
			continue
		}
		if e.Trajectory == nil || len(e.Trajectory.Samples) == 0 {
			t.Errorf("%s: empty trajectory", k)
		}
	}
	if len(table.Failed()) != 0 {
		t.Errorf("expected no failures, got %d", len(table.Failed()))
	}
}

func TestRunPartialFailure(t *testing.T) {
	cfg := baseConfig()
	cfg.DriveLevels = []float64{110, 200} // 200 dB is beyond the ceiling

	runner := NewRunner(material.Default())
	table, err := runner.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	if table.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", table.Len())
	}

	failed := table.Failed()
	if len(failed) != 1 {
		t.Fatalf("expected 1 failed entry, got %d", len(failed))
	}
	if !errors.Is(failed[0].Err, engine.ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", failed[0].Err)
	}
	var re *engine.RunError
	if !errors.As(failed[0].Err, &re) {
		t.Fatal("failure should carry its parameter tuple")
	}
	if re.Key != failed[0].Key.String() {
		t.Errorf("run error key %q != entry key %q", re.Key, failed[0].Key.String())
	}

	// The healthy tuple still completed.
	ok := table.Entries[Key{Material: "granite", Mode: engine.ModeContinuous, Frequency: 7.83, Level: 110}]
	if ok.Err != nil || ok.Trajectory == nil {
		t.Errorf("110 dB run should have succeeded: %+v", ok)
	}
}

func TestRunUnstableTupleRecorded(t *testing.T) {
	cfg := baseConfig()
	cfg.Run.Dt = 0.05
	// Concrete's Q=10 at 10 Hz gives tauQ ≈ 0.16, so dt=0.05 violates the
	// stability bound there while granite's tauQ ≈ 1.3 is fine.
	cfg.Materials = []string{"granite", "concrete"}
	cfg.Frequencies = []float64{10}

	runner := NewRunner(material.Default())
	table, err := runner.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	failed := table.Failed()
	if len(failed) != 1 {
		t.Fatalf("expected 1 unstable entry, got %d", len(failed))
	}
	if failed[0].Key.Material != "concrete" {
		t.Errorf("wrong tuple failed: %s", failed[0].Key)
	}
	if !errors.Is(failed[0].Err, engine.ErrUnstable) {
		t.Errorf("expected ErrUnstable, got %v", failed[0].Err)
	}
}

func TestRunImpulseMode(t *testing.T) {
	cfg := baseConfig()
	cfg.Modes = []engine.Mode{engine.ModeContinuous, engine.ModeImpulse}
	cfg.LevelUnit = UnitWatt
	cfg.DriveLevels = []float64{0.01}

	runner := NewRunner(material.Default())
	table, err := runner.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if table.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", table.Len())
	}
	for _, k := range table.Keys() {
		if e := table.Entries[k]; e.Err != nil {
			t.Errorf("%s: %v", k, e.Err)
		}
	}
}

func TestRunQOverride(t *testing.T) {
	lowQ := baseConfig()
	lowQ.QOverride = 10
	highQ := baseConfig()
	highQ.QOverride = 300

	runner := NewRunner(material.Default())

	a, err := runner.Run(context.Background(), lowQ)
	if err != nil {
		t.Fatalf("low-Q sweep failed: %v", err)
	}
	b, err := runner.Run(context.Background(), highQ)
	if err != nil {
		t.Fatalf("high-Q sweep failed: %v", err)
	}

	k := Key{Material: "granite", Mode: engine.ModeContinuous, Frequency: 7.83, Level: 110}
	low := a.Entries[k].Trajectory.Saturation
	high := b.Entries[k].Trajectory.Saturation
	if high <= low {
		t.Errorf("Q=300 saturation %g not above Q=10's %g", high, low)
	}
}

func TestRunCancellation(t *testing.T) {
	cfg := baseConfig()
	cfg.Materials = []string{"granite", "steel", "basalt", "marble"}
	cfg.Frequencies = []float64{6, 7.83, 9, 11}
	cfg.Run.Duration = 60
	cfg.Run.DriveDuration = 60

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := NewRunner(material.Default())
	runner.Workers = 2
	table, err := runner.Run(ctx, cfg)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if table == nil {
		t.Fatal("partial table should still be returned")
	}
	if table.Len() >= 16 {
		t.Errorf("cancelled sweep completed all %d runs", table.Len())
	}
}

func TestTableKeysDeterministic(t *testing.T) {
	cfg := baseConfig()
	cfg.Materials = []string{"steel", "granite"}
	cfg.DriveLevels = []float64{110, 100}

	runner := NewRunner(material.Default())
	table, err := runner.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	keys := table.Keys()
	if len(keys) != 4 {
		t.Fatalf("expected 4 keys, got %d", len(keys))
	}
	if keys[0].Material != "granite" || keys[0].Level != 100 {
		t.Errorf("unexpected first key %s", keys[0])
	}
	if keys[3].Material != "steel" || keys[3].Level != 110 {
		t.Errorf("unexpected last key %s", keys[3])
	}
}

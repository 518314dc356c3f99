// Package sweep orchestrates many accumulator runs across a parameter grid
// and aggregates the outcomes, including partial failures.
package sweep

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/san-kum/resonance/internal/acoustic"
	"github.com/san-kum/resonance/internal/drive"
	"github.com/san-kum/resonance/internal/engine"
	"github.com/san-kum/resonance/internal/material"
	"github.com/san-kum/resonance/internal/resonance"
)

// LevelUnit says how DriveLevels is to be read.
type LevelUnit int

const (
	UnitDB   LevelUnit = iota // sound pressure level, dB SPL
	UnitWatt                  // average drive power, W
)

func (u LevelUnit) String() string {
	if u == UnitWatt {
		return "watt"
	}
	return "db"
}

// ParseLevelUnit resolves a configuration string to a LevelUnit.
func ParseLevelUnit(s string) (LevelUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "db":
		return UnitDB, nil
	case "watt", "w":
		return UnitWatt, nil
	default:
		return 0, fmt.Errorf("%w: unknown level unit %q", engine.ErrInvalidParameter, s)
	}
}

// Config is the cartesian sweep description. Every combination of
// Materials × Modes × Frequencies × DriveLevels becomes one independent run
// sharing the Run tuning parameters.
type Config struct {
	Materials   []string
	Modes       []engine.Mode
	Frequencies []float64 // Hz
	DriveLevels []float64
	LevelUnit   LevelUnit

	Area          float64 // m², exposed cross-section for dB conversion
	QOverride     float64 // replaces the material Q when > 0
	Coupling      float64 // impulse coupling efficiency
	PulseDuration float64 // s, impulse pulse width

	Run engine.RunConfig
}

// Validate performs the sweep-fatal checks: malformed configuration
// (ErrInvalidParameter) and unresolvable materials (ErrNotFound) fail the
// whole sweep before any run starts. Drive levels beyond the physical
// ceiling are deliberately not rejected here; that is a run-level failure
// recorded per tuple.
func (c *Config) Validate(reg *material.Registry) error {
	if len(c.Materials) == 0 || len(c.Modes) == 0 || len(c.Frequencies) == 0 || len(c.DriveLevels) == 0 {
		return fmt.Errorf("%w: every sweep axis needs at least one value", engine.ErrInvalidParameter)
	}
	for _, f := range c.Frequencies {
		if f <= 0 {
			return fmt.Errorf("%w: frequency must be positive, got %g", engine.ErrInvalidParameter, f)
		}
	}
	if c.LevelUnit == UnitWatt {
		for _, l := range c.DriveLevels {
			if l < 0 {
				return fmt.Errorf("%w: negative drive power %g", engine.ErrInvalidParameter, l)
			}
		}
	}
	if c.Area <= 0 {
		return fmt.Errorf("%w: area must be positive, got %g", engine.ErrInvalidParameter, c.Area)
	}
	if c.QOverride < 0 {
		return fmt.Errorf("%w: negative Q override %g", engine.ErrInvalidParameter, c.QOverride)
	}
	if c.Coupling < 0 || c.Coupling > 1 {
		return fmt.Errorf("%w: coupling efficiency %g outside [0, 1]", engine.ErrInvalidParameter, c.Coupling)
	}
	for _, m := range c.Modes {
		if m == engine.ModeImpulse && c.PulseDuration <= 0 {
			return fmt.Errorf("%w: impulse mode needs a positive pulse duration", engine.ErrInvalidParameter)
		}
	}

	run := c.Run
	if run.DriveDuration == 0 {
		run.DriveDuration = run.Duration
	}
	if err := run.Validate(); err != nil {
		return err
	}

	for _, name := range c.Materials {
		if _, err := reg.Lookup(name); err != nil {
			return err
		}
	}
	return nil
}

// Key identifies one run by its originating parameter tuple.
type Key struct {
	Material  string
	Mode      engine.Mode
	Frequency float64
	Level     float64
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%gHz/%g", k.Material, k.Mode, k.Frequency, k.Level)
}

// Entry is the outcome of one run: either a trajectory or a run-level error
// (ErrOutOfRange, ErrUnstable) wrapped with the tuple.
type Entry struct {
	Key        Key
	Trajectory *engine.Trajectory
	Err        error
}

// Table aggregates entries by parameter tuple. Completion order of the
// underlying runs is irrelevant; the tuple is the identity.
type Table struct {
	Entries map[Key]Entry
}

func (t *Table) Len() int { return len(t.Entries) }

// Failed returns the error entries.
func (t *Table) Failed() []Entry {
	var out []Entry
	for _, e := range t.Entries {
		if e.Err != nil {
			out = append(out, e)
		}
	}
	return out
}

// Keys returns the tuples in a deterministic order.
func (t *Table) Keys() []Key {
	keys := make([]Key, 0, len(t.Entries))
	for k := range t.Entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.Material != b.Material {
			return a.Material < b.Material
		}
		if a.Mode != b.Mode {
			return a.Mode < b.Mode
		}
		if a.Frequency != b.Frequency {
			return a.Frequency < b.Frequency
		}
		return a.Level < b.Level
	})
	return keys
}

// Runner executes sweeps over a material registry with a fixed-size worker
// pool. Runs share no mutable state, so they proceed concurrently; the
// registry is read-only and safe to share.
type Runner struct {
	Registry *material.Registry
	Workers  int // defaults to NumCPU
}

func NewRunner(reg *material.Registry) *Runner {
	return &Runner{Registry: reg}
}

// Run validates the configuration, expands the cartesian grid, and executes
// one run per combination. Validation failures abort before any run. A
// run-level failure is recorded in the table and the sweep continues.
// Cancellation is honored between runs only: a started run always completes
// or fails atomically. On cancellation the partial table is returned along
// with the context's error.
func (r *Runner) Run(ctx context.Context, cfg Config) (*Table, error) {
	if err := cfg.Validate(r.Registry); err != nil {
		return nil, err
	}
	if cfg.Run.DriveDuration == 0 {
		cfg.Run.DriveDuration = cfg.Run.Duration
	}

	var keys []Key
	for _, mat := range cfg.Materials {
		for _, mode := range cfg.Modes {
			for _, f := range cfg.Frequencies {
				for _, l := range cfg.DriveLevels {
					keys = append(keys, Key{Material: mat, Mode: mode, Frequency: f, Level: l})
				}
			}
		}
	}

	workers := r.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(keys) {
		workers = len(keys)
	}

	jobs := make(chan Key)
	var mu sync.Mutex
	table := &Table{Entries: make(map[Key]Entry, len(keys))}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case k, ok := <-jobs:
					if !ok {
						return
					}
					entry := r.runOne(cfg, k)
					mu.Lock()
					table.Entries[k] = entry
					mu.Unlock()
				}
			}
		}()
	}

feed:
	for _, k := range keys {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- k:
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return table, err
	}
	return table, nil
}

// runOne executes a single combination. Errors out of source construction
// or the accumulator's preconditions become the entry's error.
func (r *Runner) runOne(cfg Config, k Key) Entry {
	fail := func(err error) Entry {
		return Entry{Key: k, Err: &engine.RunError{Key: k.String(), Wrapped: err}}
	}

	props, err := r.Registry.Lookup(k.Material)
	if err != nil {
		return fail(err)
	}
	if cfg.QOverride > 0 {
		props.QFactor = cfg.QOverride
	}

	src, err := r.buildSource(cfg, k)
	if err != nil {
		return fail(err)
	}

	acc, err := resonance.New(k.Mode, src, props, k.Frequency, cfg.Run)
	if err != nil {
		return fail(err)
	}
	return Entry{Key: k, Trajectory: acc.Run()}
}

func (r *Runner) buildSource(cfg Config, k Key) (drive.Source, error) {
	watts := k.Level
	if cfg.LevelUnit == UnitDB {
		field, err := acoustic.Convert(k.Level, cfg.Area)
		if err != nil {
			return nil, err
		}
		watts = field.Intensity * cfg.Area
	}

	switch k.Mode {
	case engine.ModeImpulse:
		return drive.NewImpulseTrainFromPower(k.Frequency, watts, cfg.PulseDuration, cfg.Coupling)
	default:
		if cfg.LevelUnit == UnitDB {
			return drive.NewContinuousFromLevel(k.Frequency, k.Level, cfg.Area)
		}
		return drive.NewContinuousFromPower(k.Frequency, watts)
	}
}

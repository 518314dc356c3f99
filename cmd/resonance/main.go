package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/resonance/internal/acoustic"
	"github.com/san-kum/resonance/internal/config"
	"github.com/san-kum/resonance/internal/drive"
	"github.com/san-kum/resonance/internal/engine"
	"github.com/san-kum/resonance/internal/material"
	"github.com/san-kum/resonance/internal/metrics"
	"github.com/san-kum/resonance/internal/resonance"
	"github.com/san-kum/resonance/internal/sweep"
	"github.com/spf13/cobra"
)

var (
	configFile string
	preset     string
	materialN  string
	mode       string
	frequency  float64
	level      float64
	levelUnit  string
	area       float64
	coupling   float64
	pulse      float64
	qOverride  float64
	dt         float64
	duration   float64
	driveTime  float64
	mass       float64
	workers    int
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "resonance",
		Short: "acoustic energy accumulation simulator",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a single accumulation trajectory",
		RunE:  runSingle,
	}
	addDriveFlags(runCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run a parameter sweep",
		RunE:  runSweep,
	}
	addDriveFlags(sweepCmd)
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "worker goroutines (0 = NumCPU)")

	materialsCmd := &cobra.Command{
		Use:   "materials",
		Short: "list the material registry",
		RunE:  listMaterials,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := config.ListPresets()
			sort.Strings(names)
			for _, n := range names {
				fmt.Println(n)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, sweepCmd, materialsCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addDriveFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().StringVar(&materialN, "material", config.DefaultMaterial, "target material")
	cmd.Flags().StringVar(&mode, "mode", "continuous", "drive mode (continuous|impulse)")
	cmd.Flags().Float64Var(&frequency, "freq", config.DefaultFrequency, "drive frequency (Hz)")
	cmd.Flags().Float64Var(&level, "level", config.DefaultLevelDB, "drive level")
	cmd.Flags().StringVar(&levelUnit, "unit", "db", "drive level unit (db|watt)")
	cmd.Flags().Float64Var(&area, "area", config.DefaultArea, "exposed area (m²)")
	cmd.Flags().Float64Var(&coupling, "coupling", config.DefaultCoupling, "impulse coupling efficiency")
	cmd.Flags().Float64Var(&pulse, "pulse", config.DefaultPulse, "impulse pulse duration (s)")
	cmd.Flags().Float64Var(&qOverride, "q", 0, "Q factor override (0 = material Q)")
	cmd.Flags().Float64Var(&dt, "dt", 0, "timestep (s, 0 = default)")
	cmd.Flags().Float64Var(&duration, "time", 0, "simulated duration (s, 0 = default)")
	cmd.Flags().Float64Var(&driveTime, "drive-time", 0, "drive-on duration (s, 0 = full run)")
	cmd.Flags().Float64Var(&mass, "mass", 0, "nominal mass (kg, 0 = default)")
}

// resolveConfig layers preset, config file, and explicit flags, in that
// order of increasing precedence.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("material") {
		cfg.Material = materialN
	}
	if cmd.Flags().Changed("mode") {
		cfg.Mode = mode
	}
	if cmd.Flags().Changed("freq") {
		cfg.Frequency = frequency
	}
	if cmd.Flags().Changed("level") {
		cfg.DriveLevel = level
	}
	if cmd.Flags().Changed("unit") {
		cfg.LevelUnit = levelUnit
	}
	if cmd.Flags().Changed("area") {
		cfg.Area = area
	}
	if cmd.Flags().Changed("coupling") {
		cfg.Coupling = coupling
	}
	if cmd.Flags().Changed("pulse") {
		cfg.PulseDuration = pulse
	}
	if cmd.Flags().Changed("q") {
		cfg.QOverride = qOverride
	}
	if cmd.Flags().Changed("dt") {
		cfg.Run.Dt = dt
	}
	if cmd.Flags().Changed("time") {
		cfg.Run.Duration = duration
	}
	if cmd.Flags().Changed("drive-time") {
		cfg.Run.DriveDuration = driveTime
	}
	if cmd.Flags().Changed("mass") {
		cfg.Run.NominalMass = mass
	}
	return cfg, nil
}

func runSingle(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	m, err := engine.ParseMode(cfg.Mode)
	if err != nil {
		return err
	}
	props, err := material.Default().Lookup(cfg.Material)
	if err != nil {
		return err
	}
	if cfg.QOverride > 0 {
		props.QFactor = cfg.QOverride
	}

	src, err := buildSource(cfg, m)
	if err != nil {
		return err
	}

	rc := cfg.EngineRun()
	acc, err := resonance.New(m, src, props, cfg.Frequency, rc)
	if err != nil {
		return err
	}

	fmt.Printf("running %s / %s / %g Hz / %g %s...\n",
		cfg.Material, m, cfg.Frequency, cfg.DriveLevel, cfg.LevelUnit)
	start := time.Now()
	traj := acc.Run()
	elapsed := time.Since(start)

	final := traj.Final()
	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("steps: %d\n", traj.Steps)
	fmt.Println("\nmetrics:")
	fmt.Printf("  saturation:     %.6f\n", traj.Saturation)
	fmt.Printf("  final D:        %.6f\n", final.Decoupling)
	fmt.Printf("  peak D:         %.6f\n", metrics.PeakValue(traj))
	fmt.Printf("  t(half sat):    %.2f s\n", metrics.TimeToHalfSaturation(traj))
	fmt.Printf("  max stored:     %.6g J\n", metrics.MaxStored(traj))
	fmt.Printf("  final weight:   %.6f kg (%.4f N)\n", final.Weight, final.Force())

	plotDecoupling(traj)
	return nil
}

// plotDecoupling renders D(t) as a terminal graph, downsampled to fit.
func plotDecoupling(traj *engine.Trajectory) {
	const width = 100
	n := len(traj.Samples)
	if n < 2 {
		return
	}
	stride := n / width
	if stride < 1 {
		stride = 1
	}
	data := make([]float64, 0, width+1)
	for i := 0; i < n; i += stride {
		data = append(data, traj.Samples[i].Decoupling)
	}
	fmt.Println()
	fmt.Println(asciigraph.Plot(data,
		asciigraph.Height(12),
		asciigraph.Width(width),
		asciigraph.Caption("decoupling fraction vs time"),
	))
}

func buildSource(cfg *config.Config, m engine.Mode) (drive.Source, error) {
	unit, err := sweep.ParseLevelUnit(cfg.LevelUnit)
	if err != nil {
		return nil, err
	}
	if m == engine.ModeImpulse {
		watts := cfg.DriveLevel
		if unit == sweep.UnitDB {
			field, err := acoustic.Convert(cfg.DriveLevel, cfg.Area)
			if err != nil {
				return nil, err
			}
			watts = field.Intensity * cfg.Area
		}
		return drive.NewImpulseTrainFromPower(cfg.Frequency, watts, cfg.PulseDuration, cfg.Coupling)
	}
	if unit == sweep.UnitDB {
		return drive.NewContinuousFromLevel(cfg.Frequency, cfg.DriveLevel, cfg.Area)
	}
	return drive.NewContinuousFromPower(cfg.Frequency, cfg.DriveLevel)
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	sc, err := cfg.SweepConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runner := sweep.NewRunner(material.Default())
	runner.Workers = workers

	start := time.Now()
	table, err := runner.Run(ctx, sc)
	if err != nil && table == nil {
		return err
	}
	fmt.Println(headerStyle.Render(fmt.Sprintf("%d runs in %v", table.Len(), time.Since(start))))
	fmt.Println()

	// Escape codes inside a tab-terminated cell count toward tabwriter's
	// column widths, so only the newline-terminated status cell is styled.
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MATERIAL\tMODE\tFREQ\tLEVEL\tSAT D\tFINAL D\tWEIGHT\tSTATUS")
	for _, k := range table.Keys() {
		e := table.Entries[k]
		if e.Err != nil {
			fmt.Fprintf(w, "%s\t%s\t%.2f\t%g\t-\t-\t-\t%s\n",
				k.Material, k.Mode, k.Frequency, k.Level, errStyle.Render(e.Err.Error()))
			continue
		}
		final := e.Trajectory.Final()
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%g\t%.4f\t%.4f\t%.4f\tok\n",
			k.Material, k.Mode, k.Frequency, k.Level,
			e.Trajectory.Saturation, final.Decoupling, final.Weight)
	}
	if flushErr := w.Flush(); flushErr != nil {
		return flushErr
	}

	if err != nil {
		fmt.Println("\nsweep interrupted:", err)
	}
	return nil
}

func listMaterials(cmd *cobra.Command, args []string) error {
	reg := material.Default()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDENSITY\tQ\tSOUND SPEED\tTAU-Q @7.83Hz")
	for _, name := range reg.Names() {
		props, err := reg.Lookup(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%.0f kg/m³\t%.0f\t%.0f m/s\t%.3f s\n",
			props.Name, props.Density, props.QFactor, props.SpeedOfSound,
			props.DecayTime(config.DefaultFrequency))
	}
	return w.Flush()
}

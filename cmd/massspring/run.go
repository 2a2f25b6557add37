package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/massspring/internal/config"
	"github.com/san-kum/massspring/internal/dynamo"
	"github.com/san-kum/massspring/internal/experiment"
	"github.com/san-kum/massspring/internal/scenes"
	"github.com/san-kum/massspring/internal/sim"
	"github.com/san-kum/massspring/internal/storage"
	"github.com/san-kum/massspring/internal/viz"
	"github.com/spf13/cobra"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ccff"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
)

// buildConfig layers preset, config file and flags, in that order.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if len(args) > 0 {
		cfg.Scenario = args[0]
	}

	if preset != "" {
		p := config.GetPreset(cfg.Scenario, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(cfg.Scenario))
		}
		cfg = p
		cfg.FillDefaults()
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		if len(args) > 0 {
			loaded.Scenario = args[0]
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	if cmd.Flags().Changed("integrator") {
		cfg.Integrator = integrator
	}
	if cmd.Flags().Changed("sample") {
		cfg.SampleEvery = sampleEvery
	}
	if cmd.Flags().Changed("scene") {
		cfg.SceneFile = sceneFile
	}

	if paramsChanged(cmd) {
		sc, err := cfg.LoadScenario()
		if err != nil {
			return nil, err
		}
		p := cfg.ResolveParams(sc)
		applyParamFlags(cmd, &p)
		cfg.Params = &p
	}
	return cfg, nil
}

func paramsChanged(cmd *cobra.Command) bool {
	for _, name := range []string{"mass", "stiffness", "gravity", "wind", "floor"} {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

func applyParamFlags(cmd *cobra.Command, p *dynamo.Params) {
	if cmd.Flags().Changed("mass") {
		p.Mass = mass
	}
	if cmd.Flags().Changed("stiffness") {
		p.Stiffness = stiffness
	}
	if cmd.Flags().Changed("gravity") {
		p.Gravity = gravity
	}
	if cmd.Flags().Changed("wind") {
		p.Wind = wind
	}
	if cmd.Flags().Changed("floor") {
		p.FloorHeight = floor
	}
}

// newSimulator builds a simulator from the scenario argument and flags. The
// step size falls back to the scenario's default when --dt is not given.
func newSimulator(cmd *cobra.Command, args []string) (*sim.Simulator, float64, error) {
	sc, err := scenarioArg(args)
	if err != nil {
		return nil, 0, err
	}
	kind, err := dynamo.ParseIntegratorKind(integrator)
	if err != nil {
		return nil, 0, err
	}
	p := dynamo.DefaultParams()
	if sc.Recommended != nil {
		p = *sc.Recommended
	}
	applyParamFlags(cmd, &p)

	s, err := sim.New(sc, sim.WithLogger(logger), sim.WithParams(p), sim.WithIntegrator(kind))
	if err != nil {
		return nil, 0, err
	}
	return s, stepSize(cmd, sc), nil
}

// stepSize is --dt when given, else the scenario's default step.
func stepSize(cmd *cobra.Command, sc scenes.Scenario) float64 {
	if !cmd.Flags().Changed("dt") && sc.DefaultDt > 0 {
		return sc.DefaultDt
	}
	return dt
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp := experiment.New(cfg, logger)
	if err := exp.Setup(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("running %s with %s...\n", exp.Scenario().Name, exp.Simulator().Integrator())
	start := time.Now()

	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := exp.Save(st, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d, samples: %d\n", result.StepsTaken, len(result.Frames))
	fmt.Println("\nmetrics:")
	for _, m := range sortedKeys(result.Metrics) {
		fmt.Printf("  %s: %.6f\n", m, result.Metrics[m])
	}
	return nil
}

func stepScenario(cmd *cobra.Command, args []string) error {
	s, h, err := newSimulator(cmd, args)
	if err != nil {
		return err
	}
	if steps < 1 {
		return dynamo.BoundsError("steps", float64(steps))
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("%s, %s, dt=%g", s.Scenario().Name, s.Integrator(), h)))
	fmt.Println(dimStyle.Render("t = 0"))
	fmt.Print(viz.PointDump(s))

	for i := 0; i < steps; i++ {
		if err := s.Advance(h); err != nil {
			return err
		}
		fmt.Println(dimStyle.Render(fmt.Sprintf("t = %g", s.Time())))
		fmt.Print(viz.PointDump(s))
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	s, h, err := newSimulator(cmd, args)
	if err != nil {
		return err
	}
	return viz.RunLive(s, h)
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	sc, err := scenes.Get(args[0])
	if err != nil {
		return err
	}

	kinds := dynamo.IntegratorKinds()
	if len(args) > 1 {
		kinds = kinds[:0:0]
		for _, name := range args[1:] {
			k, err := dynamo.ParseIntegratorKind(name)
			if err != nil {
				return err
			}
			kinds = append(kinds, k)
		}
	}

	p := dynamo.DefaultParams()
	if sc.Recommended != nil {
		p = *sc.Recommended
	}
	applyParamFlags(cmd, &p)

	ctx, cancel := signalContext()
	defer cancel()

	h := stepSize(cmd, sc)
	cfg := dynamo.Config{Dt: h, Duration: duration, SampleEvery: max(1, int(duration/h)/100)}
	out, err := sim.Compare(ctx, sc, p, kinds, cfg, sim.WithLogger(logger))
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("comparing integrators for %s (dt=%.4f, duration=%.1fs)", sc.Name, h, duration)))
	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "INTEGRATOR\tFINAL_P0_Y\tE_START\tE_END\tDRIFT\tTIME_MS\t")
	for _, c := range out {
		finalY := 0.0
		if len(c.Final) > 0 {
			finalY = c.Final[0].Position.Y
		}
		fmt.Fprintf(w, "%s\t%.6f\t%.4f\t%.4f\t%.2e\t%.2f\t\n",
			c.Kind, finalY, c.EnergyStart, c.EnergyEnd, c.EnergyDrift(), float64(c.Elapsed.Microseconds())/1000)
	}
	return w.Flush()
}

func benchScenario(cmd *cobra.Command, args []string) error {
	sc, err := scenarioArg(args)
	if err != nil {
		return err
	}

	fmt.Printf("benchmarking %s\n\n", sc.Name)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEG\tDT\tSTEPS\tTIME\tSTEPS/SEC")

	for _, kind := range dynamo.IntegratorKinds() {
		for _, h := range []float64{0.001, 0.005, 0.01} {
			s, err := sim.New(sc, sim.WithIntegrator(kind), sim.WithLogger(logger))
			if err != nil {
				return err
			}

			start := time.Now()
			result, err := s.Run(context.Background(), dynamo.Config{Dt: h, Duration: 1, SampleEvery: 1000})
			if err != nil {
				fmt.Fprintf(w, "%s\t%.4f\terror: %v\t\t\n", kind, h, err)
				continue
			}
			elapsed := time.Since(start)

			fmt.Fprintf(w, "%s\t%.4f\t%d\t%v\t%.0f\n",
				kind, h, result.StepsTaken, elapsed.Round(time.Microsecond), float64(result.StepsTaken)/elapsed.Seconds())
		}
	}
	return w.Flush()
}

func listScenarios(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tPOINTS\tSPRINGS\tDT\tFEATURES\tPRESETS\tDESCRIPTION")

	for _, name := range scenes.Names() {
		sc, _ := scenes.Get(name)
		scene := &dynamo.Scene{}
		if err := sc.Build(scene); err != nil {
			return fmt.Errorf("build %s: %w", name, err)
		}

		var features []string
		if sc.Features.ExternalForces {
			features = append(features, "external")
		}
		if sc.Features.Collision {
			features = append(features, "collision")
		}
		if sc.SingleStep {
			features = append(features, "single-step")
		}

		fmt.Fprintf(w, "%s\t%d\t%d\t%g\t%s\t%s\t%s\n",
			name, len(scene.Points), len(scene.Springs), sc.DefaultDt,
			orDash(strings.Join(features, ",")),
			orDash(strings.Join(config.ListPresets(name), ",")),
			sc.Description)
	}
	return w.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

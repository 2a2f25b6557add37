package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/san-kum/massspring/internal/config"
	"github.com/san-kum/massspring/internal/scenes"
	"github.com/san-kum/massspring/internal/sim"
	"github.com/san-kum/massspring/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir  string
	logLevel string
	logger   *log.Logger

	dt          float64
	duration    float64
	sampleEvery int
	integrator  string
	configFile  string
	sceneFile   string
	preset      string

	mass      float64
	stiffness float64
	gravity   float64
	wind      float64
	floor     float64

	steps     int
	pointIdx  int
	axisName  string
	frameIdx  int
	outFile   string
	traceSVG  bool
	showPhase bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "massspring",
		Short:         "mass-spring simulation lab",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogger()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunMenu(sim.WithLogger(logger))
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".massspring", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run [scenario]",
		Short: "run simulation and store the result",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)
	runCmd.Flags().IntVar(&sampleEvery, "sample", config.DefaultSample, "store every n-th step")
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&sceneFile, "scene", "", "custom scene file (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")

	stepCmd := &cobra.Command{
		Use:   "step [scenario]",
		Short: "advance step by step and print every point",
		Args:  cobra.MaximumNArgs(1),
		RunE:  stepScenario,
	}
	addRunFlags(stepCmd)
	stepCmd.Flags().IntVar(&steps, "steps", 1, "number of steps")

	liveCmd := &cobra.Command{
		Use:   "live [scenario]",
		Short: "run simulation with live visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addRunFlags(liveCmd)

	compareCmd := &cobra.Command{
		Use:   "compare [scenario] [integrator...]",
		Short: "compare integrators on the same scenario",
		Args:  cobra.MinimumNArgs(1),
		RunE:  compareIntegrators,
	}
	addRunFlags(compareCmd)

	benchCmd := &cobra.Command{
		Use:   "bench [scenario]",
		Short: "benchmark integrators",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchScenario,
	}

	scenariosCmd := &cobra.Command{
		Use:   "scenarios",
		Short: "list built-in scenarios and their presets",
		RunE:  listScenarios,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a point's trajectory",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	addTraceFlags(plotCmd)

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of a point's trajectory",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	addTraceFlags(analyzeCmd)
	analyzeCmd.Flags().BoolVar(&showPhase, "phase", false, "also print the phase portrait")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export a frame or a trajectory to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	addTraceFlags(exportSVGCmd)
	exportSVGCmd.Flags().IntVar(&frameIdx, "frame", -1, "frame index, negative counts from the end")
	exportSVGCmd.Flags().BoolVar(&traceSVG, "trace", false, "plot the trajectory instead of a frame")
	exportSVGCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	batchCmd := &cobra.Command{
		Use:   "batch [file]",
		Short: "run a batch of configurations and sweeps",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}

	rootCmd.AddCommand(runCmd, stepCmd, liveCmd, compareCmd, benchCmd, scenariosCmd,
		listCmd, plotCmd, analyzeCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd, batchCmd)

	if err := rootCmd.Execute(); err != nil {
		if logger == nil {
			logger = log.New(os.Stderr)
		}
		logger.Error("command failed", "err", err)
		os.Exit(1)
	}
}

func setupLogger() error {
	level, err := log.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	logger = log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		Prefix:          "massspring",
		ReportTimestamp: level <= log.DebugLevel,
		TimeFormat:      time.TimeOnly,
	})
	return nil
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	cmd.Flags().StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator (euler, leapfrog, midpoint)")
	cmd.Flags().Float64Var(&mass, "mass", 0, "point mass")
	cmd.Flags().Float64Var(&stiffness, "stiffness", 0, "spring stiffness")
	cmd.Flags().Float64Var(&gravity, "gravity", 0, "gravity")
	cmd.Flags().Float64Var(&wind, "wind", 0, "wind")
	cmd.Flags().Float64Var(&floor, "floor", 0, "floor height")
}

func addTraceFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&pointIdx, "point", 0, "point index")
	cmd.Flags().StringVar(&axisName, "axis", "y", "coordinate (x, y, z)")
}

func scenarioArg(args []string) (scenes.Scenario, error) {
	name := config.DefaultScenario
	if len(args) > 0 {
		name = args[0]
	}
	return scenes.Get(name)
}

package main

import (
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/massspring/internal/analysis"
	"github.com/san-kum/massspring/internal/export"
	"github.com/san-kum/massspring/internal/storage"
	"github.com/spf13/cobra"
)

func sortedKeys(m map[string]float64) []string {
	return slices.Sorted(maps.Keys(m))
}

func loadRun(runID string) (*storage.RunMetadata, [][]float64, []float64, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	frames, times, err := st.LoadStates(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(frames) == 0 {
		return nil, nil, nil, fmt.Errorf("run %s has no samples", runID)
	}
	return meta, frames, times, nil
}

func loadTrace(runID string) (*storage.RunMetadata, []float64, []float64, analysis.Axis, error) {
	axis, err := analysis.ParseAxis(axisName)
	if err != nil {
		return nil, nil, nil, 0, err
	}
	meta, frames, times, err := loadRun(runID)
	if err != nil {
		return nil, nil, nil, 0, err
	}
	trace, err := analysis.Trace(frames, pointIdx, axis)
	if err != nil {
		return nil, nil, nil, 0, err
	}
	return meta, trace, times, axis, nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tDURATION\tDT\tINTEG\tPOINTS\tSTEPS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%s\t%d\t%d\n",
			run.ID,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Integrator,
			run.Points,
			run.Steps,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, trace, _, axis, err := loadTrace(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scenario: %s (%s)\n", meta.Scenario, meta.Integrator)
	fmt.Printf("samples: %d\n\n", len(trace))

	graph := asciigraph.Plot(trace,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("p%d %s vs time", pointIdx, axis)),
	)
	fmt.Println(graph)
	fmt.Println()

	if len(meta.Metrics) > 0 {
		fmt.Println("metrics:")
		for _, m := range sortedKeys(meta.Metrics) {
			fmt.Printf("  %s: %.6f\n", m, meta.Metrics[m])
		}
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, trace, times, axis, err := loadTrace(args[0])
	if err != nil {
		return err
	}
	if len(times) < 2 {
		return fmt.Errorf("need at least two samples")
	}

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("scenario: %s, p%d %s\n\n", meta.Scenario, pointIdx, axis)

	sp := analysis.NewSpectrum(trace, times[1]-times[0])
	if len(sp.Amplitude) < 2 {
		return fmt.Errorf("not enough samples for a spectrum")
	}

	plotData := sp.Amplitude[:max(2, len(sp.Amplitude)/4)]
	graph := asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("amplitude spectrum (p%d %s)", pointIdx, axis)),
	)
	fmt.Println(graph)
	fmt.Println()

	if freq, ok := sp.Dominant(); ok {
		fmt.Printf("dominant frequency: %.3f hz\n", freq)
		fmt.Printf("period: %.3f s\n", sp.Period())
	} else {
		fmt.Println("no dominant frequency")
	}

	if showPhase {
		fmt.Println()
		fmt.Println(analysis.PhasePortraitToASCII(analysis.GeneratePhasePortrait(trace, times), 70, 20))
	}
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, frames, times, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.WriteStates(os.Stdout, frames, times)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, frames, times, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, meta, frames, times)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	var svg string
	if traceSVG {
		_, trace, times, _, err := loadTrace(args[0])
		if err != nil {
			return err
		}
		svg = export.TrajectoryToSVG(times, trace, 800, 400, "#00ff88")
	} else {
		meta, frames, _, err := loadRun(args[0])
		if err != nil {
			return err
		}
		i := frameIdx
		if i < 0 {
			i += len(frames)
		}
		if i < 0 || i >= len(frames) {
			return fmt.Errorf("frame %d out of range [0, %d)", frameIdx, len(frames))
		}
		opts := export.FrameOptions{Width: 800, Height: 600}
		if meta.Features.Collision {
			opts.Floor = &meta.Params.FloorHeight
		}
		svg = export.FrameToSVG(meta.Frame(frames[i]), meta.Springs, opts)
	}

	var w io.Writer = os.Stdout
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	_, err := io.WriteString(w, svg)
	return err
}

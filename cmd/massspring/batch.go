package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/san-kum/massspring/internal/automation"
	"github.com/san-kum/massspring/internal/storage"
	"github.com/spf13/cobra"
)

func runBatch(cmd *cobra.Command, args []string) error {
	b, err := automation.LoadBatch(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	r := &automation.Runner{Store: st, Logger: logger}

	ctx, cancel := signalContext()
	defer cancel()

	if b.Name != "" {
		fmt.Println(titleStyle.Render(b.Name))
		if b.Description != "" {
			fmt.Println(dimStyle.Render(b.Description))
		}
		fmt.Println()
	}

	if len(b.Runs) > 0 {
		outcomes, err := r.RunBatch(ctx, b)
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "RUN\tSCENARIO\tINTEG\tSTEPS\tDRIFT")
		for _, o := range outcomes {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.2e\n",
				o.RunID, o.Scenario, o.Integrator, o.Result.StepsTaken, o.Result.Metrics["energy_drift"])
		}
		if ferr := w.Flush(); ferr != nil {
			return ferr
		}
		if err != nil {
			return err
		}
	}

	for i := range b.Sweeps {
		sw := &b.Sweeps[i]
		results, err := r.RunSweep(ctx, sw)
		if err != nil {
			return fmt.Errorf("sweep %d: %w", i+1, err)
		}

		fmt.Printf("\nsweep %s on %s (%s)\n", sw.Param, sw.Base.Scenario, sw.Base.Integrator)
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "VALUE\tSTABLE\tSTEPS\tDRIFT\tSTRETCH")
		for _, res := range results {
			fmt.Fprintf(w, "%.4g\t%v\t%d\t%.2e\t%.4f\n", res.ParamValue, res.Stable, res.Steps, res.EnergyDrift, res.MaxStretch)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		stable, unstable := automation.SweepStats(results)
		fmt.Printf("stable: %d, unstable: %d\n", stable, unstable)
	}
	return nil
}

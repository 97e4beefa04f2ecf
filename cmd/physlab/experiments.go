package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/physlab/internal/dynamo"
	"github.com/san-kum/physlab/internal/experiment"
	"github.com/san-kum/physlab/internal/export"
	"github.com/san-kum/physlab/internal/regression"
	"github.com/san-kum/physlab/internal/storage"
)

func runFit(cmd *cobra.Command, args []string) error {
	lab := args[0]
	if _, err := experiment.Lookup(lab); err != nil {
		return err
	}
	cfg, err := loadConfig(cmd, lab)
	if err != nil {
		return err
	}

	runner := experiment.NewRunner(cfg, logrus.NewEntry(log))
	res, err := runner.Run(cmd.Context(), lab, values)
	if err != nil {
		return err
	}
	printResult(res)

	if csvOut != "" {
		f, err := os.Create(csvOut)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := export.WriteCSV(f, res.Samples); err != nil {
			return err
		}
		fmt.Printf("samples written to %s\n", csvOut)
	}
	if plotOut != "" {
		p, err := export.FitPlot(res.Samples, res.Fit, lab+" experiment")
		if err != nil {
			return err
		}
		if err := export.SavePlot(p, plotOut); err != nil {
			return err
		}
		fmt.Printf("plot written to %s\n", plotOut)
	}
	if save {
		store := storage.New(dataDir)
		if err := store.Init(); err != nil {
			return err
		}
		runID, err := store.Save(res, cfg.Integrator)
		if err != nil {
			return err
		}
		fmt.Printf("saved: %s\n", runID)
	}
	return nil
}

// regressCSV fits samples recorded elsewhere, one x,y pair per row after a header.
func regressCSV(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	set, err := export.ReadCSV(f)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	fit, err := set.Fit()
	if err != nil {
		return err
	}
	fmt.Printf("%d samples (%s, %s)\n", set.Len(), set.XLabel, set.YLabel)
	fmt.Printf("fit: %s\n", fit)

	if plotOut != "" {
		p, err := export.FitPlot(set, fit, args[0])
		if err != nil {
			return err
		}
		if err := export.SavePlot(p, plotOut); err != nil {
			return err
		}
		fmt.Printf("plot written to %s\n", plotOut)
	}
	return nil
}

func printResult(res *experiment.Result) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if res.Lab == "centripetal" {
		fmt.Fprintln(w, "HEIGHT\tPERIOD\tPEAK |d|\tAT STOP")
		for _, tr := range res.Trials {
			fmt.Fprintf(w, "%.2f\t%.4f\t%.3f\t%.1f%%\n", tr.Param, tr.Measured, tr.Displacement, 100*tr.AtStop)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "%s\t%s\n", res.Samples.XLabel, res.Samples.YLabel)
	for _, s := range res.Samples.Samples() {
		fmt.Fprintf(w, "%.2f\t%.4f\n", s.X, s.Y)
	}
	w.Flush()

	fmt.Println()
	fmt.Printf("fit: %s\n", res.Fit)
	fmt.Printf("%s = %.4g %s", res.Quantity, res.Value, res.Unit)
	if res.Reference != 0 {
		fmt.Printf(" (reference %.4g, error %.2f%%)", res.Reference, 100*res.RelError())
	}
	fmt.Println()
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := experiment.LoadScenario(args[0])
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd, "")
	if err != nil {
		return err
	}

	store := storage.New(dataDir)
	if err := store.Init(); err != nil {
		return err
	}
	saveRun := func(name string, res *experiment.Result) error {
		runID, err := store.Save(res, cfg.Integrator)
		if err != nil {
			return err
		}
		log.WithFields(logrus.Fields{"name": name, "run": runID}).Info("run saved")
		return nil
	}

	results, err := experiment.RunScenario(cmd.Context(), sc, cfg, logrus.NewEntry(log), saveRun)
	if err != nil {
		return err
	}

	fmt.Printf("scenario: %s\n", sc.Name)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tLAB\tSAMPLES\tR²\tRESULT")
	for i, res := range results {
		fmt.Fprintf(w, "%d\t%s\t%d\t%.4f\t%s = %.4g %s\n", i+1, res.Lab, res.Samples.Len(), res.Fit.RSquared, res.Quantity, res.Value, res.Unit)
	}
	return w.Flush()
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, "pendulum")
	if err != nil {
		return err
	}
	runner := experiment.NewRunner(cfg, logrus.NewEntry(log))
	rows, err := runner.ComparePendulum(cmd.Context(), args)
	if err != nil {
		return err
	}

	fmt.Printf("pendulum h=%.0f cm, θ0=%.0f°, %d periods\n\n", cfg.Pendulum.PivotOffset, cfg.Pendulum.InitialAngle, cfg.Pendulum.TargetPeriods)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tPERIOD\tTHEORY\tERROR\tENERGY DRIFT\tMEAN ENERGY")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%.5f\t%.5f\t%.3f%%\t%.2e\t%.6g\n", r.Integrator, r.Period, r.Theoretical, 100*r.RelError, r.EnergyDrift, r.MeanEnergy)
	}
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tLAB\tSAMPLES\tRESULT\tTIME")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s = %.4g %s\t%s\n", r.ID, r.Lab, len(r.Samples), r.Quantity, r.Value, r.Unit, r.Timestamp.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	rep, err := store.Load(args[0])
	if err != nil {
		return err
	}
	set, err := store.LoadSamples(args[0])
	if err != nil {
		return err
	}
	fit := regression.Result{Slope: rep.Slope, Intercept: rep.Intercept, RSquared: rep.RSquared}

	if plotOut != "" {
		p, err := export.FitPlot(set, fit, rep.Lab+" "+rep.ID)
		if err != nil {
			return err
		}
		if err := export.SavePlot(p, plotOut); err != nil {
			return err
		}
		fmt.Printf("plot written to %s\n", plotOut)
		return nil
	}

	xs, ys := set.XY()
	if len(ys) < 2 {
		return dynamo.ErrInsufficientData
	}
	fitted := make([]float64, len(xs))
	for i, x := range xs {
		fitted[i] = fit.At(x)
	}
	caption := fmt.Sprintf("%s vs %s, %s", set.YLabel, set.XLabel, fit)
	fmt.Println(asciigraph.PlotMany([][]float64{ys, fitted},
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.SeriesColors(asciigraph.Default, asciigraph.Green),
		asciigraph.Caption(caption)))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	rep, err := storage.New(dataDir).Load(args[0])
	if err != nil {
		return err
	}
	return export.WriteJSON(os.Stdout, *rep)
}

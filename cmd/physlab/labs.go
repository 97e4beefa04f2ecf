package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/physlab/internal/analysis"
	"github.com/san-kum/physlab/internal/config"
	"github.com/san-kum/physlab/internal/dynamo"
	"github.com/san-kum/physlab/internal/experiment"
	"github.com/san-kum/physlab/internal/export"
	"github.com/san-kum/physlab/internal/integrators"
	"github.com/san-kum/physlab/internal/metrics"
	"github.com/san-kum/physlab/internal/physics"
)

// simulate drives m frame by frame, calling sample after each frame.
func simulate(ctx context.Context, cfg *config.Config, m dynamo.Model, sample func(), mts ...dynamo.Metric) (*dynamo.Driver, error) {
	d := cfg.Driver.NewDriver()
	for _, mt := range mts {
		d.AddMetric(mt)
	}
	frame := cfg.Driver.Frame()
	for !m.Done() {
		if d.Frames() >= experiment.DefaultMaxFrames {
			return d, fmt.Errorf("%w: run did not finish within %d frames", dynamo.ErrPreconditionViolation, experiment.DefaultMaxFrames)
		}
		if err := ctx.Err(); err != nil {
			return d, err
		}
		if _, err := d.Frame(m, frame); err != nil {
			return d, err
		}
		if sample != nil {
			sample()
		}
	}
	if d.Dropped() > 0 {
		log.WithField("dropped", d.Dropped()).Warn("driver dropped simulated time")
	}
	return d, nil
}

func printChart(data []float64, caption string) {
	if len(data) < 2 {
		return
	}
	fmt.Println()
	fmt.Println(asciigraph.Plot(downsample(data, 80), asciigraph.Height(10), asciigraph.Width(80), asciigraph.Caption(caption)))
}

func downsample(data []float64, n int) []float64 {
	if len(data) <= n {
		return data
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = data[i*len(data)/n]
	}
	return out
}

func runPendulum(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, "pendulum")
	if err != nil {
		return err
	}
	integ, err := integrators.Get(cfg.Integrator)
	if err != nil {
		return err
	}
	p, err := physics.NewPendulum(cfg.Pendulum)
	if err != nil {
		return err
	}
	if err := p.SetIntegrator(integ); err != nil {
		return err
	}
	if err := p.Release(); err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"pivot":      cfg.Pendulum.PivotOffset,
		"angle":      cfg.Pendulum.InitialAngle,
		"periods":    cfg.Pendulum.TargetPeriods,
		"integrator": cfg.Integrator,
	}).Info("releasing pendulum")

	var angles []float64
	drift := metrics.NewEnergyDrift(p, 0)
	d, err := simulate(cmd.Context(), cfg, p, func() {
		angles = append(angles, p.State().Angle*180/math.Pi)
	}, drift)
	if err != nil {
		return err
	}

	period, err := p.AveragePeriod()
	if err != nil {
		return err
	}
	want, err := p.TheoreticalPeriod()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "pivot offset\t%.1f cm\n", cfg.Pendulum.PivotOffset)
	fmt.Fprintf(w, "periods\t%d\n", p.State().CompletedPeriods)
	fmt.Fprintf(w, "elapsed\t%.4f s\n", d.Time())
	fmt.Fprintf(w, "average period\t%.4f s\n", period)
	fmt.Fprintf(w, "theoretical period\t%.4f s\n", want)
	fmt.Fprintf(w, "error\t%.3f%%\n", 100*math.Abs(period-want)/want)
	fmt.Fprintf(w, "energy drift\t%.2e\n", drift.Value())
	if spectral, err := analysis.DominantPeriod(angles, cfg.Driver.Frame()); err == nil {
		fmt.Fprintf(w, "spectral period\t%.4f s\n", spectral)
	}
	w.Flush()

	if chart {
		printChart(angles, "angle (degrees)")
	}
	return nil
}

func runAirTable(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, "airtable")
	if err != nil {
		return err
	}
	table, err := physics.NewAirTable(cfg.AirTable)
	if err != nil {
		return err
	}
	v := dynamo.Vec{X: launchVX, Y: launchVY}
	predicted := table.Predict(v)
	if err := table.Launch(v); err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"vx":      v.X,
		"vy":      v.Y,
		"incline": cfg.AirTable.InclineAngle,
	}).Info("launching puck")

	var path []dynamo.Vec
	if _, err := simulate(cmd.Context(), cfg, table, func() {
		path = append(path, table.State().Position)
	}); err != nil {
		return err
	}

	f := table.Flight()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "outcome\t%s\n", f.Outcome)
	fmt.Fprintf(w, "acceleration\t%.2f cm/s²\n", cfg.AirTable.Acceleration())
	if f.HasApex {
		fmt.Fprintf(w, "time to apex\t%.4f s\n", f.TimeToApex)
		fmt.Fprintf(w, "max height\t%.2f cm\n", f.MaxHeight)
	} else {
		fmt.Fprintf(w, "time to apex\t-\n")
	}
	fmt.Fprintf(w, "range\t%.2f cm\n", f.Range)
	fmt.Fprintf(w, "flight time\t%.4f s\n", f.FlightTime)
	fmt.Fprintf(w, "bounces\t%d\n", f.Bounces)
	fmt.Fprintf(w, "sparks\t%d\n", len(table.Dots()))
	w.Flush()

	for i, b := range table.Bounces() {
		fmt.Printf("  bounce %d: t=%.3f s at (%.1f, %.1f) E=%.0f\n", i+1, b.Time, b.Position.X, b.Position.Y, b.Energy)
	}

	if svgOut != "" {
		p, err := export.TrajectoryPlot(predicted, table.Dots(), cfg.AirTable.Width, cfg.AirTable.Height, "air table flight")
		if err != nil {
			return err
		}
		if err := export.SavePlot(p, svgOut); err != nil {
			return err
		}
		fmt.Printf("wrote %s (%d predicted points, %d observed)\n", svgOut, len(predicted), len(path))
	}
	return nil
}

func runCentripetal(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, "centripetal")
	if err != nil {
		return err
	}
	c, err := physics.NewCentripetal(cfg.Centripetal)
	if err != nil {
		return err
	}

	fmt.Printf("%-14s spring length %.2f cm\n", c.Phase(), c.SpringLength())
	if err := c.AttachMass(); err != nil {
		return err
	}
	fmt.Printf("%-14s spring length %.2f cm (x0 = %.3f cm)\n", c.Phase(), c.SpringLength(), c.ExtensionDueToMass())
	if err := c.Assemble(cfg.Centripetal.ExtraExtension, cfg.Centripetal.ReleaseHeight); err != nil {
		return err
	}
	fmt.Printf("%-14s spring length %.2f cm (release angle %.2f°)\n", c.Phase(), c.SpringLength(), c.ReleaseAngle()*180/math.Pi)
	if err := c.Release(); err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"k":      c.SpringConstant(),
		"height": cfg.Centripetal.ReleaseHeight,
	}).Info("releasing bob")

	var disp []float64
	if _, err := simulate(cmd.Context(), cfg, c, func() {
		disp = append(disp, c.State().Displacement)
	}); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "spring constant\t%.1f dyn/cm\n", c.SpringConstant())
	fmt.Fprintf(w, "rest extension\t%.3f cm\n", c.RestExtension())
	fmt.Fprintf(w, "max displacement\t%.4f cm\n", c.MaxDisplacement())
	fmt.Fprintf(w, "status\t%s\n", c.Status())
	if period, err := c.BobPeriod(); err == nil {
		fmt.Fprintf(w, "bob period\t%.4f s\n", period)
	}
	if f, err := analysis.DominantFrequency(disp, cfg.Driver.Frame()); err == nil {
		fmt.Fprintf(w, "oscillation\t%.3f Hz\n", f)
	}
	w.Flush()

	if chart {
		printChart(disp, "cylinder displacement (cm)")
	}
	return nil
}

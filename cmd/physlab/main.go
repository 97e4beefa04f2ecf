package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/physlab/internal/config"
	"github.com/san-kum/physlab/internal/gui"
	"github.com/san-kum/physlab/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	logLevel   string
	integrator string
	fps        float64

	// pendulum
	pivot   float64
	angle   float64
	periods int

	// air table
	launchVX float64
	launchVY float64
	incline  float64
	svgOut   string

	// centripetal
	springK float64
	extra   float64
	height  float64

	// experiments
	values  []float64
	csvOut  string
	plotOut string
	save    bool
	chart   bool
	sound   bool
)

var log = logrus.New()

// main registers the commands and runs the root command; it exits with status 1 on error.
func main() {
	rootCmd := &cobra.Command{
		Use:   "physlab",
		Short: "physics teaching labs: pendulum, air table and centripetal apparatus",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(logLevel)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, "")
			if err != nil {
				return err
			}
			return viz.Run("", cfg)
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".physlab", "data directory for saved runs")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use a named preset for the lab")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&integrator, "integrator", config.DefaultIntegrator, "pendulum integrator (euler, rk4, symplectic)")
	rootCmd.PersistentFlags().Float64Var(&fps, "fps", config.DefaultFPS, "driver frame rate")

	pendulumCmd := &cobra.Command{
		Use:   "pendulum",
		Short: "swing the physical pendulum and time its periods",
		Args:  cobra.NoArgs,
		RunE:  runPendulum,
	}
	pendulumCmd.Flags().Float64Var(&pivot, "pivot", 15, "pivot offset from the centre (cm)")
	pendulumCmd.Flags().Float64Var(&angle, "angle", 10, "initial angle (degrees)")
	pendulumCmd.Flags().IntVar(&periods, "periods", 10, "periods to time")
	pendulumCmd.Flags().BoolVar(&chart, "chart", false, "chart the angle")

	airtableCmd := &cobra.Command{
		Use:   "airtable",
		Short: "launch a puck across the inclined air table",
		Args:  cobra.NoArgs,
		RunE:  runAirTable,
	}
	airtableCmd.Flags().Float64Var(&launchVX, "vx", 15, "launch speed across the slope (cm/s)")
	airtableCmd.Flags().Float64Var(&launchVY, "vy", -60, "launch speed along the slope, negative is uphill (cm/s)")
	airtableCmd.Flags().Float64Var(&incline, "incline", 5, "incline angle (degrees)")
	airtableCmd.Flags().StringVar(&svgOut, "svg", "", "write the flight as an SVG plot")

	centripetalCmd := &cobra.Command{
		Use:   "centripetal",
		Short: "run the spring, cylinder and pendulum sequence",
		Args:  cobra.NoArgs,
		RunE:  runCentripetal,
	}
	centripetalCmd.Flags().Float64Var(&springK, "k", 2450, "spring constant (dyn/cm)")
	centripetalCmd.Flags().Float64Var(&extra, "extra", 0, "extra spring extension (cm)")
	centripetalCmd.Flags().Float64Var(&height, "height", 10, "bob release height (cm)")
	centripetalCmd.Flags().BoolVar(&chart, "chart", false, "chart the cylinder displacement")

	fitCmd := &cobra.Command{
		Use:   "fit [lab]",
		Short: "run an experiment sweep and fit the samples",
		Args:  cobra.ExactArgs(1),
		RunE:  runFit,
	}
	fitCmd.Flags().Float64SliceVar(&values, "values", nil, "swept values (pivot offsets, launch speeds or release heights)")
	fitCmd.Flags().StringVar(&csvOut, "csv", "", "write samples to a CSV file")
	fitCmd.Flags().StringVar(&plotOut, "plot", "", "write a fit plot (png, svg, pdf)")
	fitCmd.Flags().BoolVar(&save, "save", false, "save the run to the data directory")

	regressCmd := &cobra.Command{
		Use:   "regress [samples.csv]",
		Short: "fit a line through samples from a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE:  regressCSV,
	}
	regressCmd.Flags().StringVar(&plotOut, "plot", "", "write a fit plot (png, svg, pdf)")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a YAML scenario of experiments",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	compareCmd := &cobra.Command{
		Use:   "compare [integrator...]",
		Short: "compare integrators on the pendulum",
		RunE:  compareIntegrators,
	}

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "list saved runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&plotOut, "out", "", "write the plot to a file instead of the terminal")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print a saved run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [lab]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			labs := config.Labs()
			if len(args) == 1 {
				labs = args[:1]
			}
			for _, lab := range labs {
				presets := config.ListPresets(lab)
				if len(presets) == 0 {
					fmt.Printf("no presets for lab: %s\n", lab)
					continue
				}
				fmt.Printf("presets for %s:\n", lab)
				for _, p := range presets {
					fmt.Printf("  %s\n", p)
				}
			}
			return nil
		},
	}

	tuiCmd := &cobra.Command{
		Use:   "tui [lab]",
		Short: "interactive terminal lab",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lab := ""
			if len(args) == 1 {
				lab = args[0]
			}
			cfg, err := loadConfig(cmd, lab)
			if err != nil {
				return err
			}
			return viz.Run(lab, cfg)
		},
	}

	guiCmd := &cobra.Command{
		Use:   "gui [lab]",
		Short: "desktop lab window",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lab := ""
			if len(args) == 1 {
				lab = args[0]
			}
			cfg, err := loadConfig(cmd, lab)
			if err != nil {
				return err
			}
			return gui.Run(lab, cfg, sound)
		},
	}
	guiCmd.Flags().BoolVar(&sound, "sound", false, "click on periods, bounces and phase changes")

	rootCmd.AddCommand(pendulumCmd, airtableCmd, centripetalCmd, fitCmd, regressCmd, scenarioCmd, compareCmd, runsCmd, plotCmd, exportCmd, presetsCmd, tuiCmd, guiCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogging(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	log.SetLevel(lvl)
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return nil
}

// loadConfig resolves defaults, then the preset, then the config file, then
// any flags set on the command line.
func loadConfig(cmd *cobra.Command, lab string) (*config.Config, error) {
	cfg, err := config.Resolve(lab, preset, configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("fps") {
		cfg.Driver.FPS = fps
	}
	if flags.Lookup("pivot") != nil {
		if flags.Changed("pivot") {
			cfg.Pendulum.PivotOffset = pivot
		}
		if flags.Changed("angle") {
			cfg.Pendulum.InitialAngle = angle
		}
		if flags.Changed("periods") {
			cfg.Pendulum.TargetPeriods = periods
		}
	}
	if flags.Lookup("incline") != nil && flags.Changed("incline") {
		cfg.AirTable.InclineAngle = incline
	}
	if flags.Lookup("k") != nil {
		if flags.Changed("k") {
			cfg.Centripetal.SpringConstant = springK
		}
		if flags.Changed("extra") {
			cfg.Centripetal.ExtraExtension = extra
		}
		if flags.Changed("height") {
			cfg.Centripetal.ReleaseHeight = height
		}
	}
	if lab != "" {
		cfg.Lab = lab
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{"lab": cfg.Lab, "integrator": cfg.Integrator}).Debug("config resolved")
	return cfg, nil
}

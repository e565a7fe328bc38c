package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/cooldown/internal/batch"
	"github.com/san-kum/cooldown/internal/config"
	"github.com/san-kum/cooldown/internal/export"
	"github.com/san-kum/cooldown/internal/material"
	"github.com/san-kum/cooldown/internal/playback"
	"github.com/san-kum/cooldown/internal/samplelog"
	"github.com/san-kum/cooldown/internal/thermal"
	"github.com/san-kum/cooldown/internal/tui"
)

var (
	configFile string
	preset     string
	logLevel   string
	logFormat  string
	logFile    string

	step     float64
	interval float64
	maxSteps int
	format   string
	plot     bool

	speed float64
	fps   float64

	sweepFrom float64
	sweepTo   float64
	sweepN    int
)

var (
	heading = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	label   = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	value   = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Bold(true)
	warn    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "cooldown",
		Short:         "cryogenic pipe cooldown simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runLive,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "scenario file (yaml)")
	pf.StringVar(&preset, "preset", "", "start from a named preset")
	pf.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.StringVar(&logFormat, "log-format", "text", "log format (text, json)")
	pf.StringVar(&logFile, "log-file", "", "write logs to this file")
	addScenarioFlags(rootCmd)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "integrate the scenario to the target and print totals",
		Args:  cobra.NoArgs,
		RunE:  runBatch,
	}
	runCmd.Flags().Float64Var(&step, "step", config.DefaultStep, "integration step (s)")
	runCmd.Flags().Float64Var(&interval, "interval", config.DefaultSampleInterval, "sample interval (s)")
	runCmd.Flags().IntVar(&maxSteps, "max-steps", config.DefaultMaxSteps, "give up after this many steps (0 = never)")
	runCmd.Flags().StringVar(&format, "format", "table", "output format (table, csv, json, svg)")
	runCmd.Flags().BoolVar(&plot, "plot", true, "draw the curve under the table")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "interactive playback in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addPlaybackFlags(liveCmd)
	addPlaybackFlags(rootCmd)

	playCmd := &cobra.Command{
		Use:   "play",
		Short: "headless playback, one status line per frame",
		Args:  cobra.NoArgs,
		RunE:  runPlay,
	}
	addPlaybackFlags(playCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep [param]",
		Short: "run the scenario over a range of one parameter",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 20, "first value")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 100, "last value")
	sweepCmd.Flags().IntVar(&sweepN, "n", 5, "number of points")
	sweepCmd.Flags().Float64Var(&step, "step", config.DefaultStep, "integration step (s)")
	sweepCmd.Flags().IntVar(&maxSteps, "max-steps", config.DefaultMaxSteps, "give up after this many steps (0 = never)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list the built-in scenarios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tLENGTH\tOD\tFLOW\tTARGET\tU")
			for _, name := range config.ListPresets() {
				in := config.GetPreset(name).Scenario
				fmt.Fprintf(w, "%s\t%.0f m\t%.1f mm\t%.0f Nm³/h\t%.0f °C\t%.2f\n",
					name, in.Length, in.OuterDiameterMM, in.GasFlowNm3h, in.TargetC, in.HeatTransfer)
			}
			return w.Flush()
		},
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a scenario file with the current settings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "cooldown.yaml"
			if len(args) > 0 {
				path = args[0]
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := config.Save(path, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, playCmd, sweepCmd, presetsCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, explain(err))
		os.Exit(1)
	}
}

func addScenarioFlags(cmd *cobra.Command) {
	ref := config.Reference()
	for _, p := range config.Params {
		cmd.PersistentFlags().Float64(p.Name, p.Get(ref), fmt.Sprintf("%s (%s)", p.Label, p.Unit))
	}
}

func addPlaybackFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&step, "step", config.DefaultStep, "integration step (s)")
	cmd.Flags().Float64Var(&speed, "speed", config.DefaultSpeed, "steps per frame multiplier (0-4)")
	cmd.Flags().Float64Var(&fps, "fps", config.DefaultFPS, "frame rate")
}

// loadConfig layers defaults, preset, file and flags in that order. Flags
// only win when set on the command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	for _, p := range config.Params {
		if flags.Changed(p.Name) {
			v, err := flags.GetFloat64(p.Name)
			if err != nil {
				return nil, err
			}
			p.Set(&cfg.Scenario, v)
		}
	}

	if flags.Changed("step") {
		cfg.Batch.Step = step
		cfg.Playback.StepSize = step
	}
	if flags.Changed("interval") {
		cfg.Batch.SampleInterval = interval
	}
	if flags.Changed("max-steps") {
		cfg.Batch.MaxSteps = maxSteps
	}
	if flags.Changed("speed") {
		cfg.Playback.Speed = speed
	}
	if flags.Changed("fps") {
		cfg.Playback.FPS = fps
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = logFormat
	}
	if flags.Changed("log-file") {
		cfg.Log.File = logFile
	}
	return cfg, nil
}

func setup(cmd *cobra.Command, logOut io.Writer) (*config.Config, *logrus.Logger, io.Closer, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, err
	}
	log, closer, err := config.NewLogger(cfg.Log, logOut)
	if err != nil {
		return nil, nil, nil, err
	}

	warnScenario(log, cfg)
	return cfg, log, closer, nil
}

// warnScenario flags inputs the model accepts but will handle badly. Input
// errors are left to the run itself.
func warnScenario(log logrus.FieldLogger, cfg *config.Config) {
	if tk := cfg.Scenario.InitialC + thermal.KelvinOffset; !material.InRange(tk) {
		log.WithField("initial_k", tk).Warnf("initial temperature outside the steel cp fit (%.0f-%.0f K)", material.ValidMin, material.ValidMax)
	}

	d, err := thermal.Derive(cfg.Scenario, cfg.Fluid)
	if err != nil {
		return
	}
	integ := thermal.NewIntegrator(d, thermal.BatchTolerance)
	if teq, ok := integ.Equilibrium(); ok && !integ.Reachable() {
		log.WithFields(logrus.Fields{
			"equilibrium_c": teq - thermal.KelvinOffset,
			"target_c":      cfg.Scenario.TargetC,
		}).Warn("target is below the cooling equilibrium; the run will stall")
	}
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, log, closer, err := setup(cmd, os.Stderr)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runner := batch.New(
		batch.WithStep(cfg.Batch.Step),
		batch.WithSampleInterval(cfg.Batch.SampleInterval),
		batch.WithMaxSteps(cfg.Batch.MaxSteps),
		batch.WithFluid(cfg.Fluid),
		batch.WithLogger(log),
	)
	res, err := runner.Run(ctx, cfg.Scenario)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch format {
	case "table":
		printResult(out, res)
		if plot {
			fmt.Fprintln(out)
			fmt.Fprintln(out, asciigraph.Plot(res.Log.Temperatures(),
				asciigraph.Height(12),
				asciigraph.Width(72),
				asciigraph.Precision(1),
				asciigraph.Caption(fmt.Sprintf("pipe temperature (°C), %.2f h", res.Totals.Hours())),
			))
		}
		return nil
	case "csv":
		return export.CSV(out, res.Log)
	case "json":
		return export.JSON(out, res)
	case "svg":
		return export.SVG(out, res.Log, 800, 480, "#005faf")
	}
	return fmt.Errorf("unknown format %q (table, csv, json, svg)", format)
}

func printResult(w io.Writer, res *batch.Result) {
	t := res.Totals
	row := func(name, v string) {
		fmt.Fprintf(w, "  %s %s\n", label.Render(fmt.Sprintf("%-20s", name)), value.Render(v))
	}

	fmt.Fprintln(w, heading.Render("Results"))
	row("total time", fmt.Sprintf("%.2f h", t.Hours()))
	row("final temperature", fmt.Sprintf("%.1f °C", t.FinalCelsius()))
	row(res.Coeffs.Fluid.Name+" consumed", fmt.Sprintf("%.0f Nm³ (%.0f kg)", t.GasVolume, t.GasMass))
	row("gross refrigeration", fmt.Sprintf("%.1f MJ", t.RemovedMJ()))
	row("heat ingress", fmt.Sprintf("%.1f MJ", t.IngressMJ()))
	row("net heat removed", fmt.Sprintf("%.1f MJ", t.NetMJ))
	row("steel mass", fmt.Sprintf("%.0f kg", res.Coeffs.SteelMass))
	row("steps / samples", fmt.Sprintf("%d / %d", t.Steps, res.Log.Len()))
	row("stall margin", fmt.Sprintf("%.1f %%", 100*res.Metrics["stall_margin"]))
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.ValidateSettings(); err != nil {
		return err
	}

	// the terminal belongs to the TUI; logs go to a file or nowhere
	log, closer, err := config.NewLogger(cfg.Log, io.Discard)
	if err != nil {
		return err
	}
	defer closer.Close()

	m := tui.New(config.NewForm(cfg.Scenario), cfg.Playback.FPS, log,
		playback.WithStepSize(cfg.Playback.StepSize),
		playback.WithSpeed(cfg.Playback.Speed),
		playback.WithFluid(cfg.Fluid),
	)
	return tui.Run(m)
}

type lineRenderer struct {
	w    io.Writer
	ctrl *playback.Controller
}

func (r *lineRenderer) Render(_ *samplelog.Log, _ int) {
	if r.ctrl == nil {
		return
	}
	s := r.ctrl.Snapshot()
	fmt.Fprintf(r.w, "%8.2f h  %8.1f °C  %s %3.0f%%  Qnet %7.0f W  net %7.2f MJ\n",
		s.Hours(), s.Celsius(), tui.ProgressBar(s.Progress(), 20), 100*s.Progress(), s.NetPower, s.NetMJ)
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, log, closer, err := setup(cmd, os.Stderr)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	r := &lineRenderer{w: cmd.OutOrStdout()}
	ctrl := playback.New(config.NewForm(cfg.Scenario),
		playback.WithRenderer(r),
		playback.WithStepSize(cfg.Playback.StepSize),
		playback.WithSpeed(cfg.Playback.Speed),
		playback.WithFluid(cfg.Fluid),
		playback.WithLogger(log),
	)
	r.ctrl = ctrl

	h, err := ctrl.Play()
	if err != nil {
		return err
	}
	err = h.Run(ctx, playback.NewRateScheduler(cfg.Playback.FPS))
	if errors.Is(err, context.Canceled) {
		log.Info("interrupted")
		return nil
	}
	return err
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, log, closer, err := setup(cmd, os.Stderr)
	if err != nil {
		return err
	}
	defer closer.Close()

	p, err := config.LookupParam(args[0])
	if err != nil {
		return err
	}
	scenarios, err := config.Sweep(cfg.Scenario, p.Name, sweepFrom, sweepTo, sweepN)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runner := batch.New(
		batch.WithStep(cfg.Batch.Step),
		batch.WithSampleInterval(cfg.Batch.SampleInterval),
		batch.WithMaxSteps(cfg.Batch.MaxSteps),
		batch.WithFluid(cfg.Fluid),
		batch.WithLogger(log),
	)
	variants, err := runner.Sweep(ctx, scenarios)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s (%s)\tTIME (h)\tGAS (Nm³)\tNET (MJ)\tMARGIN\tNOTE\n", strings.ToUpper(p.Name), p.Unit)
	for _, v := range variants {
		x := p.Get(v.Inputs)
		if v.Err != nil {
			fmt.Fprintf(w, "%.3g\t-\t-\t-\t-\t%s\n", x, warn.Render(explain(v.Err)))
			continue
		}
		t := v.Result.Totals
		fmt.Fprintf(w, "%.3g\t%.2f\t%.0f\t%.1f\t%.1f%%\t\n", x, t.Hours(), t.GasVolume, t.NetMJ, 100*v.Result.Metrics["stall_margin"])
	}
	return w.Flush()
}

// explain turns the model's error kinds into operator advice.
func explain(err error) string {
	var se *thermal.StallError
	var ge *thermal.GeometryError
	switch {
	case errors.As(err, &se):
		return "stall: " + se.Error()
	case errors.As(err, &ge):
		return "geometry: " + ge.Error() + "; check OD and wall thickness"
	case errors.Is(err, thermal.ErrValidation):
		return "input: " + err.Error()
	case errors.Is(err, batch.ErrStepLimit):
		return err.Error() + "; raise --max-steps or --step"
	}
	return err.Error()
}

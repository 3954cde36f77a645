package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/driftsim/internal/audio"
	"github.com/san-kum/driftsim/internal/background"
	"github.com/san-kum/driftsim/internal/clock"
	"github.com/san-kum/driftsim/internal/config"
	"github.com/san-kum/driftsim/internal/export"
	"github.com/san-kum/driftsim/internal/gui"
	"github.com/san-kum/driftsim/internal/metrics"
	"github.com/san-kum/driftsim/internal/random"
	"github.com/san-kum/driftsim/internal/sim"
	"github.com/san-kum/driftsim/internal/trace"
	"github.com/san-kum/driftsim/internal/viz"
)

var (
	configFile  string
	presetName  string
	seed        int64
	particles   int
	width       int
	height      int
	beatMs      int
	listen      bool
	noKick      bool
	logLevel    string
	logFile     string
	themeName   string
	pick        bool
	ticks       int
	frameRate   int
	runs        int
	ghostsEvery int
	outPath     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "driftsim",
		Short:        "drifting, blending particles",
		SilenceUsage: true,
		RunE:         runGUI,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file path (yaml or toml)")
	pf.StringVar(&presetName, "preset", "", "use preset configuration")
	pf.Int64Var(&seed, "seed", 0, "random seed (0 picks one from the clock)")
	pf.IntVar(&particles, "particles", config.DefaultConfig().Particles.Count, "number of particles")
	pf.IntVar(&width, "width", config.DefaultWidth, "viewport width in pixels")
	pf.IntVar(&height, "height", config.DefaultHeight, "viewport height in pixels")
	pf.IntVar(&beatMs, "beat", 0, "beat interval in ms (0 disables)")
	pf.BoolVar(&listen, "listen", false, "spawn ghosts on microphone onsets")
	pf.BoolVar(&noKick, "no-kick", false, "do not play the kick on beats")
	pf.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.StringVar(&logFile, "log-file", "", "write logs to a file instead of stderr")

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "run in a window",
		RunE:  runGUI,
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run in the terminal",
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&themeName, "theme", "night", "colour theme")
	liveCmd.Flags().BoolVar(&pick, "pick", false, "choose a preset from a menu first")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run headless and print metrics",
		RunE:  runHeadless,
	}
	runCmd.Flags().IntVar(&ticks, "ticks", 600, "number of ticks")
	runCmd.Flags().IntVar(&frameRate, "fps", 60, "simulated frame rate")
	runCmd.Flags().IntVar(&runs, "runs", 1, "number of runs with consecutive seeds")
	runCmd.Flags().IntVar(&ghostsEvery, "ghosts-every", 0, "spawn ghosts every n ticks (0 disables)")
	runCmd.Flags().StringVar(&outPath, "out", "", "write trace.csv and metadata.json under this directory")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "render a frame as SVG",
		RunE:  runSnapshot,
	}
	snapshotCmd.Flags().IntVar(&ticks, "ticks", 300, "ticks to run before rendering")
	snapshotCmd.Flags().IntVar(&frameRate, "fps", 60, "simulated frame rate")
	snapshotCmd.Flags().IntVar(&ghostsEvery, "ghosts-every", 0, "spawn ghosts every n ticks (0 disables)")
	snapshotCmd.Flags().StringVar(&outPath, "out", "-", "output file (- for stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Run: func(cmd *cobra.Command, args []string) {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			for _, name := range config.ListPresets() {
				fmt.Fprintf(w, "%s\t%s\n", name, config.Describe(name))
			}
			w.Flush()
		},
	}

	configCmd := &cobra.Command{
		Use:   "config [path]",
		Short: "print the effective configuration or save it to a file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  printConfig,
	}

	rootCmd.AddCommand(guiCmd, liveCmd, runCmd, snapshotCmd, presetsCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setupLogger installs the default logger. The returned func closes the log
// file, if any.
func setupLogger() (*log.Logger, func(), error) {
	lvl, err := log.ParseLevel(logLevel)
	if err != nil {
		return nil, nil, err
	}

	var w io.Writer = os.Stderr
	closeFn := func() {}
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, err
		}
		w, closeFn = f, func() { f.Close() }
	}

	logger := log.NewWithOptions(w, log.Options{Level: lvl, ReportTimestamp: true, Prefix: "driftsim"})
	log.SetDefault(logger)
	return logger, closeFn, nil
}

// loadConfig layers the preset, the config file and the changed flags, in
// that order, over the defaults.
func loadConfig(cmd *cobra.Command, preset string) (*config.Config, error) {
	cfg, err := config.Resolve(preset, configFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("seed") || cfg.Seed == 0 {
		cfg.Seed = seed
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if flags.Changed("particles") {
		cfg.Particles.Count = particles
	}
	if flags.Changed("width") {
		cfg.Viewport.Width = width
	}
	if flags.Changed("height") {
		cfg.Viewport.Height = height
	}
	if flags.Changed("beat") {
		cfg.Beat.IntervalMs = beatMs
	}
	if flags.Changed("listen") {
		cfg.Audio.Listen = listen
	}
	if flags.Changed("no-kick") {
		cfg.Beat.Kick = !noKick
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// session is an interactive simulation with its audio and background.
type session struct {
	sim      *sim.Simulation
	viewport sim.TickContext
	field    *background.Field
	listener *audio.Listener
	player   *audio.Player
	kick     bool
}

func newSession(cfg *config.Config, logger *log.Logger) (*session, error) {
	sc, err := cfg.SimConfig()
	if err != nil {
		return nil, err
	}
	vp, err := cfg.TickContext()
	if err != nil {
		return nil, err
	}
	s, err := sim.New(sc, vp, clock.NewWall(), random.New(cfg.Seed))
	if err != nil {
		return nil, err
	}
	s.SetLogger(logger)

	ss := &session{sim: s, viewport: vp}
	if cfg.Background.Enabled {
		ss.field = background.New(cfg.Seed, cfg.Background.Scale, cfg.Background.Speed)
	}

	if cfg.Beat.Kick {
		ss.player = audio.NewPlayer(cfg.Beat.Volume, logger)
		if err := ss.player.Init(); err != nil {
			logger.Warn("kick disabled", "err", err)
		} else {
			ss.kick = true
			s.OnBeat(func(time.Duration) { ss.player.Play() })
		}
	}

	if cfg.Audio.Listen {
		det := audio.NewDetector(cfg.Audio.Threshold, cfg.AudioCooldown())
		ss.listener = audio.NewListener(det, func() { s.RequestGhosts(0) }, logger)
		if err := ss.listener.Start(); err != nil {
			logger.Warn("audio input unavailable", "err", err)
		}
	}

	logger.Info("simulation ready", "seed", cfg.Seed, "particles", sc.Particles, "viewport", fmt.Sprintf("%dx%d", cfg.Viewport.Width, cfg.Viewport.Height))
	return ss, nil
}

func (ss *session) audioActive() bool {
	return ss.kick || (ss.listener != nil && ss.listener.Active())
}

func (ss *session) Close() {
	if ss.listener != nil {
		ss.listener.Stop()
	}
	if ss.player != nil {
		ss.player.Close()
	}
}

func runGUI(cmd *cobra.Command, args []string) error {
	logger, closeLog, err := setupLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	cfg, err := loadConfig(cmd, presetName)
	if err != nil {
		return err
	}
	ss, err := newSession(cfg, logger)
	if err != nil {
		return err
	}
	defer ss.Close()

	gui.Run(ss.sim, gui.Options{
		Width:           cfg.Viewport.Width,
		Height:          cfg.Viewport.Height,
		SideMulti:       cfg.Viewport.SideMulti,
		Field:           ss.field,
		AudioActive:     ss.audioActive,
		ShowConnections: cfg.Particles.ShowConnections,
		Logger:          logger,
	})
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	logger, closeLog, err := setupLogger()
	if err != nil {
		return err
	}
	defer closeLog()
	if logFile == "" {
		// the alternate screen owns the terminal
		logger.SetOutput(io.Discard)
	}

	var sessions []*session
	defer func() {
		for _, ss := range sessions {
			ss.Close()
		}
	}()

	build := func(preset string) (viz.Model, error) {
		cfg, err := loadConfig(cmd, preset)
		if err != nil {
			return viz.Model{}, err
		}
		ss, err := newSession(cfg, logger)
		if err != nil {
			return viz.Model{}, err
		}
		sessions = append(sessions, ss)
		return viz.NewModel(ss.sim, viz.Options{
			Viewport:    ss.viewport,
			Field:       ss.field,
			AudioActive: ss.audioActive,
			Theme:       themeName,
			Logger:      logger,
		}), nil
	}

	if pick {
		infos := make([]viz.PresetInfo, 0, len(config.Presets))
		for _, name := range config.ListPresets() {
			infos = append(infos, viz.PresetInfo{Name: name, Description: config.Describe(name)})
		}
		return viz.RunPicker(infos, build)
	}

	cfg, err := loadConfig(cmd, presetName)
	if err != nil {
		return err
	}
	ss, err := newSession(cfg, logger)
	if err != nil {
		return err
	}
	sessions = append(sessions, ss)
	return viz.Run(ss.sim, viz.Options{
		Viewport:    ss.viewport,
		Field:       ss.field,
		AudioActive: ss.audioActive,
		Theme:       themeName,
		Logger:      logger,
	})
}

// energySeries records the kinetic energy of every tick.
type energySeries []float64

func (e *energySeries) OnTick(f *sim.Frame) { *e = append(*e, metrics.FrameEnergy(f)) }

// lastFrame keeps the most recent frame.
type lastFrame struct{ f *sim.Frame }

func (l *lastFrame) OnTick(f *sim.Frame) { l.f = f }

func headlessConfig(cmd *cobra.Command) (*config.Config, sim.Config, sim.RunConfig, error) {
	cfg, err := loadConfig(cmd, presetName)
	if err != nil {
		return nil, sim.Config{}, sim.RunConfig{}, err
	}
	sc, err := cfg.SimConfig()
	if err != nil {
		return nil, sim.Config{}, sim.RunConfig{}, err
	}
	vp, err := cfg.TickContext()
	if err != nil {
		return nil, sim.Config{}, sim.RunConfig{}, err
	}
	if frameRate <= 0 {
		return nil, sim.Config{}, sim.RunConfig{}, fmt.Errorf("fps must be positive, got %d", frameRate)
	}
	rc := sim.RunConfig{
		Ticks:         ticks,
		FrameInterval: time.Second / time.Duration(frameRate),
		Viewport:      vp,
		Seed:          cfg.Seed,
		GhostsEvery:   ghostsEvery,
		Logger:        log.Default(),
	}
	return cfg, sc, rc, nil
}

func runHeadless(cmd *cobra.Command, args []string) error {
	_, closeLog, err := setupLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	_, sc, rc, err := headlessConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	if runs > 1 {
		results, err := sim.NewEnsemble(sc, rc, runs, metrics.All).Run(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%d runs completed in %v\n\n", runs, time.Since(start))
		printResults(results)
		return nil
	}

	var series energySeries
	observers := []sim.Observer{&series}
	var run *trace.Run
	if outPath != "" {
		run, err = trace.NewRun(outPath, "run")
		if err != nil {
			return err
		}
		observers = append(observers, run.Trace())
	}

	result, err := sim.Run(ctx, sc, rc, metrics.All(), observers...)
	if err != nil {
		return err
	}
	fmt.Printf("completed in %v\n\n", time.Since(start))
	printResults([]*sim.Result{result})

	if len(series) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(downsample(series, 70), asciigraph.Height(10), asciigraph.Caption("kinetic energy")))
	}

	if run != nil {
		err := run.Close(trace.RunMetadata{
			Preset:    presetName,
			Timestamp: time.Now(),
			Seed:      result.Seed,
			Ticks:     result.StepsTaken,
			FrameMs:   rc.FrameInterval.Milliseconds(),
			Width:     2 * rc.Viewport.HalfWidth,
			Height:    2 * rc.Viewport.HalfHeight,
			Particles: result.Final.Particles,
			Ghosts:    result.Final.Ghosts,
			Metrics:   result.Metrics,
		})
		if err != nil {
			return err
		}
		fmt.Printf("\nrun id: %s (%s)\n", run.ID, run.Dir)
	}
	return nil
}

func printResults(results []*sim.Result) {
	if len(results) == 0 {
		return
	}
	names := make([]string, 0, len(results[0].Metrics))
	for name := range results[0].Metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprint(w, "SEED\tTICKS\tSIM TIME\tPARTICLES\tGHOSTS")
	for _, name := range names {
		fmt.Fprintf(w, "\t%s", name)
	}
	fmt.Fprintln(w)
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%d\t%v\t%d\t%d", r.Seed, r.StepsTaken, r.SimTime, r.Final.Particles, r.Final.Ghosts)
		for _, name := range names {
			fmt.Fprintf(w, "\t%.4f", r.Metrics[name])
		}
		fmt.Fprintln(w)
	}
	w.Flush()
}

// downsample averages data into at most n buckets.
func downsample(data []float64, n int) []float64 {
	if len(data) <= n {
		return data
	}
	out := make([]float64, n)
	for i := range out {
		lo, hi := i*len(data)/n, (i+1)*len(data)/n
		sum := 0.0
		for _, v := range data[lo:hi] {
			sum += v
		}
		out[i] = sum / float64(hi-lo)
	}
	return out
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	_, closeLog, err := setupLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	_, sc, rc, err := headlessConfig(cmd)
	if err != nil {
		return err
	}

	var last lastFrame
	if _, err := sim.Run(cmd.Context(), sc, rc, nil, &last); err != nil {
		return err
	}
	if last.f == nil {
		return fmt.Errorf("no frame rendered")
	}

	if outPath == "-" {
		return export.WriteSVG(os.Stdout, last.f)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	if err := export.WriteSVG(f, last.f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, presetName)
	if err != nil {
		return err
	}
	if len(args) == 1 {
		if err := config.Save(args[0], cfg); err != nil {
			return err
		}
		fmt.Printf("saved %s\n", args[0])
		return nil
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}

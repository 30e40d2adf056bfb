package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/larpix/evd_go/internal/logging"
	display "github.com/larpix/evd_go/pkg"
	"github.com/spf13/cobra"
)

var logger = logging.New(os.Stdout, os.Stderr)

// options holds the command line; only flags the user set override the
// configuration file.
type options struct {
	configFile string
	input      string
	nhitSel    int
	geomLimits []float64
	backends   []string
	outDir     string
	points     bool
	tui        bool
	batch      bool
	workers    int
	verbosity  int
}

func main() {
	if err := newRootCmd(&options{}).Execute(); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}

func newRootCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evd [input]",
		Short: "interactive LArPix event display",
		Long: "Steps through the events of an HDF5 file or SQL database whose hit count\n" +
			"exceeds --nhit-sel and draws each one: 3D charge, x-y projection, time\n" +
			"profile and hit times. Enter advances, q quits, a number jumps.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 && !cmd.Flags().Changed("input") {
				if err := cmd.Flags().Set("input", args[0]); err != nil {
					return err
				}
			}
			config, err := opts.configuration(cmd)
			if err != nil {
				return err
			}
			return run(config)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.configFile, "config", "", "Configuration file path (yaml or json)")
	flags.StringVarP(&opts.input, "input", "i", "", "Input event file (.h5) or database (mysql://, postgres://, sqlite://, .db)")
	flags.IntVar(&opts.nhitSel, "nhit-sel", 0, "Show only events with more than this many hits")
	flags.Float64SliceVar(&opts.geomLimits, "geom-limits", display.DefaultGeomLimits,
		"x_min,x_max,y_min,y_max,t_min,t_max,pixel_pitch,time_voxel")
	flags.StringSliceVar(&opts.backends, "backend", []string{"term", "png"}, "Presentation backends: "+strings.Join(display.Backends(), ", "))
	flags.StringVar(&opts.outDir, "out-dir", ".", "Directory for png and html output")
	flags.BoolVar(&opts.points, "points", false, "Draw hits as a point cloud instead of voxels")
	flags.BoolVar(&opts.tui, "tui", false, "Read navigation input with a terminal UI prompt")
	flags.BoolVar(&opts.batch, "batch", false, "Draw every selected event without prompting")
	flags.IntVar(&opts.workers, "workers", 1, "Number of render workers in batch mode")
	flags.IntVarP(&opts.verbosity, "verbosity", "v", 0, "Verbosity level")
	return cmd
}

// configuration layers defaults, the configuration file, the environment and
// the flags the user set.
func (o *options) configuration(cmd *cobra.Command) (display.Configuration, error) {
	config, err := display.LoadConfiguration(o.configFile)
	if err != nil {
		return config, fmt.Errorf("error reading configuration file: %w", err)
	}
	if err := godotenv.Load(); err != nil && config.Verbosity > 1 {
		logger.Info(fmt.Sprintf("No .env file loaded: %v", err), "main")
	}
	config = display.ApplyEnvironment(config, os.Getenv)

	changed := cmd.Flags().Changed
	if changed("input") {
		config.Input = o.input
	}
	if changed("nhit-sel") {
		config.NHitSel = o.nhitSel
	}
	if changed("geom-limits") {
		config.GeomLimits = o.geomLimits
	}
	if changed("backend") {
		config.Backends = o.backends
	}
	if changed("out-dir") {
		config.OutDir = o.outDir
	}
	if changed("points") {
		config.Points = o.points
	}
	if changed("tui") {
		config.TUI = o.tui
	}
	if changed("batch") {
		config.Batch = o.batch
	}
	if changed("workers") {
		config.NumWorkers = o.workers
	}
	if changed("verbosity") {
		config.Verbosity = o.verbosity
	}
	return config, nil
}

func run(config display.Configuration) error {
	display.SetConfiguration(config)
	display.SetLogger(logger)
	if config.Verbosity > 0 {
		display.PrintConfiguration(config)
	}

	geom, err := display.NewGeometry(config.GeomLimits)
	if err != nil {
		return err
	}

	store, err := display.OpenStore(config.Input)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error(fmt.Errorf("error closing %s: %w", store.Name(), err).Error())
		}
	}()

	newCanvas := func() (display.Canvas, error) {
		return display.NewCanvas(config.Backends, config.OutDir, os.Stdout)
	}
	if config.Batch {
		return runBatch(config, store, geom, newCanvas)
	}

	canvas, err := newCanvas()
	if err != nil {
		return err
	}

	var prompter display.Prompter = display.NewLinePrompter(os.Stdin, os.Stdout)
	if config.TUI {
		prompter = &display.TeaPrompter{In: os.Stdin, Out: os.Stdout}
	}

	session, err := display.NewSession(store, canvas, prompter, geom, int64(config.NHitSel), config.Points)
	if err != nil {
		return err
	}
	if config.Verbosity > 0 {
		message := fmt.Sprintf("%d of %d events have more than %d hits", session.Nav.Len(), len(store.Events()), config.NHitSel)
		logger.Info(message, "main")
	}
	if err := session.Run(); err != nil {
		return err
	}
	logger.Info(fmt.Sprintf("Displayed %d events", session.Shown), "main")
	return nil
}

func runBatch(config display.Configuration, store display.Store, geom display.Geometry, newCanvas func() (display.Canvas, error)) error {
	start := time.Now()
	batch := &display.Batch{
		Store:      store,
		NewCanvas:  newCanvas,
		Geometry:   geom,
		NHitSel:    int64(config.NHitSel),
		Points:     config.Points,
		NumWorkers: config.NumWorkers,
	}
	err := batch.Run()
	message := fmt.Sprintf("Drew %d events with %d workers in %d ms", batch.Shown, config.NumWorkers, time.Since(start).Milliseconds())
	logger.Info(message, "main")
	return err
}

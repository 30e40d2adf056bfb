package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/larpix/evd_go/internal/logging"
	display "github.com/larpix/evd_go/pkg"
	"github.com/spf13/cobra"
)

var logger = logging.New(os.Stdout, os.Stderr)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configFile  string
		nhitSel     int
		compression int
		verbosity   int
	)
	cmd := &cobra.Command{
		Use:           "evdconvert <input> <output.h5>",
		Short:         "copy an event store into an HDF5 event file",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := display.LoadConfiguration(configFile)
			if err != nil {
				return fmt.Errorf("error reading configuration file: %w", err)
			}
			if err := godotenv.Load(); err != nil && config.Verbosity > 1 {
				logger.Info(fmt.Sprintf("No .env file loaded: %v", err), "main")
			}
			config = display.ApplyEnvironment(config, os.Getenv)
			config.Input, config.Output = args[0], args[1]
			if cmd.Flags().Changed("nhit-sel") {
				config.NHitSel = nhitSel
			}
			if cmd.Flags().Changed("compression") {
				config.CompressionLevel = compression
			}
			if cmd.Flags().Changed("verbosity") {
				config.Verbosity = verbosity
			}
			return convert(config)
		},
	}
	cmd.Flags().StringVar(&configFile, "config", "", "Configuration file path (yaml or json)")
	cmd.Flags().IntVar(&nhitSel, "nhit-sel", 0, "Copy only events with more than this many hits")
	cmd.Flags().IntVar(&compression, "compression", 4, "Deflate level of the output tables")
	cmd.Flags().IntVarP(&verbosity, "verbosity", "v", 0, "Verbosity level")
	return cmd
}

func convert(config display.Configuration) (err error) {
	display.SetConfiguration(config)
	display.SetLogger(logger)
	if config.Verbosity > 0 {
		display.PrintConfiguration(config)
	}
	start := time.Now()

	store, err := display.OpenStore(config.Input)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, store.Close())
	}()

	writer, err := display.NewWriter(config.Output)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, writer.Close())
	}()

	events := store.Events()
	nav := display.NewNavigator(display.HitCounts(events), int64(config.NHitSel))
	for index, ok := nav.Current(); ok; index, ok = nav.Current() {
		data, err := display.LoadEvent(store, events[index])
		if err != nil {
			return fmt.Errorf("error loading event %d: %w", events[index].ID, err)
		}
		if err := writer.WriteEvent(data); err != nil {
			return err
		}
		if config.Verbosity > 0 {
			message := fmt.Sprintf("Wrote event %d (%d hits, %d tracks)", data.Event.ID, len(data.Hits), len(data.Tracks))
			logger.Info(message, "main")
		}
		nav.Advance()
	}

	if writer.DroppedMembers > 0 {
		logger.Error(fmt.Sprintf("dropped %d track hits outside their event", writer.DroppedMembers))
	}
	message := fmt.Sprintf("Converted %d of %d events in %d ms", writer.EvtCounter, len(events), time.Since(start).Milliseconds())
	logger.Info(message, "main")
	return nil
}

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/UnownHash/Chatot/app_config"
	"github.com/UnownHash/Chatot/areas"
	"github.com/UnownHash/Chatot/db_store"
	"github.com/UnownHash/Chatot/httpserver"
	"github.com/UnownHash/Chatot/importers"
	"github.com/UnownHash/Chatot/labeler"
	"github.com/UnownHash/Chatot/pyroscope"
	"github.com/UnownHash/Chatot/stats_collector"
	"github.com/UnownHash/Chatot/version"
)

const (
	LOGFILE_NAME            = "chatot.log"
	DEFAULT_CONFIG_FILENAME = "configs/chatot.toml"

	AREAS_LABELS_SOURCE = "areas"
)

func usage(flagSet *flag.FlagSet, output io.Writer) {
	fmt.Fprintf(output, "** Chatot is ready to label. Version %s **\n", version.APP_VERSION)
	fmt.Fprintf(output, "Usage: %s [-debug] [-help] [-f <config-filename>]\n", os.Args[0])
	fmt.Fprint(output, "\n")
	fmt.Fprint(output, "Options:\n")
	flagSet.SetOutput(output)
	flagSet.PrintDefaults()
	fmt.Fprint(output, "\n")
}

func main() {
	flagSet := flag.NewFlagSet(os.Args[0], flag.ExitOnError)

	helpFlag := flagSet.Bool("help", false, "help!")
	debugFlag := flagSet.Bool("debug", false, "override config and turn on debug logging")
	flagSet.BoolVar(helpFlag, "h", false, "help!")
	configFileFlag := flagSet.String("f", DEFAULT_CONFIG_FILENAME, "config file to use")

	err := flagSet.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s", err)
		usage(flagSet, os.Stderr)
		os.Exit(2)
	}

	if *helpFlag {
		usage(flagSet, os.Stdout)
		os.Exit(0)
	}

	if len(flagSet.Args()) != 0 {
		usage(flagSet, os.Stderr)
		os.Exit(1)
	}

	defaultConfig := app_config.GetDefaultConfig()
	configFilename := *configFileFlag
	cfg, err := app_config.LoadConfig(configFilename, defaultConfig)
	if err != nil {
		log.Fatal(err)
	}
	cfg.Logging.Filename = LOGFILE_NAME

	if *debugFlag {
		cfg.Logging.Debug = true
	}

	logger := cfg.CreateLogger(true)
	logger.Infof("STARTUP: Version %s. Config loaded.", version.APP_VERSION)

	statsCollector := stats_collector.GetStatsCollector(cfg)
	logger.Infof("STARTUP: using %s stats collector", statsCollector.Name())

	if cfg.Pyroscope.Enabled() {
		profiler, err := pyroscope.Run(cfg.Pyroscope, logger)
		if err != nil {
			logger.Errorf("STARTUP: Failed to Initialized pyroscope: %v", err)
		} else {
			logger.Info("STARTUP: Initialized pyroscope")
			defer profiler.Stop()
		}
	}

	var wg sync.WaitGroup
	defer wg.Wait()

	ctx, cancelFn := context.WithCancel(context.Background())
	defer cancelFn()

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer cancelFn()

		sig_ch := make(chan os.Signal, 1)
		signal.Notify(sig_ch, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-ctx.Done():
			// something else told us to exit
		case sig := <-sig_ch:
			logger.Infof("received signal '%s'", sig.String())
		}
	}()

	logger.Debugf("STARTUP: signal handler installed.")

	builder, err := labeler.NewBuilder(cfg.Labeler)
	if err != nil {
		logger.Fatalf("failed to create label builder: %v", err)
	}

	var currentBuilder atomic.Pointer[labeler.Builder]
	currentBuilder.Store(builder)

	builderFn := func() *labeler.Builder {
		return currentBuilder.Load()
	}

	logger.Infof("STARTUP: labeler: name keys %v, placement '%s', %d worker(s)",
		cfg.Labeler.NameKeys,
		cfg.Labeler.Placement,
		cfg.Labeler.Workers,
	)

	var areasLoader *areas.AreasLoader

	if cfg.Areas.Enabled() {
		areasLoader, err = areas.NewAreasLoader(logger, cfg.Areas, cfg.Labeler.NameKeys)
		if err != nil {
			logger.Fatalf("failed to create areas loader: %v", err)
		}
		if err := areasLoader.ReloadAreas(ctx); err != nil {
			logger.Warnf("STARTUP: %v", err)
		}
	} else {
		logger.Infof("STARTUP: no areas configured. only POST /api/labels is useful.")
	}

	var dbImporter *importers.DBImporter
	var labelsStore httpserver.LabelPointsStore

	if cfg.LabelsDb != nil {
		labelsDBStore, err := db_store.NewLabelPointsDBStore(*cfg.LabelsDb, logger)
		if err != nil {
			logger.Fatalf("failed to create labels dbStore: %v", err)
		}
		defer labelsDBStore.Close()
		labelsStore = labelsDBStore

		dbImporter, err = importers.NewDBImporter(logger, labelsDBStore, AREAS_LABELS_SOURCE, true)
		if err != nil {
			logger.Fatalf("failed to create labels db importer: %v", err)
		}

		logger.Debugf("STARTUP: labels db inited.")
	}

	// storeAreaLabels keeps the labels DB in sync with the loaded areas.
	storeAreaLabels := func(ctx context.Context) error {
		if dbImporter == nil || areasLoader == nil {
			return nil
		}
		result, err := builderFn().BuildFromFeatures(areasLoader.GetAllAreas(ctx))
		if err != nil {
			return fmt.Errorf("failed to build area labels: %w", err)
		}
		return dbImporter.ImportLabelPoints(ctx, result)
	}

	if err := storeAreaLabels(ctx); err != nil {
		logger.Errorf("STARTUP: failed to store area labels: %v", err)
	}

	reloadFn := func() error {
		cfg, err := app_config.LoadConfig(configFilename, defaultConfig)
		if err != nil {
			return fmt.Errorf("failed to reload config file: %w", err)
		}
		builder, err := labeler.NewBuilder(cfg.Labeler)
		if err != nil {
			return fmt.Errorf("failed to reload labeler: %w", err)
		}
		currentBuilder.Store(builder)
		if areasLoader != nil {
			if err := areasLoader.SetNameKeys(cfg.Areas.AreaNameKeys(cfg.Labeler.NameKeys)); err != nil {
				return fmt.Errorf("failed to rename areas: %w", err)
			}
			if err := areasLoader.ReloadAreas(ctx); err != nil {
				return err
			}
		}
		return storeAreaLabels(ctx)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer cancelFn()

		sig_ch := make(chan os.Signal, 1)
		signal.Notify(sig_ch, syscall.SIGHUP)
		for {
			select {
			case <-ctx.Done():
				// something else told us to exit
				return
			case sig := <-sig_ch:
				logger.Infof("received signal '%s' -- Reloading config.", sig.String())
				err := reloadFn()
				if err == nil {
					logger.Infof("config reloaded")
				} else {
					logger.Error(err)
				}
			}
		}
	}()
	logger.Debugf("STARTUP: installed reload (SIGHUP) handler")

	httpServer, err := httpserver.NewHTTPServer(logger, cfg.HTTP, builderFn, areasLoader, labelsStore, statsCollector, reloadFn)
	if err != nil {
		logger.Fatalf("failed to create http server: %v", err)
	}

	logger.Infof("STARTUP: starting http server (final step)")
	err = httpServer.Run(ctx, cfg.HTTP.Addr, time.Second*5)
	if err != nil {
		logger.Fatalf("failed to run http server: %v", err)
	}

	// http server could have shut down early or not started. The defers
	// above will cancel and wait for things to shutdown cleanly.
}

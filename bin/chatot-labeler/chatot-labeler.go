package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/paulmach/orb/geojson"
	"github.com/sirupsen/logrus"

	"github.com/UnownHash/Chatot/app_config"
	"github.com/UnownHash/Chatot/areas"
	"github.com/UnownHash/Chatot/db_store"
	"github.com/UnownHash/Chatot/exporters"
	"github.com/UnownHash/Chatot/importers"
	"github.com/UnownHash/Chatot/labeler"
	"github.com/UnownHash/Chatot/version"
)

const (
	DEFAULT_CONFIG_FILENAME = "configs/chatot.toml"
	DEFAULT_DB_SOURCE       = "chatot-labeler"
)

func loadConfig(filename string) (*app_config.Config, error) {
	defaultConfig := app_config.GetDefaultConfig()
	if _, err := os.Stat(filename); err == nil {
		return app_config.LoadConfig(filename, defaultConfig)
	}
	if err := defaultConfig.Validate(); err != nil {
		return nil, err
	}
	return &defaultConfig, nil
}

func getFeatures(ctx context.Context, logger *logrus.Logger, cfg *app_config.Config, inFilename string) ([]*geojson.Feature, error) {
	if inFilename != "" {
		return exporters.NewFileExporter(inFilename).ExportFeatures(ctx)
	}

	if !cfg.Areas.Enabled() {
		return nil, fmt.Errorf("no -in given and no areas configured")
	}

	loader, err := areas.NewAreasLoader(logger, cfg.Areas, cfg.Labeler.NameKeys)
	if err != nil {
		return nil, err
	}

	if err := loader.ReloadAreas(ctx); err != nil {
		return nil, err
	}

	return loader.GetAllAreas(ctx), nil
}

func main() {
	flagSet := flag.NewFlagSet(os.Args[0], flag.ExitOnError)

	helpFlag := flagSet.Bool("help", false, "help!")
	flagSet.BoolVar(helpFlag, "h", false, "help!")
	debugFlag := flagSet.Bool("debug", false, "turn on debug logging")
	configFileFlag := flagSet.String("f", DEFAULT_CONFIG_FILENAME, "config file to use (defaults are used if it does not exist)")
	inFlag := flagSet.String("in", "", "GeoJSON or geofence file to label (default: the configured areas)")
	outFlag := flagSet.String("out", "", "write labels as a GeoJSON FeatureCollection to this file")
	dbFlag := flagSet.Bool("db", false, "store labels in the configured 'labels_db'")
	sourceFlag := flagSet.String("source", DEFAULT_DB_SOURCE, "source name for labels stored in the db")
	pruneFlag := flagSet.Bool("prune", false, "remove db labels from -source that this run did not produce")

	flagSet.Parse(os.Args[1:])

	if *helpFlag {
		fmt.Printf("chatot-labeler %s\n", version.APP_VERSION)
		fmt.Printf("Usage: %s [options]\n\n", os.Args[0])
		fmt.Printf("Options:\n")
		flagSet.SetOutput(os.Stdout)
		flagSet.PrintDefaults()
		os.Exit(0)
	}

	if len(flagSet.Args()) != 0 {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n", os.Args[0])
		os.Exit(1)
	}

	cfg, err := loadConfig(*configFileFlag)
	if err != nil {
		log.Fatal(err)
	}

	cfg.Logging.Filename = ""
	if *debugFlag {
		cfg.Logging.Debug = true
	}

	logger := cfg.CreateLogger(false)
	// stdout is for results
	logger.SetOutput(os.Stderr)

	ctx, cancelFn := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancelFn()

	var importerImpls []importers.Importer

	if *outFlag != "" {
		fileImporter, err := importers.NewFileImporter(logger, *outFlag)
		if err != nil {
			logger.Fatalf("failed to create file importer: %v", err)
		}
		importerImpls = append(importerImpls, fileImporter)
	}

	if *dbFlag {
		if cfg.LabelsDb == nil {
			logger.Fatal("-db given, but no 'labels_db' section in config")
		}

		labelsDBStore, err := db_store.NewLabelPointsDBStore(*cfg.LabelsDb, logger)
		if err != nil {
			logger.Fatalf("failed to init labels db: %v", err)
		}
		defer labelsDBStore.Close()

		dbImporter, err := importers.NewDBImporter(logger, labelsDBStore, *sourceFlag, *pruneFlag)
		if err != nil {
			logger.Fatalf("failed to create db importer: %v", err)
		}
		importerImpls = append(importerImpls, dbImporter)
	}

	builder, err := labeler.NewBuilder(cfg.Labeler)
	if err != nil {
		logger.Fatalf("failed to create label builder: %v", err)
	}

	features, err := getFeatures(ctx, logger, cfg, *inFlag)
	if err != nil {
		logger.Fatalf("failed to load features: %v", err)
	}

	result, err := builder.BuildFromFeatures(features)
	if err != nil {
		logger.Fatalf("failed to build labels: %v", err)
	}

	for _, importerImpl := range importerImpls {
		if err := importerImpl.ImportLabelPoints(ctx, result); err != nil {
			logger.Fatalf("%s importer failed: %v", importerImpl.ImporterName(), err)
		}
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	if len(importerImpls) == 0 {
		// nowhere else to put them
		if err := encoder.Encode(result.FeatureCollection()); err != nil {
			logger.Fatal(err)
		}
		return
	}

	if err := encoder.Encode(result.Stats); err != nil {
		logger.Fatal(err)
	}
}

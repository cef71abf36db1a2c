package app_config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/sirupsen/logrus"

	"github.com/UnownHash/Chatot/areas"
	"github.com/UnownHash/Chatot/db_store"
	"github.com/UnownHash/Chatot/httpserver"
	"github.com/UnownHash/Chatot/labeler"
	"github.com/UnownHash/Chatot/logging"
	"github.com/UnownHash/Chatot/pyroscope"
	"github.com/UnownHash/Chatot/stats_collector"
)

type Config struct {
	Labeler labeler.Config `koanf:"labeler"`

	Logging    logging.Config                   `koanf:"logging"`
	HTTP       httpserver.Config                `koanf:"http"`
	Areas      areas.Config                     `koanf:"areas"`
	Prometheus stats_collector.PrometheusConfig `koanf:"prometheus"`
	Pyroscope  pyroscope.Config                 `koanf:"pyroscope"`

	LabelsDb *db_store.DBConfig `koanf:"labels_db"`
}

func (cfg *Config) GetPrometheusConfig() stats_collector.PrometheusConfig {
	return cfg.Prometheus
}

func (cfg *Config) CreateLogger(rotate bool) *logrus.Logger {
	return cfg.Logging.CreateLogger(rotate, true)
}

func (cfg *Config) Validate() error {
	if err := cfg.Labeler.Validate(); err != nil {
		return err
	}

	if err := cfg.Logging.Validate(); err != nil {
		return err
	}

	if err := cfg.HTTP.Validate(); err != nil {
		return err
	}

	if err := cfg.Areas.Validate(); err != nil {
		return err
	}

	if err := cfg.Prometheus.Validate(); err != nil {
		return err
	}

	if err := cfg.Pyroscope.Validate(); err != nil {
		return err
	}

	if cfg.LabelsDb != nil {
		if err := cfg.LabelsDb.Validate(); err != nil {
			return fmt.Errorf("labels_db: %w", err)
		}
	}

	return nil
}

func GetDefaultConfig() Config {
	return Config{
		Labeler: labeler.GetDefaultConfig(),

		Logging: logging.Config{
			Filename:   filepath.FromSlash("logs/chatot.log"),
			MaxSizeMB:  100,
			MaxAgeDays: 7,
			MaxBackups: 10,
			Compress:   true,
		},

		HTTP: httpserver.GetDefaultConfig(),

		Areas: areas.GetDefaultConfig(),

		Prometheus: stats_collector.GetDefaultPrometheusConfig(),

		Pyroscope: pyroscope.Config{
			ApplicationName: "chatot",
		},
	}
}

// LoadConfig layers 'filename' over 'defaultConfig' and validates the result.
func LoadConfig(filename string, defaultConfig Config) (*Config, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("couldn't open '%s': %w", filename, err)
	}
	f.Close()

	k := koanf.New(".")
	err = k.Load(structs.Provider(defaultConfig, "koanf"), nil)
	if err != nil {
		return nil, fmt.Errorf("couldn't load default config: %w", err)
	}

	err = k.Load(file.Provider(filename), toml.Parser())
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	var cfg Config

	err = k.Unmarshal("", &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

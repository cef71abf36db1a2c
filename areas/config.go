package areas

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/UnownHash/Chatot/koji_client"
	"github.com/UnownHash/Chatot/overpass"
)

type Config struct {
	KojiUrl   string `koanf:"koji_url" json:"koji_url"`
	KojiToken string `koanf:"koji_token" json:"-"`
	Filename  string `koanf:"filename" json:"filename"`

	Overpass *overpass.Config `koanf:"overpass" json:"overpass,omitempty"`

	// property keys used to name areas. empty means use the labeler's.
	NameKeys []string `koanf:"name_keys" json:"name_keys"`

	CacheDir      string `koanf:"cache_dir" json:"cache_dir"`
	CacheFilename string `koanf:"cache_filename" json:"cache_filename"`

	// computed during validation
	KojiBaseUrl string `koanf:"-" json:"-"`
	KojiProject string `koanf:"-" json:"-"`
}

// Enabled returns whether any area source is configured.
func (cfg *Config) Enabled() bool {
	return cfg.KojiUrl != "" || cfg.Filename != "" || cfg.Overpass != nil
}

// AreaNameKeys returns 'name_keys', or 'defaultNameKeys' when unset.
func (cfg *Config) AreaNameKeys(defaultNameKeys []string) []string {
	if len(cfg.NameKeys) == 0 {
		return defaultNameKeys
	}
	return cfg.NameKeys
}

func (cfg *Config) Validate() error {
	if !cfg.Enabled() {
		return nil
	}

	if cfg.KojiUrl != "" {
		baseUrl, project, err := koji_client.SplitFeatureCollectionUrl(cfg.KojiUrl)
		if err != nil {
			return fmt.Errorf("'areas.koji_url' looks malformed: %w", err)
		}
		cfg.KojiBaseUrl = baseUrl
		cfg.KojiProject = project
	}

	if cfg.Filename != "" {
		f, err := os.Open(cfg.Filename)
		if err != nil {
			return fmt.Errorf("'areas.filename' is '%s', which is missing or not accessible: %w", cfg.Filename, err)
		}
		f.Close()
	}

	if cfg.Overpass != nil {
		defaults := overpass.GetDefaultConfig()
		if cfg.Overpass.Url == "" {
			cfg.Overpass.Url = defaults.Url
		}
		if cfg.Overpass.AdminLevel == 0 {
			cfg.Overpass.AdminLevel = defaults.AdminLevel
		}
		if cfg.Overpass.MaxTries == 0 {
			cfg.Overpass.MaxTries = defaults.MaxTries
		}
		if err := cfg.Overpass.Validate(); err != nil {
			return fmt.Errorf("areas.overpass: %w", err)
		}
	}

	for _, key := range cfg.NameKeys {
		if key == "" {
			return errors.New("'areas.name_keys' contains an empty key")
		}
	}

	return nil
}

func GetDefaultConfig() Config {
	return Config{
		CacheDir:      filepath.FromSlash("./.cache"),
		CacheFilename: "areas-cache.json",
	}
}

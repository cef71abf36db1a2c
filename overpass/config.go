package overpass

import (
	"errors"
	"fmt"
)

type Config struct {
	Url        string     `koanf:"url" json:"url"`
	AdminLevel int        `koanf:"admin_level" json:"admin_level"`
	Bbox       [4]float64 `koanf:"bbox" json:"bbox"` // min_lon, min_lat, max_lon, max_lat
	MaxTries   int        `koanf:"max_tries" json:"max_tries"`
}

func (cfg *Config) Validate() error {
	if cfg.Url == "" {
		return errors.New("No overpass url configured")
	}
	if cfg.AdminLevel < 1 || cfg.AdminLevel > 11 {
		return fmt.Errorf("overpass admin_level should be 1-11, not %d", cfg.AdminLevel)
	}
	b := cfg.Bbox
	if b[0] >= b[2] || b[1] >= b[3] {
		return fmt.Errorf("overpass bbox %v should be [min_lon, min_lat, max_lon, max_lat]", b)
	}
	if b[0] < -180 || b[2] > 180 || b[1] < -90 || b[3] > 90 {
		return fmt.Errorf("overpass bbox %v is out of range", b)
	}
	return nil
}

func GetDefaultConfig() Config {
	return Config{
		Url:        DEFAULT_URL,
		AdminLevel: 8,
		MaxTries:   5,
	}
}

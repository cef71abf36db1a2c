package labeler

import (
	"errors"
	"fmt"
	"math"

	"github.com/UnownHash/Chatot/geo"
)

const (
	PLACEMENT_CENTROID = "centroid"
	PLACEMENT_INSIDE   = "inside"

	DEFAULT_NAME_KEY           = "name"
	DEFAULT_PARALLEL_THRESHOLD = 256
)

type Config struct {
	// Candidate property keys, in priority order. The first one is where
	// the group name is written on output points.
	NameKeys              []string `koanf:"name_keys" json:"name_keys"`
	SphereRadius          float64  `koanf:"sphere_radius" json:"sphere_radius"`
	DegenerateAreaEpsilon float64  `koanf:"degenerate_area_epsilon" json:"degenerate_area_epsilon"`
	Placement             string   `koanf:"placement" json:"placement"`
	Workers               int      `koanf:"workers" json:"workers"`
	ParallelThreshold     int      `koanf:"parallel_threshold" json:"parallel_threshold"`
}

func (cfg *Config) NameKey() string {
	if len(cfg.NameKeys) == 0 {
		return DEFAULT_NAME_KEY
	}
	return cfg.NameKeys[0]
}

func (cfg *Config) Validate() error {
	if len(cfg.NameKeys) == 0 {
		return errors.New("'labeler.name_keys' must contain at least one key")
	}
	for idx, key := range cfg.NameKeys {
		if key == "" {
			return fmt.Errorf("'labeler.name_keys' entry %d is empty", idx)
		}
	}
	if !(cfg.SphereRadius > 0) || math.IsInf(cfg.SphereRadius, 0) {
		return fmt.Errorf("'labeler.sphere_radius' should be > 0, not %v", cfg.SphereRadius)
	}
	if !(cfg.DegenerateAreaEpsilon >= 0) {
		return fmt.Errorf("'labeler.degenerate_area_epsilon' should be >= 0, not %v", cfg.DegenerateAreaEpsilon)
	}
	switch cfg.Placement {
	case PLACEMENT_CENTROID, PLACEMENT_INSIDE:
	default:
		return fmt.Errorf("'labeler.placement' should be '%s' or '%s', not '%s'", PLACEMENT_CENTROID, PLACEMENT_INSIDE, cfg.Placement)
	}
	if cfg.Workers < 1 {
		return errors.New("'labeler.workers' should be >= 1")
	}
	if cfg.ParallelThreshold < 0 {
		return errors.New("'labeler.parallel_threshold' should be >= 0")
	}
	return nil
}

func GetDefaultConfig() Config {
	return Config{
		NameKeys:              []string{DEFAULT_NAME_KEY},
		SphereRadius:          geo.EARTH_MEAN_RADIUS,
		DegenerateAreaEpsilon: geo.DEFAULT_DEGENERATE_AREA_EPSILON,
		Placement:             PLACEMENT_CENTROID,
		Workers:               1,
		ParallelThreshold:     DEFAULT_PARALLEL_THRESHOLD,
	}
}

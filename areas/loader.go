package areas

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/paulmach/orb/geojson"
	"github.com/sirupsen/logrus"

	"github.com/UnownHash/Chatot/exporters"
	"github.com/UnownHash/Chatot/geo"
	"github.com/UnownHash/Chatot/koji_client"
	"github.com/UnownHash/Chatot/labeler"
	"github.com/UnownHash/Chatot/overpass"
)

// AREAS_RETRY_INTERVAL limits how often a request may trigger a load while
// no areas are available.
const AREAS_RETRY_INTERVAL = 30 * time.Second

var ErrNoAreas = errors.New("no areas loaded")

type AreasCache struct {
	areas   []*geojson.Feature
	names   []string
	matcher *geo.AreaMatcher
}

func (cache *AreasCache) Len() int {
	return len(cache.areas)
}

func (cache *AreasCache) GetAllAreas() []*geojson.Feature {
	return cache.areas[:]
}

func (cache *AreasCache) GetAreaNames() []string {
	return cache.names[:]
}

func (cache *AreasCache) GetMatchingAreas(lat, lon float64) []string {
	return cache.matcher.GetMatchingAreas(lat, lon)
}

// AreaName names an area by the first matching key, falling back to its
// feature id and finally to its position in the source.
func AreaName(idx int, feature *geojson.Feature, nameKeys []string) string {
	if name, ok := labeler.ResolveName(feature.Properties, nameKeys); ok {
		return name
	}
	if id := labeler.FeatureIdString(feature); id != "" {
		return id
	}
	return fmt.Sprintf("<unnamed #%d>", idx)
}

func newAreasCache(logger *logrus.Logger, features []*geojson.Feature, nameKeys []string) (*AreasCache, error) {
	areas := make([]*geojson.Feature, 0, len(features))
	for idx, feature := range features {
		if feature == nil || !geo.GeometrySupported(feature.Geometry) {
			logger.Warnf("AreasLoader: skipping area #%d: geometry is not a polygon or multipolygon", idx)
			continue
		}
		areas = append(areas, feature)
	}

	names := make([]string, len(areas))
	matcher, err := geo.NewAreaMatcher(areas, func(idx int, feature *geojson.Feature) string {
		names[idx] = AreaName(idx, feature, nameKeys)
		return names[idx]
	})
	if err != nil {
		return nil, err
	}

	return &AreasCache{
		areas:   areas,
		names:   names,
		matcher: matcher,
	}, nil
}

type AreasLoader struct {
	logger        *logrus.Logger
	exporter      exporters.Exporter
	nameKeys      []string
	cacheDir      string
	cacheFilename string

	reloadMutex sync.Mutex
	areasCache  atomic.Pointer[AreasCache]

	lastLazyLoad atomic.Int64
	nowFn        func() time.Time
}

func (loader *AreasLoader) FullCachePath() string {
	return filepath.Join(loader.cacheDir, loader.cacheFilename)
}

func (loader *AreasLoader) updateCache(areas []*geojson.Feature) error {
	if loader.cacheFilename == "" {
		return nil
	}

	if err := os.MkdirAll(loader.cacheDir, 0o755); err != nil {
		return err
	}

	f, err := os.CreateTemp(loader.cacheDir, loader.cacheFilename+".*")
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	err = encoder.Encode(areas)
	if err != nil {
		unlinkErr := os.Remove(f.Name())
		if unlinkErr != nil {
			loader.logger.Warnf("failed to remove tmpfile '%s': %v", f.Name(), unlinkErr)
		}
		return err
	}

	err = os.Rename(f.Name(), loader.FullCachePath())
	if err != nil {
		return fmt.Errorf("failed to rename tmp cache file: %s -> %s: %v", f.Name(), loader.cacheFilename, err)
	}

	return nil
}

func (loader *AreasLoader) loadFromCache() error {
	if loader.cacheFilename == "" {
		return errors.New("no cache file configured")
	}

	areas, err := geo.LoadFeaturesFromFile(loader.FullCachePath())
	if err != nil {
		return err
	}

	cache, err := newAreasCache(loader.logger, areas, loader.nameKeys)
	if err != nil {
		return err
	}

	loader.areasCache.Store(cache)

	return nil
}

func (loader *AreasLoader) getAreasCache(ctx context.Context) *AreasCache {
	areasCache := loader.areasCache.Load()
	if areasCache != nil && areasCache.Len() > 0 {
		return areasCache
	}

	now := loader.nowFn().UnixNano()
	last := loader.lastLazyLoad.Load()
	if last != 0 && now-last < int64(AREAS_RETRY_INTERVAL) {
		return areasCache
	}

	if loader.lastLazyLoad.CompareAndSwap(last, now) {
		if err := loader.ReloadAreas(ctx); err != nil {
			loader.logger.Debugf("AreasLoader: on-demand load failed: %v", err)
		}
	}

	return loader.areasCache.Load()
}

func (loader *AreasLoader) GetAllAreas(ctx context.Context) []*geojson.Feature {
	areasCache := loader.getAreasCache(ctx)
	if areasCache == nil {
		return nil
	}
	return areasCache.GetAllAreas()
}

func (loader *AreasLoader) GetAreaNames(ctx context.Context) []string {
	areasCache := loader.getAreasCache(ctx)
	if areasCache == nil {
		return nil
	}
	return areasCache.GetAreaNames()
}

func (loader *AreasLoader) GetMatchingAreas(ctx context.Context, lat, lon float64) ([]string, error) {
	areasCache := loader.getAreasCache(ctx)
	if areasCache == nil {
		return nil, ErrNoAreas
	}
	return areasCache.GetMatchingAreas(lat, lon), nil
}

// SetNameKeys changes the keys areas are named by. Loaded areas are renamed
// right away.
func (loader *AreasLoader) SetNameKeys(nameKeys []string) error {
	loader.reloadMutex.Lock()
	defer loader.reloadMutex.Unlock()

	loader.nameKeys = append([]string(nil), nameKeys...)

	current := loader.areasCache.Load()
	if current == nil {
		return nil
	}

	cache, err := newAreasCache(loader.logger, current.GetAllAreas(), loader.nameKeys)
	if err != nil {
		return err
	}
	loader.areasCache.Store(cache)

	return nil
}

// ReloadAreas fetches areas from the source. If that fails and nothing is
// loaded yet, the cache file is used instead and the source error is still
// returned.
func (loader *AreasLoader) ReloadAreas(ctx context.Context) error {
	loader.reloadMutex.Lock()
	defer loader.reloadMutex.Unlock()

	loader.logger.Infof("Reloading areas from %s", loader.exporter.ExporterName())

	areas, err := loader.exporter.ExportFeatures(ctx)
	if err == nil {
		var cache *AreasCache
		if cache, err = newAreasCache(loader.logger, areas, loader.nameKeys); err == nil {
			loader.areasCache.Store(cache)
			loader.logger.Infof("Loaded %d area(s) from %s", cache.Len(), loader.exporter.ExporterName())

			if cacheErr := loader.updateCache(cache.GetAllAreas()); cacheErr == nil {
				loader.logger.Info("Updated areas cache file")
			} else {
				loader.logger.Warnf("Failed to update areas cache file: %v", cacheErr)
			}
			return nil
		}
	}

	err = fmt.Errorf("failed to load areas from %s: %w", loader.exporter.ExporterName(), err)

	if loader.areasCache.Load() != nil {
		loader.logger.Warnf("%v (keeping previously loaded areas)", err)
		return err
	}

	if cacheErr := loader.loadFromCache(); cacheErr != nil {
		loader.logger.Warnf("%v (and failed to load cache file: %v)", err, cacheErr)
	} else {
		loader.logger.Warnf("%v (loaded areas from cache file)", err)
	}

	return err
}

func newAreasLoader(logger *logrus.Logger, exporter exporters.Exporter, nameKeys []string, cacheDir, cacheFilename string) *AreasLoader {
	return &AreasLoader{
		logger:        logger,
		exporter:      exporter,
		nameKeys:      nameKeys,
		cacheDir:      cacheDir,
		cacheFilename: cacheFilename,
		nowFn:         time.Now,
	}
}

// NewAreasLoader builds the exporter(s) for the configured sources. Areas
// are named with config.NameKeys, or 'defaultNameKeys' when that is empty.
func NewAreasLoader(logger *logrus.Logger, config Config, defaultNameKeys []string) (*AreasLoader, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if !config.Enabled() {
		return nil, errors.New("AreasLoader: no area source configured")
	}

	var multi exporters.MultiExporter

	if config.Filename != "" {
		multi.Append(exporters.NewFileExporter(config.Filename))
	}

	if config.KojiUrl != "" {
		kojiCli, err := koji_client.NewAPIClient(logger, config.KojiBaseUrl, config.KojiToken)
		if err != nil {
			return nil, fmt.Errorf("AreasLoader: failed to create koji client: %w", err)
		}
		exporter, err := exporters.NewKojiExporter(logger, kojiCli, config.KojiProject)
		if err != nil {
			return nil, err
		}
		multi.Append(exporter)
	}

	if config.Overpass != nil {
		overpassCli, err := overpass.NewClient(logger, config.Overpass.Url, config.Overpass.MaxTries)
		if err != nil {
			return nil, fmt.Errorf("AreasLoader: failed to create overpass client: %w", err)
		}
		exporter, err := exporters.NewOverpassExporter(logger, overpassCli, *config.Overpass)
		if err != nil {
			return nil, err
		}
		multi.Append(exporter)
	}

	var exporter exporters.Exporter = multi
	if len(multi) == 1 {
		exporter = multi[0]
	}

	return newAreasLoader(logger, exporter, config.AreaNameKeys(defaultNameKeys), config.CacheDir, config.CacheFilename), nil
}

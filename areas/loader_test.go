package areas

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UnownHash/Chatot/logging"
	"github.com/UnownHash/Chatot/overpass"
)

type fakeExporter struct {
	features []*geojson.Feature
	err      error
	calls    int
}

func (*fakeExporter) ExporterName() string { return "fake" }

func (exporter *fakeExporter) ExportFeatures(context.Context) ([]*geojson.Feature, error) {
	exporter.calls++
	return exporter.features, exporter.err
}

func square(lon, lat, size float64) orb.Polygon {
	return orb.Polygon{{
		{lon, lat},
		{lon + size, lat},
		{lon + size, lat + size},
		{lon, lat + size},
		{lon, lat},
	}}
}

func testAreas() []*geojson.Feature {
	named := geojson.NewFeature(square(0, 0, 1))
	named.Properties["title"] = "Park"

	withId := geojson.NewFeature(square(0.5, 0.5, 1))
	withId.ID = 7

	anonymous := geojson.NewFeature(square(10, 10, 1))

	line := geojson.NewFeature(orb.LineString{{0, 0}, {1, 1}})
	line.Properties["title"] = "Road"

	return []*geojson.Feature{named, withId, anonymous, line}
}

func TestAreasLoaderReload(t *testing.T) {
	dir := t.TempDir()
	exporter := &fakeExporter{features: testAreas()}
	loader := newAreasLoader(logging.NewDiscardLogger(), exporter, []string{"title"}, dir, "cache.json")

	require.NoError(t, loader.ReloadAreas(context.Background()))

	assert.Equal(t, []string{"Park", "7", "<unnamed #2>"}, loader.GetAreaNames(context.Background()))
	assert.Len(t, loader.GetAllAreas(context.Background()), 3)

	matches, err := loader.GetMatchingAreas(context.Background(), 0.75, 0.75)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Park", "7"}, matches)

	matches, err = loader.GetMatchingAreas(context.Background(), 50, 50)
	require.NoError(t, err)
	assert.Empty(t, matches)

	_, err = os.Stat(filepath.Join(dir, "cache.json"))
	assert.NoError(t, err)
}

func TestAreasLoaderKeepsPreviousAreas(t *testing.T) {
	exporter := &fakeExporter{features: testAreas()}
	loader := newAreasLoader(logging.NewDiscardLogger(), exporter, []string{"title"}, t.TempDir(), "")

	require.NoError(t, loader.ReloadAreas(context.Background()))

	exporter.err = errors.New("source down")
	err := loader.ReloadAreas(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source down")

	assert.Len(t, loader.GetAreaNames(context.Background()), 3)
}

func TestAreasLoaderFallsBackToCacheFile(t *testing.T) {
	dir := t.TempDir()

	loader := newAreasLoader(logging.NewDiscardLogger(), &fakeExporter{features: testAreas()}, []string{"title"}, dir, "cache.json")
	require.NoError(t, loader.ReloadAreas(context.Background()))

	failing := &fakeExporter{err: errors.New("source down")}
	loader = newAreasLoader(logging.NewDiscardLogger(), failing, []string{"title"}, dir, "cache.json")

	assert.Error(t, loader.ReloadAreas(context.Background()))
	assert.Equal(t, []string{"Park", "7", "<unnamed #2>"}, loader.GetAreaNames(context.Background()))
}

func TestAreasLoaderLazyLoad(t *testing.T) {
	exporter := &fakeExporter{features: testAreas()}
	loader := newAreasLoader(logging.NewDiscardLogger(), exporter, []string{"title"}, t.TempDir(), "")

	assert.Len(t, loader.GetAllAreas(context.Background()), 3)
	assert.Len(t, loader.GetAllAreas(context.Background()), 3)
	assert.Equal(t, 1, exporter.calls)

	empty := newAreasLoader(logging.NewDiscardLogger(), &fakeExporter{err: errors.New("nope")}, nil, t.TempDir(), "")
	_, err := empty.GetMatchingAreas(context.Background(), 0, 0)
	assert.ErrorIs(t, err, ErrNoAreas)
}

func TestAreasLoaderLazyLoadRetryInterval(t *testing.T) {
	exporter := &fakeExporter{err: errors.New("source down")}
	loader := newAreasLoader(logging.NewDiscardLogger(), exporter, []string{"title"}, t.TempDir(), "")

	now := time.Unix(1_700_000_000, 0)
	loader.nowFn = func() time.Time { return now }

	assert.Empty(t, loader.GetAllAreas(context.Background()))
	assert.Empty(t, loader.GetAreaNames(context.Background()))
	_, err := loader.GetMatchingAreas(context.Background(), 0, 0)
	assert.ErrorIs(t, err, ErrNoAreas)
	assert.Equal(t, 1, exporter.calls)

	exporter.features, exporter.err = testAreas(), nil

	now = now.Add(AREAS_RETRY_INTERVAL / 2)
	assert.Empty(t, loader.GetAllAreas(context.Background()))
	assert.Equal(t, 1, exporter.calls)

	now = now.Add(AREAS_RETRY_INTERVAL)
	assert.Len(t, loader.GetAllAreas(context.Background()), 3)
	assert.Equal(t, 2, exporter.calls)
}

func TestAreasLoaderSetNameKeys(t *testing.T) {
	features := testAreas()
	features[0].Properties["name"] = "Central Park"

	exporter := &fakeExporter{features: features}
	loader := newAreasLoader(logging.NewDiscardLogger(), exporter, []string{"title"}, t.TempDir(), "")

	require.NoError(t, loader.ReloadAreas(context.Background()))
	assert.Equal(t, []string{"Park", "7", "<unnamed #2>"}, loader.GetAreaNames(context.Background()))

	require.NoError(t, loader.SetNameKeys([]string{"name"}))
	assert.Equal(t, []string{"Central Park", "7", "<unnamed #2>"}, loader.GetAreaNames(context.Background()))

	matches, err := loader.GetMatchingAreas(context.Background(), 0.25, 0.25)
	require.NoError(t, err)
	assert.Equal(t, []string{"Central Park"}, matches)

	// later reloads keep the new keys, even when the source fails
	exporter.err = errors.New("source down")
	assert.Error(t, loader.ReloadAreas(context.Background()))
	assert.Equal(t, "Central Park", loader.GetAreaNames(context.Background())[0])

	exporter.err = nil
	require.NoError(t, loader.ReloadAreas(context.Background()))
	assert.Equal(t, "Central Park", loader.GetAreaNames(context.Background())[0])
}

func TestConfigAreaNameKeys(t *testing.T) {
	cfg := Config{}
	assert.Equal(t, []string{"name"}, cfg.AreaNameKeys([]string{"name"}))

	cfg.NameKeys = []string{"title"}
	assert.Equal(t, []string{"title"}, cfg.AreaNameKeys([]string{"name"}))
}

func TestConfigValidate(t *testing.T) {
	cfg := GetDefaultConfig()
	assert.NoError(t, cfg.Validate())
	assert.False(t, cfg.Enabled())

	cfg.KojiUrl = "http://koji.local/api/v1/geofence/feature-collection/labels"
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "http://koji.local", cfg.KojiBaseUrl)
	assert.Equal(t, "labels", cfg.KojiProject)

	cfg.KojiUrl = "http://koji.local/nope"
	assert.Error(t, cfg.Validate())

	cfg = GetDefaultConfig()
	cfg.Filename = filepath.Join(t.TempDir(), "missing.json")
	assert.Error(t, cfg.Validate())

	cfg = GetDefaultConfig()
	cfg.Overpass = &overpass.Config{Bbox: [4]float64{-1, 50, 1, 52}}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, overpass.DEFAULT_URL, cfg.Overpass.Url)
	assert.Equal(t, 8, cfg.Overpass.AdminLevel)

	cfg.NameKeys = []string{"name", ""}
	assert.Error(t, cfg.Validate())
}

func TestNewAreasLoader(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "areas.json")
	require.NoError(t, os.WriteFile(filename, []byte(`[{"name":"A","path":[[0,0],[1,0],[1,1]]}]`), 0o644))

	cfg := GetDefaultConfig()
	cfg.Filename = filename
	cfg.CacheDir = t.TempDir()

	loader, err := NewAreasLoader(logging.NewDiscardLogger(), cfg, []string{"name"})
	require.NoError(t, err)
	require.NoError(t, loader.ReloadAreas(context.Background()))
	assert.Equal(t, []string{"A"}, loader.GetAreaNames(context.Background()))

	_, err = NewAreasLoader(logging.NewDiscardLogger(), GetDefaultConfig(), nil)
	assert.Error(t, err)
}

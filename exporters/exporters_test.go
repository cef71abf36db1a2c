package exporters

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UnownHash/Chatot/koji_client"
	"github.com/UnownHash/Chatot/logging"
	"github.com/UnownHash/Chatot/overpass"
)

type failingExporter struct{}

func (failingExporter) ExporterName() string { return "failing" }
func (failingExporter) ExportFeatures(context.Context) ([]*geojson.Feature, error) {
	return nil, errors.New("boom")
}

func writeGeofences(t *testing.T, content string) string {
	t.Helper()
	filename := filepath.Join(t.TempDir(), "areas.json")
	require.NoError(t, os.WriteFile(filename, []byte(content), 0o644))
	return filename
}

func TestMultiExporter(t *testing.T) {
	a := NewFileExporter(writeGeofences(t, `[{"name":"A","path":[[0,0],[1,0],[1,1]]}]`))
	b := NewFileExporter(writeGeofences(t, `[{"name":"B","path":[[0,0],[1,0],[1,1]]},{"name":"C","path":[[0,0],[1,0],[1,1]]}]`))

	var multi MultiExporter
	multi.Append(a)
	multi.Append(b)

	features, err := multi.ExportFeatures(context.Background())
	require.NoError(t, err)
	require.Len(t, features, 3)
	assert.Equal(t, "A", features[0].Properties["name"])
	assert.Equal(t, "C", features[2].Properties["name"])

	multi.Append(failingExporter{})
	_, err = multi.ExportFeatures(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failing exporter")
}

func TestKojiExporter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"type":"FeatureCollection","features":[
			{"type":"Feature","properties":{"name":"K"},"geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]}}
		]}}`))
	}))
	defer srv.Close()

	logger := logging.NewDiscardLogger()
	cli, err := koji_client.NewAPIClient(logger, srv.URL, "")
	require.NoError(t, err)

	_, err = NewKojiExporter(logger, cli, "")
	assert.Error(t, err)

	exporter, err := NewKojiExporter(logger, cli, "labels")
	require.NoError(t, err)

	features, err := exporter.ExportFeatures(context.Background())
	require.NoError(t, err)
	require.Len(t, features, 1)
	assert.Equal(t, "K", features[0].Properties["name"])
}

const boundaryResponse = `{"version":0.6,"elements":[
	{"type":"node","id":1,"lat":0,"lon":0},
	{"type":"node","id":2,"lat":0,"lon":1},
	{"type":"node","id":3,"lat":1,"lon":1},
	{"type":"node","id":4,"lat":1,"lon":0},
	{"type":"way","id":10,"nodes":[1,2,3,4,1]},
	{"type":"relation","id":100,"members":[{"type":"way","ref":10,"role":"outer"}],
	 "tags":{"type":"multipolygon","boundary":"administrative","admin_level":"8","name":"Ward 1"}}
]}`

func TestOverpassExporter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(boundaryResponse))
	}))
	defer srv.Close()

	logger := logging.NewDiscardLogger()
	cli, err := overpass.NewClient(logger, srv.URL, 1)
	require.NoError(t, err)

	config := overpass.GetDefaultConfig()
	config.Url = srv.URL
	config.Bbox = [4]float64{-1, -1, 2, 2}

	exporter, err := NewOverpassExporter(logger, cli, config)
	require.NoError(t, err)

	features, err := exporter.ExportFeatures(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, features)

	var found bool
	for _, feature := range features {
		typ := feature.Geometry.GeoJSONType()
		assert.True(t, typ == "Polygon" || typ == "MultiPolygon", typ)
		_, hasTags := feature.Properties["tags"]
		assert.False(t, hasTags)
		if feature.Properties["name"] == "Ward 1" {
			found = true
		}
	}
	assert.True(t, found)

	config.Bbox = [4]float64{}
	_, err = NewOverpassExporter(logger, cli, config)
	assert.Error(t, err)
}

func TestBoundaryFeaturesSkipsUnusableGeometry(t *testing.T) {
	polygon := geojson.NewFeature(orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}})
	polygon.Properties["tags"] = map[string]string{"name": "Ward 2"}

	noGeometry := &geojson.Feature{Type: "Feature", Properties: geojson.Properties{}}
	line := geojson.NewFeature(orb.LineString{{0, 0}, {1, 1}})

	logger := logging.NewDiscardLogger()
	logger.SetLevel(logrus.DebugLevel)

	features := boundaryFeatures(logger, []*geojson.Feature{noGeometry, line, nil, polygon})
	require.Len(t, features, 1)
	assert.Equal(t, "Ward 2", features[0].Properties["name"])
}

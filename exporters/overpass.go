package exporters

import (
	"context"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/osm/osmgeojson"
	"github.com/sirupsen/logrus"

	"github.com/UnownHash/Chatot/geo"
	"github.com/UnownHash/Chatot/overpass"
)

// boundaryFeatures keeps the polygonal features, flattening their osm tags.
func boundaryFeatures(logger *logrus.Logger, fcFeatures []*geojson.Feature) []*geojson.Feature {
	features := make([]*geojson.Feature, 0, len(fcFeatures))

	for _, feature := range fcFeatures {
		if feature == nil {
			continue
		}
		if !geo.GeometrySupported(feature.Geometry) {
			// unclosed boundaries come back as lines. labels need areas.
			typ := "<none>"
			if feature.Geometry != nil {
				typ = feature.Geometry.GeoJSONType()
			}
			logger.Debugf("overpass: skipping feature '%v': geometry is %s", feature.ID, typ)
			continue
		}
		overpass.AdjustFeatureProperties(feature)
		features = append(features, feature)
	}

	return features
}

// OverpassExporter exports administrative boundaries from overpass.
type OverpassExporter struct {
	logger      *logrus.Logger
	overpassCli *overpass.Client
	bound       orb.Bound
	adminLevel  int
}

func (*OverpassExporter) ExporterName() string {
	return "overpass"
}

func (exporter *OverpassExporter) ExportFeatures(ctx context.Context) ([]*geojson.Feature, error) {
	osmData, err := exporter.overpassCli.GetAdminBoundaries(ctx, exporter.bound, exporter.adminLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to query overpass: %w", err)
	}

	fc, err := osmgeojson.Convert(osmData, osmgeojson.NoMeta(true), osmgeojson.NoRelationMembership(true))
	if err != nil {
		return nil, fmt.Errorf("error converting osm to geojson: %w", err)
	}

	features := boundaryFeatures(exporter.logger, fc.Features)

	exporter.logger.Infof("overpass: %d boundary feature(s) at admin_level %d", len(features), exporter.adminLevel)

	return features, nil
}

func NewOverpassExporter(logger *logrus.Logger, overpassCli *overpass.Client, config overpass.Config) (*OverpassExporter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	b := config.Bbox
	exporter := &OverpassExporter{
		logger:      logger,
		overpassCli: overpassCli,
		bound:       orb.Bound{Min: orb.Point{b[0], b[1]}, Max: orb.Point{b[2], b[3]}},
		adminLevel:  config.AdminLevel,
	}
	return exporter, nil
}

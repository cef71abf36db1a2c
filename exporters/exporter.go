package exporters

import (
	"context"

	"github.com/paulmach/orb/geojson"
)

// Exporter produces the polygon features labels are computed from.
type Exporter interface {
	ExporterName() string
	ExportFeatures(context.Context) ([]*geojson.Feature, error)
}

package exporters

import (
	"context"
	"fmt"

	"github.com/paulmach/orb/geojson"
)

type MultiExporter []Exporter

func (MultiExporter) ExporterName() string {
	return "multi"
}

func (mExporter *MultiExporter) Append(exporter Exporter) {
	*mExporter = append(*mExporter, exporter)
}

// ExportFeatures concatenates the features of every exporter in order. Any
// failure fails the whole export.
func (mExporter MultiExporter) ExportFeatures(ctx context.Context) ([]*geojson.Feature, error) {
	allFeatures := make([]*geojson.Feature, 0)

	for _, exporter := range mExporter {
		features, err := exporter.ExportFeatures(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s exporter: %w", exporter.ExporterName(), err)
		}
		allFeatures = append(allFeatures, features...)
	}
	return allFeatures, nil
}

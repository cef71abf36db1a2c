package exporters

import (
	"context"

	"github.com/paulmach/orb/geojson"

	"github.com/UnownHash/Chatot/geo"
)

type FileExporter struct {
	filename string
}

func (*FileExporter) ExporterName() string {
	return "file"
}

func (exporter *FileExporter) ExportFeatures(context.Context) ([]*geojson.Feature, error) {
	return geo.LoadFeaturesFromFile(exporter.filename)
}

func NewFileExporter(filename string) *FileExporter {
	return &FileExporter{filename: filename}
}

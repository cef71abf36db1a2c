package exporters

import (
	"context"
	"fmt"

	"github.com/paulmach/orb/geojson"
	"github.com/sirupsen/logrus"

	"github.com/UnownHash/Chatot/koji_client"
)

type KojiExporter struct {
	logger      *logrus.Logger
	kojiCli     *koji_client.APIClient
	projectName string
}

func (*KojiExporter) ExporterName() string {
	return "koji"
}

func (exporter *KojiExporter) ExportFeatures(ctx context.Context) ([]*geojson.Feature, error) {
	fc, err := exporter.kojiCli.GetFeatureCollection(ctx, exporter.projectName)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch koji project '%s': %w", exporter.projectName, err)
	}

	exporter.logger.Debugf("koji: project '%s' has %d feature(s)", exporter.projectName, len(fc.Features))

	return fc.Features, nil
}

func NewKojiExporter(logger *logrus.Logger, kojiCli *koji_client.APIClient, projectName string) (*KojiExporter, error) {
	if projectName == "" {
		return nil, fmt.Errorf("KojiExporter: no project given")
	}
	exporter := &KojiExporter{
		logger:      logger,
		kojiCli:     kojiCli,
		projectName: projectName,
	}
	return exporter, nil
}

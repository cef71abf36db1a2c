package importers

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/guregu/null.v4"

	"github.com/UnownHash/Chatot/db_store"
	"github.com/UnownHash/Chatot/labeler"
)

type labelPointsStore interface {
	UpsertLabelPoint(context.Context, *db_store.LabelPoint) error
	DeleteLabelPointsNotUpdatedSince(ctx context.Context, source string, updated int64) (int64, error)
}

type DBImporter struct {
	logger *logrus.Logger
	store  labelPointsStore
	source string
	prune  bool

	nowFn func() time.Time
}

func (*DBImporter) ImporterName() string {
	return "db"
}

func (importer *DBImporter) ImportLabelPoints(ctx context.Context, result *labeler.Result) error {
	nowEpoch := importer.nowFn().Unix()

	var numImported, numSkipped int

	for _, rp := range result.Points {
		if err := ctx.Err(); err != nil {
			return err
		}

		if rp.Unnamed {
			numSkipped++
			importer.logger.Debugf("DBImporter: skipping unnamed point from feature %d", rp.FeatureIndex)
			continue
		}

		props, err := json.Marshal(rp.Properties)
		if err != nil {
			importer.logger.Warnf("DBImporter: skipping '%s': failed to marshal properties: %v", rp.Name, err)
			numSkipped++
			continue
		}

		lp := &db_store.LabelPoint{
			Name:       rp.Name,
			Lat:        rp.Point.Lat(),
			Lon:        rp.Point.Lon(),
			Area:       null.FloatFrom(rp.Area),
			Properties: props,
			Source:     null.NewString(importer.source, importer.source != ""),
			Updated:    nowEpoch,
		}

		if err := importer.store.UpsertLabelPoint(ctx, lp); err != nil {
			importer.logger.Warnf("DBImporter: skipping '%s': failed to insert/update DB: %v", rp.Name, err)
			numSkipped++
			continue
		}

		numImported++
	}

	importer.logger.Infof("DBImporter: imported %d label points (%d skipped)", numImported, numSkipped)

	if !importer.prune || numImported == 0 {
		return nil
	}

	numDeleted, err := importer.store.DeleteLabelPointsNotUpdatedSince(ctx, importer.source, nowEpoch)
	if err != nil {
		return err
	}
	if numDeleted > 0 {
		importer.logger.Infof("DBImporter: removed %d stale label points for source '%s'", numDeleted, importer.source)
	}

	return nil
}

// NewDBImporter returns an importer writing to the label_points table. When
// prune is set, points from the same source that this import did not
// touch are removed afterwards.
func NewDBImporter(logger *logrus.Logger, store *db_store.LabelPointsDBStore, source string, prune bool) (*DBImporter, error) {
	if store == nil {
		return nil, errors.New("no label points store given")
	}
	return newDBImporter(logger, store, source, prune)
}

func newDBImporter(logger *logrus.Logger, store labelPointsStore, source string, prune bool) (*DBImporter, error) {
	if prune && source == "" {
		return nil, errors.New("pruning requires a source name")
	}
	importer := &DBImporter{
		logger: logger,
		store:  store,
		source: source,
		prune:  prune,
		nowFn:  time.Now,
	}
	return importer, nil
}

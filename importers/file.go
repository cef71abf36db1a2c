package importers

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/UnownHash/Chatot/labeler"
)

// FileImporter writes the label points as a GeoJSON FeatureCollection.
type FileImporter struct {
	logger   *logrus.Logger
	filename string
}

func (*FileImporter) ImporterName() string {
	return "file"
}

func (importer *FileImporter) ImportLabelPoints(ctx context.Context, result *labeler.Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(result.FeatureCollection(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal label points: %w", err)
	}

	dir, base := filepath.Split(importer.filename)
	if dir == "" {
		dir = "."
	}

	tmpFile, err := os.CreateTemp(dir, "."+base+".*")
	if err != nil {
		return err
	}
	tmpName := tmpFile.Name()

	_, err = tmpFile.Write(data)
	if closeErr := tmpFile.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Rename(tmpName, importer.filename)
	}
	if err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write '%s': %w", importer.filename, err)
	}

	importer.logger.Infof("FileImporter: wrote %d label points to '%s'", len(result.Points), importer.filename)
	return nil
}

func NewFileImporter(logger *logrus.Logger, filename string) (*FileImporter, error) {
	if filename == "" {
		return nil, fmt.Errorf("no filename given")
	}
	return &FileImporter{
		logger:   logger,
		filename: filename,
	}, nil
}

package geo

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

type GeofencesFileEntry struct {
	Name string         `json:"name"`
	Path orb.LineString `json:"path"`
}

func featuresFromGeofences(geofences []GeofencesFileEntry) ([]*geojson.Feature, error) {
	features := make([]*geojson.Feature, 0, len(geofences))

	for _, geofence := range geofences {
		if geofence.Name == "" {
			return nil, errors.New("geofence is missing name")
		}

		l := len(geofence.Path)
		if l < 3 {
			return nil, fmt.Errorf("geofence '%s' has bad path", geofence.Name)
		}

		ring := orb.Ring(geofence.Path)
		if !ring.Closed() {
			ring = append(ring, ring[0])
		}

		feature := geojson.NewFeature(orb.Polygon{ring})
		feature.Properties["name"] = geofence.Name
		features = append(features, feature)
	}

	return features, nil
}

// ParseFeatures accepts a GeoJSON FeatureCollection, a JSON array of
// GeoJSON Features, or a JSON array of {name, path} geofences where each
// path is a list of [lon, lat] pairs.
func ParseFeatures(data []byte) ([]*geojson.Feature, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("empty document")
	}

	if data[0] == '{' {
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, fmt.Errorf("bad feature collection: %w", err)
		}
		return fc.Features, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("bad json: %w", err)
	}

	if len(raw) == 0 {
		return nil, nil
	}

	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw[0], &probe); err != nil {
		return nil, fmt.Errorf("bad json: %w", err)
	}

	if probe.Type == "Feature" {
		var features []*geojson.Feature
		if err := json.Unmarshal(data, &features); err != nil {
			return nil, fmt.Errorf("bad feature list: %w", err)
		}
		return features, nil
	}

	var geofences []GeofencesFileEntry
	if err := json.Unmarshal(data, &geofences); err != nil {
		return nil, fmt.Errorf("bad geofence list: %w", err)
	}

	return featuresFromGeofences(geofences)
}

func LoadFeaturesFromFile(filename string) ([]*geojson.Feature, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	features, err := ParseFeatures(data)
	if err != nil {
		return nil, fmt.Errorf("'%s' cannot be loaded: %w", filename, err)
	}

	return features, nil
}

package geo

import (
	"fmt"

	"github.com/paulmach/orb/geojson"
)

// AreaMatcher answers "which named areas contain this point".
type AreaMatcher struct {
	areas *RegionRTree[string]
}

func (matcher *AreaMatcher) GetMatchingAreas(lat, lon float64) []string {
	return matcher.areas.GetMatches(lat, lon)
}

func (matcher *AreaMatcher) Len() int {
	return matcher.areas.Len()
}

// NewAreaMatcher indexes every feature under the name 'nameFn' gives it.
// Features with unsupported geometry fail the whole load.
func NewAreaMatcher(features []*geojson.Feature, nameFn func(idx int, feature *geojson.Feature) string) (*AreaMatcher, error) {
	matcher := &AreaMatcher{
		areas: NewRegionRTree[string](),
	}

	for idx, feature := range features {
		name := nameFn(idx, feature)
		if err := matcher.areas.InsertGeometry(feature.Geometry, name); err != nil {
			return nil, fmt.Errorf("area '%s': %w", name, err)
		}
	}

	return matcher, nil
}

package geo

import (
	"math"

	venise_geo "github.com/dernise/venise/geo"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

const (
	// finest polylabel precision (degrees)
	POLYLABEL_PRECISION = 0.000001
	// polylabel precision as a fraction of the part's larger bbox side
	POLYLABEL_RELATIVE_PRECISION = 0.001
)

func GeometrySupported(geometry orb.Geometry) bool {
	if geometry == nil {
		return false
	}
	switch geometry.GeoJSONType() {
	case "Polygon":
	case "MultiPolygon":
	default:
		return false
	}
	return true
}

func convertToVenisePolygon(orbPolygon orb.Polygon) venise_geo.Polygon {
	polygon := venise_geo.Polygon{
		Rings: make([][]venise_geo.Point, len(orbPolygon)),
	}
	for ringIdx, ring := range orbPolygon {
		ringPoints := make([]venise_geo.Point, len(ring))
		for ptsIdx, coord := range ring {
			ringPoints[ptsIdx] = venise_geo.Point(coord)
		}
		polygon.Rings[ringIdx] = ringPoints
	}
	return polygon
}

// LabelPointInside returns 'point' if it lies within the polygon (holes
// included). Otherwise the polygon's pole of inaccessibility is returned.
func LabelPointInside(polygon orb.Polygon, point orb.Point) orb.Point {
	if len(polygon) == 0 || len(polygon[0]) < 3 {
		return point
	}
	if planar.PolygonContains(polygon, point) {
		return point
	}
	return orb.Point(venise_geo.Polylabel(convertToVenisePolygon(polygon), polylabelPrecision(polygon), false))
}

// polylabelPrecision scales the search precision with the outer ring's
// bbox so large boundaries don't take seconds to label.
func polylabelPrecision(polygon orb.Polygon) float64 {
	bound := polygon[0].Bound()
	precision := math.Max(bound.Right()-bound.Left(), bound.Top()-bound.Bottom()) * POLYLABEL_RELATIVE_PRECISION
	if !(precision > POLYLABEL_PRECISION) {
		return POLYLABEL_PRECISION
	}
	return precision
}

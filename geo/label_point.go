package geo

import (
	"github.com/paulmach/orb"
)

// Candidate is a possible label anchor: the centroid (lon/lat) of one
// polygon part plus that part's projected area.
type Candidate struct {
	Area      float64
	Point     orb.Point
	PartIndex int
}

// PartRepresentative reduces a single polygon to its projected area and
// centroid. Only the outer ring is used. Holes are ignored, which is fine
// for placing a label but not for reporting true area.
func PartRepresentative(polygon orb.Polygon, projector Projector, epsilon float64) (Candidate, bool) {
	if len(polygon) == 0 {
		return Candidate{}, false
	}

	metrics, ok := ComputeRingMetrics(projector.ForwardRing(polygon[0]), epsilon)
	if !ok {
		return Candidate{}, false
	}

	return Candidate{
		Area:  metrics.Area,
		Point: projector.Inverse(metrics.Centroid),
	}, true
}

// ReduceMultiPolygon returns the candidate for the part with the greatest
// area. Ties keep the earlier part.
func ReduceMultiPolygon(mp orb.MultiPolygon, projector Projector, epsilon float64) (Candidate, bool) {
	var best Candidate
	var found bool

	for idx, polygon := range mp {
		candidate, ok := PartRepresentative(polygon, projector, epsilon)
		if !ok {
			continue
		}
		if !found || candidate.Area > best.Area {
			candidate.PartIndex = idx
			best = candidate
			found = true
		}
	}

	return best, found
}

// ReduceRegion reduces a Polygon or MultiPolygon to a single candidate.
// Other geometry types never produce one.
func ReduceRegion(geometry orb.Geometry, projector Projector, epsilon float64) (Candidate, bool) {
	switch typedGeometry := geometry.(type) {
	case orb.Polygon:
		return PartRepresentative(typedGeometry, projector, epsilon)
	case orb.MultiPolygon:
		return ReduceMultiPolygon(typedGeometry, projector, epsilon)
	}
	return Candidate{}, false
}

// PartOf returns the polygon a candidate was computed from.
func PartOf(geometry orb.Geometry, candidate Candidate) orb.Polygon {
	switch typedGeometry := geometry.(type) {
	case orb.Polygon:
		return typedGeometry
	case orb.MultiPolygon:
		if candidate.PartIndex >= 0 && candidate.PartIndex < len(typedGeometry) {
			return typedGeometry[candidate.PartIndex]
		}
	}
	return nil
}

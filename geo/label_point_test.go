package geo

import (
	"math"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(lon, lat, size float64) orb.Polygon {
	return orb.Polygon{
		orb.Ring{
			{lon, lat},
			{lon + size, lat},
			{lon + size, lat + size},
			{lon, lat + size},
			{lon, lat},
		},
	}
}

func TestPartRepresentativeSmallSquare(t *testing.T) {
	projector := NewProjector(0)

	candidate, ok := PartRepresentative(square(10, -0.1, 0.2), projector, DEFAULT_DEGENERATE_AREA_EPSILON)
	require.True(t, ok)
	assert.Greater(t, candidate.Area, 0.0)
	assert.InDelta(t, 10.1, candidate.Point.Lon(), 1e-9)
	assert.InDelta(t, 0, candidate.Point.Lat(), 1e-6)
}

func TestPartRepresentativeIgnoresHoles(t *testing.T) {
	projector := NewProjector(0)

	plain := square(0, 0, 1)
	holed := append(square(0, 0, 1), orb.Ring{{0.6, 0.6}, {0.9, 0.6}, {0.9, 0.9}, {0.6, 0.9}, {0.6, 0.6}})

	a, ok := PartRepresentative(plain, projector, DEFAULT_DEGENERATE_AREA_EPSILON)
	require.True(t, ok)
	b, ok := PartRepresentative(holed, projector, DEFAULT_DEGENERATE_AREA_EPSILON)
	require.True(t, ok)

	assert.Equal(t, a, b)
}

func TestPartRepresentativeDegenerate(t *testing.T) {
	projector := NewProjector(0)

	_, ok := PartRepresentative(orb.Polygon{}, projector, DEFAULT_DEGENERATE_AREA_EPSILON)
	assert.False(t, ok)

	_, ok = PartRepresentative(orb.Polygon{{{1, 1}, {1, 1}, {1, 1}}}, projector, DEFAULT_DEGENERATE_AREA_EPSILON)
	assert.False(t, ok)
}

func TestPartRepresentativeAtPole(t *testing.T) {
	projector := NewProjector(0)

	candidate, ok := PartRepresentative(square(0, 89, 1), projector, DEFAULT_DEGENERATE_AREA_EPSILON)
	require.True(t, ok)
	assert.False(t, math.IsNaN(candidate.Point.Lat()))
	assert.Greater(t, candidate.Point.Lat(), 89.0)
	assert.LessOrEqual(t, candidate.Point.Lat(), 90.0)
}

func TestReduceMultiPolygonPicksLargest(t *testing.T) {
	projector := NewProjector(0)

	mp := orb.MultiPolygon{
		square(0, 0, 0.1),
		square(5, 5, 0.2),
	}

	candidate, ok := ReduceMultiPolygon(mp, projector, DEFAULT_DEGENERATE_AREA_EPSILON)
	require.True(t, ok)
	assert.Equal(t, 1, candidate.PartIndex)
	assert.InDelta(t, 5.1, candidate.Point.Lon(), 1e-9)
	assert.InDelta(t, 5.1, candidate.Point.Lat(), 1e-4)

	assert.Equal(t, mp[1], PartOf(mp, candidate))
}

func TestReduceMultiPolygonTieKeepsFirst(t *testing.T) {
	projector := NewProjector(0)

	mp := orb.MultiPolygon{
		square(20, 0, 0.1),
		square(30, 0, 0.1),
	}

	candidate, ok := ReduceMultiPolygon(mp, projector, DEFAULT_DEGENERATE_AREA_EPSILON)
	require.True(t, ok)
	assert.Equal(t, 0, candidate.PartIndex)
	assert.InDelta(t, 20.05, candidate.Point.Lon(), 1e-9)
}

func TestReduceMultiPolygonSkipsDegenerateParts(t *testing.T) {
	projector := NewProjector(0)

	mp := orb.MultiPolygon{
		{{{1, 1}, {2, 2}}},
		{},
		square(3, 3, 0.1),
	}

	candidate, ok := ReduceMultiPolygon(mp, projector, DEFAULT_DEGENERATE_AREA_EPSILON)
	require.True(t, ok)
	assert.Equal(t, 2, candidate.PartIndex)

	_, ok = ReduceMultiPolygon(orb.MultiPolygon{{{{1, 1}, {2, 2}}}}, projector, DEFAULT_DEGENERATE_AREA_EPSILON)
	assert.False(t, ok)

	_, ok = ReduceMultiPolygon(orb.MultiPolygon{}, projector, DEFAULT_DEGENERATE_AREA_EPSILON)
	assert.False(t, ok)
}

func TestReduceRegionUnsupported(t *testing.T) {
	projector := NewProjector(0)

	_, ok := ReduceRegion(orb.LineString{{0, 0}, {1, 1}, {2, 0}}, projector, DEFAULT_DEGENERATE_AREA_EPSILON)
	assert.False(t, ok)

	_, ok = ReduceRegion(nil, projector, DEFAULT_DEGENERATE_AREA_EPSILON)
	assert.False(t, ok)

	assert.True(t, GeometrySupported(orb.Polygon{}))
	assert.True(t, GeometrySupported(orb.MultiPolygon{}))
	assert.False(t, GeometrySupported(orb.Point{}))
	assert.False(t, GeometrySupported(nil))
}

func TestLabelPointInside(t *testing.T) {
	// U shape whose centroid falls in the notch.
	u := orb.Polygon{
		orb.Ring{{0, 0}, {3, 0}, {3, 3}, {2, 3}, {2, 1}, {1, 1}, {1, 3}, {0, 3}, {0, 0}},
	}

	center, _ := planar.CentroidArea(u)
	require.False(t, planar.PolygonContains(u, center))

	inside := LabelPointInside(u, center)
	assert.True(t, planar.PolygonContains(u, inside))

	sq := square(0, 0, 1)
	p := orb.Point{0.5, 0.5}
	assert.Equal(t, p, LabelPointInside(sq, p))
}

func TestLabelPointInsideLargeConcavePart(t *testing.T) {
	// 6 degree wide U, roughly the size of a county boundary.
	u := orb.Polygon{
		orb.Ring{{0, 0}, {6, 0}, {6, 6}, {4, 6}, {4, 2}, {2, 2}, {2, 6}, {0, 6}, {0, 0}},
	}

	center, _ := planar.CentroidArea(u)
	require.False(t, planar.PolygonContains(u, center))

	start := time.Now()
	inside := LabelPointInside(u, center)
	elapsed := time.Since(start)

	assert.True(t, planar.PolygonContains(u, inside))
	assert.Less(t, elapsed, time.Second)
}

func TestPolylabelPrecision(t *testing.T) {
	assert.InDelta(t, 0.006, polylabelPrecision(square(0, 0, 6)), 1e-12)
	assert.InDelta(t, 0.003, polylabelPrecision(orb.Polygon{{{0, 0}, {3, 0}, {3, 1}, {0, 1}, {0, 0}}}), 1e-12)
	assert.Equal(t, POLYLABEL_PRECISION, polylabelPrecision(square(0, 0, 0.0001)))
}

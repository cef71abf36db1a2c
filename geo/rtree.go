package geo

import (
	"fmt"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/tidwall/rtree"
)

type regionRTreeEntry[V any] struct {
	value      V
	containsFn func(orb.Point) bool
}

// RegionRTree indexes polygonal regions by bounding box and answers
// point-in-region queries.
type RegionRTree[V any] struct {
	mutex sync.RWMutex
	rtree rtree.RTreeG[regionRTreeEntry[V]]
}

func (rt *RegionRTree[V]) insertEntry(bbox orb.Bound, entry regionRTreeEntry[V]) {
	rt.mutex.Lock()
	defer rt.mutex.Unlock()
	rt.rtree.Insert(bbox.Min, bbox.Max, entry)
}

func (rt *RegionRTree[V]) InsertGeometry(geometry orb.Geometry, value V) error {
	if geometry == nil {
		return fmt.Errorf("geometry is missing")
	}

	var containsFn func(orb.Point) bool

	switch typedGeometry := geometry.(type) {
	case orb.Polygon:
		containsFn = func(p orb.Point) bool {
			return planar.PolygonContains(typedGeometry, p)
		}
	case orb.MultiPolygon:
		containsFn = func(p orb.Point) bool {
			return planar.MultiPolygonContains(typedGeometry, p)
		}
	default:
		return fmt.Errorf("GeoJSONType %s is not supported", geometry.GeoJSONType())
	}

	rt.insertEntry(geometry.Bound(), regionRTreeEntry[V]{
		value:      value,
		containsFn: containsFn,
	})

	return nil
}

func (rt *RegionRTree[V]) GetMatches(lat, lon float64) []V {
	matches := make([]V, 0, 2)

	p := orb.Point{lon, lat}

	rt.mutex.RLock()
	defer rt.mutex.RUnlock()
	rt.rtree.Search(p, p, func(min, max [2]float64, entry regionRTreeEntry[V]) bool {
		if entry.containsFn(p) {
			matches = append(matches, entry.value)
		}
		return true
	})

	return matches
}

func (rt *RegionRTree[V]) Len() int {
	rt.mutex.RLock()
	defer rt.mutex.RUnlock()
	return rt.rtree.Len()
}

func NewRegionRTree[V any]() *RegionRTree[V] {
	return &RegionRTree[V]{}
}

package geo

import (
	"math"

	"github.com/paulmach/orb"
)

const DEFAULT_DEGENERATE_AREA_EPSILON = 1e-6

// RingMetrics is the absolute area and area-weighted centroid of a
// planar ring.
type RingMetrics struct {
	Area     float64
	Centroid orb.Point
}

// ComputeRingMetrics runs the shoelace formula over a planar ring. The ring
// may or may not repeat its first point at the end. The second return value
// is false when the ring is degenerate: fewer than 3 points, non-finite
// coordinates, or an absolute area below epsilon.
func ComputeRingMetrics(ring orb.Ring, epsilon float64) (RingMetrics, bool) {
	l := len(ring)
	if l < 3 {
		return RingMetrics{}, false
	}

	var a, cx, cy float64

	j := l - 1
	for i := 0; i < l; i++ {
		pj, pi := ring[j], ring[i]
		f := pj[0]*pi[1] - pi[0]*pj[1]
		a += f
		cx += (pj[0] + pi[0]) * f
		cy += (pj[1] + pi[1]) * f
		j = i
	}

	a *= 0.5

	// also catches NaN
	if a == 0 || !(math.Abs(a) >= epsilon) || math.IsInf(a, 0) {
		return RingMetrics{}, false
	}

	cx /= 6 * a
	cy /= 6 * a

	return RingMetrics{
		Area:     math.Abs(a),
		Centroid: orb.Point{cx, cy},
	}, true
}

package geo

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

const (
	// meters
	EARTH_MEAN_RADIUS = 6371008.8

	// latitude is kept this far (radians) away from the poles before
	// projecting so y stays finite.
	POLE_CLAMP_EPSILON = 1e-6
)

// Projector converts between lon/lat degrees and a spherical mercator
// plane. Only self-consistency matters: anything projected forward with a
// Projector must be projected back with the same one.
type Projector struct {
	radius float64
}

func (p Projector) Radius() float64 {
	return p.radius
}

// Forward projects a lon/lat (degrees) point to planar x/y.
func (p Projector) Forward(pt orb.Point) orb.Point {
	lonRad := pt[0] * math.Pi / 180
	latRad := pt[1] * math.Pi / 180

	const maxLat = math.Pi/2 - POLE_CLAMP_EPSILON
	if latRad > maxLat {
		latRad = maxLat
	} else if latRad < -maxLat {
		latRad = -maxLat
	}

	return orb.Point{
		p.radius * lonRad,
		p.radius * math.Log(math.Tan(math.Pi/4+latRad/2)),
	}
}

// Inverse projects planar x/y back to lon/lat (degrees).
func (p Projector) Inverse(pt orb.Point) orb.Point {
	lonRad := pt[0] / p.radius
	latRad := 2*math.Atan(math.Exp(pt[1]/p.radius)) - math.Pi/2
	return orb.Point{
		lonRad * 180 / math.Pi,
		latRad * 180 / math.Pi,
	}
}

// ForwardRing returns a projected copy of 'ring'.
func (p Projector) ForwardRing(ring orb.Ring) orb.Ring {
	// project.Ring works in place
	return project.Ring(ring.Clone(), p.Forward)
}

// NewProjector returns a Projector for a sphere of the given radius. A
// radius <= 0 (or NaN) means EARTH_MEAN_RADIUS.
func NewProjector(radius float64) Projector {
	if !(radius > 0) || math.IsInf(radius, 0) {
		radius = EARTH_MEAN_RADIUS
	}
	return Projector{radius: radius}
}

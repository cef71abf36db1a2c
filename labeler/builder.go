package labeler

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"golang.org/x/sync/errgroup"

	"github.com/UnownHash/Chatot/geo"
)

var ErrUnsupportedGeometry = errors.New("unsupported geometry")

// RepresentativePoint is the label anchor chosen for one group.
type RepresentativePoint struct {
	Name    string
	Unnamed bool
	Point   orb.Point
	// projected area of the winning polygon part
	Area       float64
	Properties geojson.Properties
	// position of the winning feature in the input collection
	FeatureIndex int
	PartIndex    int
}

type Stats struct {
	Features           int `json:"features"`
	Groups             int `json:"groups"`
	DegenerateFeatures int `json:"degenerate_features"`
	DroppedGroups      int `json:"dropped_groups"`
	Points             int `json:"points"`
}

type Result struct {
	NameKey string
	Points  []*RepresentativePoint
	Stats   Stats
}

// FeatureCollection renders the result as GeoJSON point features.
func (res *Result) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	fc.Features = make([]*geojson.Feature, len(res.Points))
	for idx, rp := range res.Points {
		feature := geojson.NewFeature(rp.Point)
		feature.Properties = rp.Properties.Clone()
		fc.Features[idx] = feature
	}
	return fc
}

// ValidateFeatures rejects the collection if any feature is not a Polygon or
// MultiPolygon.
func ValidateFeatures(features []*geojson.Feature) error {
	for idx, feature := range features {
		if feature == nil {
			return fmt.Errorf("feature %d: %w: missing feature", idx, ErrUnsupportedGeometry)
		}
		if !geo.GeometrySupported(feature.Geometry) {
			typ := "<none>"
			if feature.Geometry != nil {
				typ = feature.Geometry.GeoJSONType()
			}
			return fmt.Errorf("feature %d: %w: %s", idx, ErrUnsupportedGeometry, typ)
		}
	}
	return nil
}

// Builder computes one representative point per named group of polygonal
// features. It keeps no state between calls and does not modify its input.
type Builder struct {
	config    Config
	projector geo.Projector
}

func (builder *Builder) Config() Config {
	return builder.config
}

type groupOutcome struct {
	point      *RepresentativePoint
	degenerate int
}

func (builder *Builder) reduceGroup(group *Group) groupOutcome {
	var outcome groupOutcome
	var best geo.Candidate
	bestIdx := -1

	epsilon := builder.config.DegenerateAreaEpsilon

	for memberIdx, feature := range group.Features {
		candidate, ok := geo.ReduceRegion(feature.Geometry, builder.projector, epsilon)
		if !ok {
			outcome.degenerate++
			continue
		}
		if bestIdx < 0 || candidate.Area > best.Area {
			best = candidate
			bestIdx = memberIdx
		}
	}

	if bestIdx < 0 {
		return outcome
	}

	winner := group.Features[bestIdx]

	point := best.Point
	if builder.config.Placement == PLACEMENT_INSIDE {
		point = geo.LabelPointInside(geo.PartOf(winner.Geometry, best), point)
	}

	props := winner.Properties.Clone()
	if props == nil {
		props = make(geojson.Properties)
	}
	if !group.Unnamed || group.Name != "" {
		props[builder.config.NameKey()] = group.Name
	}

	outcome.point = &RepresentativePoint{
		Name:         group.Name,
		Unnamed:      group.Unnamed,
		Point:        point,
		Area:         best.Area,
		Properties:   props,
		FeatureIndex: group.Indexes[bestIdx],
		PartIndex:    best.PartIndex,
	}

	return outcome
}

// reduceGroups fills one outcome per group. Groups are independent, so
// large inputs are split into chunks across workers.
func (builder *Builder) reduceGroups(groups []*Group) []groupOutcome {
	outcomes := make([]groupOutcome, len(groups))

	workers := builder.config.Workers
	if workers <= 1 || len(groups) < builder.config.ParallelThreshold {
		for idx, group := range groups {
			outcomes[idx] = builder.reduceGroup(group)
		}
		return outcomes
	}

	var g errgroup.Group
	g.SetLimit(workers)

	chunkSize := (len(groups) + workers - 1) / workers
	for start := 0; start < len(groups); start += chunkSize {
		end := start + chunkSize
		if end > len(groups) {
			end = len(groups)
		}
		start := start
		g.Go(func() error {
			for idx := start; idx < end; idx++ {
				outcomes[idx] = builder.reduceGroup(groups[idx])
			}
			return nil
		})
	}

	// nothing above returns an error
	_ = g.Wait()

	return outcomes
}

// BuildFromFeatures validates, groups and reduces 'features'. Output points
// follow the order groups were first seen in, though callers should not
// depend on it.
func (builder *Builder) BuildFromFeatures(features []*geojson.Feature) (*Result, error) {
	if err := ValidateFeatures(features); err != nil {
		return nil, err
	}

	groups := GroupFeatures(features, builder.config.NameKeys)

	outcomes := builder.reduceGroups(groups)

	result := &Result{
		NameKey: builder.config.NameKey(),
		Points:  make([]*RepresentativePoint, 0, len(groups)),
		Stats: Stats{
			Features: len(features),
			Groups:   len(groups),
		},
	}

	for _, outcome := range outcomes {
		result.Stats.DegenerateFeatures += outcome.degenerate
		if outcome.point == nil {
			result.Stats.DroppedGroups++
			continue
		}
		result.Points = append(result.Points, outcome.point)
	}

	result.Stats.Points = len(result.Points)

	return result, nil
}

func (builder *Builder) Build(fc *geojson.FeatureCollection) (*Result, error) {
	if fc == nil {
		return builder.BuildFromFeatures(nil)
	}
	return builder.BuildFromFeatures(fc.Features)
}

func NewBuilder(config Config) (*Builder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	config.NameKeys = append([]string(nil), config.NameKeys...)
	return &Builder{
		config:    config,
		projector: geo.NewProjector(config.SphereRadius),
	}, nil
}

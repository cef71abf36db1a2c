package labeler

import (
	"fmt"
	"strconv"

	"github.com/paulmach/orb/geojson"
)

// Group is every feature sharing one name. Unnamed features each get a
// group of their own.
type Group struct {
	Name     string
	Unnamed  bool
	Features []*geojson.Feature
	// index of each feature in the input collection
	Indexes []int
}

func (group *Group) String() string {
	if group.Unnamed {
		return fmt.Sprintf("<unnamed #%d>", group.Indexes[0])
	}
	return group.Name
}

func nameFromValue(v any) string {
	switch value := v.(type) {
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case int:
		return strconv.Itoa(value)
	case int64:
		return strconv.FormatInt(value, 10)
	case uint64:
		return strconv.FormatUint(value, 10)
	}
	return ""
}

// ResolveName returns the value of the first key in 'keys' that is set to a
// non-empty string (or a number) in 'props'.
func ResolveName(props geojson.Properties, keys []string) (string, bool) {
	for _, key := range keys {
		if name := nameFromValue(props[key]); name != "" {
			return name, true
		}
	}
	return "", false
}

// FeatureIdString formats a feature's id, or returns "" if it has none.
func FeatureIdString(feature *geojson.Feature) string {
	if feature.ID == nil {
		return ""
	}
	if name := nameFromValue(feature.ID); name != "" {
		return name
	}
	return fmt.Sprint(feature.ID)
}

// GroupFeatures partitions features by name, keeping first-seen order of
// groups and input order within a group.
func GroupFeatures(features []*geojson.Feature, keys []string) []*Group {
	groups := make([]*Group, 0, len(features))
	byName := make(map[string]*Group)

	for idx, feature := range features {
		name, ok := ResolveName(feature.Properties, keys)
		if !ok {
			groups = append(groups, &Group{
				Name:     FeatureIdString(feature),
				Unnamed:  true,
				Features: []*geojson.Feature{feature},
				Indexes:  []int{idx},
			})
			continue
		}

		group := byName[name]
		if group == nil {
			group = &Group{Name: name}
			byName[name] = group
			groups = append(groups, group)
		}
		group.Features = append(group.Features, feature)
		group.Indexes = append(group.Indexes, idx)
	}

	return groups
}

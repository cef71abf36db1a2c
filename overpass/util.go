package overpass

import (
	"strconv"

	"github.com/paulmach/orb/geojson"
)

func tagsFromProperty(v any) map[string]string {
	switch tags := v.(type) {
	case map[string]string:
		return tags
	case map[string]any:
		converted := make(map[string]string, len(tags))
		for k, v := range tags {
			if s, ok := v.(string); ok {
				converted[k] = s
			}
		}
		return converted
	}
	return nil
}

func normalizeId(v any) (int64, bool) {
	switch id := v.(type) {
	case string:
		idInt, err := strconv.ParseInt(id, 10, 64)
		return idInt, err == nil
	case int:
		return int64(id), true
	case int64:
		return id, true
	case uint64:
		return int64(id), true
	case float64:
		return int64(id), true
	}
	return 0, false
}

// AdjustFeatureProperties flattens the osm tags osmgeojson nests under
// 'tags' into the top level properties, without overwriting existing keys.
// 'meta' and 'relations' are dropped.
func AdjustFeatureProperties(feature *geojson.Feature) {
	props := feature.Properties
	if props == nil {
		props = make(geojson.Properties)
		feature.Properties = props
	}

	tags := tagsFromProperty(props["tags"])

	delete(props, "meta")
	delete(props, "relations")
	delete(props, "tags")

	for k, v := range tags {
		if _, ok := props[k]; ok {
			continue
		}
		props[k] = v
	}

	if id, ok := normalizeId(props["id"]); ok {
		props["id"] = id
	}
}

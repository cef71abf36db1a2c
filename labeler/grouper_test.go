package labeler

import (
	"testing"

	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveName(t *testing.T) {
	keys := []string{"name", "NAME", "zone_code"}

	tests := []struct {
		name     string
		props    geojson.Properties
		expected string
		ok       bool
	}{
		{"first key", geojson.Properties{"name": "A", "NAME": "B"}, "A", true},
		{"skips empty", geojson.Properties{"name": "", "NAME": "B"}, "B", true},
		{"skips nil", geojson.Properties{"name": nil, "zone_code": "Z1"}, "Z1", true},
		{"number", geojson.Properties{"zone_code": 101.0}, "101", true},
		{"bool ignored", geojson.Properties{"name": true}, "", false},
		{"missing", geojson.Properties{"other": "x"}, "", false},
		{"nil props", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, ok := ResolveName(tt.props, keys)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, name)
		})
	}
}

func TestGroupFeatures(t *testing.T) {
	features := []*geojson.Feature{
		newFeature(square(0, 0, 1), map[string]any{"name": "B"}),
		newFeature(square(0, 0, 1), map[string]any{"name": "A"}),
		newFeature(square(0, 0, 1), nil),
		newFeature(square(0, 0, 1), map[string]any{"name": "B"}),
		newFeature(square(0, 0, 1), nil),
	}
	features[2].ID = 7.0

	groups := GroupFeatures(features, []string{"name"})
	require.Len(t, groups, 4)

	assert.Equal(t, "B", groups[0].Name)
	assert.Equal(t, []int{0, 3}, groups[0].Indexes)
	assert.Len(t, groups[0].Features, 2)

	assert.Equal(t, "A", groups[1].Name)

	assert.True(t, groups[2].Unnamed)
	assert.Equal(t, "7", groups[2].Name)
	assert.Equal(t, []int{2}, groups[2].Indexes)

	assert.True(t, groups[3].Unnamed)
	assert.Equal(t, "", groups[3].Name)
	assert.Equal(t, "<unnamed #4>", groups[3].String())
}

func TestFeatureIdString(t *testing.T) {
	f := newFeature(square(0, 0, 1), nil)
	assert.Equal(t, "", FeatureIdString(f))

	f.ID = "abc"
	assert.Equal(t, "abc", FeatureIdString(f))

	f.ID = 42.0
	assert.Equal(t, "42", FeatureIdString(f))
}

func TestConfigValidate(t *testing.T) {
	cfg := GetDefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "name", cfg.NameKey())

	mutations := map[string]func(*Config){
		"no keys":   func(c *Config) { c.NameKeys = nil },
		"empty key": func(c *Config) { c.NameKeys = []string{"name", ""} },
		"radius":    func(c *Config) { c.SphereRadius = 0 },
		"epsilon":   func(c *Config) { c.DegenerateAreaEpsilon = -1 },
		"placement": func(c *Config) { c.Placement = "middle" },
		"workers":   func(c *Config) { c.Workers = 0 },
		"threshold": func(c *Config) { c.ParallelThreshold = -1 },
	}

	for name, fn := range mutations {
		t.Run(name, func(t *testing.T) {
			cfg := GetDefaultConfig()
			fn(&cfg)
			assert.Error(t, cfg.Validate())

			_, err := NewBuilder(cfg)
			assert.Error(t, err)
		})
	}
}

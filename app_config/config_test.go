package app_config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UnownHash/Chatot/labeler"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	filename := filepath.Join(t.TempDir(), "chatot.toml")
	require.NoError(t, os.WriteFile(filename, []byte(content), 0o644))
	return filename
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, ""), GetDefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, []string{"name"}, cfg.Labeler.NameKeys)
	assert.Equal(t, labeler.PLACEMENT_CENTROID, cfg.Labeler.Placement)
	assert.Equal(t, 1, cfg.Labeler.Workers)
	assert.Nil(t, cfg.LabelsDb)
	assert.False(t, cfg.Areas.Enabled())
	assert.False(t, cfg.Prometheus.Enabled)
	assert.NotEmpty(t, cfg.HTTP.Addr)
}

func TestLoadConfigOverrides(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `
[labeler]
name_keys = ["title", "name"]
placement = "inside"
workers = 4

[http]
addr = "0.0.0.0:9100"

[labels_db]
addr = "db:3306"
db = "chatot"
user = "chatot"

[prometheus]
enabled = true
`), GetDefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, []string{"title", "name"}, cfg.Labeler.NameKeys)
	assert.Equal(t, "title", cfg.Labeler.NameKey())
	assert.Equal(t, labeler.PLACEMENT_INSIDE, cfg.Labeler.Placement)
	assert.Equal(t, 4, cfg.Labeler.Workers)
	assert.Equal(t, "0.0.0.0:9100", cfg.HTTP.Addr)
	require.NotNil(t, cfg.LabelsDb)
	assert.Equal(t, "chatot", cfg.LabelsDb.Db)
	assert.True(t, cfg.GetPrometheusConfig().Enabled)
	assert.NotEmpty(t, cfg.GetPrometheusConfig().BucketSize)
}

func TestLoadConfigInvalid(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "[labeler]\nplacement = \"random\"\n"), GetDefaultConfig())
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "[labels_db]\ndb = \"x\"\n"), GetDefaultConfig())
	assert.Error(t, err)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.toml"), GetDefaultConfig())
	assert.Error(t, err)
}

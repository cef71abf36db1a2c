package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlainFormatter(t *testing.T) {
	entry := &logrus.Entry{
		Time:    time.Date(2024, 3, 1, 12, 30, 45, 0, time.UTC),
		Level:   logrus.WarnLevel,
		Message: "something happened",
	}

	out, err := NewPlainFormatter().Format(entry)
	require.NoError(t, err)
	assert.Equal(t, "WARN 2024-03-01 12:30:45 something happened\n", string(out))
}

func TestCreateLoggerWritesFile(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "chatot.log")
	cfg := Config{Filename: filename, MaxSizeMB: 1, Debug: true}
	require.NoError(t, cfg.Validate())

	logger := cfg.CreateLogger(false, false)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())

	var buf bytes.Buffer
	logger.SetOutput(&buf)
	logger.Debugf("hello %s", "world")
	assert.True(t, strings.HasPrefix(buf.String(), "DEBG "))
	assert.Contains(t, buf.String(), "hello world")

	_, err := os.Stat(filepath.Dir(filename))
	assert.NoError(t, err)
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{Filename: "x.log", MaxSizeMB: -1}
	assert.Error(t, cfg.Validate())

	cfg = Config{MaxSizeMB: -1}
	assert.NoError(t, cfg.Validate())
}

package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	require.NoError(t, WriteDefault(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "threshold_lower_ms = 500")
	assert.Contains(t, string(data), "[cache]")
}

func TestWriteDefault_Loads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, WriteDefault(path))

	t.Setenv("XDG_CACHE_HOME", "/var/cache")
	t.Setenv("GAPSCAN_MEDIAINFO", "")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(500), cfg.Scan.ThresholdLowerMS)
	assert.Equal(t, int64(30000), cfg.Scan.ThresholdUpperMS)
	assert.Equal(t, "mediainfo", cfg.Probe.MediaInfo)
	assert.Equal(t, 30*time.Second, cfg.Probe.Timeout)
	assert.Equal(t, "/var/cache/gapscan/probe.db", cfg.Cache.Path)
}

func TestWriteDefault_CacheFollowsXDG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, WriteDefault(path))

	t.Setenv("XDG_CACHE_HOME", "/srv/cache")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultCachePath(), cfg.Cache.Path)
	assert.Equal(t, "/srv/cache/gapscan/probe.db", cfg.Cache.Path)
}

func TestEncode_RoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Scan.Workers = 6
	cfg.Cache.Path = "/tmp/probe.db"

	var buf bytes.Buffer
	require.NoError(t, cfg.Encode(&buf))
	assert.Contains(t, buf.String(), `timeout = "30s"`)

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

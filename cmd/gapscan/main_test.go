package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMediaInfo answers from the first line of the probed file: a line
// "META:<duration>|<encoded date>" is echoed back, anything else fails.
const fakeMediaInfo = `#!/bin/sh
line=$(head -n 1 "$2")
case "$line" in
  META:*) echo "${line#META:}" ;;
  *) echo "not a media file" >&2; exit 1 ;;
esac
`

type testEnv struct {
	root       string
	configPath string
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake mediainfo requires a POSIX shell")
	}

	// Keep the default probe cache out of the real cache directory.
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	tools := t.TempDir()
	bin := filepath.Join(tools, "mediainfo")
	require.NoError(t, os.WriteFile(bin, []byte(fakeMediaInfo), 0755))

	configPath := filepath.Join(tools, "gapscan.toml")
	content := "[probe]\nmediainfo = \"" + bin + "\"\n"
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	return &testEnv{root: t.TempDir(), configPath: configPath}
}

func (e *testEnv) add(t *testing.T, rel, firstLine string) string {
	t.Helper()
	path := filepath.Join(e.root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(firstLine+"\n"), 0644))
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestScan_ReportsGaps(t *testing.T) {
	env := setupEnv(t)
	env.add(t, "cam/001.mp4", "META:2000|UTC 2024-01-01 10:00:00")
	env.add(t, "cam/002.mp4", "META:2000|UTC 2024-01-01 10:00:02.700")
	env.add(t, "cam/002.thumb.jpg", "JFIF")
	env.add(t, "cam/003.mp4", "META:2000|UTC 2024-01-01 10:00:04.700")
	env.add(t, "cam/004.mp4", "META:2000|UTC 2024-01-01 10:00:10")

	stdout, _, err := execute(t, "--config", env.configPath, "scan", "--dir", env.root)
	require.NoError(t, err)

	assert.Equal(t,
		`Detected 700ms gap between ".../cam/001.mp4" and ".../cam/002.mp4"`+"\n"+
			`Detected 3300ms gap between ".../cam/003.mp4" and ".../cam/004.mp4"`+"\n",
		stdout)
}

func TestScan_ThresholdFlags(t *testing.T) {
	env := setupEnv(t)
	env.add(t, "a.mp4", "META:2000|UTC 2024-01-01 10:00:00")
	env.add(t, "b.mp4", "META:2000|UTC 2024-01-01 10:00:02.700")

	stdout, _, err := execute(t, "--config", env.configPath, "scan", "-d", env.root, "-l", "700", "-u", "1000")
	require.NoError(t, err)
	assert.Equal(t, "No footage gaps detected!\n", stdout, "700ms equals the lower bound and is excluded")
}

func TestScan_NoValidFiles(t *testing.T) {
	env := setupEnv(t)
	env.add(t, "notes.txt", "hello")

	stdout, _, err := execute(t, "--config", env.configPath, "scan", "--dir", env.root)
	require.NoError(t, err)
	assert.Equal(t, "There were no valid video files in "+env.root+"!\n", stdout)
}

func TestScan_EmptyDirectory(t *testing.T) {
	env := setupEnv(t)

	stdout, _, err := execute(t, "--config", env.configPath, "scan", "--dir", env.root)
	require.NoError(t, err)
	assert.Equal(t, "No footage gaps detected!\n", stdout)
}

func TestScan_JSON(t *testing.T) {
	env := setupEnv(t)
	a := env.add(t, "a.mp4", "META:2000|UTC 2024-01-01 10:00:00")
	b := env.add(t, "b.mp4", "META:2000|UTC 2024-01-01 10:00:03")
	env.add(t, "c.srt", "1")

	stdout, _, err := execute(t, "--config", env.configPath, "--json", "scan", "--dir", env.root, "--workers", "3")
	require.NoError(t, err)

	var got struct {
		Scanned int `json:"scanned"`
		Valid   int `json:"valid"`
		Gaps    []struct {
			Previous string `json:"previous"`
			Current  string `json:"current"`
			GapMS    int64  `json:"gap_ms"`
		} `json:"gaps"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, 3, got.Scanned)
	assert.Equal(t, 2, got.Valid)
	require.Len(t, got.Gaps, 1)
	assert.Equal(t, a, got.Gaps[0].Previous)
	assert.Equal(t, b, got.Gaps[0].Current)
	assert.Equal(t, int64(1000), got.Gaps[0].GapMS)
}

func TestScan_InvalidThresholds(t *testing.T) {
	env := setupEnv(t)

	_, _, err := execute(t, "--config", env.configPath, "scan", "-d", env.root, "-l", "1000", "-u", "1000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scan.threshold_lower_ms")
}

func TestScan_ThresholdOutOfRange(t *testing.T) {
	env := setupEnv(t)

	_, _, err := execute(t, "--config", env.configPath, "scan", "-d", env.root, "-u", "9300000000000000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scan.threshold_upper_ms: out of range")
}

func TestScan_RequiresDir(t *testing.T) {
	env := setupEnv(t)

	_, _, err := execute(t, "--config", env.configPath, "scan")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dir")
}

func TestScan_MissingDirectory(t *testing.T) {
	env := setupEnv(t)

	_, _, err := execute(t, "--config", env.configPath, "scan", "-d", filepath.Join(env.root, "missing"))
	assert.Error(t, err)
}

func TestScan_MissingMediaInfo(t *testing.T) {
	env := setupEnv(t)
	configPath := filepath.Join(t.TempDir(), "gapscan.toml")
	content := "[probe]\nmediainfo = \"" + filepath.Join(t.TempDir(), "no-such-binary") + "\"\n"
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	_, _, err := execute(t, "--config", configPath, "scan", "-d", env.root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mediainfo")
}

func TestScan_WithCache(t *testing.T) {
	env := setupEnv(t)
	env.add(t, "a.mp4", "META:2000|UTC 2024-01-01 10:00:00")
	env.add(t, "b.mp4", "META:2000|UTC 2024-01-01 10:00:02.700")
	env.add(t, "c.txt", "plain")
	cachePath := filepath.Join(t.TempDir(), "probe.db")

	first, _, err := execute(t, "--config", env.configPath, "scan", "-d", env.root, "--cache", cachePath)
	require.NoError(t, err)
	second, _, err := execute(t, "--config", env.configPath, "scan", "-d", env.root, "--cache", cachePath)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Contains(t, first, "700ms")

	stats, _, err := execute(t, "--config", env.configPath, "cache", "stats", "--cache", cachePath)
	require.NoError(t, err)
	assert.Equal(t, "3 cached entries\n", stats)

	cleared, _, err := execute(t, "--config", env.configPath, "cache", "clear", "--cache", cachePath)
	require.NoError(t, err)
	assert.Equal(t, "Removed 3 cached entries\n", cleared)
}

func TestScan_UsesDefaultCache(t *testing.T) {
	env := setupEnv(t)
	env.add(t, "a.mp4", "META:2000|UTC 2024-01-01 10:00:00")
	env.add(t, "b.mp4", "META:2000|UTC 2024-01-01 10:00:02")

	_, _, err := execute(t, "--config", env.configPath, "scan", "-d", env.root)
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(os.Getenv("XDG_CACHE_HOME"), "gapscan", "probe.db"))
	require.NoError(t, err, "cache is created at the default path")

	stats, _, err := execute(t, "--config", env.configPath, "cache", "stats")
	require.NoError(t, err)
	assert.Equal(t, "2 cached entries\n", stats)

	_, _, err = execute(t, "--config", env.configPath, "scan", "-d", env.root, "--no-cache")
	require.NoError(t, err)
}

func TestCache_NotConfigured(t *testing.T) {
	env := setupEnv(t)
	f, err := os.OpenFile(env.configPath, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString("[cache]\npath = \"\"\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, _, err = execute(t, "--config", env.configPath, "cache", "stats")
	assert.ErrorIs(t, err, errNoCache)
}

func TestProbe(t *testing.T) {
	env := setupEnv(t)
	good := env.add(t, "a.mp4", "META:2000|UTC 2024-01-01 10:00:00")
	bad := env.add(t, "b.txt", "text")

	stdout, _, err := execute(t, "--config", env.configPath, "probe", good, bad)
	require.NoError(t, err)

	assert.Contains(t, stdout, "  Start:    2024-01-01T10:00:00Z")
	assert.Contains(t, stdout, "  Duration: 2000ms")
	assert.Contains(t, stdout, "  End:      2024-01-01T10:00:02Z")
	assert.Contains(t, stdout, bad+"\n  Error:")
	assert.Contains(t, stdout, "not a media file")
}

func TestProbe_JSON(t *testing.T) {
	env := setupEnv(t)
	good := env.add(t, "a.mp4", "META:1500|UTC 2024-01-01 10:00:00")

	stdout, _, err := execute(t, "--config", env.configPath, "--json", "probe", good)
	require.NoError(t, err)

	var got []ProbeResultJSON
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	require.Len(t, got, 1)
	assert.Equal(t, int64(1500), got[0].DurationMS)
	assert.Equal(t, "2024-01-01T10:00:01.5Z", got[0].End)
}

func TestConfigInitAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gapscan.toml")

	stdout, _, err := execute(t, "config", "init", path)
	require.NoError(t, err)
	assert.Equal(t, "Wrote "+path+"\n", stdout)

	_, _, err = execute(t, "config", "init", path)
	require.Error(t, err, "refuses to overwrite without --force")

	_, _, err = execute(t, "config", "init", "--force", path)
	require.NoError(t, err)

	t.Setenv("XDG_CACHE_HOME", "/var/cache")
	shown, _, err := execute(t, "--config", path, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, shown, "threshold_lower_ms = 500")
	assert.Contains(t, shown, "/var/cache/gapscan/probe.db")
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]string{
		"debug":   "DEBUG",
		"INFO":    "INFO",
		"warn":    "WARN",
		"error":   "ERROR",
		"unknown": "WARN",
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLogLevel(in).String(), "level %q", in)
	}
}

func TestVersion(t *testing.T) {
	stdout, _, err := execute(t, "--version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "gapscan "), "got %q", stdout)
}

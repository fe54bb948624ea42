package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DesktopGrab/capture"
	"DesktopGrab/geometry"
	"DesktopGrab/output"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "desktopgrab.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_EmptyPathGivesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())

	target, err := cfg.CaptureTarget()
	require.NoError(t, err)
	assert.Equal(t, geometry.Full(), target)

	f, err := cfg.CaptureFormat()
	require.NoError(t, err)
	assert.Equal(t, capture.Format{}, f)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
output_dir: shots
format: jpg
jpeg_quality: 70
target: region:10,20,300,200
order: rgb
origin: top-down
count: 5
interval: 2s
stop_on_same: true
pdf_title: 週次レポート
log_level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "shots", cfg.OutputDir)
	assert.Equal(t, 70, cfg.JpegQuality)
	assert.Equal(t, 5, cfg.Count)
	assert.Equal(t, 2*time.Second, cfg.Interval)
	assert.True(t, cfg.StopOnSame)
	assert.Equal(t, "週次レポート", cfg.PDFTitle)

	format, err := cfg.ImageFormat()
	require.NoError(t, err)
	assert.Equal(t, output.JPEG, format)

	target, err := cfg.CaptureTarget()
	require.NoError(t, err)
	assert.Equal(t, geometry.RegionOf(geometry.Rect{Left: 10, Top: 20, Width: 300, Height: 200}), target)

	f, err := cfg.CaptureFormat()
	require.NoError(t, err)
	assert.Equal(t, capture.Format{Order: capture.RGB, Origin: capture.TopDown}, f)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeConfig(t, "count: [1, 2"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "count: -1\nformat: gif\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "count -1")
	assert.Contains(t, err.Error(), "gif")
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"empty dir": func(c *Config) { c.OutputDir = " " },
		"quality":   func(c *Config) { c.JpegQuality = 101 },
		"target":    func(c *Config) { c.Target = "window:3" },
		"order":     func(c *Config) { c.Order = "grb" },
		"origin":    func(c *Config) { c.Origin = "sideways" },
		"max width": func(c *Config) { c.MaxWidth = -1 },
		"interval":  func(c *Config) { c.Interval = -time.Second },
		"log level": func(c *Config) { c.LogLevel = "loud" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

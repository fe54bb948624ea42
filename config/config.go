// Package config はコマンドの設定ファイル（YAML）を読み込みます。
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"DesktopGrab/capture"
	"DesktopGrab/geometry"
	"DesktopGrab/output"
)

// Config は設定ファイルの内容です。未指定の項目は Default の値になります。
type Config struct {
	OutputDir   string        `yaml:"output_dir"`
	Format      string        `yaml:"format"`
	JpegQuality int           `yaml:"jpeg_quality"`
	Target      string        `yaml:"target"`
	Order       string        `yaml:"order"`
	Origin      string        `yaml:"origin"`
	ForceDIB24  bool          `yaml:"force_dib24"`
	MaxWidth    int           `yaml:"max_width"`
	Count       int           `yaml:"count"`
	Interval    time.Duration `yaml:"interval"`
	StopOnSame  bool          `yaml:"stop_on_same"`
	PDFTitle    string        `yaml:"pdf_title"`
	FocusWindow string        `yaml:"focus_window"`
	LogLevel    string        `yaml:"log_level"`
}

// Default は設定ファイルがないときの値を返します。
func Default() Config {
	return Config{
		OutputDir:   ".",
		Format:      string(output.BMP),
		JpegQuality: 85,
		Target:      "full",
		Order:       "bgr",
		Origin:      "bottom-up",
		Count:       1,
		Interval:    500 * time.Millisecond,
		LogLevel:    "info",
	}
}

// Load は path の YAML を Default に重ねて読み込み、検証します。path が空なら Default を返します。
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate はすべての項目を確認し、見つかった問題をまとめて返します。
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.OutputDir) == "" {
		errs = append(errs, errors.New("output_dir is empty"))
	}
	if _, err := output.ParseFormat(c.Format); err != nil {
		errs = append(errs, err)
	}
	if c.JpegQuality < 1 || c.JpegQuality > 100 {
		errs = append(errs, fmt.Errorf("jpeg_quality %d out of 1..100", c.JpegQuality))
	}
	if _, err := geometry.ParseTarget(c.Target); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.CaptureFormat(); err != nil {
		errs = append(errs, err)
	}
	if c.MaxWidth < 0 {
		errs = append(errs, fmt.Errorf("max_width %d is negative", c.MaxWidth))
	}
	if c.Count < 0 {
		errs = append(errs, fmt.Errorf("count %d is negative", c.Count))
	}
	if c.Interval < 0 {
		errs = append(errs, fmt.Errorf("interval %v is negative", c.Interval))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// CaptureTarget は target を解釈します。
func (c Config) CaptureTarget() (geometry.Target, error) {
	return geometry.ParseTarget(c.Target)
}

// ImageFormat は format を解釈します。
func (c Config) ImageFormat() (output.Format, error) {
	return output.ParseFormat(c.Format)
}

// CaptureFormat は order と origin からピクセルの並びを決めます。
func (c Config) CaptureFormat() (capture.Format, error) {
	var f capture.Format
	switch strings.ToLower(c.Order) {
	case "", "bgr":
		f.Order = capture.BGR
	case "rgb":
		f.Order = capture.RGB
	default:
		return f, fmt.Errorf("unknown order %q (want bgr or rgb)", c.Order)
	}
	switch strings.ToLower(c.Origin) {
	case "", "bottom-up", "bottomup":
		f.Origin = capture.BottomUp
	case "top-down", "topdown":
		f.Origin = capture.TopDown
	default:
		return f, fmt.Errorf("unknown origin %q (want bottom-up or top-down)", c.Origin)
	}
	return f, nil
}

// Level は log_level を slog のレベルに変換します。
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level: %w", err)
	}
	return l, nil
}

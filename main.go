//go:build windows

package main

import (
	"context"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/lmittmann/tint"

	"DesktopGrab/capture"
	"DesktopGrab/config"
	"DesktopGrab/dib"
	"DesktopGrab/focus"
	"DesktopGrab/geometry"
	"DesktopGrab/output"
	"DesktopGrab/series"
	"DesktopGrab/ui"
)

type flags struct {
	configPath string
	pdfDir     string
	list       bool
	selectArea bool
	dialog     bool
	digest     bool
	debug      bool
}

func main() {
	// Windows GUI はメインスレッドで実行する必要がある
	runtime.LockOSThread()
	os.Exit(run(os.Args[1:]))
}

// parseFlags はフラグを解釈し、明示されたものだけを cfg に上書きします。
func parseFlags(args []string, cfg *config.Config) (flags, error) {
	var f flags
	fs := flag.NewFlagSet("desktopgrab", flag.ContinueOnError)
	fs.StringVar(&f.configPath, "config", "", "YAML 設定ファイル")
	target := fs.String("target", "", "full | monitor:N | region:L,T,W,H")
	out := fs.String("out", "", "保存先フォルダ")
	format := fs.String("format", "", "bmp | png | jpg")
	quality := fs.Int("quality", 0, "JPEG 品質 (1-100)")
	maxWidth := fs.Int("max-width", 0, "この幅を超える画像を縮小する (0=縮小しない)")
	count := fs.Int("count", 0, "キャプチャ枚数 (0=無制限)")
	interval := fs.Duration("interval", 0, "キャプチャ間隔")
	stopOnSame := fs.Bool("stop-on-same", false, "3枚連続同一で終了")
	pdfTitle := fs.String("pdf", "", "PDF タイトル（指定時に PDF を作成）")
	focusTitle := fs.String("focus", "", "開始前に前面にするウィンドウのタイトル")
	fs.BoolVar(&f.list, "list", false, "モニター一覧を表示して終了")
	fs.BoolVar(&f.selectArea, "select", false, "ドラッグで範囲を選択する")
	fs.BoolVar(&f.dialog, "dialog", false, "設定ダイアログを表示する")
	fs.BoolVar(&f.digest, "digest", false, "各画像の SHA256 を表示する")
	fs.BoolVar(&f.debug, "debug", false, "デバッグログを出す")
	fs.StringVar(&f.pdfDir, "pdf-dir", "", "キャプチャせず、このフォルダの PNG/JPEG から PDF を作る")
	if err := fs.Parse(args); err != nil {
		return f, err
	}

	loaded, err := config.Load(f.configPath)
	if err != nil {
		return f, err
	}
	*cfg = loaded

	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "target":
			cfg.Target = *target
		case "out":
			cfg.OutputDir = *out
		case "format":
			cfg.Format = *format
		case "quality":
			cfg.JpegQuality = *quality
		case "max-width":
			cfg.MaxWidth = *maxWidth
		case "count":
			cfg.Count = *count
		case "interval":
			cfg.Interval = *interval
		case "stop-on-same":
			cfg.StopOnSame = *stopOnSame
		case "pdf":
			cfg.PDFTitle = *pdfTitle
		case "focus":
			cfg.FocusWindow = *focusTitle
		}
	})
	if f.debug {
		cfg.LogLevel = "debug"
	}
	return f, cfg.Validate()
}

func newLogger(cfg config.Config) *slog.Logger {
	level, _ := cfg.Level()
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
	}))
}

func run(args []string) int {
	var cfg config.Config
	f, err := parseFlags(args, &cfg)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "設定が不正です: %v\n", err)
		return 2
	}
	log := newLogger(cfg)

	format, _ := cfg.CaptureFormat()
	g := capture.New(capture.Options{Logger: log, Format: format, ForceDIB24: cfg.ForceDIB24})

	if f.pdfDir != "" {
		title := cfg.PDFTitle
		if title == "" {
			title = filepath.Base(f.pdfDir)
		}
		pdfPath := filepath.Join(f.pdfDir, output.PDFFileName(title))
		n, err := output.FolderToPDF(f.pdfDir, pdfPath, title)
		if err != nil {
			fmt.Fprintf(os.Stderr, "PDF生成に失敗しました: %v\n", err)
			return 1
		}
		fmt.Printf("完了: %d 枚の画像から %s に PDF を出力しました。\n", n, pdfPath)
		return 0
	}

	if f.list {
		if err := printMonitors(g); err != nil {
			fmt.Fprintf(os.Stderr, "モニターの列挙に失敗しました: %v\n", err)
			return 1
		}
		return 0
	}

	target, _ := cfg.CaptureTarget()
	imageFormat, _ := cfg.ImageFormat()

	switch {
	case f.dialog:
		settings, ok := ui.RunTargetDialog(g, ui.Settings{
			Target:           target,
			OutputFolder:     cfg.OutputDir,
			Format:           imageFormat,
			FocusWindowTitle: cfg.FocusWindow,
			Count:            cfg.Count,
			Interval:         cfg.Interval,
			StopOnSame:       cfg.StopOnSame,
			PDFTitle:         cfg.PDFTitle,
		})
		if !ok {
			return 0
		}
		target, imageFormat = settings.Target, settings.Format
		cfg.OutputDir, cfg.FocusWindow = settings.OutputFolder, settings.FocusWindowTitle
		cfg.Count, cfg.Interval, cfg.StopOnSame = settings.Count, settings.Interval, settings.StopOnSame
		cfg.PDFTitle = settings.PDFTitle
	case f.selectArea:
		r, ok, err := ui.SelectRegion()
		if err != nil {
			fmt.Fprintf(os.Stderr, "範囲選択に失敗しました: %v\n", err)
			return 1
		}
		if !ok {
			return 0
		}
		target = geometry.RegionOf(r)
	}
	log.Debug("capture target", "target", target.String(), "format", imageFormat)

	dir := cfg.OutputDir
	if err := os.MkdirAll(dir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "フォルダ作成に失敗しました: %v\n", err)
		return 1
	}

	// フォーカスするアプリが指定されていれば、そのウィンドウを前面にする
	if cfg.FocusWindow != "" {
		if err := focus.SetForegroundByTitle(cfg.FocusWindow); err != nil {
			log.Warn("focus window", "title", cfg.FocusWindow, "error", err)
		} else {
			time.Sleep(300 * time.Millisecond) // ウィンドウが前面になるまで待つ
		}
	}

	// 1枚だけの BMP は画面の色深度のまま保存する
	if imageFormat == output.BMP && cfg.Count == 1 && cfg.MaxWidth == 0 && !f.digest {
		path := filepath.Join(dir, output.FileName(1, output.BMP))
		if err := g.SaveToFile(path, target); err != nil {
			fmt.Fprintf(os.Stderr, "キャプチャに失敗しました: %v\n", err)
			return 1
		}
		if info, err := output.ProbeBMP(path); err != nil {
			// 16ビットやパレット付きはヘッダーを読めないことがある
			log.Debug("probe saved bitmap", "path", path, "error", err)
			fmt.Printf("完了: %s に保存しました。\n", path)
		} else {
			fmt.Printf("完了: %s に保存しました（%d x %d）。\n", path, info.Width, info.Height)
		}
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	save := func(fr series.Frame) (string, error) {
		path := filepath.Join(dir, output.FileName(fr.Index, imageFormat))
		if f.digest {
			fmt.Printf("%s  %s\n", hex.EncodeToString(fr.Hash), filepath.Base(path))
		}
		if imageFormat == output.BMP && cfg.MaxWidth == 0 {
			return path, dib.WriteFile(path, fr.Buffer.Bitmap())
		}
		return path, output.Save(path, output.Scale(fr.Buffer.RGBA(), cfg.MaxWidth), imageFormat, cfg.JpegQuality)
	}
	res, err := series.Run(ctx, g, series.Options{
		Target:     target,
		Count:      cfg.Count,
		Interval:   cfg.Interval,
		StopOnSame: cfg.StopOnSame,
		Logger:     log,
	}, save)
	if err != nil {
		fmt.Fprintf(os.Stderr, "キャプチャに失敗しました: %v\n", err)
		if len(res.Saved) == 0 {
			return 1
		}
	}

	if cfg.PDFTitle != "" {
		if imageFormat == output.BMP {
			log.Warn("BMP cannot be embedded in a PDF; use -format png or jpg")
		} else {
			pdfPath := filepath.Join(dir, output.PDFFileName(cfg.PDFTitle))
			if err := output.ImagesToPDF(res.Saved, pdfPath, cfg.PDFTitle); err != nil {
				fmt.Fprintf(os.Stderr, "PDF生成に失敗しました: %v\n", err)
				return 1
			}
			fmt.Printf("%s に PDF を出力しました。\n", pdfPath)
		}
	}

	if res.StoppedOnSame {
		fmt.Printf("完了: %d 枚保存（同一3枚のうち2枚を削除）しました。\n", len(res.Saved))
	} else {
		fmt.Printf("完了: %d 枚のキャプチャを %s に保存しました。\n", len(res.Saved), dir)
	}
	if f.dialog {
		ui.ShowInfo("完了", "完了しました。")
	}
	if err != nil {
		return 1
	}
	return 0
}

// printMonitors はモニター配置を表で表示します。
func printMonitors(g *capture.Grabber) error {
	l, err := g.Layout()
	if err != nil {
		return err
	}
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Left", "Top", "Width", "Height", "Primary"})
	for _, m := range l.Monitors {
		primary := ""
		if m.Primary {
			primary = "*"
		}
		t.AppendRow(table.Row{m.Index, m.Bounds.Left, m.Bounds.Top, m.Bounds.Width, m.Bounds.Height, primary})
	}
	t.AppendFooter(table.Row{"virtual", l.Virtual.Left, l.Virtual.Top, l.Virtual.Width, l.Virtual.Height, ""})
	u := l.Union()
	t.AppendFooter(table.Row{"monitors", u.Left, u.Top, u.Width, u.Height, ""})
	t.Render()
	return nil
}

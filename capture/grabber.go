// Package capture は Windows デスクトップ（仮想スクリーン全体・モニター・任意矩形）の
// 内容をピクセルバッファまたは BMP ファイルとして取得します。
package capture

import (
	"fmt"
	"log/slog"

	"DesktopGrab/dib"
	"DesktopGrab/geometry"
)

// Options は Grabber の設定です。
type Options struct {
	// Logger が nil ならログは捨てられます。
	Logger *slog.Logger
	// Format は返すバッファの配置です。
	Format Format
	// ForceDIB24 は画面が32ビットでも24ビット DIB 経由で読み出します。
	ForceDIB24 bool
}

// Grabber はキャプチャ操作をまとめたものです。呼び出し間で状態を持たないため共有できます。
type Grabber struct {
	desktop Desktop
	opts    Options
	log     *slog.Logger
}

// New は現在のプラットフォームのデスクトップを使う Grabber を作ります。
func New(opts Options) *Grabber {
	g := NewWithDesktop(nil, opts)
	g.desktop = platformDesktop(g.log)
	return g
}

// NewWithDesktop は任意の Desktop を使う Grabber を作ります。
func NewWithDesktop(d Desktop, opts Options) *Grabber {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Grabber{desktop: d, opts: opts, log: log}
}

// VirtualScreen は仮想スクリーンの矩形を返します。
func (g *Grabber) VirtualScreen() (geometry.Rect, error) {
	return g.desktop.VirtualScreen()
}

// Monitors は接続中のモニターを列挙順で返します。インデックス 0 が通常プライマリです。
func (g *Grabber) Monitors() ([]geometry.Monitor, error) {
	return g.desktop.Monitors()
}

// ListMonitors は接続中のモニターの矩形を列挙順で返します。
func (g *Grabber) ListMonitors() ([]geometry.Rect, error) {
	monitors, err := g.desktop.Monitors()
	if err != nil {
		return nil, err
	}
	rects := make([]geometry.Rect, len(monitors))
	for i, m := range monitors {
		rects[i] = m.Bounds
	}
	return rects, nil
}

// Layout は仮想スクリーンとモニター配置を取得します。
func (g *Grabber) Layout() (geometry.Layout, error) {
	v, err := g.desktop.VirtualScreen()
	if err != nil {
		return geometry.Layout{}, err
	}
	monitors, err := g.desktop.Monitors()
	if err != nil {
		return geometry.Layout{}, err
	}
	return geometry.Layout{Virtual: v, Monitors: monitors}, nil
}

// resolve は対象を矩形に解決します。モニターの列挙はモニター指定のときだけ行います。
func (g *Grabber) resolve(t geometry.Target) (geometry.Rect, error) {
	var l geometry.Layout
	var err error
	if t.Kind == geometry.MonitorIndex {
		l.Monitors, err = g.desktop.Monitors()
		if err != nil {
			return geometry.Rect{}, err
		}
	} else {
		l.Virtual, err = g.desktop.VirtualScreen()
		if err != nil {
			return geometry.Rect{}, err
		}
	}
	return geometry.Resolve(t, l)
}

// withSurface は対象を写し取り、fn の終了後にセッションを必ず解放します。
// 解放の失敗はログに残すだけで、元のエラーを上書きしません。
func (g *Grabber) withSurface(t geometry.Target, fn func(geometry.Rect, Surface) error) (err error) {
	r, err := g.resolve(t)
	if err != nil {
		return err
	}
	g.log.Debug("capture", "target", t.String(), "rect", r.String())

	s, err := g.desktop.Open(r)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil {
			g.log.Warn("release capture session", "rect", r.String(), "error", cerr, "failed", err != nil)
		}
	}()
	return fn(r, s)
}

// Capture は対象を写し取り、正規化したバッファを返します。
func (g *Grabber) Capture(t geometry.Target) (*PixelBuffer, error) {
	var buf *PixelBuffer
	err := g.withSurface(t, func(r geometry.Rect, s Surface) error {
		depth := 32
		if s.BitsPerPixel() < 32 || g.opts.ForceDIB24 {
			// 8/16ビットは32ビットへ直接展開できないため24ビット DIB を要求する
			depth = 24
		}
		bm, err := s.ReadDIB(depth)
		if err != nil {
			return asCaptureFailed("GetDIBits", err)
		}
		if bm.Width != r.Width || bm.Height != r.Height {
			return &Error{Kind: ErrCaptureFailed, Op: "GetDIBits",
				Err: fmt.Errorf("got %dx%d bitmap for %v", bm.Width, bm.Height, r)}
		}
		buf, err = normalize(bm, g.opts.Format)
		if err != nil {
			return asCaptureFailed("normalize", err)
		}
		g.log.Debug("captured", "width", buf.Width, "height", buf.Height, "sourceBits", s.BitsPerPixel(), "readBits", depth)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// CaptureFullScreen は仮想スクリーン全体を取得します。
func (g *Grabber) CaptureFullScreen() (*PixelBuffer, error) {
	return g.Capture(geometry.Full())
}

// CaptureMonitor は列挙順で index 番目のモニターを取得します。
func (g *Grabber) CaptureMonitor(index int) (*PixelBuffer, error) {
	return g.Capture(geometry.MonitorAt(index))
}

// CaptureRegion は任意の矩形を取得します。
func (g *Grabber) CaptureRegion(left, top, width, height int) (*PixelBuffer, error) {
	return g.Capture(geometry.RegionOf(geometry.Rect{Left: left, Top: top, Width: width, Height: height}))
}

// SaveToFile は対象を画面と同じ色深度の非圧縮 BMP として path に保存します。
func (g *Grabber) SaveToFile(path string, t geometry.Target) error {
	return g.withSurface(t, func(r geometry.Rect, s Surface) error {
		bm, err := s.ReadDIB(0)
		if err != nil {
			return asCaptureFailed("GetDIBits", err)
		}
		if err := dib.WriteFile(path, bm); err != nil {
			return fmt.Errorf("save %s: %w", path, err)
		}
		g.log.Debug("saved bitmap", "path", path, "bits", bm.BitsPerPixel, "rect", r.String())
		return nil
	})
}

var defaultGrabber = New(Options{})

// CaptureFullScreen は仮想スクリーン全体を既定の設定で取得します。
func CaptureFullScreen() (*PixelBuffer, error) { return defaultGrabber.CaptureFullScreen() }

// CaptureMonitor は index 番目のモニターを既定の設定で取得します。
func CaptureMonitor(index int) (*PixelBuffer, error) { return defaultGrabber.CaptureMonitor(index) }

// CaptureRegion は任意の矩形を既定の設定で取得します。
func CaptureRegion(left, top, width, height int) (*PixelBuffer, error) {
	return defaultGrabber.CaptureRegion(left, top, width, height)
}

// SaveToFile は対象を BMP として保存します。
func SaveToFile(path string, t geometry.Target) error { return defaultGrabber.SaveToFile(path, t) }

// ListMonitors は接続中のモニターの矩形を返します。
func ListMonitors() ([]geometry.Rect, error) { return defaultGrabber.ListMonitors() }

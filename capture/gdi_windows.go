//go:build windows

package capture

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"unsafe"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"

	"DesktopGrab/dib"
	"DesktopGrab/geometry"
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")
	gdi32  = windows.NewLazySystemDLL("gdi32.dll")

	procEnumDisplayMonitors = user32.NewProc("EnumDisplayMonitors")
	procGetDIBits           = gdi32.NewProc("GetDIBits")
)

const (
	smXVirtualScreen  = 76
	smYVirtualScreen  = 77
	smCXVirtualScreen = 78
	smCYVirtualScreen = 79

	srcCopy                = 0x00CC0020
	dibRGBColors           = 0
	monitorInfoFlagPrimary = 0x1
)

// gdiAPI はセッションが使う GDI 呼び出しです。テストでは失敗を差し込むために置き換えます。
type gdiAPI struct {
	getDC                  func(hwnd win.HWND) win.HDC
	releaseDC              func(hwnd win.HWND, hdc win.HDC) bool
	createCompatibleDC     func(hdc win.HDC) win.HDC
	deleteDC               func(hdc win.HDC) bool
	createCompatibleBitmap func(hdc win.HDC, width, height int32) win.HBITMAP
	selectObject           func(hdc win.HDC, obj win.HGDIOBJ) win.HGDIOBJ
	deleteObject           func(obj win.HGDIOBJ) bool
	getDeviceCaps          func(hdc win.HDC, index int32) int32
	bitBlt                 func(dst win.HDC, x, y, width, height int32, src win.HDC, srcX, srcY int32, rop uint32) bool
	getDIBits              func(hdc win.HDC, bm win.HBITMAP, lines uint32, bits []byte, info *bitmapInfo) (int32, error)
	lockThread             func()
	unlockThread           func()
}

var gdi = gdiAPI{
	getDC:                  win.GetDC,
	releaseDC:              win.ReleaseDC,
	createCompatibleDC:     win.CreateCompatibleDC,
	deleteDC:               win.DeleteDC,
	createCompatibleBitmap: win.CreateCompatibleBitmap,
	selectObject:           win.SelectObject,
	deleteObject:           win.DeleteObject,
	getDeviceCaps:          win.GetDeviceCaps,
	bitBlt:                 win.BitBlt,
	getDIBits:              getDIBits,
	lockThread:             runtime.LockOSThread,
	unlockThread:           runtime.UnlockOSThread,
}

func getDIBits(hdc win.HDC, bm win.HBITMAP, lines uint32, bits []byte, info *bitmapInfo) (int32, error) {
	n, _, callErr := procGetDIBits.Call(
		uintptr(hdc),
		uintptr(bm),
		0,
		uintptr(lines),
		uintptr(unsafe.Pointer(&bits[0])),
		uintptr(unsafe.Pointer(info)),
		dibRGBColors,
	)
	if errno, ok := callErr.(windows.Errno); ok && errno != 0 {
		return int32(n), errno
	}
	return int32(n), nil
}

// badObject は SelectObject の失敗値（NULL または HGDI_ERROR）を判定します。
func badObject(h win.HGDIOBJ) bool {
	return h == 0 || h == 0xFFFFFFFF || h == win.HGDIOBJ(^uintptr(0))
}

// errBlitDenied は BitBlt 失敗時の典型的な原因を添えるためのものです。
var errBlitDenied = errors.New("workstation locked, no interactive desktop session, or secure desktop active")

// bitmapInfo は BITMAPINFO にカラーテーブル256個分の領域を足したものです。
// 8ビット以下で GetDIBits がカラーテーブルを書き込んでもはみ出しません。
type bitmapInfo struct {
	Header win.BITMAPINFOHEADER
	Colors [256]dib.RGBQuad
}

type gdiDesktop struct {
	log *slog.Logger
}

func platformDesktop(log *slog.Logger) Desktop { return &gdiDesktop{log: log} }

func (d *gdiDesktop) VirtualScreen() (geometry.Rect, error) {
	r := geometry.Rect{
		Left:   int(win.GetSystemMetrics(smXVirtualScreen)),
		Top:    int(win.GetSystemMetrics(smYVirtualScreen)),
		Width:  int(win.GetSystemMetrics(smCXVirtualScreen)),
		Height: int(win.GetSystemMetrics(smCYVirtualScreen)),
	}
	if !r.Valid() {
		return r, &Error{Kind: ErrResourceAcquisition, Op: "GetSystemMetrics", Err: fmt.Errorf("empty virtual screen %v", r)}
	}
	return r, nil
}

type enumMonitorsContext struct {
	monitors []geometry.Monitor
	err      error
}

var enumMonitorsCallback = windows.NewCallback(func(hMonitor win.HMONITOR, _ win.HDC, _ *win.RECT, data uintptr) uintptr {
	ctx := (*enumMonitorsContext)(unsafe.Pointer(data))
	mi := win.MONITORINFO{CbSize: uint32(unsafe.Sizeof(win.MONITORINFO{}))}
	if !win.GetMonitorInfo(hMonitor, &mi) {
		ctx.err = &Error{Kind: ErrResourceAcquisition, Op: "GetMonitorInfo", Code: win.GetLastError()}
		return 0
	}
	rc := mi.RcMonitor
	ctx.monitors = append(ctx.monitors, geometry.Monitor{
		Index:   len(ctx.monitors),
		Bounds:  geometry.FromEdges(int(rc.Left), int(rc.Top), int(rc.Right), int(rc.Bottom)),
		Primary: mi.DwFlags&monitorInfoFlagPrimary != 0,
	})
	return 1
})

// Monitors は EnumDisplayMonitors でモニターを列挙します。
// HMONITOR は解放不要の疑似ハンドルで、コールバックの外には持ち出しません。
func (d *gdiDesktop) Monitors() ([]geometry.Monitor, error) {
	ctx := new(enumMonitorsContext)
	pinner := new(runtime.Pinner)
	pinner.Pin(ctx)
	defer pinner.Unpin()

	ret, _, callErr := procEnumDisplayMonitors.Call(0, 0, enumMonitorsCallback, uintptr(unsafe.Pointer(ctx)))
	if ctx.err != nil {
		return nil, ctx.err
	}
	if ret == 0 {
		return nil, &Error{Kind: ErrResourceAcquisition, Op: "EnumDisplayMonitors", Err: callErr}
	}
	d.log.Debug("enumerated monitors", "count", len(ctx.monitors))
	return ctx.monitors, nil
}

// gdiSession はデスクトップ DC・メモリ DC・ビットマップの組です。
// release は確保済みのものだけを逆順に1度ずつ解放します。
type gdiSession struct {
	log    *slog.Logger
	rect   geometry.Rect
	bits   int
	locked bool

	screenDC win.HDC
	memDC    win.HDC
	bitmap   win.HBITMAP
	oldObj   win.HGDIOBJ
}

func acquireError(op string) error {
	return &Error{Kind: ErrResourceAcquisition, Op: op, Code: win.GetLastError()}
}

func releaseError(op string) error {
	return fmt.Errorf("%s failed (code %d)", op, win.GetLastError())
}

// Open はデスクトップの r の範囲を互換ビットマップへ BitBlt します。
// どの段階で失敗しても、それまでに確保したハンドルは返る前に解放されます。
func (d *gdiDesktop) Open(r geometry.Rect) (_ Surface, err error) {
	// DC へのビットマップの選択はスレッドに結び付くため Close まで固定する
	gdi.lockThread()
	s := &gdiSession{log: d.log, rect: r, locked: true}
	defer func() {
		if err == nil {
			return
		}
		if rerr := s.release(); rerr != nil {
			d.log.Warn("release after failed capture", "rect", r.String(), "error", rerr)
		}
	}()

	if s.screenDC = gdi.getDC(0); s.screenDC == 0 {
		return nil, acquireError("GetDC")
	}
	if s.memDC = gdi.createCompatibleDC(s.screenDC); s.memDC == 0 {
		return nil, acquireError("CreateCompatibleDC")
	}
	s.bits = int(gdi.getDeviceCaps(s.screenDC, win.BITSPIXEL))
	if s.bitmap = gdi.createCompatibleBitmap(s.screenDC, int32(r.Width), int32(r.Height)); s.bitmap == 0 {
		return nil, acquireError("CreateCompatibleBitmap")
	}
	if s.oldObj = gdi.selectObject(s.memDC, win.HGDIOBJ(s.bitmap)); badObject(s.oldObj) {
		s.oldObj = 0
		return nil, acquireError("SelectObject")
	}

	if !gdi.bitBlt(s.memDC, 0, 0, int32(r.Width), int32(r.Height),
		s.screenDC, int32(r.Left), int32(r.Top), srcCopy) {
		code := win.GetLastError()
		return nil, &Error{Kind: ErrCaptureFailed, Op: "BitBlt", Code: code, Err: errBlitDenied}
	}

	// GetDIBits の前にビットマップの選択を外す
	if !s.deselect() {
		return nil, &Error{Kind: ErrCaptureFailed, Op: "SelectObject", Code: win.GetLastError(),
			Err: errors.New("could not deselect the captured bitmap")}
	}
	// デスクトップ DC はすぐ返す。返せなくても写し取った内容は使える
	if !s.releaseScreenDC() {
		d.log.Warn("release desktop DC", "rect", r.String(), "error", releaseError("ReleaseDC"))
	}
	d.log.Debug("blit done", "rect", r.String(), "bits", s.bits)
	return s, nil
}

// deselect はメモリ DC に元のオブジェクトを戻します。選択中でなければ何もしません。
func (s *gdiSession) deselect() bool {
	if s.oldObj == 0 {
		return true
	}
	prev := gdi.selectObject(s.memDC, s.oldObj)
	s.oldObj = 0
	return !badObject(prev)
}

func (s *gdiSession) releaseScreenDC() bool {
	if s.screenDC == 0 {
		return true
	}
	ok := gdi.releaseDC(0, s.screenDC)
	s.screenDC = 0
	return ok
}

func (s *gdiSession) release() error {
	var errs []error
	if !s.deselect() {
		errs = append(errs, releaseError("SelectObject(restore)"))
	}
	if s.bitmap != 0 {
		if !gdi.deleteObject(win.HGDIOBJ(s.bitmap)) {
			errs = append(errs, releaseError("DeleteObject(bitmap)"))
		}
		s.bitmap = 0
	}
	if s.memDC != 0 {
		if !gdi.deleteDC(s.memDC) {
			errs = append(errs, releaseError("DeleteDC"))
		}
		s.memDC = 0
	}
	if !s.releaseScreenDC() {
		errs = append(errs, releaseError("ReleaseDC"))
	}
	if s.locked {
		gdi.unlockThread()
		s.locked = false
	}
	return errors.Join(errs...)
}

func (s *gdiSession) BitsPerPixel() int { return s.bits }

func (s *gdiSession) Close() error {
	s.log.Debug("release capture session", "rect", s.rect.String())
	return s.release()
}

// ReadDIB は GetDIBits で BI_RGB のボトムアップ DIB を読み出します。
func (s *gdiSession) ReadDIB(bitsPerPixel int) (*dib.Bitmap, error) {
	if s.bitmap == 0 {
		return nil, &Error{Kind: ErrCaptureFailed, Op: "GetDIBits", Err: errors.New("session already released")}
	}
	if bitsPerPixel == 0 {
		bitsPerPixel = s.bits
	}
	w, h := s.rect.Width, s.rect.Height

	var info bitmapInfo
	info.Header = win.BITMAPINFOHEADER{
		BiSize:        uint32(unsafe.Sizeof(win.BITMAPINFOHEADER{})),
		BiWidth:       int32(w),
		BiHeight:      int32(h), // 正の値 = ボトムアップ
		BiPlanes:      1,
		BiBitCount:    uint16(bitsPerPixel),
		BiCompression: win.BI_RGB,
	}
	bits := make([]byte, dib.Size(w, h, bitsPerPixel))

	lines, callErr := gdi.getDIBits(s.memDC, s.bitmap, uint32(h), bits, &info)
	if lines <= 0 {
		cause := ErrDIBConversion
		if callErr != nil {
			cause = fmt.Errorf("%w: %v", ErrDIBConversion, callErr)
		}
		return nil, &Error{Kind: ErrCaptureFailed, Op: "GetDIBits", Err: cause}
	}
	if int(lines) != h {
		return nil, &Error{Kind: ErrCaptureFailed, Op: "GetDIBits",
			Err: fmt.Errorf("%w: copied %d of %d scan lines", ErrDIBConversion, lines, h)}
	}

	bm := &dib.Bitmap{Width: w, Height: h, BitsPerPixel: bitsPerPixel, Bits: bits}
	if bitsPerPixel <= 8 {
		n := int(info.Header.BiClrUsed)
		if n == 0 || n > 1<<bitsPerPixel {
			n = 1 << bitsPerPixel
		}
		bm.Palette = append([]dib.RGBQuad(nil), info.Colors[:n]...)
	}
	return bm, nil
}

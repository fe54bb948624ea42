//go:build windows

package ui

import (
	"errors"
	"fmt"
	"image"
	"unsafe"

	"github.com/kbinani/screenshot"
	"github.com/lxn/win"
	"golang.org/x/sys/windows"

	"DesktopGrab/geometry"
)

const (
	regionClassName = "DesktopGrabRegionSelect"
	lwaAlpha        = 0x2
	overlayAlpha    = 180
)

var (
	procCreatePen                  = windows.NewLazySystemDLL("gdi32.dll").NewProc("CreatePen")
	procSetLayeredWindowAttributes = windows.NewLazySystemDLL("user32.dll").NewProc("SetLayeredWindowAttributes")
)

// ErrNoDisplay はオーバーレイを出す画面が見つからないことを表します。
var ErrNoDisplay = errors.New("no active display")

// active はメッセージループ中のオーバーレイです。ウィンドウプロシージャは1つだけ登録します。
var (
	active      *dragState
	regionClass classRegistration
)

func pointFromLParam(lParam uintptr) image.Point {
	return image.Pt(int(int16(win.LOWORD(uint32(lParam)))), int(int16(win.HIWORD(uint32(lParam)))))
}

var regionWndProc = windows.NewCallback(func(hwnd win.HWND, msg uint32, wParam, lParam uintptr) uintptr {
	d := active
	if d == nil {
		return win.DefWindowProc(hwnd, msg, wParam, lParam)
	}
	switch msg {
	case win.WM_LBUTTONDOWN:
		d.begin(pointFromLParam(lParam))
		win.InvalidateRect(hwnd, nil, true)
		return 0
	case win.WM_MOUSEMOVE:
		if wParam&win.MK_LBUTTON != 0 {
			d.move(pointFromLParam(lParam))
			win.InvalidateRect(hwnd, nil, true)
		}
		return 0
	case win.WM_LBUTTONUP:
		if d.finish(pointFromLParam(lParam)) {
			win.PostQuitMessage(0)
		}
		return 0
	case win.WM_KEYDOWN:
		if wParam == win.VK_ESCAPE {
			win.PostQuitMessage(0)
		}
		return 0
	case win.WM_PAINT:
		var ps win.PAINTSTRUCT
		if hdc := win.BeginPaint(hwnd, &ps); hdc != 0 {
			if r, dragging := d.selection(); dragging {
				paintSelection(hdc, r)
			}
		}
		win.EndPaint(hwnd, &ps)
		return 0
	}
	return win.DefWindowProc(hwnd, msg, wParam, lParam)
})

func paintSelection(hdc win.HDC, r image.Rectangle) {
	pen := createPen(win.PS_SOLID, 3, uint32(win.RGB(255, 0, 0)))
	if pen == 0 {
		return
	}
	defer win.DeleteObject(win.HGDIOBJ(pen))
	oldPen := win.SelectObject(hdc, win.HGDIOBJ(pen))
	oldBrush := win.SelectObject(hdc, win.GetStockObject(win.NULL_BRUSH))
	win.Rectangle_(hdc, int32(r.Min.X), int32(r.Min.Y), int32(r.Max.X), int32(r.Max.Y))
	win.SelectObject(hdc, oldBrush)
	win.SelectObject(hdc, oldPen)
}

// SelectRegion は仮想スクリーン全体に半透明のオーバーレイを表示し、マウスドラッグで矩形を選択させます。
// Esc でキャンセルした場合は ok が false です。
func SelectRegion() (r geometry.Rect, ok bool, err error) {
	bounds := virtualScreenBounds()
	if !bounds.Valid() {
		return geometry.Rect{}, false, ErrNoDisplay
	}
	className, err := windows.UTF16PtrFromString(regionClassName)
	if err != nil {
		return geometry.Rect{}, false, err
	}
	instance := win.GetModuleHandle(nil)

	if err := regionClass.register(func() error {
		atom := win.RegisterClassEx(&win.WNDCLASSEX{
			CbSize:        uint32(unsafe.Sizeof(win.WNDCLASSEX{})),
			Style:         win.CS_HREDRAW | win.CS_VREDRAW,
			LpfnWndProc:   regionWndProc,
			HInstance:     instance,
			LpszClassName: className,
			HCursor:       win.LoadCursor(0, win.MAKEINTRESOURCE(win.IDC_CROSS)),
			HbrBackground: win.HBRUSH(win.COLOR_WINDOW + 1),
		})
		if atom == 0 {
			return fmt.Errorf("RegisterClassEx %s: %w", regionClassName, windows.Errno(win.GetLastError()))
		}
		return nil
	}); err != nil {
		return geometry.Rect{}, false, err
	}

	d := &dragState{origin: image.Pt(bounds.Left, bounds.Top)}
	active = d
	defer func() { active = nil }()

	hwnd := win.CreateWindowEx(
		win.WS_EX_LAYERED|win.WS_EX_TOPMOST|win.WS_EX_TOOLWINDOW,
		className,
		nil,
		win.WS_POPUP|win.WS_VISIBLE,
		int32(bounds.Left), int32(bounds.Top), int32(bounds.Width), int32(bounds.Height),
		0, 0, instance, nil,
	)
	if hwnd == 0 {
		return geometry.Rect{}, false, errors.New("CreateWindowEx failed")
	}
	defer win.DestroyWindow(hwnd)
	setLayeredWindowAttributes(hwnd, 0, overlayAlpha, lwaAlpha)
	win.SetForegroundWindow(hwnd)

	var msg win.MSG
	for win.GetMessage(&msg, 0, 0, 0) > 0 {
		win.TranslateMessage(&msg)
		win.DispatchMessage(&msg)
	}
	return d.result, d.ok, nil
}

// virtualScreenBounds は全ディスプレイの範囲を合わせた矩形です。
func virtualScreenBounds() geometry.Rect {
	n := screenshot.NumActiveDisplays()
	var union image.Rectangle
	for i := 0; i < n; i++ {
		union = union.Union(screenshot.GetDisplayBounds(i))
	}
	return geometry.FromImage(union)
}

func createPen(style, width int32, color uint32) win.HPEN {
	r, _, _ := procCreatePen.Call(uintptr(style), uintptr(width), uintptr(color))
	return win.HPEN(r)
}

func setLayeredWindowAttributes(hwnd win.HWND, crKey uint32, alpha uint8, flags uint32) bool {
	r, _, _ := procSetLayeredWindowAttributes.Call(uintptr(hwnd), uintptr(crKey), uintptr(alpha), uintptr(flags))
	return r != 0
}

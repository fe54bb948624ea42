//go:build windows

// Package focus はキャプチャ前に対象ウィンドウを前面に出します。
package focus

import (
	"errors"
	"fmt"
	"runtime"
	"unsafe"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"
)

var (
	user32             = windows.NewLazySystemDLL("user32.dll")
	procEnumWindows    = user32.NewProc("EnumWindows")
	procGetWindowTextW = user32.NewProc("GetWindowTextW")
)

// ErrNotFound は指定タイトルの表示中ウィンドウが無いことを表します。
var ErrNotFound = errors.New("window not found")

// Window は表示中のトップレベルウィンドウです。
type Window struct {
	Handle win.HWND
	Title  string
}

type enumContext struct {
	windows []Window
}

var enumWindowsCallback = windows.NewCallback(func(hwnd win.HWND, lParam uintptr) uintptr {
	if !win.IsWindowVisible(hwnd) {
		return 1
	}
	ctx := (*enumContext)(unsafe.Pointer(lParam))
	if title := windowText(hwnd); title != "" {
		ctx.windows = append(ctx.windows, Window{Handle: hwnd, Title: title})
	}
	return 1 // 続行
})

func windowText(hwnd win.HWND) string {
	buf := make([]uint16, 256)
	n, _, _ := procGetWindowTextW.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if int(n) <= 0 {
		return ""
	}
	return windows.UTF16ToString(buf[:n])
}

// VisibleWindows は表示されているトップレベルウィンドウを Z オーダー順に返します。
func VisibleWindows() ([]Window, error) {
	ctx := new(enumContext)
	pinner := new(runtime.Pinner)
	pinner.Pin(ctx)
	defer pinner.Unpin()

	ret, _, callErr := procEnumWindows.Call(enumWindowsCallback, uintptr(unsafe.Pointer(ctx)))
	if ret == 0 {
		return nil, fmt.Errorf("EnumWindows: %w", callErr)
	}
	return ctx.windows, nil
}

// ListVisibleWindowTitles は表示されているトップレベルウィンドウのタイトル一覧を返します。
func ListVisibleWindowTitles() ([]string, error) {
	ws, err := VisibleWindows()
	if err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(ws))
	for _, w := range ws {
		titles = append(titles, w.Title)
	}
	return titles, nil
}

// SetForegroundByTitle は指定したタイトルに完全一致する最初の表示中ウィンドウを前面にします。
func SetForegroundByTitle(title string) error {
	ws, err := VisibleWindows()
	if err != nil {
		return err
	}
	for _, w := range ws {
		if w.Title != title {
			continue
		}
		if !win.SetForegroundWindow(w.Handle) {
			return fmt.Errorf("SetForegroundWindow %q refused", title)
		}
		return nil
	}
	return fmt.Errorf("%w: %q", ErrNotFound, title)
}

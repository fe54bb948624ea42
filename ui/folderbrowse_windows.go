//go:build windows

package ui

import (
	"errors"
	"unsafe"

	"github.com/lxn/walk"
	"github.com/lxn/win"
	"golang.org/x/sys/windows"
)

const (
	bifReturnOnlyFSDirs = 0x00000001
	bifNewDialogStyle   = 0x00000040
)

var (
	shell32                 = windows.NewLazySystemDLL("shell32.dll")
	procSHBrowseForFolder   = shell32.NewProc("SHBrowseForFolderW")
	procSHGetPathFromIDList = shell32.NewProc("SHGetPathFromIDListW")
)

type browseInfo struct {
	Owner       win.HWND
	Root        uintptr
	DisplayName *uint16
	Title       *uint16
	Flags       uint32
	Callback    uintptr
	LParam      uintptr
	Image       int32
}

// browseForFolder はフォルダ選択ダイアログを表示します。キャンセル時は空文字を返します。
func browseForFolder(owner walk.Form, title string) (string, error) {
	t, err := windows.UTF16PtrFromString(title)
	if err != nil {
		return "", err
	}
	bi := browseInfo{
		Title: t,
		Flags: bifReturnOnlyFSDirs | bifNewDialogStyle,
	}
	if owner != nil {
		bi.Owner = owner.Handle()
	}
	pidl, _, _ := procSHBrowseForFolder.Call(uintptr(unsafe.Pointer(&bi)))
	if pidl == 0 {
		return "", nil
	}
	defer windows.CoTaskMemFree(unsafe.Pointer(pidl))

	buf := make([]uint16, win.MAX_PATH)
	if ok, _, _ := procSHGetPathFromIDList.Call(pidl, uintptr(unsafe.Pointer(&buf[0]))); ok == 0 {
		return "", errors.New("selected item is not a file system folder")
	}
	return windows.UTF16ToString(buf), nil
}

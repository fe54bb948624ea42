package capture

import (
	"errors"
	"fmt"

	"DesktopGrab/geometry"
)

var (
	// ErrInvalidMonitorIndex は列挙されたモニター数以上のインデックスが指定されたことを示します。
	ErrInvalidMonitorIndex = geometry.ErrInvalidMonitorIndex

	// ErrOutOfRangeRectangle は指定範囲が仮想スクリーンに収まらないことを示します。
	ErrOutOfRangeRectangle = geometry.ErrOutOfRangeRectangle

	// ErrCaptureFailed は BitBlt またはピクセルの読み出しに失敗したことを示します。
	// ワークステーションのロック中、対話的なデスクトップセッションが無い場合、
	// UAC のセキュアデスクトップ表示中などに発生します。
	ErrCaptureFailed = errors.New("screen capture failed")

	// ErrResourceAcquisition は DC やビットマップを作成できなかったことを示します。
	ErrResourceAcquisition = errors.New("could not acquire GDI resource")

	// ErrDIBConversion は GetDIBits が1行もコピーしなかったことを示します。
	// 呼び出し側には ErrCaptureFailed の原因として届きます。
	ErrDIBConversion = errors.New("DIB conversion copied no scan lines")

	// ErrUnsupported は Windows 以外でビルドされたことを示します。
	ErrUnsupported = errors.New("screen capture is only supported on Windows")
)

// Error はプラットフォーム呼び出しの失敗を表します。
// errors.Is では Kind と Err の両方に一致します。
type Error struct {
	Kind error  // ErrCaptureFailed または ErrResourceAcquisition
	Op   string // 失敗した API 名
	Code uint32 // GetLastError の値（0 なら不明）
	Err  error
}

func (e *Error) Error() string {
	msg := e.Op + ": " + e.Kind.Error()
	if e.Code != 0 {
		msg += fmt.Sprintf(" (code %d)", e.Code)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// asCaptureFailed は読み出し中のエラーを ErrCaptureFailed として報告できる形にします。
func asCaptureFailed(op string, err error) error {
	if err == nil || errors.Is(err, ErrCaptureFailed) {
		return err
	}
	return &Error{Kind: ErrCaptureFailed, Op: op, Err: err}
}

package capture

import (
	"DesktopGrab/dib"
	"DesktopGrab/geometry"
)

// Desktop はキャプチャ元のプラットフォームです。Windows では GDI で実装されます。
type Desktop interface {
	// VirtualScreen は全モニターを囲む仮想スクリーンの矩形を返します。
	VirtualScreen() (geometry.Rect, error)
	// Monitors は接続中のモニターを OS の列挙順で返します。
	Monitors() ([]geometry.Monitor, error)
	// Open は r の内容をオフスクリーンのビットマップへ写し取ります。
	// 返された Surface は必ず Close しなければなりません。
	Open(r geometry.Rect) (Surface, error)
}

// Surface は写し取ったビットマップを保持するネイティブのキャプチャセッションです。
type Surface interface {
	// BitsPerPixel はビットマップの色深度（画面と同じ）です。
	BitsPerPixel() int
	// ReadDIB は指定の色深度でボトムアップの DIB を読み出します。0 ならネイティブの色深度です。
	ReadDIB(bitsPerPixel int) (*dib.Bitmap, error)
	// Close はセッションで確保したハンドルをすべて解放します。
	Close() error
}

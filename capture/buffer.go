package capture

import (
	"image"
	"image/color"

	"DesktopGrab/dib"
)

// Origin は行の並び順です。
type Origin int

const (
	// BottomUp は先頭の行が画像の最下行です（GDI の既定）。
	BottomUp Origin = iota
	// TopDown は先頭の行が画像の最上行です。
	TopDown
)

func (o Origin) String() string {
	if o == TopDown {
		return "top-down"
	}
	return "bottom-up"
}

// Order は1ピクセル内のチャネル順です。
type Order int

const (
	// BGR は GDI のネイティブ順です。
	BGR Order = iota
	RGB
)

func (o Order) String() string {
	if o == RGB {
		return "rgb"
	}
	return "bgr"
}

// Format は正規化後のバッファ配置を指定します。ゼロ値は BGR・ボトムアップです。
type Format struct {
	Order  Order
	Origin Origin
}

// PixelBuffer は正規化済みの24ビットピクセル配列です。行は4バイト境界にパディングされます。
// 返されたバッファは呼び出し側が所有し、ネイティブのハンドルはすべて解放済みです。
type PixelBuffer struct {
	Width, Height int
	BitsPerPixel  int
	Stride        int
	Origin        Origin
	Order         Order
	Pix           []byte
}

// Format はこのバッファの配置を返します。
func (b *PixelBuffer) Format() Format {
	return Format{Order: b.Order, Origin: b.Origin}
}

// Row は上から y 行目のピクセル（パディングを除く）を返します。
func (b *PixelBuffer) Row(y int) []byte {
	if b.Origin == BottomUp {
		y = b.Height - 1 - y
	}
	off := y * b.Stride
	return b.Pix[off : off+b.Width*3]
}

// RGB は (x, y) の色を赤・緑・青の順で返します。y は上からの行番号です。
func (b *PixelBuffer) RGB(x, y int) (r, g, bl uint8) {
	p := b.Row(y)[x*3:]
	if b.Order == RGB {
		return p[0], p[1], p[2]
	}
	return p[2], p[1], p[0]
}

// ColorModel は image.Image を実装します。
func (b *PixelBuffer) ColorModel() color.Model { return color.RGBAModel }

// Bounds は image.Image を実装します。原点は (0, 0) です。
func (b *PixelBuffer) Bounds() image.Rectangle { return image.Rect(0, 0, b.Width, b.Height) }

// At は image.Image を実装します。
func (b *PixelBuffer) At(x, y int) color.Color {
	if !image.Pt(x, y).In(b.Bounds()) {
		return color.RGBA{}
	}
	r, g, bl := b.RGB(x, y)
	return color.RGBA{R: r, G: g, B: bl, A: 0xff}
}

// RGBA はトップダウンの *image.RGBA に変換したコピーを返します。アルファは不透明です。
func (b *PixelBuffer) RGBA() *image.RGBA {
	img := image.NewRGBA(b.Bounds())
	for y := 0; y < b.Height; y++ {
		dst := img.Pix[y*img.Stride:]
		for x := 0; x < b.Width; x++ {
			r, g, bl := b.RGB(x, y)
			dst[x*4], dst[x*4+1], dst[x*4+2], dst[x*4+3] = r, g, bl, 0xff
		}
	}
	return img
}

// Bitmap は BMP として書き出せる24ビット BGR・ボトムアップの DIB に変換したコピーを返します。
func (b *PixelBuffer) Bitmap() *dib.Bitmap {
	stride := dib.Stride(b.Width, 24)
	bits := make([]byte, stride*b.Height)
	if b.Format() == (Format{}) && b.Stride == stride {
		copy(bits, b.Pix)
	} else {
		for y := 0; y < b.Height; y++ {
			dst := bits[(b.Height-1-y)*stride:]
			for x := 0; x < b.Width; x++ {
				r, g, bl := b.RGB(x, y)
				dst[x*3], dst[x*3+1], dst[x*3+2] = bl, g, r
			}
		}
	}
	return &dib.Bitmap{Width: b.Width, Height: b.Height, BitsPerPixel: 24, Bits: bits}
}

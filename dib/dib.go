// Package dib はデバイス独立ビットマップ（DIB）の表現と BMP ファイルへの書き出しを扱います。
package dib

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

const (
	fileHeaderSize = 14
	infoHeaderSize = 40

	// BIRGB は非圧縮を表す biCompression の値です。
	BIRGB = 0
)

// RGBQuad はカラーテーブルの1エントリです（メモリ上は B, G, R, 予約 の順）。
type RGBQuad struct {
	Blue, Green, Red, Reserved byte
}

// FileHeader は BITMAPFILEHEADER のディスク上の配置です。
type FileHeader struct {
	Type      [2]byte
	Size      uint32
	Reserved1 uint16
	Reserved2 uint16
	OffBits   uint32
}

// InfoHeader は BITMAPINFOHEADER のディスク上の配置です。
type InfoHeader struct {
	Size          uint32
	Width         int32
	Height        int32
	Planes        uint16
	BitCount      uint16
	Compression   uint32
	SizeImage     uint32
	XPelsPerMeter int32
	YPelsPerMeter int32
	ClrUsed       uint32
	ClrImportant  uint32
}

// Bitmap はボトムアップ・4バイト境界パディング済みの非圧縮 DIB です。
// 8ビット以下の場合は Palette にカラーテーブルが入ります。
type Bitmap struct {
	Width, Height int
	BitsPerPixel  int
	Palette       []RGBQuad
	Bits          []byte
}

// Stride は1行あたりのバイト数を4バイト境界に切り上げて返します。
func Stride(width, bitsPerPixel int) int {
	return ((width*bitsPerPixel + 31) &^ 31) / 8
}

// Size はピクセル配列全体のバイト数です。
func Size(width, height, bitsPerPixel int) int {
	return Stride(width, bitsPerPixel) * height
}

// Stride はこのビットマップの行バイト数です。
func (b *Bitmap) Stride() int { return Stride(b.Width, b.BitsPerPixel) }

// Validate はヘッダーとピクセル配列の整合性を検査します。
func (b *Bitmap) Validate() error {
	if b.Width <= 0 || b.Height <= 0 {
		return fmt.Errorf("dib: invalid size %dx%d", b.Width, b.Height)
	}
	switch b.BitsPerPixel {
	case 1, 4, 8:
		if len(b.Palette) == 0 || len(b.Palette) > 1<<b.BitsPerPixel {
			return fmt.Errorf("dib: %d-bit bitmap needs 1..%d palette entries, got %d",
				b.BitsPerPixel, 1<<b.BitsPerPixel, len(b.Palette))
		}
	case 16, 24, 32:
		if len(b.Palette) != 0 {
			return fmt.Errorf("dib: %d-bit bitmap must not carry a palette", b.BitsPerPixel)
		}
	default:
		return fmt.Errorf("dib: unsupported bit depth %d", b.BitsPerPixel)
	}
	if want := Size(b.Width, b.Height, b.BitsPerPixel); len(b.Bits) != want {
		return fmt.Errorf("dib: pixel data is %d bytes, want %d", len(b.Bits), want)
	}
	return nil
}

// Headers は b を書き出すときのファイルヘッダーと情報ヘッダーを返します。
func (b *Bitmap) Headers() (FileHeader, InfoHeader) {
	off := uint32(fileHeaderSize + infoHeaderSize + 4*len(b.Palette))
	fh := FileHeader{
		Type:    [2]byte{'B', 'M'},
		Size:    off + uint32(len(b.Bits)),
		OffBits: off,
	}
	ih := InfoHeader{
		Size:        infoHeaderSize,
		Width:       int32(b.Width),
		Height:      int32(b.Height), // 正の値 = ボトムアップ
		Planes:      1,
		BitCount:    uint16(b.BitsPerPixel),
		Compression: BIRGB,
		SizeImage:   uint32(len(b.Bits)),
		ClrUsed:     uint32(len(b.Palette)),
	}
	return fh, ih
}

// Encode は b を非圧縮 BMP として w に書き出します。色深度は b のまま変換しません。
func Encode(w io.Writer, b *Bitmap) error {
	if err := b.Validate(); err != nil {
		return err
	}
	fh, ih := b.Headers()
	bw := bufio.NewWriter(w)
	for _, v := range []any{fh, ih, b.Palette} {
		if err := binary.Write(bw, binary.LittleEndian, v); err != nil {
			return fmt.Errorf("dib: write header: %w", err)
		}
	}
	if _, err := bw.Write(b.Bits); err != nil {
		return fmt.Errorf("dib: write pixels: %w", err)
	}
	return bw.Flush()
}

// WriteFile は b を path に BMP として保存します。失敗時は書きかけのファイルを削除します。
func WriteFile(path string, b *Bitmap) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, b); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return err
	}
	return nil
}

package dib

import (
	"bytes"
	"encoding/binary"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func TestStride(t *testing.T) {
	tests := []struct {
		width, bpp, want int
	}{
		{1, 24, 4},
		{2, 24, 8},
		{3, 24, 12},
		{4, 24, 12},
		{100, 24, 300},
		{101, 24, 304},
		{5, 32, 20},
		{3, 16, 8},
		{5, 8, 8},
		{9, 1, 4},
	}
	for _, tt := range tests {
		got := Stride(tt.width, tt.bpp)
		assert.Equal(t, tt.want, got, "width=%d bpp=%d", tt.width, tt.bpp)
		assert.Zero(t, got%4)
		if tt.bpp == 24 {
			assert.Equal(t, (tt.width*3+3)&^3, got)
		}
	}
	assert.Equal(t, 300*50, Size(100, 50, 24))
}

// 3x2 の24ビット画像。下の行が先に並ぶ。
func sample24() *Bitmap {
	stride := Stride(3, 24)
	bits := make([]byte, stride*2)
	// 下の行: 赤, 緑, 青 (BGR 順)
	copy(bits[0:], []byte{0, 0, 255, 0, 255, 0, 255, 0, 0})
	// 上の行: 白, 黒, 灰
	copy(bits[stride:], []byte{255, 255, 255, 0, 0, 0, 128, 128, 128})
	return &Bitmap{Width: 3, Height: 2, BitsPerPixel: 24, Bits: bits}
}

func TestEncode24_DecodesWithXImage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, sample24()))

	img, err := bmp.Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 3, img.Bounds().Dx())
	assert.Equal(t, 2, img.Bounds().Dy())

	rgba := func(x, y int) color.RGBA {
		return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
	}
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, rgba(0, 0))
	assert.Equal(t, color.RGBA{128, 128, 128, 255}, rgba(2, 0))
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, rgba(0, 1))
	assert.Equal(t, color.RGBA{0, 255, 0, 255}, rgba(1, 1))
	assert.Equal(t, color.RGBA{0, 0, 255, 255}, rgba(2, 1))
}

func TestEncode_Headers(t *testing.T) {
	b := sample24()
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, b))

	var fh FileHeader
	var ih InfoHeader
	r := bytes.NewReader(buf.Bytes())
	require.NoError(t, binary.Read(r, binary.LittleEndian, &fh))
	require.NoError(t, binary.Read(r, binary.LittleEndian, &ih))

	assert.Equal(t, [2]byte{'B', 'M'}, fh.Type)
	assert.Equal(t, uint32(buf.Len()), fh.Size)
	assert.Equal(t, uint32(54), fh.OffBits)
	assert.Equal(t, uint32(40), ih.Size)
	assert.Equal(t, int32(2), ih.Height, "bottom-up rows")
	assert.Equal(t, uint16(1), ih.Planes)
	assert.Equal(t, uint16(24), ih.BitCount)
	assert.Equal(t, uint32(BIRGB), ih.Compression)
	assert.Equal(t, uint32(len(b.Bits)), ih.SizeImage)
}

func TestEncode8_Paletted(t *testing.T) {
	palette := []RGBQuad{{Blue: 0, Green: 0, Red: 0}, {Blue: 255, Green: 0, Red: 0}, {Blue: 0, Green: 0, Red: 255}}
	stride := Stride(2, 8)
	bits := make([]byte, stride*2)
	// 下の行
	bits[0], bits[1] = 1, 2
	// 上の行
	bits[stride], bits[stride+1] = 0, 1
	b := &Bitmap{Width: 2, Height: 2, BitsPerPixel: 8, Palette: palette, Bits: bits}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, b))
	fh, _ := b.Headers()
	assert.Equal(t, uint32(54+3*4), fh.OffBits)

	img, err := bmp.Decode(&buf)
	require.NoError(t, err)
	rgba := color.RGBAModel.Convert(img.At(1, 1)).(color.RGBA)
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, rgba)
	rgba = color.RGBAModel.Convert(img.At(1, 0)).(color.RGBA)
	assert.Equal(t, color.RGBA{0, 0, 255, 255}, rgba)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		b    Bitmap
	}{
		{"empty", Bitmap{}},
		{"bad depth", Bitmap{Width: 1, Height: 1, BitsPerPixel: 12, Bits: make([]byte, 4)}},
		{"short bits", Bitmap{Width: 2, Height: 2, BitsPerPixel: 24, Bits: make([]byte, 6)}},
		{"missing palette", Bitmap{Width: 1, Height: 1, BitsPerPixel: 8, Bits: make([]byte, 4)}},
		{"palette on truecolor", Bitmap{Width: 1, Height: 1, BitsPerPixel: 32, Palette: make([]RGBQuad, 2), Bits: make([]byte, 4)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.b.Validate())
			assert.Error(t, Encode(&bytes.Buffer{}, &tt.b))
		})
	}

	ok := Bitmap{Width: 3, Height: 1, BitsPerPixel: 16, Bits: make([]byte, 8)}
	assert.NoError(t, ok.Validate())
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shot.bmp")
	require.NoError(t, WriteFile(path, sample24()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := bmp.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Width)
	assert.Equal(t, 2, cfg.Height)

	bad := filepath.Join(dir, "bad.bmp")
	assert.Error(t, WriteFile(bad, &Bitmap{Width: 1, Height: 1, BitsPerPixel: 24}))
	_, err = os.Stat(bad)
	assert.True(t, os.IsNotExist(err), "partial file is removed")
}

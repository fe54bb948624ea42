// Package compare はキャプチャ画像の内容比較を扱います。
package compare

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"image"
	"image/color"
)

// Hash は画像の論理ピクセル（上の行から順に R, G, B）の SHA256 を返します。
// チャネル順・行の向き・行パディングが違っても同じ画像なら同じ値になります。
func Hash(img image.Image) []byte {
	h := sha256.New()
	b := img.Bounds()
	row := make([]byte, 0, b.Dx()*3)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row = row[:0]
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
			row = append(row, c.R, c.G, c.B)
		}
		h.Write(row)
	}
	var size [8]byte
	binary.LittleEndian.PutUint32(size[:4], uint32(b.Dx()))
	binary.LittleEndian.PutUint32(size[4:], uint32(b.Dy()))
	h.Write(size[:])
	return h.Sum(nil)
}

// Same は2枚の画像の寸法と内容が一致するか返します。
func Same(a, b image.Image) bool {
	if a.Bounds().Size() != b.Bounds().Size() {
		return false
	}
	return bytes.Equal(Hash(a), Hash(b))
}

// ThreeSame は a, b, c の3つのハッシュがすべて一致するか返します。
func ThreeSame(a, b, c []byte) bool {
	if a == nil || b == nil || c == nil {
		return false
	}
	return bytes.Equal(a, b) && bytes.Equal(b, c)
}

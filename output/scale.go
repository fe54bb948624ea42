package output

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// Scale は幅が maxWidth を超える画像を縦横比を保って縮小します。
// maxWidth が0以下、または既に収まっている場合はそのまま返します。
func Scale(img image.Image, maxWidth int) image.Image {
	b := img.Bounds()
	if maxWidth <= 0 || b.Dx() <= maxWidth {
		return img
	}
	h := b.Dy() * maxWidth / b.Dx()
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

package capture

import (
	"fmt"

	"DesktopGrab/dib"
)

// normalize は GDI から読み出した 24/32 ビットのボトムアップ DIB を
// 24ビット・4バイト境界パディングのバッファに変換します。
// 32ビットの4バイト目は未使用のパディングとして捨てます。
func normalize(bm *dib.Bitmap, f Format) (*PixelBuffer, error) {
	var srcPixel int
	switch bm.BitsPerPixel {
	case 24:
		srcPixel = 3
	case 32:
		srcPixel = 4
	default:
		return nil, fmt.Errorf("normalize: unsupported source depth %d", bm.BitsPerPixel)
	}
	if bm.Width <= 0 || bm.Height <= 0 {
		return nil, fmt.Errorf("normalize: invalid size %dx%d", bm.Width, bm.Height)
	}
	srcStride := bm.Stride()
	if len(bm.Bits) < srcStride*bm.Height {
		return nil, fmt.Errorf("normalize: %d bytes for %dx%d at %d bits", len(bm.Bits), bm.Width, bm.Height, bm.BitsPerPixel)
	}

	out := &PixelBuffer{
		Width:        bm.Width,
		Height:       bm.Height,
		BitsPerPixel: 24,
		Stride:       dib.Stride(bm.Width, 24),
		Origin:       f.Origin,
		Order:        f.Order,
	}
	out.Pix = make([]byte, out.Stride*out.Height)

	if srcPixel == 3 && f == (Format{}) {
		copy(out.Pix, bm.Bits)
		return out, nil
	}

	for row := 0; row < bm.Height; row++ {
		dstRow := row
		if f.Origin == TopDown {
			dstRow = bm.Height - 1 - row
		}
		src := bm.Bits[row*srcStride:]
		dst := out.Pix[dstRow*out.Stride:]
		for x := 0; x < bm.Width; x++ {
			s := src[x*srcPixel:]
			b, g, r := s[0], s[1], s[2]
			if f.Order == RGB {
				b, r = r, b
			}
			dst[x*3], dst[x*3+1], dst[x*3+2] = b, g, r
		}
	}
	return out, nil
}

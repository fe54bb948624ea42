// Package geometry は仮想スクリーン座標系の矩形とキャプチャ対象の解決を扱います。
package geometry

import (
	"fmt"
	"image"
)

// Rect は仮想スクリーン座標系での矩形（左上座標と幅・高さ）を表します。
// 左や上のモニターがある場合、Left/Top は負の値になり得ます。
type Rect struct {
	Left, Top, Width, Height int
}

// Valid は幅と高さがともに正のとき true を返します。
func (r Rect) Valid() bool {
	return r.Width > 0 && r.Height > 0
}

// Right は矩形の右端（排他的）を返します。
func (r Rect) Right() int { return r.Left + r.Width }

// Bottom は矩形の下端（排他的）を返します。
func (r Rect) Bottom() int { return r.Top + r.Height }

// Contains は o が r の内側に完全に収まるとき true を返します。
func (r Rect) Contains(o Rect) bool {
	return o.Left >= r.Left && o.Top >= r.Top &&
		o.Right() <= r.Right() && o.Bottom() <= r.Bottom()
}

// Image は image.Rectangle に変換します。
func (r Rect) Image() image.Rectangle {
	return image.Rect(r.Left, r.Top, r.Right(), r.Bottom())
}

// FromImage は image.Rectangle から Rect を作ります。
func FromImage(b image.Rectangle) Rect {
	b = b.Canon()
	return Rect{Left: b.Min.X, Top: b.Min.Y, Width: b.Dx(), Height: b.Dy()}
}

// FromEdges は左上・右下の座標から Rect を作ります。
func FromEdges(left, top, right, bottom int) Rect {
	return Rect{Left: left, Top: top, Width: right - left, Height: bottom - top}
}

func (r Rect) String() string {
	return fmt.Sprintf("%dx%d@(%d,%d)", r.Width, r.Height, r.Left, r.Top)
}

// Monitor は列挙順で識別される1台のディスプレイです。
// 列挙のたびに作り直され、呼び出しをまたいだ同一性はありません。
type Monitor struct {
	Index   int
	Bounds  Rect
	Primary bool
}

// Layout はある時点での仮想スクリーンとモニター配置のスナップショットです。
type Layout struct {
	Virtual  Rect
	Monitors []Monitor
}

// Union はすべてのモニター矩形を囲む最小の矩形を返します。モニターが無ければ空の Rect です。
func (l Layout) Union() Rect {
	var u image.Rectangle
	for _, m := range l.Monitors {
		u = u.Union(m.Bounds.Image())
	}
	return FromImage(u)
}

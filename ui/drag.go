// Package ui は対象選択ダイアログと範囲選択オーバーレイを提供します。
package ui

import (
	"image"
	"sync"

	"DesktopGrab/geometry"
)

// minDragSize より小さいドラッグはクリックとみなして無視します。
const minDragSize = 3

// dragState はオーバーレイ上のドラッグ操作です。座標はオーバーレイのクライアント座標です。
type dragState struct {
	mu       sync.Mutex
	origin   image.Point
	start    image.Point
	current  image.Point
	dragging bool
	result   geometry.Rect
	ok       bool
}

// normalized は開始点と現在点から左上基準の矩形を作ります。
func (d *dragState) normalized(end image.Point) image.Rectangle {
	return image.Rectangle{Min: d.start, Max: end}.Canon()
}

func (d *dragState) begin(p image.Point) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.start, d.current, d.dragging = p, p, true
}

func (d *dragState) move(p image.Point) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.current = p
}

// finish はドラッグを確定し、小さすぎなければ仮想スクリーン座標の矩形を記録します。
func (d *dragState) finish(p image.Point) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.dragging {
		return false
	}
	d.dragging = false
	r := d.normalized(p)
	if r.Dx() >= minDragSize && r.Dy() >= minDragSize {
		d.result = geometry.FromImage(r.Add(d.origin))
		d.ok = true
	}
	return true
}

func (d *dragState) selection() (image.Rectangle, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.normalized(d.current), d.dragging
}

// classRegistration はウィンドウクラスを1度だけ登録し、その結果を覚えておきます。
type classRegistration struct {
	once sync.Once
	err  error
}

func (c *classRegistration) register(fn func() error) error {
	c.once.Do(func() { c.err = fn() })
	return c.err
}

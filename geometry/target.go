package geometry

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrInvalidMonitorIndex は列挙されたモニター数を超えるインデックスが指定されたことを示します。
	ErrInvalidMonitorIndex = errors.New("invalid monitor index")

	// ErrOutOfRangeRectangle は指定された矩形が仮想スクリーンからはみ出していることを示します。
	ErrOutOfRangeRectangle = errors.New("rectangle out of virtual screen range")
)

// MonitorIndexError は存在しないモニターが指定されたときのエラーです。
type MonitorIndexError struct {
	Index int
	Count int
}

func (e *MonitorIndexError) Error() string {
	return fmt.Sprintf("invalid monitor index %d: found %d monitor(s)", e.Index, e.Count)
}

func (e *MonitorIndexError) Is(target error) bool { return target == ErrInvalidMonitorIndex }

// RangeError は矩形が仮想スクリーンに収まらないときのエラーです。
type RangeError struct {
	Rect    Rect
	Virtual Rect
	Reason  string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("rectangle %v out of range of virtual screen %v: %s", e.Rect, e.Virtual, e.Reason)
}

func (e *RangeError) Is(target error) bool { return target == ErrOutOfRangeRectangle }

// Kind はキャプチャ対象の種類です。
type Kind int

const (
	FullScreen Kind = iota
	MonitorIndex
	Region
)

func (k Kind) String() string {
	switch k {
	case FullScreen:
		return "full"
	case MonitorIndex:
		return "monitor"
	case Region:
		return "region"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Target はキャプチャ対象（仮想スクリーン全体・モニター・任意矩形）のいずれかです。
// Kind に応じて Index または Rect のどちらかだけが意味を持ちます。
type Target struct {
	Kind  Kind
	Index int
	Rect  Rect
}

// Full は仮想スクリーン全体を対象にします。
func Full() Target { return Target{Kind: FullScreen} }

// MonitorAt は列挙順で index 番目のモニターを対象にします。
func MonitorAt(index int) Target { return Target{Kind: MonitorIndex, Index: index} }

// RegionOf は任意の矩形を対象にします。
func RegionOf(r Rect) Target { return Target{Kind: Region, Rect: r} }

func (t Target) String() string {
	switch t.Kind {
	case MonitorIndex:
		return fmt.Sprintf("monitor:%d", t.Index)
	case Region:
		return fmt.Sprintf("region:%d,%d,%d,%d", t.Rect.Left, t.Rect.Top, t.Rect.Width, t.Rect.Height)
	default:
		return "full"
	}
}

// ParseTarget は "full"、"monitor:N"、"region:L,T,W,H" 形式の文字列を解釈します。
// 空文字列は "full" と同じです。
func ParseTarget(s string) (Target, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	name, arg, hasArg := strings.Cut(s, ":")
	switch name {
	case "", "full":
		if hasArg {
			return Target{}, fmt.Errorf("target %q: full takes no argument", s)
		}
		return Full(), nil
	case "monitor":
		n, err := strconv.Atoi(strings.TrimSpace(arg))
		if err != nil {
			return Target{}, fmt.Errorf("target %q: bad monitor index: %w", s, err)
		}
		return MonitorAt(n), nil
	case "region":
		parts := strings.Split(arg, ",")
		if len(parts) != 4 {
			return Target{}, fmt.Errorf("target %q: region needs left,top,width,height", s)
		}
		var v [4]int
		for i, p := range parts {
			n, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil {
				return Target{}, fmt.Errorf("target %q: %w", s, err)
			}
			v[i] = n
		}
		return RegionOf(Rect{Left: v[0], Top: v[1], Width: v[2], Height: v[3]}), nil
	default:
		return Target{}, fmt.Errorf("unknown target %q", s)
	}
}

// Resolve はキャプチャ対象を絶対座標の矩形1つに解決します。
//
// 任意矩形は左上だけでなく右端・下端も仮想スクリーン内に収まっている必要があります。
func Resolve(t Target, l Layout) (Rect, error) {
	switch t.Kind {
	case FullScreen:
		if !l.Virtual.Valid() {
			return Rect{}, &RangeError{Rect: l.Virtual, Virtual: l.Virtual, Reason: "empty virtual screen"}
		}
		return l.Virtual, nil
	case MonitorIndex:
		if t.Index < 0 || t.Index >= len(l.Monitors) {
			return Rect{}, &MonitorIndexError{Index: t.Index, Count: len(l.Monitors)}
		}
		return l.Monitors[t.Index].Bounds, nil
	case Region:
		return t.Rect, CheckRegion(t.Rect, l.Virtual)
	default:
		return Rect{}, fmt.Errorf("unknown target kind %v", t.Kind)
	}
}

// CheckRegion は r が仮想スクリーン v に完全に収まっているかを検証します。
func CheckRegion(r, v Rect) error {
	var reason string
	switch {
	case !r.Valid():
		reason = "width and height must be positive"
	case r.Left < v.Left:
		reason = "left edge"
	case r.Top < v.Top:
		reason = "top edge"
	case r.Width > v.Width:
		reason = "width"
	case r.Height > v.Height:
		reason = "height"
	case r.Right() > v.Right():
		reason = "right edge"
	case r.Bottom() > v.Bottom():
		reason = "bottom edge"
	default:
		return nil
	}
	return &RangeError{Rect: r, Virtual: v, Reason: reason}
}

package ui

import (
	"fmt"

	"DesktopGrab/geometry"
)

// targetChoice はダイアログの「対象」コンボボックスの1項目です。
type targetChoice struct {
	Label  string
	Target geometry.Target
	// needsRegion は確定前にオーバーレイで範囲を選ぶ項目です。
	needsRegion bool
}

// targetChoices は全画面、モニターごと、範囲指定の順に項目を並べます。
func targetChoices(monitors []geometry.Monitor) []targetChoice {
	choices := make([]targetChoice, 0, len(monitors)+2)
	choices = append(choices, targetChoice{Label: "全画面（すべてのモニター）", Target: geometry.Full()})
	for _, m := range monitors {
		label := fmt.Sprintf("モニター %d (%d x %d)", m.Index, m.Bounds.Width, m.Bounds.Height)
		if m.Primary {
			label += " プライマリ"
		}
		choices = append(choices, targetChoice{Label: label, Target: geometry.MonitorAt(m.Index)})
	}
	return append(choices, targetChoice{Label: "範囲を指定...", Target: geometry.RegionOf(geometry.Rect{}), needsRegion: true})
}

// choiceIndex は t に対応する項目の位置を返します。範囲指定は最後の項目です。
func choiceIndex(choices []targetChoice, t geometry.Target) int {
	for i, c := range choices {
		if c.Target.Kind != t.Kind {
			continue
		}
		if t.Kind != geometry.MonitorIndex || c.Target.Index == t.Index {
			return i
		}
	}
	return 0
}

func choiceLabels(choices []targetChoice) []string {
	labels := make([]string, len(choices))
	for i, c := range choices {
		labels[i] = c.Label
	}
	return labels
}

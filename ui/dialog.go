//go:build windows

package ui

import (
	"fmt"
	"time"

	"github.com/lxn/walk"
	"github.com/lxn/win"
	"golang.org/x/sys/windows"

	"DesktopGrab/capture"
	"DesktopGrab/focus"
	"DesktopGrab/geometry"
	"DesktopGrab/output"
)

// Settings はダイアログで選んだキャプチャ条件です。
type Settings struct {
	Target           geometry.Target
	OutputFolder     string
	Format           output.Format
	FocusWindowTitle string // 開始前にフォーカスするウィンドウのタイトル（空なら行わない）
	Count            int
	Interval         time.Duration
	StopOnSame       bool
	PDFTitle         string // 空なら PDF を作らない
}

var formatItems = []output.Format{output.BMP, output.PNG, output.JPEG}

// RunTargetDialog は設定ダイアログを表示し、ユーザーが「開始」を押したとき設定を返します。
// モニターの一覧は g から取得します。キャンセル時は ok が false です。
func RunTargetDialog(g *capture.Grabber, settings Settings) (Settings, bool) {
	monitors, err := g.Monitors()
	if err != nil {
		ShowError(fmt.Sprintf("モニターの列挙に失敗しました: %v", err))
		return settings, false
	}
	choices := targetChoices(monitors)

	dlg, err := walk.NewDialog(nil)
	if err != nil {
		ShowError(fmt.Sprintf("ダイアログの作成に失敗しました: %v", err))
		return settings, false
	}
	defer dlg.Dispose()
	dlg.SetTitle("デスクトップキャプチャ - 設定")
	dlg.SetLayout(walk.NewVBoxLayout())

	row := func(label string) *walk.Composite {
		c, _ := walk.NewComposite(dlg)
		c.SetLayout(walk.NewHBoxLayout())
		if l, err := walk.NewLabel(c); err == nil {
			l.SetText(label)
		}
		return c
	}

	// 対象
	targetComp := row("対象:")
	targetCombo, _ := walk.NewComboBox(targetComp)
	targetCombo.SetModel(choiceLabels(choices))
	targetCombo.SetCurrentIndex(choiceIndex(choices, settings.Target))
	regionLabel, _ := walk.NewLabel(targetComp)
	if settings.Target.Kind == geometry.Region {
		regionLabel.SetText(settings.Target.Rect.String())
	}
	selectRegionBtn, _ := walk.NewPushButton(targetComp)
	selectRegionBtn.SetText("範囲を選択...")
	selectRegionBtn.Clicked().Attach(func() {
		r, ok, err := SelectRegion()
		if err != nil {
			ShowError(fmt.Sprintf("範囲選択に失敗しました: %v", err))
			return
		}
		if ok {
			settings.Target = geometry.RegionOf(r)
			regionLabel.SetText(r.String())
			targetCombo.SetCurrentIndex(len(choices) - 1)
		}
	})

	// 保存フォルダ
	folderComp := row("保存先:")
	folderEdit, _ := walk.NewLineEdit(folderComp)
	folderEdit.SetText(settings.OutputFolder)
	browseBtn, _ := walk.NewPushButton(folderComp)
	browseBtn.SetText("参照...")
	browseBtn.Clicked().Attach(func() {
		path, err := browseForFolder(dlg, "保存先フォルダを選択")
		if err != nil {
			ShowError(fmt.Sprintf("フォルダを選択できませんでした: %v", err))
			return
		}
		if path == "" {
			return
		}
		if !isDirEmpty(path) && showConfirm("確認", "選択したフォルダは空ではありません。フォルダを空にしますか？") {
			if err := emptyDir(path); err != nil {
				ShowError(fmt.Sprintf("フォルダを空にできませんでした: %v", err))
				return
			}
		}
		folderEdit.SetText(path)
	})

	// 形式
	formatComp := row("形式:")
	formatCombo, _ := walk.NewComboBox(formatComp)
	labels := make([]string, len(formatItems))
	for i, f := range formatItems {
		labels[i] = string(f)
	}
	formatCombo.SetModel(labels)
	formatCombo.SetCurrentIndex(0)
	for i, f := range formatItems {
		if f == settings.Format {
			formatCombo.SetCurrentIndex(i)
		}
	}

	// フォーカスするアプリケーション
	focusComp := row("フォーカスするアプリ:")
	focusCombo, _ := walk.NewComboBox(focusComp)
	refreshFocusList := func() {
		titles, err := focus.ListVisibleWindowTitles()
		if err != nil {
			ShowError(fmt.Sprintf("ウィンドウの列挙に失敗しました: %v", err))
		}
		items := append([]string{"(なし)"}, titles...)
		focusCombo.SetModel(items)
		focusCombo.SetCurrentIndex(0)
		for i, t := range items {
			if t == settings.FocusWindowTitle {
				focusCombo.SetCurrentIndex(i)
				break
			}
		}
	}
	refreshFocusList()
	refreshFocusBtn, _ := walk.NewPushButton(focusComp)
	refreshFocusBtn.SetText("一覧を更新")
	refreshFocusBtn.Clicked().Attach(refreshFocusList)

	// 枚数と間隔
	seriesComp := row("枚数 (0=無制限):")
	countEdit, _ := walk.NewNumberEdit(seriesComp)
	countEdit.SetRange(0, 99999)
	countEdit.SetValue(float64(settings.Count))
	if l, err := walk.NewLabel(seriesComp); err == nil {
		l.SetText("間隔(ms):")
	}
	intervalEdit, _ := walk.NewNumberEdit(seriesComp)
	intervalEdit.SetRange(0, 600000)
	intervalEdit.SetValue(float64(settings.Interval.Milliseconds()))
	stopSameCheck, _ := walk.NewCheckBox(seriesComp)
	stopSameCheck.SetText("3枚連続同一で終了")
	stopSameCheck.SetChecked(settings.StopOnSame)

	// PDFタイトル
	pdfTitleComp := row("PDFタイトル:")
	pdfTitleEdit, _ := walk.NewLineEdit(pdfTitleComp)
	pdfTitleEdit.SetText(settings.PDFTitle)
	pdfTitleEdit.SetToolTipText("空欄なら PDF は作成しません。BMP は PDF にできません。")

	// ボタン
	btnComp, _ := walk.NewComposite(dlg)
	btnComp.SetLayout(walk.NewHBoxLayout())
	_, _ = walk.NewHSpacer(btnComp)
	startBtn, _ := walk.NewPushButton(btnComp)
	startBtn.SetText("開始")
	startBtn.Clicked().Attach(func() {
		choice := choices[max(targetCombo.CurrentIndex(), 0)]
		if !choice.needsRegion {
			settings.Target = choice.Target
		} else if settings.Target.Kind != geometry.Region || !settings.Target.Rect.Valid() {
			// 必須項目のチェック（ダイアログを閉じる前に表示する）
			ShowError("キャプチャ範囲を選択してください。「範囲を選択...」で範囲を指定してください。")
			return
		}
		settings.OutputFolder = folderEdit.Text()
		if settings.OutputFolder == "" {
			ShowError("保存先フォルダを指定してください。")
			return
		}
		settings.Format = formatItems[max(formatCombo.CurrentIndex(), 0)]
		if t := focusCombo.Text(); t == "(なし)" {
			settings.FocusWindowTitle = ""
		} else {
			settings.FocusWindowTitle = t
		}
		settings.Count = int(countEdit.Value())
		settings.Interval = time.Duration(intervalEdit.Value()) * time.Millisecond
		settings.StopOnSame = stopSameCheck.Checked()
		settings.PDFTitle = pdfTitleEdit.Text()
		dlg.Accept()
	})
	cancelBtn, _ := walk.NewPushButton(btnComp)
	cancelBtn.SetText("キャンセル")
	cancelBtn.Clicked().Attach(func() {
		dlg.Cancel()
	})

	dlg.SetDefaultButton(startBtn)
	dlg.SetCancelButton(cancelBtn)

	if dlg.Run() != walk.DlgCmdOK {
		return settings, false
	}
	return settings, true
}

func messageBox(title, msg string, flags uint32) int32 {
	t, _ := windows.UTF16PtrFromString(title)
	m, _ := windows.UTF16PtrFromString(msg)
	return win.MessageBox(0, m, t, flags)
}

// ShowError はエラーメッセージをメッセージボックスで表示します。
func ShowError(msg string) {
	messageBox("エラー", msg, win.MB_OK|win.MB_ICONERROR)
}

// ShowInfo は情報メッセージをメッセージボックスで表示します。
func ShowInfo(title, msg string) {
	messageBox(title, msg, win.MB_OK|win.MB_ICONINFORMATION)
}

// showConfirm は「はい」「いいえ」の確認メッセージを表示し、「はい」なら true を返します。
func showConfirm(title, msg string) bool {
	return messageBox(title, msg, win.MB_YESNO|win.MB_ICONQUESTION) == win.IDYES
}

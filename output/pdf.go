package output

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

const (
	pixelsPerInch = 96
	mmPerInch     = 25.4
)

// pixelsToMm は 96 DPI を基準にピクセルを mm に変換します。
func pixelsToMm(pixels int) float64 {
	return float64(pixels) * mmPerInch / pixelsPerInch
}

// ErrNoImages は PDF にまとめる画像が1枚もないことを表します。
var ErrNoImages = errors.New("no images to assemble")

// ListImages は dir 内の format の画像をファイル名順で返します。
func ListImages(dir string, format Format) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		f, err := ParseFormat(filepath.Ext(e.Name()))
		if filepath.Ext(e.Name()) == "" || err != nil || f != format {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

func pdfImageType(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "JPEG", nil
	case ".png":
		return "PNG", nil
	default:
		return "", fmt.Errorf("%s: only JPEG and PNG can be embedded in a PDF", path)
	}
}

func imageSize(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("%s: %w", path, err)
	}
	return cfg.Width, cfg.Height, nil
}

// ImagesToPDF は画像を1ページ1枚で PDF にまとめ、outPath に保存します。
// ページサイズは各画像のピクセル寸法から求めます。空のファイルは飛ばします。
// title はPDFのメタデータタイトルです。
func ImagesToPDF(paths []string, outPath, title string) error {
	_, err := writePDF(paths, outPath, title)
	return err
}

func writePDF(paths []string, outPath, title string) (int, error) {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: 210, Ht: 297},
	})
	if title != "" {
		pdf.SetTitle(title, true) // true = UTF-8（日本語対応）
	}
	pages := 0
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return 0, err
		}
		if info.Size() == 0 {
			continue
		}
		typ, err := pdfImageType(path)
		if err != nil {
			return 0, err
		}
		w, h, err := imageSize(path)
		if err != nil {
			return 0, err
		}
		size := gofpdf.SizeType{Wd: pixelsToMm(w), Ht: pixelsToMm(h)}
		pdf.AddPageFormat("P", size)
		pdf.ImageOptions(path, 0, 0, size.Wd, size.Ht, false, gofpdf.ImageOptions{ImageType: typ}, 0, "")
		pages++
	}
	if pages == 0 {
		return 0, ErrNoImages
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return 0, err
	}
	return pages, nil
}

// FolderToPDF は dir 内の JPEG と PNG をファイル名順で1つの PDF にまとめ、ページ数を返します。
func FolderToPDF(dir, outPath, title string) (int, error) {
	var paths []string
	for _, f := range []Format{JPEG, PNG} {
		found, err := ListImages(dir, f)
		if err != nil {
			return 0, err
		}
		paths = append(paths, found...)
	}
	sort.Strings(paths)
	return writePDF(paths, outPath, title)
}

// SanitizeFileName はタイトルを Windows のファイル名として使えるように無効文字を除去します。
func SanitizeFileName(title string) string {
	const invalid = `\/:*?"<>|`
	var b strings.Builder
	for _, r := range strings.TrimSpace(title) {
		if !strings.ContainsRune(invalid, r) && r >= 0x20 {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// PDFFileName はタイトルから PDF のファイル名を決めます。空なら captures.pdf です。
func PDFFileName(title string) string {
	name := SanitizeFileName(title)
	if name == "" {
		return "captures.pdf"
	}
	if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		name += ".pdf"
	}
	return name
}

package output

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
)

const defaultJpegQuality = 85

// Format は保存する画像形式です。
type Format string

const (
	BMP  Format = "bmp"
	PNG  Format = "png"
	JPEG Format = "jpg"
)

// ParseFormat は拡張子風の文字列を Format に変換します。
func ParseFormat(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".") {
	case "bmp":
		return BMP, nil
	case "png", "":
		return PNG, nil
	case "jpg", "jpeg":
		return JPEG, nil
	default:
		return "", fmt.Errorf("unsupported image format %q", s)
	}
}

// Encode は img を format で w に書き出します。BMP は24ビットになります。
func Encode(w io.Writer, img image.Image, format Format, quality int) error {
	switch format {
	case BMP:
		return bmp.Encode(w, img)
	case PNG:
		return png.Encode(w, img)
	case JPEG:
		if quality <= 0 || quality > 100 {
			quality = defaultJpegQuality
		}
		return jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
	default:
		return fmt.Errorf("unsupported image format %q", format)
	}
}

// FileName は連番のファイル名（capture_00001.png など）を返します。
func FileName(index int, format Format) string {
	return fmt.Sprintf("capture_%05d.%s", index, format)
}

// Save は画像を path に保存します。失敗時は書きかけのファイルを削除します。
func Save(path string, img image.Image, format Format, quality int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, img, format, quality); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return err
	}
	return nil
}

// SaveNumbered は画像を指定フォルダに連番で保存し、ファイルパスを返します。
func SaveNumbered(dir string, index int, img image.Image, format Format, quality int) (string, error) {
	path := filepath.Join(dir, FileName(index, format))
	if err := Save(path, img, format, quality); err != nil {
		return "", err
	}
	return path, nil
}

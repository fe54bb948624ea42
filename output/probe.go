package output

import (
	"image"
	"os"

	"golang.org/x/image/bmp"
)

// ProbeBMP は BMP ファイルのヘッダーを読み、寸法と色モデルを返します。
func ProbeBMP(path string) (image.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return image.Config{}, err
	}
	defer f.Close()
	return bmp.DecodeConfig(f)
}

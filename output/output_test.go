package output

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DesktopGrab/dib"
)

func gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: byte(x * 4), G: byte(y * 4), B: 0x80, A: 0xff})
		}
	}
	return img
}

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{"bmp": BMP, ".PNG": PNG, "": PNG, "jpeg": JPEG, "jpg": JPEG}
	for in, want := range cases {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("gif")
	assert.Error(t, err)
}

func TestSaveNumbered(t *testing.T) {
	dir := t.TempDir()
	img := gradient(40, 30)

	for _, f := range []Format{BMP, PNG, JPEG} {
		path, err := SaveNumbered(dir, 7, img, f, 90)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "capture_00007."+string(f)), path)

		r, err := os.Open(path)
		require.NoError(t, err)
		cfg, name, err := image.DecodeConfig(r)
		r.Close()
		require.NoError(t, err)
		assert.Equal(t, 40, cfg.Width)
		assert.Equal(t, 30, cfg.Height)
		assert.Contains(t, []string{"bmp", "png", "jpeg"}, name)
	}
}

func TestSave_RemovesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.gif")
	err := Save(path, gradient(2, 2), Format("gif"), 0)
	assert.Error(t, err)
	assert.NoFileExists(t, path)
}

func TestEncode_DefaultQuality(t *testing.T) {
	var a, b bytes.Buffer
	img := gradient(16, 16)
	require.NoError(t, Encode(&a, img, JPEG, 0))
	require.NoError(t, Encode(&b, img, JPEG, defaultJpegQuality))
	assert.Equal(t, a.Bytes(), b.Bytes())
}

func TestScale(t *testing.T) {
	img := gradient(200, 100)
	assert.Same(t, img, Scale(img, 0))
	assert.Same(t, img, Scale(img, 200))

	small := Scale(img, 50)
	assert.Equal(t, image.Rect(0, 0, 50, 25), small.Bounds())

	thin := Scale(gradient(400, 1), 10)
	assert.Equal(t, 1, thin.Bounds().Dy())
}

func TestProbeBMP(t *testing.T) {
	path := filepath.Join(t.TempDir(), "probe.bmp")
	w, h := 5, 3
	bm := &dib.Bitmap{Width: w, Height: h, BitsPerPixel: 24, Bits: make([]byte, dib.Size(w, h, 24))}
	require.NoError(t, dib.WriteFile(path, bm))

	cfg, err := ProbeBMP(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Width)
	assert.Equal(t, 3, cfg.Height)

	_, err = ProbeBMP(filepath.Join(t.TempDir(), "missing.bmp"))
	assert.Error(t, err)
}

func TestImagesToPDF(t *testing.T) {
	dir := t.TempDir()
	for i, f := range []Format{JPEG, JPEG, PNG} {
		_, err := SaveNumbered(dir, i+1, gradient(96+i*10, 48), f, 80)
		require.NoError(t, err)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "capture_00009.jpg"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	jpgs, err := ListImages(dir, JPEG)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "capture_00001.jpg"),
		filepath.Join(dir, "capture_00002.jpg"),
		filepath.Join(dir, "capture_00009.jpg"),
	}, jpgs)

	all, err := ListImages(dir, PNG)
	require.NoError(t, err)
	all = append(jpgs, all...)

	out := filepath.Join(dir, "out.pdf")
	require.NoError(t, ImagesToPDF(all, out, "キャプチャ"))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
	assert.Len(t, regexp.MustCompile(`/Type /Page\b`).FindAll(data, -1), 3)
}

func TestFolderToPDF(t *testing.T) {
	dir := t.TempDir()
	for i, f := range []Format{PNG, JPEG, BMP} {
		_, err := SaveNumbered(dir, i+1, gradient(64, 48), f, 80)
		require.NoError(t, err)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "capture_00004.png"), nil, 0o644))

	out := filepath.Join(dir, PDFFileName("フォルダ"))
	pages, err := FolderToPDF(dir, out, "フォルダ")
	require.NoError(t, err)
	assert.Equal(t, 2, pages, "bmp and empty files are skipped")
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Len(t, regexp.MustCompile(`/Type /Page\b`).FindAll(data, -1), 2)

	_, err = FolderToPDF(t.TempDir(), out, "")
	assert.ErrorIs(t, err, ErrNoImages)

	_, err = FolderToPDF(filepath.Join(dir, "missing"), out, "")
	assert.Error(t, err)
}

func TestImagesToPDF_Empty(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "capture_00001.jpg")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))

	err := ImagesToPDF([]string{empty}, filepath.Join(dir, "out.pdf"), "")
	assert.ErrorIs(t, err, ErrNoImages)
	assert.NoFileExists(t, filepath.Join(dir, "out.pdf"))
}

func TestPDFFileName(t *testing.T) {
	assert.Equal(t, "captures.pdf", PDFFileName("  "))
	assert.Equal(t, "会議資料.pdf", PDFFileName(`会議:資料?`))
	assert.Equal(t, "report.PDF", PDFFileName("report.PDF"))
}

func TestPixelsToMm(t *testing.T) {
	assert.InDelta(t, 25.4, pixelsToMm(96), 1e-9)
	assert.Zero(t, pixelsToMm(0))
}

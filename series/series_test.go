package series

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DesktopGrab/capture"
	"DesktopGrab/dib"
	"DesktopGrab/geometry"
)

// screenDesktop は Open のたびに shades の次の色で塗られた画面を返します。
// 尽きた後は最後の色のままです。
type screenDesktop struct {
	shades []byte
	opens  int
}

func (d *screenDesktop) VirtualScreen() (geometry.Rect, error) {
	return geometry.Rect{Width: 64, Height: 32}, nil
}

func (d *screenDesktop) Monitors() ([]geometry.Monitor, error) {
	return []geometry.Monitor{{Bounds: geometry.Rect{Width: 64, Height: 32}, Primary: true}}, nil
}

func (d *screenDesktop) Open(r geometry.Rect) (capture.Surface, error) {
	shade := d.shades[min(d.opens, len(d.shades)-1)]
	d.opens++
	return &flatSurface{rect: r, shade: shade}, nil
}

type flatSurface struct {
	rect  geometry.Rect
	shade byte
}

func (s *flatSurface) BitsPerPixel() int { return 32 }

func (s *flatSurface) ReadDIB(bpp int) (*dib.Bitmap, error) {
	bits := make([]byte, dib.Size(s.rect.Width, s.rect.Height, bpp))
	for i := range bits {
		bits[i] = s.shade
	}
	return &dib.Bitmap{Width: s.rect.Width, Height: s.rect.Height, BitsPerPixel: bpp, Bits: bits}, nil
}

func (s *flatSurface) Close() error { return nil }

// fileSaver は空でないファイルを連番で書きます。
func fileSaver(t *testing.T, dir string) SaveFunc {
	return func(f Frame) (string, error) {
		path := filepath.Join(dir, fmt.Sprintf("capture_%05d.bmp", f.Index))
		require.NotNil(t, f.Buffer)
		require.NotEmpty(t, f.Hash)
		return path, dib.WriteFile(path, f.Buffer.Bitmap())
	}
}

func region() geometry.Target {
	return geometry.RegionOf(geometry.Rect{Width: 16, Height: 8})
}

func TestRun_StopsAtCount(t *testing.T) {
	d := &screenDesktop{shades: []byte{1, 2, 3, 4, 5}}
	g := capture.NewWithDesktop(d, capture.Options{})
	dir := t.TempDir()

	res, err := Run(context.Background(), g, Options{Target: region(), Count: 3}, fileSaver(t, dir))
	require.NoError(t, err)
	assert.Len(t, res.Saved, 3)
	assert.False(t, res.StoppedOnSame)
	assert.Equal(t, 3, d.opens)
}

func TestRun_StopOnSameRemovesDuplicates(t *testing.T) {
	d := &screenDesktop{shades: []byte{1, 2, 7, 7, 7, 9}}
	g := capture.NewWithDesktop(d, capture.Options{})
	dir := t.TempDir()

	res, err := Run(context.Background(), g, Options{Target: region(), StopOnSame: true}, fileSaver(t, dir))
	require.NoError(t, err)
	assert.True(t, res.StoppedOnSame)
	assert.Equal(t, 5, d.opens)
	assert.Equal(t, []string{
		filepath.Join(dir, "capture_00001.bmp"),
		filepath.Join(dir, "capture_00002.bmp"),
		filepath.Join(dir, "capture_00003.bmp"),
	}, res.Saved)
	require.Len(t, res.Removed, 2)
	for _, p := range res.Removed {
		assert.NoFileExists(t, p)
	}
	for _, p := range res.Saved {
		assert.FileExists(t, p)
	}
}

func TestRun_CountWinsOverSame(t *testing.T) {
	d := &screenDesktop{shades: []byte{7}}
	g := capture.NewWithDesktop(d, capture.Options{})

	res, err := Run(context.Background(), g, Options{Target: region(), Count: 2, StopOnSame: true}, fileSaver(t, t.TempDir()))
	require.NoError(t, err)
	assert.Len(t, res.Saved, 2)
	assert.False(t, res.StoppedOnSame)
}

func TestRun_CancelStopsBetweenFrames(t *testing.T) {
	d := &screenDesktop{shades: []byte{1, 2, 3}}
	g := capture.NewWithDesktop(d, capture.Options{})
	ctx, cancel := context.WithCancel(context.Background())

	save := func(f Frame) (string, error) {
		cancel()
		return fmt.Sprintf("frame-%d", f.Index), nil
	}
	res, err := Run(ctx, g, Options{Target: region(), Interval: time.Hour}, save)
	require.NoError(t, err)
	assert.Equal(t, []string{"frame-1"}, res.Saved)
}

func TestRun_Unbounded(t *testing.T) {
	g := capture.NewWithDesktop(&screenDesktop{shades: []byte{1}}, capture.Options{})
	_, err := Run(context.Background(), g, Options{Target: region()}, nil)
	assert.ErrorIs(t, err, ErrUnbounded)
}

func TestRun_Errors(t *testing.T) {
	g := capture.NewWithDesktop(&screenDesktop{shades: []byte{1}}, capture.Options{})

	_, err := Run(context.Background(), g, Options{Target: geometry.MonitorAt(3), Count: 1}, nil)
	assert.ErrorIs(t, err, capture.ErrInvalidMonitorIndex)

	boom := errors.New("disk full")
	res, err := Run(context.Background(), g, Options{Target: region(), Count: 2}, func(Frame) (string, error) {
		return "", boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, res.Saved)
}

func TestSleep(t *testing.T) {
	assert.NoError(t, sleep(context.Background(), 0))
	assert.NoError(t, sleep(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleep(ctx, time.Hour), context.Canceled)
}

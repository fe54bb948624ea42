// Package series は一定間隔で連続キャプチャし、画面が変わらなくなったら止めます。
package series

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"DesktopGrab/capture"
	"DesktopGrab/compare"
	"DesktopGrab/geometry"
)

// Frame は1回分のキャプチャです。Index は1から数えます。
type Frame struct {
	Index  int
	Buffer *capture.PixelBuffer
	Hash   []byte
}

// SaveFunc はフレームを保存し、書き出したファイルのパスを返します。
type SaveFunc func(Frame) (string, error)

// Options は連続キャプチャの条件です。
type Options struct {
	Target geometry.Target
	// Count は最大枚数です。0 なら ctx が終わるか同一フレームで止まるまで続けます。
	Count    int
	Interval time.Duration
	// StopOnSame は3枚連続で同じ画面になったら止め、重複した後ろ2枚を削除します。
	StopOnSame bool
	Logger     *slog.Logger
}

// Result は連続キャプチャの結果です。
type Result struct {
	Saved         []string
	Removed       []string
	StoppedOnSame bool
}

// ErrUnbounded は止まる条件のない連続キャプチャを表します。
var ErrUnbounded = errors.New("series needs a count, stop-on-same, or a cancellable context")

// Run は Options に従って g でキャプチャを繰り返し、各フレームを save に渡します。
// キャプチャや保存に失敗した時点で、それまでの結果とエラーを返します。
func Run(ctx context.Context, g *capture.Grabber, opts Options, save SaveFunc) (Result, error) {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if opts.Count <= 0 && !opts.StopOnSame && ctx.Done() == nil {
		return Result{}, ErrUnbounded
	}

	var res Result
	var prevHash, prevPrevHash []byte
	for index := 1; ; index++ {
		buf, err := g.Capture(opts.Target)
		if err != nil {
			return res, fmt.Errorf("capture %d: %w", index, err)
		}
		frame := Frame{Index: index, Buffer: buf, Hash: compare.Hash(buf)}
		path, err := save(frame)
		if err != nil {
			return res, fmt.Errorf("save %d: %w", index, err)
		}
		res.Saved = append(res.Saved, path)
		log.Debug("frame saved", "index", index, "path", path)

		if opts.Count > 0 && index >= opts.Count {
			break
		}
		if opts.StopOnSame && compare.ThreeSame(prevPrevHash, prevHash, frame.Hash) {
			res.StoppedOnSame = true
			break
		}
		prevPrevHash, prevHash = prevHash, frame.Hash

		if err := sleep(ctx, opts.Interval); err != nil {
			log.Info("series interrupted", "frames", len(res.Saved))
			return res, nil
		}
	}

	// 同一の3枚のうち最後の2枚を削除する
	if res.StoppedOnSame {
		n := len(res.Saved)
		for _, p := range res.Saved[n-2:] {
			if err := os.Remove(p); err != nil {
				log.Warn("remove duplicate frame", "path", p, "error", err)
				continue
			}
			res.Removed = append(res.Removed, p)
		}
		res.Saved = res.Saved[:n-2]
	}
	return res, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

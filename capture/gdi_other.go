//go:build !windows

package capture

import (
	"log/slog"

	"DesktopGrab/geometry"
)

type unsupportedDesktop struct{}

func platformDesktop(*slog.Logger) Desktop { return unsupportedDesktop{} }

func (unsupportedDesktop) VirtualScreen() (geometry.Rect, error) {
	return geometry.Rect{}, ErrUnsupported
}

func (unsupportedDesktop) Monitors() ([]geometry.Monitor, error) { return nil, ErrUnsupported }

func (unsupportedDesktop) Open(geometry.Rect) (Surface, error) { return nil, ErrUnsupported }

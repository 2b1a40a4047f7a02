// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: Copyright (c) 2024, Emir Aganovic

package streammerge

import (
	"context"
	"image"

	"github.com/emiago/streammerge/canvas"
	"github.com/emiago/streammerge/media"
	"github.com/emiago/streammerge/playback"
	"github.com/gogpu/gg"
)

// Surface is shared drawing surface all sources are drawn on.
// Implementations must be safe for concurrent drawing.
type Surface interface {
	Width() int
	Height() int
	// DrawImage draws image scaled into rectangle
	DrawImage(img image.Image, x, y, w, h float64)
	// Draw gives exclusive access to drawing context
	Draw(fn func(dc *gg.Context))
	// CaptureStream returns stream with video track sampling surface at fps.
	// Stream may contain default audio track
	CaptureStream(fps int) *media.Stream
	Close() error
}

type SurfaceFactory func(width int, height int) (Surface, error)

// NewCanvasSurface is default surface factory
func NewCanvasSurface(width int, height int) (Surface, error) {
	c, err := canvas.New(width, height)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// DrawFunc is custom per source frame transform. Source contribution to frame is
// complete when function returns, which may take as long as needed. Next frame is not
// drawn until all draw functions of current frame return, so function that never returns
// stalls merger. Context is canceled when merger is destroyed.
type DrawFunc func(ctx context.Context, s Surface, e *playback.Element) error

// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: Copyright (c) 2024, Emir Aganovic

package source

import (
	"context"
	"image"
	"image/color"
	"io"

	"github.com/emiago/streammerge/media"
	"github.com/gogpu/gg"
)

// TestPattern is generated video track. Each frame is filled with background color
// and white bar moving from left to right.
type TestPattern struct {
	media.TrackState
	width      int
	height     int
	background color.Color
	pacer      *media.Pacer

	frame int
}

// NewTestPattern creates pattern of given size. Size is at least 1x1
func NewTestPattern(width, height, fps int, background color.Color) *TestPattern {
	t := &TestPattern{
		width:      max(width, 1),
		height:     max(height, 1),
		background: background,
		pacer:      media.NewPacer(frameInterval(fps)),
	}
	t.Init(media.KindVideo)
	return t
}

// ReadFrame renders next frame. It should be called from single goroutine
func (t *TestPattern) ReadFrame(ctx context.Context) (image.Image, error) {
	if t.Stopped() {
		return nil, io.EOF
	}
	if err := t.pacer.Wait(ctx, t.Done()); err != nil {
		return nil, err
	}

	img := t.render(t.frame)
	t.frame++
	return img, nil
}

func (t *TestPattern) render(frame int) image.Image {
	dc := gg.NewContext(t.width, t.height)
	defer dc.Close()

	dc.SetColor(t.background)
	dc.DrawRectangle(0, 0, float64(t.width), float64(t.height))
	_ = dc.Fill()

	barW := float64(t.width) / 8
	x := float64((frame * 4) % t.width)
	dc.SetRGB(1, 1, 1)
	dc.DrawRectangle(x, 0, barW, float64(t.height))
	_ = dc.Fill()
	return dc.Image()
}

func (t *TestPattern) Stop() {
	t.TrackState.Stop()
	t.pacer.Stop()
}

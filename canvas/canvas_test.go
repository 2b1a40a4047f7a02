// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: Copyright (c) 2024, Emir Aganovic

package canvas

import (
	"context"
	"image"
	"image/color"
	"io"
	"testing"
	"time"

	"github.com/gogpu/gg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func TestCanvasDrawImage(t *testing.T) {
	c, err := New(40, 30)
	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, 40, c.Width())
	assert.Equal(t, 30, c.Height())

	snap := c.Snapshot()
	require.NotNil(t, snap)
	assert.EqualValues(t, 0, snap.RGBAAt(5, 5).A, "new canvas is transparent")

	red := color.RGBA{R: 255, A: 255}
	c.DrawImage(solid(4, 4, red), 0, 0, 20, 15)
	snap = c.Snapshot()
	px := snap.RGBAAt(10, 7)
	assert.Greater(t, px.R, uint8(200))
	assert.EqualValues(t, 0, snap.RGBAAt(35, 25).A, "outside of rectangle is untouched")

	c.Draw(func(dc *gg.Context) {
		dc.SetRGB(0, 0, 1)
		dc.DrawRectangle(20, 15, 20, 15)
		dc.Fill()
	})
	px = c.Snapshot().RGBAAt(30, 22)
	assert.Greater(t, px.B, uint8(200))
}

func TestCanvasInvalidSize(t *testing.T) {
	_, err := New(0, 10)
	require.Error(t, err)
}

func TestCanvasCaptureStream(t *testing.T) {
	c, err := New(8, 8)
	require.NoError(t, err)

	s := c.CaptureStream(50)
	require.Len(t, s.VideoTracks(), 1)
	require.Len(t, s.AudioTracks(), 1, "capture carries default audio track")

	video := s.VideoTracks()[0]
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	start := time.Now()
	for i := 0; i < 2; i++ {
		img, err := video.ReadFrame(ctx)
		require.NoError(t, err)
		assert.Equal(t, 8, img.Bounds().Dx())
	}
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)

	require.NoError(t, c.Close())
	_, err = video.ReadFrame(ctx)
	require.ErrorIs(t, err, io.EOF)

	video.Stop()
	_, err = video.ReadFrame(ctx)
	require.ErrorIs(t, err, io.EOF)
}

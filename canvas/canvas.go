// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: Copyright (c) 2024, Emir Aganovic

// Package canvas provides drawing surface for merger backed by gg software renderer.
package canvas

import (
	"fmt"
	"image"
	"sync"

	"github.com/gogpu/gg"
)

// Canvas is fixed size drawing surface. It is safe for concurrent use,
// every drawing operation holds canvas lock.
type Canvas struct {
	width  int
	height int

	mu     sync.Mutex
	dc     *gg.Context
	closed bool
}

func New(width, height int) (*Canvas, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("canvas: invalid size %dx%d", width, height)
	}
	dc := gg.NewContext(width, height)
	dc.Clear()
	return &Canvas{
		width:  width,
		height: height,
		dc:     dc,
	}, nil
}

func (c *Canvas) Width() int {
	return c.width
}

func (c *Canvas) Height() int {
	return c.height
}

// DrawImage draws img scaled into rectangle x,y,w,h
func (c *Canvas) DrawImage(img image.Image, x, y, w, h float64) {
	if img == nil {
		return
	}
	buf := gg.ImageBufFromImage(img)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.dc.DrawImageEx(buf, gg.DrawImageOptions{
		X:             x,
		Y:             y,
		DstWidth:      w,
		DstHeight:     h,
		Interpolation: gg.InterpBilinear,
		Opacity:       1.0,
		BlendMode:     gg.BlendNormal,
	})
}

// Draw gives exclusive access to drawing context. Use it for custom frame transforms
func (c *Canvas) Draw(fn func(dc *gg.Context)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	fn(c.dc)
}

// Snapshot returns copy of current canvas pixels. Closed canvas returns nil
func (c *Canvas) Snapshot() *image.RGBA {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	return c.snapshot()
}

func (c *Canvas) snapshot() *image.RGBA {
	img := c.dc.Image()
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			rgba.Set(x, y, img.At(x, y))
		}
	}
	return rgba
}

func (c *Canvas) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Close releases drawing context. Captured tracks return EOF afterwards
func (c *Canvas) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.dc.Close()
}

// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: Copyright (c) 2024, Emir Aganovic

package streammerge

import (
	"context"
	"errors"
	"image/color"
	"sync/atomic"
	"testing"
	"time"

	"github.com/emiago/streammerge/canvas"
	"github.com/emiago/streammerge/playback"
	"github.com/gogpu/gg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCountingMerger(t *testing.T) (*Merger, *countingSurface) {
	var surface *countingSurface
	m := newTestMerger(t, WithSurfaceFactory(func(width, height int) (Surface, error) {
		c, err := canvas.New(width, height)
		if err != nil {
			return nil, err
		}
		surface = &countingSurface{Canvas: c}
		return surface, nil
	}))
	return m, surface
}

func waitElementFrame(t *testing.T, m *Merger) {
	for _, d := range m.registry.snapshot() {
		el := d.element
		require.Eventually(t, func() bool { return el.Frames() > 0 }, time.Second, 5*time.Millisecond)
	}
}

func TestFrameWaitsForDelayedCustomDraw(t *testing.T) {
	m, surface := newCountingMerger(t)

	entered := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	slowDraw := func(ctx context.Context, s Surface, e *playback.Element) error {
		if calls.Add(1) == 1 {
			close(entered)
			<-release
		}
		return nil
	}

	require.NoError(t, m.AddStream(newVideoOnlyStream(t, color.White)))
	require.NoError(t, m.AddStream(newVideoOnlyStream(t, color.Black), WithDraw(slowDraw)))
	waitElementFrame(t, m)

	require.NoError(t, m.Start())
	<-entered

	require.Eventually(t, func() bool { return surface.Draws() == 1 }, time.Second, time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, surface.Draws(), "default source must not be redrawn before delayed draw completes")
	assert.EqualValues(t, 0, m.Frames())
	assert.EqualValues(t, 1, calls.Load())

	close(release)
	require.Eventually(t, func() bool { return surface.Draws() >= 2 }, time.Second, time.Millisecond)
	require.Eventually(t, func() bool { return m.Frames() >= 2 }, time.Second, time.Millisecond)
	assert.GreaterOrEqual(t, calls.Load(), int32(2))
}

func TestFrameRestartWaitsForFrameInFlight(t *testing.T) {
	m, surface := newCountingMerger(t)

	entered := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	slowDraw := func(ctx context.Context, s Surface, e *playback.Element) error {
		if calls.Add(1) == 1 {
			close(entered)
			<-release
		}
		return nil
	}

	require.NoError(t, m.AddStream(newVideoOnlyStream(t, color.White)))
	require.NoError(t, m.AddStream(newVideoOnlyStream(t, color.Black), WithDraw(slowDraw)))
	waitElementFrame(t, m)

	require.NoError(t, m.Start())
	<-entered
	m.Stop()
	assert.False(t, m.Started())
	require.NoError(t, m.Start())
	assert.True(t, m.Started())

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, surface.Draws())
	assert.EqualValues(t, 1, calls.Load())

	close(release)
	require.Eventually(t, func() bool { return m.Frames() >= 3 }, time.Second, time.Millisecond)
}

func TestFrameStopPreventsNextFrame(t *testing.T) {
	m, surface := newCountingMerger(t)
	require.NoError(t, m.AddStream(newVideoOnlyStream(t, color.White)))
	waitElementFrame(t, m)

	require.NoError(t, m.Start())
	require.Eventually(t, func() bool { return surface.Draws() >= 2 }, time.Second, time.Millisecond)

	m.Stop()
	// Let frame in flight finish
	time.Sleep(20 * time.Millisecond)
	draws := surface.Draws()
	frames := m.Frames()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, draws, surface.Draws())
	assert.Equal(t, frames, m.Frames())

	result := m.Result()
	require.NoError(t, m.Start())
	require.Eventually(t, func() bool { return surface.Draws() > draws }, time.Second, time.Millisecond)
	assert.Same(t, result, m.Result(), "resuming keeps result")
}

func TestFrameCustomDrawErrorCompletes(t *testing.T) {
	m := newTestMerger(t)

	var calls atomic.Int32
	failing := func(ctx context.Context, s Surface, e *playback.Element) error {
		calls.Add(1)
		return errors.New("draw failed")
	}
	require.NoError(t, m.AddStream(newVideoOnlyStream(t, color.White), WithDraw(failing)))
	require.NoError(t, m.Start())

	require.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, time.Millisecond)
	assert.GreaterOrEqual(t, m.Frames(), uint64(2))
}

func TestFrameCustomDrawOnSurface(t *testing.T) {
	m := newTestMerger(t)

	drawn := make(chan struct{}, 1)
	custom := func(ctx context.Context, s Surface, e *playback.Element) error {
		s.Draw(func(dc *gg.Context) {
			dc.SetRGB(0, 1, 0)
			dc.DrawRectangle(0, 0, 10, 10)
			_ = dc.Fill()
		})
		select {
		case drawn <- struct{}{}:
		default:
		}
		return nil
	}
	require.NoError(t, m.AddStream(newVideoOnlyStream(t, color.White), WithDraw(custom)))
	require.NoError(t, m.Start())

	select {
	case <-drawn:
	case <-time.After(time.Second):
		t.Fatal("custom draw was not called")
	}

	c := m.Surface().(*canvas.Canvas)
	require.Eventually(t, func() bool {
		return c.Snapshot().RGBAAt(5, 5).G > 200
	}, time.Second, time.Millisecond)
}

func TestFrameDestroyCancelsDrawContext(t *testing.T) {
	m := newTestMerger(t)

	entered := make(chan struct{})
	exited := make(chan error, 1)
	var calls atomic.Int32
	stalled := func(ctx context.Context, s Surface, e *playback.Element) error {
		if calls.Add(1) == 1 {
			close(entered)
		}
		<-ctx.Done()
		exited <- ctx.Err()
		return ctx.Err()
	}
	require.NoError(t, m.AddStream(newVideoOnlyStream(t, color.White), WithDraw(stalled)))
	require.NoError(t, m.Start())
	<-entered

	time.Sleep(20 * time.Millisecond)
	assert.EqualValues(t, 0, m.Frames(), "stalled draw halts frames")

	require.NoError(t, m.Destroy())
	select {
	case err := <-exited:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("draw context not canceled")
	}
}

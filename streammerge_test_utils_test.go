// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: Copyright (c) 2024, Emir Aganovic

package streammerge

import (
	"image"
	"image/color"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/emiago/streammerge/audio"
	"github.com/emiago/streammerge/canvas"
	"github.com/emiago/streammerge/media"
	"github.com/emiago/streammerge/source"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	lev, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil || lev == zerolog.NoLevel {
		lev = zerolog.InfoLevel
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMicro
	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.StampMicro,
	}).With().Timestamp().Logger().Level(lev)

	os.Exit(m.Run())
}

var testAudioFormat = media.AudioFormat{SampleRate: 8000, NumChannels: 1, FrameDur: 10 * time.Millisecond}

func testAudioContext() (*audio.Context, error) {
	return audio.NewContext(testAudioFormat), nil
}

// countingSurface is canvas counting default draws
type countingSurface struct {
	*canvas.Canvas

	mu    sync.Mutex
	draws int
}

func (s *countingSurface) DrawImage(img image.Image, x, y, w, h float64) {
	s.mu.Lock()
	s.draws++
	s.mu.Unlock()
	s.Canvas.DrawImage(img, x, y, w, h)
}

func (s *countingSurface) Draws() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draws
}

func newTestMerger(t *testing.T, opts ...MergerOption) *Merger {
	opts = append([]MergerOption{
		WithWidth(64),
		WithHeight(48),
		WithAudioContextFactory(testAudioContext),
		WithFrameClock(NewTickerClock(200)),
	}, opts...)
	m, err := NewMerger(opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		// Tests may already destroy merger
		_ = m.Destroy()
	})
	return m
}

// newTestStream creates stream with still red image and tone
func newTestStream(t *testing.T) *media.Stream {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+3] = 255, 255
	}
	video := source.NewImage(img, 100)
	tone := source.NewTone(440, testAudioFormat)
	s := media.NewStream(video, tone)
	t.Cleanup(s.Stop)
	return s
}

func newVideoOnlyStream(t *testing.T, c color.Color) *media.Stream {
	s := media.NewStream(source.NewTestPattern(16, 16, 100, c))
	t.Cleanup(s.Stop)
	return s
}

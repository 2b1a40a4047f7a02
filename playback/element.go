// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: Copyright (c) 2024, Emir Aganovic

package playback

import (
	"context"
	"errors"
	"image"
	"io"
	"sync"
	"sync/atomic"

	"github.com/emiago/streammerge/media"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/image/draw"
)

// Element is hidden renderable handle bound to stream. It autoplays first video track
// of stream and keeps latest decoded frame. Element is always muted, audio of stream
// is only consumed through audio graph.
type Element struct {
	ID string

	stream *media.Stream
	log    zerolog.Logger

	cancel context.CancelFunc
	done   chan struct{}

	mu     sync.RWMutex
	frame  *image.RGBA
	frames atomic.Uint64
}

func newElement(s *media.Stream, log zerolog.Logger) *Element {
	ctx, cancel := context.WithCancel(context.Background())
	e := &Element{
		ID:     uuid.NewString(),
		stream: s,
		log:    log.With().Str("stream", s.ID()).Logger(),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	tracks := s.VideoTracks()
	if len(tracks) == 0 {
		e.log.Debug().Msg("Stream has no video track. Element will render nothing")
		close(e.done)
		return e
	}

	go e.play(ctx, tracks[0])
	return e
}

func (e *Element) play(ctx context.Context, track media.VideoTrack) {
	defer close(e.done)
	for {
		img, err := track.ReadFrame(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
				e.log.Debug().Msg("Playback ended")
				return
			}
			e.log.Error().Err(err).Msg("Playback stopped with error")
			return
		}
		e.setFrame(img)
	}
}

func (e *Element) setFrame(img image.Image) {
	b := img.Bounds()
	e.mu.Lock()
	defer e.mu.Unlock()
	// Reuse buffer while size is same
	if e.frame == nil || e.frame.Bounds().Size() != b.Size() {
		e.frame = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	}
	draw.Copy(e.frame, image.Point{}, img, b, draw.Src, nil)
	e.frames.Add(1)
}

// Frame returns copy of latest frame or nil if nothing is played yet
func (e *Element) Frame() image.Image {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.frame == nil {
		return nil
	}
	cp := image.NewRGBA(e.frame.Rect)
	copy(cp.Pix, e.frame.Pix)
	return cp
}

// Frames returns number of frames played
func (e *Element) Frames() uint64 {
	return e.frames.Load()
}

func (e *Element) Stream() *media.Stream {
	return e.stream
}

func (e *Element) Muted() bool {
	return true
}

// Done is closed when playback goroutine exits
func (e *Element) Done() <-chan struct{} {
	return e.done
}

// close stops playback. Stream tracks are not stopped.
func (e *Element) close() {
	e.cancel()
	<-e.done
}

// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: Copyright (c) 2024, Emir Aganovic

package streammerge

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// frameScheduler runs frame loop. Only one frame is in flight at any time:
// next frame starts after every draw of current frame has completed.
type frameScheduler struct {
	clock    FrameClock
	surface  Surface
	registry *registry
	log      zerolog.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	// done is closed when last started loop exits
	done chan struct{}

	frames atomic.Uint64
}

func newFrameScheduler(clock FrameClock, surface Surface, reg *registry, log zerolog.Logger) *frameScheduler {
	return &frameScheduler{
		clock:    clock,
		surface:  surface,
		registry: reg,
		log:      log,
	}
}

// start starts frame loop. drawCtx is passed to custom draw functions.
func (s *frameScheduler) start(drawCtx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true

	loopCtx, cancel := context.WithCancel(drawCtx)
	s.cancel = cancel
	prev := s.done
	done := make(chan struct{})
	s.done = done

	go func() {
		defer close(done)
		// Previous loop may still have frame in flight
		if prev != nil {
			<-prev
		}
		s.loop(loopCtx, drawCtx)
	}()
}

// stop prevents scheduling of next frame. Frame in flight is not canceled.
func (s *frameScheduler) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	s.cancel()
}

func (s *frameScheduler) loop(loopCtx context.Context, drawCtx context.Context) {
	s.log.Debug().Msg("Frame loop started")
	defer func() {
		s.log.Debug().Uint64("frames", s.frames.Load()).Msg("Frame loop stopped")
	}()

	for {
		if err := s.clock.WaitFrame(loopCtx); err != nil {
			return
		}
		if loopCtx.Err() != nil {
			return
		}

		s.drawFrame(drawCtx)
		s.frames.Add(1)
	}
}

// drawFrame draws all descriptors and waits all of them to complete
func (s *frameScheduler) drawFrame(ctx context.Context) {
	descriptors := s.registry.snapshot()
	if len(descriptors) == 0 {
		return
	}

	var g errgroup.Group
	for _, d := range descriptors {
		if d.draw != nil {
			g.Go(func() error {
				return d.draw(ctx, s.surface, d.element)
			})
			continue
		}

		if img := d.element.Frame(); img != nil {
			s.surface.DrawImage(img, d.x, d.y, d.width, d.height)
		}
	}

	if err := g.Wait(); err != nil {
		s.log.Error().Err(err).Msg("Custom draw failed")
	}
}

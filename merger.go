// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: Copyright (c) 2024, Emir Aganovic

package streammerge

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/emiago/streammerge/audio"
	"github.com/emiago/streammerge/media"
	"github.com/emiago/streammerge/playback"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	ErrStreamNotFound  = errors.New("streammerge: provided stream was never added")
	ErrMergerDestroyed = errors.New("streammerge: merger destroyed")
)

const (
	DefaultWidth  = 400
	DefaultHeight = 300
	DefaultFPS    = 25
)

// Merger composites added streams into single output stream.
// Video of every stream is drawn on shared surface each frame and audio of every
// non muted stream is mixed into single audio track.
type Merger struct {
	width  int
	height int
	fps    int
	log    zerolog.Logger

	surfaceFactory SurfaceFactory
	audioFactory   audio.ContextFactory
	clock          FrameClock
	ownClock       *TickerClock

	surface   Surface
	container *playback.Container
	mix       *mixGraph
	registry  *registry
	scheduler *frameScheduler

	// ctx is passed to custom draws and canceled on destroy
	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	started   bool
	destroyed bool
	result    *media.Stream
}

type MergerOption func(m *Merger)

// WithWidth sets surface width. Default 400
func WithWidth(width int) MergerOption {
	return func(m *Merger) {
		m.width = width
	}
}

// WithHeight sets surface height. Default 300
func WithHeight(height int) MergerOption {
	return func(m *Merger) {
		m.height = height
	}
}

// WithFPS sets capture frame rate of result. It does not affect frame loop,
// which runs on FrameClock. Default 25
func WithFPS(fps int) MergerOption {
	return func(m *Merger) {
		m.fps = fps
	}
}

func WithLogger(l zerolog.Logger) MergerOption {
	return func(m *Merger) {
		m.log = l
	}
}

func WithSurfaceFactory(f SurfaceFactory) MergerOption {
	return func(m *Merger) {
		m.surfaceFactory = f
	}
}

func WithAudioContextFactory(f audio.ContextFactory) MergerOption {
	return func(m *Merger) {
		m.audioFactory = f
	}
}

// WithFrameClock sets clock driving frame loop. Default is TickerClock at DefaultRefreshRate
func WithFrameClock(c FrameClock) MergerOption {
	return func(m *Merger) {
		m.clock = c
	}
}

func NewMerger(opts ...MergerOption) (*Merger, error) {
	m := &Merger{
		log:            log.Logger.With().Str("caller", "streammerge").Logger(),
		surfaceFactory: NewCanvasSurface,
		audioFactory:   audio.DefaultContextFactory,
	}
	for _, o := range opts {
		o(m)
	}

	if m.width <= 0 {
		m.width = DefaultWidth
	}
	if m.height <= 0 {
		m.height = DefaultHeight
	}
	if m.fps <= 0 {
		m.fps = DefaultFPS
	}

	surface, err := m.surfaceFactory(m.width, m.height)
	if err != nil {
		return nil, fmt.Errorf("failed to create surface: %w", err)
	}

	mix, err := newMixGraph(m.audioFactory)
	if err != nil {
		surface.Close()
		return nil, fmt.Errorf("failed to create audio graph: %w", err)
	}

	if m.clock == nil {
		m.ownClock = NewTickerClock(DefaultRefreshRate)
		m.clock = m.ownClock
	}

	m.surface = surface
	m.mix = mix
	m.container = playback.NewContainer()
	m.registry = newRegistry(m.width, m.height, m.container, m.mix, m.log)
	m.scheduler = newFrameScheduler(m.clock, m.surface, m.registry, m.log)
	m.ctx, m.cancel = context.WithCancel(context.Background())

	m.log.Debug().Int("width", m.width).Int("height", m.height).Int("fps", m.fps).Msg("Merger created")
	return m, nil
}

func (m *Merger) Width() int {
	return m.width
}

func (m *Merger) Height() int {
	return m.height
}

func (m *Merger) FPS() int {
	return m.fps
}

// Surface returns surface streams are drawn on
func (m *Merger) Surface() Surface {
	return m.surface
}

// AddStream registers stream to be drawn and mixed.
// Adding same stream again reuses its playback and audio but adds another
// independent drawing with its own options.
func (m *Merger) AddStream(s *media.Stream, opts ...StreamOption) error {
	if s == nil {
		return fmt.Errorf("streammerge: stream is nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyed {
		return ErrMergerDestroyed
	}
	return m.registry.add(s, opts...)
}

// RemoveStream removes every registration of stream.
// Returns ErrStreamNotFound if stream was never added
func (m *Merger) RemoveStream(s *media.Stream) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyed {
		return ErrMergerDestroyed
	}
	return m.registry.remove(s)
}

// Start starts frame loop and creates Result. Surface is captured at configured fps,
// its default audio track is replaced by mixed audio track.
// Calling Start after Stop resumes drawing into same Result.
func (m *Merger) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyed {
		return ErrMergerDestroyed
	}

	m.started = true
	m.scheduler.start(m.ctx)

	if m.result != nil {
		return nil
	}

	result := m.surface.CaptureStream(m.fps)
	for _, t := range result.AudioTracks() {
		result.RemoveTrack(t)
		t.Stop()
	}
	result.AddTrack(m.mix.output())
	m.result = result

	m.log.Debug().Str("result", result.ID()).Int("streams", m.registry.len()).Msg("Merger started")
	return nil
}

// Stop stops frame loop. Frame currently drawn still completes.
func (m *Merger) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = false
	m.scheduler.stop()
}

// Destroy stops merger, releases all resources and stops all tracks of Result.
// Merger can not be used after.
func (m *Merger) Destroy() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyed {
		return ErrMergerDestroyed
	}
	m.destroyed = true
	m.started = false
	m.scheduler.stop()
	m.cancel()

	err := errors.Join(
		m.container.Close(),
		m.mix.close(),
		m.surface.Close(),
	)
	m.registry.clear()
	if m.ownClock != nil {
		m.ownClock.Stop()
	}

	if m.result != nil {
		m.result.Stop()
		m.result = nil
	}
	m.log.Debug().Msg("Merger destroyed")
	return err
}

func (m *Merger) Started() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started
}

// Result is merged stream. It is nil before Start and after Destroy
func (m *Merger) Result() *media.Stream {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.result
}

// Len returns number of registrations
func (m *Merger) Len() int {
	return m.registry.len()
}

// AudioInputs returns number of streams currently mixed into result audio
func (m *Merger) AudioInputs() int {
	return m.mix.inputs()
}

// Frames returns number of completed frames
func (m *Merger) Frames() uint64 {
	return m.scheduler.frames.Load()
}
